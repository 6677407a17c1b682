package grid

// GeneratorOption configures a Generator during construction.
type GeneratorOption func(*generatorImpl)

// WithGeneratorLabel sets the label prefix used on every GPU resource the
// generator creates. Defaults to "Grid".
//
// Parameters:
//   - label: the label prefix for GPU resource debugging
//
// Returns:
//   - GeneratorOption: the option to pass to NewGenerator
func WithGeneratorLabel(label string) GeneratorOption {
	return func(g *generatorImpl) {
		if label != "" {
			g.label = label
		}
	}
}
