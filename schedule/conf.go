package schedule

// GeneratorOption is a functional option for configuring a Generator.
type GeneratorOption func(*generatorConfig)

type generatorConfig struct {
	order Order
	bound Bound
}

// WithOrder sets the order in which the heuristic visits tasks.
// If not specified, defaults to OrderLongestFirst.
func WithOrder(order Order) GeneratorOption {
	return func(cfg *generatorConfig) {
		if order == OrderLongestFirst || order == OrderByID {
			cfg.order = order
		}
	}
}

// WithBound sets the schedule used as the initial best-known bound of the
// optimal search. If not specified, defaults to BoundHeuristic.
func WithBound(bound Bound) GeneratorOption {
	return func(cfg *generatorConfig) {
		if bound == BoundHeuristic || bound == BoundSingleProcessor {
			cfg.bound = bound
		}
	}
}
