package meshio

import "go.uber.org/zap"

// Option configures a load or export call
type Option func(*config)

type config struct {
	log      *zap.Logger
	optimize bool
	binary   bool
	merge    bool
}

func defaultConfig() config {
	return config{
		log:      zap.NewNop(),
		optimize: true,
		merge:    true,
	}
}

func newConfig(opts []Option) config {
	c := defaultConfig()
	for _, opt := range opts {
		opt(&c)
	}
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return c
}

// WithLogger sets the logger used for load summaries and warnings
func WithLogger(log *zap.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithOptimize toggles vertex dedup for binary STL and OBJ meshes (default on)
func WithOptimize(enabled bool) Option {
	return func(c *config) {
		c.optimize = enabled
	}
}

// WithBinary selects binary STL output (default ASCII)
func WithBinary(enabled bool) Option {
	return func(c *config) {
		c.binary = enabled
	}
}

// WithMerge selects merged output for multi-mesh STL exports (default on).
// With merging off every mesh is written to <basename>_<i><ext>.
func WithMerge(enabled bool) Option {
	return func(c *config) {
		c.merge = enabled
	}
}
