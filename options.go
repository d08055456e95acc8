package tghtml

// ConvertOptions holds options for rendering and chunking.
type ConvertOptions struct {
	// Limit is the maximum rendered length (UTF-16 code units) per fragment.
	Limit int
	// FenceRepair re-wraps the pieces of a line-split fenced block in their
	// own fences. Off by default: repaired fragments no longer rejoin into
	// the original document.
	FenceRepair bool
	Config      *RenderConfig
}

// Option is a function that configures ConvertOptions.
type Option func(*ConvertOptions)

// WithLimit sets the maximum rendered length per fragment.
// Values below 1 fall back to DefaultLimit.
func WithLimit(limit int) Option {
	return func(opts *ConvertOptions) {
		opts.Limit = limit
	}
}

// WithFenceRepair sets whether split fenced blocks get re-fenced.
func WithFenceRepair(enable bool) Option {
	return func(opts *ConvertOptions) {
		opts.FenceRepair = enable
	}
}

// WithConfig sets a custom RenderConfig.
func WithConfig(config *RenderConfig) Option {
	return func(opts *ConvertOptions) {
		opts.Config = config
	}
}

// defaultConvertOptions returns the default conversion options.
func defaultConvertOptions() *ConvertOptions {
	return &ConvertOptions{
		Limit:  DefaultLimit,
		Config: DefaultConfig(),
	}
}

// applyOptions applies the given options to the default options.
func applyOptions(opts ...Option) *ConvertOptions {
	options := defaultConvertOptions()
	for _, opt := range opts {
		opt(options)
	}
	if options.Limit < 1 {
		options.Limit = DefaultLimit
	}
	if options.Config == nil {
		options.Config = DefaultConfig()
	}
	return options
}
