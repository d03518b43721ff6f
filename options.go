package metasprite

import "github.com/rs/zerolog"

// DefaultRootName is the name of the implicit root group.
const DefaultRootName = "Sprites"

// Option configures Parse and the file loaders.
//
// Example:
//
//	file, err := metasprite.Parse(data,
//	    metasprite.WithLogger(logger),
//	    metasprite.WithSkipInvalidMetaLayers(),
//	)
type Option func(*parseOptions)

type parseOptions struct {
	logger           zerolog.Logger
	strict           bool   // first warning aborts the parse
	rootName         string // name of the implicit root group
	skipInvalidMetas bool   // action syntax errors become warnings
}

func defaultOptions() *parseOptions {
	return &parseOptions{
		logger:   zerolog.Nop(),
		rootName: DefaultRootName,
	}
}

func newOptions(opts []Option) *parseOptions {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sends warnings to logger in addition to File.Warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *parseOptions) {
		o.logger = logger
	}
}

// WithStrictParsing treats any warning as a fatal FormatError.
func WithStrictParsing() Option {
	return func(o *parseOptions) {
		o.strict = true
	}
}

// WithRootName overrides the name of the implicit root group.
func WithRootName(name string) Option {
	return func(o *parseOptions) {
		if name != "" {
			o.rootName = name
		}
	}
}

// WithSkipInvalidMetaLayers drops meta layers whose action text does not
// parse, recording a warning instead of failing the whole parse.
func WithSkipInvalidMetaLayers() Option {
	return func(o *parseOptions) {
		o.skipInvalidMetas = true
	}
}
