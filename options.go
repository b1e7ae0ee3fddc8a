package ward

import "log/slog"

// options holds the internal configuration for opening a vault.
type options struct {
	mustExist bool
	logger    *slog.Logger
}

// Option defines a functional option for Open.
type Option func(*options)

// defaultOptions returns the default configuration.
func defaultOptions() *options {
	return &options{
		mustExist: false,
		logger:    slog.Default(),
	}
}

// WithMustExist makes Open fail with storage.ErrNoVault instead of
// creating a vault file when none exists yet.
func WithMustExist(must bool) Option {
	return func(o *options) {
		o.mustExist = must
	}
}

// WithLogger sets the logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
