package ecs

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry's logger. The default writes to slog.Default().
func WithLogger(log Logger) Option {
	return func(r *Registry) {
		if log != nil {
			r.log = log
		}
	}
}

// WithReserve makes every new pool reserve room for n entities per column.
// The default of 0 grows columns on demand.
func WithReserve(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.reserve = n
		}
	}
}
