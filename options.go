package glshader

import "log/slog"

// Option configures a Program.
type Option func(*Program)

// WithRegistry registers the program in r instead of the default registry.
func WithRegistry(r *Registry) Option {
	return func(p *Program) { p.registry = r }
}

// WithStrictBinding makes uniform setters check that the program is the
// driver's active program. A setter on an unbound program is skipped,
// logged, and recorded in Err.
func WithStrictBinding(strict bool) Option {
	return func(p *Program) { p.strict = strict }
}

// WithLogger sets the logger used by the program.
func WithLogger(l *slog.Logger) Option {
	return func(p *Program) { p.log = l }
}
