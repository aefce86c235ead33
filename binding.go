package glshader

// Binding temporarily switches the driver's active program and remembers
// the one it replaced.
//
//	b := glshader.Use(prog)
//	defer b.Restore()
type Binding struct {
	program  *Program
	prev     uint32
	prevProg *Program // owner of prev, nil if unregistered
	restored bool
}

// Use records the driver's active program and binds p.
func Use(p *Program) *Binding {
	prev := p.driver.CurrentProgram()
	b := &Binding{program: p, prev: prev, prevProg: p.registry.Lookup(prev)}
	p.Bind()
	return b
}

// Program returns the bound program.
func (b *Binding) Program() *Program { return b.program }

// Previous returns the handle that was active before Use.
func (b *Binding) Previous() uint32 { return b.prev }

// Restore rebinds the previously active program. If that program was
// relinked in the meantime its current handle is bound. Only the first
// call has an effect.
func (b *Binding) Restore() {
	if b.restored {
		return
	}
	b.restored = true
	if b.prevProg != nil {
		b.program.driver.UseProgram(b.prevProg.Handle())
		return
	}
	b.program.driver.UseProgram(b.prev)
}

// WithProgram binds p, runs fn and restores the previous program on every
// exit path, including a panic unwinding through fn.
func WithProgram(p *Program, fn func(p *Program) error) error {
	defer Use(p).Restore()
	return fn(p)
}
