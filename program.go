// Package glshader wraps a graphics driver's shader program object.
//
// A Program compiles vertex and fragment sources, links them into a native
// program handle, binds it for rendering and sets uniforms by name with the
// locations cached per program.
//
//	d := opengl.NewDriver()
//	prog, err := glshader.NewFromFiles(d, "sprite.vert", "sprite.frag")
//	if err != nil {
//	    return err
//	}
//	defer prog.Delete()
//
//	defer glshader.Use(prog).Restore()
//	prog.SetMat4("projection", proj).SetInt("tex", 0)
//
// Programs are not safe for concurrent use. Every method that reaches the
// driver must run on the goroutine that owns the graphics context.
package glshader

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
)

// ErrNoSource is returned by Reload for programs that were not loaded from files.
var ErrNoSource = errors.New("program has no source files to reload")

// Program owns a native shader program handle.
// Handle 0 means the program is empty: never linked, failed, or deleted.
type Program struct {
	driver   Driver
	handle   uint32
	pending  []uint32         // compiled shader objects waiting for Link
	uniforms map[string]int32 // cached locations, -1 when absent
	status   int32            // last driver status code

	registry *Registry
	strict   bool
	log      *slog.Logger
	err      error

	vertPath string
	fragPath string
}

// New creates an empty program. Nothing is allocated with the driver until Link.
func New(d Driver, opts ...Option) *Program {
	p := &Program{
		driver:   d,
		uniforms: make(map[string]int32),
		registry: defaultRegistry,
		log:      logger,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// NewFromFiles creates a program and loads it from a vertex and a fragment
// source file. The program is returned even when loading fails; it is then
// empty and can be retried with Reload once the files are fixed.
func NewFromFiles(d Driver, vertPath, fragPath string, opts ...Option) (*Program, error) {
	p := New(d, opts...)
	return p, p.LoadFiles(vertPath, fragPath, false)
}

// Handle returns the native program handle, 0 if the program is empty.
func (p *Program) Handle() uint32 { return p.handle }

// Valid reports whether the program holds a linked handle.
func (p *Program) Valid() bool { return p.handle != 0 }

// Status returns the last status code reported by the driver.
func (p *Program) Status() int32 { return p.status }

// Paths returns the source files of the last LoadFiles call.
func (p *Program) Paths() (vert, frag string) { return p.vertPath, p.fragPath }

// Err reports the strict-binding violation of the most recent uniform
// setter. A setter that passes the check clears it.
func (p *Program) Err() error { return p.err }

// LoadFiles reads both source files, compiles them, links the result and
// binds it if use is true. Both files are read before anything is compiled.
func (p *Program) LoadFiles(vertPath, fragPath string, use bool) error {
	p.vertPath, p.fragPath = vertPath, fragPath

	vert, err := os.ReadFile(vertPath)
	if err != nil {
		return fmt.Errorf("read vertex shader: %w", err)
	}
	frag, err := os.ReadFile(fragPath)
	if err != nil {
		return fmt.Errorf("read fragment shader: %w", err)
	}

	return p.LoadSource(string(vert), string(frag), use)
}

// LoadSource compiles vertex and fragment source text, links them and binds
// the result if use is true. Objects queued by earlier Compile calls are
// discarded first. On failure the previously linked handle, if any, is
// left untouched.
func (p *Program) LoadSource(vert, frag string, use bool) error {
	p.discardPending()
	if err := p.Compile(vert, StageVertex); err != nil {
		p.discardPending()
		return err
	}
	if err := p.Compile(frag, StageFragment); err != nil {
		p.discardPending()
		return err
	}
	if err := p.Link(); err != nil {
		return err
	}
	if use {
		p.Bind()
	}
	return nil
}

// Reload loads the program again from the files of the last LoadFiles call.
// A failed reload keeps the previously linked program.
func (p *Program) Reload() error {
	if p.vertPath == "" || p.fragPath == "" {
		return ErrNoSource
	}
	if err := p.LoadFiles(p.vertPath, p.fragPath, false); err != nil {
		return err
	}
	p.log.Info("shader program reloaded", "program", p.handle, "vertex", p.vertPath, "fragment", p.fragPath)
	return nil
}

// Compile compiles src as the given stage and queues the compiled object
// for the next Link.
func (p *Program) Compile(src string, stage Stage) error {
	d := p.driver

	shader := d.CreateShader(stage)
	d.ShaderSource(shader, src)
	d.CompileShader(shader)

	p.status = d.ShaderStatus(shader)
	if p.status == 0 {
		infoLog := d.ShaderInfoLog(shader)
		d.DeleteShader(shader)
		p.log.Warn("shader compilation failed", "stage", stage, "log", infoLog)
		return &CompileError{Stage: stage, Status: p.status, Log: infoLog}
	}

	p.log.Debug("shader compiled", "stage", stage, "shader", shader)
	p.pending = append(p.pending, shader)
	return nil
}

// Link links every compiled object queued by Compile into a new program
// handle. The compiled objects are released whether or not linking succeeds.
//
// On success the previous handle, if any, is released, the uniform cache is
// cleared and, if the previous handle was active, the new one is bound in
// its place. On failure the previous handle is kept.
func (p *Program) Link() error {
	if len(p.pending) == 0 {
		return ErrNoStages
	}
	d := p.driver

	prog := d.CreateProgram()
	for _, shader := range p.pending {
		d.AttachShader(prog, shader)
	}
	d.LinkProgram(prog)
	p.status = d.ProgramStatus(prog)

	// Shaders are linked into the program now (or useless)
	for _, shader := range p.pending {
		d.DetachShader(prog, shader)
		d.DeleteShader(shader)
	}
	p.pending = p.pending[:0]

	if p.status == 0 {
		infoLog := d.ProgramInfoLog(prog)
		d.DeleteProgram(prog)
		p.log.Warn("shader program linking failed", "log", infoLog)
		return &LinkError{Status: p.status, Log: infoLog}
	}

	p.replaceHandle(prog)
	p.log.Debug("shader program linked", "program", prog)
	return nil
}

func (p *Program) replaceHandle(prog uint32) {
	old := p.handle
	wasActive := old != 0 && p.driver.CurrentProgram() == old

	p.handle = prog
	clear(p.uniforms)
	p.err = nil
	p.registry.add(prog, p)

	if old == 0 {
		return
	}
	p.registry.remove(old, p)
	if wasActive {
		p.driver.UseProgram(prog)
	}
	p.driver.DeleteProgram(old)
}

// Bind makes the program the driver's active program.
func (p *Program) Bind() {
	p.driver.UseProgram(p.handle)
}

// Delete releases the native handle and any compiled objects still queued.
// The program is empty afterwards; calling Delete again is a no-op.
func (p *Program) Delete() {
	p.discardPending()
	if p.handle != 0 {
		p.registry.remove(p.handle, p)
		p.driver.DeleteProgram(p.handle)
		p.log.Debug("shader program deleted", "program", p.handle)
		p.handle = 0
	}
	clear(p.uniforms)
}

func (p *Program) discardPending() {
	for _, shader := range p.pending {
		p.driver.DeleteShader(shader)
	}
	p.pending = p.pending[:0]
}
