// Package fakegl implements glshader.Driver in memory for tests.
//
// The fake compiler accepts GLSL-like source with a main function and
// balanced brackets, and records the in/out/uniform declarations. The fake
// linker requires every fragment input to match a vertex output by name and
// type. Uniforms get locations in declaration order.
package fakegl

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-theft-auto/glshader"
)

// Declaration is one in/out/uniform variable found in a source.
type Declaration struct {
	Qualifier string
	Type      string
	Name      string
}

type shader struct {
	stage    glshader.Stage
	src      string
	compiled bool
	log      string
	decls    []Declaration
}

type program struct {
	attached []uint32
	linked   bool
	log      string
	uniforms map[string]int32
}

// UniformCall records a Uniform* call.
type UniformCall struct {
	Program  uint32 // active program when the call was made
	Location int32
	Values   []float32
}

// Driver is an in-memory glshader.Driver. The zero value is not usable;
// call New.
type Driver struct {
	next     uint32
	shaders  map[uint32]*shader
	programs map[uint32]*program
	current  uint32

	calls    map[string]int
	uniforms []UniformCall
	errors   []string
}

var _ glshader.Driver = (*Driver)(nil)

// New creates an empty fake driver.
func New() *Driver {
	return &Driver{
		shaders:  make(map[uint32]*shader),
		programs: make(map[uint32]*program),
		calls:    make(map[string]int),
	}
}

// Calls returns how many times the named method was called.
func (d *Driver) Calls(method string) int { return d.calls[method] }

// UniformCalls returns every uniform call made so far.
func (d *Driver) UniformCalls() []UniformCall { return d.uniforms }

// Errors returns the driver errors raised so far, in the spirit of glGetError.
func (d *Driver) Errors() []string { return d.errors }

// LiveShaders returns the number of shader objects not yet deleted.
func (d *Driver) LiveShaders() int { return len(d.shaders) }

// LivePrograms returns the number of program objects not yet deleted.
func (d *Driver) LivePrograms() int { return len(d.programs) }

// IsProgram reports whether id names a live program object.
func (d *Driver) IsProgram(id uint32) bool {
	_, ok := d.programs[id]
	return ok
}

func (d *Driver) call(method string) { d.calls[method]++ }

func (d *Driver) fail(format string, args ...any) {
	d.errors = append(d.errors, fmt.Sprintf(format, args...))
}

func (d *Driver) alloc() uint32 {
	d.next++
	return d.next
}

func (d *Driver) CreateShader(stage glshader.Stage) uint32 {
	d.call("CreateShader")
	id := d.alloc()
	d.shaders[id] = &shader{stage: stage}
	return id
}

func (d *Driver) ShaderSource(id uint32, src string) {
	d.call("ShaderSource")
	if s, ok := d.shaders[id]; ok {
		s.src = src
	} else {
		d.fail("ShaderSource: invalid shader %d", id)
	}
}

func (d *Driver) CompileShader(id uint32) {
	d.call("CompileShader")
	s, ok := d.shaders[id]
	if !ok {
		d.fail("CompileShader: invalid shader %d", id)
		return
	}
	s.decls, s.log = compile(s.src)
	s.compiled = s.log == ""
}

func (d *Driver) ShaderStatus(id uint32) int32 {
	if s, ok := d.shaders[id]; ok && s.compiled {
		return 1
	}
	return 0
}

func (d *Driver) ShaderInfoLog(id uint32) string {
	if s, ok := d.shaders[id]; ok {
		return s.log
	}
	return ""
}

func (d *Driver) DeleteShader(id uint32) {
	d.call("DeleteShader")
	delete(d.shaders, id)
}

func (d *Driver) CreateProgram() uint32 {
	d.call("CreateProgram")
	id := d.alloc()
	d.programs[id] = &program{uniforms: make(map[string]int32)}
	return id
}

func (d *Driver) AttachShader(prog, id uint32) {
	d.call("AttachShader")
	p, ok := d.programs[prog]
	if !ok {
		d.fail("AttachShader: invalid program %d", prog)
		return
	}
	p.attached = append(p.attached, id)
}

func (d *Driver) DetachShader(prog, id uint32) {
	d.call("DetachShader")
	p, ok := d.programs[prog]
	if !ok {
		d.fail("DetachShader: invalid program %d", prog)
		return
	}
	for i, a := range p.attached {
		if a == id {
			p.attached = append(p.attached[:i], p.attached[i+1:]...)
			return
		}
	}
	d.fail("DetachShader: shader %d not attached to %d", id, prog)
}

func (d *Driver) LinkProgram(prog uint32) {
	d.call("LinkProgram")
	p, ok := d.programs[prog]
	if !ok {
		d.fail("LinkProgram: invalid program %d", prog)
		return
	}
	p.linked, p.log = false, ""
	clear(p.uniforms)

	outputs := make(map[string]string)
	var inputs []Declaration
	hasVertex, hasFragment := false, false
	for _, id := range p.attached {
		s, ok := d.shaders[id]
		if !ok || !s.compiled {
			p.log = fmt.Sprintf("error: shader %d is not compiled", id)
			return
		}
		for _, decl := range s.decls {
			switch {
			case decl.Qualifier == "uniform":
				if _, dup := p.uniforms[decl.Name]; !dup {
					p.uniforms[decl.Name] = int32(len(p.uniforms))
				}
			case s.stage == glshader.StageVertex && decl.Qualifier == "out":
				outputs[decl.Name] = decl.Type
			case s.stage == glshader.StageFragment && decl.Qualifier == "in":
				inputs = append(inputs, decl)
			}
		}
		hasVertex = hasVertex || s.stage == glshader.StageVertex
		hasFragment = hasFragment || s.stage == glshader.StageFragment
	}

	if !hasVertex && !hasFragment {
		p.log = "error: no shaders attached"
		return
	}
	if hasVertex && hasFragment {
		for _, in := range inputs {
			typ, ok := outputs[in.Name]
			switch {
			case !ok:
				p.log += fmt.Sprintf("error: fragment input %q is not written by the vertex shader\n", in.Name)
			case typ != in.Type:
				p.log += fmt.Sprintf("error: %q declared as %s in vertex and %s in fragment\n", in.Name, typ, in.Type)
			}
		}
	}
	if p.log != "" {
		clear(p.uniforms)
		return
	}
	p.linked = true
}

func (d *Driver) ProgramStatus(prog uint32) int32 {
	if p, ok := d.programs[prog]; ok && p.linked {
		return 1
	}
	return 0
}

func (d *Driver) ProgramInfoLog(prog uint32) string {
	if p, ok := d.programs[prog]; ok {
		return p.log
	}
	return ""
}

func (d *Driver) DeleteProgram(prog uint32) {
	d.call("DeleteProgram")
	delete(d.programs, prog)
}

func (d *Driver) UseProgram(prog uint32) {
	d.call("UseProgram")
	if prog != 0 {
		p, ok := d.programs[prog]
		if !ok || !p.linked {
			d.fail("UseProgram: invalid program %d", prog)
			return
		}
	}
	d.current = prog
}

func (d *Driver) CurrentProgram() uint32 {
	d.call("CurrentProgram")
	return d.current
}

func (d *Driver) UniformLocation(prog uint32, name string) int32 {
	d.call("UniformLocation")
	p, ok := d.programs[prog]
	if !ok || !p.linked {
		d.fail("UniformLocation: invalid program %d", prog)
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

func (d *Driver) uniform(method string, loc int32, values ...float32) {
	d.call(method)
	if loc == -1 {
		return
	}
	p, ok := d.programs[d.current]
	if !ok {
		d.fail("%s: no active program", method)
		return
	}
	if int(loc) >= len(p.uniforms) || loc < 0 {
		d.fail("%s: invalid location %d", method, loc)
		return
	}
	d.uniforms = append(d.uniforms, UniformCall{Program: d.current, Location: loc, Values: values})
}

func (d *Driver) Uniform1i(loc, x int32) { d.uniform("Uniform1i", loc, float32(x)) }

func (d *Driver) Uniform2i(loc, x, y int32) { d.uniform("Uniform2i", loc, float32(x), float32(y)) }

func (d *Driver) Uniform3i(loc, x, y, z int32) {
	d.uniform("Uniform3i", loc, float32(x), float32(y), float32(z))
}

func (d *Driver) Uniform4i(loc, x, y, z, w int32) {
	d.uniform("Uniform4i", loc, float32(x), float32(y), float32(z), float32(w))
}

func (d *Driver) Uniform1f(loc int32, x float32) { d.uniform("Uniform1f", loc, x) }

func (d *Driver) Uniform2f(loc int32, x, y float32) { d.uniform("Uniform2f", loc, x, y) }

func (d *Driver) Uniform3f(loc int32, x, y, z float32) { d.uniform("Uniform3f", loc, x, y, z) }

func (d *Driver) Uniform4f(loc int32, x, y, z, w float32) { d.uniform("Uniform4f", loc, x, y, z, w) }

func (d *Driver) UniformMatrix2fv(loc int32, m []float32) {
	d.uniform("UniformMatrix2fv", loc, append([]float32(nil), m...)...)
}

func (d *Driver) UniformMatrix3fv(loc int32, m []float32) {
	d.uniform("UniformMatrix3fv", loc, append([]float32(nil), m...)...)
}

func (d *Driver) UniformMatrix4fv(loc int32, m []float32) {
	d.uniform("UniformMatrix4fv", loc, append([]float32(nil), m...)...)
}

var declRe = regexp.MustCompile(`^\s*(?:layout\s*\([^)]*\)\s*)?(?:flat\s+|smooth\s+|noperspective\s+)?(in|out|uniform)\s+(?:(?:lowp|mediump|highp)\s+)?(\w+)\s+(\w+)\s*(?:\[[^\]]*\])?\s*;`)

// compile checks src and returns its declarations, or a non-empty log.
func compile(src string) ([]Declaration, string) {
	var decls []Declaration
	depth := 0
	for i, line := range strings.Split(src, "\n") {
		if idx := strings.Index(line, "//"); idx >= 0 {
			line = line[:idx]
		}
		for col, r := range line {
			switch r {
			case '{', '(':
				depth++
			case '}', ')':
				depth--
				if depth < 0 {
					return nil, fmt.Sprintf("0:%d(%d): error: syntax error, unexpected '%c'", i+1, col+1, r)
				}
			}
		}
		if m := declRe.FindStringSubmatch(line); m != nil {
			decls = append(decls, Declaration{Qualifier: m[1], Type: m[2], Name: m[3]})
		}
	}

	switch {
	case depth != 0:
		return nil, "0:0(0): error: syntax error, unexpected end of file"
	case !strings.Contains(src, "void main"):
		return nil, "0:0(0): error: function `main' is not defined"
	}
	return decls, ""
}
