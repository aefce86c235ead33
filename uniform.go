package glshader

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// UniformLocation returns the location of the named uniform, querying the
// driver only on first access. Names the linked program does not declare
// (or does not use) resolve to -1, which is cached like any other location.
func (p *Program) UniformLocation(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}

	loc := int32(-1)
	if p.handle != 0 {
		loc = p.driver.UniformLocation(p.handle, name)
	}
	p.uniforms[name] = loc
	return loc
}

// location resolves name for a setter. It reports false when the setter
// must not reach the driver.
func (p *Program) location(name string) (int32, bool) {
	if p.strict && (p.handle == 0 || p.driver.CurrentProgram() != p.handle) {
		p.err = fmt.Errorf("%w: %q on program %d", ErrUnboundProgram, name, p.handle)
		p.log.Warn("uniform set on unbound program", "program", p.handle, "uniform", name)
		return -1, false
	}
	p.err = nil

	loc := p.UniformLocation(name)
	return loc, loc != -1
}

// The setters below require the program to be bound (see Bind and Use).
// They return the program so calls can be chained.

// SetInt sets an int, bool or sampler uniform.
func (p *Program) SetInt(name string, v int32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform1i(loc, v)
	}
	return p
}

// SetFloat sets a float uniform.
func (p *Program) SetFloat(name string, v float32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform1f(loc, v)
	}
	return p
}

// SetInt2 sets an ivec2 uniform.
func (p *Program) SetInt2(name string, x, y int32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform2i(loc, x, y)
	}
	return p
}

// SetFloat2 sets a vec2 uniform.
func (p *Program) SetFloat2(name string, x, y float32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform2f(loc, x, y)
	}
	return p
}

// SetInt3 sets an ivec3 uniform.
func (p *Program) SetInt3(name string, x, y, z int32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform3i(loc, x, y, z)
	}
	return p
}

// SetFloat3 sets a vec3 uniform.
func (p *Program) SetFloat3(name string, x, y, z float32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform3f(loc, x, y, z)
	}
	return p
}

// SetInt4 sets an ivec4 uniform.
func (p *Program) SetInt4(name string, x, y, z, w int32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform4i(loc, x, y, z, w)
	}
	return p
}

// SetFloat4 sets a vec4 uniform.
func (p *Program) SetFloat4(name string, x, y, z, w float32) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.Uniform4f(loc, x, y, z, w)
	}
	return p
}

// SetVec2 sets a vec2 uniform.
func (p *Program) SetVec2(name string, v mgl32.Vec2) *Program {
	return p.SetFloat2(name, v[0], v[1])
}

// SetVec3 sets a vec3 uniform.
func (p *Program) SetVec3(name string, v mgl32.Vec3) *Program {
	return p.SetFloat3(name, v[0], v[1], v[2])
}

// SetVec4 sets a vec4 uniform.
func (p *Program) SetVec4(name string, v mgl32.Vec4) *Program {
	return p.SetFloat4(name, v[0], v[1], v[2], v[3])
}

// SetMat2 sets a mat2 uniform from a column-major matrix.
func (p *Program) SetMat2(name string, m mgl32.Mat2) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.UniformMatrix2fv(loc, m[:])
	}
	return p
}

// SetMat3 sets a mat3 uniform from a column-major matrix.
func (p *Program) SetMat3(name string, m mgl32.Mat3) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.UniformMatrix3fv(loc, m[:])
	}
	return p
}

// SetMat4 sets a mat4 uniform from a column-major matrix.
func (p *Program) SetMat4(name string, m mgl32.Mat4) *Program {
	if loc, ok := p.location(name); ok {
		p.driver.UniformMatrix4fv(loc, m[:])
	}
	return p
}

// SetMat4d sets a mat4 uniform from a double precision matrix. The values
// are narrowed to float32; double matrix uniforms are not used since
// several drivers leave glUniformMatrix4dv unimplemented.
func (p *Program) SetMat4d(name string, m mgl64.Mat4) *Program {
	var f mgl32.Mat4
	for i, v := range m {
		f[i] = float32(v)
	}
	return p.SetMat4(name, f)
}
