// Package opengl provides the OpenGL 4.1 driver for glshader.
package opengl

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/go-theft-auto/glshader"
)

// Driver implements glshader.Driver using OpenGL.
// gl.Init must have been called with a current context.
type Driver struct{}

var _ glshader.Driver = (*Driver)(nil)

// NewDriver creates an OpenGL driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Info describes the OpenGL implementation behind the current context.
func (Driver) Info() string {
	return gl.GoStr(gl.GetString(gl.RENDERER)) + " (OpenGL " + gl.GoStr(gl.GetString(gl.VERSION)) + ")"
}

// glStage maps a stage to its shader type enum.
func glStage(s glshader.Stage) uint32 {
	switch s {
	case glshader.StageFragment:
		return gl.FRAGMENT_SHADER
	case glshader.StageGeometry:
		return gl.GEOMETRY_SHADER
	default:
		return gl.VERTEX_SHADER
	}
}

// cstr null-terminates s for the gl string helpers.
func cstr(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func (Driver) CreateShader(stage glshader.Stage) uint32 {
	return gl.CreateShader(glStage(stage))
}

func (Driver) ShaderSource(shader uint32, src string) {
	csource, free := gl.Strs(cstr(src))
	gl.ShaderSource(shader, 1, csource, nil)
	free()
}

func (Driver) CompileShader(shader uint32) { gl.CompileShader(shader) }

func (Driver) ShaderStatus(shader uint32) int32 {
	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	return status
}

func (Driver) ShaderInfoLog(shader uint32) string {
	var logLength int32
	gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := make([]byte, logLength+1)
	gl.GetShaderInfoLog(shader, logLength, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

func (Driver) DeleteShader(shader uint32) { gl.DeleteShader(shader) }

func (Driver) CreateProgram() uint32 { return gl.CreateProgram() }

func (Driver) AttachShader(program, shader uint32) { gl.AttachShader(program, shader) }

func (Driver) DetachShader(program, shader uint32) { gl.DetachShader(program, shader) }

func (Driver) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (Driver) ProgramStatus(program uint32) int32 {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status
}

func (Driver) ProgramInfoLog(program uint32) string {
	var logLength int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
	if logLength == 0 {
		return ""
	}
	log := make([]byte, logLength+1)
	gl.GetProgramInfoLog(program, logLength, nil, &log[0])
	return strings.TrimRight(string(log), "\x00")
}

func (Driver) DeleteProgram(program uint32) { gl.DeleteProgram(program) }

func (Driver) UseProgram(program uint32) { gl.UseProgram(program) }

func (Driver) CurrentProgram() uint32 {
	var program int32
	gl.GetIntegerv(gl.CURRENT_PROGRAM, &program)
	return uint32(program)
}

func (Driver) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(cstr(name)))
}

func (Driver) Uniform1i(loc, x int32)          { gl.Uniform1i(loc, x) }
func (Driver) Uniform2i(loc, x, y int32)       { gl.Uniform2i(loc, x, y) }
func (Driver) Uniform3i(loc, x, y, z int32)    { gl.Uniform3i(loc, x, y, z) }
func (Driver) Uniform4i(loc, x, y, z, w int32) { gl.Uniform4i(loc, x, y, z, w) }

func (Driver) Uniform1f(loc int32, x float32)          { gl.Uniform1f(loc, x) }
func (Driver) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (Driver) Uniform3f(loc int32, x, y, z float32)    { gl.Uniform3f(loc, x, y, z) }
func (Driver) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

// Matrices are column-major, as mathgl stores them.

func (Driver) UniformMatrix2fv(loc int32, m []float32) {
	gl.UniformMatrix2fv(loc, int32(len(m)/4), false, &m[0])
}

func (Driver) UniformMatrix3fv(loc int32, m []float32) {
	gl.UniformMatrix3fv(loc, int32(len(m)/9), false, &m[0])
}

func (Driver) UniformMatrix4fv(loc int32, m []float32) {
	gl.UniformMatrix4fv(loc, int32(len(m)/16), false, &m[0])
}
