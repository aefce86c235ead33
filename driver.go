package glshader

import (
	"path/filepath"
	"strings"
)

// Driver is the subset of the graphics driver API used by Program.
// backend/opengl provides the OpenGL implementation.
//
// All methods must be called from the goroutine that owns the graphics
// context. Status methods return the raw driver value (0 = false, 1 = true).
type Driver interface {
	CreateShader(stage Stage) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	ShaderStatus(shader uint32) int32
	ShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	DetachShader(program, shader uint32)
	LinkProgram(program uint32)
	ProgramStatus(program uint32) int32
	ProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)

	UseProgram(program uint32)
	CurrentProgram() uint32

	UniformLocation(program uint32, name string) int32
	Uniform1i(loc, x int32)
	Uniform2i(loc, x, y int32)
	Uniform3i(loc, x, y, z int32)
	Uniform4i(loc, x, y, z, w int32)
	Uniform1f(loc int32, x float32)
	Uniform2f(loc int32, x, y float32)
	Uniform3f(loc int32, x, y, z float32)
	Uniform4f(loc int32, x, y, z, w float32)
	UniformMatrix2fv(loc int32, m []float32)
	UniformMatrix3fv(loc int32, m []float32)
	UniformMatrix4fv(loc int32, m []float32)
}

// Stage identifies a shader pipeline stage.
type Stage uint8

const (
	StageVertex Stage = iota
	StageFragment
	StageGeometry
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// StageFromPath guesses the stage from a source file extension.
// Recognized: .vert/.vs, .frag/.fs, .geom/.gs.
func StageFromPath(path string) (Stage, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".vert", ".vs":
		return StageVertex, true
	case ".frag", ".fs":
		return StageFragment, true
	case ".geom", ".gs":
		return StageGeometry, true
	}
	return 0, false
}
