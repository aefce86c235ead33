package glshader_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/glshader"
	"github.com/go-theft-auto/glshader/internal/fakegl"
)

func TestUniformLocation_Cached(t *testing.T) {
	p, d, _ := newProgram(t)

	first := p.UniformLocation("tint")
	require.NotEqual(t, int32(-1), first)
	calls := d.Calls("UniformLocation")

	assert.Equal(t, first, p.UniformLocation("tint"))
	assert.Equal(t, calls, d.Calls("UniformLocation"), "second lookup hits the cache")
}

func TestUniformLocation_Unknown(t *testing.T) {
	p, d, _ := newProgram(t)
	p.Bind()

	assert.Equal(t, int32(-1), p.UniformLocation("missing"))
	calls := d.Calls("UniformLocation")
	assert.Equal(t, int32(-1), p.UniformLocation("missing"))
	assert.Equal(t, calls, d.Calls("UniformLocation"), "misses are cached too")

	p.SetFloat("missing", 1).SetInt4("missing", 1, 2, 3, 4).SetMat4("missing", mgl32.Ident4())
	assert.Empty(t, d.UniformCalls())
	assert.Zero(t, d.Calls("Uniform1f"), "no driver call for unknown uniforms")
	assert.Empty(t, d.Errors())
}

func TestUniformLocation_EmptyProgram(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d)

	assert.Equal(t, int32(-1), p.UniformLocation("tint"))
	assert.Zero(t, d.Calls("UniformLocation"))
}

func TestSetUniform_Chain(t *testing.T) {
	p, d, _ := newProgram(t)
	p.Bind()

	ret := p.SetInt("mode", 1).
		SetFloat("scale", 2.5).
		SetFloat4("tint", 1, 0.5, 0.25, 1)
	assert.Same(t, p, ret)

	calls := d.UniformCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, fakegl.UniformCall{Program: p.Handle(), Location: p.UniformLocation("mode"), Values: []float32{1}}, calls[0])
	assert.Equal(t, []float32{2.5}, calls[1].Values)
	assert.Equal(t, []float32{1, 0.5, 0.25, 1}, calls[2].Values)
	assert.Empty(t, d.Errors())
}

func TestSetUniform_Arity(t *testing.T) {
	p, d, _ := newProgram(t)
	p.Bind()

	p.SetInt2("mode", 1, 2).
		SetInt3("mode", 1, 2, 3).
		SetFloat2("scale", 1, 2).
		SetFloat3("scale", 1, 2, 3).
		SetVec2("tint", mgl32.Vec2{1, 2}).
		SetVec3("tint", mgl32.Vec3{1, 2, 3}).
		SetVec4("tint", mgl32.Vec4{1, 2, 3, 4})

	want := map[string]int{
		"Uniform2i": 1,
		"Uniform3i": 1,
		"Uniform2f": 2, // SetFloat2, SetVec2
		"Uniform3f": 2,
		"Uniform4f": 1,
	}
	for method, n := range want {
		assert.Equal(t, n, d.Calls(method), method)
	}
	assert.Len(t, d.UniformCalls(), 7)
}

func TestSetUniform_Matrices(t *testing.T) {
	p, d, _ := newProgram(t)
	p.Bind()

	proj := mgl32.Ortho(0, 800, 600, 0, -1, 1)
	p.SetMat4("projection", proj).
		SetMat3("projection", mgl32.Ident3()).
		SetMat2("projection", mgl32.Ident2())

	calls := d.UniformCalls()
	require.Len(t, calls, 3)
	assert.Equal(t, proj[:], calls[0].Values)
	assert.Len(t, calls[1].Values, 9)
	assert.Len(t, calls[2].Values, 4)
}

func TestSetUniform_DoubleMatrix(t *testing.T) {
	p, d, _ := newProgram(t)
	p.Bind()

	m := mgl64.Translate3D(1.5, -2, 3)
	p.SetMat4d("projection", m)

	calls := d.UniformCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, 1, d.Calls("UniformMatrix4fv"))
	want := make([]float32, 16)
	for i, v := range m {
		want[i] = float32(v)
	}
	assert.Equal(t, want, calls[0].Values)
}

func TestSetUniform_StrictBinding(t *testing.T) {
	p, d, _ := newProgram(t, glshader.WithStrictBinding(true))

	p.SetFloat("scale", 2)
	assert.ErrorIs(t, p.Err(), glshader.ErrUnboundProgram)
	assert.Zero(t, d.Calls("Uniform1f"))

	p.Bind()
	p.SetFloat("scale", 2)
	assert.Equal(t, 1, d.Calls("Uniform1f"))

	require.NoError(t, p.Reload())
	assert.NoError(t, p.Err(), "relink clears the recorded violation")
}

func TestSetUniform_LenientUnbound(t *testing.T) {
	p, d, _ := newProgram(t)

	// Without strict binding the call reaches the driver, which applies it
	// to whatever is active; here nothing is, so the driver complains.
	p.SetFloat("scale", 2)
	assert.NoError(t, p.Err())
	assert.Equal(t, 1, d.Calls("Uniform1f"))
	assert.NotEmpty(t, d.Errors())
}

func TestSetUniform_StrictBindingClearsAfterBind(t *testing.T) {
	p, d, _ := newProgram(t, glshader.WithStrictBinding(true))

	p.SetFloat("scale", 2)
	require.ErrorIs(t, p.Err(), glshader.ErrUnboundProgram)

	p.Bind()
	p.SetFloat("scale", 2)
	assert.NoError(t, p.Err(), "a setter on the bound program clears the violation")
	assert.Equal(t, 1, d.Calls("Uniform1f"))
}
