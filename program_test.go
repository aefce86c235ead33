package glshader_test

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-theft-auto/glshader"
	"github.com/go-theft-auto/glshader/internal/fakegl"
)

const (
	basicVert    = "testdata/basic.vert"
	basicFrag    = "testdata/basic.frag"
	brokenFrag   = "testdata/broken.frag"
	mismatchFrag = "testdata/mismatch.frag"
)

// newProgram loads the basic program against a fresh fake driver and
// registry, and deletes it when the test ends.
func newProgram(t *testing.T, opts ...glshader.Option) (*glshader.Program, *fakegl.Driver, *glshader.Registry) {
	t.Helper()
	d := fakegl.New()
	reg := glshader.NewRegistry()
	opts = append([]glshader.Option{glshader.WithRegistry(reg)}, opts...)

	p, err := glshader.NewFromFiles(d, basicVert, basicFrag, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Delete)
	return p, d, reg
}

func TestProgram_NewIsEmpty(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d)

	assert.False(t, p.Valid())
	assert.Zero(t, p.Handle())
	assert.Zero(t, d.Calls("CreateProgram"), "no driver program before Link")
}

func TestProgram_LoadFiles(t *testing.T) {
	p, d, reg := newProgram(t)

	assert.True(t, p.Valid())
	assert.True(t, d.IsProgram(p.Handle()))
	assert.Equal(t, int32(1), p.Status())
	assert.Same(t, p, reg.Lookup(p.Handle()))
	assert.Zero(t, d.LiveShaders(), "compiled objects are released after link")

	vert, frag := p.Paths()
	assert.Equal(t, basicVert, vert)
	assert.Equal(t, basicFrag, frag)

	// Not bound unless asked.
	assert.Zero(t, d.CurrentProgram())
}

func TestProgram_LoadFilesAndUse(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d, glshader.WithRegistry(glshader.NewRegistry()))
	t.Cleanup(p.Delete)

	require.NoError(t, p.LoadFiles(basicVert, basicFrag, true))
	assert.Equal(t, p.Handle(), d.CurrentProgram())
}

func TestProgram_BindThenCurrent(t *testing.T) {
	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, basicVert, basicFrag)
	require.NoError(t, err)
	t.Cleanup(p.Delete)

	other, err := glshader.NewFromFiles(d, basicVert, basicFrag)
	require.NoError(t, err)
	t.Cleanup(other.Delete)

	p.Bind()
	assert.Same(t, p, glshader.Current(d))

	other.Bind()
	assert.Same(t, other, glshader.Current(d))
}

func TestProgram_CurrentUnregistered(t *testing.T) {
	p, d, reg := newProgram(t)

	assert.Nil(t, reg.Current(d), "nothing bound")

	p.Bind()
	assert.Same(t, p, reg.Current(d))
	assert.Nil(t, glshader.Current(d), "default registry does not know the program")
}

func TestProgram_FragmentSyntaxError(t *testing.T) {
	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, basicVert, brokenFrag, glshader.WithRegistry(glshader.NewRegistry()))

	require.Error(t, err)
	assert.ErrorIs(t, err, glshader.ErrCompile)

	var compileErr *glshader.CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, glshader.StageFragment, compileErr.Stage)
	assert.Zero(t, compileErr.Status)
	assert.Contains(t, compileErr.Log, "syntax error")
	assert.Contains(t, err.Error(), "fragment shader compilation failed")

	require.NotNil(t, p)
	assert.False(t, p.Valid())
	assert.Zero(t, p.Handle())
	assert.Zero(t, d.LiveShaders(), "vertex object is discarded")
	assert.Zero(t, d.LivePrograms())
}

func TestProgram_LinkMismatch(t *testing.T) {
	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, basicVert, mismatchFrag, glshader.WithRegistry(glshader.NewRegistry()))

	require.Error(t, err)
	assert.ErrorIs(t, err, glshader.ErrLink)
	assert.NotErrorIs(t, err, glshader.ErrCompile)

	var linkErr *glshader.LinkError
	require.ErrorAs(t, err, &linkErr)
	assert.Contains(t, linkErr.Log, "vColor")
	assert.Contains(t, linkErr.Log, "vTexCoord")

	assert.False(t, p.Valid())
	assert.Zero(t, d.LivePrograms(), "failed program object is released")
	assert.Zero(t, d.LiveShaders())
}

func TestProgram_MissingFile(t *testing.T) {
	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, basicVert, "testdata/nope.frag")

	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.Contains(t, err.Error(), "read fragment shader")
	assert.False(t, p.Valid())
	assert.Zero(t, d.Calls("CreateShader"), "nothing compiled before both files are read")
}

func TestProgram_CompileAndLink(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d, glshader.WithRegistry(glshader.NewRegistry()))
	t.Cleanup(p.Delete)

	vert, err := os.ReadFile(basicVert)
	require.NoError(t, err)
	frag, err := os.ReadFile(basicFrag)
	require.NoError(t, err)

	require.NoError(t, p.Compile(string(vert), glshader.StageVertex))
	assert.Equal(t, 1, d.LiveShaders())
	assert.False(t, p.Valid(), "compiled but not linked")

	require.NoError(t, p.Compile(string(frag), glshader.StageFragment))
	require.NoError(t, p.Link())
	assert.True(t, p.Valid())
	assert.Equal(t, 2, d.Calls("DetachShader"))
	assert.Zero(t, d.LiveShaders())
}

func TestProgram_LoadSourceDiscardsQueued(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d, glshader.WithRegistry(glshader.NewRegistry()))
	t.Cleanup(p.Delete)

	vert, err := os.ReadFile(basicVert)
	require.NoError(t, err)
	frag, err := os.ReadFile(basicFrag)
	require.NoError(t, err)

	require.NoError(t, p.Compile(string(vert), glshader.StageVertex))
	require.Equal(t, 1, d.LiveShaders())

	require.NoError(t, p.LoadSource(string(vert), string(frag), false))
	assert.Equal(t, 2, d.Calls("AttachShader"), "only the new pair is linked")
	assert.Zero(t, d.LiveShaders())
}

func TestProgram_LinkWithoutStages(t *testing.T) {
	p := glshader.New(fakegl.New())
	assert.ErrorIs(t, p.Link(), glshader.ErrNoStages)
}

func TestProgram_CompileErrorKeepsPending(t *testing.T) {
	d := fakegl.New()
	p := glshader.New(d, glshader.WithRegistry(glshader.NewRegistry()))

	vert, err := os.ReadFile(basicVert)
	require.NoError(t, err)
	require.NoError(t, p.Compile(string(vert), glshader.StageVertex))

	err = p.Compile("void main() {", glshader.StageFragment)
	assert.ErrorIs(t, err, glshader.ErrCompile)
	assert.Equal(t, 1, d.LiveShaders(), "only the failed object is released")

	p.Delete()
	assert.Zero(t, d.LiveShaders())
}

func TestProgram_Relink(t *testing.T) {
	p, d, reg := newProgram(t)

	p.Bind()
	old := p.Handle()
	require.Equal(t, int32(0), p.UniformLocation("projection"))

	require.NoError(t, p.Reload())

	assert.NotEqual(t, old, p.Handle())
	assert.False(t, d.IsProgram(old), "old handle is released")
	assert.Nil(t, reg.Lookup(old))
	assert.Same(t, p, reg.Lookup(p.Handle()))
	assert.Equal(t, p.Handle(), d.CurrentProgram(), "new handle replaces the active one")

	before := d.Calls("UniformLocation")
	p.UniformLocation("projection")
	assert.Equal(t, before+1, d.Calls("UniformLocation"), "cache is cleared on relink")
}

func TestProgram_FailedReloadKeepsProgram(t *testing.T) {
	dir := t.TempDir()
	vert := copyFile(t, basicVert, dir)
	frag := copyFile(t, basicFrag, dir)

	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, vert, frag, glshader.WithRegistry(glshader.NewRegistry()))
	require.NoError(t, err)
	t.Cleanup(p.Delete)
	handle := p.Handle()

	writeFile(t, frag, "void main() {")
	err = p.Reload()
	assert.ErrorIs(t, err, glshader.ErrCompile)
	assert.Equal(t, handle, p.Handle())
	assert.True(t, d.IsProgram(handle))
	assert.Equal(t, 1, d.LivePrograms())
}

func TestProgram_ReloadAfterFailedLoad(t *testing.T) {
	dir := t.TempDir()
	vert := copyFile(t, basicVert, dir)
	frag := filepath.Join(dir, "basic.frag")
	writeFile(t, frag, "void main() {")

	d := fakegl.New()
	p, err := glshader.NewFromFiles(d, vert, frag, glshader.WithRegistry(glshader.NewRegistry()))
	require.ErrorIs(t, err, glshader.ErrCompile)
	t.Cleanup(p.Delete)

	src, err := os.ReadFile(basicFrag)
	require.NoError(t, err)
	writeFile(t, frag, string(src))

	require.NoError(t, p.Reload())
	assert.True(t, p.Valid())
}

func TestProgram_ReloadWithoutFiles(t *testing.T) {
	p := glshader.New(fakegl.New())
	assert.ErrorIs(t, p.Reload(), glshader.ErrNoSource)
}

func TestProgram_Delete(t *testing.T) {
	d := fakegl.New()
	reg := glshader.NewRegistry()
	p, err := glshader.NewFromFiles(d, basicVert, basicFrag, glshader.WithRegistry(reg))
	require.NoError(t, err)
	handle := p.Handle()

	p.Delete()
	assert.False(t, p.Valid())
	assert.False(t, d.IsProgram(handle))
	assert.Zero(t, reg.Len())

	p.Delete()
	assert.Equal(t, 1, d.Calls("DeleteProgram"), "second Delete is a no-op")
}

func TestProgram_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	_, err := glshader.NewFromFiles(fakegl.New(), basicVert, brokenFrag, glshader.WithLogger(log))
	require.Error(t, err)
	assert.Contains(t, buf.String(), "shader compilation failed")
	assert.Contains(t, buf.String(), "stage=fragment")
}

func TestCompileError_Unwrap(t *testing.T) {
	err := error(&glshader.CompileError{Stage: glshader.StageVertex, Log: "0:1(1): error: oops\n\x00"})
	assert.True(t, errors.Is(err, glshader.ErrCompile))
	assert.False(t, errors.Is(err, glshader.ErrLink))
	assert.Equal(t, "vertex shader compilation failed: 0:1(1): error: oops", err.Error())
}

func TestStageFromPath(t *testing.T) {
	tests := []struct {
		path  string
		stage glshader.Stage
		ok    bool
	}{
		{"a.vert", glshader.StageVertex, true},
		{"dir/a.VS", glshader.StageVertex, true},
		{"a.frag", glshader.StageFragment, true},
		{"a.fs", glshader.StageFragment, true},
		{"a.geom", glshader.StageGeometry, true},
		{"a.glsl", 0, false},
	}
	for _, tt := range tests {
		stage, ok := glshader.StageFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		if tt.ok {
			assert.Equal(t, tt.stage, stage, tt.path)
		}
	}
}

func copyFile(t *testing.T, src, dir string) string {
	t.Helper()
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	dst := filepath.Join(dir, filepath.Base(src))
	require.NoError(t, os.WriteFile(dst, data, 0o644))
	return dst
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}
