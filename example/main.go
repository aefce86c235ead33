// Example draws a spinning triangle with a shader program loaded from a
// manifest, and reloads the program whenever its sources change.
//
// Prerequisites:
//
//	Install devbox: https://www.jetify.com/devbox
//	devbox shell              # enter the dev environment (provides Go + OpenGL/X11 headers)
//	go run ./example/         # run this example from the repository root
//
// Edit example/shaders/triangle.frag while it runs; a broken edit is
// reported on stderr and the last working program keeps drawing.
package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/go-theft-auto/glshader"
	"github.com/go-theft-auto/glshader/backend/opengl"
)

const (
	windowWidth  = 800
	windowHeight = 600
	windowTitle  = "glshader example"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

func main() {
	manifest := flag.String("manifest", "example/shaders/shaders.toml", "shader manifest")
	verbose := flag.Bool("v", false, "verbose logging")
	flag.Parse()

	glshader.SetVerbose(*verbose)

	if err := run(*manifest); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// vertex is the triangle vertex layout: position then color.
type vertex struct {
	Pos   [2]float32
	Color [3]float32
}

var triangle = []vertex{
	{Pos: [2]float32{0, 0.6}, Color: [3]float32{1, 0.2, 0.2}},
	{Pos: [2]float32{-0.6, -0.4}, Color: [3]float32{0.2, 1, 0.2}},
	{Pos: [2]float32{0.6, -0.4}, Color: [3]float32{0.2, 0.2, 1}},
}

func run(manifest string) error {
	ctx, err := opengl.NewContext(opengl.ContextConfig{
		Width:   windowWidth,
		Height:  windowHeight,
		Title:   windowTitle,
		Visible: true,
		VSync:   true,
	})
	if err != nil {
		return err
	}
	defer ctx.Destroy()
	window := ctx.Window

	d := opengl.NewDriver()
	lib, err := glshader.LoadLibrary(d, manifest, glshader.WithStrictBinding(true))
	if err != nil {
		return fmt.Errorf("load shaders: %w", err)
	}
	defer lib.Delete()

	watcher, err := glshader.NewWatcher(lib)
	if err != nil {
		return fmt.Errorf("watch shaders: %w", err)
	}
	defer watcher.Close()

	prog := lib.MustGet("triangle")

	var vao, vbo uint32
	gl.GenVertexArrays(1, &vao)
	defer gl.DeleteVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.GenBuffers(1, &vbo)
	defer gl.DeleteBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(triangle)*int(unsafe.Sizeof(vertex{})), gl.Ptr(triangle), gl.STATIC_DRAW)

	stride := int32(unsafe.Sizeof(vertex{}))
	gl.VertexAttribPointerWithOffset(0, 2, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, unsafe.Offsetof(vertex{}.Color))
	gl.EnableVertexAttribArray(1)
	gl.BindVertexArray(0)

	for !window.ShouldClose() {
		glfw.PollEvents()

		// Failures are logged by the watcher; the previous program keeps drawing.
		_ = watcher.Poll()

		w, h := window.GetFramebufferSize()
		gl.Viewport(0, 0, int32(w), int32(h))
		gl.ClearColor(0.12, 0.12, 0.14, 1.0)
		gl.Clear(gl.COLOR_BUFFER_BIT)

		aspect := float32(w) / float32(max(h, 1))
		t := float32(glfw.GetTime())

		err := glshader.WithProgram(prog, func(p *glshader.Program) error {
			p.SetMat4("projection", mgl32.Ortho2D(-aspect, aspect, -1, 1)).
				SetMat4("model", mgl32.HomogRotate3DZ(t)).
				SetVec4("tint", mgl32.Vec4{1, 1, 1, 1}).
				SetFloat("time", t)
			if err := p.Err(); err != nil {
				return err
			}

			gl.BindVertexArray(vao)
			gl.DrawArrays(gl.TRIANGLES, 0, int32(len(triangle)))
			gl.BindVertexArray(0)
			return nil
		})
		if err != nil {
			return fmt.Errorf("draw: %w", err)
		}

		window.SwapBuffers()
	}

	return nil
}
