package opengl

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// ContextConfig describes the window backing an OpenGL context.
type ContextConfig struct {
	Width   int
	Height  int
	Title   string
	Visible bool // false creates a hidden window, enough for compiling shaders
	VSync   bool
}

// Context is a GLFW window with a current OpenGL 4.1 core context.
type Context struct {
	Window *glfw.Window
}

// NewContext initializes GLFW, creates a window, makes its context current
// and loads the OpenGL function pointers.
//
// GLFW must run on the main thread: call runtime.LockOSThread from an init
// function of the main package.
func NewContext(cfg ContextConfig) (*Context, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}

	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	if cfg.Visible {
		glfw.WindowHint(glfw.Visible, glfw.True)
	} else {
		glfw.WindowHint(glfw.Visible, glfw.False)
	}

	width, height := cfg.Width, cfg.Height
	if width <= 0 || height <= 0 {
		width, height = 64, 64
	}

	window, err := glfw.CreateWindow(width, height, cfg.Title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("create window: %w", err)
	}
	window.MakeContextCurrent()
	if cfg.VSync {
		glfw.SwapInterval(1)
	}

	if err := gl.Init(); err != nil {
		window.Destroy()
		glfw.Terminate()
		return nil, fmt.Errorf("gl init: %w", err)
	}

	return &Context{Window: window}, nil
}

// Destroy closes the window and terminates GLFW.
func (c *Context) Destroy() {
	c.Window.Destroy()
	glfw.Terminate()
}
