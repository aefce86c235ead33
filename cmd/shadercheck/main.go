// Command shadercheck compiles and links GLSL programs against the local
// OpenGL driver and reports compile and link errors.
//
// Usage:
//
//	shadercheck pair sprite.vert sprite.frag
//	shadercheck lib assets/shaders.toml
//
// A hidden GLFW window provides the OpenGL 4.1 context.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/go-theft-auto/glshader"
	"github.com/go-theft-auto/glshader/backend/opengl"
)

func init() {
	// GLFW must run on the main thread.
	runtime.LockOSThread()
}

// errFailed is returned after failures were already reported.
var errFailed = errors.New("shader check failed")

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "shadercheck",
		Short:         "Compile and link GLSL shader programs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			glshader.SetVerbose(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log driver calls")

	root.AddCommand(newPairCmd(), newLibCmd())
	return root
}

func newPairCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pair VERT FRAG",
		Short: "Check one vertex and fragment shader pair",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDriver(func(d glshader.Driver) error {
				p, err := glshader.NewFromFiles(d, args[0], args[1])
				defer p.Delete()
				return report(cmd.OutOrStdout(), args[0]+" + "+args[1], p, err)
			})
		},
	}
}

func newLibCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lib MANIFEST",
		Short: "Check every program of a TOML manifest",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := glshader.ReadManifest(args[0])
			if err != nil {
				return err
			}

			return withDriver(func(d glshader.Driver) error {
				var failed bool
				// Check each program on its own so every failure is reported,
				// unlike LoadLibrary which stops at the first.
				for _, e := range m.Programs {
					p, err := glshader.NewFromFiles(d, e.Vertex, e.Fragment)
					if report(cmd.OutOrStdout(), e.Name, p, err) != nil {
						failed = true
					}
					p.Delete()
				}
				if failed {
					return errFailed
				}
				return nil
			})
		},
	}
}

func withDriver(fn func(d glshader.Driver) error) error {
	ctx, err := opengl.NewContext(opengl.ContextConfig{Title: "shadercheck"})
	if err != nil {
		return err
	}
	defer ctx.Destroy()

	d := opengl.NewDriver()
	fmt.Fprintln(os.Stderr, "driver:", d.Info())
	return fn(d)
}

func report(w io.Writer, name string, p *glshader.Program, err error) error {
	var compileErr *glshader.CompileError
	var linkErr *glshader.LinkError

	switch {
	case err == nil:
		fmt.Fprintf(w, "ok    %s (program %d)\n", name, p.Handle())
		return nil
	case errors.As(err, &compileErr):
		fmt.Fprintf(w, "FAIL  %s: %s stage does not compile\n%s\n", name, compileErr.Stage, compileErr.Log)
	case errors.As(err, &linkErr):
		fmt.Fprintf(w, "FAIL  %s: link failed\n%s\n", name, linkErr.Log)
	default:
		fmt.Fprintf(w, "FAIL  %s: %v\n", name, err)
	}
	return errFailed
}
