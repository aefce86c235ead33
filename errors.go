package glshader

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrCompile matches every *CompileError.
	ErrCompile = errors.New("shader compilation failed")
	// ErrLink matches every *LinkError.
	ErrLink = errors.New("shader program linking failed")
	// ErrNoStages is returned by Link when nothing was compiled.
	ErrNoStages = errors.New("no compiled shader stages to link")
	// ErrUnknownProgram is returned by Library lookups for names not in the manifest.
	ErrUnknownProgram = errors.New("unknown shader program")
	// ErrUnboundProgram is recorded by strict-binding uniform setters.
	ErrUnboundProgram = errors.New("uniform set on a program that is not bound")
)

// CompileError reports a driver-side compile failure for one stage.
type CompileError struct {
	Stage  Stage
	Status int32
	Log    string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("%s shader compilation failed: %s", e.Stage, strings.TrimRight(e.Log, "\x00\n "))
}

// Is reports whether target is ErrCompile.
func (e *CompileError) Is(target error) bool { return target == ErrCompile }

// LinkError reports a driver-side link failure.
type LinkError struct {
	Status int32
	Log    string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader program linking failed: %s", strings.TrimRight(e.Log, "\x00\n "))
}

// Is reports whether target is ErrLink.
func (e *LinkError) Is(target error) bool { return target == ErrLink }
