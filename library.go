package glshader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// ManifestEntry names one program and its source files.
type ManifestEntry struct {
	Name     string `toml:"name"`
	Vertex   string `toml:"vertex"`
	Fragment string `toml:"fragment"`
}

// Manifest lists the programs of a Library.
//
//	[[program]]
//	name = "sprite"
//	vertex = "sprite.vert"
//	fragment = "sprite.frag"
type Manifest struct {
	Programs []ManifestEntry `toml:"program"`
}

// ReadManifest parses a TOML manifest. Relative source paths are resolved
// against the manifest's directory.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("manifest %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	for i := range m.Programs {
		e := &m.Programs[i]
		if !filepath.IsAbs(e.Vertex) {
			e.Vertex = filepath.Join(dir, e.Vertex)
		}
		if !filepath.IsAbs(e.Fragment) {
			e.Fragment = filepath.Join(dir, e.Fragment)
		}
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	if len(m.Programs) == 0 {
		return errors.New("no programs")
	}
	seen := make(map[string]bool, len(m.Programs))
	for i, e := range m.Programs {
		switch {
		case e.Name == "":
			return fmt.Errorf("program %d: missing name", i)
		case seen[e.Name]:
			return fmt.Errorf("program %q: duplicate name", e.Name)
		case e.Vertex == "" || e.Fragment == "":
			return fmt.Errorf("program %q: vertex and fragment paths are required", e.Name)
		}
		seen[e.Name] = true
	}
	return nil
}

// Library is a named set of programs loaded from a manifest.
type Library struct {
	manifest *Manifest
	programs map[string]*Program
}

// LoadLibrary reads the manifest at path and loads every program it names.
// On the first failure the programs loaded so far are deleted.
func LoadLibrary(d Driver, path string, opts ...Option) (*Library, error) {
	m, err := ReadManifest(path)
	if err != nil {
		return nil, err
	}
	return NewLibrary(d, m, opts...)
}

// NewLibrary loads every program of m.
func NewLibrary(d Driver, m *Manifest, opts ...Option) (*Library, error) {
	lib := &Library{
		manifest: m,
		programs: make(map[string]*Program, len(m.Programs)),
	}

	for _, e := range m.Programs {
		p, err := NewFromFiles(d, e.Vertex, e.Fragment, opts...)
		if err != nil {
			p.Delete()
			lib.Delete()
			return nil, fmt.Errorf("program %q: %w", e.Name, err)
		}
		lib.programs[e.Name] = p
	}
	return lib, nil
}

// Get returns the named program.
func (l *Library) Get(name string) (*Program, error) {
	p, ok := l.programs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProgram, name)
	}
	return p, nil
}

// MustGet is like Get but panics for unknown names.
func (l *Library) MustGet(name string) *Program {
	p, err := l.Get(name)
	if err != nil {
		panic(err)
	}
	return p
}

// Names returns the program names in manifest order.
func (l *Library) Names() []string {
	names := make([]string, 0, len(l.manifest.Programs))
	for _, e := range l.manifest.Programs {
		if _, ok := l.programs[e.Name]; ok {
			names = append(names, e.Name)
		}
	}
	return names
}

// Reload reloads the named program from its files.
func (l *Library) Reload(name string) error {
	p, err := l.Get(name)
	if err != nil {
		return err
	}
	if err := p.Reload(); err != nil {
		return fmt.Errorf("program %q: %w", name, err)
	}
	return nil
}

// programsUsing returns the names of programs whose sources include path.
func (l *Library) programsUsing(path string) []string {
	var names []string
	for _, e := range l.manifest.Programs {
		if filepath.Clean(e.Vertex) == path || filepath.Clean(e.Fragment) == path {
			names = append(names, e.Name)
		}
	}
	return names
}

// sourceDirs returns the distinct directories holding program sources.
func (l *Library) sourceDirs() []string {
	var dirs []string
	for _, e := range l.manifest.Programs {
		for _, src := range []string{e.Vertex, e.Fragment} {
			dir := filepath.Dir(filepath.Clean(src))
			if !slices.Contains(dirs, dir) {
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// Delete deletes every program in the library.
func (l *Library) Delete() {
	for name, p := range l.programs {
		p.Delete()
		delete(l.programs, name)
	}
}
