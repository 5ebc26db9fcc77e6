package blockgraph

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/topostim/topostim/pkg/convention"
	"github.com/topostim/topostim/pkg/errors"
	"github.com/topostim/topostim/pkg/grid"
)

// Manifest is the on-disk TOML form of a block graph:
//
//	name = "memory"
//
//	[[cubes]]
//	position = [0, 0, 0]
//	kind = "ZXZ"
//
//	[[pipes]]
//	source = [0, 0, 0]
//	sink = [0, 0, 1]
//	# kind defaults to the source cube's kind with the axis opened
type Manifest struct {
	Name  string         `toml:"name"`
	Cubes []ManifestCube `toml:"cubes"`
	Pipes []ManifestPipe `toml:"pipes"`
}

// ManifestCube is one cube entry.
type ManifestCube struct {
	Position []int64 `toml:"position"`
	Kind     string  `toml:"kind"`
}

// ManifestPipe is one pipe entry.
type ManifestPipe struct {
	Source []int64 `toml:"source"`
	Sink   []int64 `toml:"sink"`
	Kind   string  `toml:"kind"`
}

// ParseManifest decodes a TOML manifest and builds the block graph it
// describes.
func ParseManifest(data []byte) (*BlockGraph, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidManifest, "cannot decode manifest")
	}
	return m.Build()
}

// LoadManifest reads and parses a TOML manifest file. The filename must be a
// plain basename; the directory is passed separately so callers cannot
// smuggle path components through user input.
func LoadManifest(dir, filename string) (*BlockGraph, error) {
	if err := errors.ValidateManifestFilename(filename); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeNotFound, "cannot read manifest %q", filename)
	}
	return ParseManifest(data)
}

// Build constructs the block graph the manifest describes.
func (m *Manifest) Build() (*BlockGraph, error) {
	if m.Name == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "manifest has no name")
	}
	g := New(m.Name)
	for i, c := range m.Cubes {
		pos, err := position(c.Position)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidManifest, "cube %d", i)
		}
		if err := g.AddCube(pos, convention.Kind(c.Kind)); err != nil {
			return nil, errors.Wrap(err, errors.GetCode(err), "cube %d", i)
		}
	}
	for i, p := range m.Pipes {
		src, err := position(p.Source)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidManifest, "pipe %d source", i)
		}
		sink, err := position(p.Sink)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeInvalidManifest, "pipe %d sink", i)
		}
		if err := g.AddPipe(src, sink, convention.Kind(p.Kind)); err != nil {
			return nil, errors.Wrap(err, errors.GetCode(err), "pipe %d", i)
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// ToManifest renders the graph back into its manifest form.
func (g *BlockGraph) ToManifest() *Manifest {
	m := &Manifest{Name: g.name}
	for _, c := range g.Cubes() {
		m.Cubes = append(m.Cubes, ManifestCube{
			Position: []int64{c.Position.X, c.Position.Y, c.Position.Z},
			Kind:     string(c.Kind),
		})
	}
	for _, p := range g.Pipes() {
		m.Pipes = append(m.Pipes, ManifestPipe{
			Source: []int64{p.Source.X, p.Source.Y, p.Source.Z},
			Sink:   []int64{p.Sink.X, p.Sink.Y, p.Sink.Z},
			Kind:   string(p.Kind),
		})
	}
	return m
}

func position(coords []int64) (grid.Position3D, error) {
	if len(coords) != 3 {
		return grid.Position3D{}, errors.New(errors.ErrCodeInvalidManifest,
			"position needs exactly 3 coordinates, got %d", len(coords))
	}
	return grid.Position3D{X: coords[0], Y: coords[1], Z: coords[2]}, nil
}
