// Package nifvertest synthesizes minimal, internally consistent NIF
// headers across a declarative version matrix, for use by pkg/nif's
// round-trip property tests. It is a test-only helper, not part of the
// core.
package nifvertest

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/samcharles93/gonif/pkg/nif"
)

// Case describes one (file, user, stream) combination to exercise.
type Case struct {
	Name     string `yaml:"name"`
	A        uint8  `yaml:"a"`
	B        uint8  `yaml:"b"`
	C        uint8  `yaml:"c"`
	D        uint8  `yaml:"d"`
	User     uint32 `yaml:"user"`
	Stream   uint32 `yaml:"stream"`
	Bethesda bool   `yaml:"bethesda"`
}

type matrixFile struct {
	Versions []Case `yaml:"versions"`
}

//go:embed testdata/versions.yaml
var defaultMatrix []byte

// LoadDefault returns the built-in version matrix fixture.
func LoadDefault() ([]Case, error) {
	return Load(defaultMatrix)
}

// Load parses a version matrix fixture from raw YAML bytes.
func Load(data []byte) ([]Case, error) {
	var mf matrixFile
	if err := yaml.Unmarshal(data, &mf); err != nil {
		return nil, fmt.Errorf("nifvertest: parse matrix: %w", err)
	}
	return mf.Versions, nil
}

// Version returns the nif.Version this case describes.
func (c Case) Version() nif.Version {
	v := nif.NewVersion(nif.ToFile(c.A, c.B, c.C, c.D))
	v.SetUser(c.User)
	if c.Bethesda {
		v.SetStream(c.Stream)
	}
	return v
}

// Synthesize builds a minimal graph for this version: an empty block
// array, with creator/export-info populated on the Bethesda branch. It is
// a round-trip starting point, not a realistic scene.
func Synthesize(c Case) *nif.Graph {
	g := nif.NewGraph(c.Version())
	if c.Bethesda {
		g.Header.SetCreatorInfo("nifvertest")
		g.Header.SetExportInfo("generated fixture")
	}
	return g
}

// RoundTrip serializes a synthesized graph for c, re-parses the result
// against registry, and serializes again, returning both buffers so
// callers can assert byte-identity between the first write and the
// second.
func RoundTrip(c Case, registry *nif.Registry) (written, rewritten []byte, err error) {
	g := Synthesize(c)
	f := &nif.File{Graph: g}

	written, err = f.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("nifvertest: write %s: %w", c.Name, err)
	}

	rf, err := nif.ReadBytes(written, registry)
	if err != nil {
		return written, nil, fmt.Errorf("nifvertest: reparse %s: %w", c.Name, err)
	}
	rewritten, err = rf.Bytes()
	if err != nil {
		return written, nil, fmt.Errorf("nifvertest: rewrite %s: %w", c.Name, err)
	}
	return written, rewritten, nil
}
