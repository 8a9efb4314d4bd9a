package sfx_installer

import (
	"os"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

const (
	ManifestVersion   = 1
	ManifestExtension = ".manifest"
)

// BuildManifest records how an artifact was built. It is written beside the artifact,
// never into it.
type BuildManifest struct {
	Version     uint16   `cbor:"0,keyasint"`
	Output      string   `cbor:"1,keyasint"`
	StubSize    int64    `cbor:"2,keyasint"`
	ArchiveSize int64    `cbor:"3,keyasint"`
	Size        int64    `cbor:"4,keyasint"`
	Digest      string   `cbor:"5,keyasint"`
	Compression string   `cbor:"6,keyasint"`
	Passes      []int64  `cbor:"7,keyasint,omitempty"`
	Entries     []string `cbor:"8,keyasint,omitempty"`
}

// ManifestPath returns the sidecar path for an artifact.
func ManifestPath(artifactPath string) string {
	return artifactPath + ManifestExtension
}

// NewBuildManifest collects the manifest of a finished build.
func NewBuildManifest(artifact *Artifact, stub *Stub, compression string) *BuildManifest {
	m := &BuildManifest{
		Version:     ManifestVersion,
		Output:      artifact.Path,
		StubSize:    artifact.StubSize,
		ArchiveSize: artifact.ArchiveSize,
		Size:        artifact.Size,
		Digest:      artifact.Digest,
		Compression: compression,
		Entries:     artifact.Entries,
	}
	if stub != nil {
		m.Passes = stub.Passes
	}
	return m
}

// WriteManifest encodes m to path.
func WriteManifest(m *BuildManifest, path string) error {
	data, err := cbor.Marshal(m)
	if err != nil {
		return errors.Wrap(err, "failed to marshal manifest to CBOR")
	}
	return errors.Wrapf(os.WriteFile(path, data, 0644), "unable to write manifest '%s'", path)
}

// ReadManifest decodes the manifest at path.
func ReadManifest(path string) (*BuildManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read manifest '%s'", path)
	}
	m := &BuildManifest{}
	if err := cbor.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, "manifest '%s' is corrupt", path)
	}
	if m.Version != ManifestVersion {
		return nil, errors.Errorf("manifest '%s' has unsupported version %d", path, m.Version)
	}
	return m, nil
}
