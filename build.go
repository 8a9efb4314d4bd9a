package sfx_installer

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// Builder turns files into a self-extracting executable.
type Builder struct {
	Config   *Config
	Compiler Compiler
	// StubSource overrides the stub source from the resource box.
	StubSource []byte
	// Stub is the stub of the last successful Build.
	Stub *Stub
}

// NewBuilder returns a Builder using gcc, or whatever Config.Compiler names.
func NewBuilder(config *Config) *Builder {
	if config == nil {
		config = ConfigNew()
	}
	return &Builder{
		Config:   config,
		Compiler: GCC{Path: config.Compiler},
	}
}

// Build archives the requested entries, builds a stub that knows its own size and writes
// the two, concatenated, to output. All intermediate files live in a work directory below
// Config.TmpDir, which is removed on every exit path. Nothing is written to output unless
// every step succeeds.
func (b *Builder) Build(req ArchiveRequest, output string) (*Artifact, error) {
	if len(req.Entries) == 0 {
		return nil, configErrorf("", "no files specified for the archive")
	}
	if err := b.Config.Validate(); err != nil {
		return nil, err
	}
	if err := preflight(req, output); err != nil {
		return nil, err
	}
	workdir, err := os.MkdirTemp(b.Config.TmpDir, "sfx-")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create work directory")
	}
	defer os.RemoveAll(workdir)

	archiveName := "payload.tar"
	if b.Config.Compression == CompressionGzip {
		archiveName += ".gz"
	}
	archive, err := b.Archive(req, filepath.Join(workdir, archiveName))
	if err != nil {
		return nil, err
	}
	source := b.StubSource
	if source == nil {
		if source, err = GetResource(StubSourceName); err != nil {
			return nil, err
		}
	}
	stub, err := b.BuildStub(workdir, source)
	if err != nil {
		return nil, err
	}
	log.Printf("Stub size matches %d", stub.Size)
	artifact, err := Assemble(stub.Path, archive.Path, output, b.Config.ChunkSize)
	if err != nil {
		return nil, err
	}
	artifact.Entries = archive.Members
	if b.Config.Manifest {
		manifest := NewBuildManifest(artifact, stub, b.Config.Compression)
		if err := WriteManifest(manifest, ManifestPath(output)); err != nil {
			os.Remove(output)
			return nil, err
		}
	}
	b.Stub = stub
	log.Printf("Created '%s' (%d bytes)", output, artifact.Size)
	return artifact, nil
}

// preflight checks that the output directory is writeable and, if its free space is
// known, large enough for the uncompressed input.
func preflight(req ArchiveRequest, output string) error {
	dir := filepath.Dir(output)
	if !osFileWriteAccess(dir) {
		return errors.Errorf("output directory '%s' is not writeable", dir)
	}
	var needed int64
	for _, entry := range req.Entries {
		size, err := inputSize(entry.Path)
		if err != nil {
			return errors.Wrapf(err, "unable to read '%s'", entry.Path)
		}
		needed += size
	}
	if available := osDiskSpace(dir); available >= 0 && available < needed {
		return errors.Errorf("not enough space in '%s': %d bytes needed, %d available", dir, needed, available)
	}
	return nil
}

func inputSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			info, err := d.Info()
			if err != nil {
				return err
			}
			size += info.Size()
		}
		return nil
	})
	return size, err
}
