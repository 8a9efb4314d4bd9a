package sfx_installer

import (
	"encoding/hex"
	"hash"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// Artifact is a finished self-extracting executable: the stub followed directly by the
// archive. Digest is the hex BLAKE2b-256 of the whole file.
type Artifact struct {
	Path        string
	StubSize    int64
	ArchiveSize int64
	Size        int64
	Digest      string
	Entries     []string
}

// HashWriter passes writes through to a writer while hashing them.
type HashWriter struct {
	writer io.Writer
	hasher hash.Hash
	count  int64
}

func NewHashWriter(dest io.Writer, hasher hash.Hash) *HashWriter {
	return &HashWriter{
		writer: dest,
		hasher: hasher,
	}
}

func (w *HashWriter) Write(b []byte) (int, error) {
	k, err := w.writer.Write(b)
	w.hasher.Write(b[:k])
	w.count += int64(k)
	return k, err
}

func (w *HashWriter) Sum() []byte {
	return w.hasher.Sum(nil)
}

// Count returns the number of bytes written so far.
func (w *HashWriter) Count() int64 {
	return w.count
}

// Assemble concatenates stub and archive into outputPath, copying chunkSize bytes at a
// time, and makes it executable. The result is written to a temporary file next to
// outputPath and renamed into place, so a failure never leaves a partial output.
func Assemble(stubPath, archivePath, outputPath string, chunkSize int) (*Artifact, error) {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	log.Printf("Concatenating '%s' and '%s' into '%s'", stubPath, archivePath, outputPath)
	tmp, err := os.CreateTemp(filepath.Dir(outputPath), ".sfx-*")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create output")
	}
	tmpPath := tmp.Name()
	done := false
	defer func() {
		if !done {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()
	hasher, err := blake2b.New256(nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize BLAKE2b hash")
	}
	out := NewHashWriter(tmp, hasher)
	buf := make([]byte, chunkSize)
	artifact := &Artifact{Path: outputPath}
	if artifact.StubSize, err = appendFile(out, stubPath, buf); err != nil {
		return nil, err
	}
	if artifact.ArchiveSize, err = appendFile(out, archivePath, buf); err != nil {
		return nil, err
	}
	if err = tmp.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to close output")
	}
	if err = os.Chmod(tmpPath, 0755); err != nil {
		return nil, errors.Wrap(err, "unable to make output executable")
	}
	if err = os.Rename(tmpPath, outputPath); err != nil {
		return nil, errors.Wrapf(err, "unable to move output to '%s'", outputPath)
	}
	done = true
	artifact.Size = out.Count()
	artifact.Digest = hex.EncodeToString(out.Sum())
	return artifact, nil
}

func appendFile(dest io.Writer, path string, buf []byte) (int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrapf(err, "unable to open '%s'", path)
	}
	defer f.Close()
	n, err := io.CopyBuffer(dest, onlyReader{f}, buf)
	if err != nil {
		return n, errors.Wrapf(err, "unable to copy '%s'", path)
	}
	return n, nil
}

// onlyReader hides WriterTo/ReaderFrom so that io.CopyBuffer uses the given buffer.
type onlyReader struct {
	io.Reader
}
