package sfx_installer

import (
	"archive/tar"
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

var gzipMagic = []byte{0x1f, 0x8b}

// PayloadEntry is a member of the archive appended to a stub.
type PayloadEntry struct {
	Name     string
	Typeflag byte
	Mode     int64
	Size     int64
	Linkname string
	Content  []byte
}

// ReadPayload reads the archive starting at byte stubSize of an artifact, the same place
// the stub seeks to at run time. Compression is detected from the payload itself. Contents
// of regular files are read into memory.
func ReadPayload(artifactPath string, stubSize int64) ([]PayloadEntry, error) {
	f, err := os.Open(artifactPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open '%s'", artifactPath)
	}
	defer f.Close()
	if _, err := f.Seek(stubSize, io.SeekStart); err != nil {
		return nil, errors.Wrap(err, "unable to seek to payload")
	}
	return readArchive(f)
}

func readArchive(r io.Reader) ([]PayloadEntry, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil {
		return nil, errors.Wrap(err, "payload is empty")
	}
	var in io.Reader = br
	if bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "payload is not a valid gzip stream")
		}
		defer gz.Close()
		in = gz
	}
	tr := tar.NewReader(in)
	var entries []PayloadEntry
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "payload is not a valid tar stream")
		}
		entry := PayloadEntry{
			Name:     hdr.Name,
			Typeflag: hdr.Typeflag,
			Mode:     hdr.Mode,
			Size:     hdr.Size,
			Linkname: hdr.Linkname,
		}
		if hdr.Typeflag == tar.TypeReg {
			if entry.Content, err = io.ReadAll(tr); err != nil {
				return nil, errors.Wrapf(err, "unable to read '%s'", hdr.Name)
			}
		}
		entries = append(entries, entry)
	}
}
