package sfx_installer

import (
	"archive/tar"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
)

type (
	// ArchiveEntry is a file or directory to archive. Name is the member name inside the
	// archive, derived from Path if empty.
	ArchiveEntry struct {
		Path string
		Name string
	}
	// ArchiveRequest lists the entries of an archive, in the order they are added.
	// Duplicates and nested paths are allowed.
	ArchiveRequest struct {
		Entries []ArchiveEntry
	}
	// ArchiveResult describes a written archive.
	ArchiveResult struct {
		Path        string
		Size        int64
		Compression string
		Members     []string
	}
)

// NewArchiveRequest returns a request archiving each path under its own name.
func NewArchiveRequest(paths ...string) ArchiveRequest {
	req := ArchiveRequest{}
	for _, p := range paths {
		req.Entries = append(req.Entries, ArchiveEntry{Path: p})
	}
	return req
}

// Add appends an entry stored under the given member name.
func (r *ArchiveRequest) Add(path, name string) {
	r.Entries = append(r.Entries, ArchiveEntry{Path: path, Name: name})
}

// MemberName returns the name the entry is stored under. Leading slashes are stripped.
func (e ArchiveEntry) MemberName() string {
	name := e.Name
	if name == "" {
		name = e.Path
	}
	name = strings.TrimLeft(filepath.ToSlash(filepath.Clean(name)), "/")
	if name == "" {
		name = "."
	}
	return name
}

// HasEntryPoint reports whether an entry is stored as the setup program the stub runs.
func (r ArchiveRequest) HasEntryPoint() bool {
	for _, e := range r.Entries {
		if e.MemberName() == DefaultEntryName {
			return true
		}
	}
	return false
}

// Archive writes the requested entries to a GNU tar at path, compressed according to
// Config.Compression. If no member is named "setup", including files found inside
// directory entries, the default setup program is added last under that name.
func (b *Builder) Archive(req ArchiveRequest, path string) (result *ArchiveResult, err error) {
	log.Printf("Creating tar '%s'", path)
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create archive")
	}
	defer func() {
		if closeErr := f.Close(); err == nil && closeErr != nil {
			err = errors.Wrap(closeErr, "unable to close archive")
		}
		if err != nil {
			os.Remove(path)
		}
	}()
	var w io.Writer = f
	var gz *gzip.Writer
	if b.Config.Compression == CompressionGzip {
		gz = gzip.NewWriter(f)
		w = gz
	}
	tw := tar.NewWriter(w)
	result = &ArchiveResult{Path: path, Compression: b.Config.Compression}
	for _, entry := range req.Entries {
		log.Printf("  adding '%s'", entry.Path)
		members, err := addEntry(tw, entry)
		if err != nil {
			return nil, err
		}
		result.Members = append(result.Members, members...)
	}
	if !hasMember(result.Members, DefaultEntryName) {
		log.Printf("  adding default '%s'", DefaultEntryName)
		if err := addDefaultSetup(tw); err != nil {
			return nil, err
		}
		result.Members = append(result.Members, DefaultEntryName)
	}
	if err := tw.Close(); err != nil {
		return nil, errors.Wrap(err, "unable to finish tar")
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return nil, errors.Wrap(err, "unable to finish compression")
		}
	}
	info, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(err, "unable to stat archive")
	}
	result.Size = info.Size()
	return result, nil
}

func hasMember(members []string, name string) bool {
	for _, m := range members {
		if m == name {
			return true
		}
	}
	return false
}

// addEntry adds one entry, recursing into directories in lexical order.
func addEntry(tw *tar.Writer, entry ArchiveEntry) ([]string, error) {
	root := entry.MemberName()
	var members []string
	err := filepath.WalkDir(entry.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(entry.Path, path)
		if err != nil {
			return err
		}
		name := root
		if rel != "." {
			name = strings.TrimPrefix(filepath.ToSlash(filepath.Join(root, rel)), "./")
		}
		member, err := addFile(tw, path, name)
		if err != nil {
			return err
		}
		members = append(members, member)
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to archive '%s'", entry.Path)
	}
	return members, nil
}

func addFile(tw *tar.Writer, path, name string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}
	link := ""
	if info.Mode()&os.ModeSymlink != 0 {
		if link, err = os.Readlink(path); err != nil {
			return "", err
		}
	}
	hdr, err := tar.FileInfoHeader(info, link)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		name += "/"
	}
	hdr.Name = name
	hdr.Format = tar.FormatGNU
	hdr.ModTime = info.ModTime().Truncate(time.Second)
	hdr.AccessTime = time.Time{}
	hdr.ChangeTime = time.Time{}
	if err := tw.WriteHeader(hdr); err != nil {
		return "", err
	}
	if hdr.Typeflag != tar.TypeReg {
		return name, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(tw, f); err != nil {
		return "", err
	}
	return name, nil
}

func addDefaultSetup(tw *tar.Writer) error {
	content, err := GetResource(DefaultSetupName)
	if err != nil {
		return err
	}
	hdr := &tar.Header{
		Typeflag: tar.TypeReg,
		Name:     DefaultEntryName,
		Mode:     0755,
		Size:     int64(len(content)),
		ModTime:  time.Now().Truncate(time.Second),
		Format:   tar.FormatGNU,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return errors.Wrap(err, "unable to add default setup")
	}
	_, err = tw.Write(content)
	return errors.Wrap(err, "unable to add default setup")
}
