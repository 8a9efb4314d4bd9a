package sfx_installer

import (
	"os"
	"path/filepath"
	"regexp"
	"sync"

	rice "github.com/GeertJohan/go.rice"
	"github.com/pkg/errors"
)

const (
	// StubSourceName is the resource holding the C source of the self-extractor stub.
	StubSourceName = "stub.c"
	// DefaultSetupName is the resource holding the setup program used when the archive
	// doesn't bring its own.
	DefaultSetupName = "setup.sh"
)

var (
	resourceBox     *rice.Box
	resourceBoxErr  error
	resourceBoxOnce sync.Once
)

// openResources locates the resource box. For go.rice's embedding to find it, FindBox has
// to be called with a literal string.
func openResources() (*rice.Box, error) {
	resourceBoxOnce.Do(func() {
		resourceBox, resourceBoxErr = rice.FindBox("resources")
	})
	return resourceBox, resourceBoxErr
}

// GetResource returns the content of a file from the resource box.
func GetResource(name string) ([]byte, error) {
	box, err := openResources()
	if err != nil {
		return nil, errors.Wrap(err, "resources not available")
	}
	content, err := box.Bytes(name)
	if err != nil {
		return nil, errors.Wrapf(err, "resource '%s' not found", name)
	}
	return content, nil
}

// GetResourceFiltered returns the contents of all files directly inside the resource
// directory dir whose path matches filter, indexed by path.
func GetResourceFiltered(dir string, filter *regexp.Regexp) (map[string][]byte, error) {
	box, err := openResources()
	if err != nil {
		return nil, errors.Wrap(err, "resources not available")
	}
	files := make(map[string][]byte)
	err = box.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if filter.MatchString(path) {
			content, err := box.Bytes(path)
			if err != nil {
				return err
			}
			files[path] = content
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list resources in '%s'", dir)
	}
	return files, nil
}
