//go:build !linux && !darwin

package sfx_installer

import "os"

// osFileWriteAccess only checks that path is a directory. The build itself fails later if
// it isn't writeable.
func osFileWriteAccess(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func osDiskSpace(path string) int64 {
	return -1
}
