package sfx_installer

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Stub is a compiled self-extractor whose THIS_FILE_SIZE matches its own size. Passes holds
// the size after each compiler pass.
type Stub struct {
	Path   string
	Size   int64
	Passes []int64
}

// BuildStub writes source to workdir and compiles it until recompiling with the last size
// as THIS_FILE_SIZE reproduces that size. The first pass has no size defined. If the size
// hasn't settled after Config.MaxPasses passes, an *InvariantViolation is returned and no
// stub is kept.
func (b *Builder) BuildStub(workdir string, source []byte) (*Stub, error) {
	sourcePath := filepath.Join(workdir, StubSourceName)
	if err := os.WriteFile(sourcePath, source, 0644); err != nil {
		return nil, errors.Wrap(err, "unable to write stub source")
	}
	maxPasses := b.Config.MaxPasses
	if maxPasses < DefaultMaxPasses {
		maxPasses = DefaultMaxPasses
	}
	libs := LinkLibs(b.Config.LibTar, b.Config.LibZ)
	var sizes []int64
	var prevPath string
	for pass := 1; pass <= maxPasses; pass++ {
		job := CompileJob{
			Source:  sourcePath,
			Output:  filepath.Join(workdir, fmt.Sprintf("stub.%d", pass)),
			Defines: append([]Define{}, b.Config.Defines...),
			Debug:   b.Config.Debug,
			Libs:    libs,
		}
		if pass == 1 {
			log.Println("Compiling stub")
		} else {
			size := strconv.FormatInt(sizes[len(sizes)-1], 10)
			log.Printf("Recompiling stub with %s=%s", SizeDefine, size)
			job.Defines = append(job.Defines, Define{Name: SizeDefine, Value: size})
		}
		if _, err := b.Compiler.Compile(job); err != nil {
			return nil, err
		}
		info, err := os.Stat(job.Output)
		if err != nil {
			return nil, &BuildError{Step: "compile stub", Err: errors.Wrap(err, "compiler produced no output")}
		}
		sizes = append(sizes, info.Size())
		if pass > 1 && sizes[pass-1] == sizes[pass-2] {
			os.Remove(prevPath)
			return &Stub{Path: job.Output, Size: info.Size(), Passes: sizes}, nil
		}
		if prevPath != "" {
			os.Remove(prevPath)
		}
		prevPath = job.Output
	}
	os.Remove(prevPath)
	return nil, &InvariantViolation{Sizes: sizes}
}
