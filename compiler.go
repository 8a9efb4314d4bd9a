package sfx_installer

import (
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// SizeDefine is the preprocessor constant through which the stub learns its own size.
const SizeDefine = "THIS_FILE_SIZE"

type (
	// Define is a preprocessor definition, rendered as -DNAME or -DNAME=VALUE.
	Define struct {
		Name  string
		Value string
	}
	// CompileJob is a single compiler invocation.
	CompileJob struct {
		Source  string
		Output  string
		Defines []Define
		Debug   bool
		// Libs are static archive paths or linker flags, appended after the source.
		Libs []string
	}
	// Compiler builds a native executable. Compile returns whatever the compiler printed.
	Compiler interface {
		Compile(job CompileJob) (output []byte, err error)
	}
	// GCC runs a gcc compatible compiler driver.
	GCC struct {
		Path string
	}
)

// ParseDefine splits a "NAME[=VALUE]" definition.
func ParseDefine(definition string) Define {
	kv := strings.SplitN(definition, "=", 2)
	d := Define{Name: kv[0]}
	if len(kv) > 1 {
		d.Value = kv[1]
	}
	return d
}

func (d Define) String() string {
	if d.Value == "" {
		return "-D" + d.Name
	}
	return "-D" + d.Name + "=" + d.Value
}

// Args returns the compiler's command line, without the compiler itself.
func (job CompileJob) Args() []string {
	args := []string{"-O3"}
	if job.Debug {
		args[0] = "-g"
	}
	for _, d := range job.Defines {
		args = append(args, d.String())
	}
	args = append(args, "-o", job.Output, job.Source)
	return append(args, job.Libs...)
}

// Compile runs the compiler. Only linux hosts are supported, since the stub links against
// the system's libtar.
func (c GCC) Compile(job CompileJob) ([]byte, error) {
	if runtime.GOOS != "linux" {
		return nil, &BuildError{Step: "compile stub", Err: errors.Errorf("platform '%s' not supported", runtime.GOOS)}
	}
	path := c.Path
	if path == "" {
		path = DefaultCompiler
	}
	output, err := exec.Command(path, job.Args()...).CombinedOutput()
	if err != nil {
		return output, &BuildError{Step: "compile stub", Output: string(output), Err: err}
	}
	return output, nil
}

// LinkLibs returns the static archives to link the stub against, or the matching dynamic
// linker flags for any archive that doesn't exist.
func LinkLibs(libTar, libZ string) []string {
	return []string{staticOrFlag(libTar, "-ltar"), staticOrFlag(libZ, "-lz")}
}

func staticOrFlag(archive, flag string) string {
	if archive == "" {
		return flag
	}
	if info, err := os.Stat(archive); err != nil || info.IsDir() {
		return flag
	}
	return archive
}
