package main

import (
	"fmt"
	"os"
	"path/filepath"

	sfx "github.com/grandchild/sfx_installer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [files...]",
	Short: "Create a self-extracting executable",
	Long: `Archive files and directories and append them to a small native stub, which
unpacks them to a temporary directory and runs the "setup" program found there.

If no file is named "setup", a default one is added which copies the files to
$DESTDIR or the current directory. With --install-spec, an installer script is
generated from the spec and used as "setup".`,
	Example: `sfx build -o myapp-installer -i install.yml bin/ share/
sfx build -v version=1.2 -v prefix=/opt/myapp -i install.yml myapp`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return errors.New("No files specified for the archive.")
		}
		config, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := applyBuildFlags(cmd, config); err != nil {
			return err
		}
		req := sfx.NewArchiveRequest(args...)
		builder := sfx.NewBuilder(config)

		specPath, _ := cmd.Flags().GetString("install-spec")
		if specPath != "" {
			installer, cleanup, err := generateInstaller(cmd, config, specPath)
			if err != nil {
				return err
			}
			defer cleanup()
			if !req.HasEntryPoint() {
				req.Add(installer, sfx.DefaultEntryName)
			}
		}

		artifact, err := builder.Build(req, config.Output)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d bytes (stub %d, payload %d)\n",
			artifact.Path, artifact.Size, artifact.StubSize, artifact.ArchiveSize)
		return nil
	},
}

// generateInstaller writes the installer for the spec at specPath into a fresh directory
// below the configured tmpdir. cleanup removes that directory.
func generateInstaller(cmd *cobra.Command, config *sfx.Config, specPath string) (path string, cleanup func(), err error) {
	spec, err := sfx.LoadSpec(specPath)
	if err != nil {
		return "", nil, err
	}
	generator, err := newGenerator(cmd, config)
	if err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp(config.TmpDir, "sfx-script-")
	if err != nil {
		return "", nil, errors.Wrap(err, "unable to create work directory")
	}
	cleanup = func() { os.RemoveAll(dir) }
	path = filepath.Join(dir, sfx.DefaultEntryName)
	if err := generator.WriteInstaller(spec, path); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

func applyBuildFlags(cmd *cobra.Command, config *sfx.Config) error {
	flags := cmd.Flags()
	if flags.Changed("output") {
		config.Output, _ = flags.GetString("output")
	}
	if flags.Changed("libtar") {
		config.LibTar, _ = flags.GetString("libtar")
	}
	if flags.Changed("zlib") {
		config.LibZ, _ = flags.GetString("zlib")
	}
	if flags.Changed("tmpdir") {
		config.TmpDir, _ = flags.GetString("tmpdir")
	}
	if flags.Changed("cc") {
		config.Compiler, _ = flags.GetString("cc")
	}
	if flags.Changed("debug") {
		config.Debug, _ = flags.GetBool("debug")
	}
	if flags.Changed("compression") {
		config.Compression, _ = flags.GetString("compression")
	}
	if flags.Changed("manifest") {
		config.Manifest, _ = flags.GetBool("manifest")
	}
	if flags.Changed("max-passes") {
		config.MaxPasses, _ = flags.GetInt("max-passes")
	}
	defines, _ := flags.GetStringArray("define")
	for _, d := range defines {
		config.Defines = append(config.Defines, sfx.ParseDefine(d))
	}
	applyScriptFlags(cmd, config)
	return config.Validate()
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringP("output", "o", sfx.DefaultOutput, "name of the output self-extractor")
	buildCmd.Flags().StringP("libtar", "l", sfx.DefaultLibTar, "location of libtar.a for linking")
	buildCmd.Flags().StringP("zlib", "z", sfx.DefaultLibZ, "location of libz.a for linking")
	buildCmd.Flags().StringP("install-spec", "i", "", "installer specification in yaml")
	buildCmd.Flags().StringP("tmpdir", "t", sfx.ConfigNew().TmpDir, "work directory, default $TMP or /tmp")
	buildCmd.Flags().String("cc", sfx.DefaultCompiler, "C compiler used to build the stub")
	buildCmd.Flags().Bool("debug", false, "build the stub with debug symbols instead of optimizations")
	buildCmd.Flags().String("compression", sfx.CompressionGzip, "payload compression, 'gzip' or 'none'")
	buildCmd.Flags().Bool("manifest", false, "write a build manifest next to the output")
	buildCmd.Flags().Int("max-passes", sfx.DefaultMaxPasses, "compiler passes allowed for the stub size to settle")
	buildCmd.Flags().StringArrayP("define", "D", nil, "extra preprocessor definition NAME[=VALUE] for the stub (repeatable)")
	addScriptFlags(buildCmd)
}
