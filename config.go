package sfx_installer

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

const (
	// Well-known locations of the static archives the stub links against.
	DefaultLibTar = "/usr/lib/x86_64-linux-gnu/libtar.a"
	DefaultLibZ   = "/usr/lib/x86_64-linux-gnu/libz.a"

	DefaultOutput    = "selfextract"
	DefaultCompiler  = "gcc"
	DefaultChunkSize = 1 << 20
	DefaultMaxPasses = 2

	CompressionGzip = "gzip"
	CompressionNone = "none"
)

// Config holds every setting of a build or script generation run. Values not given in a
// config file keep the defaults from ConfigNew.
type Config struct {
	Output      string    `yaml:"output"`
	LibTar      string    `yaml:"libtar"`
	LibZ        string    `yaml:"zlib"`
	Compiler    string    `yaml:"compiler"`
	TmpDir      string    `yaml:"tmpdir"`
	Debug       bool      `yaml:"debug"`
	Compression string    `yaml:"compression"`
	MaxPasses   int       `yaml:"max_passes"`
	ChunkSize   int       `yaml:"chunk_size"`
	Uninstaller string    `yaml:"uninstaller"`
	Dialog      string    `yaml:"dialog"`
	Language    string    `yaml:"language"`
	Manifest    bool      `yaml:"manifest"`
	Variables   StringMap `yaml:"variables"`
	// Defines are passed to every compiler pass in addition to THIS_FILE_SIZE.
	Defines []Define `yaml:"-"`
}

// ConfigNew returns a Config with all defaults set. The temp directory is taken from $TMP
// if set.
func ConfigNew() *Config {
	tmpDir := os.Getenv("TMP")
	if tmpDir == "" {
		tmpDir = "/tmp"
	}
	return &Config{
		Output:      DefaultOutput,
		LibTar:      DefaultLibTar,
		LibZ:        DefaultLibZ,
		Compiler:    DefaultCompiler,
		TmpDir:      tmpDir,
		Compression: CompressionGzip,
		MaxPasses:   DefaultMaxPasses,
		ChunkSize:   DefaultChunkSize,
		Uninstaller: DefaultUninstallerName,
		Dialog:      DefaultDialog,
		Variables:   make(StringMap),
	}
}

// LoadConfig reads a yaml config file on top of the defaults.
func LoadConfig(path string) (*Config, error) {
	config := ConfigNew()
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read config file %s", path)
	}
	if err := yaml.UnmarshalStrict(content, config); err != nil {
		return nil, configErrorf(path, "%s", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the settings that can't be passed on to the build as they are.
func (c *Config) Validate() error {
	switch c.Compression {
	case CompressionGzip, CompressionNone:
	default:
		return configErrorf("", "unknown compression '%s', must be '%s' or '%s'",
			c.Compression, CompressionGzip, CompressionNone)
	}
	if c.MaxPasses < DefaultMaxPasses {
		return configErrorf("", "max_passes must be at least %d, not %d", DefaultMaxPasses, c.MaxPasses)
	}
	if c.ChunkSize <= 0 {
		return configErrorf("", "chunk_size must be positive, not %d", c.ChunkSize)
	}
	if c.Output == "" {
		return configErrorf("", "output must not be empty")
	}
	return nil
}
