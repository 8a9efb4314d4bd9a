package main

import (
	"io"
	"log"
	"os"

	sfx "github.com/grandchild/sfx_installer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

// version is overridden at link time with -ldflags "-X main.version=..."
var version = "0.1.0"

var logfile *os.File

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sfx",
	Short: "Build self-extracting installers",
	Long: `sfx packs files into a single self-extracting executable, and generates
interactive bash installer scripts from a yaml list of dialog screens.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logFilename, _ := cmd.Flags().GetString("log-file")
		verbose, _ := cmd.Flags().GetBool("verbose")
		var err error
		logfile, err = startLogging(logFilename, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logfile != nil {
			logfile.Close()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// startLogging sends log output to logFilename if given, and additionally to stderr if
// verbose. Without either, log output is discarded.
func startLogging(logFilename string, verbose bool) (*os.File, error) {
	log.SetFlags(log.Ldate | log.Ltime)
	var writers []io.Writer
	var f *os.File
	if logFilename != "" {
		var err error
		f, err = os.OpenFile(logFilename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
		if err != nil {
			return nil, err
		}
		writers = append(writers, f)
	}
	if verbose {
		writers = append(writers, os.Stderr)
	}
	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
	return f, nil
}

// loadConfig returns the defaults, overlaid with the --config file if given.
func loadConfig(cmd *cobra.Command) (*sfx.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path == "" {
		return sfx.ConfigNew(), nil
	}
	return sfx.LoadConfig(path)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "yaml file with default settings")
	rootCmd.PersistentFlags().String("log-file", "", "append log output to this file")
	rootCmd.PersistentFlags().Bool("verbose", false, "write progress information to stderr")
}

// GenDocs writes markdown docs for every command into dir.
func GenDocs(dir string) error {
	if err := os.MkdirAll(dir, 0775); err != nil {
		return errors.Wrap(err, "failed to make docs dir")
	}
	return errors.Wrap(doc.GenMarkdownTree(rootCmd, dir), "failed to make docs")
}
