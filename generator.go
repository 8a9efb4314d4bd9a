package sfx_installer

import (
	"log"
	"os"

	"github.com/pkg/errors"
)

const (
	// DefaultDialog is the dialog program generated scripts call for each screen.
	DefaultDialog = "dialog"
	// DefaultEntryName is the archive member the self-extractor runs after unpacking.
	DefaultEntryName = "setup"
	// DefaultUninstallerName is the file name the installer writes the uninstaller to.
	DefaultUninstallerName = "uninstall"
)

type (
	// Generator turns an InstallSpec into bash scripts. The zero value is not usable, use
	// NewGenerator.
	Generator struct {
		Dialog          string
		UninstallerName string
		Variables       Variables
		Messages        Messages
	}
	// Scripts holds the rendered installer and, if the spec has one, the uninstaller that
	// is embedded in it.
	Scripts struct {
		Install   string
		Uninstall string
	}
)

// NewGenerator returns a Generator with the default dialog tool, uninstaller name and
// English messages.
func NewGenerator(vars Variables) *Generator {
	return &Generator{
		Dialog:          DefaultDialog,
		UninstallerName: DefaultUninstallerName,
		Variables:       vars,
		Messages:        DefaultMessages(),
	}
}

// Render renders the installer script for spec. The uninstaller, if any, is rendered on its
// own first and then embedded in the installer.
func (g *Generator) Render(spec *InstallSpec) (*Scripts, error) {
	if spec == nil || len(spec.Install) == 0 {
		return nil, configErrorf("", "install spec has no '%s' screens", installKey)
	}
	scripts := &Scripts{}
	if spec.HasUninstall {
		scripts.Uninstall = g.RenderUninstaller(spec.Uninstall)
	}
	parts := [][]string{
		headerLines(g.Dialog, g.Messages, g.Variables),
		rootdirLines(),
	}
	if spec.HasUninstall {
		parts = append(parts, []string{"uninstaller_name=" + g.UninstallerName})
	}
	for _, scr := range spec.Install {
		parts = append(parts, screenLines(scr, g.Dialog, g.Messages))
	}
	if spec.HasUninstall {
		parts = append(parts, uninstallerWriteLines(scripts.Uninstall))
	}
	scripts.Install = joinLines(parts...)
	return scripts, nil
}

// RenderUninstaller renders a standalone uninstaller, which deletes itself at the end.
func (g *Generator) RenderUninstaller(screens []Screen) string {
	parts := [][]string{
		headerLines(g.Dialog, g.Messages, g.Variables),
		{"rootdir=$(dirname $0)"},
	}
	for _, scr := range screens {
		parts = append(parts, screenLines(scr, g.Dialog, g.Messages))
	}
	parts = append(parts, []string{"rm $0", ""})
	return joinLines(parts...)
}

// WriteInstaller renders spec and writes the installer to path. Nothing is written if
// rendering fails. The file is made executable only after it has been completely written.
func (g *Generator) WriteInstaller(spec *InstallSpec, path string) error {
	scripts, err := g.Render(spec)
	if err != nil {
		return err
	}
	log.Printf("Writing installer script '%s'", path)
	if err := writeScript(path, scripts.Install); err != nil {
		return err
	}
	if spec.HasUninstall {
		log.Printf("  with uninstaller '%s' (%d screens)", g.UninstallerName, len(spec.Uninstall))
	}
	return nil
}

func writeScript(path, content string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return errors.Wrapf(err, "unable to create script %s", path)
	}
	if _, err = f.WriteString(content); err != nil {
		f.Close()
		os.Remove(path)
		return errors.Wrapf(err, "unable to write script %s", path)
	}
	if err = f.Close(); err != nil {
		os.Remove(path)
		return errors.Wrapf(err, "unable to close script %s", path)
	}
	return errors.Wrapf(os.Chmod(path, 0755), "unable to make %s executable", path)
}
