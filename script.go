package sfx_installer

import (
	"fmt"
	"strings"
)

// Messages are the user facing strings that end up inside generated scripts.
type Messages struct {
	ConfirmTitle string
	ConfirmQuit  string
	BlankScreen  string
}

// DefaultMessages returns the English messages.
func DefaultMessages() Messages {
	return Messages{
		ConfirmTitle: "Confirm",
		ConfirmQuit:  "Are you sure you want to quit?",
		BlankScreen:  "Screen Intentionally Blank",
	}
}

const (
	dialogExitCancel = 1
	dialogExitEscape = 255
)

// headerLines is the common start of installer and uninstaller: shebang, strict mode, the
// cancel check, cleanup of a pending response file and the variable assignments.
func headerLines(dialog string, msg Messages, vars Variables) []string {
	lines := []string{
		"#!/bin/bash",
		"set -euo pipefail",
		"",
		"function check_cancel {",
		fmt.Sprintf("    if [ $1 -eq %d -o $1 -eq %d ]; then", dialogExitEscape, dialogExitCancel),
		fmt.Sprintf("        if %s --title \"%s\" --yesno \"%s\" 0 0; then", dialog, msg.ConfirmTitle, msg.ConfirmQuit),
		"            exit 1",
		"        fi",
		"    fi",
		"}",
		"",
		"tmpfile=",
		`trap 'if [ -n "$tmpfile" ]; then rm -f "$tmpfile"; fi' EXIT`,
		"pid=$BASHPID",
	}
	for _, v := range vars {
		lines = append(lines, v.Assignment())
	}
	return append(lines, "")
}

// rootdirLines sets rootdir from the first argument, or to the script's own directory.
func rootdirLines() []string {
	return []string{
		"if [ $# -ge 1 ]; then",
		"    rootdir=$1",
		"else",
		"    rootdir=$(dirname $0)",
		"fi",
	}
}

// screenLines renders a single screen.
func screenLines(scr Screen, dialog string, msg Messages) []string {
	var body []string
	if scr.Type == CodeScreen {
		body = codeLines(scr)
	} else {
		body = dialogLines(scr, dialog, msg)
	}
	if scr.After != "" {
		body = append(body, scr.After)
	}
	if scr.Condition == "" {
		return append(body, "")
	}
	lines := append([]string{fmt.Sprintf("if [ %s ]; then", scr.Condition)}, body...)
	return append(lines, "fi", "")
}

func codeLines(scr Screen) []string {
	text := ""
	if scr.Text != nil {
		text = *scr.Text
	}
	return []string{
		"",
		"# USER CODE -----",
		text,
		"# END USER CODE -----",
	}
}

func dialogLines(scr Screen, dialog string, msg Messages) []string {
	var lines []string
	storeVal := ""
	if scr.Store != "" {
		lines = append(lines, scr.Store+"="+scr.Default)
		storeVal = "$" + scr.Store
	}
	text := msg.BlankScreen
	if scr.Text != nil {
		text = *scr.Text
	}
	invocation := dialog
	for _, opt := range scr.Options {
		invocation += " --" + opt
	}
	lines = append(lines,
		"tmpfile=$(mktemp)",
		"exitval=0",
		invocation+" \\",
	)
	if scr.Title != "" {
		lines = append(lines, fmt.Sprintf("  --title \"%s\" \\", scr.Title))
	}
	lines = append(lines,
		fmt.Sprintf("  --%s \"%s\" \\", scr.Type, text),
		strings.TrimRight(fmt.Sprintf("  0 0 %s", storeVal), " ")+" 2> $tmpfile || exitval=$?",
		"check_cancel $exitval",
	)
	if scr.Store != "" {
		lines = append(lines, scr.Store+"=$(cat $tmpfile)")
	}
	return append(lines,
		"rm -f $tmpfile",
		"tmpfile=",
	)
}

// uninstallerWriteLines writes the embedded uninstaller to $destdir at install time.
func uninstallerWriteLines(uninstaller string) []string {
	escaped := EscapeHeredoc(uninstaller)
	delim := heredocDelimiter(escaped)
	return []string{
		`: "${destdir:?destdir must be set before the uninstaller is written}"`,
		fmt.Sprintf("cat <<%s >$destdir/$uninstaller_name", delim),
		escaped + delim,
		"",
		"chmod +x $destdir/$uninstaller_name",
	}
}

func joinLines(parts ...[]string) string {
	var b strings.Builder
	for _, lines := range parts {
		for _, line := range lines {
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
