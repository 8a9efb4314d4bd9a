package sfx_installer

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
)

func strPtr(s string) *string { return &s }

func TestScreenLinesDialog(t *testing.T) {
	scr := Screen{
		Type:      "inputbox",
		Title:     "Target",
		Condition: `-z "$destdir"`,
		Text:      strPtr("Where?"),
		Options:   []string{"no-cancel"},
		Store:     "destdir",
		Default:   "/opt",
		After:     "echo $destdir",
	}
	expected := []string{
		`if [ -z "$destdir" ]; then`,
		"destdir=/opt",
		"tmpfile=$(mktemp)",
		"exitval=0",
		`dialog --no-cancel \`,
		`  --title "Target" \`,
		`  --inputbox "Where?" \`,
		"  0 0 $destdir 2> $tmpfile || exitval=$?",
		"check_cancel $exitval",
		"destdir=$(cat $tmpfile)",
		"rm -f $tmpfile",
		"tmpfile=",
		"echo $destdir",
		"fi",
		"",
	}
	got := screenLines(scr, DefaultDialog, DefaultMessages())
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected lines:\n%s\nexpected:\n%s", strings.Join(got, "\n"), strings.Join(expected, "\n"))
	}
}

func TestScreenLinesBlank(t *testing.T) {
	got := screenLines(Screen{Type: "msgbox"}, "whiptail", DefaultMessages())
	expected := []string{
		"tmpfile=$(mktemp)",
		"exitval=0",
		`whiptail \`,
		`  --msgbox "Screen Intentionally Blank" \`,
		"  0 0 2> $tmpfile || exitval=$?",
		"check_cancel $exitval",
		"rm -f $tmpfile",
		"tmpfile=",
		"",
	}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("unexpected lines:\n%s", strings.Join(got, "\n"))
	}
}

func TestScreenLinesCode(t *testing.T) {
	testCases := []struct {
		name     string
		screen   Screen
		expected []string
	}{
		{
			name:   "plain",
			screen: Screen{Type: CodeScreen, Text: strPtr("echo hi"), Store: "ignored", Default: "x"},
			expected: []string{
				"", "# USER CODE -----", "echo hi", "# END USER CODE -----", "",
			},
		},
		{
			name:   "conditional",
			screen: Screen{Type: CodeScreen, Text: strPtr("rm -rf $destdir"), Condition: `"$ok" = 0`, After: "echo removed"},
			expected: []string{
				`if [ "$ok" = 0 ]; then`,
				"", "# USER CODE -----", "rm -rf $destdir", "# END USER CODE -----",
				"echo removed",
				"fi",
				"",
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := screenLines(tc.screen, DefaultDialog, DefaultMessages())
			if !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("unexpected lines: %s", spew.Sdump(got))
			}
		})
	}
}

func TestConditionalScreenHasOneIfFi(t *testing.T) {
	for _, typ := range []string{"msgbox", "yesno", CodeScreen} {
		lines := screenLines(Screen{Type: typ, Condition: "-n \"$x\""}, DefaultDialog, DefaultMessages())
		ifs, fis, dialogAt, checkAt := 0, 0, -1, -1
		for i, line := range lines {
			switch {
			case strings.HasPrefix(line, "if ["):
				ifs++
			case line == "fi":
				fis++
			case strings.HasPrefix(line, DefaultDialog+" "):
				dialogAt = i
			case line == "check_cancel $exitval":
				checkAt = i
			}
		}
		if ifs != 1 || fis != 1 {
			t.Errorf("%s: expected one if/fi pair, got %d/%d", typ, ifs, fis)
		}
		if lines[0] != `if [ -n "$x" ]; then` || lines[len(lines)-2] != "fi" {
			t.Errorf("%s: screen is not wrapped in the condition: %s", typ, spew.Sdump(lines))
		}
		if typ != CodeScreen && (dialogAt < 0 || checkAt < dialogAt) {
			t.Errorf("%s: cancel check must follow the dialog call: %s", typ, spew.Sdump(lines))
		}
	}
}

func TestHeader(t *testing.T) {
	vars := ParseVariables([]string{"version=1.0", "prefix"})
	script := joinLines(headerLines(DefaultDialog, DefaultMessages(), vars))
	for _, expected := range []string{
		"#!/bin/bash\nset -euo pipefail\n",
		"function check_cancel {\n",
		`if dialog --title "Confirm" --yesno "Are you sure you want to quit?" 0 0; then`,
		"pid=$BASHPID\nversion=1.0\nprefix=\n",
	} {
		if !strings.Contains(script, expected) {
			t.Errorf("header lacks %q:\n%s", expected, script)
		}
	}
	if !strings.HasPrefix(script, "#!/bin/bash\n") {
		t.Error("header must start with the shebang")
	}
}

// heredocBody returns the body of the first heredoc writing the uninstaller.
func heredocBody(t *testing.T, script string) string {
	t.Helper()
	start := strings.Index(script, "cat <<EOF >$destdir/$uninstaller_name\n")
	if start < 0 {
		t.Fatalf("no uninstaller heredoc in:\n%s", script)
	}
	start += len("cat <<EOF >$destdir/$uninstaller_name\n")
	end := strings.Index(script[start:], "\nEOF\n")
	if end < 0 {
		t.Fatalf("unterminated heredoc in:\n%s", script)
	}
	return script[start : start+end+1]
}

func TestRenderWelcomeScenario(t *testing.T) {
	spec, err := ParseSpec("", []byte(`
install:
  - type: msgbox
    text: "Welcome"
uninstall:
  - type: yesno
    text: "Remove?"
`))
	if err != nil {
		t.Fatal(err)
	}
	g := NewGenerator(nil)
	scripts, err := g.Render(spec)
	if err != nil {
		t.Fatal(err)
	}
	install := scripts.Install
	heredocAt := strings.Index(install, "cat <<EOF")
	if heredocAt < 0 {
		t.Fatalf("no heredoc in installer:\n%s", install)
	}
	outer := install[:heredocAt]
	if n := strings.Count(outer, "function check_cancel {"); n != 1 {
		t.Errorf("expected the cancel function once, found %d", n)
	}
	if n := strings.Count(install, "--msgbox"); n != 1 {
		t.Errorf("expected one msgbox call, found %d", n)
	}
	if !strings.Contains(outer, `  --msgbox "Welcome" \`) {
		t.Errorf("msgbox call missing:\n%s", outer)
	}
	if !strings.Contains(install, "uninstaller_name=uninstall\n") {
		t.Error("uninstaller name not set")
	}
	if !strings.Contains(install, "\nchmod +x $destdir/$uninstaller_name\n") {
		t.Error("uninstaller is not made executable")
	}

	body := heredocBody(t, install)
	uninstall := UnescapeHeredoc(body)
	if uninstall != scripts.Uninstall {
		t.Errorf("embedded uninstaller differs from the rendered one:\n%s\n---\n%s", uninstall, scripts.Uninstall)
	}
	if standalone := g.RenderUninstaller(spec.Uninstall); uninstall != standalone {
		t.Errorf("embedded uninstaller differs from the standalone rendering")
	}
	for _, expected := range []string{"#!/bin/bash\n", "function check_cancel {", `  --yesno "Remove?" \`, "\nrm $0\n"} {
		if !strings.Contains(uninstall, expected) {
			t.Errorf("uninstaller lacks %q:\n%s", expected, uninstall)
		}
	}
	if n := strings.Count(uninstall, "--yesno \"Remove?\""); n != 1 {
		t.Errorf("expected one yesno call in the uninstaller, found %d", n)
	}
	if strings.Contains(body, " $0") || !strings.Contains(body, `\$0`) {
		t.Errorf("uninstaller is not escaped:\n%s", body)
	}
}

func TestRenderWithoutUninstall(t *testing.T) {
	spec := &InstallSpec{Install: []Screen{{Type: "msgbox"}}}
	scripts, err := NewGenerator(nil).Render(spec)
	if err != nil {
		t.Fatal(err)
	}
	if scripts.Uninstall != "" || strings.Contains(scripts.Install, "uninstaller_name") || strings.Contains(scripts.Install, "<<") {
		t.Errorf("unexpected uninstaller:\n%s", scripts.Install)
	}
	if !strings.Contains(scripts.Install, "if [ $# -ge 1 ]; then\n    rootdir=$1\n") {
		t.Errorf("rootdir not taken from the first argument:\n%s", scripts.Install)
	}
}

func TestRenderEmbedsTrickyUninstaller(t *testing.T) {
	spec := &InstallSpec{
		Install: []Screen{{Type: CodeScreen, Text: strPtr("destdir=/opt/x")}},
		Uninstall: []Screen{{
			Type: CodeScreen,
			Text: strPtr("cat <<EOF\nThe cost is $5\\n `date`\nEOF"),
		}},
		HasUninstall: true,
	}
	scripts, err := NewGenerator(ParseVariables([]string{"name=app"})).Render(spec)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(scripts.Install, "cat <<EOF_1 >$destdir/$uninstaller_name\n") {
		t.Fatalf("delimiter clash not avoided:\n%s", scripts.Install)
	}
	start := strings.Index(scripts.Install, "$uninstaller_name\n") + len("$uninstaller_name\n")
	end := strings.Index(scripts.Install, "\nEOF_1\n")
	if got := UnescapeHeredoc(scripts.Install[start : end+1]); got != scripts.Uninstall {
		t.Errorf("round trip failed:\n%s", got)
	}
}

func TestRenderRejectsEmptySpec(t *testing.T) {
	var configErr *ConfigurationError
	if _, err := NewGenerator(nil).Render(&InstallSpec{}); !errors.As(err, &configErr) {
		t.Errorf("expected a ConfigurationError, got %v", err)
	}
}

func TestWriteInstaller(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultEntryName)
	g := NewGenerator(nil)
	g.Dialog = "whiptail"
	spec := &InstallSpec{Install: []Screen{{Type: "msgbox", Text: strPtr("hi")}}}
	if err := g.WriteInstaller(spec, path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0755 {
		t.Errorf("expected mode 0755, got %o", info.Mode().Perm())
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(content), "whiptail \\\n  --msgbox \"hi\"") {
		t.Errorf("unexpected installer:\n%s", content)
	}

	bad := filepath.Join(dir, "bad")
	if err := g.WriteInstaller(&InstallSpec{}, bad); err == nil {
		t.Error("expected an error for an empty spec")
	}
	if _, err := os.Stat(bad); !os.IsNotExist(err) {
		t.Error("nothing should be written for an invalid spec")
	}
}
