package sfx_installer

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestManifestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "selfextract"+ManifestExtension)
	artifact := &Artifact{Path: "selfextract", StubSize: 10, ArchiveSize: 5, Size: 15, Digest: "ab", Entries: []string{"setup"}}
	m := NewBuildManifest(artifact, &Stub{Passes: []int64{10, 10}}, CompressionNone)
	if err := WriteManifest(m, path); err != nil {
		t.Fatal(err)
	}
	read, err := ReadManifest(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(read, m) {
		t.Errorf("expected %+v, got %+v", m, read)
	}
}

func TestReadManifestRejects(t *testing.T) {
	dir := t.TempDir()
	future, err := cbor.Marshal(&BuildManifest{Version: ManifestVersion + 1})
	if err != nil {
		t.Fatal(err)
	}
	files := map[string][]byte{
		"corrupt": []byte("\xff\xff"),
		"future":  future,
	}
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := ReadManifest(path); err == nil {
			t.Errorf("%s: expected an error", name)
		}
	}
	if _, err := ReadManifest(filepath.Join(dir, "missing")); err == nil {
		t.Error("expected an error for a missing manifest")
	}
}

func TestReadPayloadRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifact")
	if err := os.WriteFile(path, []byte("stubstubgarbage that is not a tar header"), 0755); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadPayload(path, 8); err == nil {
		t.Error("expected an error for garbage")
	}
	if _, err := ReadPayload(path, 1000); err == nil {
		t.Error("expected an error for a payload offset past the end")
	}
}
