package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func writeSite(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	pages := map[string]string{
		"index.html": `<html><body><div role="main"><h1>Home</h1><p>The read timeout is set here.</p></div></body></html>`,
		"other.html": `<html><body><div role="main"><h1>Other</h1><p>Timeout of the write path.</p></div></body></html>`,
	}
	for name, body := range pages {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}
	return dir
}

func TestClassifyCmd(t *testing.T) {
	out := run(t, "classify", `"Read Timeout"`)
	if !strings.Contains(out, `"Mode": "and"`) {
		t.Errorf("expected and mode, got %s", out)
	}
	if !strings.Contains(out, `"read timeout"`) {
		t.Errorf("expected lowercased phrase, got %s", out)
	}
}

func TestHighlightCmd(t *testing.T) {
	dir := writeSite(t)
	out := run(t, "highlight", "--phrase", "Read Timeout", filepath.Join(dir, "index.html"))
	if !strings.Contains(out, `<span class="highlighted" style="background-color: yellow;">read timeout</span>`) {
		t.Errorf("expected marked phrase, got %s", out)
	}
}

func TestIndexCmd(t *testing.T) {
	out := run(t, "index", "--site", writeSite(t))
	if !strings.Contains(out, "2 documents") {
		t.Errorf("expected 2 documents, got %s", out)
	}
}

func TestSearchCmd(t *testing.T) {
	out := run(t, "search", "--site", writeSite(t), `"read timeout"`)
	if !strings.Contains(out, "index.html\tHome") {
		t.Errorf("expected index in results, got %s", out)
	}
	if strings.Contains(out, "other.html") {
		t.Errorf("expected other filtered out, got %s", out)
	}
	if !strings.Contains(out, "1 results") {
		t.Errorf("expected 1 result, got %s", out)
	}
}
