package streamlite

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
)

func TestNewBaseConnector(t *testing.T) {
	name := "test-connector"
	connector := NewBaseConnector(name)

	if connector.Name() != name {
		t.Errorf("expected name %s, got %s", name, connector.Name())
	}
}

func TestBaseConnectorStart(t *testing.T) {
	connector := NewBaseConnector("test")

	if err := connector.Start(); err != nil {
		t.Errorf("Start() failed: %v", err)
	}

	if connector.StartedAt().IsZero() {
		t.Error("startedAt should be set after Start()")
	}
}

func TestBaseConnectorStop(t *testing.T) {
	connector := NewBaseConnector("test")

	if err := connector.Stop(); err != nil {
		t.Errorf("Stop() failed: %v", err)
	}
}

func writePage(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	page := `<html><body><div role="main"><h1>` + name + `</h1><p>` + body + `</p></div></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

func docCount(t *testing.T, holder *search.Holder) int {
	t.Helper()
	e, ok := holder.Get()
	if !ok {
		return 0
	}
	return e.(*search.Index).Count()
}

func TestSiteConnectorRebuild(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "index.html", "welcome")
	writePage(t, dir, "_static/ignored.html", "asset")

	holder := search.NewHolder(nil)
	c := NewSiteConnector(SiteConfig{Dir: dir}, holder, zerolog.Nop())

	if err := c.Rebuild(); err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if n := docCount(t, holder); n != 1 {
		t.Errorf("expected 1 document, got %d", n)
	}
	if c.Rebuilds() != 1 {
		t.Errorf("expected 1 rebuild, got %d", c.Rebuilds())
	}
	if c.Name() != "site:"+dir {
		t.Errorf("unexpected name %s", c.Name())
	}
}

func TestSiteConnectorRebuildMissingDir(t *testing.T) {
	holder := search.NewHolder(nil)
	c := NewSiteConnector(SiteConfig{Dir: filepath.Join(t.TempDir(), "missing")}, holder, zerolog.Nop())

	if err := c.Start(); err == nil {
		_ = c.Stop()
		t.Error("expected Start() to fail for a missing directory")
	}
}

func TestSiteConnectorWatch(t *testing.T) {
	dir := t.TempDir()
	writePage(t, dir, "index.html", "welcome")

	holder := search.NewHolder(nil)
	c := NewSiteConnector(SiteConfig{Dir: dir, Debounce: 20 * time.Millisecond}, holder, zerolog.Nop())
	if err := c.Rebuild(); err != nil {
		t.Fatalf("Rebuild() failed: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	defer func() { _ = c.Stop() }()

	if c.StartedAt().IsZero() {
		t.Error("startedAt should be set after Start()")
	}

	writePage(t, dir, "guide.html", "new page")

	deadline := time.Now().Add(3 * time.Second)
	for docCount(t, holder) != 2 {
		if time.Now().After(deadline) {
			t.Fatalf("expected 2 documents after change, got %d", docCount(t, holder))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSiteConnectorStopIdempotent(t *testing.T) {
	c := NewSiteConnector(SiteConfig{Dir: t.TempDir()}, search.NewHolder(nil), zerolog.Nop())
	if err := c.Start(); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("Stop() failed: %v", err)
	}
	if err := c.Stop(); err != nil {
		t.Errorf("second Stop() failed: %v", err)
	}
}
