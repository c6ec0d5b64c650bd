package streamlite

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/wfahren/Enhanced-Sphinx-Search/internal/scope/search"
)

// DefaultDebounce is how long the site must be quiet before a rebuild
const DefaultDebounce = 500 * time.Millisecond

// SiteConfig configures a SiteConnector
type SiteConfig struct {
	Dir      string
	Suffix   string
	Excludes []string
	Debounce time.Duration
}

// SiteConnector rebuilds the search index when the built site changes and
// swaps it into the engine holder
type SiteConnector struct {
	*BaseConnector

	cfg    SiteConfig
	holder *search.Holder
	logger zerolog.Logger

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	timerMu sync.Mutex
	timer   *time.Timer

	rebuilds atomic.Int64
}

// NewSiteConnector creates a connector for the site in cfg.Dir
func NewSiteConnector(cfg SiteConfig, holder *search.Holder, logger zerolog.Logger) *SiteConnector {
	if cfg.Suffix == "" {
		cfg.Suffix = ".html"
	}
	if cfg.Excludes == nil {
		cfg.Excludes = search.DefaultExcludes
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}
	return &SiteConnector{
		BaseConnector: NewBaseConnector("site:" + cfg.Dir),
		cfg:           cfg,
		holder:        holder,
		logger:        logger,
	}
}

// Rebuild indexes the site and installs the new index
func (c *SiteConnector) Rebuild() error {
	start := time.Now()
	idx, err := search.LoadDir(os.DirFS(c.cfg.Dir), c.cfg.Suffix, c.cfg.Excludes)
	if err != nil {
		return fmt.Errorf("failed to index site: %w", err)
	}
	c.holder.Set(idx)
	c.rebuilds.Add(1)

	c.logger.Info().
		Str("dir", c.cfg.Dir).
		Int("doc_count", idx.Count()).
		Dur("took", time.Since(start)).
		Msg("site indexed")
	return nil
}

// Rebuilds returns how many indexes were installed
func (c *SiteConnector) Rebuilds() int64 {
	return c.rebuilds.Load()
}

// Start watches the site directory tree
func (c *SiteConnector) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	err = filepath.WalkDir(c.cfg.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", c.cfg.Dir, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	c.watcher = watcher
	c.cancel = cancel

	c.wg.Add(1)
	go c.loop(ctx)

	c.logger.Info().Str("dir", c.cfg.Dir).Msg("watching site")
	return c.BaseConnector.Start()
}

// Stop ends watching and drops any pending rebuild
func (c *SiteConnector) Stop() error {
	if c.cancel == nil {
		return nil
	}
	c.cancel()
	err := c.watcher.Close()
	c.wg.Wait()

	c.timerMu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.timerMu.Unlock()

	c.cancel = nil
	return err
}

func (c *SiteConnector) loop(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			c.handle(event)
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn().Err(err).Msg("site watcher error")
		}
	}
}

func (c *SiteConnector) handle(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := c.watcher.Add(event.Name); err != nil {
				c.logger.Warn().Err(err).Str("dir", event.Name).Msg("failed to watch new directory")
			}
			c.schedule()
			return
		}
	}

	if !strings.HasSuffix(event.Name, c.cfg.Suffix) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	c.schedule()
}

// schedule collapses a burst of changes into one rebuild
func (c *SiteConnector) schedule() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.cfg.Debounce, func() {
		if err := c.Rebuild(); err != nil {
			c.logger.Error().Err(err).Msg("site rebuild failed")
		}
	})
}
