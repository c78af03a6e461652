// Package snapshot fetches rendered pages with a headless browser and
// caches them on disk, so anchors can be captured and restored against the
// same markup the reader saw, including content that only exists after
// scripts run.
package snapshot

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/sensenote/sensenote/pkg/document"
	"github.com/sensenote/sensenote/pkg/logging"
)

// DefaultTimeout bounds navigation and rendering for one fetch.
const DefaultTimeout = 30 * time.Second

// Snapshot is one rendered page.
type Snapshot struct {
	// URL is the final address after redirects.
	URL string `json:"url"`

	Title string `json:"title,omitempty"`

	// HTML is the serialized rendered tree, not the raw transfer bytes.
	HTML string `json:"html"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Document parses the snapshot into a document keyed by its URL.
func (s *Snapshot) Document() (*document.Document, error) {
	return document.ParseString(s.HTML, s.URL)
}

// Options configures a fetcher.
type Options struct {
	// Headless hides the browser window. The CLI always sets this from
	// configuration; the zero value runs headful.
	Headless bool

	// Timeout bounds one fetch. Defaults to DefaultTimeout.
	Timeout time.Duration

	// Logger receives fetch diagnostics. Defaults to a no-op logger.
	Logger *logging.Logger
}

// Fetcher drives a Playwright-managed browser to render pages.
type Fetcher struct {
	mu          sync.Mutex
	pw          *playwright.Playwright
	headless    bool
	timeout     time.Duration
	log         *logging.Logger
	initialized bool
}

// NewFetcher creates a fetcher. Initialize must run before the first Fetch.
func NewFetcher(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	return &Fetcher{
		headless: opts.Headless,
		timeout:  opts.Timeout,
		log:      log,
	}
}

// Initialize installs browser binaries if needed and starts the Playwright
// driver. Driver output is discarded so it cannot bleed into the terminal UI.
func (f *Fetcher) Initialize() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.initialized {
		return nil
	}

	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}
	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("install playwright: %w", err)
	}
	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}

	f.pw = pw
	f.initialized = true
	return nil
}

// Fetch renders rawURL and returns the settled page. The browser waits for
// network idle so lazily rendered content is in the tree before it is
// serialized.
func (f *Fetcher) Fetch(rawURL string) (*Snapshot, error) {
	if _, err := document.Key(rawURL); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.initialized {
		return nil, fmt.Errorf("snapshot: fetcher not initialized")
	}

	browser, err := f.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &f.headless,
	})
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	defer browser.Close()

	context, err := browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("create context: %w", err)
	}
	defer context.Close()

	page, err := context.NewPage()
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	timeout := float64(f.timeout.Milliseconds())
	page.SetDefaultTimeout(timeout)

	f.log.Infof("fetching %s", rawURL)
	waitUntil := playwright.WaitUntilState("networkidle")
	if _, err := page.Goto(rawURL, playwright.PageGotoOptions{
		WaitUntil: &waitUntil,
		Timeout:   &timeout,
	}); err != nil {
		return nil, fmt.Errorf("navigate to %s: %w", rawURL, err)
	}

	title, err := page.Title()
	if err != nil {
		title = ""
	}
	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("read page content: %w", err)
	}

	return &Snapshot{
		URL:       page.URL(),
		Title:     title,
		HTML:      content,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// Shutdown stops the Playwright driver.
func (f *Fetcher) Shutdown() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.initialized || f.pw == nil {
		return nil
	}
	if err := f.pw.Stop(); err != nil {
		return fmt.Errorf("stop playwright: %w", err)
	}
	f.pw = nil
	f.initialized = false
	return nil
}
