// Package main provides the sensenote command line application. It snapshots
// web pages into a local cache, captures text highlights on them, restores
// the highlights on later loads, and manages the stored annotations from the
// terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/logging"
	"github.com/sensenote/sensenote/pkg/page"
	"github.com/sensenote/sensenote/pkg/snapshot"
	"github.com/sensenote/sensenote/pkg/store"
)

const version = "0.1.0" // Version of the sensenote CLI

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("sensenote: %v", err)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "version", "--version", "-version":
		fmt.Printf("sensenote v%s\n", version)
		return nil
	case "help", "--help", "-h":
		usage()
		return nil
	}

	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	switch cmd {
	case "fetch":
		return cmdFetch(ctx, a, rest)
	case "mark":
		return cmdMark(ctx, a, rest)
	case "restore":
		return cmdRestore(ctx, a, rest)
	case "list":
		return cmdList(ctx, a, rest)
	case "note":
		return cmdNote(ctx, a, rest)
	case "rm":
		return cmdRemove(ctx, a, rest)
	case "export":
		return cmdExport(ctx, a, rest)
	case "render":
		return cmdRender(ctx, a, rest)
	case "browse":
		return cmdBrowse(ctx, a)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// app bundles the dependencies every subcommand shares.
type app struct {
	cfg   *config.Config
	log   *logging.Logger
	store store.Store
	cache *snapshot.Cache
}

func newApp() (*app, error) {
	path, err := config.DefaultPath()
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	logger, _ := logging.NewAt(cfg.LogsDir(), "cli") // a degraded logger still works
	st, err := store.NewFileStore(cfg.StorePath())
	if err != nil {
		return nil, err
	}
	cache, err := snapshot.NewCache(cfg.PagesDir())
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, log: logger, store: st, cache: cache}, nil
}

func (a *app) close() {
	_ = a.log.Close()
}

// openSession loads the cached page for rawURL and binds a session to it.
func (a *app) openSession(rawURL string) (*page.Session, error) {
	snap, err := a.cache.Get(rawURL)
	if err != nil {
		if errors.Is(err, snapshot.ErrNotCached) {
			return nil, fmt.Errorf("%w (run: sensenote fetch %s)", err, rawURL)
		}
		return nil, err
	}
	doc, err := snap.Document()
	if err != nil {
		return nil, err
	}
	return page.NewSession(doc, a.store, page.Options{Config: a.cfg, Logger: a.log})
}

func usage() {
	fmt.Fprintf(os.Stderr, "sensenote - web highlights from the terminal\n\n")
	fmt.Fprintf(os.Stderr, "Usage: sensenote <command> [options] [arguments]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  fetch <url>         Snapshot a page into the local cache\n")
	fmt.Fprintf(os.Stderr, "  mark <url> <text>   Highlight the first occurrence of text on a cached page\n")
	fmt.Fprintf(os.Stderr, "  restore <url>       Re-apply stored highlights to a cached page\n")
	fmt.Fprintf(os.Stderr, "  list [url]          List stored highlights\n")
	fmt.Fprintf(os.Stderr, "  note <id> <text>    Attach a note to a highlight\n")
	fmt.Fprintf(os.Stderr, "  rm <id>             Delete a highlight\n")
	fmt.Fprintf(os.Stderr, "  export              Export highlights as markdown or JSON\n")
	fmt.Fprintf(os.Stderr, "  render <url>        Write the annotated page HTML\n")
	fmt.Fprintf(os.Stderr, "  browse              Browse highlights interactively\n")
	fmt.Fprintf(os.Stderr, "  version             Show version and exit\n")
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  sensenote fetch https://example.com/article\n")
	fmt.Fprintf(os.Stderr, "  sensenote mark https://example.com/article \"the passage to keep\"\n")
	fmt.Fprintf(os.Stderr, "  sensenote mark -color \"#90ee90\" -note \"verify this\" https://example.com/article \"a claim\"\n")
	fmt.Fprintf(os.Stderr, "  sensenote restore https://example.com/article\n")
	fmt.Fprintf(os.Stderr, "  sensenote list -favorite\n")
	fmt.Fprintf(os.Stderr, "  sensenote export -format markdown -o highlights.md\n")
	fmt.Fprintf(os.Stderr, "  sensenote browse\n")
}
