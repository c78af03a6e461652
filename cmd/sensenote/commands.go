package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sensenote/sensenote/pkg/anchor"
	"github.com/sensenote/sensenote/pkg/config"
	"github.com/sensenote/sensenote/pkg/document"
	"github.com/sensenote/sensenote/pkg/export"
	"github.com/sensenote/sensenote/pkg/snapshot"
	"github.com/sensenote/sensenote/pkg/store"
	"github.com/sensenote/sensenote/pkg/tui"
)

var (
	docHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFE066"))
	idColStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	metaColStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280")).Italic(true)
)

func cmdFetch(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("fetch", flag.ContinueOnError)
	headed := fs.Bool("headed", false, "Run the browser with a visible window")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sensenote fetch [options] <url>")
	}
	rawURL := fs.Arg(0)

	fetcher := snapshot.NewFetcher(snapshot.Options{
		Headless: a.cfg.Snapshot.Headless && !*headed,
		Timeout:  a.cfg.Snapshot.Timeout.Std(),
		Logger:   a.log,
	})
	if err := fetcher.Initialize(); err != nil {
		return err
	}
	defer func() { _ = fetcher.Shutdown() }()

	snap, err := fetcher.Fetch(rawURL)
	if err != nil {
		return err
	}
	if err := a.cache.Put(snap); err != nil {
		return err
	}

	path, err := a.cache.Path(snap.URL)
	if err != nil {
		return err
	}
	if snap.Title != "" {
		fmt.Printf("Fetched %q\n", snap.Title)
	} else {
		fmt.Printf("Fetched %s\n", snap.URL)
	}
	fmt.Printf("Cached at %s\n", path)
	return nil
}

func cmdMark(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("mark", flag.ContinueOnError)
	color := fs.String("color", "", "Highlight color as #rrggbb (defaults to the configured color)")
	note := fs.String("note", "", "Note to attach to the highlight")
	categoryFlag := fs.String("category", "", "Category: important, question, todo or reference")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: sensenote mark [options] <url> <text>")
	}
	rawURL, text := fs.Arg(0), fs.Arg(1)

	category, err := anchor.ParseCategory(*categoryFlag)
	if err != nil {
		return err
	}

	s, err := a.openSession(rawURL)
	if err != nil {
		return err
	}
	// Restore first so the new mark resolves against the same view a fully
	// highlighted page would show.
	if _, err := s.RestoreAll(ctx); err != nil {
		return err
	}

	rec, err := s.MarkText(ctx, text, *color)
	if err != nil {
		return err
	}
	if *note != "" || category != anchor.CategoryNone {
		rec, err = s.UpdateAnnotations(ctx, rec.ID, func(r *anchor.Anchor) error {
			if *note != "" {
				r.Note = *note
			}
			if category != anchor.CategoryNone {
				r.Category = category
			}
			return nil
		})
		if err != nil {
			return err
		}
	}

	fmt.Printf("Marked %s (%s)\n", excerpt(rec.ExactText, 50), shortID(rec.ID))
	return nil
}

func cmdRestore(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "Print each anchor that failed to restore")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sensenote restore [options] <url>")
	}

	s, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}
	res, err := s.RestoreAll(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Restored %d highlights (%d failed, %d already live)\n", res.Restored, res.Failed, res.Skipped)
	if *verbose {
		for _, f := range res.Failures {
			fmt.Printf("  %s: %v\n", shortID(f.AnchorID), f.Err)
		}
	}
	return nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	site := fs.String("site", "", "Only documents matching this glob, e.g. example.com/**")
	categoryFlag := fs.String("category", "", "Only highlights with this category")
	favorite := fs.Bool("favorite", false, "Only favorite highlights")
	if err := fs.Parse(args); err != nil {
		return err
	}

	category, err := anchor.ParseCategory(*categoryFlag)
	if err != nil {
		return err
	}

	anchors, err := a.store.Load(ctx)
	if err != nil {
		return err
	}
	if fs.NArg() == 1 {
		key, err := document.Key(fs.Arg(0))
		if err != nil {
			return err
		}
		anchors = store.ForDocument(anchors, key)
	}
	anchors, err = filterAnchors(anchors, *site, category, *favorite)
	if err != nil {
		return err
	}
	if len(anchors) == 0 {
		fmt.Println("No highlights.")
		return nil
	}

	byDoc := make(map[string][]*anchor.Anchor)
	var keys []string
	for _, rec := range anchors {
		if _, seen := byDoc[rec.DocumentKey]; !seen {
			keys = append(keys, rec.DocumentKey)
		}
		byDoc[rec.DocumentKey] = append(byDoc[rec.DocumentKey], rec)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fmt.Println(docHeaderStyle.Render(key))
		for _, rec := range byDoc[key] {
			line := "  " + idColStyle.Render(shortID(rec.ID)) + "  " + excerpt(rec.ExactText, 60)
			if rec.Favorite {
				line += " ★"
			}
			var meta []string
			if rec.Category != anchor.CategoryNone {
				meta = append(meta, string(rec.Category))
			}
			if rec.Note != "" {
				meta = append(meta, "noted")
			}
			if len(meta) > 0 {
				line += "  " + metaColStyle.Render(strings.Join(meta, ", "))
			}
			fmt.Println(line)
		}
	}
	return nil
}

// filterAnchors applies the list filters. An empty site glob, none category
// and false favorite pass everything through.
func filterAnchors(anchors []*anchor.Anchor, site string, category anchor.Category, favorite bool) ([]*anchor.Anchor, error) {
	var rules *config.SiteRules
	if site != "" {
		var err error
		rules, err = config.NewSiteRules([]string{site}, nil)
		if err != nil {
			return nil, err
		}
	}
	var out []*anchor.Anchor
	for _, rec := range anchors {
		if rules != nil && !rules.Allows(rec.DocumentKey) {
			continue
		}
		if category != anchor.CategoryNone && rec.Category != category {
			continue
		}
		if favorite && !rec.Favorite {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func cmdNote(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("note", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errors.New("usage: sensenote note <id> <text>")
	}

	id, err := resolveID(ctx, a.store, fs.Arg(0))
	if err != nil {
		return err
	}
	if _, err := store.Update(ctx, a.store, id, func(rec *anchor.Anchor) error {
		rec.Note = fs.Arg(1)
		return nil
	}); err != nil {
		return err
	}
	fmt.Printf("Noted %s\n", shortID(id))
	return nil
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("rm", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sensenote rm <id>")
	}

	id, err := resolveID(ctx, a.store, fs.Arg(0))
	if err != nil {
		return err
	}
	if err := store.Remove(ctx, a.store, id); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", shortID(id))
	return nil
}

func cmdExport(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	formatFlag := fs.String("format", "markdown", "Output format: markdown or json")
	out := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	format, err := export.ParseFormat(*formatFlag)
	if err != nil {
		return err
	}
	anchors, err := a.store.Load(ctx)
	if err != nil {
		return err
	}

	if *out == "" {
		return export.Write(os.Stdout, format, anchors)
	}
	if err := writeFile(*out, func(w io.Writer) error {
		return export.Write(w, format, anchors)
	}); err != nil {
		return err
	}
	fmt.Printf("Exported %d highlights to %s\n", len(anchors), *out)
	return nil
}

func cmdRender(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("render", flag.ContinueOnError)
	out := fs.String("o", "", "Output file (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("usage: sensenote render [options] <url>")
	}

	s, err := a.openSession(fs.Arg(0))
	if err != nil {
		return err
	}
	res, err := s.RestoreAll(ctx)
	if err != nil {
		return err
	}

	if *out == "" {
		return s.Render(os.Stdout)
	}
	if err := writeFile(*out, s.Render); err != nil {
		return err
	}
	fmt.Printf("Rendered %s with %d highlights to %s\n", s.Key(), res.Restored, *out)
	return nil
}

func cmdBrowse(ctx context.Context, a *app) error {
	return tui.NewBrowser(a.store, a.cfg, a.log).Run(ctx)
}

// writeFile creates path, streams write into it, and reports close errors.
func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// resolveID expands a unique id prefix to the full stored id.
func resolveID(ctx context.Context, st store.Store, prefix string) (string, error) {
	all, err := st.Load(ctx)
	if err != nil {
		return "", err
	}
	var match string
	for _, a := range all {
		if a.ID == prefix {
			return a.ID, nil
		}
		if strings.HasPrefix(a.ID, prefix) {
			if match != "" {
				return "", fmt.Errorf("id prefix %q is ambiguous", prefix)
			}
			match = a.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("no highlight with id %q", prefix)
	}
	return match, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// excerpt flattens text to one line of at most max runes.
func excerpt(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
