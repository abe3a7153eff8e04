// Package export saves published articles as formatted markdown files.
//
// A download fetches the article list once and then formats and writes every
// article concurrently, one task per article. Tasks are independent: each
// writes its own <slug>.md file, so files may appear in any order and a
// failing task never stops or rolls back the others. Every task's outcome is
// collected into a Report.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/devtoy/cli/internal/devto"
	"github.com/devtoy/cli/internal/format"
)

// DefaultConcurrency bounds the number of formatter processes running at once
const DefaultConcurrency = 4

// ArticleSource lists the articles to export
type ArticleSource interface {
	PublishedArticles(ctx context.Context) ([]devto.Article, error)
}

// Result is the outcome of exporting one article
type Result struct {
	Slug string
	Path string
	Err  error
}

// Report collects the outcome of every task of a download, in article order
type Report struct {
	Dir     string
	Results []Result
}

// Saved returns the number of articles written successfully
func (r *Report) Saved() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failed returns the results of the tasks that failed
func (r *Report) Failed() []Result {
	var failed []Result
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// Err joins the errors of all failed tasks, or returns nil when every task succeeded
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, fmt.Errorf("%s: %w", res.Slug, res.Err))
	}
	return errors.Join(errs...)
}

// Downloader exports every published article into a directory
type Downloader struct {
	Source      ArticleSource
	Formatter   format.Formatter
	Concurrency int
	Logger      *slog.Logger

	// OnStart is called once with the number of articles about to be exported
	OnStart func(total int)
	// OnResult is called after each task completes. Calls are serialized.
	OnResult func(Result)
}

// Download fetches the article list once and exports each article to <dir>/<slug>.md.
// A listing failure is returned as an error; task failures are reported in the Report.
func (d *Downloader) Download(ctx context.Context, dir string) (*Report, error) {
	articles, err := d.Source.PublishedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	if d.OnStart != nil {
		d.OnStart(len(articles))
	}

	report := &Report{Dir: dir, Results: make([]Result, len(articles))}

	limit := d.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	var (
		g  errgroup.Group
		mu sync.Mutex
	)
	g.SetLimit(limit)

	for i, article := range articles {
		g.Go(func() error {
			res := d.export(ctx, dir, article)
			report.Results[i] = res

			mu.Lock()
			defer mu.Unlock()
			d.log(res)
			if d.OnResult != nil {
				d.OnResult(res)
			}
			return nil
		})
	}
	g.Wait()

	return report, nil
}

func (d *Downloader) export(ctx context.Context, dir string, article devto.Article) Result {
	res := Result{Slug: article.Slug}

	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	path, err := Filename(dir, article.Slug)
	if err != nil {
		res.Err = err
		return res
	}
	res.Path = path

	f := d.Formatter
	if f == nil {
		f = format.Passthrough{}
	}
	res.Err = SaveArticle(ctx, f, path, article.BodyMarkdown)
	return res
}

func (d *Downloader) log(res Result) {
	if d.Logger == nil {
		return
	}
	if res.Err != nil {
		d.Logger.Warn("article export failed",
			slog.String("slug", res.Slug),
			slog.Any("error", res.Err))
		return
	}
	d.Logger.Debug("article exported",
		slog.String("slug", res.Slug),
		slog.String("path", res.Path))
}

// SaveArticle formats markdown and writes the formatter output to filename.
// Nothing is written when the formatter fails.
func SaveArticle(ctx context.Context, f format.Formatter, filename, markdown string) error {
	var buf bytes.Buffer
	if err := f.Format(ctx, markdown, &buf); err != nil {
		return err
	}

	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// Filename returns <dir>/<slug>.md, rejecting slugs that would escape dir
func Filename(dir, slug string) (string, error) {
	if slug == "" {
		return "", errors.New("article has an empty slug")
	}
	if strings.ContainsAny(slug, `/\`) || strings.Contains(slug, "..") || slug != filepath.Base(slug) {
		return "", fmt.Errorf("article slug %q is not a safe file name", slug)
	}
	return filepath.Join(dir, slug+".md"), nil
}
