package qa

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	// ErrNavigationTimeout is returned when opening a page exceeds the
	// navigation timeout.
	ErrNavigationTimeout = errors.New("navigation timeout")

	// ErrPageNotFound is returned when the requested page does not exist.
	ErrPageNotFound = errors.New("page not found")
)

// Probes understood by Page.Evaluate.
const (
	ProbeLoadTime = "performance.loadTime"
	ProbeTitle    = "document.title"
	// ProbeCount is a prefix: "count:<selector>" returns the number of
	// matching elements.
	ProbeCount = "count:"
)

// Launcher starts a browser.
type Launcher interface {
	Launch(ctx context.Context) (Browser, error)
}

// Browser opens pages. Close releases it and every page it opened.
type Browser interface {
	Open(ctx context.Context, url string, timeout time.Duration) (Page, error)
	Close() error
}

// Page is one opened document.
type Page interface {
	HTML() string
	NavigationHTML() (string, error)
	Evaluate(ctx context.Context, script string) (any, error)
	Close() error
}

// StaticLauncher opens pages from disk or over HTTP and parses them with
// goquery. Relative and file:// URLs are read from disk; http(s) URLs are
// fetched with Client.
type StaticLauncher struct {
	Client *http.Client
}

func (l StaticLauncher) Launch(ctx context.Context) (Browser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &staticBrowser{client: client}, nil
}

type staticBrowser struct {
	client *http.Client
	closed bool
}

func (b *staticBrowser) Open(ctx context.Context, rawURL string, timeout time.Duration) (Page, error) {
	if b.closed {
		return nil, errors.New("browser closed")
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	body, err := b.load(ctx, rawURL)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrNavigationTimeout, rawURL, timeout)
		}
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", rawURL, err)
	}
	return &staticPage{html: string(body), doc: doc, loadTime: time.Since(start)}, nil
}

func (b *staticBrowser) load(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	switch u.Scheme {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, err
		}
		resp, err := b.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, rawURL)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching %s: status %d", rawURL, resp.StatusCode)
		}
		return io.ReadAll(resp.Body)
	case "file", "":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path := u.Path
		if u.Scheme == "" {
			path = rawURL
		}
		data, err := os.ReadFile(filepath.Clean(path))
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrPageNotFound, rawURL)
		}
		return data, err
	default:
		return nil, fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
}

func (b *staticBrowser) Close() error {
	b.closed = true
	return nil
}

type staticPage struct {
	html     string
	doc      *goquery.Document
	loadTime time.Duration
}

func (p *staticPage) HTML() string { return p.html }

// NavigationHTML returns the outer HTML of every nav element in document
// order.
func (p *staticPage) NavigationHTML() (string, error) {
	var b strings.Builder
	var outerErr error
	p.doc.Find("nav").Each(func(_ int, s *goquery.Selection) {
		h, err := goquery.OuterHtml(s)
		if err != nil {
			outerErr = err
			return
		}
		b.WriteString(h)
	})
	return b.String(), outerErr
}

func (p *staticPage) Evaluate(ctx context.Context, script string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch {
	case script == ProbeLoadTime:
		return float64(p.loadTime) / float64(time.Millisecond), nil
	case script == ProbeTitle:
		return strings.TrimSpace(p.doc.Find("title").First().Text()), nil
	case strings.HasPrefix(script, ProbeCount):
		return p.doc.Find(strings.TrimPrefix(script, ProbeCount)).Length(), nil
	default:
		return nil, fmt.Errorf("unsupported probe %q", script)
	}
}

func (p *staticPage) Close() error { return nil }
