// Package fetcher downloads an existing article and reduces it to plain prose.
package fetcher

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/ledongthuc/pdf"

	"seo_content_studio/pkg/logger"
	"seo_content_studio/pkg/metrics"
)

const (
	DefaultTimeout   = 10 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	DefaultMinChars  = 500

	// prose-bearing elements; nested matches are kept, as a browser copy would.
	proseSelector = "p, h1, h2, h3, li, span"
	// fragments this short are navigation or labels rather than prose
	minFragmentChars = 10
	maxBodyBytes     = 10 << 20
)

var (
	ErrInvalidURL = errors.New("invalid url")
	ErrNetwork    = errors.New("network error")
	ErrExtract    = errors.New("could not extract text")

	whitespaceRe = regexp.MustCompile(`\s+`)
)

// Article is the extracted text of a page. LowConfidence means the text is
// shorter than the configured minimum and may not be the real article.
type Article struct {
	URL           string `json:"url"`
	ContentType   string `json:"content_type"`
	Text          string `json:"text"`
	LowConfidence bool   `json:"low_confidence"`
}

type Config struct {
	Timeout    time.Duration
	UserAgent  string
	MinChars   int
	HTTPClient *http.Client
}

type Fetcher struct {
	client    *http.Client
	userAgent string
	minChars  int
}

func New(cfg Config) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	minChars := cfg.MinChars
	if minChars <= 0 {
		minChars = DefaultMinChars
	}
	return &Fetcher{client: client, userAgent: ua, minChars: minChars}
}

// Fetch GETs rawURL and extracts its prose. Transport failures and non-2xx
// answers are ErrNetwork; thin pages are returned with LowConfidence set.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (Article, error) {
	art, err := f.fetch(ctx, rawURL)
	switch {
	case err != nil:
		metrics.FetchTotal.WithLabelValues("error").Inc()
	case art.LowConfidence:
		metrics.FetchTotal.WithLabelValues("low_confidence").Inc()
	default:
		metrics.FetchTotal.WithLabelValues("ok").Inc()
	}
	return art, err
}

func (f *Fetcher) fetch(ctx context.Context, rawURL string) (Article, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Article{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/pdf;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return Article{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Article{}, fmt.Errorf("%w: %s (%s)", ErrNetwork, resp.Status, strings.TrimSpace(string(snippet)))
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return Article{}, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	contentType := resp.Header.Get("Content-Type")
	var text string
	if isPDF(contentType, u.Path) {
		text, err = PDFText(data)
	} else {
		text, err = HTMLText(bytes.NewReader(data))
	}
	if err != nil {
		return Article{}, err
	}

	art := Article{
		URL:           u.String(),
		ContentType:   contentType,
		Text:          text,
		LowConfidence: utf8.RuneCountInString(text) < f.minChars,
	}
	logger.Debug(ctx, "article fetched", "url", art.URL, "chars", utf8.RuneCountInString(text), "low_confidence", art.LowConfidence)
	return art, nil
}

func isPDF(contentType, path string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/pdf") ||
		strings.HasSuffix(strings.ToLower(path), ".pdf")
}

// HTMLText joins the prose fragments of an HTML document with blank lines.
func HTMLText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}

	var parts []string
	doc.Find(proseSelector).Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(whitespaceRe.ReplaceAllString(s.Text(), " "))
		if utf8.RuneCountInString(text) > minFragmentChars {
			parts = append(parts, text)
		}
	})
	return strings.Join(parts, "\n\n"), nil
}

// PDFText extracts the plain text of a PDF document. The pdf package panics
// on malformed objects; those panics come back as ErrExtract.
func PDFText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("%w: malformed pdf: %v", ErrExtract, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	content, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	var sb strings.Builder
	if _, err := io.Copy(&sb, content); err != nil {
		return "", fmt.Errorf("%w: %w", ErrExtract, err)
	}
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(sb.String(), " ")), nil
}
