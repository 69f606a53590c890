package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetch(t *testing.T) {
	paragraph := strings.Repeat("This paragraph is real article prose about affiliate marketing. ", 5)
	article := `<html><head><title>Post</title><script>var x = "not prose at all, just code";</script></head>
<body>
<nav><a href="/">Home</a></nav>
<h1>Affiliate marketing for beginners</h1>
<p>` + paragraph + `</p>
<h2>Pick a niche you understand</h2>
<ul><li>Choose a program with fair commission rates</li><li>ok</li></ul>
<p>` + paragraph + `</p>
</body></html>`

	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantErr     error
		wantLow     bool
		wantParts   []string
		notWant     []string
	}{
		{
			name:        "article page",
			status:      http.StatusOK,
			contentType: "text/html; charset=utf-8",
			body:        article,
			wantParts:   []string{"Affiliate marketing for beginners", "Pick a niche you understand", "Choose a program with fair commission rates", paragraph[:40]},
			notWant:     []string{"not prose", "Home", "\nok\n"},
		},
		{
			name:        "script only page",
			status:      http.StatusOK,
			contentType: "text/html",
			body:        `<html><head><script src="app.js"></script></head><body><div id="root"></div></body></html>`,
			wantLow:     true,
		},
		{
			name:        "head only page",
			status:      http.StatusOK,
			contentType: "text/html",
			body:        `<html><head><title>Only a title here</title><meta name="description" content="x"></head></html>`,
			wantLow:     true,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    "boom",
			wantErr: ErrNetwork,
		},
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    "missing",
			wantErr: ErrNetwork,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUA string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotUA = r.Header.Get("User-Agent")
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			f := New(Config{})
			art, err := f.Fetch(context.Background(), srv.URL+"/post")
			if gotUA != DefaultUserAgent {
				t.Errorf("User-Agent = %q", gotUA)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Fetch: %v", err)
			}
			if art.LowConfidence != tt.wantLow {
				t.Errorf("LowConfidence = %v, want %v (text %d chars)", art.LowConfidence, tt.wantLow, len(art.Text))
			}
			for _, want := range tt.wantParts {
				if !strings.Contains(art.Text, want) {
					t.Errorf("text missing %q", want)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains("\n"+art.Text+"\n", bad) {
					t.Errorf("text contains %q", bad)
				}
			}
		})
	}
}

func TestFetch_InvalidURL(t *testing.T) {
	f := New(Config{})
	for _, u := range []string{"", "ftp://example.com/x", "not a url", "https://"} {
		if _, err := f.Fetch(context.Background(), u); !errors.Is(err, ErrInvalidURL) {
			t.Errorf("Fetch(%q) err = %v, want ErrInvalidURL", u, err)
		}
	}
}

func TestFetch_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := New(Config{Timeout: 50 * time.Millisecond})
	if _, err := f.Fetch(context.Background(), srv.URL); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(Config{}).Fetch(context.Background(), url); !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
}

func TestFetch_CustomMinChars(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<p>A short but complete paragraph of prose.</p>`))
	}))
	defer srv.Close()

	art, err := New(Config{MinChars: 20, UserAgent: "test-agent"}).Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if art.LowConfidence {
		t.Errorf("LowConfidence with %d chars over a 20 char minimum", len(art.Text))
	}
}

func TestHTMLText_CollapsesWhitespace(t *testing.T) {
	text, err := HTMLText(strings.NewReader("<p>  first\n\n   paragraph   here </p><p>second paragraph text</p>"))
	if err != nil {
		t.Fatal(err)
	}
	want := "first paragraph here\n\nsecond paragraph text"
	if text != want {
		t.Errorf("HTMLText = %q, want %q", text, want)
	}
}

func TestPDFText_RejectsGarbage(t *testing.T) {
	if _, err := PDFText([]byte("definitely not a pdf")); !errors.Is(err, ErrExtract) {
		t.Errorf("err = %v, want ErrExtract", err)
	}
}

// brokenPDF has a well-formed xref table whose /Pages entry points at text
// that is not a PDF object.
func brokenPDF() []byte {
	var b strings.Builder
	b.WriteString("%PDF-1.4\n")
	catalog := b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	pages := b.Len()
	b.WriteString("garbage here not an object\n")
	xref := b.Len()
	b.WriteString("xref\n0 3\n0000000000 65535 f \n")
	fmt.Fprintf(&b, "%010d 00000 n \n%010d 00000 n \n", catalog, pages)
	b.WriteString("trailer\n<< /Size 3 /Root 1 0 R >>\n")
	fmt.Fprintf(&b, "startxref\n%d\n%%%%EOF\n", xref)
	return []byte(b.String())
}

func TestPDFText_MalformedObject(t *testing.T) {
	text, err := PDFText(brokenPDF())
	if !errors.Is(err, ErrExtract) {
		t.Fatalf("err = %v, want ErrExtract", err)
	}
	if text != "" {
		t.Errorf("text = %q, want empty", text)
	}
}

func TestFetch_MalformedPDF(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(brokenPDF())
	}))
	defer srv.Close()

	if _, err := New(Config{}).Fetch(context.Background(), srv.URL+"/paper.pdf"); !errors.Is(err, ErrExtract) {
		t.Fatalf("err = %v, want ErrExtract", err)
	}
}
