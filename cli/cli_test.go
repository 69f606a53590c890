package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"seo_content_studio/config"
	"seo_content_studio/generator"
)

func TestRunGenerateWritesMarkdown(t *testing.T) {
	out := filepath.Join(t.TempDir(), "article.md")
	var buf bytes.Buffer
	agent := generator.NewAgent(generator.MockLLM{}, nil)

	err := runGenerate(context.Background(), &buf, agent, time.Minute, generateOptions{
		Keyword:  "seo basics",
		Intent:   "2",
		Sections: 5,
		Revise:   true,
		Out:      out,
	})
	if err != nil {
		t.Fatalf("runGenerate: %v", err)
	}

	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	md := string(raw)
	for _, want := range []string{"> Meta title: ", "# Sample article title", "placeholder prose"} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
	for _, want := range []string{"Section 5", "no revision needed", "saved"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("output missing %q:\n%s", want, buf.String())
		}
	}
}

func TestRunGenerateUnconfigured(t *testing.T) {
	var buf bytes.Buffer
	err := runGenerate(context.Background(), &buf, generator.NewAgent(nil, nil), time.Minute, generateOptions{
		Keyword:  "k",
		Sections: generator.DefaultSections,
	})
	if !errors.Is(err, generator.ErrConfiguration) {
		t.Fatalf("err = %v, want ErrConfiguration", err)
	}
}

func TestRunDiagnoseFromStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "audited.md")
	var buf bytes.Buffer
	in := strings.NewReader("An existing article about link building.\n")

	err := runDiagnose(context.Background(), in, &buf, generator.NewAgent(generator.MockLLM{}, nil), time.Minute, diagnoseOptions{
		File:    "-",
		Keyword: "link building",
		Out:     out,
	})
	if err != nil {
		t.Fatalf("runDiagnose: %v", err)
	}
	if !strings.Contains(buf.String(), "from pasted") {
		t.Errorf("output = %s", buf.String())
	}
	raw, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "An existing article about link building.") {
		t.Errorf("written article = %q", raw)
	}
}

func TestRunDiagnoseNeedsArticle(t *testing.T) {
	var buf bytes.Buffer
	err := runDiagnose(context.Background(), strings.NewReader(""), &buf, generator.NewAgent(generator.MockLLM{}, nil), time.Minute, diagnoseOptions{Keyword: "k"})
	if !errors.Is(err, generator.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestResolveIntent(t *testing.T) {
	tests := map[string]string{
		"1":               generator.IntentOptions[0],
		" 3 ":             generator.IntentOptions[2],
		"4":               "4",
		"0":               "0",
		"compare prices":  "compare prices",
	}
	for in, want := range tests {
		if got := resolveIntent(in); got != want {
			t.Errorf("resolveIntent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReadArticleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.txt")
	if err := os.WriteFile(path, []byte("file body"), 0o644); err != nil {
		t.Fatal(err)
	}
	if got, err := readArticleFile(nil, path); err != nil || got != "file body" {
		t.Errorf("file = %q, %v", got, err)
	}
	if got, err := readArticleFile(strings.NewReader("stdin body"), "-"); err != nil || got != "stdin body" {
		t.Errorf("stdin = %q, %v", got, err)
	}
	if got, err := readArticleFile(nil, ""); err != nil || got != "" {
		t.Errorf("none = %q, %v", got, err)
	}
	if _, err := readArticleFile(nil, filepath.Join(t.TempDir(), "missing.txt")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestBuildLLM(t *testing.T) {
	ctx := context.Background()
	t.Setenv("STUDIO_CLI_TEST_KEY", "")

	llm, err := buildLLM(ctx, config.LLMConfig{Provider: "mock"})
	if err != nil || llm == nil {
		t.Errorf("mock = %v, %v", llm, err)
	}

	llm, err = buildLLM(ctx, config.LLMConfig{Provider: "gemini", APIKeyEnv: "STUDIO_CLI_TEST_KEY"})
	if err != nil || llm != nil {
		t.Errorf("no key = %v, %v", llm, err)
	}

	t.Setenv("STUDIO_CLI_TEST_KEY", "k")
	if _, err := buildLLM(ctx, config.LLMConfig{Provider: "deepseek", APIKeyEnv: "STUDIO_CLI_TEST_KEY"}); err == nil {
		t.Error("deepseek without base_url accepted")
	}
	if _, err := buildLLM(ctx, config.LLMConfig{Provider: "claude", APIKeyEnv: "STUDIO_CLI_TEST_KEY"}); err == nil {
		t.Error("unknown provider accepted")
	}
	llm, err = buildLLM(ctx, config.LLMConfig{Provider: "gemini", Model: "gemini-2.5-flash", APIKeyEnv: "STUDIO_CLI_TEST_KEY"})
	if err != nil || llm == nil {
		t.Errorf("gemini = %v, %v", llm, err)
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	printError(&buf, &generator.ParseError{Raw: "raw provider text", Reason: "no JSON object in response"})
	if !strings.Contains(buf.String(), "raw provider text") {
		t.Errorf("parse error output = %s", buf.String())
	}

	buf.Reset()
	printError(&buf, generator.ErrConfiguration)
	if !strings.Contains(buf.String(), "no API key") {
		t.Errorf("configuration output = %s", buf.String())
	}
}
