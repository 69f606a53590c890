package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"seo_content_studio/generator"
)

type diagnoseOptions struct {
	URL     string
	File    string
	Keyword string
	Intent  string
	Revise  bool
	Out     string
	Mock    bool
}

var diagOpts diagnoseOptions

var diagnoseCmd = &cobra.Command{
	Use:   "diagnose",
	Short: "Audit an existing article from a URL or file",
	Long: `diagnose loads an article, then generates metadata and runs the checklist.
When both --url and --file are given the file is used if the page cannot be
fetched or has too little text. Use --file - to read from stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, diagOpts.Mock)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		return runDiagnose(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), a.agent, a.cfg.Server.RequestTimeout, diagOpts)
	},
}

func init() {
	f := diagnoseCmd.Flags()
	f.StringVarP(&diagOpts.URL, "url", "u", "", "article URL")
	f.StringVarP(&diagOpts.File, "file", "f", "", "file holding the article text (- for stdin)")
	f.StringVarP(&diagOpts.Keyword, "keyword", "k", "", "target keyword")
	f.StringVarP(&diagOpts.Intent, "intent", "i", "", "search intent")
	f.BoolVar(&diagOpts.Revise, "revise", false, "auto-revise when the checklist finds problems")
	f.StringVarP(&diagOpts.Out, "out", "o", "", "write the (revised) article to this file")
	f.BoolVar(&diagOpts.Mock, "mock", false, "answer every stage with placeholder content")
}

func runDiagnose(ctx context.Context, in io.Reader, w io.Writer, agent *generator.Agent, timeout time.Duration, opts diagnoseOptions) error {
	body, err := readArticleFile(in, opts.File)
	if err != nil {
		return err
	}

	sess := generator.NewSession("cli", generator.ModeDiagnose, agent)
	var report generator.FetchReport
	if err := withTimeout(ctx, timeout, func(ctx context.Context) error {
		var err error
		report, err = sess.Diagnose(ctx, generator.DiagnoseRequest{
			Keyword: opts.Keyword,
			Intent:  opts.Intent,
			URL:     opts.URL,
			Body:    body,
		})
		return err
	}); err != nil {
		if report.Warning != "" {
			printWarning(w, report.Warning)
		}
		return err
	}
	if report.Warning != "" {
		printWarning(w, report.Warning)
	}
	fmt.Fprintf(w, "%s\n", styleDim.Render(fmt.Sprintf("article: %d characters from %s", report.Chars, report.Source)))

	if err := finishReview(ctx, w, sess, timeout, opts.Keyword, opts.Revise); err != nil {
		return err
	}
	if opts.Out == "" {
		return nil
	}
	return writeDocument(w, sess.State, opts.Out)
}

func readArticleFile(in io.Reader, path string) (string, error) {
	switch path {
	case "":
		return "", nil
	case "-":
		b, err := io.ReadAll(in)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	default:
		b, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return string(b), nil
	}
}
