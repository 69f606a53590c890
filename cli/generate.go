package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"seo_content_studio/generator"
	"seo_content_studio/publisher"
)

type generateOptions struct {
	Keyword  string
	Intent   string
	Sections int
	Revise   bool
	Out      string
	Mock     bool
}

var genOpts generateOptions

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run outline, draft, metadata and checklist headlessly and write the Markdown file",
	Long: `generate runs the whole generate workflow without the web UI.
--intent accepts 1, 2 or 3 to pick one of the fixed search intents, or free text.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, genOpts.Mock)
		if err != nil {
			return err
		}
		defer a.close(context.Background())

		return runGenerate(ctx, cmd.OutOrStdout(), a.agent, a.cfg.Server.RequestTimeout, genOpts)
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genOpts.Keyword, "keyword", "k", generator.DefaultKeyword, "target keyword")
	f.StringVarP(&genOpts.Intent, "intent", "i", "1", "search intent: 1-3 or free text")
	f.IntVarP(&genOpts.Sections, "sections", "n", generator.DefaultSections,
		fmt.Sprintf("number of outline sections (%d-%d)", generator.MinSections, generator.MaxSections))
	f.BoolVar(&genOpts.Revise, "revise", false, "auto-revise when the checklist finds problems")
	f.StringVarP(&genOpts.Out, "out", "o", "", "output file (default derived from the keyword)")
	f.BoolVar(&genOpts.Mock, "mock", false, "answer every stage with placeholder content")
}

func runGenerate(ctx context.Context, w io.Writer, agent *generator.Agent, timeout time.Duration, opts generateOptions) error {
	sess := generator.NewSession("cli", generator.ModeGenerate, agent)

	err := withTimeout(ctx, timeout, func(ctx context.Context) error {
		_, err := sess.Outline(ctx, generator.OutlineRequest{
			Keyword:  opts.Keyword,
			Intent:   resolveIntent(opts.Intent),
			Sections: opts.Sections,
		})
		return err
	})
	if err != nil {
		return err
	}
	printOutline(w, sess.State.Outline)

	if err := withTimeout(ctx, timeout, func(ctx context.Context) error {
		_, err := sess.Draft(ctx)
		return err
	}); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s\n", styleDim.Render(fmt.Sprintf("draft: %d characters", len([]rune(sess.State.Draft)))))

	if err := finishReview(ctx, w, sess, timeout, "", opts.Revise); err != nil {
		return err
	}
	return writeDocument(w, sess.State, opts.Out)
}

// finishReview runs metadata and checklist, then the optional revision.
func finishReview(ctx context.Context, w io.Writer, sess *generator.Session, timeout time.Duration, keyword string, revise bool) error {
	if err := withTimeout(ctx, timeout, sess.Metadata); err != nil {
		return err
	}
	printMetadata(w, sess.State.Metadata)

	if err := withTimeout(ctx, timeout, func(ctx context.Context) error {
		return sess.Checklist(ctx, keyword)
	}); err != nil {
		return err
	}
	printChecklist(w, sess.State.Checklist)

	if !revise {
		return nil
	}
	var revised bool
	if err := withTimeout(ctx, timeout, func(ctx context.Context) error {
		var err error
		revised, err = sess.Revise(ctx, keyword)
		return err
	}); err != nil {
		return err
	}
	if !revised {
		fmt.Fprintf(w, "%s\n", styleOK.Render("no revision needed"))
		return nil
	}
	fmt.Fprintf(w, "%s\n", styleOK.Render(fmt.Sprintf("revised: %d characters", len([]rune(sess.State.Revised)))))
	return nil
}

func writeDocument(w io.Writer, st generator.State, out string) error {
	doc, err := publisher.FromState(st)
	if err != nil {
		return err
	}
	if out == "" {
		out = doc.Filename()
	}
	if err := os.WriteFile(out, []byte(doc.Markdown()), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	fmt.Fprintf(w, "\n%s %s\n", styleOK.Render("saved"), out)
	return nil
}

// resolveIntent maps "1".."3" onto the fixed intent phrasings.
func resolveIntent(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(generator.IntentOptions) {
		return generator.IntentOptions[n-1]
	}
	return s
}

func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return fn(ctx)
}
