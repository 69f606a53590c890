// Package cli holds the cobra commands: the web server and two headless
// runs of the workflow.
package cli

import (
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "seo-studio",
	Short: "Outline, draft and audit SEO articles with a text-generation provider",
	Long: `seo-studio walks an article from keyword to finished Markdown: outline, draft,
metadata, a four-point quality checklist and an optional auto-revision.
It can also diagnose an existing article loaded from a URL or a file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default configs/config.yaml when present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override observability.logging.level")

	rootCmd.AddCommand(serveCmd, generateCmd, diagnoseCmd)
}

// Execute runs the root command.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}
