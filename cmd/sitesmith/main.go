// Sitesmith generates complete marketing websites from a business intake
// form.
//
// Usage:
//
//	# Start the HTTP API (SSE progress on POST /api/v1/generate)
//	sitesmith serve
//
//	# Generate once from an intake file and publish it locally
//	sitesmith generate --intake business.yaml --deploy local
//
//	# Configure via environment
//	SITESMITH_SERVER_PORT=9090 SITESMITH_GENERATION_API_KEY=sk-... sitesmith serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "sitesmith",
		Short: "Generate complete websites from a business intake",
		Long: `sitesmith turns a business intake form into a complete static website:
archetype classification, page planning, design tokens, layouts, copy, SEO,
assembly, and an iterative quality gate, optionally followed by deployment.`,
		Version:      version,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "sitesmith.yaml", "path to the YAML config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override logging.level")

	cmd.AddCommand(
		newServeCmd(opts),
		newGenerateCmd(opts),
		newStatusCmd(opts),
		newVersionCmd(),
	)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "sitesmith by Fyrsmith Labs\n")
			fmt.Fprintf(out, "Version:    %s\n", version)
			fmt.Fprintf(out, "Commit:     %s\n", gitCommit)
			fmt.Fprintf(out, "Build Date: %s\n", buildDate)
		},
	}
}
