package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/spf13/cobra"
)

func newStatusCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print the capability descriptor",
		Long: `Print the capability descriptor for the current configuration: engines,
phase count, generation mode, features, and deployment providers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd.Context(), root, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
}

func runStatus(ctx context.Context, root *rootOptions, out, logOut io.Writer) error {
	a, err := newApp(ctx, root, logOut)
	if err != nil {
		return err
	}
	defer a.Close(context.WithoutCancel(ctx))

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(a.pipeline.Describe(version, a.deployers.Names()))
}
