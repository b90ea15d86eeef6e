package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/img2pdf/internal/pipeline"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the manifest's images without assembling",
	Long: `Fetch loads the manifest and downloads every image it lists into the
download directory. Images that already exist (and match the ledger, when one
is kept) are skipped.`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions()
	if err != nil {
		return err
	}
	_, _, err = pipeline.Fetch(cmd.Context(), opts, cmd.OutOrStdout())
	return err
}
