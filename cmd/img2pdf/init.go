package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/img2pdf/internal/acquire"
	"github.com/pdiddy/img2pdf/internal/manifest"
	"github.com/pdiddy/img2pdf/pkg/types"
)

var initCmd = &cobra.Command{
	Use:   "init [url...]",
	Short: "Write a manifest listing the given image URLs",
	Long: `Init writes a manifest to the --json path (default.json unless set). The
format follows the file extension: .yaml and .yml write YAML, anything else
JSON. Every URL is checked before anything is written.`,
	RunE: runInit,
}

func init() {
	initCmd.Flags().StringP("output", "o", "output.pdf", "document file name recorded in the manifest")
	initCmd.Flags().Bool("force", false, "overwrite an existing manifest")

	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	path := viper.GetString("json")
	output, _ := cmd.Flags().GetString("output")
	force, _ := cmd.Flags().GetBool("force")

	if _, err := acquire.FileNames(args); err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("manifest %s already exists; use --force to overwrite", path)
	}

	urls := args
	if urls == nil {
		urls = []string{}
	}
	m := &types.Manifest{
		FileName: output,
		Images:   types.ImageList{ImageCount: len(urls), URLs: urls},
	}
	if err := manifest.Write(m, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d images)\n", path, len(urls))
	return nil
}
