package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/img2pdf/internal/assemble"
)

var assembleCmd = &cobra.Command{
	Use:   "assemble -o out.pdf image...",
	Short: "Bind local images into a PDF",
	Long: `Assemble writes a PDF with one page per image, in the order given. Each
page is sized to its image unless --page-size first-image is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAssemble,
}

func init() {
	assembleCmd.Flags().StringP("output", "o", "", "output PDF path")
	assembleCmd.MarkFlagRequired("output")

	rootCmd.AddCommand(assembleCmd)
}

func runAssemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	res, err := assemble.Assemble(output, args, cfg.Assembly)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "assembled: %s (%d pages)\n", res.Path, len(res.Pages))
	return nil
}
