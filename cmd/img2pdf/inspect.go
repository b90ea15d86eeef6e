package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/img2pdf/internal/assemble"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect file.pdf...",
	Short: "Print the page count and page sizes of PDFs",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runInspect,
}

var measureCmd = &cobra.Command{
	Use:   "measure image...",
	Short: "Print the pixel size and page size of images",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMeasure,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	rootCmd.AddCommand(measureCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, path := range args {
		sizes, err := assemble.Inspect(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %d pages\n", path, len(sizes))
		for i, s := range sizes {
			fmt.Fprintf(out, "  page %d: %.2f x %.2f mm\n", i+1, s.WidthMM, s.HeightMM)
		}
	}
	return nil
}

func runMeasure(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	factor := viper.GetFloat64("assemble.mm_per_pixel")
	for _, path := range args {
		p, err := assemble.Measure(path, factor)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: %s %dx%d px, %.2f x %.2f mm\n",
			path, p.Format, p.WidthPx, p.HeightPx, p.Size.WidthMM, p.Size.HeightMM)
	}
	return nil
}
