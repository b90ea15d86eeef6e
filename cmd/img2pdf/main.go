// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the img2pdf CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/pdiddy/img2pdf/internal/logging"
	"github.com/pdiddy/img2pdf/internal/pipeline"
	"github.com/pdiddy/img2pdf/internal/secrets"
)

const (
	appName          = "img2pdf"
	secretsDir       = ".secrets/"
	defaultManifest  = "default.json"
	defaultLedger    = ".img2pdf.db"
	defaultTimeout   = 60 * time.Second
	defaultUserAgent = "img2pdf/0.1"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd downloads the images a manifest lists and assembles them into one PDF.
var rootCmd = &cobra.Command{
	Use:   appName,
	Short: "Download the images a manifest lists and bind them into a PDF",
	Long: `img2pdf reads a manifest naming an output document and an ordered list of
image URLs, downloads every image into the download directory (files that
already exist are not fetched again), and writes a PDF with one page per
image, each page sized to its image.

The fetch, assemble and inspect subcommands run single stages.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runConvert,
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./img2pdf.yaml or $XDG_CONFIG_HOME/img2pdf/img2pdf.yaml)")
	pf.String("log-level", "", "diagnostic log level: debug, info, warn, error (default warn)")
	pf.String("log-file", "", "write diagnostics to a rotating log file instead of stderr")
	pf.StringP("json", "j", defaultManifest, "manifest file (JSON or YAML)")
	pf.String("dir", ".", "directory images are downloaded to")
	pf.Int("concurrency", 1, "downloads in flight; 0 sizes the pool from available CPUs")
	pf.Duration("timeout", defaultTimeout, "HTTP request timeout (0 disables)")
	pf.String("ledger", defaultLedger, "download ledger, relative to --dir (empty disables)")
	pf.String("page-size", "per-image", "page sizing: per-image or first-image")
	pf.String("title", "", "document title (default: output file name)")

	bindFlags(map[string]string{
		"log.level":            "log-level",
		"log.file":             "log-file",
		"json":                 "json",
		"download.dir":         "dir",
		"download.concurrency": "concurrency",
		"http.timeout":         "timeout",
		"download.ledger":      "ledger",
		"assemble.page_size":   "page-size",
		"assemble.title":       "title",
	}, pf.Lookup)

	viper.SetDefault("json", defaultManifest)
	viper.SetDefault("download.dir", ".")
	viper.SetDefault("download.concurrency", 1)
	viper.SetDefault("download.ledger", defaultLedger)
	viper.SetDefault("http.timeout", defaultTimeout)
	viper.SetDefault("http.user_agent", defaultUserAgent)
	viper.SetDefault("assemble.page_size", "per-image")
	viper.SetDefault("log.level", "warn")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName(appName)
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, appName))
	}

	viper.SetEnvPrefix("IMG2PDF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// A missing config file is fine; settings fall back to flags and defaults.
	viper.ReadInConfig()
}

// setup runs before every command: logging, runtime and secrets.
func setup(cmd *cobra.Command, args []string) error {
	logging.Init(logConfig())
	if used := viper.ConfigFileUsed(); used != "" {
		logging.Info("using config file", "path", used)
	}

	maxprocs.Set(maxprocs.Logger(func(format string, args ...any) {
		logging.Debug(fmt.Sprintf(format, args...))
	}))

	s, err := secrets.Load(secretsDir)
	if err != nil {
		return err
	}
	loadedSecrets = s
	if len(s) > 0 {
		keys := make([]string, 0, len(s))
		for k := range s {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		logging.Info("loaded secrets", "keys", keys)
	}
	return nil
}

func runConvert(cmd *cobra.Command, args []string) error {
	opts, err := pipelineOptions()
	if err != nil {
		return err
	}
	_, err = pipeline.Run(cmd.Context(), opts, cmd.OutOrStdout())
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Close()
	if err != nil {
		os.Exit(1)
	}
}
