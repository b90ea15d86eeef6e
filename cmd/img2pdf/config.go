// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/img2pdf/internal/pipeline"
	"github.com/pdiddy/img2pdf/internal/secrets"
	"github.com/pdiddy/img2pdf/pkg/types"
)

const maxAutoConcurrency = 8

func bindFlags(keys map[string]string, lookup func(string) *pflag.Flag) {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}
}

// loadConfig assembles a Config from viper (flags, environment, config file
// and defaults, in that order of precedence) and the loaded secrets.
func loadConfig() (types.Config, error) {
	cfg := types.Config{
		Manifest: viper.GetString("json"),
		Download: types.DownloadConfig{
			HTTPConfig: types.HTTPConfig{
				Timeout:   viper.GetDuration("http.timeout"),
				UserAgent: viper.GetString("http.user_agent"),
			},
			Dir:         viper.GetString("download.dir"),
			Concurrency: resolveConcurrency(viper.GetInt("download.concurrency")),
			Ledger:      viper.GetString("download.ledger"),
			Headers:     secrets.Headers(loadedSecrets),
		},
		Assembly: types.AssemblyConfig{
			PageSizing: types.PageSizing(viper.GetString("assemble.page_size")),
			MMPerPixel: viper.GetFloat64("assemble.mm_per_pixel"),
			Title:      viper.GetString("assemble.title"),
		},
		Log: logConfig(),
	}

	if !cfg.Assembly.PageSizing.Valid() {
		return cfg, fmt.Errorf("invalid page size %q: want %s or %s",
			cfg.Assembly.PageSizing, types.SizePerImage, types.SizeFirstImage)
	}
	if cfg.Assembly.MMPerPixel < 0 {
		return cfg, fmt.Errorf("invalid mm_per_pixel %v: must not be negative", cfg.Assembly.MMPerPixel)
	}
	if cfg.Download.Timeout < 0 {
		return cfg, fmt.Errorf("invalid timeout %v: must not be negative", cfg.Download.Timeout)
	}
	return cfg, nil
}

func logConfig() types.LogConfig {
	return types.LogConfig{
		Level:      viper.GetString("log.level"),
		File:       viper.GetString("log.file"),
		MaxSizeMB:  viper.GetInt("log.max_size_mb"),
		MaxBackups: viper.GetInt("log.max_backups"),
		MaxAgeDays: viper.GetInt("log.max_age_days"),
		Compress:   viper.GetBool("log.compress"),
	}
}

// resolveConcurrency maps 0 to half the available CPUs, between 1 and
// maxAutoConcurrency. Other values pass through.
func resolveConcurrency(n int) int {
	if n != 0 {
		return n
	}
	return min(max(runtime.GOMAXPROCS(0)/2, 1), maxAutoConcurrency)
}

func pipelineOptions() (pipeline.Options, error) {
	cfg, err := loadConfig()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		ManifestPath: cfg.Manifest,
		Download:     cfg.Download,
		Assembly:     cfg.Assembly,
	}, nil
}
