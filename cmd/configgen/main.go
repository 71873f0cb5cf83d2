package main

import (
	"os"

	"github.com/danmuck/mossctl/internal/config"
	"github.com/danmuck/mossctl/internal/logging"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

func main() {
	format := pflag.String("format", "toml", "config format: toml|yaml")
	output := pflag.String("output", "", "output path for the job template (defaults to mossctl.<format>)")
	validate := pflag.Bool("validate", false, "validate an existing job file")
	input := pflag.String("input", "", "job file to validate (defaults to mossctl.<format>)")
	force := pflag.Bool("force", false, "overwrite existing job file")
	pflag.Parse()

	logging.ConfigureRuntime()

	if *validate {
		path := *input
		if path == "" {
			path = "mossctl." + *format
		}
		cfg, err := config.LoadJobConfig(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("invalid job file")
			os.Exit(1)
		}
		log.Info().
			Str("path", path).
			Str("language", cfg.Language).
			Int("base_files", len(cfg.BaseFiles)).
			Int("files", len(cfg.Files)).
			Msg("validated job file")
		return
	}

	target := *output
	if target == "" {
		target = "mossctl." + *format
	}
	if err := config.WriteTemplate(target, *format, *force); err != nil {
		log.Error().Err(err).Str("path", target).Msg("write template failed")
		os.Exit(1)
	}
	log.Info().Str("format", *format).Str("path", target).Msg("wrote job template")
}
