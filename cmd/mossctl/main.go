package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/danmuck/mossctl/internal/config"
	"github.com/danmuck/mossctl/internal/logging"
	"github.com/danmuck/mossctl/internal/moss"
	"github.com/danmuck/mossctl/internal/protocol"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
)

const defaultEnvFile = ".env"

type options struct {
	configPath   string
	envFile      string
	logLevel     string
	userID       int64
	language     string
	ignoreLimit  int
	directory    bool
	experimental bool
	comment      string
	showMatches  int
	baseFiles    []string
	server       string
	responseMode string
	timeout      time.Duration
}

var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, flags, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(stderr, "mossctl: %v\n", err)
		return 2
	}

	if err := loadEnvFile(opts.envFile); err != nil {
		fmt.Fprintf(stderr, "mossctl: %v\n", err)
		return 1
	}
	if opts.logLevel != "" {
		_ = os.Setenv(logging.EnvLogLevel, opts.logLevel)
	}
	logging.ConfigureRuntime()

	job, err := buildJob(opts, flags)
	if err != nil {
		fmt.Fprintf(stderr, "mossctl: %v\n", err)
		return 2
	}

	s, err := newSession(job)
	if err != nil {
		log.Error().Err(err).Msg("prepare submission")
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	resp, err := s.Submit(ctx)
	if err != nil {
		log.Error().Err(err).Msg("submission failed")
		return 1
	}
	fmt.Fprint(stdout, resp)
	if !strings.HasSuffix(resp, "\n") {
		fmt.Fprintln(stdout)
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (options, *pflag.FlagSet, error) {
	var opts options
	flags := pflag.NewFlagSet("mossctl", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "usage: mossctl [flags] file...\n\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nsupported languages: %s\n", strings.Join(protocol.Default().Languages(), ", "))
	}

	flags.StringVar(&opts.configPath, "config", "", "job file (.toml, .yaml)")
	flags.StringVar(&opts.envFile, "env-file", defaultEnvFile, "dotenv file with MOSS_USER_ID/MOSS_SERVER")
	flags.StringVar(&opts.logLevel, "log-level", "", "trace|debug|info|warn|error|off")
	flags.Int64VarP(&opts.userID, "user-id", "u", 0, "moss account id")
	flags.StringVarP(&opts.language, "language", "l", "c", "source language")
	flags.IntVarP(&opts.ignoreLimit, "ignore-limit", "m", protocol.DefaultIgnoreLimit, "ignore passages seen in more than this many files")
	flags.BoolVarP(&opts.directory, "directory", "d", false, "files are grouped by directory")
	flags.BoolVarP(&opts.experimental, "experimental", "x", false, "use the experimental server")
	flags.StringVarP(&opts.comment, "comment", "c", "", "comment attached to the query")
	flags.IntVarP(&opts.showMatches, "show", "n", protocol.DefaultShowMatches, "number of matching file pairs to show")
	flags.StringArrayVarP(&opts.baseFiles, "base", "b", nil, "base file, repeatable")
	flags.StringVar(&opts.server, "server", "", "server host:port")
	flags.StringVar(&opts.responseMode, "response-mode", "", "until_close|single")
	flags.DurationVar(&opts.timeout, "timeout", 0, "response timeout, 0 waits indefinitely")

	if err := flags.Parse(args); err != nil {
		return options{}, nil, err
	}
	return opts, flags, nil
}

// buildJob layers the job file, the environment and explicit flags, in that
// order. Positional arguments are appended as submission files.
func buildJob(opts options, flags *pflag.FlagSet) (config.JobConfig, error) {
	job := config.DefaultJobConfig()
	if opts.configPath != "" {
		loaded, err := config.LoadJobConfig(opts.configPath)
		if err != nil {
			return config.JobConfig{}, err
		}
		job = loaded
	} else if err := config.ApplyEnv(&job); err != nil {
		return config.JobConfig{}, err
	}

	if flags.Changed("user-id") {
		job.UserID = opts.userID
	}
	if flags.Changed("language") || job.Language == "" {
		job.Language = opts.language
	}
	if flags.Changed("ignore-limit") {
		job.IgnoreLimit = opts.ignoreLimit
	}
	if flags.Changed("directory") {
		job.DirectoryMode = opts.directory
	}
	if flags.Changed("experimental") {
		job.Experimental = opts.experimental
	}
	if flags.Changed("comment") {
		job.Comment = opts.comment
	}
	if flags.Changed("show") {
		job.ShowMatches = opts.showMatches
	}
	if flags.Changed("server") {
		job.Server.Address = opts.server
	}
	if flags.Changed("response-mode") {
		job.Server.ResponseMode = opts.responseMode
	}
	if flags.Changed("timeout") {
		job.Server.ResponseTimeout = opts.timeout.String()
	}
	for _, path := range opts.baseFiles {
		job.BaseFiles = append(job.BaseFiles, config.FileConfig{Path: path})
	}
	for _, path := range flags.Args() {
		job.Files = append(job.Files, config.FileConfig{Path: path})
	}

	if err := config.ValidateJobConfig(job); err != nil {
		return config.JobConfig{}, err
	}
	if len(job.Files) == 0 {
		return config.JobConfig{}, fmt.Errorf("%w: no files to submit", errUsage)
	}
	return job, nil
}

func newSession(job config.JobConfig) (*moss.Session, error) {
	transport, err := job.Server.SessionConfig()
	if err != nil {
		return nil, err
	}
	s, err := moss.New(job.UserID, job.Language,
		moss.WithIgnoreLimit(job.IgnoreLimit),
		moss.WithShowMatches(job.ShowMatches),
		moss.WithDirectoryMode(job.DirectoryMode),
		moss.WithExperimentalServer(job.Experimental),
		moss.WithComment(job.Comment),
		moss.WithTransportConfig(transport),
	)
	if err != nil {
		return nil, err
	}
	for _, f := range job.BaseFiles {
		if err := s.AddBaseFile(f.Path, f.DisplayName); err != nil {
			return nil, err
		}
	}
	for _, f := range job.Files {
		if err := s.AddFile(f.Path, f.DisplayName); err != nil {
			return nil, err
		}
	}
	if err := s.Ready(); err != nil {
		return nil, err
	}
	log.Info().
		Str("language", job.Language).
		Int("base_files", len(job.BaseFiles)).
		Int("files", len(job.Files)).
		Msg("files registered")
	return s, nil
}

// loadEnvFile reads a dotenv file without overriding variables already set.
// A missing default file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if path == defaultEnvFile && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
