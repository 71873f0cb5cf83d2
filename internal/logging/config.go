package logging

import (
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

const (
	EnvLogLevel     = "MOSSCTL_LOG_LEVEL"
	EnvLogTimestamp = "MOSSCTL_LOG_TIMESTAMP"
	EnvLogNoColor   = "MOSSCTL_LOG_NOCOLOR"
	EnvLogBypass    = "MOSSCTL_LOG_BYPASS"
)

type Profile int

const (
	ProfileRuntime Profile = iota
	ProfileTest
)

// Config is the resolved logger setup. Bypass skips console formatting and
// writes raw JSON lines.
type Config struct {
	Level     zerolog.Level
	Timestamp bool
	NoColor   bool
	Bypass    bool
	Out       io.Writer
}

var configureOnce sync.Once

func ConfigureRuntime() {
	Configure(ProfileRuntime)
}

func ConfigureTests() {
	Configure(ProfileTest)
}

func Configure(profile Profile) {
	configureOnce.Do(func() {
		cfg := defaultConfig(profile)
		cfg.overrideFromEnv(os.Getenv)
		Apply(cfg)
	})
}

// Apply installs cfg as the global zerolog logger and returns it.
func Apply(cfg Config) zerolog.Logger {
	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}
	zerolog.SetGlobalLevel(cfg.Level)

	var w io.Writer = out
	if !cfg.Bypass {
		console := zerolog.ConsoleWriter{
			Out:     out,
			NoColor: cfg.NoColor,
		}
		if cfg.Timestamp {
			console.TimeFormat = time.RFC3339
		} else {
			console.PartsExclude = []string{zerolog.TimestampFieldName}
		}
		w = console
	}

	ctx := zerolog.New(w).With().Str("app", "mossctl")
	if cfg.Timestamp {
		ctx = ctx.Timestamp()
	}
	logger := ctx.Logger()
	log.Logger = logger
	return logger
}

func defaultConfig(profile Profile) Config {
	cfg := Config{
		Out:     os.Stderr,
		NoColor: !term.IsTerminal(int(os.Stderr.Fd())),
	}
	switch profile {
	case ProfileTest:
		cfg.Level = zerolog.DebugLevel
		cfg.Timestamp = false
	default:
		cfg.Level = zerolog.InfoLevel
		cfg.Timestamp = true
	}
	return cfg
}

// levelAliases are accepted on top of zerolog's own level names.
var levelAliases = map[string]zerolog.Level{
	"diagnostics": zerolog.TraceLevel,
	"warning":     zerolog.WarnLevel,
	"off":         zerolog.Disabled,
	"none":        zerolog.Disabled,
}

// overrideFromEnv applies MOSSCTL_LOG_* values found through lookup. Blank or
// unparsable values leave the field as it is.
func (c *Config) overrideFromEnv(lookup func(string) string) {
	if lvl, ok := levelFromEnv(lookup(EnvLogLevel)); ok {
		c.Level = lvl
	}
	toggles := map[string]*bool{
		EnvLogTimestamp: &c.Timestamp,
		EnvLogNoColor:   &c.NoColor,
		EnvLogBypass:    &c.Bypass,
	}
	for key, dst := range toggles {
		if v, err := strconv.ParseBool(strings.TrimSpace(lookup(key))); err == nil {
			*dst = v
		}
	}
}

func levelFromEnv(raw string) (zerolog.Level, bool) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return zerolog.NoLevel, false
	}
	if lvl, ok := levelAliases[name]; ok {
		return lvl, true
	}
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, false
	}
	return lvl, true
}
