package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/danmuck/mossctl/internal/protocol"
	"github.com/danmuck/mossctl/internal/protocol/session"
	"gopkg.in/yaml.v3"
)

const (
	EnvUserID = "MOSS_USER_ID"
	EnvServer = "MOSS_SERVER"
)

// JobConfig describes one Moss submission.
type JobConfig struct {
	UserID        int64        `toml:"user_id" yaml:"user_id"`
	Language      string       `toml:"language" yaml:"language"`
	Comment       string       `toml:"comment" yaml:"comment"`
	IgnoreLimit   int          `toml:"ignore_limit" yaml:"ignore_limit"`
	ShowMatches   int          `toml:"show_matches" yaml:"show_matches"`
	DirectoryMode bool         `toml:"directory_mode" yaml:"directory_mode"`
	Experimental  bool         `toml:"experimental" yaml:"experimental"`
	Server        ServerConfig `toml:"server" yaml:"server"`
	BaseFiles     []FileConfig `toml:"base_files" yaml:"base_files"`
	Files         []FileConfig `toml:"files" yaml:"files"`
}

// ServerConfig holds transport settings; durations use time.ParseDuration
// syntax.
type ServerConfig struct {
	Address         string `toml:"address" yaml:"address"`
	ConnectTimeout  string `toml:"connect_timeout" yaml:"connect_timeout"`
	WriteTimeout    string `toml:"write_timeout" yaml:"write_timeout"`
	AckTimeout      string `toml:"ack_timeout" yaml:"ack_timeout"`
	ResponseTimeout string `toml:"response_timeout" yaml:"response_timeout"`
	ResponseMode    string `toml:"response_mode" yaml:"response_mode"`
}

type FileConfig struct {
	Path        string `toml:"path" yaml:"path"`
	DisplayName string `toml:"display_name" yaml:"display_name"`
}

func DefaultJobConfig() JobConfig {
	return JobConfig{
		IgnoreLimit: protocol.DefaultIgnoreLimit,
		ShowMatches: protocol.DefaultShowMatches,
	}
}

// LoadJobConfig reads a TOML or YAML job file (chosen by extension) on top
// of the defaults, then applies environment overrides.
func LoadJobConfig(path string) (JobConfig, error) {
	cfg := DefaultJobConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return JobConfig{}, fmt.Errorf("config load failed (%s): %w", path, err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		_, err = toml.Decode(string(data), &cfg)
	}
	if err != nil {
		return JobConfig{}, fmt.Errorf("config parse failed (%s): %w", path, err)
	}
	if err := ApplyEnv(&cfg); err != nil {
		return JobConfig{}, err
	}
	if err := ValidateJobConfig(cfg); err != nil {
		return JobConfig{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides the user id and server address from the environment.
func ApplyEnv(cfg *JobConfig) error {
	if raw := strings.TrimSpace(os.Getenv(EnvUserID)); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %s: %w", EnvUserID, err)
		}
		cfg.UserID = id
	}
	if addr := strings.TrimSpace(os.Getenv(EnvServer)); addr != "" {
		cfg.Server.Address = addr
	}
	return nil
}

func ValidateJobConfig(cfg JobConfig) error {
	if err := protocol.Default().CheckLanguage(strings.TrimSpace(cfg.Language)); err != nil {
		return fmt.Errorf("job config: %w", err)
	}
	if cfg.IgnoreLimit <= 0 {
		return fmt.Errorf("job config: ignore_limit must be positive")
	}
	if cfg.ShowMatches <= 0 {
		return fmt.Errorf("job config: show_matches must be positive")
	}
	if strings.ContainsAny(cfg.Comment, "\r\n") {
		return fmt.Errorf("job config: comment must be a single line")
	}
	for i, f := range cfg.BaseFiles {
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("base_files[%d] missing path", i)
		}
	}
	for i, f := range cfg.Files {
		if strings.TrimSpace(f.Path) == "" {
			return fmt.Errorf("files[%d] missing path", i)
		}
	}
	if _, err := cfg.Server.SessionConfig(); err != nil {
		return fmt.Errorf("job config: server: %w", err)
	}
	return nil
}

// SessionConfig converts the server block into a transport config. Unset
// durations keep the transport defaults; "0" disables a deadline.
func (c ServerConfig) SessionConfig() (session.Config, error) {
	cfg := session.DefaultConfig()
	if addr := strings.TrimSpace(c.Address); addr != "" {
		cfg.Address = addr
	}
	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"connect_timeout", c.ConnectTimeout, &cfg.ConnectTimeout},
		{"write_timeout", c.WriteTimeout, &cfg.WriteTimeout},
		{"ack_timeout", c.AckTimeout, &cfg.AckTimeout},
		{"response_timeout", c.ResponseTimeout, &cfg.ResponseTimeout},
	}
	for _, d := range durations {
		raw := strings.TrimSpace(d.raw)
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return session.Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = v
	}
	mode, err := session.ParseResponseMode(c.ResponseMode)
	if err != nil {
		return session.Config{}, err
	}
	cfg.ResponseMode = mode
	if err := cfg.Validate(); err != nil {
		return session.Config{}, err
	}
	return cfg, nil
}
