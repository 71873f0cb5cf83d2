package config

import (
	"fmt"
	"os"
	"strings"
)

func Template(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "toml", "":
		return tomlTemplate, nil
	case "yaml", "yml":
		return yamlTemplate, nil
	default:
		return "", fmt.Errorf("unknown config format: %s", format)
	}
}

func WriteTemplate(path, format string, overwrite bool) error {
	template, err := Template(format)
	if err != nil {
		return err
	}
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(template), 0o600)
}

const tomlTemplate = `user_id = 0
language = "c"
comment = ""
ignore_limit = 10
show_matches = 250
directory_mode = false
experimental = false

[server]
address = "moss.stanford.edu:7690"
connect_timeout = "30s"
write_timeout = "2m"
ack_timeout = "1m"
response_timeout = "10m"
response_mode = "until_close"

[[base_files]]
path = "starter/skeleton.c"

[[files]]
path = "submissions/alice/main.c"
display_name = "alice/main.c"

[[files]]
path = "submissions/bob/main.c"
display_name = "bob/main.c"
`

const yamlTemplate = `user_id: 0
language: c
comment: ""
ignore_limit: 10
show_matches: 250
directory_mode: false
experimental: false
server:
  address: moss.stanford.edu:7690
  connect_timeout: 30s
  write_timeout: 2m
  ack_timeout: 1m
  response_timeout: 10m
  response_mode: until_close
base_files:
  - path: starter/skeleton.c
files:
  - path: submissions/alice/main.c
    display_name: alice/main.c
  - path: submissions/bob/main.c
    display_name: bob/main.c
`
