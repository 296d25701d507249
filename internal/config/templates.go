package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Trade Report Importer Configuration

[parser]
# Characters kept in each section excerpt
excerpt_length = 700
# Recover summary values from glued statistic runs in degraded PDFs
cluster_recovery = true
# Source tag written on imported trades
source_tag = "import"
# Maximum pages read from a document (0 reads all)
max_pages = 0

[input]
# Largest accepted upload in megabytes
max_file_mb = 25

[store]
# SQLite database for imported trades (defaults to trades.db next to this file)
# path = ""
# Owner recorded on imported trades
owner_id = "local"

[log]
# Level: debug, info, warn, error
level = "info"
console = true
# Write a rotating log file
file = false
max_size = 100
max_backups = 7
max_age = 30

[output]
# Format: text, json, yaml
format = "text"
# Enable colored output
color_enabled = true

[tracing]
# Print OpenTelemetry spans to stderr
enabled = false

[batch]
# Documents parsed in parallel by "report summary" with several files
workers = 4
`

func createTemplateConfig(configDir, name string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, name+".toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	return nil
}
