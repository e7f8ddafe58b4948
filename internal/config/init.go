package config

import (
	"fmt"
	"os"
)

const exampleConfig = `# fontsweep configuration
document:
  path: document.yaml

replace:
  batch_size: 50
  load_attempts: 3
  load_retry_wait: 200ms

serve:
  nats:
    enabled: false
    url: nats://localhost:4222
    subject_prefix: fontsweep
  metrics:
    enabled: false
    addr: ":9097"
  watch: true
  rescan_interval: 5m

logging:
  level: info
  format: text
`

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
