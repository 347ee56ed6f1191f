package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config is the root configuration for pwt, stored in ~/.pwt/config.yaml.
// Every key can be overridden from the environment with the PWT_ prefix,
// e.g. PWT_DATA_DIR or PWT_LOG_LEVEL.
type Config struct {
	// DataDir holds the database. Empty means ~/.pwt.
	DataDir string      `mapstructure:"data_dir"`
	Log     LogConfig   `mapstructure:"log"`
	Watch   WatchConfig `mapstructure:"watch"`
}

// LogConfig controls diagnostic output on stderr.
type LogConfig struct {
	// Level is a zerolog level name: trace, debug, info, warn, error, disabled.
	Level  string `mapstructure:"level" validate:"required"`
	Format string `mapstructure:"format" validate:"oneof=human json"`
}

// WatchConfig holds settings for the live payout board.
type WatchConfig struct {
	// PollIntervalSec is how often the board re-reads the database to pick up
	// writes from other processes.
	PollIntervalSec int `mapstructure:"poll_interval_sec" validate:"gte=1,lte=3600"`
}

const (
	DefaultLogLevel        = "warn"
	DefaultLogFormat       = "human"
	DefaultPollIntervalSec = 5

	envPrefix = "PWT"
)

func defaultConfig() Config {
	return Config{
		Log:   LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		Watch: WatchConfig{PollIntervalSec: DefaultPollIntervalSec},
	}
}

// configTemplate is the annotated config written on first run.
const configTemplate = `# pwt configuration – ~/.pwt/config.yaml
#
# All settings are optional; the values below are the built-in defaults.
# Any key can also be set from the environment, e.g. PWT_LOG_LEVEL=debug.

# Directory holding pwt.db. Leave empty for ~/.pwt.
data_dir: ""

log:
  # trace, debug, info, warn, error or disabled.
  level: warn
  # human (coloured console output) or json.
  format: human

watch:
  # How often 'pwt watch' re-reads the database, in seconds. Changes made by
  # this process show up immediately; this catches edits from other shells.
  poll_interval_sec: 5
`

// DefaultPath returns the path to ~/.pwt/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".pwt", "config.yaml"), nil
}

// Load reads the YAML config at path, creating it with annotated defaults on
// first run. Missing keys fall back to the defaults; PWT_* environment
// variables take precedence over the file.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	def := defaultConfig()
	v.SetDefault("data_dir", def.DataDir)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
	v.SetDefault("watch.poll_interval_sec", def.Watch.PollIntervalSec)

	exists := true
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
			exists = false
		}
	}
	if exists {
		if err := v.ReadInConfig(); err != nil {
			return def, fmt.Errorf("reading config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return def, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.Log.Format = strings.ToLower(cfg.Log.Format)
	if err := validator.New().Struct(cfg); err != nil {
		return def, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
