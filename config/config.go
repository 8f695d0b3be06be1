// Package config loads the transfer engine configuration from a YAML file
// and TOXFER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/fatih/structs"
	"github.com/go-playground/validator/v10"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/opd-ai/toxfer/file"
	"github.com/opd-ai/toxfer/storage"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

const (
	ConfigsDirName = ".config"
	AppDirName     = "toxfer"
	ConfigFileName = "config"
	ConfigFileExt  = "yml"
	EnvPrefix      = "TOXFER"

	FormatText = "text"
	FormatJSON = "json"
)

// ErrInvalidConfig wraps validation failures.
var ErrInvalidConfig = errors.New("invalid configuration")

var validate = validator.New()

// Relay holds the public keys of the relay accounts.
type Relay struct {
	GroupBot   string `mapstructure:"group_bot" validate:"omitempty,len=64,hexadecimal"`
	FileBot    string `mapstructure:"file_bot" validate:"omitempty,len=64,hexadecimal"`
	OfflineBot string `mapstructure:"offline_bot" validate:"omitempty,len=64,hexadecimal"`
}

// Config is the engine configuration.
type Config struct {
	DataDir           string        `mapstructure:"data_dir" validate:"required"`
	DatabasePath      string        `mapstructure:"database_path"`
	AutoDownload      bool          `mapstructure:"auto_download"`
	AvatarConcurrency int           `mapstructure:"avatar_concurrency" validate:"min=1,max=64"`
	StallTimeout      time.Duration `mapstructure:"stall_timeout" validate:"gt=0"`
	WatchdogInterval  time.Duration `mapstructure:"watchdog_interval" validate:"gt=0,ltfield=StallTimeout"`
	BusyRetryInterval time.Duration `mapstructure:"busy_retry_interval" validate:"gt=0"`
	ProgressInterval  time.Duration `mapstructure:"progress_interval" validate:"gt=0"`
	EtaInterval       time.Duration `mapstructure:"eta_interval" validate:"gt=0"`
	Relay             Relay         `mapstructure:"relay"`
	LogLevel          string        `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat         string        `mapstructure:"log_format" validate:"oneof=text json"`
}

// Default returns the built-in configuration.
func Default() Config {
	timings := file.DefaultTimings()
	return Config{
		DataDir:           filepath.Join("~", "."+AppDirName),
		AutoDownload:      true,
		AvatarConcurrency: file.DefaultAvatarConcurrency,
		StallTimeout:      timings.StallTimeout,
		WatchdogInterval:  timings.WatchdogInterval,
		BusyRetryInterval: timings.BusyRetryInterval,
		ProgressInterval:  timings.ProgressInterval,
		EtaInterval:       timings.EtaInterval,
		LogLevel:          "info",
		LogFormat:         FormatText,
	}
}

// Map flattens c into viper keys taken from the mapstructure tags. Nested
// sections such as relay become dotted keys.
func (c Config) Map() map[string]any {
	m := map[string]any{}
	flatten(m, "", structs.Fields(c))
	return m
}

func flatten(m map[string]any, prefix string, fields []*structs.Field) {
	for _, field := range fields {
		key := field.Tag("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Kind() == reflect.Struct {
			flatten(m, key, field.Fields())
			continue
		}
		m[key] = field.Value()
	}
}

// Yaml renders c as sorted "key: value" lines.
func (c Config) Yaml() []byte {
	m := c.Map()
	keys := lo.Keys(m)
	slices.Sort(keys)

	var builder strings.Builder
	for _, k := range keys {
		builder.WriteString(fmt.Sprintf("%s: %v\n", k, m[k]))
	}
	return []byte(builder.String())
}

// DefaultPath returns $HOME/.config/toxfer/config.yml.
func DefaultPath() (string, error) {
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("resolving home dir: %w", err)
	}
	return filepath.Join(home, ConfigsDirName, AppDirName, ConfigFileName+"."+ConfigFileExt), nil
}

// Load reads the configuration. An empty path looks for the default file
// and falls back to defaults when it does not exist. Environment variables
// such as TOXFER_AUTO_DOWNLOAD or TOXFER_RELAY_OFFLINE_BOT override both.
// NOTE: The precedence levels are env -> config file -> defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, value := range Default().Map() {
		v.SetDefault(k, value)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %q: %w", path, err)
		}
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return nil, fmt.Errorf("resolving home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ConfigsDirName, AppDirName))
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.expand(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"function": "Load",
		"file":     v.ConfigFileUsed(),
		"data_dir": cfg.DataDir,
	}).Debug("Loaded configuration")
	return &cfg, nil
}

func (c *Config) expand() error {
	dataDir, err := homedir.Expand(c.DataDir)
	if err != nil {
		return fmt.Errorf("expand data_dir: %w", err)
	}
	c.DataDir = dataDir

	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, storage.DefaultDBFileName)
		return nil
	}
	dbPath, err := homedir.Expand(c.DatabasePath)
	if err != nil {
		return fmt.Errorf("expand database_path: %w", err)
	}
	c.DatabasePath = dbPath
	return nil
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// FilesDir is where finished downloads are stored.
func (c Config) FilesDir() string { return filepath.Join(c.DataDir, "files") }

// TempDir holds partial downloads.
func (c Config) TempDir() string { return filepath.Join(c.DataDir, "tmp") }

// ToOptions converts c to coordinator options. Stores and the clock are
// left for the caller to fill.
func (c Config) ToOptions() file.Options {
	return file.Options{
		AutoDownload:      c.AutoDownload,
		AvatarConcurrency: c.AvatarConcurrency,
		Timings: file.Timings{
			StallTimeout:      c.StallTimeout,
			WatchdogInterval:  c.WatchdogInterval,
			ProgressInterval:  c.ProgressInterval,
			EtaInterval:       c.EtaInterval,
			BusyRetryInterval: c.BusyRetryInterval,
		},
		Relays: file.RelayAccounts{
			GroupBot:   c.Relay.GroupBot,
			FileBot:    c.Relay.FileBot,
			OfflineBot: c.Relay.OfflineBot,
		},
		FilesDir: c.FilesDir(),
		TempDir:  c.TempDir(),
	}
}

// ConfigureLogger applies log_level and log_format to logger.
func (c Config) ConfigureLogger(logger *logrus.Logger) error {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	logger.SetLevel(level)

	switch c.LogFormat {
	case FormatJSON:
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return nil
}
