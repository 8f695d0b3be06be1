package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/opd-ai/toxfer/file"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var offlineBot = strings.Repeat("ab", 32)

func init() {
	// Tests point HOME at temp directories.
	homedir.DisableCache = true
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.True(t, cfg.AutoDownload)
	assert.Equal(t, file.DefaultStallTimeout, cfg.StallTimeout)
	assert.Equal(t, file.DefaultAvatarConcurrency, cfg.AvatarConcurrency)
}

func TestLoad_File(t *testing.T) {
	dataDir := t.TempDir()
	path := writeConfig(t, `
data_dir: `+dataDir+`
auto_download: false
avatar_concurrency: 2
stall_timeout: 45s
relay:
  offline_bot: `+offlineBot+`
log_format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dataDir, "toxfer.db"), cfg.DatabasePath)
	assert.False(t, cfg.AutoDownload)
	assert.Equal(t, 2, cfg.AvatarConcurrency)
	assert.Equal(t, 45*time.Second, cfg.StallTimeout)
	assert.Equal(t, file.DefaultWatchdogInterval, cfg.WatchdogInterval, "unset keys keep defaults")
	assert.Equal(t, offlineBot, cfg.Relay.OfflineBot)
	assert.Equal(t, FormatJSON, cfg.LogFormat)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, "data_dir: "+t.TempDir()+"\nauto_download: true\n")
	t.Setenv("TOXFER_AUTO_DOWNLOAD", "false")
	t.Setenv("TOXFER_BUSY_RETRY_INTERVAL", "25ms")
	t.Setenv("TOXFER_RELAY_OFFLINE_BOT", offlineBot)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.AutoDownload)
	assert.Equal(t, 25*time.Millisecond, cfg.BusyRetryInterval)
	assert.Equal(t, offlineBot, cfg.Relay.OfflineBot)
}

func TestLoad_ExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := writeConfig(t, "data_dir: ~/chat\ndatabase_path: ~/db/records.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "chat"), cfg.DataDir)
	assert.Equal(t, filepath.Join(home, "db", "records.db"), cfg.DatabasePath)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"zero concurrency", "avatar_concurrency: 0\n"},
		{"watchdog slower than stall timeout", "stall_timeout: 1s\nwatchdog_interval: 5s\n"},
		{"bad log level", "log_level: loud\n"},
		{"bad log format", "log_format: xml\n"},
		{"short relay key", "relay:\n  file_bot: abcd\n"},
		{"non-hex relay key", "relay:\n  group_bot: " + strings.Repeat("zz", 32) + "\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "data_dir: "+t.TempDir()+"\n"+tt.content)
			_, err := Load(path)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_NoDefaultFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".toxfer"), cfg.DataDir)
}

func TestToOptions(t *testing.T) {
	cfg := Default()
	cfg.DataDir = "/data"
	cfg.Relay.OfflineBot = offlineBot
	cfg.ProgressInterval = 250 * time.Millisecond

	opts := cfg.ToOptions()
	assert.Equal(t, "/data/files", opts.FilesDir)
	assert.Equal(t, "/data/tmp", opts.TempDir)
	assert.Equal(t, 250*time.Millisecond, opts.Timings.ProgressInterval)
	assert.True(t, opts.Relays.Contains(offlineBot))
	assert.Equal(t, cfg.AutoDownload, opts.AutoDownload)
}

func tagKeys(prefix string, typ reflect.Type) []string {
	var keys []string
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		key := field.Tag.Get("mapstructure")
		if prefix != "" {
			key = prefix + "." + key
		}
		if field.Type.Kind() == reflect.Struct {
			keys = append(keys, tagKeys(key, field.Type)...)
			continue
		}
		keys = append(keys, key)
	}
	return keys
}

func TestMap_CoversEveryTag(t *testing.T) {
	cfg := Default()
	cfg.Relay.OfflineBot = offlineBot
	m := cfg.Map()

	assert.ElementsMatch(t, tagKeys("", reflect.TypeOf(cfg)), lo.Keys(m))
	assert.Equal(t, offlineBot, m["relay.offline_bot"])
	assert.Equal(t, cfg.StallTimeout, m["stall_timeout"])
	assert.Equal(t, true, m["auto_download"])
}

func TestYaml_SortedKeys(t *testing.T) {
	lines := strings.Split(strings.TrimSpace(string(Default().Yaml())), "\n")
	require.Len(t, lines, len(Default().Map()))
	assert.True(t, strings.HasPrefix(lines[0], "auto_download: "))
	assert.Contains(t, lines, "log_format: text")
}

func TestConfigureLogger(t *testing.T) {
	logger := logrus.New()
	cfg := Default()
	cfg.LogLevel = "debug"
	cfg.LogFormat = FormatJSON

	require.NoError(t, cfg.ConfigureLogger(logger))
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	assert.IsType(t, &logrus.JSONFormatter{}, logger.Formatter)

	cfg.LogLevel = "loud"
	assert.ErrorIs(t, cfg.ConfigureLogger(logger), ErrInvalidConfig)
}
