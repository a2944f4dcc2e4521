package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	DefaultAPIBase       = "http://localhost:8080"
	DefaultTimeout       = 30 * time.Second
	DefaultDataDirectory = "~/.local/share/cloudguide"
)

type BackendConfig struct {
	APIBase string   `toml:"api_base"`
	Timeout Duration `toml:"timeout"`
	UseRAG  bool     `toml:"use_rag"`
}

type UserConfig struct {
	DataDirectory string            `toml:"data_directory"`
	Backend       BackendConfig     `toml:"backend"`
	Keybindings   KeyBindingsConfig `toml:"keybindings"`
}

// Config is the resolved runtime configuration after all layers are applied.
type Config struct {
	DataDirectory  string
	APIBase        string
	UseRAG         bool
	RequestTimeout time.Duration
	Keybindings    *KeyBindingsConfig
}

// envOverrides mirrors the CLOUDGUIDE_* variables. Empty values mean "unset".
type envOverrides struct {
	APIBase string        `env:"CLOUDGUIDE_API_BASE"`
	UseRAG  string        `env:"CLOUDGUIDE_USE_RAG"`
	Timeout time.Duration `env:"CLOUDGUIDE_TIMEOUT"`
	DataDir string        `env:"CLOUDGUIDE_DATA_DIR"`
}

var Debug = false

// DebugLog is a no-op until InitDebugLog enables it.
var DebugLog = zap.NewNop().Sugar()

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) ExportDir() string {
	return filepath.Join(c.DataDir(), "exports")
}

// UserConfig converts the runtime config back to its file representation.
func (c *Config) UserConfig() *UserConfig {
	uc := &UserConfig{
		DataDirectory: c.DataDirectory,
		Backend: BackendConfig{
			APIBase: c.APIBase,
			Timeout: Duration{c.RequestTimeout},
			UseRAG:  c.UseRAG,
		},
	}
	if c.Keybindings != nil {
		uc.Keybindings = *c.Keybindings
	}
	return uc
}

func (c *Config) applyUserConfig(uc *UserConfig) {
	if uc.DataDirectory != "" {
		c.DataDirectory = uc.DataDirectory
	}
	if uc.Backend.APIBase != "" {
		c.APIBase = uc.Backend.APIBase
	}
	if uc.Backend.Timeout.Duration > 0 {
		c.RequestTimeout = uc.Backend.Timeout.Duration
	}
	c.UseRAG = uc.Backend.UseRAG
	kb := uc.Keybindings
	kb.applyDefaults()
	c.Keybindings = &kb
}

func (c *Config) applyEnvOverrides() error {
	var ov envOverrides
	if err := env.Parse(&ov); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if ov.APIBase != "" {
		c.APIBase = ov.APIBase
	}
	if ov.UseRAG != "" {
		useRAG, err := strconv.ParseBool(ov.UseRAG)
		if err != nil {
			return fmt.Errorf("invalid CLOUDGUIDE_USE_RAG %q: %w", ov.UseRAG, err)
		}
		c.UseRAG = useRAG
	}
	if ov.Timeout > 0 {
		c.RequestTimeout = ov.Timeout
	}
	if ov.DataDir != "" {
		c.DataDirectory = ov.DataDir
	}
	return nil
}

func CheckDebug() bool {
	debug := os.Getenv("CLOUDGUIDE_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog points DebugLog at <dataDir>/debug.log when debugging is enabled,
// either through CLOUDGUIDE_DEBUG or the force flag.
func InitDebugLog(dataDir string, force bool) {
	if !force && !CheckDebug() {
		return
	}

	if err := EnsureDir(dataDir); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create data directory %s: %v\n", dataDir, err)
		return
	}

	logPath := filepath.Join(dataDir, "debug.log")

	zcfg := zap.NewDevelopmentConfig()
	zcfg.OutputPaths = []string{logPath}
	zcfg.ErrorOutputPaths = []string{logPath}
	zcfg.DisableStacktrace = true

	logger, err := zcfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	Debug = true
	DebugLog = logger.Sugar()
	DebugLog.Debugf("=== Debug logging started (CLOUDGUIDE_DEBUG=%s) ===", os.Getenv("CLOUDGUIDE_DEBUG"))
	DebugLog.Debugf("Log path: %s", logPath)
}

// SyncDebugLog flushes buffered log entries. Safe to call when logging is off.
func SyncDebugLog() {
	_ = DebugLog.Sync()
}

// ValidateAPIBase checks that the backend base URL is an absolute http(s) URL.
func ValidateAPIBase(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fmt.Errorf("API base URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid API base URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("API base URL must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("API base URL is missing a host")
	}
	return nil
}

func Default() *Config {
	return &Config{
		DataDirectory:  DefaultDataDirectory,
		APIBase:        DefaultAPIBase,
		RequestTimeout: DefaultTimeout,
		Keybindings:    DefaultKeybindings(),
	}
}

// Load resolves the configuration: defaults, then config.toml, then .env and
// CLOUDGUIDE_* environment variables. Command-line flags are applied by the caller.
func Load() (*Config, error) {
	cfg := Default()

	userCfg, err := LoadUserConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)

	// A missing .env is the common case
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}

	if err := ValidateAPIBase(cfg.APIBase); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}
