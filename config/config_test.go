package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCloudGuideEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"CLOUDGUIDE_API_BASE", "CLOUDGUIDE_USE_RAG", "CLOUDGUIDE_TIMEOUT", "CLOUDGUIDE_DATA_DIR", "CLOUDGUIDE_DEBUG"} {
		t.Setenv(name, "")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Run("unset variables keep current values", func(t *testing.T) {
		clearCloudGuideEnv(t)

		cfg := Default()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, DefaultAPIBase, cfg.APIBase)
		assert.False(t, cfg.UseRAG)
		assert.Equal(t, DefaultTimeout, cfg.RequestTimeout)
		assert.Equal(t, DefaultDataDirectory, cfg.DataDirectory)
	})

	t.Run("all variables set", func(t *testing.T) {
		clearCloudGuideEnv(t)
		t.Setenv("CLOUDGUIDE_API_BASE", "http://guide.internal:9000")
		t.Setenv("CLOUDGUIDE_USE_RAG", "true")
		t.Setenv("CLOUDGUIDE_TIMEOUT", "5s")
		t.Setenv("CLOUDGUIDE_DATA_DIR", "/tmp/cg")

		cfg := Default()
		require.NoError(t, cfg.applyEnvOverrides())

		assert.Equal(t, "http://guide.internal:9000", cfg.APIBase)
		assert.True(t, cfg.UseRAG)
		assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
		assert.Equal(t, "/tmp/cg", cfg.DataDirectory)
	})

	t.Run("explicit false turns RAG off", func(t *testing.T) {
		clearCloudGuideEnv(t)
		t.Setenv("CLOUDGUIDE_USE_RAG", "0")

		cfg := Default()
		cfg.UseRAG = true
		require.NoError(t, cfg.applyEnvOverrides())

		assert.False(t, cfg.UseRAG)
	})

	t.Run("invalid RAG flag is an error", func(t *testing.T) {
		clearCloudGuideEnv(t)
		t.Setenv("CLOUDGUIDE_USE_RAG", "maybe")

		cfg := Default()
		err := cfg.applyEnvOverrides()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "CLOUDGUIDE_USE_RAG")
	})
}

func TestValidateAPIBase(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"default loopback", "http://localhost:8080", false},
		{"https with path", "https://guide.example.com/prefix", false},
		{"surrounding whitespace", "  http://localhost:8080  ", false},
		{"empty", "", true},
		{"missing scheme", "localhost:8080", true},
		{"ftp scheme", "ftp://localhost", true},
		{"no host", "http://", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateAPIBase(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadUserConfigFromPath(t *testing.T) {
	t.Run("missing file writes template and returns defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.toml")

		cfg, err := LoadUserConfigFromPath(path)
		require.NoError(t, err)

		assert.Equal(t, DefaultAPIBase, cfg.Backend.APIBase)
		assert.Equal(t, DefaultTimeout, cfg.Backend.Timeout.Duration)
		assert.True(t, FileExists(path))

		// The generated template must itself parse to the same defaults
		reparsed, err := LoadUserConfigFromPath(path)
		require.NoError(t, err)
		assert.Equal(t, cfg.Backend, reparsed.Backend)
		assert.Equal(t, "alt", reparsed.Keybindings.Primary)
	})

	t.Run("file values override defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[backend]
api_base = "http://10.0.0.5:8080"
timeout = "45s"
use_rag = true

[keybindings]
primary = "ctrl"
[keybindings.actions]
toggle_rag = "ctrl+t"
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0600))

		cfg, err := LoadUserConfigFromPath(path)
		require.NoError(t, err)

		assert.Equal(t, "http://10.0.0.5:8080", cfg.Backend.APIBase)
		assert.Equal(t, 45*time.Second, cfg.Backend.Timeout.Duration)
		assert.True(t, cfg.Backend.UseRAG)
		assert.Equal(t, DefaultDataDirectory, cfg.DataDirectory)
		assert.Equal(t, "ctrl+t", cfg.Keybindings.GetActionKey("toggle_rag"))
		assert.Equal(t, "ctrl+h", cfg.Keybindings.GetActionKey("help"))
	})

	t.Run("bad duration is reported", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		require.NoError(t, os.WriteFile(path, []byte("[backend]\ntimeout = \"soon\"\n"), 0600))

		_, err := LoadUserConfigFromPath(path)
		assert.Error(t, err)
	})
}

func TestSaveUserConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.APIBase = "https://guide.example.com"
	cfg.UseRAG = true
	cfg.RequestTimeout = 12 * time.Second

	require.NoError(t, SaveUserConfigToPath(cfg.UserConfig(), path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := LoadUserConfigFromPath(path)
	require.NoError(t, err)

	restored := Default()
	restored.applyUserConfig(loaded)
	assert.Equal(t, cfg.APIBase, restored.APIBase)
	assert.Equal(t, cfg.UseRAG, restored.UseRAG)
	assert.Equal(t, cfg.RequestTimeout, restored.RequestTimeout)
}

func TestLoadLayersEnvOverFile(t *testing.T) {
	clearCloudGuideEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	chdirForTest(t, t.TempDir())

	fileCfg := DefaultUserConfig()
	fileCfg.DataDirectory = filepath.Join(home, "data")
	fileCfg.Backend.APIBase = "http://from-file:8080"
	require.NoError(t, SaveUserConfig(fileCfg))

	t.Setenv("CLOUDGUIDE_API_BASE", "http://from-env:8080")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:8080", cfg.APIBase)
	assert.Equal(t, filepath.Join(home, "data"), cfg.DataDir())

	info, err := os.Stat(cfg.DataDir())
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestKeybindings(t *testing.T) {
	kb := DefaultKeybindings()

	assert.Equal(t, "alt+r", kb.GetActionKey("toggle_rag"))
	assert.Equal(t, "pgup", kb.GetActionKey("page_up"))
	assert.Equal(t, "", kb.GetActionKey("does_not_exist"))
	assert.True(t, kb.Matches("alt+q", "quit"))
	assert.False(t, kb.Matches("", "does_not_exist"))

	assert.Equal(t, "Alt+R", kb.DisplayActionKey("toggle_rag"))
	assert.Equal(t, "PgDn", kb.DisplayActionKey("page_down"))

	kb.Primary = "ctrl"
	assert.Equal(t, "ctrl+s", kb.GetActionKey("settings"))
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	assert.Equal(t, "/home/tester/docs/a.pdf", ExpandPath("~/docs/a.pdf"))
	assert.Equal(t, "/home/tester", ExpandPath("~"))
	assert.Equal(t, "/var/data", ExpandPath("/var//data/"))
	assert.Equal(t, "", ExpandPath(""))
}

// chdirForTest changes the working directory for the duration of the test,
// restoring it on cleanup (equivalent to testing.T.Chdir, which needs Go 1.24).
func chdirForTest(t *testing.T, dir string) {
	t.Helper()
	oldwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(oldwd); err != nil {
			t.Fatal(err)
		}
	})
}
