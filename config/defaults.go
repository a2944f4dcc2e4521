package config

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		DataDirectory: DefaultDataDirectory,
		Backend: BackendConfig{
			APIBase: DefaultAPIBase,
			Timeout: Duration{DefaultTimeout},
			UseRAG:  false,
		},
		Keybindings: *DefaultKeybindings(),
	}
}

func GenerateUserConfigTemplate() string {
	return `# CloudGuide Configuration
# Location: ~/.config/cloudguide/config.toml
# This file uses TOML format: https://toml.io

# Directory for the debug log and transcript exports
data_directory = "~/.local/share/cloudguide"

[backend]
# Base URL of the CloudGuide API (GET <api_base>/api/ask?text=...)
api_base = "http://localhost:8080"

# Hard ceiling for a single request. A request that runs longer is reported as an error.
timeout = "30s"

# Route questions through the document retrieval path ("ask: " prefix)
use_rag = false

[keybindings]
# Modifier used by every shortcut (Options: alt, ctrl, meta, super)
primary = "alt"

# Per-action overrides, e.g.:
# [keybindings.actions]
# toggle_rag = "ctrl+r"
`
}
