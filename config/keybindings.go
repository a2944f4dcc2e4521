package config

import (
	"strings"
)

// KeyBindingsConfig holds the modifier and optional per-action overrides
type KeyBindingsConfig struct {
	Primary string            `toml:"primary"` // e.g., "alt", "ctrl", "meta", "super"
	Actions map[string]string `toml:"actions,omitempty"`
}

// actionDef defines the default modifier and key for an action
type actionDef struct {
	modifier string // "primary" or "none"
	key      string
}

// actionRegistry maps action names to their default keybindings
var actionRegistry = map[string]actionDef{
	"help":          {"primary", "h"},
	"settings":      {"primary", "s"},
	"search":        {"primary", "f"},
	"toggle_rag":    {"primary", "r"},
	"copy_last":     {"primary", "c"},
	"export":        {"primary", "x"},
	"quit":          {"primary", "q"},
	"scroll_down":   {"primary", "j"},
	"scroll_up":     {"primary", "k"},
	"page_down":     {"none", "pgdown"},
	"page_up":       {"none", "pgup"},
	"settings_save": {"primary", "w"},
}

// DefaultKeybindings returns default configuration
func DefaultKeybindings() *KeyBindingsConfig {
	return &KeyBindingsConfig{
		Primary: "alt",
	}
}

func (kb *KeyBindingsConfig) applyDefaults() {
	if kb.Primary == "" {
		kb.Primary = "alt"
	}
}

// PrimaryKey builds a keybinding string with the primary modifier
// Example: PrimaryKey("s") returns "alt+s" (or "ctrl+s" if primary is "ctrl")
func (kb *KeyBindingsConfig) PrimaryKey(key string) string {
	primary := kb.Primary
	if primary == "" {
		primary = "alt"
	}
	return primary + "+" + key
}

// GetActionKey returns the keybinding for a specific action.
// User overrides win over the registry defaults.
func (kb *KeyBindingsConfig) GetActionKey(action string) string {
	if kb.Actions != nil {
		if override, exists := kb.Actions[action]; exists && override != "" {
			return override
		}
	}

	if def, exists := actionRegistry[action]; exists {
		switch def.modifier {
		case "primary":
			return kb.PrimaryKey(def.key)
		case "none":
			return def.key
		}
	}

	return ""
}

// Matches reports whether a key press string (tea.KeyMsg.String()) triggers action.
func (kb *KeyBindingsConfig) Matches(pressed, action string) bool {
	return pressed != "" && pressed == kb.GetActionKey(action)
}

// DisplayActionKey returns a display-friendly version of an action's keybinding
// Example: "ctrl+r" -> "Ctrl+R"
func (kb *KeyBindingsConfig) DisplayActionKey(action string) string {
	key := kb.GetActionKey(action)
	if key == "" {
		return ""
	}
	return capitalizeKeybinding(key)
}

func capitalizeKeybinding(key string) string {
	parts := strings.Split(key, "+")
	for i, part := range parts {
		switch {
		case part == "pgup":
			parts[i] = "PgUp"
		case part == "pgdown":
			parts[i] = "PgDn"
		case len(part) == 1:
			parts[i] = strings.ToUpper(part)
		case len(part) > 1:
			parts[i] = strings.ToUpper(part[:1]) + part[1:]
		}
	}
	return strings.Join(parts, "+")
}
