package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cloudguide/config"
)

func (a *AppView) openSettings() {
	a.settingsFields = []SettingField{
		{Label: "API Base", Value: a.dataModel.Config.APIBase, Type: SettingTypeAPIBase},
		{Label: "Use RAG", Value: boolToString(a.dataModel.Controller.UseRAG()), Type: SettingTypeUseRAG},
	}
	a.selectedSettingIdx = 0
	a.settingsEditMode = false
	a.settingsHasChanges = false
	a.settingsError = ""
	a.showSettings = true
}

func (a AppView) handleSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// If showing an error, Enter/Esc clears it
	if a.settingsError != "" {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.settingsError = ""
		}
		return a, nil
	}

	if a.settingsEditMode {
		return a.handleSettingsEditMode(msg)
	}
	return a.handleSettingsNavigationMode(msg)
}

func (a AppView) handleSettingsNavigationMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings

	if kb.Matches(msg.String(), "settings_save") {
		return a.applySettings()
	}

	switch msg.String() {
	case "esc", "q":
		// Unsaved edits are discarded
		a.closeAllModals()
		return a, nil

	case "j", "down":
		if a.selectedSettingIdx < len(a.settingsFields)-1 {
			a.selectedSettingIdx++
		}
		return a, nil

	case "k", "up":
		if a.selectedSettingIdx > 0 {
			a.selectedSettingIdx--
		}
		return a, nil

	case "enter", " ":
		field := &a.settingsFields[a.selectedSettingIdx]
		switch field.Type {
		case SettingTypeUseRAG:
			field.Value = boolToString(!stringToBool(field.Value))
			a.settingsHasChanges = true
		case SettingTypeAPIBase:
			a.settingsEditMode = true
			a.settingsEditInput.SetValue(field.Value)
			a.settingsEditInput.CursorEnd()
			a.settingsEditInput.Focus()
		}
		return a, nil
	}

	return a, nil
}

func (a AppView) handleSettingsEditMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.settingsEditMode = false
		a.settingsEditInput.Blur()
		return a, nil

	case "enter":
		value := strings.TrimSpace(a.settingsEditInput.Value())
		if err := config.ValidateAPIBase(value); err != nil {
			a.settingsError = err.Error()
			return a, nil
		}
		field := &a.settingsFields[a.selectedSettingIdx]
		if field.Value != value {
			field.Value = value
			a.settingsHasChanges = true
		}
		a.settingsEditMode = false
		a.settingsEditInput.Blur()
		return a, nil
	}

	var cmd tea.Cmd
	a.settingsEditInput, cmd = a.settingsEditInput.Update(msg)
	return a, cmd
}

// applySettings makes the edited values live and writes them to config.toml.
// A new API base gets a fresh backend; a request already in flight finishes
// against the old one.
func (a AppView) applySettings() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	for _, field := range a.settingsFields {
		switch field.Type {
		case SettingTypeAPIBase:
			if field.Value == a.dataModel.Config.APIBase {
				continue
			}
			b, err := newBackend(field.Value, a.dataModel.Config.RequestTimeout)
			if err != nil {
				a.settingsError = err.Error()
				return a, nil
			}
			config.DebugLog.Debugf("[AppView] API base changed: %s -> %s", a.dataModel.Config.APIBase, field.Value)
			a.dataModel.Config.APIBase = field.Value
			a.dataModel.SetBackend(b)
			cmds = append(cmds, a.dataModel.PingBackend())

		case SettingTypeUseRAG:
			a.dataModel.SetUseRAG(stringToBool(field.Value))
		}
	}

	cmds = append(cmds, a.dataModel.SaveSettings())
	a.settingsHasChanges = false
	a.closeAllModals()

	return a, tea.Batch(cmds...)
}

func (a AppView) renderSettings(width, height int) string {
	if a.settingsError != "" {
		return RenderAcknowledgeModal("⚠️  Invalid Setting", a.settingsError, ModalTypeError, width, height)
	}

	if width < 20 || height < 10 {
		return "Terminal too small"
	}

	kb := a.dataModel.Config.Keybindings

	modalWidth := width - 10
	if modalWidth > 80 {
		modalWidth = 80
	}
	if modalWidth < 40 {
		modalWidth = 40
	}

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(accentColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(fmt.Sprintf("Settings (%s)", kb.DisplayActionKey("settings")))

	separator := lipgloss.NewStyle().
		Foreground(dimColor).
		Render(strings.Repeat("─", modalWidth))

	const maxLabelWidth = 20

	var settingsLines []string
	for i, field := range a.settingsFields {
		var line string

		if a.settingsEditMode && i == a.selectedSettingIdx {
			label := "  " + field.Label
			labelPadding := strings.Repeat(" ", maxLabelWidth-len(label))
			inputBox := lipgloss.NewStyle().
				Foreground(accentColor).
				Bold(true).
				Width(modalWidth - 24).
				Render(a.settingsEditInput.View())
			line = label + labelPadding + inputBox
		} else {
			indicator := "  "
			if i == a.selectedSettingIdx {
				indicator = "▶ "
			}

			label := indicator + field.Label
			if len(label) < maxLabelWidth {
				label += strings.Repeat(" ", maxLabelWidth-len(label))
			}

			value := runewidth.Truncate(field.Value, modalWidth-maxLabelWidth-4, "...")
			line = label + value

			lineStyle := lipgloss.NewStyle()
			if i == a.selectedSettingIdx {
				lineStyle = lineStyle.Foreground(successColor).Bold(true)
			}
			line = lineStyle.Render(line)
		}

		settingsLines = append(settingsLines, lipgloss.NewStyle().Width(modalWidth).Render(line))
	}

	var footerText string
	switch {
	case a.settingsEditMode:
		footerText = FormatFooter("Enter", "Confirm", "Esc", "Cancel")
	case a.settingsHasChanges:
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Edit", kb.DisplayActionKey("settings_save"), "Apply & Save", "Esc", "Discard")
	default:
		footerText = FormatFooter("j/k", "Navigate", "Enter", "Edit", kb.DisplayActionKey("settings_save"), "Save", "Esc", "Close")
	}
	footer := lipgloss.NewStyle().
		Foreground(dimColor).
		Align(lipgloss.Center).
		Width(modalWidth).
		Render(footerText)

	info := lipgloss.NewStyle().
		Width(modalWidth).
		Foreground(dimColor).
		Render("  Config file: " + config.GetConfigFilePath())

	var content strings.Builder
	content.WriteString(title + "\n")
	content.WriteString(separator + "\n")
	content.WriteString(strings.Repeat(" ", modalWidth) + "\n")
	for _, line := range settingsLines {
		content.WriteString(line + "\n")
	}
	content.WriteString(strings.Repeat(" ", modalWidth) + "\n")
	content.WriteString(info + "\n")
	content.WriteString(separator + "\n")
	content.WriteString(footer)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		content.String(),
	)
}
