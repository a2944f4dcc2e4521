package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"cloudguide/config"
)

// handleModelMessage handles results of model commands (status, export, clipboard, settings, flash)
func (a AppView) handleModelMessage(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case backendStatusMsg:
		a.dataModel.ApplyBackendStatus(msg)
		return a, nil

	case transcriptExportedMsg:
		if msg.Err != nil {
			config.DebugLog.Debugf("[AppView] Export failed: %v", msg.Err)
			return a, a.flash(fmt.Sprintf("Export failed: %v", msg.Err), true)
		}
		return a, a.flash("Transcript exported to "+msg.Path, false)

	case clipboardCopiedMsg:
		switch {
		case msg.Empty:
			return a, a.flash("No answer to copy yet", false)
		case msg.Err != nil:
			return a, a.flash(fmt.Sprintf("Copy failed: %v", msg.Err), true)
		}
		return a, a.flash("Copied last answer", false)

	case settingsSavedMsg:
		if msg.Err != nil {
			config.DebugLog.Debugf("[AppView] Saving settings failed: %v", msg.Err)
			return a, a.flash(fmt.Sprintf("Failed to save settings: %v", msg.Err), true)
		}
		return a, a.flash("Settings saved to "+config.GetConfigFilePath(), false)

	case flashTickMsg:
		if msg.Seq == a.flashSeq {
			a.flashText = ""
			a.flashErr = false
		}
		return a, nil
	}

	return a, nil
}
