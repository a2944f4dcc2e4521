package ui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"cloudguide/config"
	appmodel "cloudguide/model"
)

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		viewportHeight := a.height - 6
		if viewportHeight < 1 {
			viewportHeight = 1
		}
		a.viewport.Width = a.width
		a.viewport.Height = viewportHeight
		a.textarea.SetWidth(a.width)
		a.messageSearchInput.Width = a.width - 20

		a.ready = true
		a.updateViewportContent(true)
		return a, nil

	case spinner.TickMsg:
		if !a.dataModel.AwaitingReply() {
			return a, nil
		}
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(true)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case replyMsg, replyErrorMsg:
		return a.handleReply(msg)

	case backendStatusMsg, transcriptExportedMsg, clipboardCopiedMsg, settingsSavedMsg, flashTickMsg:
		return a.handleModelMessage(msg)
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	pressed := msg.String()

	// PRIORITY 0: Always-global shortcuts (quit, help toggle)
	if pressed == "ctrl+c" || kb.Matches(pressed, "quit") {
		config.DebugLog.Debugf("[AppView] Quit requested (%s)", pressed)
		a.dataModel.Quitting = true
		return a, tea.Quit
	}

	if kb.Matches(pressed, "help") {
		a.showHelp = !a.showHelp
		return a, nil
	}

	if a.showHelp {
		if pressed == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	// PRIORITY 1: Active modal owns the keyboard
	if a.showSettings {
		return a.handleSettingsInput(msg)
	}

	if a.showMessageSearch {
		return a.handleMessageSearchInput(msg)
	}

	// PRIORITY 2: Main chat shortcuts
	switch {
	case kb.Matches(pressed, "settings"):
		a.closeAllModals()
		a.openSettings()
		return a, nil

	case kb.Matches(pressed, "search"):
		a.closeAllModals()
		a.openMessageSearch()
		return a, nil

	case kb.Matches(pressed, "toggle_rag"):
		useRAG := !a.dataModel.Controller.UseRAG()
		a.dataModel.SetUseRAG(useRAG)
		text := "RAG mode off"
		if useRAG {
			text = "RAG mode on"
		}
		return a, a.flash(text, false)

	case kb.Matches(pressed, "copy_last"):
		return a, a.dataModel.CopyLastAnswer()

	case kb.Matches(pressed, "export"):
		return a, a.dataModel.ExportTranscript()

	case kb.Matches(pressed, "scroll_down"):
		a.viewport.HalfViewDown()
		return a, nil

	case kb.Matches(pressed, "scroll_up"):
		a.viewport.HalfViewUp()
		return a, nil

	case kb.Matches(pressed, "page_down"):
		a.viewport.ViewDown()
		return a, nil

	case kb.Matches(pressed, "page_up"):
		a.viewport.ViewUp()
		return a, nil

	case pressed == "enter":
		return a.handleSubmit()
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

// handleSubmit hands the typed text to the controller. While a reply is
// outstanding the text stays in the input.
func (a AppView) handleSubmit() (tea.Model, tea.Cmd) {
	cmd, err := a.dataModel.Controller.Submit(a.textarea.Value())
	if errors.Is(err, appmodel.ErrAwaitingReply) {
		return a, a.flash("Waiting for reply...", false)
	}
	if err != nil {
		return a, a.flash(err.Error(), true)
	}
	if cmd == nil {
		return a, nil
	}

	a.textarea.Reset()
	a.updateViewportContent(true)

	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

func (a AppView) handleReply(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !a.dataModel.Controller.HandleReply(msg) {
		config.DebugLog.Debugf("[AppView] Ignoring reply with no request in flight")
		return a, nil
	}
	a.updateViewportContent(true)
	return a, nil
}
