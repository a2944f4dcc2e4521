package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"cloudguide/backend"
	"cloudguide/config"
	appmodel "cloudguide/model"
)

// flashDuration is how long a flash status line stays visible
const flashDuration = 3 * time.Second

// newBackend builds the backend used after the API base changes in Settings
var newBackend = func(baseURL string, timeout time.Duration) (appmodel.Backend, error) {
	client, err := backend.NewClient(baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return client, nil
}

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport       viewport.Model
	textarea       textarea.Model
	loadingSpinner spinner.Model

	// Window state
	width  int
	height int
	ready  bool

	showHelp bool

	// Settings modal
	showSettings       bool
	settingsFields     []SettingField
	selectedSettingIdx int
	settingsEditMode   bool
	settingsEditInput  textinput.Model
	settingsHasChanges bool
	settingsError      string

	// Transcript search modal
	showMessageSearch      bool
	messageSearchInput     textinput.Model
	messageSearchResults   []MessageMatch
	selectedSearchIdx      int
	messageSearchScrollIdx int

	// Flash status line
	flashText string
	flashErr  bool
	flashSeq  int

	// Rendered assistant markdown keyed by conversation index. Shared across
	// AppView copies and dropped whenever the width changes.
	renderCache *renderCache

	// First viewport line of each message, for jumping to search results
	messageOffsets []int
}

func NewAppView(cfg *config.Config, b appmodel.Backend, version string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask about AWS services, pricing, or your documents..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone is handled as send
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	settingsEditInput := textinput.New()
	settingsEditInput.CharLimit = 256

	messageSearchInput := textinput.New()
	messageSearchInput.Prompt = "Search: "
	messageSearchInput.CharLimit = 100

	dataModel := appmodel.NewModel(cfg, b, version)

	return AppView{
		dataModel:          dataModel,
		textarea:           ta,
		viewport:           viewport.New(0, 0),
		loadingSpinner:     sp,
		settingsEditInput:  settingsEditInput,
		messageSearchInput: messageSearchInput,
		renderCache:        newRenderCache(),
	}
}

func (a AppView) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		a.dataModel.PingBackend(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading CloudGuide..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Help (can peek while in other modals)
	// 2. Settings
	// 3. Transcript search
	if a.showHelp {
		return a.renderHelpModal(a.width, a.height)
	}

	if a.showSettings {
		return a.renderSettings(a.width, a.height)
	}

	if a.showMessageSearch {
		return a.renderMessageSearch(a.width, a.height)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		a.renderTitle(),
		"",
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderTitle() string {
	appText := AssistantStyle.Render("CloudGuide")
	apiBase := a.dataModel.Config.APIBase
	maxWidth := a.width - runewidth.StringWidth("CloudGuide - ") - 2
	if maxWidth > 0 {
		apiBase = runewidth.Truncate(apiBase, maxWidth, "...")
	}
	return appText + TitleStyle.Render(" - "+apiBase)
}

func (a AppView) renderStatusBar() string {
	kb := a.dataModel.Config.Keybindings

	rag := DimStyle.Render("RAG off")
	if a.dataModel.Controller.UseRAG() {
		rag = UserStyle.Render("RAG on")
	}

	var status string
	switch a.dataModel.BackendStatus {
	case appmodel.BackendOnline:
		status = OnlineStyle.Render("● online")
	case appmodel.BackendOffline:
		status = OfflineStyle.Render("● offline")
	default:
		status = DimStyle.Render("○ checking")
	}

	left := rag + "  " + status
	if a.dataModel.AwaitingReply() {
		left += "  " + AssistantStyle.Render("waiting for reply")
	}

	var right string
	if a.flashText != "" {
		style := FlashStyle
		if a.flashErr {
			style = OfflineStyle
		}
		right = style.Render(a.flashText)
	} else {
		descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
		right = fmt.Sprintf("Enter %s  %s %s  %s %s  %s %s  %s %s",
			descStyle.Render("Send"),
			kb.DisplayActionKey("toggle_rag"), descStyle.Render("RAG"),
			kb.DisplayActionKey("settings"), descStyle.Render("Settings"),
			kb.DisplayActionKey("help"), descStyle.Render("Help"),
			kb.DisplayActionKey("quit"), descStyle.Render("Quit"),
		)
	}

	return StatusStyle.Render(left + "  " + strings.TrimSpace(right))
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showSettings = false
	a.showMessageSearch = false

	a.settingsEditMode = false
	a.settingsError = ""

	if a.settingsEditInput.Focused() {
		a.settingsEditInput.Blur()
	}
	if a.messageSearchInput.Focused() {
		a.messageSearchInput.Blur()
	}
	a.textarea.Focus()
}

// flash shows text in the status bar until the matching flashTickMsg arrives
func (a *AppView) flash(text string, isErr bool) tea.Cmd {
	a.flashSeq++
	a.flashText = text
	a.flashErr = isErr
	seq := a.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashTickMsg{Seq: seq}
	})
}
