package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	appmodel "cloudguide/model"
)

// MessageMatch is one transcript message matching the search query
type MessageMatch struct {
	Index     int // Position in the conversation
	Role      appmodel.Role
	Preview   string
	Timestamp string
	Score     int
}

// transcriptSource adapts a message snapshot to fuzzy.Source
type transcriptSource []appmodel.Message

func (s transcriptSource) String(i int) string {
	return s[i].Text
}

func (s transcriptSource) Len() int {
	return len(s)
}

// searchMessages fuzzy-matches query against a transcript snapshot, best matches first
func searchMessages(messages []appmodel.Message, query string, previewWidth int) []MessageMatch {
	query = strings.TrimSpace(query)
	if query == "" || len(messages) == 0 {
		return nil
	}

	matches := fuzzy.FindFrom(query, transcriptSource(messages))

	results := make([]MessageMatch, 0, len(matches))
	for _, m := range matches {
		msg := messages[m.Index]
		results = append(results, MessageMatch{
			Index:     m.Index,
			Role:      msg.Role,
			Preview:   previewText(msg.Text, previewWidth),
			Timestamp: msg.Timestamp.Format("Jan 2, 3:04 PM"),
			Score:     m.Score,
		})
	}
	return results
}

// previewText collapses a message to a single line no wider than width cells
func previewText(text string, width int) string {
	line := strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return line
	}
	return runewidth.Truncate(line, width, "...")
}

func (a *AppView) openMessageSearch() {
	a.showMessageSearch = true
	a.messageSearchInput.SetValue("")
	a.messageSearchInput.Focus()
	a.messageSearchResults = nil
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0
}

func (a AppView) searchPreviewWidth() int {
	w := a.searchModalWidth() - 10
	if w < 20 {
		w = 20
	}
	return w
}

func (a AppView) searchModalWidth() int {
	modalWidth := a.width - 4
	if modalWidth > 100 {
		modalWidth = 100
	}
	return modalWidth
}

func (a AppView) handleMessageSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kb := a.dataModel.Config.Keybindings
	pressed := msg.String()

	switch {
	case pressed == "esc" || kb.Matches(pressed, "search"):
		a.closeAllModals()
		return a, nil

	case pressed == "down" || pressed == "ctrl+n" || kb.Matches(pressed, "scroll_down"):
		if a.selectedSearchIdx < len(a.messageSearchResults)-1 {
			a.selectedSearchIdx++
			if a.selectedSearchIdx >= a.messageSearchScrollIdx+a.maxVisibleSearchResults() {
				a.messageSearchScrollIdx++
			}
		}
		return a, nil

	case pressed == "up" || pressed == "ctrl+p" || kb.Matches(pressed, "scroll_up"):
		if a.selectedSearchIdx > 0 {
			a.selectedSearchIdx--
			if a.selectedSearchIdx < a.messageSearchScrollIdx {
				a.messageSearchScrollIdx--
			}
		}
		return a, nil

	case pressed == "enter":
		if len(a.messageSearchResults) == 0 {
			return a, nil
		}
		target := a.messageSearchResults[a.selectedSearchIdx].Index
		a.closeAllModals()
		a.updateViewportContent(false)
		if target < len(a.messageOffsets) {
			a.viewport.SetYOffset(a.messageOffsets[target])
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.messageSearchInput, cmd = a.messageSearchInput.Update(msg)

	a.messageSearchResults = searchMessages(a.dataModel.Conversation.All(), a.messageSearchInput.Value(), a.searchPreviewWidth())
	a.selectedSearchIdx = 0
	a.messageSearchScrollIdx = 0

	return a, cmd
}

func (a AppView) maxVisibleSearchResults() int {
	// Border(2) + Padding(2) + Title(1) + Blank(1) + SearchInput(1) + Blank(1) +
	// "Found X matches:"(1) + Blank(1) + Footer(1) + Blank(1) = 12 lines
	fixedOverhead := 12
	scrollIndicatorSpace := 4

	availableLines := a.height - fixedOverhead - scrollIndicatorSpace
	if availableLines < 3 {
		availableLines = 3
	}

	maxVisible := availableLines / 3
	if maxVisible < 1 {
		maxVisible = 1
	}
	return maxVisible
}

func (a AppView) renderMessageSearch(width, height int) string {
	kb := a.dataModel.Config.Keybindings
	modalWidth := a.searchModalWidth()

	modalStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(dimColor).
		Padding(1, 2)

	title := TitleStyle.Render("🔍 Search Transcript")
	searchView := a.messageSearchInput.View()

	results := a.messageSearchResults

	var resultsView strings.Builder
	if len(results) == 0 {
		if a.messageSearchInput.Value() == "" {
			resultsView.WriteString(DimStyle.Render("Type to search messages in this conversation..."))
		} else {
			resultsView.WriteString(DimStyle.Render("No matches found"))
		}
	} else {
		startIdx := a.messageSearchScrollIdx
		endIdx := startIdx + a.maxVisibleSearchResults()
		if endIdx > len(results) {
			endIdx = len(results)
		}

		resultsView.WriteString(fmt.Sprintf("Found %d matches:\n\n", len(results)))

		if startIdx > 0 {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↑ %d more above", startIdx)) + "\n\n")
		}

		for i := startIdx; i < endIdx; i++ {
			match := results[i]

			roleStyle := UserStyle
			if match.Role == appmodel.RoleAssistant {
				roleStyle = AssistantStyle
			}

			matchText := fmt.Sprintf("%s [%s]\n  %s",
				roleStyle.Render(string(match.Role)),
				match.Timestamp,
				match.Preview,
			)

			if i == a.selectedSearchIdx {
				matchText = SelectedStyle.Render("> " + matchText)
			} else {
				matchText = "  " + matchText
			}

			resultsView.WriteString(matchText + "\n\n")
		}

		if endIdx < len(results) {
			resultsView.WriteString(DimStyle.Render(fmt.Sprintf("↓ %d more below", len(results)-endIdx)))
		}
	}

	footer := FormatFooter("Type", "to search", "↑/↓", "Navigate", "Enter", "Jump", "Esc", "Close")
	if key := kb.DisplayActionKey("search"); key != "" {
		footer += "  " + DimStyle.Render("("+key+" toggles)")
	}

	content := lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		"",
		searchView,
		"",
		resultsView.String(),
		"",
		footer,
	)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalStyle.Width(modalWidth).Render(content))
}
