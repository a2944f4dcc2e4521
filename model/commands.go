package model

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"cloudguide/config"
	"cloudguide/storage"
)

const pingTimeout = 5 * time.Second

// clipboardWrite is swapped out in tests
var clipboardWrite = clipboard.WriteAll

// PingBackend checks the backend health endpoint
func (m *Model) PingBackend() tea.Cmd {
	backend := m.Backend
	if backend == nil {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		defer cancel()

		err := backend.Ping(ctx)
		return BackendStatusMsg{BaseURL: backend.BaseURL(), Err: err}
	}
}

// ApplyBackendStatus records a ping result. Results for a backend that has
// since been replaced are ignored.
func (m *Model) ApplyBackendStatus(msg BackendStatusMsg) {
	if m.Backend == nil || msg.BaseURL != m.Backend.BaseURL() {
		return
	}
	if msg.Err != nil {
		config.DebugLog.Debugf("[Model] Backend %s offline: %v", msg.BaseURL, msg.Err)
		m.BackendStatus = BackendOffline
		return
	}
	m.BackendStatus = BackendOnline
}

// ExportTranscript writes the current conversation to the export directory
func (m *Model) ExportTranscript() tea.Cmd {
	messages := m.Conversation.All()
	transcript := &storage.Transcript{
		SessionID: m.SessionID,
		APIBase:   m.Config.APIBase,
		Messages:  make([]storage.Message, 0, len(messages)),
	}
	for _, msg := range messages {
		transcript.Messages = append(transcript.Messages, storage.Message{
			Role:      string(msg.Role),
			Text:      msg.Text,
			Source:    msg.Source,
			Timestamp: msg.Timestamp,
		})
	}
	exportDir := m.Config.ExportDir()

	return func() tea.Msg {
		exporter, err := storage.NewTranscriptExporter(exportDir)
		if err != nil {
			return TranscriptExportedMsg{Err: err}
		}
		path, err := exporter.Export(transcript)
		return TranscriptExportedMsg{Path: path, Err: err}
	}
}

// CopyLastAnswer copies the newest assistant message to the system clipboard
func (m *Model) CopyLastAnswer() tea.Cmd {
	last, ok := m.Conversation.LastAssistant()
	return func() tea.Msg {
		if !ok {
			return ClipboardCopiedMsg{Empty: true}
		}
		return ClipboardCopiedMsg{Err: clipboardWrite(last.Text)}
	}
}

// SaveSettings persists the current configuration to config.toml
func (m *Model) SaveSettings() tea.Cmd {
	userCfg := m.Config.UserConfig()
	return func() tea.Msg {
		return SettingsSavedMsg{Err: config.SaveUserConfig(userCfg)}
	}
}
