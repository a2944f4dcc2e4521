package model

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cloudguide/config"
	"cloudguide/storage"
)

func newTestModel(t *testing.T, backend Backend) *Model {
	t.Helper()
	cfg := config.Default()
	cfg.DataDirectory = t.TempDir()
	cfg.RequestTimeout = time.Second
	return NewModel(cfg, backend, "test")
}

func TestNewModelAppliesConfig(t *testing.T) {
	cfg := config.Default()
	cfg.UseRAG = true
	m := NewModel(cfg, &stubBackend{}, "test")

	assert.True(t, m.Controller.UseRAG())
	assert.NotEmpty(t, m.SessionID)
	assert.Equal(t, BackendUnknown, m.BackendStatus)
	assert.False(t, m.AwaitingReply())

	m.SetUseRAG(false)
	assert.False(t, m.Controller.UseRAG())
	assert.False(t, cfg.UseRAG)
}

func TestPingBackendStatus(t *testing.T) {
	backend := &stubBackend{}
	m := newTestModel(t, backend)

	msg := m.PingBackend()().(BackendStatusMsg)
	assert.Equal(t, "http://stub", msg.BaseURL)
	m.ApplyBackendStatus(msg)
	assert.Equal(t, BackendOnline, m.BackendStatus)

	backend.err = errors.New("connection refused")
	m.ApplyBackendStatus(m.PingBackend()().(BackendStatusMsg))
	assert.Equal(t, BackendOffline, m.BackendStatus)

	// A result for a replaced backend is stale
	m.ApplyBackendStatus(BackendStatusMsg{BaseURL: "http://old"})
	assert.Equal(t, BackendOffline, m.BackendStatus)
}

func TestExportTranscript(t *testing.T) {
	m := newTestModel(t, &stubBackend{reply: BackendReply{Body: "Hi there", SourceHeader: "LLM"}})

	cmd, err := m.Controller.Submit("hello")
	require.NoError(t, err)
	require.True(t, m.Controller.HandleReply(cmd()))

	msg := m.ExportTranscript()().(TranscriptExportedMsg)
	require.NoError(t, msg.Err)
	assert.Equal(t, filepath.Join(m.Config.ExportDir(), m.SessionID+".json"), msg.Path)

	tr, err := storage.ReadTranscript(msg.Path)
	require.NoError(t, err)
	require.Len(t, tr.Messages, 2)
	assert.Equal(t, "user", tr.Messages[0].Role)
	assert.Equal(t, "Hi there", tr.Messages[1].Text)
	assert.Equal(t, "LLM", tr.Messages[1].Source)
	assert.Equal(t, m.Config.APIBase, tr.APIBase)
}

func TestCopyLastAnswer(t *testing.T) {
	var copied string
	orig := clipboardWrite
	clipboardWrite = func(text string) error {
		copied = text
		return nil
	}
	t.Cleanup(func() { clipboardWrite = orig })

	m := newTestModel(t, &stubBackend{reply: BackendReply{Body: "42"}})

	empty := m.CopyLastAnswer()().(ClipboardCopiedMsg)
	assert.True(t, empty.Empty)
	assert.Equal(t, "", copied)

	cmd, err := m.Controller.Submit("meaning?")
	require.NoError(t, err)
	m.Controller.HandleReply(cmd())

	done := m.CopyLastAnswer()().(ClipboardCopiedMsg)
	assert.False(t, done.Empty)
	assert.NoError(t, done.Err)
	assert.Equal(t, "42", copied)
}

func TestSaveSettingsWritesConfigFile(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	m := newTestModel(t, &stubBackend{})
	m.Config.APIBase = "http://saved:9000"
	m.SetUseRAG(true)

	msg := m.SaveSettings()().(SettingsSavedMsg)
	require.NoError(t, msg.Err)

	uc, err := config.LoadUserConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://saved:9000", uc.Backend.APIBase)
	assert.True(t, uc.Backend.UseRAG)
	assert.Equal(t, time.Second, uc.Backend.Timeout.Duration)
}
