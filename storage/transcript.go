package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Message is the export representation of a transcript entry
type Message struct {
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	Source    string    `json:"source,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is a one-way export of a session's conversation
type Transcript struct {
	SessionID  string    `json:"session_id"`
	APIBase    string    `json:"api_base"`
	ExportedAt time.Time `json:"exported_at"`
	Messages   []Message `json:"messages"`
}

// TranscriptExporter writes transcripts into a directory
type TranscriptExporter struct {
	exportDir string
}

// NewTranscriptExporter creates the export directory if needed
func NewTranscriptExporter(exportDir string) (*TranscriptExporter, error) {
	// 0700 - transcripts contain conversation history
	if err := os.MkdirAll(exportDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	return &TranscriptExporter{exportDir: exportDir}, nil
}

// Export writes t as <session-id>.json and returns the file path. Exporting the
// same session again overwrites the earlier file.
func (e *TranscriptExporter) Export(t *Transcript) (string, error) {
	if t.SessionID == "" {
		t.SessionID = uuid.New().String()
	}
	if _, err := uuid.Parse(t.SessionID); err != nil {
		return "", fmt.Errorf("invalid session id %q: %w", t.SessionID, err)
	}
	if t.ExportedAt.IsZero() {
		t.ExportedAt = time.Now()
	}
	if t.Messages == nil {
		t.Messages = []Message{}
	}

	data, err := json.MarshalIndent(t, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal transcript: %w", err)
	}

	path := filepath.Join(e.exportDir, fmt.Sprintf("%s.json", t.SessionID))
	tmp := path + ".tmp"

	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write transcript file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize transcript file: %w", err)
	}

	return path, nil
}

// ReadTranscript loads an exported transcript
func ReadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}

	var t Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}

	return &t, nil
}
