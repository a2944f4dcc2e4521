package model

import "time"

type ReplyMsg struct {
	Query   string
	Reply   BackendReply
	Elapsed time.Duration
}

type ReplyErrorMsg struct {
	Query   string
	Err     error
	Elapsed time.Duration
}

type BackendStatusMsg struct {
	BaseURL string
	Err     error
}

type TranscriptExportedMsg struct {
	Path string
	Err  error
}

type ClipboardCopiedMsg struct {
	Empty bool // No assistant message to copy yet
	Err   error
}

type SettingsSavedMsg struct {
	Err error
}

// FlashTickMsg clears the flash status line set under the same sequence number
type FlashTickMsg struct {
	Seq int
}
