package ui

import (
	"cloudguide/model"
)

type Message = model.Message

// Message type aliases - these are defined in the model package
type replyMsg = model.ReplyMsg
type replyErrorMsg = model.ReplyErrorMsg
type backendStatusMsg = model.BackendStatusMsg
type transcriptExportedMsg = model.TranscriptExportedMsg
type clipboardCopiedMsg = model.ClipboardCopiedMsg
type settingsSavedMsg = model.SettingsSavedMsg
type flashTickMsg = model.FlashTickMsg

type SettingFieldType int

const (
	SettingTypeAPIBase SettingFieldType = iota
	SettingTypeUseRAG
)

type SettingField struct {
	Label string
	Value string
	Type  SettingFieldType
}
