package model

import (
	"github.com/google/uuid"

	"cloudguide/config"
)

// BackendStatus is the last known reachability of the backend
type BackendStatus int

const (
	BackendUnknown BackendStatus = iota
	BackendOnline
	BackendOffline
)

func (s BackendStatus) String() string {
	switch s {
	case BackendOnline:
		return "online"
	case BackendOffline:
		return "offline"
	default:
		return "unknown"
	}
}

// Model holds the core application data and business logic state
type Model struct {
	// Core dependencies
	Config  *config.Config
	Backend Backend

	// Application data
	SessionID    string
	Conversation *Conversation
	Controller   *Controller

	// Runtime state (not UI)
	BackendStatus BackendStatus
	Quitting      bool

	// Application metadata
	Version string
}

// NewModel creates a session with an empty conversation
func NewModel(cfg *config.Config, backend Backend, version string) *Model {
	conversation := NewConversation()
	controller := NewController(conversation, backend, cfg.RequestTimeout)
	controller.SetUseRAG(cfg.UseRAG)

	m := &Model{
		Config:        cfg,
		Backend:       backend,
		SessionID:     uuid.New().String(),
		Conversation:  conversation,
		Controller:    controller,
		BackendStatus: BackendUnknown,
		Version:       version,
	}

	config.DebugLog.Debugf("[Model] NewModel: session %s against %s (rag=%t)", m.SessionID, cfg.APIBase, cfg.UseRAG)

	return m
}

// SetBackend switches to a new backend, e.g. after the API base changed in Settings
func (m *Model) SetBackend(backend Backend) {
	m.Backend = backend
	m.Controller.SetBackend(backend)
	m.BackendStatus = BackendUnknown
}

// SetUseRAG updates both the controller and the config it was built from
func (m *Model) SetUseRAG(useRAG bool) {
	m.Config.UseRAG = useRAG
	m.Controller.SetUseRAG(useRAG)
}

func (m *Model) AwaitingReply() bool {
	return m.Controller.State() == StateAwaitingReply
}
