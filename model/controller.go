package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"cloudguide/config"
)

// DefaultReplyTimeout bounds a single backend call when no timeout is configured.
const DefaultReplyTimeout = 30 * time.Second

// emptyReplyText stands in for a reply whose body is blank.
const emptyReplyText = "(empty response)"

// ErrAwaitingReply is returned by Submit while a query is still in flight.
var ErrAwaitingReply = errors.New("still waiting for the previous reply")

// State is the controller's position in the conversation loop.
type State int

const (
	StateIdle State = iota
	StateAwaitingReply
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingReply:
		return "awaiting_reply"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Controller runs the turn loop: user input becomes a user message and a
// backend query, and the query's outcome becomes exactly one assistant message.
// Only one query is in flight at a time.
type Controller struct {
	conversation *Conversation
	backend      Backend
	timeout      time.Duration
	useRAG       bool
	state        State
	pending      string // effective query of the in-flight turn
}

func NewController(conversation *Conversation, backend Backend, timeout time.Duration) *Controller {
	if timeout <= 0 {
		timeout = DefaultReplyTimeout
	}
	return &Controller{
		conversation: conversation,
		backend:      backend,
		timeout:      timeout,
		state:        StateIdle,
	}
}

func (c *Controller) State() State {
	return c.state
}

func (c *Controller) UseRAG() bool {
	return c.useRAG
}

func (c *Controller) SetUseRAG(useRAG bool) {
	c.useRAG = useRAG
}

// SetBackend swaps the backend for subsequent turns. A query already in flight
// finishes against the backend it was issued to.
func (c *Controller) SetBackend(backend Backend) {
	c.backend = backend
}

// PendingQuery returns the effective query of the in-flight turn, or "".
func (c *Controller) PendingQuery() string {
	return c.pending
}

// Submit starts a turn for input. Blank input is ignored and returns a nil
// command. While a reply is pending it returns ErrAwaitingReply and changes
// nothing. Otherwise it records the user message, moves to StateAwaitingReply
// and returns the command that performs the backend call.
func (c *Controller) Submit(input string) (tea.Cmd, error) {
	if strings.TrimSpace(input) == "" {
		return nil, nil
	}
	if c.state != StateIdle {
		config.DebugLog.Debugf("[Controller] Rejected submission while %s", c.state)
		return nil, ErrAwaitingReply
	}

	c.conversation.Append(NewUserMessage(input))

	query := BuildQuery(input, c.useRAG)
	c.pending = query
	c.state = StateAwaitingReply

	config.DebugLog.Debugf("[Controller] Submitting query (rag=%t, len=%d)", c.useRAG, len(query))

	return askCmd(c.backend, query, c.timeout), nil
}

func askCmd(backend Backend, query string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		start := time.Now()
		reply, err := backend.Ask(ctx, query)
		elapsed := time.Since(start)

		if err != nil {
			return ReplyErrorMsg{Query: query, Err: err, Elapsed: elapsed}
		}
		return ReplyMsg{Query: query, Reply: reply, Elapsed: elapsed}
	}
}

// HandleReply completes the pending turn when msg is a ReplyMsg or
// ReplyErrorMsg. It reports whether msg was consumed. Replies that arrive
// while idle are dropped.
func (c *Controller) HandleReply(msg tea.Msg) bool {
	var reply Message

	switch msg := msg.(type) {
	case ReplyMsg:
		if c.state != StateAwaitingReply {
			return false
		}
		normalized := NormalizeResponse(msg.Reply.Body, msg.Reply.SourceHeader)
		text := normalized.Text
		if strings.TrimSpace(text) == "" {
			text = emptyReplyText
		}
		reply = NewAssistantMessage(text, normalized.Source)
		config.DebugLog.Debugf("[Controller] Reply received in %v (source=%q)", msg.Elapsed, normalized.Source)

	case ReplyErrorMsg:
		if c.state != StateAwaitingReply {
			return false
		}
		reply = NewAssistantMessage(FormatTransportError(msg.Err), "")
		config.DebugLog.Debugf("[Controller] Backend call failed after %v: %v", msg.Elapsed, msg.Err)

	default:
		return false
	}

	c.conversation.Append(reply)
	c.pending = ""
	c.state = StateIdle
	return true
}

// FormatTransportError is the assistant text shown for a failed backend call.
func FormatTransportError(err error) string {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Sprintf("Error talking to API: request timed out (%v)", err)
	}
	return fmt.Sprintf("Error talking to API: %v", err)
}
