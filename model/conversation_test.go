package model

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestConversationAppendOnly(t *testing.T) {
	conv := NewConversation()
	if got := conv.All(); len(got) != 0 {
		t.Fatalf("new conversation has %d messages", len(got))
	}

	var want []Message
	for i := 0; i < 5; i++ {
		var msg Message
		if i%2 == 0 {
			msg = NewUserMessage(fmt.Sprintf("question %d", i))
		} else {
			msg = NewAssistantMessage(fmt.Sprintf("answer %d", i), "LLM")
		}
		conv.Append(msg)
		want = append(want, msg)

		if diff := cmp.Diff(want, conv.All()); diff != "" {
			t.Fatalf("after %d appends (-want +got):\n%s", i+1, diff)
		}
	}

	if conv.Len() != 5 {
		t.Errorf("Len() = %d, want 5", conv.Len())
	}
}

func TestConversationSnapshotIsolation(t *testing.T) {
	conv := NewConversation()
	conv.Append(NewUserMessage("hello"))

	snapshot := conv.All()
	snapshot[0].Text = "tampered"
	_ = append(snapshot, NewUserMessage("extra"))

	got := conv.All()
	want := []Message{{Role: RoleUser, Text: "hello"}}
	if diff := cmp.Diff(want, got, cmpopts.IgnoreFields(Message{}, "Timestamp")); diff != "" {
		t.Errorf("snapshot changes leaked into conversation (-want +got):\n%s", diff)
	}
}

func TestConversationLastAssistant(t *testing.T) {
	conv := NewConversation()
	if _, ok := conv.LastAssistant(); ok {
		t.Fatal("empty conversation reported an assistant message")
	}

	conv.Append(NewUserMessage("q1"))
	conv.Append(NewAssistantMessage("a1", ""))
	conv.Append(NewUserMessage("q2"))
	conv.Append(NewAssistantMessage("a2", "doc.pdf"))
	conv.Append(NewUserMessage("q3"))

	last, ok := conv.LastAssistant()
	if !ok || last.Text != "a2" || last.Source != "doc.pdf" {
		t.Errorf("LastAssistant() = %+v, %t", last, ok)
	}
}

func TestMessageTimestampSetAtConstruction(t *testing.T) {
	before := time.Now()
	user := NewUserMessage("hi")
	assistant := NewAssistantMessage("hello", "LLM")
	after := time.Now()

	for _, msg := range []Message{user, assistant} {
		if msg.Timestamp.Before(before) || msg.Timestamp.After(after) {
			t.Errorf("%s timestamp %v outside [%v, %v]", msg.Role, msg.Timestamp, before, after)
		}
	}

	conv := NewConversation()
	conv.Append(user)
	if got := conv.All()[0].Timestamp; !got.Equal(user.Timestamp) {
		t.Errorf("stored timestamp %v, want %v", got, user.Timestamp)
	}
}
