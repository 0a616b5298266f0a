package domain

import (
	"fmt"
	"testing"
)

func TestAppendTurnEvictsOldest(t *testing.T) {
	ctx := NewContext()
	for i := 0; i < MaxHistoryTurns+5; i++ {
		ctx.AppendTurn(RoleUser, fmt.Sprintf("msg-%d", i))
	}

	if len(ctx.History) != MaxHistoryTurns {
		t.Fatalf("history length = %d, want %d", len(ctx.History), MaxHistoryTurns)
	}
	if got := ctx.History[0].Text; got != "msg-5" {
		t.Errorf("oldest kept turn = %q, want msg-5", got)
	}
	if got := ctx.History[len(ctx.History)-1].Text; got != fmt.Sprintf("msg-%d", MaxHistoryTurns+4) {
		t.Errorf("newest turn = %q", got)
	}
}

func TestCloneIsDeep(t *testing.T) {
	ctx := NewContext()
	ctx.SetField(FieldName, "Alice")
	ctx.AppendTurn(RoleUser, "hello")

	clone := ctx.Clone()
	clone.SetField(FieldName, "Bob")
	clone.History[0].Text = "changed"

	if ctx.Field(FieldName) != "Alice" {
		t.Error("clone shares the fields map")
	}
	if ctx.History[0].Text != "hello" {
		t.Error("clone shares the history slice")
	}
}

func TestClearFieldsKeepsHistory(t *testing.T) {
	ctx := NewContext()
	ctx.SetField(FieldIssue, "something")
	ctx.AppendTurn(RoleAssistant, "a reply")

	ctx.ClearFields()
	if len(ctx.Fields) != 0 {
		t.Error("fields not cleared")
	}
	if len(ctx.History) != 1 {
		t.Error("history must survive ClearFields")
	}
}

func TestNewSessionStartsInWelcome(t *testing.T) {
	s := NewSession("42")
	if s.State != StateWelcome {
		t.Errorf("state = %s, want WELCOME", s.State)
	}
	if s.UserID != "42" {
		t.Errorf("user id = %q", s.UserID)
	}
}
