package session

import "testing"

func TestTranscript_AppendAccumulates(t *testing.T) {
	tr := NewTranscript()

	if got := tr.Append(RoleUser, "hello "); got != "hello " {
		t.Errorf("Append = %q, want %q", got, "hello ")
	}
	if got := tr.Append(RoleUser, "there"); got != "hello there" {
		t.Errorf("Append = %q, want %q", got, "hello there")
	}
	if got := tr.Text(RoleUser); got != "hello there" {
		t.Errorf("Text(user) = %q, want %q", got, "hello there")
	}
}

func TestTranscript_ActiveFollowsLastAppend(t *testing.T) {
	tr := NewTranscript()

	tr.Append(RoleUser, "question")
	if got := tr.ActiveRole(); got != RoleUser {
		t.Errorf("ActiveRole = %v, want %v", got, RoleUser)
	}

	tr.Append(RoleModel, "answer")
	if got := tr.ActiveRole(); got != RoleModel {
		t.Errorf("ActiveRole = %v, want %v", got, RoleModel)
	}
	if got := tr.ActiveText(); got != "answer" {
		t.Errorf("ActiveText = %q, want %q", got, "answer")
	}
	// The other role's buffer is untouched.
	if got := tr.Text(RoleUser); got != "question" {
		t.Errorf("Text(user) = %q, want %q", got, "question")
	}
}

func TestTranscript_ResetClearsBoth(t *testing.T) {
	tr := NewTranscript()
	tr.Append(RoleUser, "a")
	tr.Append(RoleModel, "b")

	tr.Reset()

	if got := tr.Text(RoleUser); got != "" {
		t.Errorf("Text(user) = %q, want empty", got)
	}
	if got := tr.Text(RoleModel); got != "" {
		t.Errorf("Text(model) = %q, want empty", got)
	}
	if got := tr.ActiveRole(); got != RoleUser {
		t.Errorf("ActiveRole = %v, want %v", got, RoleUser)
	}
}
