package drawer

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{"message only", &Error{Kind: KindNotFound, Message: "folder /x not found"}, "folder /x not found"},
		{"with op", Errorf(KindConflict, "CreateFolder", "folder %s already exists", "/docs"), "CreateFolder: folder /docs already exists"},
		{"kind fallback", &Error{Kind: KindInconsistent}, "inconsistent"},
		{"with cause", WrapIO("Write", errors.New("disk full")), "Write: storage operation failed: disk full"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"classified", Errorf(KindNotFound, "", "missing"), KindNotFound},
		{"wrapped", fmt.Errorf("placing upload: %w", Errorf(KindConflict, "", "taken")), KindConflict},
		{"unclassified", cause, KindIOError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}

	if IsKind(nil, KindIOError) {
		t.Error("IsKind(nil) = true")
	}
	if !errors.Is(WrapIO("Stat", cause), cause) {
		t.Error("WrapIO() does not unwrap to its cause")
	}
}

func TestMessageAndWithOp(t *testing.T) {
	err := Errorf(KindInvalidName, "", "folder name %q contains invalid characters", "a.b")
	if got := Message(err); got != `folder name "a.b" contains invalid characters` {
		t.Errorf("Message() = %q", got)
	}
	if got := Message(errors.New("plain")); got != "plain" {
		t.Errorf("Message(plain) = %q", got)
	}

	withOp := WithOp("RenameFolder", err)
	var e *Error
	if !errors.As(withOp, &e) || e.Op != "RenameFolder" {
		t.Errorf("WithOp() = %v, want Op RenameFolder", withOp)
	}
	if err.Op != "" {
		t.Error("WithOp() mutated the original error")
	}

	named := Errorf(KindNotFound, "MoveFile", "gone")
	if got := WithOp("Other", named); got != error(named) {
		t.Errorf("WithOp() replaced an existing op: %v", got)
	}
}
