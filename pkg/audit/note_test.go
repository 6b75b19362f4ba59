package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/stylekart/fulfillment-backend/pkg/enums"
)

func TestLineFormat(t *testing.T) {
	at := time.Date(2026, 8, 28, 14, 3, 11, 0, time.UTC)
	got := Line(at, TagReassigned, enums.ActorRoleAdmin, "moved from courier ab12cd34")
	want := "[2026-08-28 14:03:11] [REASSIGNED] admin: moved from courier ab12cd34"
	if got != want {
		t.Fatalf("unexpected line %q", got)
	}
}

func TestAppendHandlesEmptyAndExisting(t *testing.T) {
	line := "first entry"
	if got := Append(nil, line); got != line {
		t.Fatalf("append to nil should return the line, got %q", got)
	}

	empty := "   "
	if got := Append(&empty, line); got != line {
		t.Fatalf("append to blank should return the line, got %q", got)
	}

	existing := "first entry"
	got := Append(&existing, "second entry")
	if !strings.HasSuffix(got, "\nsecond entry") {
		t.Fatalf("expected newline-joined notes, got %q", got)
	}
}
