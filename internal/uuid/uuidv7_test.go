package uuid

import (
	"testing"

	googleuuid "github.com/google/uuid"
)

func TestNew(t *testing.T) {
	id := New()
	parsed, err := googleuuid.Parse(id)
	if err != nil {
		t.Fatalf("New() returned invalid uuid %q: %v", id, err)
	}
	if parsed.Version() != 7 {
		t.Errorf("version = %d, want 7", parsed.Version())
	}
	if New() == id {
		t.Error("expected distinct ids")
	}
}

func TestParse(t *testing.T) {
	got, err := Parse("0190A6C8-0000-7000-8000-000000000001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0190a6c8-0000-7000-8000-000000000001" {
		t.Errorf("Parse() = %q", got)
	}

	if _, err := Parse("nope"); err == nil {
		t.Error("expected error for invalid uuid")
	}
	if IsValid("nope") {
		t.Error("IsValid(nope) = true")
	}
}
