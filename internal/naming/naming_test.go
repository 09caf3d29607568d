package naming

import (
	"reflect"
	"testing"
)

func TestClean(t *testing.T) {
	if got := Clean("  Ann \t  Lee \n"); got != "Ann Lee" {
		t.Fatalf("expected collapsed name, got %q", got)
	}
}

func TestOptional(t *testing.T) {
	if Optional("   ") != nil {
		t.Fatalf("expected blank to become nil")
	}
	v := Optional(" 555-0100 ")
	if v == nil || *v != "555-0100" {
		t.Fatalf("expected trimmed value, got %v", v)
	}
	if OptionalPtr(nil) != nil {
		t.Fatalf("expected nil pointer to stay nil")
	}
}

func TestEmailLowercases(t *testing.T) {
	in := " Ann@Example.COM "
	got := Email(&in)
	if got == nil || *got != "ann@example.com" {
		t.Fatalf("expected lowercased email, got %v", got)
	}
	blank := ""
	if Email(&blank) != nil {
		t.Fatalf("expected blank email to become nil")
	}
}

func TestDedupeIDs(t *testing.T) {
	got := DedupeIDs([]string{"b", " a ", "", "b", "c", "a"})
	want := []string{"b", "a", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if got := DedupeIDs(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestIdentifierPrefersEmail(t *testing.T) {
	email := "ann@example.com"
	if got := Identifier(&email, "Ann"); got != email {
		t.Fatalf("expected email, got %q", got)
	}
	blank := " "
	if got := Identifier(&blank, " Ann  Lee "); got != "Ann Lee" {
		t.Fatalf("expected cleaned name, got %q", got)
	}
}
