package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	m.Run()
}

func TestTable_Aligns(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"NAME", "EMAIL"}, [][]string{
		{"Ada", "ada@example.com"},
		{"Grace Hopper", "-"},
	})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d: %q", len(lines), buf.String())
	}
	if lines[0] != "  NAME          EMAIL" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "  "+strings.Repeat("─", 12)+"  ") {
		t.Errorf("unexpected separator %q", lines[1])
	}
	if lines[2] != "  Ada           ada@example.com" {
		t.Errorf("unexpected row %q", lines[2])
	}
	if lines[3] != "  Grace Hopper  -" {
		t.Errorf("unexpected row %q", lines[3])
	}
}

func TestTable_Empty(t *testing.T) {
	var buf bytes.Buffer
	Table(&buf, []string{"A"}, nil)
	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestStatusIcon(t *testing.T) {
	if StatusIcon(true) != "✓" || StatusIcon(false) != "✗" {
		t.Error("unexpected status icons")
	}
	if Dash("") != "-" || Dash("x") != "x" {
		t.Error("unexpected Dash")
	}
}
