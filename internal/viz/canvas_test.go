package viz

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestCanvas_SetUnset(t *testing.T) {
	c := NewCanvas(2, 1)

	c.Set(0, 0)
	c.Set(1, 3)
	if c.Grid[0][0] != rune(brailleBlank|0x1|0x80) {
		t.Errorf("cell = %U", c.Grid[0][0])
	}
	if !c.IsSet(1, 3) || c.IsSet(1, 2) {
		t.Error("IsSet disagrees with Set")
	}

	c.Unset(0, 0)
	if c.Grid[0][0] != rune(brailleBlank|0x80) {
		t.Errorf("after unset cell = %U", c.Grid[0][0])
	}

	// out of range is ignored
	c.Set(-1, 0)
	c.Set(100, 100)
	c.Unset(-1, -1)
}

func TestCanvas_Owner(t *testing.T) {
	c := NewCanvas(3, 2)
	c.SetOwned(2, 4, 7)

	if c.Owner[1][1] != 7 {
		t.Errorf("owner = %d, want 7", c.Owner[1][1])
	}
	if c.Owner[0][0] != NoOwner {
		t.Error("untouched cell has an owner")
	}

	c.Clear()
	if c.Owner[1][1] != NoOwner || c.Grid[1][1] != brailleBlank {
		t.Error("clear did not reset cell")
	}
}

func TestCanvas_DrawLine(t *testing.T) {
	c := NewCanvas(10, 3)
	c.DrawLine(0, 0, 19, 11, 0)

	if !c.IsSet(0, 0) || !c.IsSet(19, 11) {
		t.Error("line endpoints not set")
	}
	for row := 0; row < 3; row++ {
		lit := false
		for col := 0; col < 10; col++ {
			if c.Grid[row][col] != brailleBlank {
				lit = true
			}
		}
		if !lit {
			t.Errorf("row %d empty on a diagonal", row)
		}
	}
}

func TestCanvas_Disc(t *testing.T) {
	c := NewCanvas(10, 5)
	c.Disc(10, 10, 2, 1)

	if !c.IsSet(10, 10) || !c.IsSet(12, 10) || !c.IsSet(10, 8) {
		t.Error("disc missing pixels")
	}
	if c.IsSet(12, 12) {
		t.Error("disc covers corner outside radius")
	}
}

func TestCanvas_String(t *testing.T) {
	c := NewCanvas(4, 2)
	lines := strings.Split(strings.TrimSuffix(c.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	if len([]rune(lines[0])) != 4 {
		t.Errorf("line width = %d", len([]rune(lines[0])))
	}
}

func TestCanvas_Render(t *testing.T) {
	c := NewCanvas(2, 1)
	c.SetOwned(0, 0, 0)
	c.Set(2, 0)

	calls := 0
	out := c.Render(func(int) lipgloss.Style {
		calls++
		return lipgloss.NewStyle()
	})

	if calls != 1 {
		t.Errorf("style called %d times, want 1", calls)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Error("render should end each row with a newline")
	}
}
