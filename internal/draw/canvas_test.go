package draw

import (
	"bytes"
	"strings"
	"testing"
)

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGB
	}{
		{"#F59E0B", RGB{0xF5, 0x9E, 0x0B}},
		{"#fff", White},
		{"#000000", Black},
		{"nonsense", White},
	}
	for _, tt := range tests {
		if got := Hex(tt.in); got != tt.want {
			t.Errorf("Hex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestBlend(t *testing.T) {
	if got := Black.Blend(White, 0); got != Black {
		t.Errorf("Blend(0) = %+v", got)
	}
	if got := Black.Blend(White, 1); got != White {
		t.Errorf("Blend(1) = %+v", got)
	}
	mid := Black.Blend(White, 0.5)
	if mid.R < 120 || mid.R > 135 || mid.R != mid.G || mid.G != mid.B {
		t.Errorf("Blend(0.5) = %+v, want mid grey", mid)
	}
}

func TestRenderOnlyEmitsChangedCells(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.Fill(Hex("#e7e5e4"))

	var first bytes.Buffer
	c.Render(&first)
	if got := strings.Count(first.String(), string(BlockUpperHalf)); got != 50 {
		t.Fatalf("first frame emitted %d cells, want 50", got)
	}

	var second bytes.Buffer
	c.Render(&second)
	if second.Len() != 0 {
		t.Fatalf("unchanged frame emitted %q", second.String())
	}

	c.Set(0, 0, Black)
	var third bytes.Buffer
	c.Render(&third)
	if got := strings.Count(third.String(), string(BlockUpperHalf)); got != 1 {
		t.Errorf("single pixel change emitted %d cells, want 1", got)
	}
	if !strings.Contains(third.String(), "\033[38;2;0;0;0m") {
		t.Errorf("missing black foreground in %q", third.String())
	}
}

func TestMarkTextDirtyAndForceRedraw(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.Fill(White)
	c.Render(&bytes.Buffer{})

	c.MarkTextDirty(3, 2, 4)
	var buf bytes.Buffer
	c.Render(&buf)
	if got := strings.Count(buf.String(), string(BlockUpperHalf)); got != 4 {
		t.Errorf("dirty text repainted %d cells, want 4", got)
	}

	c.ForceRedraw()
	buf.Reset()
	c.Render(&buf)
	if got := strings.Count(buf.String(), string(BlockUpperHalf)); got != 50 {
		t.Errorf("forced redraw emitted %d cells, want 50", got)
	}
}

func TestFillCircleStaysRound(t *testing.T) {
	// 40 columns x 40 sub-pixels over a 100x100 logical space: scaleX 0.4, scaleY 0.4.
	c := NewScaledCanvas(40, 20, 100, 100)
	c.Fill(Black)
	c.FillCircle(50, 50, 20, White, 1)

	count := func(fixedX bool) int {
		n := 0
		for i := 0; i < 100; i++ {
			x, y := 50.0, float64(i)
			if !fixedX {
				x, y = float64(i), 50.0
			}
			if c.At(x, y) == White {
				n++
			}
		}
		return n
	}
	horizontal, vertical := count(false), count(true)
	if horizontal == 0 || abs(horizontal-vertical) > 6 {
		t.Errorf("disc extents differ: horizontal %d, vertical %d", horizontal, vertical)
	}
	if c.At(5, 5) != Black {
		t.Error("disc painted outside its radius")
	}
}

func TestFillCircleTinyPaintsOnePixel(t *testing.T) {
	c := NewScaledCanvas(10, 5, 100, 100)
	c.Fill(Black)
	c.FillCircle(50, 50, 0.1, White, 1)
	if c.At(50, 50) != White {
		t.Error("sub-pixel disc should still paint a pixel")
	}
}

func TestOverlay(t *testing.T) {
	c := NewScaledCanvas(4, 2, 4, 4)
	c.Fill(Black)
	c.Overlay(White, 0.3)
	got := c.At(1, 1)
	if got == Black || got == White {
		t.Errorf("overlay produced %+v", got)
	}
	c.Overlay(White, 0)
	if c.At(1, 1) != got {
		t.Error("zero-opacity overlay changed pixels")
	}
}

func TestTerminalLogicalRoundTrip(t *testing.T) {
	c := NewScaledCanvas(120, 40, 100, 100)
	x, y := c.TerminalToLogical(61, 21)
	col, row := c.LogicalToTerminal(x, y)
	if col != 61 || row != 21 {
		t.Errorf("round trip = (%d, %d), want (61, 21)", col, row)
	}
}

func TestChunkWriterFlush(t *testing.T) {
	var out bytes.Buffer
	cw := NewChunkWriter(&out, 2, 1)
	cw.WriteAt(1, 1, "Score: 3")
	if cw.Len() == 0 {
		t.Fatal("nothing buffered")
	}
	if err := cw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if out.String() != "\033[2;3HScore: 3" {
		t.Errorf("output = %q", out.String())
	}
	if cw.Len() != 0 {
		t.Error("buffer not reset after flush")
	}
}
