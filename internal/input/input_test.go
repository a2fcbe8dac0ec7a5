package input

import (
	"bufio"
	"io"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Input
	}{
		{"arrows", "\x1b[A\x1b[B\x1b[C\x1b[D", Input{Up: true, Down: true, Right: true, Left: true}},
		{"ss3 arrows", "\x1bOA", Input{Up: true}},
		{"enter", "\r", Input{Enter: true}},
		{"tab", "\t", Input{Tab: true}},
		{"shift tab", "\x1b[Z", Input{Tab: true}},
		{"backspace", "\x7f", Input{Backspace: true}},
		{"ctrl-c", "\x03", Input{Interrupt: true}},
		{"lone escape", "\x1b", Input{Escape: true}},
		{"escape then key", "\x1bq", Input{Escape: true, Text: []rune{'q'}}},
		{"text", "ab c", Input{Text: []rune("ab c")}},
		{"utf8", "čau", Input{Text: []rune("čau")}},
		{"function key ignored", "\x1b[15~x", Input{Text: []rune{'x'}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest := Parse([]byte(tt.in))
			if len(rest) != 0 {
				t.Fatalf("rest = %q, want none", rest)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseMouse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Tap
	}{
		{"left press", "\x1b[<0;12;5M", []Tap{{Col: 12, Row: 5}}},
		{"release ignored", "\x1b[<0;12;5m", nil},
		{"right press ignored", "\x1b[<2;12;5M", nil},
		{"wheel ignored", "\x1b[<64;12;5M", nil},
		{"drag ignored", "\x1b[<32;12;5M", nil},
		{"two presses", "\x1b[<0;1;1M\x1b[<0;1;1m\x1b[<0;80;24M", []Tap{{1, 1}, {80, 24}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rest := Parse([]byte(tt.in))
			if len(rest) != 0 {
				t.Fatalf("rest = %q", rest)
			}
			if !reflect.DeepEqual(got.Taps, tt.want) {
				t.Errorf("taps = %v, want %v", got.Taps, tt.want)
			}
		})
	}
}

func TestParseIncomplete(t *testing.T) {
	for _, in := range []string{"\x1b[<0;12", "\x1b[", "\x1b[1;5", "\xc4"} {
		_, rest := Parse([]byte("x" + in))
		if string(rest) != in {
			t.Errorf("Parse(%q) rest = %q, want %q", "x"+in, rest, in)
		}
	}
}

func TestReadInputCarriesSplitSequence(t *testing.T) {
	pr, pw := io.Pipe()
	s := StartStream(bufio.NewReader(pr))

	write := func(p string) {
		t.Helper()
		if _, err := pw.Write([]byte(p)); err != nil {
			t.Fatal(err)
		}
	}
	waitFor := func(cond func(Input) bool) Input {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if in := ReadInput(s); cond(in) {
				return in
			}
			time.Sleep(5 * time.Millisecond)
		}
		t.Fatal("timed out waiting for input")
		return Input{}
	}

	write("\x1b[<0;7")
	// The partial report must not leak out as text or escape.
	time.Sleep(20 * time.Millisecond)
	if in := ReadInput(s); in.Escape || len(in.Text) > 0 || len(in.Taps) > 0 {
		t.Fatalf("partial sequence produced %+v", in)
	}

	write(";3M")
	in := waitFor(func(in Input) bool { return len(in.Taps) > 0 })
	if in.Taps[0] != (Tap{Col: 7, Row: 3}) {
		t.Errorf("tap = %+v, want {7 3}", in.Taps[0])
	}

	pw.Close()
	waitFor(func(in Input) bool { return in.Closed })
}

func TestFlushOverlong(t *testing.T) {
	var in Input
	rest := flushOverlong(&in, []byte("\x1b[<0;7"))
	if string(rest) != "\x1b[<0;7" || in.Escape {
		t.Fatalf("short sequence flushed: rest=%q in=%+v", rest, in)
	}

	long := "\x1b[" + strings.Repeat("1", 40)
	in = Input{}
	rest = flushOverlong(&in, []byte(long))
	if len(rest) != 0 {
		t.Errorf("rest = %q, want nothing pending", rest)
	}
	if !in.Escape {
		t.Error("flushed sequence should count as Escape")
	}
	if want := "[" + strings.Repeat("1", 40); string(in.Text) != want {
		t.Errorf("text = %q, want %q", string(in.Text), want)
	}
}

func TestReadInputBoundsPending(t *testing.T) {
	pr, pw := io.Pipe()
	s := StartStream(bufio.NewReader(pr))
	defer pw.Close()

	go pw.Write([]byte("\x1b[" + strings.Repeat("9", 200)))

	deadline := time.Now().Add(2 * time.Second)
	sawEscape := false
	for time.Now().Before(deadline) && !sawEscape {
		in := ReadInput(s)
		sawEscape = in.Escape
		if len(s.pending) > maxPending {
			t.Fatalf("pending grew to %d bytes", len(s.pending))
		}
		time.Sleep(time.Millisecond)
	}
	if !sawEscape {
		t.Fatal("unterminated sequence never flushed")
	}
}

func TestInputHas(t *testing.T) {
	in, _ := Parse([]byte("gq"))
	if !in.Has('q') || !in.Has('g') || in.Has('x') {
		t.Errorf("Has mismatch for %q", string(in.Text))
	}
}

func TestStreamEOF(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader(" ")))
	deadline := time.Now().Add(2 * time.Second)
	var text []rune
	for time.Now().Before(deadline) {
		in := ReadInput(s)
		text = append(text, in.Text...)
		if in.Closed {
			break
		}
		time.Sleep(time.Millisecond)
	}
	if string(text) != " " {
		t.Errorf("text = %q, want a single space", string(text))
	}
}
