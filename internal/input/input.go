// Package input turns the raw terminal byte stream into per-frame key
// events, typed text and mouse taps.
package input

import (
	"bufio"
	"strconv"
	"unicode/utf8"
)

// Tap is a left mouse press on a 1-based terminal cell.
type Tap struct {
	Col, Row int
}

// Input represents the current frame's input.
type Input struct {
	Interrupt bool // Ctrl-C
	Up        bool
	Down      bool
	Left      bool
	Right     bool
	Enter     bool
	Tab       bool
	Backspace bool
	Escape    bool
	Text      []rune // Printable characters, including space
	Taps      []Tap
	Closed    bool // The byte stream ended
}

// Has reports whether r was typed this frame.
func (in Input) Has(r rune) bool {
	for _, t := range in.Text {
		if t == r {
			return true
		}
	}
	return false
}

// maxPending bounds an unfinished escape sequence carried to the next frame.
const maxPending = 32

// Stream delivers input bytes via a channel.
type Stream struct {
	ch      chan byte
	pending []byte // Incomplete escape sequence carried to the next frame
	closed  bool
}

// StartStream spawns a goroutine that reads from r and sends bytes to the stream.
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 256)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// ReadInput drains all available bytes from the stream (non-blocking) and
// parses them.
func ReadInput(s *Stream) Input {
	buf := s.pending
	s.pending = nil

drain:
	for !s.closed {
		select {
		case b, ok := <-s.ch:
			if !ok {
				s.closed = true
				break drain
			}
			buf = append(buf, b)
		default:
			break drain
		}
	}

	in, rest := Parse(buf)
	rest = flushOverlong(&in, rest)
	if len(rest) > 0 && !s.closed {
		s.pending = append([]byte(nil), rest...)
	}
	in.Closed = s.closed
	return in
}

// flushOverlong handles a pending sequence longer than maxPending: its ESC
// counts as a key press and the bytes after it are parsed as ordinary input.
// Returns what is still pending.
func flushOverlong(in *Input, rest []byte) []byte {
	for len(rest) > maxPending {
		in.Escape = true
		var more Input
		more, rest = Parse(rest[1:])
		in.merge(more)
	}
	return rest
}

func (in *Input) merge(o Input) {
	in.Interrupt = in.Interrupt || o.Interrupt
	in.Up = in.Up || o.Up
	in.Down = in.Down || o.Down
	in.Left = in.Left || o.Left
	in.Right = in.Right || o.Right
	in.Enter = in.Enter || o.Enter
	in.Tab = in.Tab || o.Tab
	in.Backspace = in.Backspace || o.Backspace
	in.Escape = in.Escape || o.Escape
	in.Text = append(in.Text, o.Text...)
	in.Taps = append(in.Taps, o.Taps...)
}

// Parse decodes buf. Trailing bytes of an incomplete escape sequence are
// returned as rest.
func Parse(buf []byte) (in Input, rest []byte) {
	for i := 0; i < len(buf); {
		b := buf[i]

		if b == '\x1b' {
			n, complete := parseEscape(&in, buf[i:])
			if !complete {
				return in, buf[i:]
			}
			i += n
			continue
		}

		switch b {
		case '\x03':
			in.Interrupt = true
		case '\r', '\n':
			in.Enter = true
		case '\t':
			in.Tab = true
		case '\b', '\x7f':
			in.Backspace = true
		default:
			if b < 0x20 {
				break
			}
			r, size := utf8.DecodeRune(buf[i:])
			if r == utf8.RuneError && size <= 1 {
				if !utf8.FullRune(buf[i:]) {
					return in, buf[i:]
				}
				i++
				continue
			}
			in.Text = append(in.Text, r)
			i += size
			continue
		}
		i++
	}
	return in, nil
}

// parseEscape decodes one sequence starting at ESC. It returns the number of
// bytes consumed, or complete=false when more bytes are needed.
func parseEscape(in *Input, seq []byte) (n int, complete bool) {
	if len(seq) == 1 {
		in.Escape = true // Lone ESC at the end of a read
		return 1, true
	}
	if seq[1] != '[' && seq[1] != 'O' {
		in.Escape = true
		return 1, true
	}
	if len(seq) < 3 {
		return 0, false
	}

	if seq[1] == '[' && seq[2] == '<' {
		return parseMouse(in, seq)
	}

	// CSI or SS3: parameters, then one final byte in 0x40..0x7e
	for j := 2; j < len(seq); j++ {
		c := seq[j]
		if c < 0x40 || c > 0x7e {
			continue
		}
		switch c {
		case 'A':
			in.Up = true
		case 'B':
			in.Down = true
		case 'C':
			in.Right = true
		case 'D':
			in.Left = true
		case 'Z':
			in.Tab = true // Shift-Tab
		}
		return j + 1, true
	}
	return 0, false
}

// parseMouse decodes an SGR mouse report: ESC [ < button ; col ; row (M|m).
// Only left-button presses become taps.
func parseMouse(in *Input, seq []byte) (n int, complete bool) {
	var fields [3]int
	field, start := 0, 3
	for j := 3; j < len(seq); j++ {
		c := seq[j]
		switch {
		case c >= '0' && c <= '9':
			continue
		case c == ';' || c == 'M' || c == 'm':
			if field < len(fields) {
				v, err := strconv.Atoi(string(seq[start:j]))
				if err != nil {
					return j + 1, true // Malformed; drop it
				}
				fields[field] = v
			}
			field++
			start = j + 1
			if c == ';' {
				continue
			}
			// Button 0 is left; bit 5 marks motion, bit 6 the wheel
			if c == 'M' && field == 3 && fields[0] == 0 {
				in.Taps = append(in.Taps, Tap{Col: fields[1], Row: fields[2]})
			}
			return j + 1, true
		default:
			return j + 1, true
		}
	}
	return 0, false
}
