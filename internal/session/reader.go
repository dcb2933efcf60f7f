package session

import (
	"bufio"
	"io"
	"strings"

	"iviweb/internal/system"
)

// maxLineLen bounds one input line. Longer lines are dropped whole.
const maxLineLen = 4096

// Telnet protocol bytes.
const (
	iac  = 255
	dont = 254
	will = 251
	sb   = 250
	se   = 240
)

// lineReader reads client input one line at a time. Lines end in "\r",
// "\n", "\r\n" or "\r\0"; telnet negotiation is discarded.
type lineReader struct {
	r      *bufio.Reader
	skipLF bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// ReadLine returns the next line with surrounding whitespace removed.
// Lines over maxLineLen bytes are discarded up to their line ending.
func (l *lineReader) ReadLine() (string, error) {
	var buf []byte
	overflow := false
	for {
		b, err := l.r.ReadByte()
		if err != nil {
			if err == io.EOF && len(buf) > 0 && !overflow {
				return strings.TrimSpace(string(buf)), nil
			}
			return "", err
		}
		if l.skipLF {
			l.skipLF = false
			if b == '\n' || b == 0 {
				continue
			}
		}
		switch b {
		case iac:
			if err := l.skipCommand(); err != nil {
				return "", err
			}
		case '\r', '\n':
			l.skipLF = b == '\r'
			if overflow {
				system.Logger.Warn("dropped over-long input line", "limit", maxLineLen)
				buf, overflow = buf[:0], false
				continue
			}
			return strings.TrimSpace(string(buf)), nil
		default:
			if len(buf) >= maxLineLen {
				overflow = true
				continue
			}
			buf = append(buf, b)
		}
	}
}

func (l *lineReader) skipCommand() error {
	cmd, err := l.r.ReadByte()
	if err != nil {
		return err
	}
	switch {
	case cmd == iac:
		// escaped 0xFF data byte; not meaningful to the scene
		return nil
	case cmd >= will && cmd <= dont:
		_, err = l.r.ReadByte()
		return err
	case cmd == sb:
		for {
			b, err := l.r.ReadByte()
			if err != nil {
				return err
			}
			if b != iac {
				continue
			}
			next, err := l.r.ReadByte()
			if err != nil {
				return err
			}
			if next == se {
				return nil
			}
		}
	}
	return nil
}
