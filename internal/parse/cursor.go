// Package parse provides a cursor-based string scanner used by the
// HTTP/1.1 line parsers (request line, status line, header lines, URLs).
package parse

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnexpectedEOF is returned when a parse operation runs out of input
// before it can complete.
var ErrUnexpectedEOF = errors.New("parse: unexpected end of input")

// Cursor scans a string from left to right without backtracking.
type Cursor struct {
	s   string
	pos int
}

// NewCursor returns a cursor positioned at the start of s.
func NewCursor(s string) *Cursor {
	return &Cursor{s: s}
}

// Pos returns the current byte offset.
func (c *Cursor) Pos() int { return c.pos }

// Done reports whether the cursor has reached the end of the input.
func (c *Cursor) Done() bool { return c.pos >= len(c.s) }

// Expect consumes literal if it appears next, or fails.
func (c *Cursor) Expect(literal string) error {
	if c.pos >= len(c.s) {
		return fmt.Errorf("%w: expected %q", ErrUnexpectedEOF, literal)
	}
	end := c.pos + len(literal)
	if end > len(c.s) {
		return fmt.Errorf("expected %q, got %q", literal, c.s[c.pos:])
	}
	actual := c.s[c.pos:end]
	if actual != literal {
		return fmt.Errorf("expected %q, got %q", literal, actual)
	}
	c.pos = end
	return nil
}

// ParseChar returns the next character and advances past it.
func (c *Cursor) ParseChar() (byte, error) {
	if c.pos >= len(c.s) {
		return 0, fmt.Errorf("%w: expected a character", ErrUnexpectedEOF)
	}
	ch := c.s[c.pos]
	c.pos++
	return ch, nil
}

// ParseDigit returns a single decimal digit as an integer.
func (c *Cursor) ParseDigit() (int, error) {
	if c.pos >= len(c.s) {
		return 0, fmt.Errorf("%w: expected a digit", ErrUnexpectedEOF)
	}
	ch := c.s[c.pos]
	if ch < '0' || ch > '9' {
		return 0, fmt.Errorf("expected a digit, got %q", string(ch))
	}
	c.pos++
	return int(ch - '0'), nil
}

// ParseUntil returns the slice up to (not including) the first
// occurrence of sep, and advances the cursor to sep. Fails if sep does
// not appear in the remaining input.
func (c *Cursor) ParseUntil(sep string) (string, error) {
	if c.pos >= len(c.s) {
		return "", fmt.Errorf("%w: expected %q", ErrUnexpectedEOF, sep)
	}
	remaining := c.s[c.pos:]
	idx := indexString(remaining, sep)
	if idx < 0 {
		return "", fmt.Errorf("expected %q in %q", sep, remaining)
	}
	c.pos += idx
	return remaining[:idx], nil
}

// ParseUntilAny returns the slice up to (not including) the first
// occurrence of any byte in chars, advancing the cursor to that byte.
// Fails if none of chars appear in the remaining input.
func (c *Cursor) ParseUntilAny(chars string) (string, error) {
	if c.pos >= len(c.s) {
		return "", fmt.Errorf("%w: expected one of %q", ErrUnexpectedEOF, chars)
	}
	remaining := c.s[c.pos:]
	idx := indexAny(remaining, chars)
	if idx < 0 {
		return "", fmt.Errorf("expected one of %q in %q", chars, remaining)
	}
	c.pos += idx
	return remaining[:idx], nil
}

// ConsumeWhitespace skips any run of spaces and tabs.
func (c *Cursor) ConsumeWhitespace() {
	for c.pos < len(c.s) && (c.s[c.pos] == ' ' || c.s[c.pos] == '\t') {
		c.pos++
	}
}

// ParseToken returns the maximal run of non-space/tab characters, then
// consumes any trailing whitespace.
func (c *Cursor) ParseToken() (string, error) {
	if c.pos >= len(c.s) {
		return "", fmt.Errorf("%w: expected a token", ErrUnexpectedEOF)
	}
	start := c.pos
	for c.pos < len(c.s) && c.s[c.pos] != ' ' && c.s[c.pos] != '\t' {
		c.pos++
	}
	token := c.s[start:c.pos]
	c.ConsumeWhitespace()
	return token, nil
}

// ParseNumber parses a token as a base-10 integer using strconv.Atoi, so
// a leading '+' or '-' sign is accepted.
func (c *Cursor) ParseNumber() (int, error) {
	token, err := c.ParseToken()
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q: %w", token, err)
	}
	return n, nil
}

// ParseRemaining returns everything left unconsumed and advances past
// the end of the input. A second call fails with ErrUnexpectedEOF,
// matching the spec's "read past the end twice" edge case.
func (c *Cursor) ParseRemaining() (string, error) {
	if c.pos > len(c.s) {
		return "", fmt.Errorf("%w: expected a token", ErrUnexpectedEOF)
	}
	remaining := c.s[c.pos:]
	c.pos = len(c.s) + 1
	return remaining, nil
}

func indexString(s, sub string) int {
	n := len(sub)
	if n == 0 {
		return 0
	}
	for i := 0; i+n <= len(s); i++ {
		if s[i:i+n] == sub {
			return i
		}
	}
	return -1
}

func indexAny(s, chars string) int {
	for i := 0; i < len(s); i++ {
		for j := 0; j < len(chars); j++ {
			if s[i] == chars[j] {
				return i
			}
		}
	}
	return -1
}
