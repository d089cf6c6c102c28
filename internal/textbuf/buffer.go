// Package textbuf provides a growable byte buffer and character classifiers
// shared by the lexer and preprocessor.
package textbuf

const minCapacity = 8

// Buffer is a growable, append-only sequence of bytes. The zero value is an
// empty buffer ready to use.
type Buffer struct {
	data []byte
}

// New creates a Buffer pre-populated with s.
func New(s string) *Buffer {
	b := &Buffer{data: make([]byte, 0, max(minCapacity, len(s)))}
	b.AppendString(s)
	return b
}

// Len returns the number of bytes currently stored.
func (b *Buffer) Len() int {
	return len(b.data)
}

// At returns the byte at index i, or 0 if i is out of range.
func (b *Buffer) At(i int) byte {
	if i < 0 || i >= len(b.data) {
		return 0
	}
	return b.data[i]
}

// AppendByte appends a single byte, growing the backing array (capacity at
// least doubles) if needed.
func (b *Buffer) AppendByte(c byte) {
	if len(b.data) == cap(b.data) {
		b.grow(1)
	}
	b.data = append(b.data, c)
}

// AppendString appends s byte-by-byte.
func (b *Buffer) AppendString(s string) {
	need := len(b.data) + len(s)
	if need > cap(b.data) {
		b.grow(need - cap(b.data))
	}
	b.data = append(b.data, s...)
}

func (b *Buffer) grow(extra int) {
	newCap := cap(b.data) * 2
	if newCap < minCapacity {
		newCap = minCapacity
	}
	for newCap < len(b.data)+extra {
		newCap *= 2
	}
	grown := make([]byte, len(b.data), newCap)
	copy(grown, b.data)
	b.data = grown
}

// Substring returns the text in [start, end); out-of-range bounds are
// clamped rather than treated as an error.
func (b *Buffer) Substring(start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(b.data) {
		end = len(b.data)
	}
	if start >= end {
		return ""
	}
	return string(b.data[start:end])
}

// String returns the full contents as a string.
func (b *Buffer) String() string {
	return string(b.data)
}

// Equal reports whether b and other hold identical content.
func (b *Buffer) Equal(other *Buffer) bool {
	if b.Len() != other.Len() {
		return false
	}
	for i := range b.data {
		if b.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// IsSpace reports whether ch is a space, tab, or carriage return (not
// newline).
func IsSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

// IsDigit reports whether ch is a decimal digit.
func IsDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// IsLetter reports whether ch is an ASCII letter.
func IsLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

// IsIdentifierStart reports whether ch can begin an identifier.
func IsIdentifierStart(ch byte) bool {
	return IsLetter(ch) || ch == '_'
}

// IsIdentifierPart reports whether ch can continue an identifier.
func IsIdentifierPart(ch byte) bool {
	return IsIdentifierStart(ch) || IsDigit(ch)
}
