// Package serial generates fixed-length uppercase alphabetic serial codes.
//
// A serial code is a string over A-Z, ordered lexicographically. Codes of a
// fixed length map one-to-one onto integers by treating the code as a base-26
// number (A=0 .. Z=25), which lets a [Sequence] start at an arbitrary code
// without scanning every prior combination.
//
// The [Allocator] layers a collision policy on top of a Sequence: candidates
// are checked against a snapshot of already-issued codes and skipped when
// they collide. Allocation is deterministic - the same start code and the
// same issued set always produce the same output.
package serial

import (
	"strings"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// alphabetSize is the number of symbols in the serial alphabet (A-Z).
const alphabetSize = 26

// MaxLength is the longest supported serial code. 26^13 still fits in a
// uint64 index; longer codes would overflow the index arithmetic.
const MaxLength = 13

// Normalize upper-cases a serial code and validates it.
// Valid codes are non-empty, at most MaxLength runes, and contain only A-Z.
func Normalize(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", errors.New(errors.ErrCodeInvalidSerial, "serial code cannot be empty")
	}
	if len(code) > MaxLength {
		return "", errors.New(errors.ErrCodeInvalidSerial, "serial code too long (max %d characters)", MaxLength)
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return "", errors.New(errors.ErrCodeInvalidSerial, "serial code %q contains non-alphabetic character %q", code, r)
		}
	}
	return code, nil
}

// indexOf converts a validated code to its position in the base-26 space.
func indexOf(code string) uint64 {
	var idx uint64
	for i := 0; i < len(code); i++ {
		idx = idx*alphabetSize + uint64(code[i]-'A')
	}
	return idx
}

// codeAt converts a position back to a code of the given length.
func codeAt(idx uint64, length int) string {
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = byte('A' + idx%alphabetSize)
		idx /= alphabetSize
	}
	return string(buf)
}

// spaceSize returns 26^length, the number of codes at the given length.
func spaceSize(length int) uint64 {
	n := uint64(1)
	for i := 0; i < length; i++ {
		n *= alphabetSize
	}
	return n
}

// Sequence lazily produces serial codes in strict lexicographic order,
// beginning exactly at its start code. The code length is fixed by the start
// code. Exhausting the 26^length space is a hard stop; the sequence never
// wraps.
type Sequence struct {
	start  uint64
	next   uint64
	size   uint64
	length int
	done   bool
}

// NewSequence creates a sequence beginning at start.
// The start code is normalized and validated; its length fixes the length of
// every produced code.
func NewSequence(start string) (*Sequence, error) {
	code, err := Normalize(start)
	if err != nil {
		return nil, err
	}
	idx := indexOf(code)
	return &Sequence{
		start:  idx,
		next:   idx,
		size:   spaceSize(len(code)),
		length: len(code),
	}, nil
}

// Length returns the fixed code length of the sequence.
func (s *Sequence) Length() int { return s.length }

// Next returns the next code in order. The second return value is false once
// the code space is exhausted.
func (s *Sequence) Next() (string, bool) {
	if s.done || s.next >= s.size {
		s.done = true
		return "", false
	}
	code := codeAt(s.next, s.length)
	s.next++
	return code, true
}

// Reset rewinds the sequence to its start code.
func (s *Sequence) Reset() {
	s.next = s.start
	s.done = false
}
