package serial

import (
	"github.com/charmbracelet/log"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// DefaultMaxAttempts bounds open-ended allocation: the allocator gives up
// after examining this many candidates without reaching the requested count.
const DefaultMaxAttempts = 10000

// Allocator filters a Sequence against a snapshot of already-issued codes.
// The snapshot is taken once at construction; concurrent writers to the
// underlying ledger are not observed.
type Allocator struct {
	issued map[string]bool
	logger *log.Logger
}

// NewAllocator creates an allocator over the given issued set.
// A nil issued set is treated as empty. A nil logger falls back to
// log.Default().
func NewAllocator(issued map[string]bool, logger *log.Logger) *Allocator {
	if issued == nil {
		issued = map[string]bool{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Allocator{issued: issued, logger: logger}
}

// Result reports the outcome of one allocation run.
type Result struct {
	Accepted []string // fresh codes, in emission order
	Skipped  int      // candidates dropped as already issued
	Attempts int      // candidates examined in total
}

// AllocateRange accepts every fresh code from start up to and including end.
// Every produced code is compared against end before anything else: a code
// past end is never considered, not even as a collision candidate. Reaching
// end is normal termination.
func (a *Allocator) AllocateRange(start, end string) (*Result, error) {
	endCode, err := Normalize(end)
	if err != nil {
		return nil, err
	}
	seq, err := NewSequence(start)
	if err != nil {
		return nil, err
	}
	if len(endCode) != seq.Length() {
		return nil, errors.New(errors.ErrCodeInvalidRange, "end code %q must have the same length as start (%d)", endCode, seq.Length())
	}

	res := &Result{}
	for {
		code, ok := seq.Next()
		if !ok || code > endCode {
			return res, nil
		}
		res.Attempts++
		if a.issued[code] {
			res.Skipped++
			a.logger.Info("skipping serial, already issued", "serial", code)
			continue
		}
		res.Accepted = append(res.Accepted, code)
	}
}

// AllocateCount accepts fresh codes from start until count codes have been
// accepted. Colliding candidates do not count toward count but do count
// toward maxAttempts; if maxAttempts candidates are examined before count is
// reached, the partial result is returned together with an
// ATTEMPTS_EXHAUSTED error. If maxAttempts is zero, DefaultMaxAttempts is
// used.
func (a *Allocator) AllocateCount(start string, count, maxAttempts int) (*Result, error) {
	if count <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "count must be positive, got %d", count)
	}
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if maxAttempts < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "max attempts must be positive, got %d", maxAttempts)
	}
	seq, err := NewSequence(start)
	if err != nil {
		return nil, err
	}

	res := &Result{}
	for len(res.Accepted) < count && res.Attempts < maxAttempts {
		code, ok := seq.Next()
		if !ok {
			return res, errors.New(errors.ErrCodeSpaceExhausted, "serial space of length %d exhausted after %d codes", seq.Length(), res.Attempts)
		}
		res.Attempts++
		if a.issued[code] {
			res.Skipped++
			a.logger.Info("skipping serial, already issued", "serial", code)
			continue
		}
		res.Accepted = append(res.Accepted, code)
	}

	if len(res.Accepted) < count {
		return res, errors.New(errors.ErrCodeAttemptsExhausted,
			"examined %d candidates but only accepted %d of %d requested serials", res.Attempts, len(res.Accepted), count)
	}
	return res, nil
}
