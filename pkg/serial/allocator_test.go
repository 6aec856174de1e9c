package serial

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

// quietLogger discards allocation log output during tests.
func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestAllocateRange(t *testing.T) {
	tests := []struct {
		name     string
		issued   map[string]bool
		start    string
		end      string
		want     []string
		skipped  int
		attempts int
	}{
		{
			name:     "full range AAA to AAZ",
			start:    "AAA",
			end:      "AAZ",
			want:     rangeCodes("AA", 26),
			attempts: 26,
		},
		{
			name:     "collisions skipped without counting",
			issued:   map[string]bool{"AAB": true, "AAD": true},
			start:    "AAA",
			end:      "AAE",
			want:     []string{"AAA", "AAC", "AAE"},
			skipped:  2,
			attempts: 5,
		},
		{
			name:     "single code range",
			start:    "KAT",
			end:      "KAT",
			want:     []string{"KAT"},
			attempts: 1,
		},
		{
			name:  "end before start yields nothing",
			start: "BAA",
			end:   "AZZ",
		},
		{
			name:     "range crossing a carry",
			start:    "AAY",
			end:      "ABB",
			want:     []string{"AAY", "AAZ", "ABA", "ABB"},
			attempts: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.issued, quietLogger())
			res, err := a.AllocateRange(tt.start, tt.end)
			if err != nil {
				t.Fatalf("AllocateRange() error = %v", err)
			}
			assertCodes(t, res.Accepted, tt.want)
			if res.Skipped != tt.skipped {
				t.Errorf("Skipped = %d, want %d", res.Skipped, tt.skipped)
			}
			if res.Attempts != tt.attempts {
				t.Errorf("Attempts = %d, want %d", res.Attempts, tt.attempts)
			}
		})
	}
}

func TestAllocateRangeLengthMismatch(t *testing.T) {
	a := NewAllocator(nil, quietLogger())
	_, err := a.AllocateRange("AAA", "ZZ")
	if !errors.Is(err, errors.ErrCodeInvalidRange) {
		t.Errorf("error = %v, want INVALID_RANGE", err)
	}
}

func TestAllocateCount(t *testing.T) {
	tests := []struct {
		name     string
		issued   map[string]bool
		start    string
		count    int
		want     []string
		attempts int
	}{
		{
			name:     "five from AAA",
			start:    "AAA",
			count:    5,
			want:     []string{"AAA", "AAB", "AAC", "AAD", "AAE"},
			attempts: 5,
		},
		{
			name:     "collision does not count toward target",
			issued:   map[string]bool{"AAC": true},
			start:    "AAA",
			count:    3,
			want:     []string{"AAA", "AAB", "AAD"},
			attempts: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAllocator(tt.issued, quietLogger())
			res, err := a.AllocateCount(tt.start, tt.count, 0)
			if err != nil {
				t.Fatalf("AllocateCount() error = %v", err)
			}
			assertCodes(t, res.Accepted, tt.want)
			if res.Attempts != tt.attempts {
				t.Errorf("Attempts = %d, want %d", res.Attempts, tt.attempts)
			}
		})
	}
}

func TestAllocateCountAttemptCeiling(t *testing.T) {
	// Every candidate collides: the allocator must stop after exactly
	// maxAttempts checks and report the failure with an empty partial result.
	issued := map[string]bool{}
	seq, _ := NewSequence("AAA")
	for i := 0; i < 50; i++ {
		code, _ := seq.Next()
		issued[code] = true
	}

	a := NewAllocator(issued, quietLogger())
	res, err := a.AllocateCount("AAA", 3, 20)
	if !errors.Is(err, errors.ErrCodeAttemptsExhausted) {
		t.Fatalf("error = %v, want ATTEMPTS_EXHAUSTED", err)
	}
	if len(res.Accepted) != 0 {
		t.Errorf("Accepted = %v, want empty", res.Accepted)
	}
	if res.Attempts != 20 {
		t.Errorf("Attempts = %d, want exactly 20", res.Attempts)
	}
}

func TestAllocateCountPartialOnCeiling(t *testing.T) {
	// Two fresh codes exist inside the ceiling; the partial result carries
	// them alongside the error.
	issued := map[string]bool{"AAA": true, "AAC": true, "AAD": true, "AAF": true, "AAG": true, "AAH": true}
	a := NewAllocator(issued, quietLogger())

	res, err := a.AllocateCount("AAA", 5, 8)
	if !errors.Is(err, errors.ErrCodeAttemptsExhausted) {
		t.Fatalf("error = %v, want ATTEMPTS_EXHAUSTED", err)
	}
	assertCodes(t, res.Accepted, []string{"AAB", "AAE"})
	if res.Attempts != 8 {
		t.Errorf("Attempts = %d, want 8", res.Attempts)
	}
}

func TestAllocateCountSpaceExhausted(t *testing.T) {
	a := NewAllocator(nil, quietLogger())
	res, err := a.AllocateCount("ZY", 5, 100)
	if !errors.Is(err, errors.ErrCodeSpaceExhausted) {
		t.Fatalf("error = %v, want SPACE_EXHAUSTED", err)
	}
	assertCodes(t, res.Accepted, []string{"ZY", "ZZ"})
}

func TestAllocateDeterminism(t *testing.T) {
	issued := map[string]bool{"QRB": true, "QRD": true}

	first, err := NewAllocator(issued, quietLogger()).AllocateCount("QRA", 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewAllocator(issued, quietLogger()).AllocateCount("QRA", 4, 0)
	if err != nil {
		t.Fatal(err)
	}
	assertCodes(t, second.Accepted, first.Accepted)
}

func TestAllocateCountInvalidInput(t *testing.T) {
	a := NewAllocator(nil, quietLogger())
	if _, err := a.AllocateCount("AAA", 0, 0); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("count=0 error = %v, want INVALID_INPUT", err)
	}
	if _, err := a.AllocateCount("AAA", 1, -1); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("maxAttempts=-1 error = %v, want INVALID_INPUT", err)
	}
}

// rangeCodes builds prefix+A..prefix+<n letters> for expected values.
func rangeCodes(prefix string, n int) []string {
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = prefix + string(rune('A'+i))
	}
	return out
}

func assertCodes(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("accepted %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("accepted[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
