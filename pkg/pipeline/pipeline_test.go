package pipeline

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/lbieldt/qrlabels/pkg/errors"
	"github.com/lbieldt/qrlabels/pkg/label"
	"github.com/lbieldt/qrlabels/pkg/ledger"
)

// memStore is an in-memory ledger.Store for pipeline tests.
type memStore struct {
	issued   map[string]bool
	appended []ledger.Entry
	readErr  error
}

func newMemStore(serials ...string) *memStore {
	s := &memStore{issued: map[string]bool{}}
	for _, code := range serials {
		s.issued[code] = true
	}
	return s
}

func (s *memStore) Issued() (map[string]bool, error) {
	if s.readErr != nil {
		return nil, s.readErr
	}
	out := make(map[string]bool, len(s.issued))
	for k, v := range s.issued {
		out[k] = v
	}
	return out, nil
}

func (s *memStore) Append(entries []ledger.Entry) error {
	s.appended = append(s.appended, entries...)
	return nil
}

func newTestRunner(t *testing.T, store ledger.Store) *Runner {
	t.Helper()
	logger := log.New(io.Discard)
	renderer, err := label.NewRenderer(label.Config{
		OutputDir:  t.TempDir(),
		FontName:   "no-such-font-anywhere.ttf",
		FontSize:   12,
		SymbolSize: 48,
	}, logger)
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}
	return NewRunner(store, renderer, logger)
}

func TestExecuteCountMode(t *testing.T) {
	store := newMemStore("AAC")
	r := newTestRunner(t, store)

	res, err := r.Execute(Options{Start: "AAA", Count: 3, Note: "batch one"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"AAA", "AAB", "AAD"}
	if len(res.Accepted) != len(want) {
		t.Fatalf("Accepted = %v, want %v", res.Accepted, want)
	}
	for i := range want {
		if res.Accepted[i] != want[i] {
			t.Errorf("Accepted[%d] = %q, want %q", i, res.Accepted[i], want[i])
		}
	}
	if res.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", res.Skipped)
	}

	// One label file per accepted serial.
	if len(res.Files) != 3 {
		t.Fatalf("Files = %v, want 3 paths", res.Files)
	}
	for _, path := range res.Files {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("label file missing: %v", err)
		}
	}

	// One ledger entry per accepted serial, all stamped with the same batch.
	if len(store.appended) != 3 {
		t.Fatalf("appended %d entries, want 3", len(store.appended))
	}
	for i, e := range store.appended {
		if e.Serial != want[i] {
			t.Errorf("entry[%d].Serial = %q, want %q", i, e.Serial, want[i])
		}
		if e.Note != "batch one" {
			t.Errorf("entry[%d].Note = %q, want %q", i, e.Note, "batch one")
		}
		if e.Batch != res.Batch || e.Batch == "" {
			t.Errorf("entry[%d].Batch = %q, want run batch %q", i, e.Batch, res.Batch)
		}
		if e.IssuedAt.IsZero() {
			t.Errorf("entry[%d].IssuedAt is zero", i)
		}
	}
}

func TestExecuteRangeMode(t *testing.T) {
	store := newMemStore()
	r := newTestRunner(t, store)

	res, err := r.Execute(Options{Start: "AAA", End: "AAE"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(res.Accepted) != 5 {
		t.Errorf("Accepted = %v, want AAA..AAE", res.Accepted)
	}
	if res.Accepted[0] != "AAA" || res.Accepted[4] != "AAE" {
		t.Errorf("Accepted = %v, want AAA..AAE", res.Accepted)
	}
}

func TestExecuteExhaustionPersistsPartial(t *testing.T) {
	// AAB is the only fresh serial within the 4-candidate ceiling; it must
	// still be rendered and persisted even though the run reports failure.
	store := newMemStore("AAA", "AAC", "AAD", "AAE", "AAF")
	r := newTestRunner(t, store)

	res, err := r.Execute(Options{Start: "AAA", Count: 3, MaxAttempts: 4})
	if !errors.Is(err, errors.ErrCodeAttemptsExhausted) {
		t.Fatalf("Execute() error = %v, want ATTEMPTS_EXHAUSTED", err)
	}
	if len(res.Accepted) != 1 || res.Accepted[0] != "AAB" {
		t.Errorf("Accepted = %v, want [AAB]", res.Accepted)
	}
	if res.Attempts != 4 {
		t.Errorf("Attempts = %d, want 4", res.Attempts)
	}
	if len(store.appended) != 1 || store.appended[0].Serial != "AAB" {
		t.Errorf("appended = %v, want the partial AAB entry", store.appended)
	}
}

func TestExecutePlanMode(t *testing.T) {
	store := newMemStore("KAT")
	r := newTestRunner(t, store)

	res, err := r.Execute(Options{Plan: []ledger.PlanRequest{
		{Serial: "kat", Note: "collides"},
		{Serial: "dog", Note: "crate one"},
		{Serial: "DOG", Note: "duplicate within plan"},
		{Serial: "FOX", Note: "crate two"},
	}})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	want := []string{"DOG", "FOX"}
	if len(res.Accepted) != len(want) {
		t.Fatalf("Accepted = %v, want %v", res.Accepted, want)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if store.appended[0].Note != "crate one" || store.appended[1].Note != "crate two" {
		t.Errorf("plan notes not carried onto entries: %v", store.appended)
	}
}

func TestExecuteLedgerReadErrorAborts(t *testing.T) {
	store := newMemStore()
	store.readErr = errors.New(errors.ErrCodeLedgerMalformed, "no Generated sheet")
	r := newTestRunner(t, store)

	_, err := r.Execute(Options{Start: "AAA", Count: 1})
	if !errors.Is(err, errors.ErrCodeLedgerMalformed) {
		t.Fatalf("Execute() error = %v, want LEDGER_MALFORMED", err)
	}
	if len(store.appended) != 0 {
		t.Errorf("appended %v after a failed ledger read", store.appended)
	}
}

func TestOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{name: "range mode", opts: Options{Start: "AAA", End: "AAZ"}},
		{name: "count mode", opts: Options{Start: "BAA", Count: 10}},
		{name: "plan mode", opts: Options{Plan: []ledger.PlanRequest{{Serial: "AAA"}}}},
		{name: "no mode", opts: Options{Start: "AAA"}, wantErr: true},
		{name: "missing start", opts: Options{Count: 5}, wantErr: true},
		{name: "range and count", opts: Options{Start: "AAA", End: "AAZ", Count: 5}, wantErr: true},
		{name: "plan with start", opts: Options{Start: "AAA", Plan: []ledger.PlanRequest{{Serial: "AAB"}}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// The sequence file name convention matters to the compose step, which names
// its document from the first and last file in listing order.
func TestRenderedFileNames(t *testing.T) {
	store := newMemStore()
	r := newTestRunner(t, store)

	res, err := r.Execute(Options{Start: "ZZX", End: "ZZZ"})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	for i, code := range []string{"ZZX", "ZZY", "ZZZ"} {
		if got := filepath.Base(res.Files[i]); got != code+".png" {
			t.Errorf("Files[%d] = %q, want %s.png", i, got, code)
		}
	}
}
