// Package pipeline orchestrates the allocate → render → persist run for
// serial-coded labels.
//
// The pipeline consists of three stages:
//
//  1. Allocate: produce fresh serial codes, filtered against the ledger
//  2. Render: write one label image per accepted serial
//  3. Persist: append the accepted serials to the ledger in one batch
//
// The ledger is loaded once at the start of a run and appended once at the
// end; the same start code over the same ledger state always yields the same
// serials.
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/lbieldt/qrlabels/pkg/errors"
	"github.com/lbieldt/qrlabels/pkg/label"
	"github.com/lbieldt/qrlabels/pkg/ledger"
	"github.com/lbieldt/qrlabels/pkg/serial"
)

// Runner executes generate runs. It is stateless apart from its
// collaborators; every run snapshots the ledger fresh.
type Runner struct {
	Store    ledger.Store
	Renderer *label.Renderer
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil logger falls back to log.Default().
func NewRunner(store ledger.Store, renderer *label.Renderer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Store: store, Renderer: renderer, Logger: logger}
}

// Options selects exactly one allocation mode:
//
//   - range mode: Start and End set, Count zero, Plan empty
//   - count mode: Start set, Count positive, End empty, Plan empty
//   - plan mode: Plan set, Start/End/Count empty
type Options struct {
	Start       string
	End         string
	Count       int
	MaxAttempts int    // count mode only; zero means serial.DefaultMaxAttempts
	Note        string // recorded with every entry in range/count mode
	Plan        []ledger.PlanRequest
}

// Stats carries per-stage timings for one run.
type Stats struct {
	LoadTime     time.Duration
	AllocateTime time.Duration
	RenderTime   time.Duration
	AppendTime   time.Duration
}

// Result reports one run: the batch id stamped on the ledger rows, the
// accepted serials in emission order, and the label files written for them.
type Result struct {
	Batch    string
	Accepted []string
	Skipped  int
	Attempts int
	Files    []string
	Stats    Stats
}

// item is one accepted serial with the note to record for it.
type item struct {
	serial string
	note   string
}

// Execute runs the full pipeline. When count-mode allocation exhausts its
// attempt ceiling, the serials accepted before the ceiling are still
// rendered and persisted, and the exhaustion error is returned alongside the
// partial result.
func (r *Runner) Execute(opts Options) (*Result, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	result := &Result{Batch: uuid.NewString()}

	loadStart := time.Now()
	issued, err := r.Store.Issued()
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = time.Since(loadStart)
	r.Logger.Info("loaded ledger", "issued", len(issued), "duration", result.Stats.LoadTime)

	allocStart := time.Now()
	items, allocErr := r.allocate(opts, issued, result)
	if allocErr != nil && !errors.Is(allocErr, errors.ErrCodeAttemptsExhausted) {
		return nil, allocErr
	}
	result.Stats.AllocateTime = time.Since(allocStart)
	r.Logger.Info("allocated serials",
		"accepted", len(items),
		"skipped", result.Skipped,
		"attempts", result.Attempts,
		"duration", result.Stats.AllocateTime)

	renderStart := time.Now()
	entries := make([]ledger.Entry, 0, len(items))
	for _, it := range items {
		path, err := r.Renderer.Render(it.serial)
		if err != nil {
			return nil, err
		}
		result.Files = append(result.Files, path)
		result.Accepted = append(result.Accepted, it.serial)
		entries = append(entries, ledger.Entry{
			Serial:   it.serial,
			IssuedAt: time.Now(),
			Note:     it.note,
			Batch:    result.Batch,
		})
	}
	result.Stats.RenderTime = time.Since(renderStart)
	r.Logger.Info("rendered labels", "count", len(result.Files), "duration", result.Stats.RenderTime)

	appendStart := time.Now()
	if err := r.Store.Append(entries); err != nil {
		return nil, err
	}
	result.Stats.AppendTime = time.Since(appendStart)
	if len(entries) > 0 {
		r.Logger.Info("appended ledger entries",
			"count", len(entries),
			"batch", result.Batch,
			"duration", result.Stats.AppendTime)
	}

	return result, allocErr
}

// allocate dispatches to the selected mode and returns the accepted items.
// A returned ATTEMPTS_EXHAUSTED error still carries partial items.
func (r *Runner) allocate(opts Options, issued map[string]bool, result *Result) ([]item, error) {
	if len(opts.Plan) > 0 {
		return r.allocatePlan(opts.Plan, issued, result)
	}

	alloc := serial.NewAllocator(issued, r.Logger)

	var res *serial.Result
	var err error
	if opts.End != "" {
		res, err = alloc.AllocateRange(opts.Start, opts.End)
	} else {
		res, err = alloc.AllocateCount(opts.Start, opts.Count, opts.MaxAttempts)
	}
	if res == nil {
		return nil, err
	}

	result.Skipped = res.Skipped
	result.Attempts = res.Attempts
	items := make([]item, len(res.Accepted))
	for i, code := range res.Accepted {
		items[i] = item{serial: code, note: opts.Note}
	}
	return items, err
}

// allocatePlan filters explicitly requested serials against the issued set.
// Requests carry their own notes; collisions are skipped and logged exactly
// like generated candidates.
func (r *Runner) allocatePlan(plan []ledger.PlanRequest, issued map[string]bool, result *Result) ([]item, error) {
	var items []item
	seen := map[string]bool{}
	for _, req := range plan {
		code, err := serial.Normalize(req.Serial)
		if err != nil {
			return nil, err
		}
		result.Attempts++
		if issued[code] || seen[code] {
			result.Skipped++
			r.Logger.Info("skipping serial, already issued", "serial", code)
			continue
		}
		seen[code] = true
		items = append(items, item{serial: code, note: req.Note})
	}
	return items, nil
}

// validate enforces that exactly one allocation mode is selected.
func (o Options) validate() error {
	planMode := len(o.Plan) > 0
	rangeMode := o.End != ""
	countMode := o.Count > 0

	switch {
	case planMode && (rangeMode || countMode || o.Start != ""):
		return errors.New(errors.ErrCodeInvalidInput, "a plan cannot be combined with start/end/count")
	case planMode:
		return nil
	case o.Start == "":
		return errors.New(errors.ErrCodeInvalidInput, "a start serial is required")
	case rangeMode && countMode:
		return errors.New(errors.ErrCodeInvalidInput, "end and count are mutually exclusive")
	case !rangeMode && !countMode:
		return errors.New(errors.ErrCodeInvalidInput, "either an end serial or a count is required")
	}
	return nil
}
