// Package ledger persists the record of issued serial codes.
//
// The ledger is the source of truth for collision checks: the allocator loads
// the full issued set once per run and appends the newly accepted codes once
// at the end. The store is a single spreadsheet file and is not locked
// against concurrent external writers; one process, one run.
package ledger

import "time"

// Entry is one issued serial: the code, when it was issued, and the
// free-text note recorded with it. Batch groups all entries appended by a
// single run.
type Entry struct {
	Serial   string
	IssuedAt time.Time
	Note     string
	Batch    string
}

// PlanRequest is one explicitly requested serial read from the plan sheet.
type PlanRequest struct {
	Serial string
	Note   string
}

// Store reads and appends ledger entries.
//
// Issued returns the set of all previously recorded serials. A store that
// does not exist yet reads as empty; an existing but malformed store is an
// error, never silently empty.
type Store interface {
	Issued() (map[string]bool, error)
	Append(entries []Entry) error
}
