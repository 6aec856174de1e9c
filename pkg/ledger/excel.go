package ledger

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/lbieldt/qrlabels/pkg/errors"
)

const (
	// generatedSheet records every serial ever issued.
	generatedSheet = "Generated"
	// planSheet holds explicitly requested serials for plan-driven runs.
	planSheet = "Create"
	// timeLayout matches the issued-at format recorded in the workbook.
	timeLayout = "2006-01-02 15:04:05"
)

// header is the first row of the Generated sheet.
var header = []any{"Serial", "Generated At", "Note", "Batch"}

// ExcelStore implements Store against a single .xlsx workbook.
type ExcelStore struct {
	path string
}

// NewExcelStore creates a store backed by the workbook at path.
// The workbook is created on first append; it does not need to exist yet.
func NewExcelStore(path string) *ExcelStore {
	return &ExcelStore{path: path}
}

// Path returns the workbook location.
func (s *ExcelStore) Path() string { return s.path }

// Issued returns the set of serials recorded in the Generated sheet.
//
// A workbook that does not exist at all reads as an empty set. An existing
// workbook that cannot be opened or lacks the Generated sheet is a
// LEDGER_MALFORMED error.
func (s *ExcelStore) Issued() (map[string]bool, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return map[string]bool{}, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "opening ledger %s", s.path)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(generatedSheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "reading ledger %s", s.path)
	}
	if idx < 0 {
		return nil, errors.New(errors.ErrCodeLedgerMalformed, "ledger %s has no %q sheet", s.path, generatedSheet)
	}

	rows, err := f.GetRows(generatedSheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "reading ledger %s", s.path)
	}

	issued := map[string]bool{}
	for i, row := range rows {
		if i == 0 || len(row) == 0 {
			continue // header or blank
		}
		serial := strings.TrimSpace(row[0])
		if serial != "" {
			issued[serial] = true
		}
	}
	return issued, nil
}

// Append records entries on the Generated sheet, creating the workbook and
// the sheet (with its header row) as needed. The workbook is saved once.
func (s *ExcelStore) Append(entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	f, err := s.open()
	if err != nil {
		return err
	}
	defer f.Close()

	rows, err := f.GetRows(generatedSheet)
	if err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWrite, err, "reading ledger %s", s.path)
	}

	next := len(rows) + 1
	for i, e := range entries {
		row := []any{e.Serial, e.IssuedAt.Format(timeLayout), e.Note, e.Batch}
		cell := fmt.Sprintf("A%d", next+i)
		if err := f.SetSheetRow(generatedSheet, cell, &row); err != nil {
			return errors.Wrap(errors.ErrCodeLedgerWrite, err, "writing ledger row %d", next+i)
		}
	}

	if err := f.SaveAs(s.path); err != nil {
		return errors.Wrap(errors.ErrCodeLedgerWrite, err, "saving ledger %s", s.path)
	}
	return nil
}

// Plan reads explicitly requested serials from the Create sheet.
// The sheet must exist and carry "Serial" and "Note" headers in columns A and
// B. Rows with an empty serial are skipped; serials are upper-cased.
func (s *ExcelStore) Plan() ([]PlanRequest, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "ledger %s does not exist", s.path)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "opening ledger %s", s.path)
	}
	defer f.Close()

	idx, err := f.GetSheetIndex(planSheet)
	if err != nil || idx < 0 {
		return nil, errors.New(errors.ErrCodeLedgerMalformed, "ledger %s has no %q sheet", s.path, planSheet)
	}

	rows, err := f.GetRows(planSheet)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "reading %q sheet", planSheet)
	}
	if len(rows) == 0 || len(rows[0]) < 2 || rows[0][0] != "Serial" || rows[0][1] != "Note" {
		return nil, errors.New(errors.ErrCodeLedgerMalformed,
			"%q sheet must have %q and %q headers in columns A and B", planSheet, "Serial", "Note")
	}

	var plan []PlanRequest
	for _, row := range rows[1:] {
		if len(row) == 0 {
			continue
		}
		serial := strings.ToUpper(strings.TrimSpace(row[0]))
		if serial == "" {
			continue
		}
		req := PlanRequest{Serial: serial}
		if len(row) > 1 {
			req.Note = strings.TrimSpace(row[1])
		}
		plan = append(plan, req)
	}
	return plan, nil
}

// open returns the workbook ready for appending: either the existing file or
// a fresh one with the default sheet replaced by Generated.
func (s *ExcelStore) open() (*excelize.File, error) {
	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		f := excelize.NewFile()
		if _, err := f.NewSheet(generatedSheet); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerWrite, err, "creating %q sheet", generatedSheet)
		}
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerWrite, err, "removing default sheet")
		}
		if err := f.SetSheetRow(generatedSheet, "A1", &header); err != nil {
			return nil, errors.Wrap(errors.ErrCodeLedgerWrite, err, "writing ledger header")
		}
		return f, nil
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "opening ledger %s", s.path)
	}

	idx, err := f.GetSheetIndex(generatedSheet)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(errors.ErrCodeLedgerMalformed, err, "reading ledger %s", s.path)
	}
	if idx < 0 {
		if _, err := f.NewSheet(generatedSheet); err != nil {
			f.Close()
			return nil, errors.Wrap(errors.ErrCodeLedgerWrite, err, "creating %q sheet", generatedSheet)
		}
		if err := f.SetSheetRow(generatedSheet, "A1", &header); err != nil {
			f.Close()
			return nil, errors.Wrap(errors.ErrCodeLedgerWrite, err, "writing ledger header")
		}
	}
	return f, nil
}
