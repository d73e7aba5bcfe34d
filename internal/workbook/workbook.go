package workbook

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"

	"SignalDesk/internal/model"
)

// ErrRowNotFound is returned when a note update targets a row that is not in
// the sheet.
var ErrRowNotFound = errors.New("workbook row not found")

const timeLayout = "2006-01-02 15:04"

// header is the column layout of every timeframe sheet. Notes stay last so
// the free-text column never shifts under the numeric ones.
var header = []string{
	"datetime", "signal", "token", "close price", "CCI",
	"stoch K", "stoch D", "slope K", "slope D", "ADX", "notes",
}

const (
	colDatetime = 0
	colSignal   = 1
	colToken    = 2
	colNotes    = 10
)

// Workbook persists signal rows to an Excel file, one sheet per timeframe
// plus a symbols sheet holding the scan universe. Upserts preserve the notes
// column across refreshes.
type Workbook struct {
	path         string
	symbolsSheet string
	mu           sync.Mutex
}

// Open returns a workbook store backed by the given path. The file is
// created lazily on the first write.
func Open(path, symbolsSheet string) *Workbook {
	return &Workbook{path: path, symbolsSheet: symbolsSheet}
}

// Symbols reads the scan universe from the symbols sheet, skipping the
// header row and blank cells.
func (w *Workbook) Symbols() ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(w.symbolsSheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", w.symbolsSheet, err)
	}

	symbols := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) == 0 || row[0] == "" {
			continue
		}
		if i == 0 && row[0] == "Symbols" {
			continue
		}
		symbols = append(symbols, row[0])
	}
	return symbols, nil
}

// UpsertSignals merges new records into the timeframe's sheet. Notes of
// existing rows are preserved by (datetime, token, signal) key, and rows not
// superseded by the new batch are kept. The returned records carry any notes
// recovered from the sheet.
func (w *Workbook) UpsertSignals(tf model.Timeframe, records []model.SignalRecord) ([]model.SignalRecord, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := w.openOrCreate()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := string(tf)
	existing, err := sheetRows(f, sheet)
	if err != nil {
		return nil, err
	}

	newKeys := make(map[string]bool, len(records))
	merged := make([]model.SignalRecord, len(records))
	for i, rec := range records {
		key := rowKey(rec.Row.Timestamp.Format(timeLayout), rec.Row.Symbol, string(rec.Signal))
		newKeys[key] = true
		rec.Note = existingNote(existing, key)
		merged[i] = rec
	}

	out := make([][]string, 0, len(merged)+len(existing))
	for _, rec := range merged {
		out = append(out, formatRecord(rec))
	}
	for _, row := range existing {
		if !newKeys[keyOf(row)] {
			out = append(out, row)
		}
	}

	if err := writeSheet(f, sheet, out); err != nil {
		return nil, err
	}
	if err := w.save(f); err != nil {
		return nil, err
	}
	return merged, nil
}

// UpdateNote sets the note of one row, addressed by its identity key.
func (w *Workbook) UpdateNote(tf model.Timeframe, timestamp time.Time, symbol string, signal model.Signal, note string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := string(tf)
	rows, err := sheetRows(f, sheet)
	if err != nil {
		return err
	}

	target := rowKey(timestamp.Format(timeLayout), symbol, string(signal))
	idx := -1
	for i, row := range rows {
		if keyOf(row) == target {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s %s %s", ErrRowNotFound, sheet, symbol, timestamp.Format(timeLayout))
	}

	row := rows[idx]
	for len(row) <= colNotes {
		row = append(row, "")
	}
	row[colNotes] = note
	rows[idx] = row

	if err := writeSheet(f, sheet, rows); err != nil {
		return err
	}
	return w.save(f)
}

func (w *Workbook) openOrCreate() (*excelize.File, error) {
	if _, err := os.Stat(w.path); err == nil {
		f, err := excelize.OpenFile(w.path)
		if err != nil {
			return nil, fmt.Errorf("open workbook: %w", err)
		}
		return f, nil
	}

	f := excelize.NewFile()
	if _, err := f.NewSheet(w.symbolsSheet); err != nil {
		return nil, fmt.Errorf("create symbols sheet: %w", err)
	}
	if err := f.SetSheetRow(w.symbolsSheet, "A1", &[]interface{}{"Symbols"}); err != nil {
		return nil, err
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}
	return f, nil
}

func (w *Workbook) save(f *excelize.File) error {
	if dir := filepath.Dir(w.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create workbook dir: %w", err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// sheetRows returns the data rows of a sheet, without the header. A missing
// sheet is an empty result.
func sheetRows(f *excelize.File, sheet string) ([][]string, error) {
	idx, err := f.GetSheetIndex(sheet)
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) <= 1 {
		return nil, nil
	}
	return rows[1:], nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	if idx, err := f.GetSheetIndex(sheet); err != nil {
		return err
	} else if idx >= 0 {
		if err := f.DeleteSheet(sheet); err != nil {
			return err
		}
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %q: %w", sheet, err)
	}

	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &hdr); err != nil {
		return err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
			return err
		}
	}
	return nil
}

func formatRecord(rec model.SignalRecord) []string {
	r := rec.Row
	return []string{
		r.Timestamp.Format(timeLayout),
		string(rec.Signal),
		r.Symbol,
		round2(r.Close),
		round2(r.CCI),
		round2(r.StochK),
		round2(r.StochD),
		round2(r.SlopeK),
		round2(r.SlopeD),
		r.ADXDisplay(),
		rec.Note,
	}
}

func round2(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', 2, 64)
}

func rowKey(datetime, token, signal string) string {
	return datetime + "|" + token + "|" + signal
}

func keyOf(row []string) string {
	get := func(i int) string {
		if i < len(row) {
			return row[i]
		}
		return ""
	}
	return rowKey(get(colDatetime), get(colToken), get(colSignal))
}

func existingNote(rows [][]string, key string) string {
	for _, row := range rows {
		if keyOf(row) == key && len(row) > colNotes {
			return row[colNotes]
		}
	}
	return ""
}
