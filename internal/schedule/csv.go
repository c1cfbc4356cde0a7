package schedule

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

// csvHeader is the column layout of the persisted schedule. Players are
// joined with "; " within the last column.
var csvHeader = []string{"Date", "Weekday", "Slot", "Type", "Players"}

// ReadCSV parses a persisted schedule into a store. Any malformed row is a
// fatal error naming the row; rows are never silently skipped, because a
// dropped row would corrupt the fairness counters.
func ReadCSV(r io.Reader) (*Store, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("schedule is empty: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	for i, want := range csvHeader {
		if header[i] != want {
			return nil, fmt.Errorf("header column %d is %q, want %q", i+1, header[i], want)
		}
	}

	store := NewStore()
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q", row, record[0])
		}
		if record[1] != date.Weekday().String() {
			return nil, fmt.Errorf("row %d: weekday %q does not match date %s (%s)",
				row, record[1], record[0], date.Weekday())
		}
		code, err := ParseSlotCode(record[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		if string(code.Type) != record[3] {
			return nil, fmt.Errorf("row %d: type %q does not match slot code %q",
				row, record[3], record[2])
		}

		var players []string
		for _, p := range strings.Split(record[4], ";") {
			if p = strings.TrimSpace(p); p != "" {
				players = append(players, p)
			}
		}

		entry := Entry{Date: date, Code: code, Players: players}
		if err := store.Add(entry); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
	}

	return store, nil
}

// WriteCSV renders the store in the persisted record shape, in commit order.
func WriteCSV(w io.Writer, s *Store) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, e := range s.Entries() {
		record := []string{
			e.Date.Format("2006-01-02"),
			e.Weekday().String(),
			e.Code.String(),
			string(e.Code.Type),
			strings.Join(e.Players, "; "),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// LoadCSVFile reads a schedule CSV from disk. A missing file yields an
// empty store, so a first run needs no prior schedule.
func LoadCSVFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return NewStore(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("opening schedule: %w", err)
	}
	defer f.Close()

	store, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// SaveCSVFile writes the schedule CSV to disk.
func SaveCSVFile(path string, s *Store) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating schedule file: %w", err)
	}
	defer f.Close()

	if err := WriteCSV(f, s); err != nil {
		return fmt.Errorf("writing schedule: %w", err)
	}
	return nil
}
