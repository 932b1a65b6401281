package reps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/2beens/weeklyreps/internal/challenge"
)

// Header is the column layout shared by the spreadsheet and the CSV mirror.
var Header = []string{"name", "exercise", "reps", "date", "week_index"}

// RecordToRow formats a record the way it is stored, in Header column order.
func RecordToRow(r challenge.LogRecord) []string {
	return []string{
		r.Person,
		challenge.NormalizeExercise(r.Exercise),
		strconv.Itoa(r.Reps),
		r.Date(),
		strconv.Itoa(r.WeekIndex),
	}
}

func isHeaderRow(cells []string) bool {
	return len(cells) >= 2 &&
		strings.EqualFold(strings.TrimSpace(cells[0]), Header[0]) &&
		strings.EqualFold(strings.TrimSpace(cells[1]), Header[1])
}

// rowToRecord parses a stored row. Values that parse but are invalid (e.g. negative reps)
// are returned as is, it is up to the evaluation to skip them.
func rowToRecord(cells []string) (challenge.LogRecord, error) {
	if len(cells) < len(Header) {
		return challenge.LogRecord{}, fmt.Errorf("%w: expected %d cells, got %d", ErrMalformedRow, len(Header), len(cells))
	}

	reps, err := parseWholeNumber(cells[2])
	if err != nil {
		return challenge.LogRecord{}, fmt.Errorf("%w: reps: %s", ErrMalformedRow, err)
	}

	occurredOn, err := challenge.ParseDate(strings.TrimSpace(cells[3]))
	if err != nil {
		return challenge.LogRecord{}, fmt.Errorf("%w: %s", ErrMalformedRow, err)
	}

	week, err := parseWholeNumber(cells[4])
	if err != nil {
		return challenge.LogRecord{}, fmt.Errorf("%w: week index: %s", ErrMalformedRow, err)
	}

	return challenge.LogRecord{
		Person:     strings.TrimSpace(cells[0]),
		Exercise:   challenge.NormalizeExercise(cells[1]),
		Reps:       reps,
		OccurredOn: occurredOn,
		WeekIndex:  week,
	}, nil
}

// maxCellNumber bounds numeric cells to what a float64 holds exactly.
const maxCellNumber = 1 << 53

// parseWholeNumber accepts "120" and also "120.0", which spreadsheets like to produce.
func parseWholeNumber(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: [%s]", s)
	}
	if math.IsInf(f, 0) || math.Abs(f) > maxCellNumber {
		return 0, fmt.Errorf("out of range: [%s]", s)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not a whole number: [%s]", s)
	}
	return int(f), nil
}

// parseRows turns raw rows into records, dropping the header and malformed rows.
// The number of dropped malformed rows is returned as skipped.
func parseRows(rows [][]string) (records []challenge.LogRecord, skipped int) {
	records = make([]challenge.LogRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		r, err := rowToRecord(row)
		if err != nil {
			skipped++
			continue
		}
		records = append(records, r)
	}
	return records, skipped
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
