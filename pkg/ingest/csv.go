package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultFeedbackColumn is the column read by LoadFeedbackCSV when none is given.
const DefaultFeedbackColumn = "Feedback"

// ErrColumnNotFound is returned when the requested text column is absent from the header.
var ErrColumnNotFound = errors.New("column not found")

// LoadFeedbackCSV returns every non-empty value of column in the CSV file at path.
func LoadFeedbackCSV(path, column string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open feedback csv: %w", err)
	}
	defer f.Close()

	feedback, err := ReadFeedbackCSV(f, column)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return feedback, nil
}

// ReadFeedbackCSV reads a CSV stream and returns the trimmed, non-empty values
// of column. The column is matched case-insensitively and the delimiter is
// sniffed from the header line (comma, tab or semicolon).
func ReadFeedbackCSV(r io.Reader, column string) ([]string, error) {
	if column == "" {
		column = DefaultFeedbackColumn
	}

	br := bufio.NewReader(r)
	head, err := br.Peek(4096)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}

	reader := csv.NewReader(br)
	reader.Comma = sniffDelimiter(string(head))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: %q (empty file)", ErrColumnNotFound, column)
		}
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	col := -1
	for i, name := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")), column) {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q (available columns: %v)", ErrColumnNotFound, column, header)
	}

	var feedback []string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if col >= len(record) {
			continue
		}
		if text := strings.TrimSpace(record[col]); text != "" {
			feedback = append(feedback, text)
		}
	}
	return feedback, nil
}

// sniffDelimiter picks the candidate delimiter that occurs most often in the first line.
func sniffDelimiter(sample string) rune {
	line, _, _ := strings.Cut(sample, "\n")
	best, bestCount := ',', 0
	for _, d := range []rune{',', '\t', ';'} {
		if c := strings.Count(line, string(d)); c > bestCount {
			best, bestCount = d, c
		}
	}
	return best
}
