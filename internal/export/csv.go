package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/dgallion1/pyqbook/internal/paper"
)

// WriteCSV writes every question, assigned or not, one row each.
func WriteCSV(w io.Writer, questions []paper.Question) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, q := range questions {
		if err := cw.Write(row(q)); err != nil {
			return fmt.Errorf("write csv row %d: %w", q.Number, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadCSV loads questions from a CSV written by WriteCSV.
func ReadCSV(r io.Reader) ([]paper.Question, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return decode(records)
}
