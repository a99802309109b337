package export

import (
	"encoding/csv"
	"io"
)

// BOM is the UTF-8 byte order mark prefixed to every export for spreadsheet
// tool compatibility.
const BOM = "\ufeff"

// ToCSV serializes the table as BOM-prefixed UTF-8 CSV.
func (t *Table) ToCSV(f io.Writer) error {
	if _, err := io.WriteString(f, BOM); err != nil {
		return err
	}

	w := csv.NewWriter(f)

	if err := w.Write(t.Header); err != nil {
		return err
	}

	for _, record := range t.Records {
		if err := w.Write(record); err != nil {
			return err
		}
	}

	w.Flush()

	return w.Error()
}
