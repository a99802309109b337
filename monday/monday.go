package monday

import (
	"encoding/json"
)

// ID is a monday.com object identifier. The API historically returned numeric
// IDs and currently returns strings - both decode to the string form.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}

	*id = ID(n.String())

	return nil
}

// Board is a top-level monday.com container, roughly a spreadsheet of items.
type Board struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Column is a board column definition, used to label item values by title.
type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ColumnValue is a single cell's data for one item under one column.
type ColumnValue struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Item is a single record on a board. One item produces one export row.
type Item struct {
	ID           ID            `json:"id"`
	Name         string        `json:"name"`
	ColumnValues []ColumnValue `json:"column_values"`
}
