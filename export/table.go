package export

import (
	"regexp"
	"strings"

	"github.com/mondaytools/monday-app-drive/monday"
)

// Fixed leading columns for every export.
const (
	ItemID   = "Item ID"
	ItemName = "Item Name"
)

var illegal = regexp.MustCompile(`[\\/*?:"<>|]`)

// Row is a single item flattened to a label→value mapping, preserving the
// order in which labels were first set.
type Row struct {
	keys   []string
	values map[string]string
}

func NewRow() *Row {
	return &Row{
		keys:   []string{},
		values: map[string]string{},
	}
}

func (r *Row) Set(key, value string) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}

	r.values[key] = value
}

func (r *Row) Get(key string) (string, bool) {
	v, ok := r.values[key]

	return v, ok
}

// Table is a rectangular snapshot of a set of rows - the header is the union
// of the row keys in order of first occurrence and cells for keys absent from
// a row are empty strings.
type Table struct {
	Header  []string
	Records [][]string
}

// Flatten converts a board's items to rows - each row is seeded with the item
// ID and name and then carries one label per column value. A column ID absent
// from the titles map labels the value with the raw ID.
func Flatten(items []monday.Item, titles map[string]string) []*Row {
	rows := make([]*Row, 0, len(items))

	for _, item := range items {
		row := NewRow()
		row.Set(ItemID, string(item.ID))
		row.Set(ItemName, clean(item.Name))

		for _, v := range item.ColumnValues {
			label := v.ID
			if title, ok := titles[v.ID]; ok {
				label = title
			}

			row.Set(label, v.Text)
		}

		rows = append(rows, row)
	}

	return rows
}

// MakeTable consolidates rows with (possibly) heterogeneous key sets into a
// table. The header always leads with the item ID and name columns, so a
// board with zero items still produces a valid (if empty) export.
func MakeTable(rows []*Row) *Table {
	header := []string{ItemID, ItemName}
	seen := map[string]bool{
		ItemID:   true,
		ItemName: true,
	}

	for _, row := range rows {
		for _, k := range row.keys {
			if !seen[k] {
				seen[k] = true
				header = append(header, k)
			}
		}
	}

	records := make([][]string, len(rows))
	for i, row := range rows {
		record := make([]string, len(header))
		for j, k := range header {
			record[j] = row.values[k]
		}

		records[i] = record
	}

	return &Table{
		Header:  header,
		Records: records,
	}
}

// Sanitize strips the characters that are illegal in filenames on common
// platforms from a board name. Sanitizing an already clean name is a no-op.
func Sanitize(name string) string {
	return illegal.ReplaceAllString(name, "")
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
