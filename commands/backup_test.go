package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mondaytools/monday-app-drive/monday"
)

type page struct {
	items  []monday.Item
	cursor string
}

type stub struct {
	boards    []monday.Board
	listErr   error
	columns   map[string][]monday.Column
	columnErr map[string]error
	pages     map[string][]page

	exports  map[string]int
	requests map[string]int
}

func (s *stub) ListBoards(ctx context.Context) ([]monday.Board, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}

	return s.boards, nil
}

func (s *stub) Columns(ctx context.Context, boardID string) ([]monday.Column, error) {
	s.exports[boardID]++

	if err := s.columnErr[boardID]; err != nil {
		return nil, err
	}

	return s.columns[boardID], nil
}

func (s *stub) ItemsPage(ctx context.Context, boardID string, limit int, cursor string) ([]monday.Item, string, error) {
	n := s.requests[boardID]
	s.requests[boardID]++

	pages := s.pages[boardID]
	if n >= len(pages) {
		return nil, "", fmt.Errorf("no page %v for board %v", n, boardID)
	}

	return pages[n].items, pages[n].cursor, nil
}

type uploads struct {
	files    map[string]string
	failures int
}

func (u *uploads) Upload(ctx context.Context, name string, f io.Reader) (string, error) {
	if u.failures > 0 {
		u.failures--
		return "", fmt.Errorf("upload failed")
	}

	b, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	u.files[name] = string(b)

	return "file-id", nil
}

func backup(workdir string) Backup {
	return Backup{
		command: command{
			workdir: workdir,
		},

		pageSize: 100,
		retries:  1,
		backoff:  1 * time.Millisecond,
	}
}

func item(id, name string, values ...monday.ColumnValue) monday.Item {
	return monday.Item{
		ID:           monday.ID(id),
		Name:         name,
		ColumnValues: values,
	}
}

func TestBackupProcessesEveryBoard(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales/Q1"},
			{ID: "2", Name: "Broken"},
			{ID: "3", Name: "Ops"},
		},
		columns: map[string][]monday.Column{
			"1": {{ID: "status", Title: "Status"}},
			"3": {},
		},
		columnErr: map[string]error{
			"2": fmt.Errorf("API error"),
		},
		pages: map[string][]page{
			"1": {{items: []monday.Item{item("11", "Deal A", monday.ColumnValue{ID: "status", Text: "Won"})}, cursor: ""}},
			"3": {{items: []monday.Item{}, cursor: ""}},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	cmd := backup(t.TempDir())

	err := cmd.run(context.Background(), &api, &uploader)
	if err == nil {
		t.Fatalf("Expected error return for partially failed run, got %v", err)
	}

	for _, board := range api.boards {
		if n := api.exports[string(board.ID)]; n != 1 {
			t.Errorf("Board %v was exported %v times - expected exactly once", board.ID, n)
		}
	}

	if _, ok := uploader.files["SalesQ1.csv"]; !ok {
		t.Errorf("Expected 'SalesQ1.csv' to be uploaded, got %v", uploader.files)
	}

	if _, ok := uploader.files["Ops.csv"]; !ok {
		t.Errorf("Expected 'Ops.csv' to be uploaded, got %v", uploader.files)
	}

	if _, ok := uploader.files["Broken.csv"]; ok {
		t.Errorf("Failed board should never reach the archiver, got %v", uploader.files)
	}
}

func TestBackupPaginatesUntilCursorIsExhausted(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales"},
		},
		columns: map[string][]monday.Column{
			"1": {{ID: "status", Title: "Status"}},
		},
		columnErr: map[string]error{},
		pages: map[string][]page{
			"1": {
				{items: []monday.Item{item("11", "Deal A"), item("12", "Deal B")}, cursor: "c1"},
				{items: []monday.Item{item("13", "Deal C")}, cursor: ""},
			},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	cmd := backup(t.TempDir())

	if err := cmd.run(context.Background(), &api, &uploader); err != nil {
		t.Fatalf("Unexpected error returned from run (%v)", err)
	}

	if api.requests["1"] != 2 {
		t.Errorf("Incorrect number of item page requests\n   expected: %v\n   got:      %v\n", 2, api.requests["1"])
	}

	csv := uploader.files["Sales.csv"]
	for _, name := range []string{"Deal A", "Deal B", "Deal C"} {
		if !strings.Contains(csv, name) {
			t.Errorf("Uploaded CSV is missing item '%s'\n   got: %q\n", name, csv)
		}
	}
}

func TestBackupStopsOnEmptyPage(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales"},
		},
		columns: map[string][]monday.Column{
			"1": {},
		},
		columnErr: map[string]error{},
		pages: map[string][]page{
			"1": {
				{items: []monday.Item{item("11", "Deal A")}, cursor: "c1"},
				{items: []monday.Item{}, cursor: "c2"},
			},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	cmd := backup(t.TempDir())

	if err := cmd.run(context.Background(), &api, &uploader); err != nil {
		t.Fatalf("Unexpected error returned from run (%v)", err)
	}

	if api.requests["1"] != 2 {
		t.Errorf("Pagination did not stop on the empty page\n   expected: %v requests\n   got:      %v requests\n", 2, api.requests["1"])
	}

	if !strings.Contains(uploader.files["Sales.csv"], "Deal A") {
		t.Errorf("Uploaded CSV dropped the last non-empty page\n   got: %q\n", uploader.files["Sales.csv"])
	}
}

func TestBackupAbortsBoardOnPaginationError(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales"},
		},
		columns: map[string][]monday.Column{
			"1": {},
		},
		columnErr: map[string]error{},
		pages: map[string][]page{
			"1": {
				{items: []monday.Item{item("11", "Deal A")}, cursor: "c1"},
			},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	cmd := backup(t.TempDir())

	if err := cmd.run(context.Background(), &api, &uploader); err == nil {
		t.Fatalf("Expected error return for failed pagination, got %v", err)
	}

	if len(uploader.files) != 0 {
		t.Errorf("Partial results should be discarded, got %v", uploader.files)
	}
}

func TestBackupRemovesExportAfterUpload(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales"},
		},
		columns: map[string][]monday.Column{
			"1": {},
		},
		columnErr: map[string]error{},
		pages: map[string][]page{
			"1": {{items: []monday.Item{item("11", "Deal A")}, cursor: ""}},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	workdir := t.TempDir()
	cmd := backup(workdir)

	if err := cmd.run(context.Background(), &api, &uploader); err != nil {
		t.Fatalf("Unexpected error returned from run (%v)", err)
	}

	file := filepath.Join(workdir, "exports", "Sales.csv")
	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Errorf("Local export was not removed after a successful upload (%v)", file)
	}
}

func TestBackupRetainsExportWhenUploadFails(t *testing.T) {
	api := stub{
		boards: []monday.Board{
			{ID: "1", Name: "Sales"},
			{ID: "2", Name: "Ops"},
		},
		columns: map[string][]monday.Column{
			"1": {},
			"2": {},
		},
		columnErr: map[string]error{},
		pages: map[string][]page{
			"1": {{items: []monday.Item{item("11", "Deal A")}, cursor: ""}},
			"2": {{items: []monday.Item{item("21", "Task X")}, cursor: ""}},
		},
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}, failures: 1}

	workdir := t.TempDir()
	cmd := backup(workdir)

	err := cmd.run(context.Background(), &api, &uploader)
	if err == nil {
		t.Fatalf("Expected error return for failed upload, got %v", err)
	}

	file := filepath.Join(workdir, "exports", "Sales.csv")
	if _, err := os.Stat(file); err != nil {
		t.Errorf("Failed upload should retain the local export (%v)", err)
	}

	if _, ok := uploader.files["Ops.csv"]; !ok {
		t.Errorf("A failed upload should not abort the run, got %v", uploader.files)
	}
}

func TestBackupWithBoardListError(t *testing.T) {
	api := stub{
		listErr:  fmt.Errorf("network error"),
		exports:  map[string]int{},
		requests: map[string]int{},
	}

	uploader := uploads{files: map[string]string{}}

	cmd := backup(t.TempDir())

	if err := cmd.run(context.Background(), &api, &uploader); err == nil {
		t.Fatalf("Expected error return for failed board list, got %v", err)
	}
}

