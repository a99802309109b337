package commands

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mondaytools/monday-app-drive/export"
	"github.com/mondaytools/monday-app-drive/monday"
)

var BackupCmd = Backup{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},

	token:    "",
	folder:   "",
	pageSize: 100,
	retries:  3,
	backoff:  1 * time.Second,
}

type Backup struct {
	command
	token    string
	folder   string
	pageSize int
	retries  int
	backoff  time.Duration
}

func (cmd *Backup) Name() string {
	return "backup"
}

func (cmd *Backup) Description() string {
	return "Exports all boards on the monday.com account and archives them to a Google Drive folder"
}

func (cmd *Backup) Usage() string {
	return "--token <token> --folder <folder>"
}

func (cmd *Backup) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] backup [options] --token <token> --folder <folder>\n", APP)
	fmt.Println()
	fmt.Println("  Exports every board on the account to a CSV file and uploads it to the Google Drive folder,")
	fmt.Println("  deleting the local file once the upload has succeeded. Boards that cannot be exported are")
	fmt.Println("  skipped and reported; exports that cannot be uploaded are retained under the working directory")
	fmt.Println("  for manual resend with the 'upload' command.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    monday-app-drive backup --token "eyJhbG..." --folder "1u3qPK..."`)
	fmt.Println()
	fmt.Println(`    MONDAY_API_KEY="eyJhbG..." GDRIVE_FOLDER_ID="1u3qPK..." monday-app-drive --debug backup`)
	fmt.Println()
}

func (cmd *Backup) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("backup")

	flagset.StringVar(&cmd.token, "token", cmd.token, "monday.com API token. Defaults to the MONDAY_API_KEY environment variable")
	flagset.StringVar(&cmd.folder, "folder", cmd.folder, "Google Drive folder ID. Defaults to the GDRIVE_FOLDER_ID environment variable")

	return flagset
}

func (cmd *Backup) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.token) == "" {
		cmd.token = os.Getenv("MONDAY_API_KEY")
	}

	if strings.TrimSpace(cmd.folder) == "" {
		cmd.folder = os.Getenv("GDRIVE_FOLDER_ID")
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		cmd.credentials = os.Getenv("GOOGLE_CREDENTIALS")
	}

	if strings.TrimSpace(cmd.token) == "" {
		return fmt.Errorf("missing monday.com API token - set MONDAY_API_KEY or use --token")
	}

	if strings.TrimSpace(cmd.folder) == "" {
		return fmt.Errorf("missing Google Drive folder ID - set GDRIVE_FOLDER_ID or use --folder")
	}

	ctx := context.Background()

	// ... authorise
	uploader, err := gdrive(ctx, cmd.credentials, cmd.workdir, cmd.folder)
	if err != nil {
		return err
	}

	boards := monday.NewClient(cmd.token)

	return cmd.run(ctx, boards, uploader)
}

func (cmd *Backup) run(ctx context.Context, api monday.Boards, uploader Uploader) error {
	list, err := api.ListBoards(ctx)
	if err != nil {
		return fmt.Errorf("unable to list monday.com boards (%v)", err)
	}

	infof("Found %v boards", len(list))

	failed := 0
	for _, board := range list {
		infof("Processing board '%v' (ID:%v)", board.Name, board.ID)

		table, err := exportBoard(ctx, api, string(board.ID), cmd.pageSize)
		if err != nil {
			warnf("Skipping board '%v' (%v)", board.Name, err)
			failed++
			continue
		}

		if cmd.debug {
			debugf("Board %v - rows:%v  columns:%v", board.ID, len(table.Records), len(table.Header))
		}

		if err := cmd.archive(ctx, uploader, board.Name, table); err != nil {
			warnf("Error archiving board '%v' (%v)", board.Name, err)
			failed++
			continue
		}
	}

	if failed > 0 {
		return fmt.Errorf("%v of %v boards were not archived", failed, len(list))
	}

	return nil
}

// exportBoard fetches the column titles and all items for a board and
// flattens them into a table. Any error aborts the board - partial results
// are discarded, never exported.
func exportBoard(ctx context.Context, api monday.Boards, boardID string, pageSize int) (*export.Table, error) {
	columns, err := api.Columns(ctx, boardID)
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve columns (%v)", err)
	}

	titles := map[string]string{}
	for _, column := range columns {
		titles[column.ID] = column.Title
	}

	items := []monday.Item{}
	cursor := ""

	for {
		page, next, err := api.ItemsPage(ctx, boardID, pageSize, cursor)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve items (%v)", err)
		}

		items = append(items, page...)

		if len(page) == 0 || next == "" {
			break
		}

		cursor = next
	}

	return export.MakeTable(export.Flatten(items, titles)), nil
}

// archive writes the table to a local CSV file, uploads it to the Google
// Drive folder and removes the local file. The file is removed only after a
// successful upload - failed uploads are retained for manual resend.
func (cmd *Backup) archive(ctx context.Context, uploader Uploader, boardName string, table *export.Table) error {
	filename := export.Sanitize(boardName) + ".csv"

	var b bytes.Buffer
	if err := table.ToCSV(&b); err != nil {
		return fmt.Errorf("error creating CSV (%v)", err)
	}

	dir := filepath.Join(cmd.workdir, "exports")
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	file := filepath.Join(dir, filename)
	if err := os.WriteFile(file, b.Bytes(), 0660); err != nil {
		return err
	}

	infof("Created CSV file %v with %v rows", file, len(table.Records))

	err := retry(ctx, cmd.retries, cmd.backoff, func() error {
		if _, err := uploader.Upload(ctx, filename, bytes.NewReader(b.Bytes())); err != nil {
			return err
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("upload failed - export retained at %v (%v)", file, err)
	}

	infof("Uploaded %v to Google Drive", filename)

	return os.Remove(file)
}
