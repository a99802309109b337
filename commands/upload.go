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
)

var UploadCmd = Upload{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},

	folder:  "",
	file:    "",
	retries: 3,
	backoff: 1 * time.Second,
}

type Upload struct {
	command
	folder  string
	file    string
	retries int
	backoff time.Duration
}

func (cmd *Upload) Name() string {
	return "upload"
}

func (cmd *Upload) Description() string {
	return "Uploads a local CSV file to the Google Drive folder"
}

func (cmd *Upload) Usage() string {
	return "--folder <folder> --file <file>"
}

func (cmd *Upload) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] upload [options] --folder <folder> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Uploads a local CSV file to the Google Drive folder - typically a retained export from a")
	fmt.Println("  'backup' run with a failed upload")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    monday-app-drive upload --folder "1u3qPK..." --file "SalesQ1.csv"`)
	fmt.Println()
}

func (cmd *Upload) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("upload")

	flagset.StringVar(&cmd.folder, "folder", cmd.folder, "Google Drive folder ID. Defaults to the GDRIVE_FOLDER_ID environment variable")
	flagset.StringVar(&cmd.file, "file", cmd.file, "CSV file to upload")

	return flagset
}

func (cmd *Upload) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.folder) == "" {
		cmd.folder = os.Getenv("GDRIVE_FOLDER_ID")
	}

	if strings.TrimSpace(cmd.credentials) == "" {
		cmd.credentials = os.Getenv("GOOGLE_CREDENTIALS")
	}

	if strings.TrimSpace(cmd.folder) == "" {
		return fmt.Errorf("missing Google Drive folder ID - set GDRIVE_FOLDER_ID or use --folder")
	}

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	b, err := os.ReadFile(cmd.file)
	if err != nil {
		return err
	}

	ctx := context.Background()

	uploader, err := gdrive(ctx, cmd.credentials, cmd.workdir, cmd.folder)
	if err != nil {
		return err
	}

	name := filepath.Base(cmd.file)
	fileID := ""

	err = retry(ctx, cmd.retries, cmd.backoff, func() error {
		id, err := uploader.Upload(ctx, name, bytes.NewReader(b))
		if err != nil {
			return err
		}

		fileID = id

		return nil
	})

	if err != nil {
		return fmt.Errorf("error uploading %v to Google Drive (%v)", cmd.file, err)
	}

	infof("Uploaded %v to Google Drive (file ID %v)", cmd.file, fileID)

	return nil
}
