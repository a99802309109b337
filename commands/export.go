package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mondaytools/monday-app-drive/monday"
)

var ExportCmd = Export{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},

	token:    "",
	board:    "",
	file:     "",
	pageSize: 100,
}

type Export struct {
	command
	token    string
	board    string
	file     string
	pageSize int
}

func (cmd *Export) Name() string {
	return "export"
}

func (cmd *Export) Description() string {
	return "Exports a single monday.com board to a local CSV file"
}

func (cmd *Export) Usage() string {
	return "--token <token> --board <ID> --file <file>"
}

func (cmd *Export) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] export [options] --token <token> --board <ID> --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Exports a monday.com board to a local CSV file without uploading it")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    monday-app-drive export --token "eyJhbG..." --board 1234567890 --file "sales.csv"`)
	fmt.Println()
}

func (cmd *Export) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("export")

	flagset.StringVar(&cmd.token, "token", cmd.token, "monday.com API token. Defaults to the MONDAY_API_KEY environment variable")
	flagset.StringVar(&cmd.board, "board", cmd.board, "monday.com board ID")
	flagset.StringVar(&cmd.file, "file", cmd.file, "CSV file name. Defaults to 'board-<ID>.csv'")

	return flagset
}

func (cmd *Export) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.token) == "" {
		cmd.token = os.Getenv("MONDAY_API_KEY")
	}

	if strings.TrimSpace(cmd.token) == "" {
		return fmt.Errorf("missing monday.com API token - set MONDAY_API_KEY or use --token")
	}

	if ok := regexp.MustCompile(`^[0-9]+$`).MatchString(strings.TrimSpace(cmd.board)); !ok {
		return fmt.Errorf("invalid board ID '%s' - expected a numeric monday.com board ID", cmd.board)
	}

	board := strings.TrimSpace(cmd.board)
	file := cmd.file
	if strings.TrimSpace(file) == "" {
		file = fmt.Sprintf("board-%s.csv", board)
	}

	ctx := context.Background()
	boards := monday.NewClient(cmd.token)

	table, err := exportBoard(ctx, boards, board, cmd.pageSize)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(os.TempDir(), "monday")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := table.ToCSV(tmp); err != nil {
		return fmt.Errorf("error creating CSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), file); err != nil {
		return err
	}

	infof("Exported board %v to file %v (%v rows)", board, file, len(table.Records))

	return nil
}
