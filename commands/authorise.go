package commands

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
)

var AuthoriseCmd = Authorise{
	command: command{
		workdir:     DEFAULT_WORKDIR,
		credentials: DEFAULT_CREDENTIALS,
		debug:       false,
	},
}

type Authorise struct {
	command
}

func (cmd *Authorise) Name() string {
	return "authorise"
}

func (cmd *Authorise) Description() string {
	return "Authorises monday-app-drive to upload exports to a Google Drive folder"
}

func (cmd *Authorise) Usage() string {
	return "--credentials <file>"
}

func (cmd *Authorise) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] authorise [options] --credentials <file>\n", APP)
	fmt.Println()
	fmt.Println("  Requests a Google Drive OAuth2 token and caches it for the 'backup' and 'upload' commands")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println(`    monday-app-drive authorise --credentials "credentials.json"`)
	fmt.Println()
}

func (cmd *Authorise) FlagSet() *flag.FlagSet {
	return cmd.flagset("authorise")
}

func (cmd *Authorise) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	// ... check parameters
	if strings.TrimSpace(cmd.credentials) == "" {
		return fmt.Errorf("--credentials is a required option")
	}

	b, err := os.ReadFile(cmd.credentials)
	if err != nil {
		return err
	}

	config, err := google.ConfigFromJSON(b, drive.DriveFileScope)
	if err != nil {
		return err
	}

	// ... request token from the web
	authURL := config.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("Go to the following link in your browser then type the authorization code:\n%v\n", authURL)

	var code string
	if _, err := fmt.Scan(&code); err != nil {
		return fmt.Errorf("unable to read authorization code (%v)", err)
	}

	token, err := config.Exchange(context.TODO(), code)
	if err != nil {
		return fmt.Errorf("unable to retrieve token from web (%v)", err)
	}

	tokens := tokenPath(cmd.credentials, filepath.Join(cmd.workdir, ".google"))
	if err := saveToken(tokens, token); err != nil {
		return fmt.Errorf("unable to cache OAuth2 token (%v)", err)
	}

	infof("Stored Google Drive token in %s", tokens)

	return nil
}
