package commands

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/net/context"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

func authorize(credentials, scope, workdir string) (*http.Client, error) {
	b, err := os.ReadFile(credentials)
	if err != nil {
		return nil, err
	}

	config, err := google.ConfigFromJSON(b, scope)
	if err != nil {
		return nil, err
	}

	tokens := tokenPath(credentials, workdir)

	token, err := tokenFromFile(tokens)
	if err != nil {
		return nil, fmt.Errorf("no cached token at %s - run '%s authorise' first (%v)", tokens, APP, err)
	}

	return config.Client(context.Background(), token), nil
}

// tokenPath derives the cached token file path from the credentials file
// name e.g. credentials.json -> <workdir>/credentials.drive
func tokenPath(credentials, workdir string) string {
	_, file := filepath.Split(credentials)
	name := strings.TrimSuffix(file, filepath.Ext(file))

	return filepath.Join(workdir, fmt.Sprintf("%s.drive", name))
}

// Retrieves a token from a local file.
func tokenFromFile(file string) (*oauth2.Token, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer f.Close()

	token := &oauth2.Token{}
	err = json.NewDecoder(f).Decode(token)

	return token, err
}

// Saves a token to a file path.
func saveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0770); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}

	defer f.Close()

	return json.NewEncoder(f).Encode(token)
}
