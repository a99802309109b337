package commands

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Uploader is the capability required by the archiver to store an export.
type Uploader interface {
	Upload(ctx context.Context, name string, f io.Reader) (string, error)
}

// folder uploads files to a fixed Google Drive folder.
type folder struct {
	service *drive.Service
	id      string
}

// gdrive creates a Drive client for the destination folder. With a
// credentials file the OAuth2 token cached by 'authorise' is used; without
// one, credentials are discovered from the environment.
func gdrive(ctx context.Context, credentials, workdir, folderID string) (*folder, error) {
	var opts []option.ClientOption

	if credentials != "" {
		client, err := authorize(credentials, drive.DriveFileScope, filepath.Join(workdir, ".google"))
		if err != nil {
			return nil, fmt.Errorf("Google Drive authentication/authorization error (%v)", err)
		}

		opts = append(opts, option.WithHTTPClient(client))
	} else {
		discovered, err := google.FindDefaultCredentials(ctx, drive.DriveFileScope)
		if err != nil {
			return nil, fmt.Errorf("unable to discover Google application default credentials (%v)", err)
		}

		opts = append(opts, option.WithCredentials(discovered))
	}

	service, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create new Google Drive client (%v)", err)
	}

	return &folder{
		service: service,
		id:      folderID,
	}, nil
}

func (g *folder) Upload(ctx context.Context, name string, f io.Reader) (string, error) {
	metadata := drive.File{
		Name:    name,
		Parents: []string{g.id},
	}

	file, err := g.service.Files.Create(&metadata).
		Media(f, googleapi.ContentType("text/csv")).
		Fields("id").
		Context(ctx).
		Do()

	if err != nil {
		return "", err
	}

	return file.Id, nil
}
