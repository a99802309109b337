package monday

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const APIURL = "https://api.monday.com/v2"

const (
	DEFAULT_TIMEOUT = 60 * time.Second

	boardsLimit = 500
)

// Boards is the capability set required to read boards from monday.com.
type Boards interface {
	ListBoards(ctx context.Context) ([]Board, error)
	Columns(ctx context.Context, boardID string) ([]Column, error)
	ItemsPage(ctx context.Context, boardID string, limit int, cursor string) ([]Item, string, error)
}

// APIError is an error payload embedded in an otherwise-200 monday.com
// response. API errors are not transient and are never retried.
type APIError struct {
	Messages []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("monday.com API error (%v)", strings.Join(e.Messages, "; "))
}

type Client struct {
	URL string

	token   string
	client  *http.Client
	retries int
	backoff time.Duration
}

func NewClient(token string) *Client {
	return &Client{
		URL:   APIURL,
		token: token,
		client: &http.Client{
			Timeout: DEFAULT_TIMEOUT,
		},
		retries: 3,
		backoff: 1 * time.Second,
	}
}

// ListBoards retrieves the full set of boards on the account, capped at the
// API query limit.
func (c *Client) ListBoards(ctx context.Context) ([]Board, error) {
	query := fmt.Sprintf(`{ boards(limit: %d) { id name } }`, boardsLimit)

	data, err := c.post(ctx, query)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Boards []Board `json:"boards"`
	}

	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("invalid boards list (%v)", err)
	}

	return reply.Boards, nil
}

// Columns retrieves the column definitions for a board.
func (c *Client) Columns(ctx context.Context, boardID string) ([]Column, error) {
	query := fmt.Sprintf(`{ boards(ids: %s) { columns { id title } } }`, boardID)

	data, err := c.post(ctx, query)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Boards []struct {
			Columns []Column `json:"columns"`
		} `json:"boards"`
	}

	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, fmt.Errorf("invalid columns list (%v)", err)
	}

	if len(reply.Boards) == 0 {
		return nil, fmt.Errorf("no such board (ID:%v)", boardID)
	}

	return reply.Boards[0].Columns, nil
}

// ItemsPage retrieves a single page of items for a board. An empty cursor
// requests the first page; the returned cursor is empty on the last page.
func (c *Client) ItemsPage(ctx context.Context, boardID string, limit int, cursor string) ([]Item, string, error) {
	type page struct {
		Cursor string `json:"cursor"`
		Items  []Item `json:"items"`
	}

	if cursor == "" {
		query := fmt.Sprintf(`{ boards(ids: %s) { items_page(limit: %d) { cursor items { id name column_values { id text } } } } }`, boardID, limit)

		data, err := c.post(ctx, query)
		if err != nil {
			return nil, "", err
		}

		var reply struct {
			Boards []struct {
				Page page `json:"items_page"`
			} `json:"boards"`
		}

		if err := json.Unmarshal(data, &reply); err != nil {
			return nil, "", fmt.Errorf("invalid items page (%v)", err)
		}

		if len(reply.Boards) == 0 {
			return nil, "", fmt.Errorf("no such board (ID:%v)", boardID)
		}

		return reply.Boards[0].Page.Items, reply.Boards[0].Page.Cursor, nil
	}

	query := fmt.Sprintf(`{ next_items_page(limit: %d, cursor: %q) { cursor items { id name column_values { id text } } } }`, limit, cursor)

	data, err := c.post(ctx, query)
	if err != nil {
		return nil, "", err
	}

	var reply struct {
		Page page `json:"next_items_page"`
	}

	if err := json.Unmarshal(data, &reply); err != nil {
		return nil, "", fmt.Errorf("invalid items page (%v)", err)
	}

	return reply.Page.Items, reply.Page.Cursor, nil
}

// post executes a GraphQL query, retrying transport and server errors with a
// doubling backoff. API errors embedded in a 200 response fail immediately.
func (c *Client) post(ctx context.Context, query string) (json.RawMessage, error) {
	body, err := json.Marshal(map[string]string{"query": query})
	if err != nil {
		return nil, err
	}

	var last error

	delay := c.backoff
	for attempt := 0; attempt < c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}

			delay *= 2
		}

		data, err := c.exec(ctx, body)
		if err == nil {
			return data, nil
		}

		var apierr *APIError
		if errors.As(err, &apierr) {
			return nil, err
		}

		last = err
	}

	return nil, last
}

func (c *Client) exec(ctx context.Context, body []byte) (json.RawMessage, error) {
	rq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	rq.Header.Set("Authorization", c.token)
	rq.Header.Set("Content-Type", "application/json")

	response, err := c.client.Do(rq)
	if err != nil {
		return nil, err
	}

	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("monday.com API returned status %v", response.StatusCode)
	}

	b, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}

	var reply struct {
		Data   json.RawMessage `json:"data"`
		Errors []struct {
			Message string `json:"message"`
		} `json:"errors"`
	}

	if err := json.Unmarshal(b, &reply); err != nil {
		return nil, fmt.Errorf("invalid monday.com API response (%v)", err)
	}

	if len(reply.Errors) > 0 {
		messages := []string{}
		for _, e := range reply.Errors {
			messages = append(messages, e.Message)
		}

		return nil, &APIError{Messages: messages}
	}

	return reply.Data, nil
}
