// Package remote implements the task-service collaborator: one fetch
// of all raw task records, one completion call. Authentication uses a
// previously acquired token; acquiring one is not this client's job.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"tickdeck/internal/auth"
	"tickdeck/internal/config"
	"tickdeck/internal/normalize"
)

// ErrRemoteCall wraps every transport failure, timeout, and
// non-success status. The completion coordinator treats them all the
// same: rollback.
var ErrRemoteCall = errors.New("remote call failed")

const (
	fetchPath       = "/api/v2/batch/check/0"
	completePathFmt = "/open/v1/project/%s/task/%s/complete"
)

// Client talks to the TickTick-shaped API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	deviceID   string
}

// New builds a client from the stored credential.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	mgr, err := auth.NewManager(cfg)
	if err != nil {
		return nil, err
	}
	token, err := mgr.Token()
	if err != nil {
		return nil, fmt.Errorf("load credential: %w (run `tickdeck auth login` first)", err)
	}

	return &Client{
		baseURL:    cfg.APIBaseURL,
		httpClient: oauth2.NewClient(ctx, oauth2.StaticTokenSource(token)),
		timeout:    cfg.RequestTimeout(),
		deviceID:   uuid.New().String(),
	}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for
// testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		timeout:    timeout,
		deviceID:   uuid.New().String(),
	}
}

// FetchActiveTasks pulls the full task set and returns the raw records
// found under syncTaskBean.update, untouched. Filtering and typing are
// the normalizer's job.
func (c *Client) FetchActiveTasks(ctx context.Context) ([]normalize.RawRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fetchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build fetch request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w: %v", ErrRemoteCall, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch tasks: %w: unexpected status %s", ErrRemoteCall, resp.Status)
	}

	var envelope struct {
		SyncTaskBean struct {
			Update []normalize.RawRecord `json:"update"`
		} `json:"syncTaskBean"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("fetch tasks: %w: decode response: %v", ErrRemoteCall, err)
	}
	return envelope.SyncTaskBean.Update, nil
}

// CompleteTask marks one task complete. A task is addressed by project
// and task id, as the service requires both.
func (c *Client) CompleteTask(ctx context.Context, projectID, taskID string) error {
	if projectID == "" || taskID == "" {
		return fmt.Errorf("complete task: project id and task id are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url := c.baseURL + fmt.Sprintf(completePathFmt, projectID, taskID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return fmt.Errorf("build complete request: %w", err)
	}
	c.decorate(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("complete task %s: %w: %v", taskID, ErrRemoteCall, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("complete task %s: %w: unexpected status %s", taskID, ErrRemoteCall, resp.Status)
	}
	return nil
}

func (c *Client) decorate(req *http.Request) {
	req.Header.Set("User-Agent", "tickdeck")
	req.Header.Set("X-Device-Id", c.deviceID)
}
