// Package github implements the remote mirror client on top of the GitHub
// REST API. A mirror stores one file per message under a configured path;
// messages are reconstructed on read by walking the commit history of that
// path and decoding the file content at each commit.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/edgard/commitboard/internal/board"
	errs "github.com/edgard/commitboard/internal/errors"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"

	defaultRecentLimit = 30
	maxPerPage         = 100
)

// Config holds the settings for one mirror repository.
type Config struct {
	BaseURL string
	Token   string
	Owner   string
	Name    string
	Branch  string
	Path    string
	Timeout time.Duration
}

// Client talks to a single mirror repository.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	owner      string
	name       string
	branch     string
	path       string
	log        *slog.Logger
}

// NewClient creates a mirror client for one repository.
func NewClient(cfg Config, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	branch := cfg.Branch
	if branch == "" {
		branch = "main"
	}
	path := strings.Trim(cfg.Path, "/")
	if path == "" {
		path = "messages"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      cfg.Token,
		owner:      cfg.Owner,
		name:       cfg.Name,
		branch:     branch,
		path:       path,
		log:        log.With("component", "github_client", "repository", cfg.Owner+"/"+cfg.Name),
	}
}

// Repo returns the owner/name identifier of the mirror.
func (c *Client) Repo() string {
	return c.owner + "/" + c.name
}

// Publish commits the message content as a new file on the configured branch
// and returns the full commit SHA. The file path embeds a timestamp and the
// correlation id, so sequential writes never collide.
func (c *Client) Publish(ctx context.Context, content, correlationID string) (string, error) {
	now := time.Now().UTC()
	filename := fmt.Sprintf("%s/%s_%s.json", c.path, now.Format("20060102_150405"), correlationID)

	envelope, err := json.Marshal(fileEnvelope{
		ID:        json.Number(correlationID),
		Content:   content,
		Timestamp: now.Format(time.RFC3339),
	})
	if err != nil {
		return "", errs.NewPublishError("failed to encode message file", err)
	}

	reqBody := createFileRequest{
		Message: "Add message " + correlationID,
		Content: base64.StdEncoding.EncodeToString(envelope),
		Branch:  c.branch,
	}

	var resp createFileResponse
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", c.owner, c.name, filename)
	if err := c.doRequest(ctx, http.MethodPut, endpoint, reqBody, &resp); err != nil {
		return "", errs.NewPublishError(fmt.Sprintf("failed to publish message %s to %s", correlationID, c.Repo()), err)
	}
	if resp.Commit.SHA == "" {
		return "", errs.NewPublishError("publish response carried no commit SHA", nil)
	}

	c.log.DebugContext(ctx, "Message published to mirror", "file", filename, "sha", resp.Commit.SHA)
	return resp.Commit.SHA, nil
}

// Recent reconstructs messages from the mirror's commit history, restricted
// to commits touching the storage path and, when since is non-zero, to
// commits at or after since. A message's timestamp is the commit author date
// and its id is the commit SHA. Malformed files are skipped, not fatal.
func (c *Client) Recent(ctx context.Context, since time.Time, limit int) ([]board.Message, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	if limit > maxPerPage {
		limit = maxPerPage
	}

	endpoint := fmt.Sprintf("/repos/%s/%s/commits?sha=%s&path=%s&per_page=%d", c.owner, c.name, c.branch, c.path, limit)
	if !since.IsZero() {
		endpoint += "&since=" + since.UTC().Format(time.RFC3339)
	}

	var commits []commitSummary
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &commits); err != nil {
		return nil, errs.NewFetchError(fmt.Sprintf("failed to list commits for %s", c.Repo()), err)
	}

	var messages []board.Message
	for _, summary := range commits {
		msgs, err := c.messagesFromCommit(ctx, summary)
		if err != nil {
			// A single unreadable commit must not fail the enumeration.
			c.log.WarnContext(ctx, "Skipping unreadable commit", "sha", summary.SHA, "error", err)
			continue
		}
		messages = append(messages, msgs...)
	}

	c.log.DebugContext(ctx, "Reconstructed messages from mirror", "count", len(messages))
	return messages, nil
}

// messagesFromCommit reads each message file touched by the commit at that
// commit's ref.
func (c *Client) messagesFromCommit(ctx context.Context, summary commitSummary) ([]board.Message, error) {
	var detail commitDetail
	endpoint := fmt.Sprintf("/repos/%s/%s/commits/%s", c.owner, c.name, summary.SHA)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &detail); err != nil {
		return nil, err
	}

	var messages []board.Message
	for _, file := range detail.Files {
		if !strings.HasPrefix(file.Filename, c.path+"/") || !strings.HasSuffix(file.Filename, ".json") {
			continue
		}

		envelope, err := c.fileEnvelopeAt(ctx, file.Filename, summary.SHA)
		if err != nil {
			c.log.WarnContext(ctx, "Skipping undecodable message file",
				"file", file.Filename, "sha", summary.SHA, "error", err)
			continue
		}

		messages = append(messages, board.Message{
			Source:        board.SourceMirror,
			CommitSHA:     summary.SHA,
			Content:       envelope.Content,
			Timestamp:     summary.Commit.Author.Date,
			Repository:    c.Repo(),
			Author:        summary.Commit.Author.Name,
			CorrelationID: envelope.ID.String(),
		})
	}

	return messages, nil
}

// fileEnvelopeAt fetches and decodes one message file at a given ref.
func (c *Client) fileEnvelopeAt(ctx context.Context, filename, ref string) (*fileEnvelope, error) {
	var contents fileContents
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", c.owner, c.name, filename, ref)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &contents); err != nil {
		return nil, err
	}

	if contents.Encoding != "base64" {
		return nil, fmt.Errorf("unexpected content encoding %q", contents.Encoding)
	}

	// GitHub wraps base64 payloads with newlines.
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(contents.Content, "\n", ""))
	if err != nil {
		return nil, fmt.Errorf("failed to decode file content: %w", err)
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse message file: %w", err)
	}
	if envelope.Content == "" {
		return nil, fmt.Errorf("message file carries no content")
	}

	return &envelope, nil
}

// BranchHead resolves the current head commit of the configured branch.
func (c *Client) BranchHead(ctx context.Context) (string, error) {
	var ref branchRef
	endpoint := fmt.Sprintf("/repos/%s/%s/git/ref/heads/%s", c.owner, c.name, c.branch)
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &ref); err != nil {
		return "", errs.NewFetchError(fmt.Sprintf("failed to resolve branch head for %s", c.Repo()), err)
	}
	return ref.Object.SHA, nil
}

// doRequest handles the HTTP request/response cycle with proper error handling.
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}, response interface{}) error {
	req, err := c.buildRequest(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = "unparseable error response"
		}
		return apiErr
	}

	if response != nil {
		if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}

	return nil
}

// buildRequest creates a new HTTP request with proper headers.
func (c *Client) buildRequest(ctx context.Context, method, path string, body interface{}) (*http.Request, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	return req, nil
}
