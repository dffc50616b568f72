package github

import (
	"encoding/json"
	"fmt"
	"time"
)

// APIError represents an error response from the GitHub API.
type APIError struct {
	StatusCode       int    `json:"-"`
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("GitHub API error: %s (status: %d)", e.Message, e.StatusCode)
}

// fileEnvelope is the JSON document committed to a mirror for each message.
// The id is the local message id, used as the correlation id on read-back.
type fileEnvelope struct {
	ID        json.Number `json:"id"`
	Content   string      `json:"content"`
	Timestamp string      `json:"timestamp"`
}

// createFileRequest is the body of the contents PUT endpoint.
type createFileRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	Branch  string `json:"branch"`
}

// createFileResponse carries the commit created by a contents PUT.
type createFileResponse struct {
	Commit struct {
		SHA string `json:"sha"`
	} `json:"commit"`
}

// commitSummary is one element of the commit list endpoint.
type commitSummary struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
}

// commitDetail is the single-commit endpoint response; unlike the list
// endpoint it includes the touched files.
type commitDetail struct {
	SHA   string `json:"sha"`
	Files []struct {
		Filename string `json:"filename"`
	} `json:"files"`
}

// fileContents is the contents endpoint response for a single file.
type fileContents struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// branchRef is the git ref endpoint response.
type branchRef struct {
	Object struct {
		SHA string `json:"sha"`
	} `json:"object"`
}
