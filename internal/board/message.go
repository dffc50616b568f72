// Package board defines the message domain model and the pure merge logic
// that combines locally stored messages with messages reconstructed from
// mirror commit history.
package board

import (
	"encoding/json"
	"time"
)

// Source identifies where a message came from.
type Source string

const (
	// SourceLocal marks a message read from the local store.
	SourceLocal Source = "local"
	// SourceMirror marks a message reconstructed from a mirror's commit
	// history. Mirror-derived messages are ephemeral: recomputed on every
	// read, never persisted.
	SourceMirror Source = "mirror"
)

// Message is the canonical message entity. The identifier is discriminated by
// provenance: local messages carry the store's integer id, mirror-derived
// messages carry the full commit SHA.
type Message struct {
	Source Source

	// LocalID is the store-assigned id. Valid only for SourceLocal.
	LocalID int64

	// CommitSHA is the full 40-char commit identifier. For SourceLocal it is
	// the attached remote reference (empty until a publish succeeds); for
	// SourceMirror it is the commit the message was reconstructed from.
	CommitSHA string

	Content   string
	Timestamp time.Time

	// Repository and Author are set only on mirror-derived messages.
	Repository string
	Author     string

	// CorrelationID is the local message id embedded in the mirrored file.
	// For SourceLocal it is the stringified LocalID; for SourceMirror it is
	// recovered from the file envelope and may be empty when the file was
	// written by a foreign producer.
	CorrelationID string
}

// MarshalJSON renders the wire shape: a numeric id for local rows, the commit
// SHA for mirror-derived entries, and a nullable git_commit_hash.
func (m Message) MarshalJSON() ([]byte, error) {
	type envelope struct {
		ID            any     `json:"id"`
		Content       string  `json:"content"`
		Timestamp     string  `json:"timestamp"`
		GitCommitHash *string `json:"git_commit_hash"`
		Repository    string  `json:"repository,omitempty"`
		Author        string  `json:"author,omitempty"`
	}

	env := envelope{
		Content:   m.Content,
		Timestamp: m.Timestamp.UTC().Format(time.RFC3339),
	}

	if m.Source == SourceMirror {
		env.ID = m.CommitSHA
		env.Repository = m.Repository
		env.Author = m.Author
	} else {
		env.ID = m.LocalID
	}

	if m.CommitSHA != "" {
		sha := m.CommitSHA
		env.GitCommitHash = &sha
	}

	return json.Marshal(env)
}
