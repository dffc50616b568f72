package database

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/edgard/commitboard/internal/board"
)

// Message represents a locally originated message row. The commit hash starts
// out NULL and is set at most once, after a successful mirror publish.
type Message struct {
	ID            int64          `db:"id"`
	Content       string         `db:"content"`
	Timestamp     time.Time      `db:"timestamp"`
	GitCommitHash sql.NullString `db:"git_commit_hash"`
}

// toBoard converts a row into the domain representation.
func (m Message) toBoard() board.Message {
	msg := board.Message{
		Source:        board.SourceLocal,
		LocalID:       m.ID,
		Content:       m.Content,
		Timestamp:     m.Timestamp,
		CorrelationID: strconv.FormatInt(m.ID, 10),
	}
	if m.GitCommitHash.Valid {
		msg.CommitSHA = m.GitCommitHash.String
	}
	return msg
}
