package board_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/commitboard/internal/board"
)

func at(sec int) time.Time {
	return time.Date(2025, 6, 1, 12, 0, sec, 0, time.UTC)
}

func local(id int64, sec int) board.Message {
	return board.Message{
		Source:        board.SourceLocal,
		LocalID:       id,
		Content:       "local",
		Timestamp:     at(sec),
		CorrelationID: "",
	}
}

func remote(sha string, sec int) board.Message {
	return board.Message{
		Source:     board.SourceMirror,
		CommitSHA:  sha,
		Content:    "remote",
		Timestamp:  at(sec),
		Repository: "owner/repo",
	}
}

func TestMergeInterleavesByTimestamp(t *testing.T) {
	t.Parallel()

	// Local store has messages at t=1,3,5; mirror history contributes t=2,4.
	localMsgs := []board.Message{local(1, 1), local(2, 3), local(3, 5)}
	remoteMsgs := []board.Message{remote("aaa", 2), remote("bbb", 4)}

	merged := board.Merge(localMsgs, remoteMsgs, 10)

	require.Len(t, merged, 5)
	for i, want := range []int{1, 2, 3, 4, 5} {
		assert.Equal(t, at(want), merged[i].Timestamp, "position %d", i)
	}
}

func TestMergeOrderingAndCap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		local     []board.Message
		remote    []board.Message
		limit     int
		wantLen   int
		wantFirst time.Time
	}{
		{
			name:      "cap keeps most recent",
			local:     []board.Message{local(1, 1), local(2, 2), local(3, 3)},
			remote:    []board.Message{remote("a", 4), remote("b", 5)},
			limit:     2,
			wantLen:   2,
			wantFirst: at(4),
		},
		{
			name:    "both empty",
			local:   nil,
			remote:  nil,
			limit:   10,
			wantLen: 0,
		},
		{
			name:      "remote only",
			local:     nil,
			remote:    []board.Message{remote("a", 3), remote("b", 1)},
			limit:     10,
			wantLen:   2,
			wantFirst: at(1),
		},
		{
			name:    "non-positive limit yields nothing",
			local:   []board.Message{local(1, 1)},
			remote:  nil,
			limit:   0,
			wantLen: 0,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			merged := board.Merge(tc.local, tc.remote, tc.limit)

			require.Len(t, merged, tc.wantLen)
			for i := 1; i < len(merged); i++ {
				assert.False(t, merged[i].Timestamp.Before(merged[i-1].Timestamp),
					"sequence must be non-decreasing by timestamp")
			}
			if tc.wantLen > 0 {
				assert.Equal(t, tc.wantFirst, merged[0].Timestamp)
			}
		})
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	t.Parallel()

	localMsgs := []board.Message{local(1, 5), local(2, 1), local(3, 3)}
	remoteMsgs := []board.Message{remote("x", 2), remote("y", 4), remote("z", 2)}

	first := board.Merge(localMsgs, remoteMsgs, 4)
	second := board.Merge(localMsgs, remoteMsgs, 4)

	assert.Equal(t, first, second)
}

func TestMergeTieBreakLocalFirst(t *testing.T) {
	t.Parallel()

	localMsgs := []board.Message{local(7, 3)}
	remoteMsgs := []board.Message{remote("ccc", 3)}

	merged := board.Merge(localMsgs, remoteMsgs, 10)

	require.Len(t, merged, 2)
	assert.Equal(t, board.SourceLocal, merged[0].Source)
	assert.Equal(t, board.SourceMirror, merged[1].Source)
}

func TestMergeDeduplicatesByCorrelationID(t *testing.T) {
	t.Parallel()

	l := local(42, 1)
	l.CorrelationID = "42"

	dup := remote("abc", 2)
	dup.CorrelationID = "42"

	foreign := remote("def", 3)
	foreign.CorrelationID = "99"

	noCorrelation := remote("ghi", 4)

	merged := board.Merge([]board.Message{l}, []board.Message{dup, foreign, noCorrelation}, 10)

	require.Len(t, merged, 3)
	assert.Equal(t, int64(42), merged[0].LocalID)
	assert.Equal(t, "def", merged[1].CommitSHA)
	assert.Equal(t, "ghi", merged[2].CommitSHA)
}

func TestMergeDoesNotMutateInputs(t *testing.T) {
	t.Parallel()

	localMsgs := []board.Message{local(1, 9), local(2, 1)}
	remoteMsgs := []board.Message{remote("a", 5)}

	_ = board.Merge(localMsgs, remoteMsgs, 10)

	assert.Equal(t, at(9), localMsgs[0].Timestamp)
	assert.Equal(t, at(1), localMsgs[1].Timestamp)
}
