package mirror_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/commitboard/internal/board"
	"github.com/edgard/commitboard/internal/mirror"
)

// fakeMirror scripts the behavior of one remote repository.
type fakeMirror struct {
	repo       string
	publishSHA string
	publishErr error
	recent     []board.Message
	recentErr  error
	headSHA    string
	headErr    error
	delay      time.Duration

	publishCalls int
}

func (f *fakeMirror) Repo() string { return f.repo }

func (f *fakeMirror) Publish(ctx context.Context, content, correlationID string) (string, error) {
	f.publishCalls++
	if f.publishErr != nil {
		return "", f.publishErr
	}
	return f.publishSHA, nil
}

func (f *fakeMirror) Recent(ctx context.Context, since time.Time, limit int) ([]board.Message, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	return f.recent, nil
}

func (f *fakeMirror) BranchHead(ctx context.Context) (string, error) {
	if f.headErr != nil {
		return "", f.headErr
	}
	return f.headSHA, nil
}

func mirrorMsg(sha string) board.Message {
	return board.Message{
		Source:    board.SourceMirror,
		CommitSHA: sha,
		Content:   "from " + sha,
		Timestamp: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestPublishPrimaryNoMirrors(t *testing.T) {
	t.Parallel()

	reg := mirror.NewRegistry(time.Second, nil)

	sha := reg.PublishPrimary(context.Background(), "hello", "1")
	assert.Empty(t, sha)
}

func TestPublishPrimaryUsesFirstMirror(t *testing.T) {
	t.Parallel()

	primary := &fakeMirror{repo: "o/primary", publishSHA: "abc123"}
	secondary := &fakeMirror{repo: "o/secondary", publishSHA: "should-not-be-used"}

	reg := mirror.NewRegistry(time.Second, nil)
	reg.Add(primary)
	reg.Add(secondary)
	require.Equal(t, 2, reg.Len())

	sha := reg.PublishPrimary(context.Background(), "hello", "1")
	assert.Equal(t, "abc123", sha)
	assert.Equal(t, 1, primary.publishCalls)
	assert.Zero(t, secondary.publishCalls)
}

func TestPublishPrimaryFailureYieldsEmptySHA(t *testing.T) {
	t.Parallel()

	reg := mirror.NewRegistry(time.Second, nil)
	reg.Add(&fakeMirror{repo: "o/broken", publishErr: errors.New("api down")})

	sha := reg.PublishPrimary(context.Background(), "hello", "1")
	assert.Empty(t, sha)
}

func TestRecentAllDegradesPerMirror(t *testing.T) {
	t.Parallel()

	healthy := &fakeMirror{
		repo:   "o/healthy",
		recent: []board.Message{mirrorMsg("aaa"), mirrorMsg("bbb")},
	}
	failing := &fakeMirror{repo: "o/failing", recentErr: errors.New("boom")}
	hanging := &fakeMirror{
		repo:   "o/hanging",
		recent: []board.Message{mirrorMsg("never")},
		delay:  5 * time.Second,
	}

	reg := mirror.NewRegistry(50*time.Millisecond, nil)
	reg.Add(failing)
	reg.Add(healthy)
	reg.Add(hanging)

	got := reg.RecentAll(context.Background(), time.Time{}, 10)

	// The failing and hanging mirrors contribute nothing; the healthy one
	// contributes everything it has.
	require.Len(t, got, 2)
	shas := []string{got[0].CommitSHA, got[1].CommitSHA}
	assert.ElementsMatch(t, []string{"aaa", "bbb"}, shas)
}

func TestRecentAllNoMirrors(t *testing.T) {
	t.Parallel()

	reg := mirror.NewRegistry(time.Second, nil)
	assert.Nil(t, reg.RecentAll(context.Background(), time.Time{}, 10))
}

func TestPushAllReportsPerMirror(t *testing.T) {
	t.Parallel()

	reg := mirror.NewRegistry(time.Second, nil)
	reg.Add(&fakeMirror{repo: "o/ok", headSHA: "headsha"})
	reg.Add(&fakeMirror{repo: "o/broken", headErr: errors.New("no such branch")})

	statuses := reg.PushAll(context.Background())
	require.Len(t, statuses, 2)

	ok := statuses["o/ok"]
	assert.Equal(t, "success", ok.Status)
	assert.Equal(t, "headsha", ok.SHA)

	broken := statuses["o/broken"]
	assert.Equal(t, "error", broken.Status)
	assert.Contains(t, broken.Message, "no such branch")
	assert.Empty(t, broken.SHA)
}
