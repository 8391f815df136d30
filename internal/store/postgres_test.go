package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/internal/testutil"
)

func newPostgres(t *testing.T) (*store.Postgres, *pgxpool.Pool) {
	t.Helper()
	dsn := testutil.DatabaseURL()
	if dsn == "" {
		t.Skipf("%s not set", testutil.EnvDatabaseURL)
	}
	pool := testutil.NewPool(t, dsn, "planpull_test_store")
	return store.NewPostgres(pool), pool
}

func seedPostgresPoll(t *testing.T, s *store.Postgres, options ...string) *models.Poll {
	t.Helper()
	ctx := context.Background()
	g := &models.Group{Name: "G", Creator: "u1", Members: []string{"u1"}}
	require.NoError(t, s.CreateGroup(ctx, g))
	p := &models.Poll{GroupID: g.ID, Question: "Where?"}
	for _, o := range options {
		p.Options = append(p.Options, models.PollOption{Text: o, Votes: []string{}})
	}
	require.NoError(t, s.CreatePoll(ctx, p))
	return p
}

func TestPostgresGroupLifecycle(t *testing.T) {
	s, _ := newPostgres(t)
	ctx := context.Background()

	g := &models.Group{Name: "Trip", Creator: "alice", Members: []string{"alice", "bob"}}
	require.NoError(t, s.CreateGroup(ctx, g))
	assert.Equal(t, int64(1), g.ID)
	assert.False(t, g.CreatedAt.IsZero())

	updated, err := s.AddMembers(ctx, g.ID, []string{"bob", "carol"})
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob", "carol"}, updated.Members, "join order is kept")

	_, err = s.GetGroup(ctx, 99)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.AddMembers(ctx, 99, []string{"x"})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresCreatePollUnknownGroup(t *testing.T) {
	s, pool := newPostgres(t)
	ctx := context.Background()

	p := &models.Poll{GroupID: 42, Question: "Q", Options: []models.PollOption{{Text: "a"}}}
	assert.ErrorIs(t, s.CreatePoll(ctx, p), store.ErrNotFound)

	var n int
	require.NoError(t, pool.QueryRow(ctx, `SELECT count(*) FROM polls`).Scan(&n))
	assert.Zero(t, n, "the failed insert must roll back")
}

func TestPostgresPollRoundTrip(t *testing.T) {
	s, _ := newPostgres(t)
	ctx := context.Background()
	p := seedPostgresPoll(t, s, "Park", "Beach")

	got, err := s.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Where?", got.Question)
	require.Len(t, got.Options, 2)
	assert.Equal(t, "Park", got.Options[0].Text)
	assert.NotNil(t, got.Options[1].Votes, "empty vote lists load as [] not nil")

	_, err = s.GetPoll(ctx, 77)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresUpdatePollRollsBackOnError(t *testing.T) {
	s, _ := newPostgres(t)
	ctx := context.Background()
	p := seedPostgresPoll(t, s, "Park", "Beach")

	boom := errors.New("boom")
	_, err := s.UpdatePoll(ctx, p.ID, func(p *models.Poll) error {
		p.Options[0].Votes = append(p.Options[0].Votes, "u1")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.UpdatePoll(ctx, p.ID, func(p *models.Poll) error {
		p.Options = p.Options[:1]
		return nil
	})
	assert.Error(t, err, "options are fixed after creation")

	got, err := s.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Options[0].Votes)
	assert.Len(t, got.Options, 2)

	_, err = s.UpdatePoll(ctx, 77, func(*models.Poll) error { return nil })
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPostgresUpdatePollSerializesWriters(t *testing.T) {
	s, _ := newPostgres(t)
	ctx := context.Background()
	p := seedPostgresPoll(t, s, "only", "other")

	const writers = 40
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.UpdatePoll(ctx, p.ID, func(p *models.Poll) error {
				p.Options[0].Votes = append(p.Options[0].Votes, uuid.NewString())
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := s.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Len(t, got.Options[0].Votes, writers, "no update may be lost")
	assert.Empty(t, got.Options[1].Votes)
}

func TestPostgresRecordVoteEventDedup(t *testing.T) {
	s, pool := newPostgres(t)
	ctx := context.Background()
	p := seedPostgresPoll(t, s, "a", "b")

	prev := 0
	ev := models.VoteEvent{
		JobID:         uuid.New(),
		PollID:        p.ID,
		UserID:        "u1",
		OptionIndex:   1,
		PreviousIndex: &prev,
		CastAt:        time.Now().UTC(),
	}
	require.NoError(t, s.RecordVoteEvent(ctx, ev))
	require.NoError(t, s.RecordVoteEvent(ctx, ev))

	var n int
	var previous *int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*), max(previous_index) FROM vote_events WHERE poll_id = $1`, p.ID).Scan(&n, &previous))
	assert.Equal(t, 1, n, "a redelivered job is recorded once")
	require.NotNil(t, previous)
	assert.Equal(t, 0, *previous)

	err := s.RecordVoteEvent(ctx, models.VoteEvent{JobID: uuid.New(), PollID: 999, UserID: "u1", CastAt: time.Now()})
	assert.Error(t, err, "events must reference an existing poll")
}
