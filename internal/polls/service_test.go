package polls

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Harshita2766/planpull-backend/internal/apperrors"
	"github.com/Harshita2766/planpull-backend/internal/groups"
	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/internal/testutil"
	"github.com/Harshita2766/planpull-backend/pkg/queue"
)

type recordingQueue struct {
	mu       sync.Mutex
	payloads []queue.VoteCastPayload
	err      error
}

func (r *recordingQueue) EnqueueVoteCast(_ context.Context, p queue.VoteCastPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.payloads = append(r.payloads, p)
	return r.err
}

// testSchema isolates this package's tables when the tests run on Postgres.
const testSchema = "planpull_test_polls"

type fixture struct {
	svc    *Service
	store  store.Store
	events *recordingQueue
	group  *models.Group
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := testutil.NewStore(t, testSchema)
	groupSvc := groups.NewService(st, nil)
	g, err := groupSvc.CreateGroup(context.Background(), "G", "u1", nil)
	require.NoError(t, err)
	events := &recordingQueue{}
	return &fixture{svc: NewService(st, groupSvc, events, nil), store: st, events: events, group: g}
}

func (f *fixture) poll(t *testing.T, options ...string) *models.Poll {
	t.Helper()
	p, err := f.svc.CreatePoll(context.Background(), f.group.ID, "Where?", options)
	require.NoError(t, err)
	return p
}

func votersOf(p *models.Poll) [][]string {
	out := make([][]string, len(p.Options))
	for i, o := range p.Options {
		out[i] = o.Votes
	}
	return out
}

func assertSingleVote(t *testing.T, p *models.Poll) {
	t.Helper()
	seen := map[string]int{}
	for i, o := range p.Options {
		for _, u := range o.Votes {
			prev, dup := seen[u]
			assert.False(t, dup, "user %s holds votes on options %d and %d", u, prev, i)
			seen[u] = i
		}
	}
}

func TestCreatePollTrimsAndKeepsOrder(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "  Park ", "Beach", "Museum\t")

	assert.Equal(t, f.group.ID, p.GroupID)
	require.Len(t, p.Options, 3)
	assert.Equal(t, "Park", p.Options[0].Text)
	assert.Equal(t, "Beach", p.Options[1].Text)
	assert.Equal(t, "Museum", p.Options[2].Text)
	for _, o := range p.Options {
		assert.NotNil(t, o.Votes)
		assert.Empty(t, o.Votes)
	}
}

func TestCreatePollValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name     string
		groupID  int64
		question string
		options  []string
	}{
		{"missing group", 0, "Q", []string{"a"}},
		{"blank question", f.group.ID, "  ", []string{"a"}},
		{"nil options", f.group.ID, "Q", nil},
		{"empty options", f.group.ID, "Q", []string{}},
		{"blank option", f.group.ID, "Q", []string{"a", " "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.CreatePoll(ctx, tc.groupID, tc.question, tc.options)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestCreatePollUnknownGroup(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreatePoll(context.Background(), f.group.ID+100, "Q", []string{"a", "b"})
	require.True(t, apperrors.IsNotFound(err), "got %v", err)
	assert.Equal(t, "Group not found", err.Error())

	_, err = f.store.GetPoll(context.Background(), 1)
	assert.ErrorIs(t, err, store.ErrNotFound, "no poll record may be created")
}

func TestCastVoteAddsVote(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "Park", "Beach")

	res, err := f.svc.CastVote(context.Background(), p.ID, "u1", 0)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	assert.Nil(t, res.PreviousIndex)
	assert.Equal(t, []string{"u1"}, res.Options[0].Votes)
	assert.Empty(t, res.Options[1].Votes)
}

func TestCastVoteIsIdempotent(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "Park", "Beach")
	ctx := context.Background()

	_, err := f.svc.CastVote(ctx, p.ID, "u1", 1)
	require.NoError(t, err)
	_, err = f.svc.CastVote(ctx, p.ID, "u2", 1)
	require.NoError(t, err)
	once, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)

	res, err := f.svc.CastVote(ctx, p.ID, "u1", 1)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	require.NotNil(t, res.PreviousIndex)
	assert.Equal(t, 1, *res.PreviousIndex)

	twice, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, votersOf(once), votersOf(twice))
	assert.Equal(t, []string{"u1", "u2"}, twice.Options[1].Votes)
	assert.Len(t, f.events.payloads, 2, "unchanged votes are not audited")
}

func TestCastVoteMovesVote(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "Park", "Beach")
	ctx := context.Background()

	_, err := f.svc.CastVote(ctx, p.ID, "u", 0)
	require.NoError(t, err)
	res, err := f.svc.CastVote(ctx, p.ID, "u", 1)
	require.NoError(t, err)
	assert.True(t, res.Changed)
	require.NotNil(t, res.PreviousIndex)
	assert.Equal(t, 0, *res.PreviousIndex)

	got, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.NotContains(t, got.Options[0].Votes, "u")
	assert.Contains(t, got.Options[1].Votes, "u")

	require.Len(t, f.events.payloads, 2)
	moved := f.events.payloads[1]
	assert.Equal(t, p.ID, moved.PollID)
	assert.Equal(t, 1, moved.OptionIndex)
	require.NotNil(t, moved.PreviousIndex)
	assert.Equal(t, 0, *moved.PreviousIndex)
}

func TestCastVoteRejectsBadIndex(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "Park", "Beach")
	ctx := context.Background()

	_, err := f.svc.CastVote(ctx, p.ID, "u1", 0)
	require.NoError(t, err)
	before, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)

	for _, idx := range []int{2, -1, 99} {
		_, err := f.svc.CastVote(ctx, p.ID, "u1", idx)
		assert.True(t, apperrors.IsValidation(err), "index %d: got %v", idx, err)
	}
	_, err = f.svc.CastVote(ctx, p.ID, " ", 0)
	assert.True(t, apperrors.IsValidation(err))

	after, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, votersOf(before), votersOf(after))
}

func TestCastVoteUnknownPoll(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CastVote(context.Background(), 404, "u1", 0)
	require.True(t, apperrors.IsNotFound(err))
	assert.Equal(t, "Poll not found", err.Error())

	_, err = f.svc.GetPoll(context.Background(), 404)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCastVoteMissingFieldsOnExistingPoll(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "Park", "Beach")
	ctx := context.Background()

	_, err := f.svc.castVote(ctx, p.ID, "u1", nil)
	require.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Equal(t, "option_index is required", err.Error())

	zero := 0
	_, err = f.svc.castVote(ctx, p.ID, "  ", &zero)
	require.True(t, apperrors.IsValidation(err), "got %v", err)
	assert.Equal(t, "user_id is required", err.Error())

	after, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{}, {}}, votersOf(after))
	assert.Empty(t, f.events.payloads)
}

func TestCastVoteUnknownPollBeforeValidation(t *testing.T) {
	f := newFixture(t)
	bad := 7

	for _, tc := range []struct {
		name   string
		userID string
		index  *int
	}{
		{"no fields", "", nil},
		{"no user", "", &bad},
		{"no index", "u1", nil},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.castVote(context.Background(), 42, tc.userID, tc.index)
			require.True(t, apperrors.IsNotFound(err), "got %v", err)
			assert.Equal(t, "Poll not found", err.Error())
		})
	}
}

func TestCastVoteSurvivesRecorderFailure(t *testing.T) {
	f := newFixture(t)
	f.events.err = errors.New("redis down")
	p := f.poll(t, "Park", "Beach")

	_, err := f.svc.CastVote(context.Background(), p.ID, "u1", 1)
	require.NoError(t, err)
	got, err := f.svc.GetPoll(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, got.Options[1].Votes)
}

func TestCastVoteWithoutRecorder(t *testing.T) {
	st := testutil.NewStore(t, testSchema)
	groupSvc := groups.NewService(st, nil)
	g, err := groupSvc.CreateGroup(context.Background(), "G", "u1", nil)
	require.NoError(t, err)
	svc := NewService(st, groupSvc, nil, nil)

	p, err := svc.CreatePoll(context.Background(), g.ID, "Q", []string{"a"})
	require.NoError(t, err)
	_, err = svc.CastVote(context.Background(), p.ID, "u1", 0)
	assert.NoError(t, err)
}

func TestConcurrentVotesKeepOneVotePerUser(t *testing.T) {
	f := newFixture(t)
	p := f.poll(t, "A", "B", "C")
	ctx := context.Background()

	const users = 20
	const rounds = 15
	var wg sync.WaitGroup
	for u := 0; u < users; u++ {
		for r := 0; r < rounds; r++ {
			wg.Add(1)
			go func(u, r int) {
				defer wg.Done()
				_, err := f.svc.CastVote(ctx, p.ID, fmt.Sprintf("user-%d", u), (u+r)%3)
				assert.NoError(t, err)
			}(u, r)
		}
	}

	stop := make(chan struct{})
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			select {
			case <-stop:
				return
			default:
			}
			snap, err := f.svc.GetPoll(ctx, p.ID)
			if assert.NoError(t, err) {
				assertSingleVote(t, snap)
			}
		}
	}()

	wg.Wait()
	close(stop)
	<-readerDone

	final, err := f.svc.GetPoll(ctx, p.ID)
	require.NoError(t, err)
	assertSingleVote(t, final)
	total := 0
	for _, o := range final.Options {
		total += len(o.Votes)
	}
	assert.Equal(t, users, total, "every user holds exactly one vote")
}

func TestConcurrentPollsAreIndependent(t *testing.T) {
	f := newFixture(t)
	a := f.poll(t, "x", "y")
	b := f.poll(t, "x", "y")
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.CastVote(ctx, a.ID, fmt.Sprintf("a-%d", i), i%2)
			assert.NoError(t, err)
		}(i)
		go func(i int) {
			defer wg.Done()
			_, err := f.svc.CastVote(ctx, b.ID, fmt.Sprintf("b-%d", i), i%2)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	for _, id := range []int64{a.ID, b.ID} {
		got, err := f.svc.GetPoll(ctx, id)
		require.NoError(t, err)
		assert.Len(t, got.Options[0].Votes, 15)
		assert.Len(t, got.Options[1].Votes, 15)
	}
}
