package store

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Harshita2766/planpull-backend/internal/models"
)

// foreignKeyViolation is the SQLSTATE for a failed REFERENCES check.
const foreignKeyViolation = "23503"

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Postgres is a Store backed by PostgreSQL.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ Store = (*Postgres)(nil)

// NewPostgres creates a PostgreSQL store on an established pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// CreateGroup inserts the group and its members in one transaction.
func (s *Postgres) CreateGroup(ctx context.Context, g *models.Group) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO groups (name, creator) VALUES ($1, $2) RETURNING id, created_at`
		if err := tx.QueryRow(ctx, q, g.Name, g.Creator).Scan(&g.ID, &g.CreatedAt); err != nil {
			return fmt.Errorf("insert group: %w", err)
		}
		return insertMembers(ctx, tx, g.ID, g.Members)
	})
}

// GetGroup returns the group with members in join order.
func (s *Postgres) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	return loadGroup(ctx, s.pool, id)
}

// AddMembers inserts members not already present, ignoring duplicates.
func (s *Postgres) AddMembers(ctx context.Context, id int64, members []string) (*models.Group, error) {
	var g *models.Group
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var locked int64
		err := tx.QueryRow(ctx, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, id).Scan(&locked)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("lock group: %w", err)
		}
		if err := insertMembers(ctx, tx, id, members); err != nil {
			return err
		}
		g, err = loadGroup(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreatePoll inserts the poll and its options in one transaction.
func (s *Postgres) CreatePoll(ctx context.Context, p *models.Poll) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		const q = `INSERT INTO polls (group_id, question) VALUES ($1, $2) RETURNING id, created_at`
		if err := tx.QueryRow(ctx, q, p.GroupID, p.Question).Scan(&p.ID, &p.CreatedAt); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
				return ErrNotFound
			}
			return fmt.Errorf("insert poll: %w", err)
		}
		const oq = `INSERT INTO poll_options (poll_id, position, text, votes) VALUES ($1, $2, $3, $4)`
		for i, o := range p.Options {
			votes := o.Votes
			if votes == nil {
				votes = []string{}
			}
			if _, err := tx.Exec(ctx, oq, p.ID, i, o.Text, votes); err != nil {
				return fmt.Errorf("insert poll option %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetPoll returns the committed state of the poll.
func (s *Postgres) GetPoll(ctx context.Context, id int64) (*models.Poll, error) {
	return loadPoll(ctx, s.pool, id, false)
}

// UpdatePoll locks the poll row, applies mutate and writes back changed options.
// The transaction rolls back on any error, including one returned by mutate.
func (s *Postgres) UpdatePoll(ctx context.Context, id int64, mutate PollMutation) (*models.Poll, error) {
	var next *models.Poll
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		current, err := loadPoll(ctx, tx, id, true)
		if err != nil {
			return err
		}
		next = current.Clone()
		if err := mutate(next); err != nil {
			return err
		}
		if len(next.Options) != len(current.Options) {
			return fmt.Errorf("poll %d: option count changed from %d to %d", id, len(current.Options), len(next.Options))
		}
		const uq = `UPDATE poll_options SET votes = $3 WHERE poll_id = $1 AND position = $2`
		for i := range next.Options {
			if slices.Equal(current.Options[i].Votes, next.Options[i].Votes) {
				continue
			}
			if _, err := tx.Exec(ctx, uq, id, i, next.Options[i].Votes); err != nil {
				return fmt.Errorf("update poll option %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return next, nil
}

// RecordVoteEvent inserts ev; a repeated JobID is ignored.
func (s *Postgres) RecordVoteEvent(ctx context.Context, ev models.VoteEvent) error {
	const q = `INSERT INTO vote_events (job_id, poll_id, user_id, option_index, previous_index, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (job_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, q, ev.JobID, ev.PollID, ev.UserID, ev.OptionIndex, ev.PreviousIndex, ev.CastAt)
	if err != nil {
		return fmt.Errorf("insert vote event: %w", err)
	}
	return nil
}

func insertMembers(ctx context.Context, q querier, groupID int64, members []string) error {
	const mq = `INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING`
	for _, u := range members {
		if _, err := q.Exec(ctx, mq, groupID, u); err != nil {
			return fmt.Errorf("insert group member: %w", err)
		}
	}
	return nil
}

func loadGroup(ctx context.Context, q querier, id int64) (*models.Group, error) {
	var g models.Group
	err := q.QueryRow(ctx, `SELECT id, name, creator, created_at FROM groups WHERE id = $1`, id).
		Scan(&g.ID, &g.Name, &g.Creator, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select group: %w", err)
	}
	rows, err := q.Query(ctx, `SELECT user_id FROM group_members WHERE group_id = $1 ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("select group members: %w", err)
	}
	members, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan group members: %w", err)
	}
	g.Members = members
	if g.Members == nil {
		g.Members = []string{}
	}
	return &g, nil
}

func loadPoll(ctx context.Context, q querier, id int64, forUpdate bool) (*models.Poll, error) {
	pq := `SELECT id, group_id, question, created_at FROM polls WHERE id = $1`
	if forUpdate {
		pq += ` FOR UPDATE`
	}
	var p models.Poll
	err := q.QueryRow(ctx, pq, id).Scan(&p.ID, &p.GroupID, &p.Question, &p.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select poll: %w", err)
	}
	rows, err := q.Query(ctx, `SELECT text, votes FROM poll_options WHERE poll_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("select poll options: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var o models.PollOption
		if err := rows.Scan(&o.Text, &o.Votes); err != nil {
			return nil, fmt.Errorf("scan poll option: %w", err)
		}
		if o.Votes == nil {
			o.Votes = []string{}
		}
		p.Options = append(p.Options, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate poll options: %w", err)
	}
	return &p, nil
}
