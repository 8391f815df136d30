// Package worker drains background jobs produced by the API server.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/pkg/queue"
)

// JobSource yields jobs and takes back the ones that failed.
type JobSource interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// VoteAuditProcessor writes vote_cast jobs to the vote event log.
type VoteAuditProcessor struct {
	events  store.EventStore
	source  JobSource
	logger  *zap.Logger
	backoff time.Duration
}

// NewVoteAuditProcessor creates a vote audit processor.
func NewVoteAuditProcessor(events store.EventStore, source JobSource, logger *zap.Logger) *VoteAuditProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VoteAuditProcessor{events: events, source: source, logger: logger, backoff: queue.RetryBackoff}
}

// Process executes one vote audit job.
func (p *VoteAuditProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeVoteCast {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.VoteCastPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	ev := models.VoteEvent{
		JobID:         payload.EventID,
		PollID:        payload.PollID,
		UserID:        payload.UserID,
		OptionIndex:   payload.OptionIndex,
		PreviousIndex: payload.PreviousIndex,
		CastAt:        payload.CastAt,
	}
	if err := p.events.RecordVoteEvent(ctx, ev); err != nil {
		return fmt.Errorf("record vote event: %w", err)
	}
	p.logger.Debug("vote event recorded", zap.String("job_id", job.ID), zap.Int64("poll_id", payload.PollID))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *VoteAuditProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("vote audit worker stopping")
			return
		default:
		}

		job, err := p.source.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Error(err))
			if reErr := p.source.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *VoteAuditProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
