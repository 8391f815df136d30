// Package polls owns poll creation, vote mutation and poll read-back.
package polls

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/apperrors"
	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/internal/store"
	"github.com/Harshita2766/planpull-backend/pkg/queue"
)

// GroupDirectory answers whether a group exists.
type GroupDirectory interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// VoteRecorder receives committed vote changes for the audit trail.
type VoteRecorder interface {
	EnqueueVoteCast(ctx context.Context, payload queue.VoteCastPayload) error
}

// VoteResult is the outcome of CastVote.
type VoteResult struct {
	Options []models.PollOption
	// PreviousIndex is the option the user held before the call, if any.
	PreviousIndex *int
	// Changed is false when the user already held the requested option.
	Changed bool
}

// Service creates polls, applies votes and projects poll state.
type Service struct {
	store    store.PollStore
	groups   GroupDirectory
	recorder VoteRecorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a poll service. recorder may be nil.
func NewService(s store.PollStore, groups GroupDirectory, recorder VoteRecorder, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    s,
		groups:   groups,
		recorder: recorder,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePoll attaches a new poll to an existing group. Option texts are trimmed
// and kept in the given order.
func (s *Service) CreatePoll(ctx context.Context, groupID int64, question string, optionTexts []string) (*models.Poll, error) {
	question = strings.TrimSpace(question)
	switch {
	case groupID <= 0:
		return nil, apperrors.Validation("group_id is required")
	case question == "":
		return nil, apperrors.Validation("question is required")
	case len(optionTexts) == 0:
		return nil, apperrors.Validation("options must not be empty")
	}

	options := make([]models.PollOption, len(optionTexts))
	for i, text := range optionTexts {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, apperrors.Validation("option %d is empty", i)
		}
		options[i] = models.PollOption{Text: text, Votes: []string{}}
	}

	ok, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}
	if !ok {
		return nil, apperrors.NotFound("Group")
	}

	p := &models.Poll{GroupID: groupID, Question: question, Options: options}
	if err := s.store.CreatePoll(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("Group")
		}
		return nil, fmt.Errorf("create poll: %w", err)
	}
	s.logger.Info("poll created", zap.Int64("poll_id", p.ID), zap.Int64("group_id", groupID), zap.Int("options", len(options)))
	return p, nil
}

// CastVote places userID's single vote on options[optionIndex], removing it from
// any other option of the poll in the same atomic update.
func (s *Service) CastVote(ctx context.Context, pollID int64, userID string, optionIndex int) (*VoteResult, error) {
	return s.castVote(ctx, pollID, userID, &optionIndex)
}

// castVote is CastVote with an optional index. Input is validated only after the
// poll is found, so an unknown poll reports not-found whatever the body holds.
func (s *Service) castVote(ctx context.Context, pollID int64, userID string, index *int) (*VoteResult, error) {
	userID = strings.TrimSpace(userID)
	result := &VoteResult{}
	optionIndex := -1
	if index != nil {
		optionIndex = *index
	}

	p, err := s.store.UpdatePoll(ctx, pollID, func(p *models.Poll) error {
		if userID == "" {
			return apperrors.Validation("user_id is required")
		}
		if index == nil {
			return apperrors.Validation("option_index is required")
		}
		if optionIndex < 0 || optionIndex >= len(p.Options) {
			return apperrors.Validation("option_index must be between 0 and %d", len(p.Options)-1)
		}
		prev := p.OptionOf(userID)
		if prev >= 0 {
			result.PreviousIndex = &prev
		}
		if prev == optionIndex {
			return nil
		}
		for i := range p.Options {
			p.Options[i].Votes = without(p.Options[i].Votes, userID)
		}
		p.Options[optionIndex].Votes = append(p.Options[optionIndex].Votes, userID)
		result.Changed = true
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Poll")
	}
	if err != nil {
		if apperrors.IsValidation(err) {
			return nil, err
		}
		return nil, fmt.Errorf("cast vote: %w", err)
	}
	result.Options = p.Options

	if result.Changed {
		s.logger.Info("vote recorded",
			zap.Int64("poll_id", pollID),
			zap.String("user_id", userID),
			zap.Int("option_index", optionIndex),
			zap.Bool("moved", result.PreviousIndex != nil),
		)
		s.recordVote(ctx, pollID, userID, optionIndex, result.PreviousIndex)
	}
	return result, nil
}

// GetPoll returns the poll's question and options in stored order.
func (s *Service) GetPoll(ctx context.Context, pollID int64) (*models.Poll, error) {
	p, err := s.store.GetPoll(ctx, pollID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Poll")
	}
	if err != nil {
		return nil, fmt.Errorf("get poll: %w", err)
	}
	return p, nil
}

// recordVote hands the committed change to the audit recorder. The vote is
// already durable, so a failure here is only logged.
func (s *Service) recordVote(ctx context.Context, pollID int64, userID string, optionIndex int, prev *int) {
	if s.recorder == nil {
		return
	}
	payload := queue.VoteCastPayload{
		EventID:       uuid.New(),
		PollID:        pollID,
		UserID:        userID,
		OptionIndex:   optionIndex,
		PreviousIndex: prev,
		CastAt:        s.now(),
	}
	if err := s.recorder.EnqueueVoteCast(ctx, payload); err != nil {
		s.logger.Warn("enqueue vote audit failed", zap.Int64("poll_id", pollID), zap.Error(err))
	}
}

func without(votes []string, userID string) []string {
	out := votes[:0]
	for _, v := range votes {
		if v != userID {
			out = append(out, v)
		}
	}
	return out
}
