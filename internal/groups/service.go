// Package groups owns group creation and membership.
package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Harshita2766/planpull-backend/internal/apperrors"
	"github.com/Harshita2766/planpull-backend/internal/models"
	"github.com/Harshita2766/planpull-backend/internal/store"
)

// Service creates groups and maintains their member lists.
type Service struct {
	store  store.GroupStore
	logger *zap.Logger
}

// NewService creates a membership service.
func NewService(s store.GroupStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: s, logger: logger}
}

// CreateGroup persists a group whose members are the creator followed by the
// supplied members, without duplicates.
func (s *Service) CreateGroup(ctx context.Context, name, creator string, members []string) (*models.Group, error) {
	name = strings.TrimSpace(name)
	creator = strings.TrimSpace(creator)
	if name == "" {
		return nil, apperrors.Validation("name is required")
	}
	if creator == "" {
		return nil, apperrors.Validation("creator is required")
	}

	g := &models.Group{
		Name:    name,
		Creator: creator,
		Members: mergeMembers([]string{creator}, members),
	}
	if err := s.store.CreateGroup(ctx, g); err != nil {
		return nil, fmt.Errorf("create group: %w", err)
	}
	s.logger.Info("group created", zap.Int64("group_id", g.ID), zap.String("creator", creator), zap.Int("members", len(g.Members)))
	return g, nil
}

// GetGroup returns the group or a NotFoundError.
func (s *Service) GetGroup(ctx context.Context, id int64) (*models.Group, error) {
	g, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Group")
	}
	if err != nil {
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// Exists reports whether a group with id has been created.
func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.store.GetGroup(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup group: %w", err)
	}
	return true, nil
}

// AddMembers adds users to a group. Users already in the group are skipped.
func (s *Service) AddMembers(ctx context.Context, id int64, members []string) (*models.Group, error) {
	add := mergeMembers(nil, members)
	if len(add) == 0 {
		return nil, apperrors.Validation("members is required")
	}
	g, err := s.store.AddMembers(ctx, id, add)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperrors.NotFound("Group")
	}
	if err != nil {
		return nil, fmt.Errorf("add members: %w", err)
	}
	s.logger.Info("group members added", zap.Int64("group_id", id), zap.Int("members", len(g.Members)))
	return g, nil
}

// mergeMembers appends trimmed, non-blank entries of extra to base, dropping duplicates.
func mergeMembers(base, extra []string) []string {
	seen := make(map[string]struct{}, len(base)+len(extra))
	out := make([]string, 0, len(base)+len(extra))
	for _, list := range [][]string{base, extra} {
		for _, u := range list {
			u = strings.TrimSpace(u)
			if u == "" {
				continue
			}
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}
