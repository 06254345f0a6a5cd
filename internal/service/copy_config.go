package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"copydesk/internal/models"
	"copydesk/internal/notify"
	"copydesk/internal/repository"
)

// ToggleResult carries both outcomes of a mutation action: the write error
// (surfaced verbatim to the caller) and the unconditionally re-fetched
// list. The list is refreshed even when the write failed so the caller
// always renders server truth, never an optimistic guess.
type ToggleResult struct {
	Configs  []models.CopyConfig
	WriteErr error
	ListErr  error
}

type CopyConfigService struct {
	Repo   repository.Repository
	Notify *notify.Hub
	Logger *zap.Logger
}

func (s *CopyConfigService) List(ctx context.Context, userID string, active *bool) ([]models.CopyConfig, error) {
	return s.Repo.ListCopyConfigs(ctx, repository.ListConfigsParams{
		UserID: userID,
		Active: active,
	})
}

// ToggleActive flips (or sets, when next is non-nil) a config's active
// flag: exactly one write, then exactly one list re-fetch, regardless of
// how the write went.
func (s *CopyConfigService) ToggleActive(ctx context.Context, userID string, id uint64, next *bool) ToggleResult {
	var result ToggleResult

	desired, err := s.resolveDesired(ctx, userID, id, next)
	if err != nil {
		result.WriteErr = err
	} else {
		result.WriteErr = s.Repo.SetCopyConfigActive(ctx, userID, id, desired)
		s.publish(userID, "toggle", id)
	}

	result.Configs, result.ListErr = s.List(ctx, userID, nil)

	if result.WriteErr != nil && s.Logger != nil {
		s.Logger.Warn("config toggle failed",
			zap.String("user_id", userID),
			zap.Uint64("config_id", id),
			zap.Error(result.WriteErr),
		)
	}
	return result
}

// Delete removes a config with the same write-then-refetch shape as
// ToggleActive.
func (s *CopyConfigService) Delete(ctx context.Context, userID string, id uint64) ToggleResult {
	var result ToggleResult

	result.WriteErr = s.Repo.DeleteCopyConfig(ctx, userID, id)
	s.publish(userID, "delete", id)

	result.Configs, result.ListErr = s.List(ctx, userID, nil)

	if result.WriteErr != nil && s.Logger != nil {
		s.Logger.Warn("config delete failed",
			zap.String("user_id", userID),
			zap.Uint64("config_id", id),
			zap.Error(result.WriteErr),
		)
	}
	return result
}

func (s *CopyConfigService) resolveDesired(ctx context.Context, userID string, id uint64, next *bool) (bool, error) {
	if next != nil {
		return *next, nil
	}
	cfg, err := s.Repo.GetCopyConfig(ctx, userID, id)
	if err != nil {
		return false, err
	}
	if cfg == nil {
		return false, fmt.Errorf("config %d not found", id)
	}
	return !cfg.Active, nil
}

func (s *CopyConfigService) publish(userID, action string, id uint64) {
	if s.Notify == nil {
		return
	}
	s.Notify.Publish(notify.Event{
		Topic:   notify.TopicCopyConfigs,
		Action:  action,
		UserID:  userID,
		Payload: map[string]any{"config_id": id},
	})
}
