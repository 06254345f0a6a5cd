package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"copydesk/internal/notify"
	"copydesk/internal/repository"
)

// PendingTradeSweeper flips overdue pending trades to expired. Expiry is
// driven by wall clock, not by anything a user does, so subscribers get a
// push event whenever the sweep changed rows.
type PendingTradeSweeper struct {
	Repo   repository.Repository
	Notify *notify.Hub
	Logger *zap.Logger
}

func (s *PendingTradeSweeper) SweepOnce(ctx context.Context) error {
	n, err := s.Repo.ExpireDuePendingTrades(ctx, time.Now().UTC())
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if s.Logger != nil {
		s.Logger.Info("expired pending trades", zap.Int64("count", n))
	}
	if s.Notify != nil {
		s.Notify.Publish(notify.Event{
			Topic:   notify.TopicPendingTrades,
			Action:  "expire",
			Payload: map[string]any{"expired": n},
		})
	}
	return nil
}
