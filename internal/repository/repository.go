package repository

import (
	"context"
	"time"

	"copydesk/internal/models"
)

type ListConfigsParams struct {
	UserID  string
	Active  *bool
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

type ListTradesParams struct {
	UserID string
	Status *string
	Limit  int
	Offset int
}

type ListPositionsParams struct {
	UserID  string
	Status  *string
	Limit   int
	Offset  int
	OrderBy string
	Asc     *bool
}

// Repository is the persistence surface for the viewer records, preferences,
// and raw source snapshots. All record reads and writes are scoped to an
// authenticated user identity.
type Repository interface {
	// Copy configs.
	ListCopyConfigs(ctx context.Context, params ListConfigsParams) ([]models.CopyConfig, error)
	CountCopyConfigs(ctx context.Context, params ListConfigsParams) (int64, error)
	GetCopyConfig(ctx context.Context, userID string, id uint64) (*models.CopyConfig, error)
	SetCopyConfigActive(ctx context.Context, userID string, id uint64, active bool) error
	DeleteCopyConfig(ctx context.Context, userID string, id uint64) error

	// Pending trades.
	ListPendingTrades(ctx context.Context, params ListTradesParams) ([]models.PendingTrade, error)
	ExpireDuePendingTrades(ctx context.Context, now time.Time) (int64, error)

	// Positions.
	ListPositions(ctx context.Context, params ListPositionsParams) ([]models.Position, error)
	CountPositions(ctx context.Context, params ListPositionsParams) (int64, error)

	// Preferences.
	GetPreference(ctx context.Context, userID, key string) (*models.UserPreference, error)
	UpsertPreference(ctx context.Context, item *models.UserPreference) error

	// Raw source snapshots.
	InsertRawSourceSnapshot(ctx context.Context, item *models.RawSourceSnapshot) error
	PruneRawSourceSnapshots(ctx context.Context, before time.Time) (int64, error)
}
