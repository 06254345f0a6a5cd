package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"gorm.io/datatypes"

	"copydesk/internal/models"
	"copydesk/internal/repository"
)

// PreferenceService stores per-user display preferences. Currently there is
// exactly one: the currency display mode, read at client startup and
// written on every change.
type PreferenceService struct {
	Repo repository.Repository
}

func (s *PreferenceService) CurrencyMode(ctx context.Context, userID string) (string, error) {
	item, err := s.Repo.GetPreference(ctx, userID, models.PrefCurrencyMode)
	if err != nil {
		return "", err
	}
	if item == nil || len(item.Value) == 0 {
		return models.CurrencyModeUSD, nil
	}
	var mode string
	if err := json.Unmarshal(item.Value, &mode); err != nil {
		return models.CurrencyModeUSD, nil
	}
	if mode != models.CurrencyModeUSD && mode != models.CurrencyModeNative {
		return models.CurrencyModeUSD, nil
	}
	return mode, nil
}

func (s *PreferenceService) SetCurrencyMode(ctx context.Context, userID, mode string) error {
	mode = strings.ToLower(strings.TrimSpace(mode))
	if mode != models.CurrencyModeUSD && mode != models.CurrencyModeNative {
		return fmt.Errorf("invalid currency mode %q", mode)
	}
	raw, _ := json.Marshal(mode)
	return s.Repo.UpsertPreference(ctx, &models.UserPreference{
		UserID:    userID,
		Key:       models.PrefCurrencyMode,
		Value:     datatypes.JSON(raw),
		UpdatedAt: time.Now().UTC(),
	})
}
