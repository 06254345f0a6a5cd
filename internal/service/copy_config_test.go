package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"gorm.io/datatypes"

	"copydesk/internal/models"
	"copydesk/internal/notify"
	"copydesk/internal/repository"
)

type stubRepo struct {
	configs []models.CopyConfig

	getErr    error
	writeErr  error
	listErr   error
	deleteErr error

	gets    int
	writes  int
	deletes int
	lists   int

	prefs map[string]models.UserPreference

	expired   int64
	expireErr error
}

func (r *stubRepo) ListCopyConfigs(ctx context.Context, params repository.ListConfigsParams) ([]models.CopyConfig, error) {
	r.lists++
	return r.configs, r.listErr
}

func (r *stubRepo) CountCopyConfigs(ctx context.Context, params repository.ListConfigsParams) (int64, error) {
	return int64(len(r.configs)), nil
}

func (r *stubRepo) GetCopyConfig(ctx context.Context, userID string, id uint64) (*models.CopyConfig, error) {
	r.gets++
	if r.getErr != nil {
		return nil, r.getErr
	}
	for i := range r.configs {
		if r.configs[i].ID == id && r.configs[i].UserID == userID {
			return &r.configs[i], nil
		}
	}
	return nil, nil
}

func (r *stubRepo) SetCopyConfigActive(ctx context.Context, userID string, id uint64, active bool) error {
	r.writes++
	if r.writeErr != nil {
		return r.writeErr
	}
	for i := range r.configs {
		if r.configs[i].ID == id && r.configs[i].UserID == userID {
			r.configs[i].Active = active
		}
	}
	return nil
}

func (r *stubRepo) DeleteCopyConfig(ctx context.Context, userID string, id uint64) error {
	r.deletes++
	return r.deleteErr
}

func (r *stubRepo) ListPendingTrades(ctx context.Context, params repository.ListTradesParams) ([]models.PendingTrade, error) {
	return nil, nil
}

func (r *stubRepo) ExpireDuePendingTrades(ctx context.Context, now time.Time) (int64, error) {
	return r.expired, r.expireErr
}

func (r *stubRepo) ListPositions(ctx context.Context, params repository.ListPositionsParams) ([]models.Position, error) {
	return nil, nil
}

func (r *stubRepo) CountPositions(ctx context.Context, params repository.ListPositionsParams) (int64, error) {
	return 0, nil
}

func (r *stubRepo) GetPreference(ctx context.Context, userID, key string) (*models.UserPreference, error) {
	if r.prefs == nil {
		return nil, nil
	}
	item, ok := r.prefs[userID+"|"+key]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (r *stubRepo) UpsertPreference(ctx context.Context, item *models.UserPreference) error {
	if r.prefs == nil {
		r.prefs = map[string]models.UserPreference{}
	}
	r.prefs[item.UserID+"|"+item.Key] = *item
	return nil
}

func (r *stubRepo) InsertRawSourceSnapshot(ctx context.Context, item *models.RawSourceSnapshot) error {
	return nil
}

func (r *stubRepo) PruneRawSourceSnapshots(ctx context.Context, before time.Time) (int64, error) {
	return 0, nil
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		configs: []models.CopyConfig{
			{ID: 1, UserID: "u1", SourceWallet: "w1", Active: true},
			{ID: 2, UserID: "u1", SourceWallet: "w2", Active: false},
		},
	}
}

func TestToggleActiveOneWriteOneRefetch(t *testing.T) {
	repo := newStubRepo()
	svc := &CopyConfigService{Repo: repo}

	result := svc.ToggleActive(context.Background(), "u1", 1, nil)
	if result.WriteErr != nil {
		t.Fatalf("unexpected write error: %v", result.WriteErr)
	}
	if repo.writes != 1 {
		t.Fatalf("writes = %d, want 1", repo.writes)
	}
	if repo.lists != 1 {
		t.Fatalf("lists = %d, want 1", repo.lists)
	}
	if result.Configs[0].Active {
		t.Fatalf("toggle did not invert the flag")
	}
}

func TestToggleActiveRefetchesOnWriteFailure(t *testing.T) {
	repo := newStubRepo()
	repo.writeErr = errors.New("backend rejected write")
	svc := &CopyConfigService{Repo: repo}

	result := svc.ToggleActive(context.Background(), "u1", 1, nil)
	if result.WriteErr == nil || result.WriteErr.Error() != "backend rejected write" {
		t.Fatalf("write error must surface verbatim, got %v", result.WriteErr)
	}
	if repo.writes != 1 {
		t.Fatalf("writes = %d, want 1", repo.writes)
	}
	if repo.lists != 1 {
		t.Fatalf("re-fetch must happen despite write failure: lists = %d", repo.lists)
	}
	// The list reflects server state: still active, no optimistic flip.
	if !result.Configs[0].Active {
		t.Fatalf("state changed without a successful write")
	}
}

func TestToggleActiveExplicitTargetSkipsLookup(t *testing.T) {
	repo := newStubRepo()
	svc := &CopyConfigService{Repo: repo}

	next := false
	svc.ToggleActive(context.Background(), "u1", 1, &next)
	if repo.gets != 0 {
		t.Fatalf("explicit target should not read first: gets = %d", repo.gets)
	}
	if repo.writes != 1 || repo.lists != 1 {
		t.Fatalf("writes=%d lists=%d, want 1/1", repo.writes, repo.lists)
	}
}

func TestToggleActiveMissingConfig(t *testing.T) {
	repo := newStubRepo()
	svc := &CopyConfigService{Repo: repo}

	result := svc.ToggleActive(context.Background(), "u1", 99, nil)
	if result.WriteErr == nil {
		t.Fatalf("expected not-found error")
	}
	if repo.writes != 0 {
		t.Fatalf("no write should land for an unknown config")
	}
	if repo.lists != 1 {
		t.Fatalf("list still re-fetches: lists = %d", repo.lists)
	}
}

func TestDeleteOneWriteOneRefetch(t *testing.T) {
	repo := newStubRepo()
	repo.deleteErr = errors.New("row locked")
	svc := &CopyConfigService{Repo: repo}

	result := svc.Delete(context.Background(), "u1", 2)
	if result.WriteErr == nil {
		t.Fatalf("expected delete error to surface")
	}
	if repo.deletes != 1 || repo.lists != 1 {
		t.Fatalf("deletes=%d lists=%d, want 1/1", repo.deletes, repo.lists)
	}
}

func TestTogglePublishesChangeEvent(t *testing.T) {
	repo := newStubRepo()
	hub := notify.NewHub(nil)
	_, ch := hub.Subscribe([]string{notify.TopicCopyConfigs}, 4)
	svc := &CopyConfigService{Repo: repo, Notify: hub}

	svc.ToggleActive(context.Background(), "u1", 1, nil)
	select {
	case evt := <-ch:
		if evt.Action != "toggle" || evt.UserID != "u1" {
			t.Fatalf("unexpected event %+v", evt)
		}
	default:
		t.Fatalf("expected a copy_configs event")
	}
}

func TestSweepOncePublishesOnlyWhenRowsChanged(t *testing.T) {
	repo := newStubRepo()
	hub := notify.NewHub(nil)
	_, ch := hub.Subscribe([]string{notify.TopicPendingTrades}, 4)
	sweeper := &PendingTradeSweeper{Repo: repo, Notify: hub}

	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	select {
	case evt := <-ch:
		t.Fatalf("no rows changed, unexpected event %+v", evt)
	default:
	}

	repo.expired = 3
	if err := sweeper.SweepOnce(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}
	select {
	case evt := <-ch:
		if evt.Action != "expire" {
			t.Fatalf("unexpected action %q", evt.Action)
		}
	default:
		t.Fatalf("expected expire event")
	}
}

func TestCurrencyModeDefaultsAndRoundTrips(t *testing.T) {
	repo := newStubRepo()
	svc := &PreferenceService{Repo: repo}
	ctx := context.Background()

	mode, err := svc.CurrencyMode(ctx, "u1")
	if err != nil || mode != models.CurrencyModeUSD {
		t.Fatalf("default mode: got %q, %v", mode, err)
	}

	if err := svc.SetCurrencyMode(ctx, "u1", "native"); err != nil {
		t.Fatalf("set: %v", err)
	}
	mode, _ = svc.CurrencyMode(ctx, "u1")
	if mode != models.CurrencyModeNative {
		t.Fatalf("round trip: got %q", mode)
	}

	if err := svc.SetCurrencyMode(ctx, "u1", "doubloons"); err == nil {
		t.Fatalf("invalid mode accepted")
	}

	// Corrupt stored value falls back to the default.
	raw, _ := json.Marshal(42)
	repo.prefs["u1|"+models.PrefCurrencyMode] = models.UserPreference{
		UserID: "u1",
		Key:    models.PrefCurrencyMode,
		Value:  datatypes.JSON(raw),
	}
	mode, _ = svc.CurrencyMode(ctx, "u1")
	if mode != models.CurrencyModeUSD {
		t.Fatalf("corrupt value should default: got %q", mode)
	}
}
