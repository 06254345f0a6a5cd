package discovery

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"copydesk/internal/models"
	"copydesk/internal/notify"
	"copydesk/internal/repository"
	"copydesk/internal/tokensource"
)

// Snapshot is the aggregator's published state: the two display columns and
// the health of the cycle that produced them.
type Snapshot struct {
	Fresh       []models.TokenCard `json:"fresh"`
	Momentum    []models.TokenCard `json:"momentum"`
	Warning     string             `json:"warning,omitempty"`
	Cycle       uint64             `json:"cycle"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// SourceStatus is the per-source outcome of the latest cycle.
type SourceStatus struct {
	Items   int    `json:"items"`
	Error   string `json:"error,omitempty"`
	FetchAt string `json:"fetched_at,omitempty"`
}

// SnapshotStore persists the last-good snapshot across restarts.
type SnapshotStore interface {
	Save(ctx context.Context, snap Snapshot) error
	Load(ctx context.Context) (*Snapshot, error)
}

// Gate reports whether the upstream data backend is reachable.
type Gate interface {
	Available(ctx context.Context) bool
}

// Aggregator runs the health-gated fetch/transform/merge cycle and owns the
// published snapshot. All state mutation is serialized through mu; a cycle
// that resolves after a later one has already applied is discarded
// (last-issued-wins, not last-resolved-wins).
type Aggregator struct {
	Gate   Gate
	Repo   repository.Repository
	Notify *notify.Hub
	Store  SnapshotStore
	Logger *zap.Logger

	NewIssue  tokensource.Source
	Migrating tokensource.Source
	Trending  tokensource.Source
	Surging   tokensource.Source

	DisplayLimit    int
	StreamBufferCap int

	mu           sync.RWMutex
	snap         Snapshot
	minMarketCap float64
	statuses     map[string]SourceStatus
	firstDone    bool

	// Retained inputs so threshold changes and stream arrivals can
	// re-merge without a network round trip.
	fetched          map[string][]models.TokenCard
	streamFresh      []models.TokenCard
	streamMigrations []models.TokenCard

	seqMu      sync.Mutex
	issuedSeq  uint64
	appliedSeq uint64
}

func (a *Aggregator) SetMinMarketCap(v float64) {
	if v < 0 {
		v = 0
	}
	a.mu.Lock()
	a.minMarketCap = v
	a.rebuildLocked()
	snap := a.snap
	a.mu.Unlock()
	a.publish(snap)
}

func (a *Aggregator) MinMarketCap() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.minMarketCap
}

func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snap
}

func (a *Aggregator) Statuses() map[string]SourceStatus {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]SourceStatus, len(a.statuses))
	for name, st := range a.statuses {
		out[name] = st
	}
	return out
}

// Restore seeds the snapshot from the last-good copy so restarts do not
// blank the columns until the first cycle lands.
func (a *Aggregator) Restore(ctx context.Context) {
	if a.Store == nil {
		return
	}
	snap, err := a.Store.Load(ctx)
	if err != nil {
		if a.Logger != nil {
			a.Logger.Warn("snapshot restore failed", zap.Error(err))
		}
		return
	}
	if snap == nil {
		return
	}
	a.mu.Lock()
	if a.snap.RefreshedAt.IsZero() {
		restored := *snap
		restored.Warning = "restored from cache; first refresh pending"
		a.snap = restored
	}
	a.mu.Unlock()
}

// RefreshOnce runs one full cycle: gate probe, concurrent source fetches,
// raw snapshot persistence, merge, swap. The returned error is always nil
// today; the signature leaves room for fatal failures.
func (a *Aggregator) RefreshOnce(ctx context.Context) error {
	a.seqMu.Lock()
	a.issuedSeq++
	seq := a.issuedSeq
	a.seqMu.Unlock()

	now := time.Now().UTC()

	if a.Gate != nil && !a.Gate.Available(ctx) {
		if a.Logger != nil {
			a.Logger.Warn("discovery backend unreachable; clearing columns")
		}
		a.apply(seq, Snapshot{
			Fresh:       []models.TokenCard{},
			Momentum:    []models.TokenCard{},
			Warning:     "data backend unreachable",
			Cycle:       seq,
			RefreshedAt: now,
		}, nil)
		return nil
	}

	type fetchOutcome struct {
		name   string
		result tokensource.Result
		err    error
	}
	sources := []tokensource.Source{a.NewIssue, a.Migrating, a.Trending, a.Surging}
	outcomes := make([]fetchOutcome, len(sources))

	var wg sync.WaitGroup
	for i, src := range sources {
		if src == nil {
			continue
		}
		wg.Add(1)
		go func(i int, src tokensource.Source) {
			defer wg.Done()
			result, err := src.Fetch(ctx)
			outcomes[i] = fetchOutcome{name: src.Name(), result: result, err: err}
		}(i, src)
	}
	wg.Wait()

	fetched := make(map[string][]models.TokenCard, len(sources))
	statuses := make(map[string]SourceStatus, len(sources))
	for _, outcome := range outcomes {
		if outcome.name == "" {
			continue
		}
		cards := outcome.result.Cards
		if outcome.err != nil {
			// Degrade to empty, surface in status, keep going.
			cards = []models.TokenCard{}
			if a.Logger != nil {
				a.Logger.Warn("source fetch failed",
					zap.String("source", outcome.name),
					zap.Error(outcome.err),
				)
			}
		}
		fetched[outcome.name] = cards
		st := SourceStatus{Items: len(cards), FetchAt: now.Format(time.RFC3339)}
		if outcome.err != nil {
			st.Error = outcome.err.Error()
		}
		statuses[outcome.name] = st

		a.persistRaw(ctx, outcome.name, outcome.result, now)
	}

	a.applyFetched(seq, now, fetched, statuses)
	return nil
}

// OnStreamCard takes a single push-stream arrival. Arrivals are prepended
// (newest first) into a capped buffer and the columns re-merge immediately;
// dedupe in the pipeline absorbs at-least-once replays.
func (a *Aggregator) OnStreamCard(card models.TokenCard, migration bool) {
	if card.Address == "" {
		return
	}
	bufCap := a.StreamBufferCap
	if bufCap <= 0 {
		bufCap = 64
	}
	a.mu.Lock()
	if migration {
		a.streamMigrations = prepend(a.streamMigrations, card, bufCap)
	} else {
		a.streamFresh = prepend(a.streamFresh, card, bufCap)
	}
	a.rebuildLocked()
	snap := a.snap
	a.mu.Unlock()
	a.publish(snap)
}

func (a *Aggregator) persistRaw(ctx context.Context, name string, result tokensource.Result, now time.Time) {
	if a.Repo == nil || len(result.Raw) == 0 {
		return
	}
	err := a.Repo.InsertRawSourceSnapshot(ctx, &models.RawSourceSnapshot{
		Source:    name,
		ItemCount: len(result.Cards),
		Payload:   []byte(result.Raw),
		FetchedAt: now,
	})
	if err != nil && a.Logger != nil {
		a.Logger.Warn("raw snapshot insert failed", zap.String("source", name), zap.Error(err))
	}
}

func (a *Aggregator) applyFetched(seq uint64, now time.Time, fetched map[string][]models.TokenCard, statuses map[string]SourceStatus) {
	a.mu.Lock()
	stale := !a.applySeq(seq)
	if stale {
		a.mu.Unlock()
		if a.Logger != nil {
			a.Logger.Warn("stale discovery cycle discarded", zap.Uint64("cycle", seq))
		}
		return
	}
	a.fetched = fetched
	a.statuses = statuses
	a.rebuildLocked()
	a.snap.Warning = ""
	a.snap.Cycle = seq
	a.snap.RefreshedAt = now
	first := !a.firstDone
	a.firstDone = true
	snap := a.snap
	a.mu.Unlock()

	if a.Logger != nil {
		if first {
			a.Logger.Info("initial discovery refresh complete",
				zap.Int("fresh", len(snap.Fresh)),
				zap.Int("momentum", len(snap.Momentum)),
			)
		} else {
			a.Logger.Debug("discovery refresh complete",
				zap.Int("fresh", len(snap.Fresh)),
				zap.Int("momentum", len(snap.Momentum)),
			)
		}
	}

	a.publish(snap)
	if a.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.Store.Save(ctx, snap); err != nil && a.Logger != nil {
			a.Logger.Warn("snapshot save failed", zap.Error(err))
		}
		cancel()
	}
}

func (a *Aggregator) apply(seq uint64, snap Snapshot, statuses map[string]SourceStatus) {
	a.mu.Lock()
	if !a.applySeq(seq) {
		a.mu.Unlock()
		return
	}
	a.snap = snap
	// Retained fetches are stale once the columns clear; a rebuild during
	// the outage must not resurrect them. Stream buffers stay: live
	// arrivals are still real.
	a.fetched = map[string][]models.TokenCard{}
	if statuses != nil {
		a.statuses = statuses
	}
	a.mu.Unlock()
	a.publish(snap)
}

// applySeq enforces last-issued-wins; callers hold mu.
func (a *Aggregator) applySeq(seq uint64) bool {
	a.seqMu.Lock()
	defer a.seqMu.Unlock()
	if seq < a.appliedSeq {
		return false
	}
	a.appliedSeq = seq
	return true
}

// rebuildLocked recomputes both columns from retained inputs. Callers hold mu.
func (a *Aggregator) rebuildLocked() {
	opts := MergeOptions{
		MinMarketCap: a.minMarketCap,
		MaxItems:     a.DisplayLimit,
	}
	a.snap.Fresh = Merge(opts,
		a.streamFresh,
		a.fetched[models.CardSourceNewIssue],
	)
	a.snap.Momentum = Merge(opts,
		a.streamMigrations,
		a.fetched[models.CardSourceMigrating],
		a.fetched[models.CardSourceTrending],
		a.fetched[models.CardSourceSurging],
	)
}

func (a *Aggregator) publish(snap Snapshot) {
	if a.Notify == nil {
		return
	}
	a.Notify.Publish(notify.Event{
		Topic:  notify.TopicDiscovery,
		Action: "refresh",
		Payload: map[string]any{
			"cycle":    snap.Cycle,
			"fresh":    len(snap.Fresh),
			"momentum": len(snap.Momentum),
			"warning":  snap.Warning,
		},
	})
}

func prepend(list []models.TokenCard, card models.TokenCard, max int) []models.TokenCard {
	out := make([]models.TokenCard, 0, len(list)+1)
	out = append(out, card)
	out = append(out, list...)
	if len(out) > max {
		out = out[:max]
	}
	return out
}
