package discovery

import (
	"context"
	"testing"
	"time"

	"copydesk/internal/models"
	"copydesk/internal/tokensource"
)

type stubSource struct {
	name  string
	cards []models.TokenCard
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) (tokensource.Result, error) {
	s.calls++
	return tokensource.Result{Cards: s.cards}, s.err
}

type stubGate struct {
	up bool
}

func (g *stubGate) Available(ctx context.Context) bool { return g.up }

func newTestAggregator(gateUp bool) (*Aggregator, *stubSource, *stubSource) {
	newIssue := &stubSource{
		name: models.CardSourceNewIssue,
		cards: []models.TokenCard{
			card("N1", models.CardSourceNewIssue, 10_000),
			card("N2", models.CardSourceNewIssue, 500),
		},
	}
	trending := &stubSource{
		name: models.CardSourceTrending,
		cards: []models.TokenCard{
			card("T1", models.CardSourceTrending, 80_000),
		},
	}
	return &Aggregator{
		Gate:     &stubGate{up: gateUp},
		NewIssue: newIssue,
		Trending: trending,
	}, newIssue, trending
}

func TestRefreshOncePopulatesColumns(t *testing.T) {
	a, _, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := a.Snapshot()
	if len(snap.Fresh) != 2 {
		t.Fatalf("fresh column: got %d cards", len(snap.Fresh))
	}
	if len(snap.Momentum) != 1 {
		t.Fatalf("momentum column: got %d cards", len(snap.Momentum))
	}
	if snap.Warning != "" {
		t.Fatalf("unexpected warning %q", snap.Warning)
	}
	if snap.Cycle == 0 || snap.RefreshedAt.IsZero() {
		t.Fatalf("cycle metadata missing: %+v", snap)
	}
}

func TestGateDownClearsColumnsAndWarns(t *testing.T) {
	a, newIssue, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	a.Gate = &stubGate{up: false}
	fetchesBefore := newIssue.calls
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	snap := a.Snapshot()
	if len(snap.Fresh) != 0 || len(snap.Momentum) != 0 {
		t.Fatalf("columns not cleared: fresh=%d momentum=%d", len(snap.Fresh), len(snap.Momentum))
	}
	if snap.Warning == "" {
		t.Fatalf("expected warning when gate is down")
	}
	if newIssue.calls != fetchesBefore {
		t.Fatalf("sources must not be fetched when gate is down")
	}

	// Not fatal: next tick with the gate back recovers.
	a.Gate = &stubGate{up: true}
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if snap := a.Snapshot(); len(snap.Fresh) == 0 || snap.Warning != "" {
		t.Fatalf("did not recover after gate came back: %+v", snap)
	}
}

func TestOutageRebuildShowsOnlyStreamArrivals(t *testing.T) {
	a, _, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	a.Gate = &stubGate{up: false}
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// A live arrival mid-outage re-merges, but must not resurrect the
	// pre-outage fetched cards into the cleared columns.
	a.OnStreamCard(card("S1", models.CardSourceStream, 42_000), false)

	snap := a.Snapshot()
	if len(snap.Fresh) != 1 || snap.Fresh[0].Address != "S1" {
		t.Fatalf("fresh column should hold only the stream arrival: %+v", snap.Fresh)
	}
	for _, c := range snap.Fresh {
		if c.Source == models.CardSourceNewIssue {
			t.Fatalf("stale fetched card %q reappeared during outage", c.Address)
		}
	}
	if len(snap.Momentum) != 0 {
		t.Fatalf("momentum column should stay empty: %+v", snap.Momentum)
	}
	if snap.Warning == "" {
		t.Fatalf("outage warning lost on rebuild")
	}
}

func TestRefreshOnceSkipsUnwiredSources(t *testing.T) {
	newIssue := &stubSource{
		name:  models.CardSourceNewIssue,
		cards: []models.TokenCard{card("N1", models.CardSourceNewIssue, 10_000)},
	}
	a := &Aggregator{NewIssue: newIssue}
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := a.Snapshot()
	if len(snap.Fresh) != 1 {
		t.Fatalf("fresh column: got %d cards", len(snap.Fresh))
	}
	if len(snap.Momentum) != 0 {
		t.Fatalf("momentum column should be empty with no momentum sources: %+v", snap.Momentum)
	}
	statuses := a.Statuses()
	if _, ok := statuses[models.CardSourceTrending]; ok {
		t.Fatalf("unwired source must not report a status")
	}
	if len(statuses) != 1 {
		t.Fatalf("statuses = %+v, want only %s", statuses, models.CardSourceNewIssue)
	}
}

func TestSourceFailureDegradesToEmpty(t *testing.T) {
	a, newIssue, trending := newTestAggregator(true)
	trending.err = context.DeadlineExceeded
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	snap := a.Snapshot()
	if len(snap.Momentum) != 0 {
		t.Fatalf("failed source should contribute nothing, got %d", len(snap.Momentum))
	}
	if len(snap.Fresh) == 0 {
		t.Fatalf("healthy source should still populate")
	}
	_ = newIssue

	st := a.Statuses()[models.CardSourceTrending]
	if st.Error == "" {
		t.Fatalf("source status should carry the error")
	}
}

func TestThresholdChangeIsRetroactive(t *testing.T) {
	a, newIssue, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	fetches := newIssue.calls

	a.SetMinMarketCap(5_000)
	snap := a.Snapshot()
	for _, item := range snap.Fresh {
		if item.MarketCap < 5_000 {
			t.Fatalf("card %q below new floor", item.Address)
		}
	}
	if len(snap.Fresh) != 1 {
		t.Fatalf("floor should drop N2: got %d cards", len(snap.Fresh))
	}
	if newIssue.calls != fetches {
		t.Fatalf("threshold change must not trigger a network call")
	}

	// Lowering the floor brings the held-back card straight back.
	a.SetMinMarketCap(0)
	if len(a.Snapshot().Fresh) != 2 {
		t.Fatalf("lowering floor should restore cards without refetch")
	}
}

func TestStreamArrivalPrependsAndWins(t *testing.T) {
	a, _, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	arrival := card("N1", models.CardSourceStream, 77_000)
	a.OnStreamCard(arrival, false)

	snap := a.Snapshot()
	if snap.Fresh[0].Address != "N1" || snap.Fresh[0].Source != models.CardSourceStream {
		t.Fatalf("stream arrival should lead the column and win the collision, got %+v", snap.Fresh[0])
	}
	if len(snap.Fresh) != 2 {
		t.Fatalf("duplicate must not inflate the column: got %d", len(snap.Fresh))
	}

	migration := card("M1", models.CardSourceStream, 50_000)
	a.OnStreamCard(migration, true)
	if got := a.Snapshot().Momentum[0].Address; got != "M1" {
		t.Fatalf("migration arrival should lead momentum, got %q", got)
	}
}

func TestStreamBufferCapped(t *testing.T) {
	a := &Aggregator{StreamBufferCap: 3}
	for i := 0; i < 10; i++ {
		a.OnStreamCard(card(string(rune('A'+i)), models.CardSourceStream, 1000), false)
	}
	a.mu.RLock()
	defer a.mu.RUnlock()
	if len(a.streamFresh) != 3 {
		t.Fatalf("stream buffer not capped: %d", len(a.streamFresh))
	}
	if a.streamFresh[0].Address != "J" {
		t.Fatalf("newest arrival should be first, got %q", a.streamFresh[0].Address)
	}
}

func TestStaleCycleDiscarded(t *testing.T) {
	a, _, _ := newTestAggregator(true)
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := a.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	applied := a.Snapshot().Cycle

	// A cycle issued before the applied one resolves late; it must not
	// clobber the newer snapshot.
	stale := map[string][]models.TokenCard{
		models.CardSourceNewIssue: {card("STALE", models.CardSourceNewIssue, 1)},
	}
	a.applyFetched(applied-1, time.Now().UTC(), stale, nil)

	snap := a.Snapshot()
	if snap.Cycle != applied {
		t.Fatalf("stale cycle overwrote snapshot: cycle %d", snap.Cycle)
	}
	for _, item := range snap.Fresh {
		if item.Address == "STALE" {
			t.Fatalf("stale data visible in column")
		}
	}
}

func TestRestoreOnlySeedsEmptySnapshot(t *testing.T) {
	saved := Snapshot{
		Fresh:       []models.TokenCard{card("R1", models.CardSourceNewIssue, 1000)},
		RefreshedAt: time.Now().UTC().Add(-time.Minute),
	}
	a := &Aggregator{Store: &stubStore{snap: &saved}}
	a.Restore(context.Background())
	snap := a.Snapshot()
	if len(snap.Fresh) != 1 || snap.Warning == "" {
		t.Fatalf("restore should seed columns with a pending warning: %+v", snap)
	}

	// A live snapshot is never replaced by the cached copy.
	b, _, _ := newTestAggregator(true)
	b.Store = &stubStore{snap: &saved}
	if err := b.RefreshOnce(context.Background()); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	b.Restore(context.Background())
	if got := b.Snapshot(); len(got.Fresh) != 2 {
		t.Fatalf("restore clobbered live snapshot: %+v", got)
	}
}

type stubStore struct {
	snap  *Snapshot
	saved []Snapshot
}

func (s *stubStore) Save(ctx context.Context, snap Snapshot) error {
	s.saved = append(s.saved, snap)
	return nil
}

func (s *stubStore) Load(ctx context.Context) (*Snapshot, error) {
	return s.snap, nil
}
