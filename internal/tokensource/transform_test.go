package tokensource

import (
	"testing"
	"time"
)

func TestFormatAge(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name  string
		epoch int64
		want  string
	}{
		{"45 seconds", now.Add(-45 * time.Second).Unix(), "45s"},
		{"5 minutes", now.Add(-5 * time.Minute).Unix(), "5m"},
		{"3 hours", now.Add(-3 * time.Hour).Unix(), "3h"},
		{"10 days", now.Add(-10 * 24 * time.Hour).Unix(), "10d"},
		{"90 days", now.Add(-90 * 24 * time.Hour).Unix(), "3mo"},
		{"missing", 0, "N/A"},
		{"negative", -5, "N/A"},
	}
	for _, tt := range tests {
		if got := FormatAge(now, tt.epoch); got != tt.want {
			t.Fatalf("%s: FormatAge = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestFormatAgeMillisecondEpoch(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ms := now.Add(-5*time.Minute).Unix() * 1000
	if got := FormatAge(now, ms); got != "5m" {
		t.Fatalf("FormatAge(ms epoch) = %q, want %q", got, "5m")
	}
}

func TestNormalizeEpoch(t *testing.T) {
	if got := NormalizeEpoch(1717243200); got != 1717243200 {
		t.Fatalf("seconds passthrough: got %d", got)
	}
	if got := NormalizeEpoch(1717243200000); got != 1717243200 {
		t.Fatalf("ms downscale: got %d", got)
	}
	if got := NormalizeEpoch(0); got != 0 {
		t.Fatalf("zero: got %d", got)
	}
}

func TestDeriveCurvePrice(t *testing.T) {
	if got := DeriveCurvePrice(30, 1_000_000, 150); got != 30.0/1_000_000*150 {
		t.Fatalf("got %v", got)
	}
	if got := DeriveCurvePrice(0, 1_000_000, 150); got != 0 {
		t.Fatalf("zero collateral reserve should yield 0, got %v", got)
	}
	if got := DeriveCurvePrice(30, 0, 150); got != 0 {
		t.Fatalf("zero token reserve should yield 0, got %v", got)
	}
	// No rate: plain reserve ratio.
	if got := DeriveCurvePrice(10, 5, 0); got != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestDisplayNameFallbackChain(t *testing.T) {
	addr := "So11111111111111111111111111111111111111112"
	if got := DisplayName("Doge Classic", "DOGC", addr); got != "Doge Classic" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayName("", "DOGC", addr); got != "DOGC" {
		t.Fatalf("got %q", got)
	}
	if got := DisplayName("", "", addr); got != addr[:6] {
		t.Fatalf("got %q, want %q", got, addr[:6])
	}
	if got := DisplayName("  ", "\t", addr); got != addr[:6] {
		t.Fatalf("whitespace-only fields should fall through, got %q", got)
	}
}

func TestValidAddress(t *testing.T) {
	if !ValidAddress("So11111111111111111111111111111111111111112") {
		t.Fatalf("known mint rejected")
	}
	if ValidAddress("") {
		t.Fatalf("empty accepted")
	}
	if ValidAddress("not-base58-0OIl") {
		t.Fatalf("junk accepted")
	}
	if ValidAddress("abc") {
		t.Fatalf("short decode accepted")
	}
}

func TestAsFloat(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{12.5, 12.5},
		{"12.5", 12.5},
		{" 42 ", 42},
		{int64(7), 7},
		{nil, 0},
		{"garbage", 0},
		{true, 0},
	}
	for _, tt := range tests {
		if got := asFloat(tt.in); got != tt.want {
			t.Fatalf("asFloat(%#v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewIssueTransformMarketCapFallback(t *testing.T) {
	src := &NewIssueSource{NativeUSDRate: 150}
	now := time.Now().UTC()

	raw := newIssueRaw{
		Mint:      "So11111111111111111111111111111111111111112",
		Symbol:    "TST",
		MarketCap: 42000,
	}
	card, ok := src.transform(raw, now)
	if !ok {
		t.Fatalf("transform rejected valid record")
	}
	if card.MarketCap != 42000 {
		t.Fatalf("market cap fallback: got %v, want 42000", card.MarketCap)
	}

	raw.USDMarketCap = 55000
	card, _ = src.transform(raw, now)
	if card.MarketCap != 55000 {
		t.Fatalf("usd_market_cap should win: got %v", card.MarketCap)
	}
}

func TestNewIssueTransformMissingReservesPriceZero(t *testing.T) {
	src := &NewIssueSource{NativeUSDRate: 150}
	raw := newIssueRaw{
		Mint:   "So11111111111111111111111111111111111111112",
		Symbol: "TST",
	}
	card, ok := src.transform(raw, time.Now().UTC())
	if !ok {
		t.Fatalf("transform rejected valid record")
	}
	if card.Price != 0 {
		t.Fatalf("price without reserves or supply should be 0, got %v", card.Price)
	}
}

func TestNewIssueTransformReservePrice(t *testing.T) {
	src := &NewIssueSource{NativeUSDRate: 150}
	raw := newIssueRaw{
		Mint:            "So11111111111111111111111111111111111111112",
		Symbol:          "TST",
		VirtualSolRsv:   30,
		VirtualTokenRsv: 1_000_000,
	}
	card, _ := src.transform(raw, time.Now().UTC())
	want := 30.0 / 1_000_000 * 150
	if card.Price != want {
		t.Fatalf("reserve-derived price: got %v, want %v", card.Price, want)
	}
}

func TestNewIssueTransformGraduation(t *testing.T) {
	src := &NewIssueSource{}
	now := time.Now().UTC()
	raw := newIssueRaw{Mint: "So11111111111111111111111111111111111111112"}

	card, _ := src.transform(raw, now)
	if card.Graduated {
		t.Fatalf("fresh curve token should not be graduated")
	}
	raw.Complete = true
	if card, _ = src.transform(raw, now); !card.Graduated {
		t.Fatalf("complete flag should graduate")
	}
	raw.Complete = false
	raw.RaydiumPool = "pool111"
	if card, _ = src.transform(raw, now); !card.Graduated {
		t.Fatalf("pool address should graduate")
	}
}

func TestNewIssueTransformDropsInvalidAddress(t *testing.T) {
	src := &NewIssueSource{}
	if _, ok := src.transform(newIssueRaw{Mint: "nope"}, time.Now().UTC()); ok {
		t.Fatalf("invalid mint accepted")
	}
}

func TestTransformStreamPayloadTagsSource(t *testing.T) {
	src := &NewIssueSource{NativeUSDRate: 150}
	payload := []byte(`{"mint":"So11111111111111111111111111111111111111112","symbol":"PMP","name":"Pumper","usd_market_cap":9000}`)
	card, ok := src.TransformStreamPayload(payload, time.Now().UTC())
	if !ok {
		t.Fatalf("stream payload rejected")
	}
	if card.Source != "stream" {
		t.Fatalf("stream card source = %q", card.Source)
	}
	if card.MarketCap != 9000 {
		t.Fatalf("market cap = %v", card.MarketCap)
	}
	if _, ok := src.TransformStreamPayload([]byte("{"), time.Now().UTC()); ok {
		t.Fatalf("malformed payload accepted")
	}
}

func TestTrendingTransform(t *testing.T) {
	now := time.Now().UTC()
	raw := trendingRaw{}
	raw.PairAddress = "pair111"
	raw.BaseToken.Address = "So11111111111111111111111111111111111111112"
	raw.BaseToken.Symbol = "WIF"
	raw.PriceUSD = "1.25"
	raw.FDV = 88000
	raw.Volume.H24 = 12345
	raw.Txns.H24.Buys = 10
	raw.Txns.H24.Sells = 5

	card, ok := transformTrending(raw, now)
	if !ok {
		t.Fatalf("rejected valid pair")
	}
	if card.Price != 1.25 {
		t.Fatalf("string price parse: got %v", card.Price)
	}
	if card.MarketCap != 88000 {
		t.Fatalf("fdv fallback: got %v", card.MarketCap)
	}
	if card.TxCount != 15 {
		t.Fatalf("tx count: got %d", card.TxCount)
	}
	if card.Name != "WIF" {
		t.Fatalf("name fallback to symbol: got %q", card.Name)
	}
	if card.Age != "N/A" {
		t.Fatalf("missing pairCreatedAt should give N/A, got %q", card.Age)
	}
}
