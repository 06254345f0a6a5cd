package tokensource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"copydesk/internal/config"
	"copydesk/internal/models"
)

// NewIssueSource lists freshly created bonding-curve tokens from the
// launchpad API. These records have no direct price field pre-graduation;
// price is derived from the virtual reserves.
type NewIssueSource struct {
	HTTP    *http.Client
	BaseURL string
	Limit   int

	// USD per native-asset unit; the curve's collateral reserve is
	// denominated in the native asset.
	NativeUSDRate float64

	Now func() time.Time
}

type newIssueRaw struct {
	Mint        string `json:"mint"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	ImageURI    string `json:"image_uri"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
	Website     string `json:"website"`
	CreatedTS   int64  `json:"created_timestamp"`
	Complete    bool   `json:"complete"`
	RaydiumPool string `json:"raydium_pool"`

	USDMarketCap     float64 `json:"usd_market_cap"`
	MarketCap        float64 `json:"market_cap"`
	VirtualSolRsv    float64 `json:"virtual_sol_reserves"`
	VirtualTokenRsv  float64 `json:"virtual_token_reserves"`
	TotalSupply      float64 `json:"total_supply"`
	Volume24h        float64 `json:"volume_24h"`
	PriceChange24h   float64 `json:"price_change_24h"`
	HolderCount      int     `json:"holder_count"`
	TransactionCount int     `json:"txn_count"`
}

func NewNewIssueSource(cfg config.SourceConfig, nativeUSDRate float64) *NewIssueSource {
	return &NewIssueSource{
		HTTP:          httpClient(cfg),
		BaseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		Limit:         capLimit(cfg.Limit, 50, 50),
		NativeUSDRate: nativeUSDRate,
	}
}

func (s *NewIssueSource) Name() string { return models.CardSourceNewIssue }

func (s *NewIssueSource) Fetch(ctx context.Context) (Result, error) {
	url := fmt.Sprintf("%s/coins/latest?limit=%d&sort=created_timestamp&order=desc", s.BaseURL, s.Limit)
	body, err := getJSON(ctx, s.HTTP, url)
	if err != nil {
		return Result{}, err
	}
	var items []newIssueRaw
	if err := json.Unmarshal(body, &items); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	cards := make([]models.TokenCard, 0, len(items))
	for _, raw := range items {
		card, ok := s.transform(raw, now)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}
	return Result{Cards: cards, Raw: body}, nil
}

func (s *NewIssueSource) transform(raw newIssueRaw, now time.Time) (models.TokenCard, bool) {
	if !ValidAddress(raw.Mint) {
		return models.TokenCard{}, false
	}

	marketCap := firstPositive(raw.USDMarketCap, raw.MarketCap)

	price := DeriveCurvePrice(raw.VirtualSolRsv, raw.VirtualTokenRsv, s.NativeUSDRate)
	if price == 0 && marketCap > 0 && raw.TotalSupply > 0 {
		price = marketCap / raw.TotalSupply
	}

	graduated := raw.Complete || strings.TrimSpace(raw.RaydiumPool) != ""

	return models.TokenCard{
		Symbol:         strings.TrimSpace(raw.Symbol),
		Name:           DisplayName(raw.Name, raw.Symbol, raw.Mint),
		Address:        strings.TrimSpace(raw.Mint),
		PairAddress:    strings.TrimSpace(raw.RaydiumPool),
		LogoURL:        strings.TrimSpace(raw.ImageURI),
		Price:          price,
		MarketCap:      marketCap,
		Change24h:      raw.PriceChange24h,
		Volume24h:      raw.Volume24h,
		Holders:        raw.HolderCount,
		TxCount:        raw.TransactionCount,
		Age:            FormatAge(now, raw.CreatedTS),
		CreatedAtEpoch: NormalizeEpoch(raw.CreatedTS),
		Twitter:        strings.TrimSpace(raw.Twitter),
		Telegram:       strings.TrimSpace(raw.Telegram),
		Website:        strings.TrimSpace(raw.Website),
		Graduated:      graduated,
		Source:         models.CardSourceNewIssue,
	}, true
}

// TransformStreamPayload maps a single push-stream arrival (same launchpad
// shape, delivered over websocket) into a card. Stream items tagged
// CardSourceStream so they win merges against polled lists.
func (s *NewIssueSource) TransformStreamPayload(data []byte, now time.Time) (models.TokenCard, bool) {
	var raw newIssueRaw
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.TokenCard{}, false
	}
	card, ok := s.transform(raw, now)
	if !ok {
		return models.TokenCard{}, false
	}
	card.Source = models.CardSourceStream
	return card, true
}
