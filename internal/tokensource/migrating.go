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

// MigratingSource lists tokens currently moving off their bonding curve onto
// a liquidity-pool venue. Per its contract, any failure yields an empty list
// rather than an error: migration listings are best-effort decoration.
type MigratingSource struct {
	HTTP    *http.Client
	BaseURL string
	Limit   int

	Now func() time.Time
}

type migratingEnvelope struct {
	Tokens []migratingRaw `json:"tokens"`
}

type migratingRaw struct {
	Address     string `json:"address"`
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	LogoURI     string `json:"logo_uri"`
	PoolAddress string `json:"pool_address"`
	CreatedAt   int64  `json:"created_at"`

	PriceUSD     float64 `json:"price_usd"`
	MarketCapUSD float64 `json:"market_cap_usd"`
	Change24h    float64 `json:"price_change_24h"`
	Volume24h    float64 `json:"volume_24h"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Holders      int     `json:"holders"`
	TxCount24h   int     `json:"tx_count_24h"`

	Twitter  string `json:"twitter"`
	Telegram string `json:"telegram"`
	Website  string `json:"website"`
}

func NewMigratingSource(cfg config.SourceConfig) *MigratingSource {
	return &MigratingSource{
		HTTP:    httpClient(cfg),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Limit:   capLimit(cfg.Limit, 20, 20),
	}
}

func (s *MigratingSource) Name() string { return models.CardSourceMigrating }

func (s *MigratingSource) Fetch(ctx context.Context) (Result, error) {
	url := fmt.Sprintf("%s/api/tokens/migrating?limit=%d", s.BaseURL, s.Limit)
	body, err := getJSON(ctx, s.HTTP, url)
	if err != nil {
		// Empty list, not an error.
		return Result{Cards: []models.TokenCard{}}, nil
	}
	var env migratingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{Cards: []models.TokenCard{}, Raw: body}, nil
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	cards := make([]models.TokenCard, 0, len(env.Tokens))
	for _, raw := range env.Tokens {
		if !ValidAddress(raw.Address) {
			continue
		}
		cards = append(cards, models.TokenCard{
			Symbol:         strings.TrimSpace(raw.Symbol),
			Name:           DisplayName(raw.Name, raw.Symbol, raw.Address),
			Address:        strings.TrimSpace(raw.Address),
			PairAddress:    strings.TrimSpace(raw.PoolAddress),
			LogoURL:        strings.TrimSpace(raw.LogoURI),
			Price:          raw.PriceUSD,
			MarketCap:      raw.MarketCapUSD,
			Change24h:      raw.Change24h,
			Volume24h:      raw.Volume24h,
			Liquidity:      raw.LiquidityUSD,
			Holders:        raw.Holders,
			TxCount:        raw.TxCount24h,
			Age:            FormatAge(now, raw.CreatedAt),
			CreatedAtEpoch: NormalizeEpoch(raw.CreatedAt),
			Twitter:        strings.TrimSpace(raw.Twitter),
			Telegram:       strings.TrimSpace(raw.Telegram),
			Website:        strings.TrimSpace(raw.Website),
			Graduated:      true,
			Source:         models.CardSourceMigrating,
		})
	}
	return Result{Cards: cards, Raw: body}, nil
}
