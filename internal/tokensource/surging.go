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

// SurgingSource lists tokens with abnormal short-window momentum. The feed
// uses terse field names and is loose about numeric encoding, so the
// unit-variant fields decode as `any` and go through asFloat.
type SurgingSource struct {
	HTTP    *http.Client
	BaseURL string
	Limit   int

	Now func() time.Time
}

type surgingEnvelope struct {
	Data []surgingRaw `json:"data"`
}

type surgingRaw struct {
	CA     string `json:"ca"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Logo   string `json:"logo"`
	Pair   string `json:"pair"`

	Price     any   `json:"price"`
	MC        any   `json:"mc"`
	Chg24h    any   `json:"chg24h"`
	V24h      any   `json:"v24h"`
	Liq       any   `json:"liq"`
	Holders   int   `json:"holders"`
	Txs       int   `json:"txs"`
	CreatedAt int64 `json:"created_at"`

	Graduated bool `json:"graduated"`
}

func NewSurgingSource(cfg config.SourceConfig) *SurgingSource {
	return &SurgingSource{
		HTTP:    httpClient(cfg),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Limit:   capLimit(cfg.Limit, 30, 50),
	}
}

func (s *SurgingSource) Name() string { return models.CardSourceSurging }

func (s *SurgingSource) Fetch(ctx context.Context) (Result, error) {
	url := fmt.Sprintf("%s/v1/tokens/surging?limit=%d", s.BaseURL, s.Limit)
	body, err := getJSON(ctx, s.HTTP, url)
	if err != nil {
		return Result{}, err
	}
	var env surgingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	cards := make([]models.TokenCard, 0, len(env.Data))
	for _, raw := range env.Data {
		if !ValidAddress(raw.CA) {
			continue
		}
		cards = append(cards, models.TokenCard{
			Symbol:         strings.TrimSpace(raw.Symbol),
			Name:           DisplayName(raw.Name, raw.Symbol, raw.CA),
			Address:        strings.TrimSpace(raw.CA),
			PairAddress:    strings.TrimSpace(raw.Pair),
			LogoURL:        strings.TrimSpace(raw.Logo),
			Price:          asFloat(raw.Price),
			MarketCap:      asFloat(raw.MC),
			Change24h:      asFloat(raw.Chg24h),
			Volume24h:      asFloat(raw.V24h),
			Liquidity:      asFloat(raw.Liq),
			Holders:        raw.Holders,
			TxCount:        raw.Txs,
			Age:            FormatAge(now, raw.CreatedAt),
			CreatedAtEpoch: NormalizeEpoch(raw.CreatedAt),
			Graduated:      raw.Graduated,
			Source:         models.CardSourceSurging,
		})
	}
	return Result{Cards: cards, Raw: body}, nil
}
