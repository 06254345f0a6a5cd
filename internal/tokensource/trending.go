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

// TrendingSource wraps a DEX-search style endpoint: nested base-token
// object, numbers mostly encoded as strings, per-window sub-objects.
type TrendingSource struct {
	HTTP    *http.Client
	BaseURL string
	Limit   int

	Now func() time.Time
}

type trendingEnvelope struct {
	Pairs []trendingRaw `json:"pairs"`
}

type trendingRaw struct {
	PairAddress string `json:"pairAddress"`
	BaseToken   struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Symbol  string `json:"symbol"`
	} `json:"baseToken"`
	Info struct {
		ImageURL string `json:"imageUrl"`
		Websites []struct {
			URL string `json:"url"`
		} `json:"websites"`
		Socials []struct {
			Type string `json:"type"`
			URL  string `json:"url"`
		} `json:"socials"`
	} `json:"info"`

	PriceUSD  string  `json:"priceUsd"`
	MarketCap float64 `json:"marketCap"`
	FDV       float64 `json:"fdv"`
	Volume    struct {
		H24 float64 `json:"h24"`
	} `json:"volume"`
	PriceChange struct {
		H24 float64 `json:"h24"`
	} `json:"priceChange"`
	Liquidity struct {
		USD float64 `json:"usd"`
	} `json:"liquidity"`
	Txns struct {
		H24 struct {
			Buys  int `json:"buys"`
			Sells int `json:"sells"`
		} `json:"h24"`
	} `json:"txns"`
	PairCreatedAt int64 `json:"pairCreatedAt"`
}

func NewTrendingSource(cfg config.SourceConfig) *TrendingSource {
	return &TrendingSource{
		HTTP:    httpClient(cfg),
		BaseURL: strings.TrimRight(cfg.BaseURL, "/"),
		Limit:   capLimit(cfg.Limit, 20, 20),
	}
}

func (s *TrendingSource) Name() string { return models.CardSourceTrending }

func (s *TrendingSource) Fetch(ctx context.Context) (Result, error) {
	url := fmt.Sprintf("%s/latest/dex/search?q=trending&limit=%d", s.BaseURL, s.Limit)
	body, err := getJSON(ctx, s.HTTP, url)
	if err != nil {
		return Result{}, err
	}
	var env trendingEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Result{}, err
	}

	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now()
	}
	limit := s.Limit
	cards := make([]models.TokenCard, 0, limit)
	for _, raw := range env.Pairs {
		if len(cards) >= limit {
			break
		}
		card, ok := transformTrending(raw, now)
		if !ok {
			continue
		}
		cards = append(cards, card)
	}
	return Result{Cards: cards, Raw: body}, nil
}

func transformTrending(raw trendingRaw, now time.Time) (models.TokenCard, bool) {
	addr := strings.TrimSpace(raw.BaseToken.Address)
	if !ValidAddress(addr) {
		return models.TokenCard{}, false
	}

	var twitter, telegram, website string
	for _, social := range raw.Info.Socials {
		switch strings.ToLower(social.Type) {
		case "twitter":
			twitter = social.URL
		case "telegram":
			telegram = social.URL
		}
	}
	if len(raw.Info.Websites) > 0 {
		website = raw.Info.Websites[0].URL
	}

	return models.TokenCard{
		Symbol:         strings.TrimSpace(raw.BaseToken.Symbol),
		Name:           DisplayName(raw.BaseToken.Name, raw.BaseToken.Symbol, addr),
		Address:        addr,
		PairAddress:    strings.TrimSpace(raw.PairAddress),
		LogoURL:        strings.TrimSpace(raw.Info.ImageURL),
		Price:          asFloat(raw.PriceUSD),
		MarketCap:      firstPositive(raw.MarketCap, raw.FDV),
		Change24h:      raw.PriceChange.H24,
		Volume24h:      raw.Volume.H24,
		Liquidity:      raw.Liquidity.USD,
		TxCount:        raw.Txns.H24.Buys + raw.Txns.H24.Sells,
		Age:            FormatAge(now, raw.PairCreatedAt),
		CreatedAtEpoch: NormalizeEpoch(raw.PairCreatedAt),
		Twitter:        strings.TrimSpace(twitter),
		Telegram:       strings.TrimSpace(telegram),
		Website:        strings.TrimSpace(website),
		Graduated:      true,
		Source:         models.CardSourceTrending,
	}, true
}
