package models

// Token-card source tags, in ascending "age" of the token's lifecycle.
const (
	CardSourceStream    = "stream"
	CardSourceNewIssue  = "new_issue"
	CardSourceMigrating = "migrating"
	CardSourceTrending  = "trending"
	CardSourceSurging   = "surging"
)

// TokenCard is the unified display projection every upstream shape maps
// into. It is derived, never persisted; Address is the only stable identity
// across sources and serves as the dedupe key.
type TokenCard struct {
	Symbol      string `json:"symbol"`
	Name        string `json:"name"`
	Address     string `json:"address"`
	PairAddress string `json:"pair_address,omitempty"`
	LogoURL     string `json:"logo_url,omitempty"`

	Price     float64 `json:"price"`
	MarketCap float64 `json:"market_cap"`
	Change24h float64 `json:"change_24h"`
	Volume24h float64 `json:"volume_24h"`
	Liquidity float64 `json:"liquidity"`

	Holders int `json:"holders"`
	TxCount int `json:"tx_count"`

	Age            string `json:"age"`
	CreatedAtEpoch int64  `json:"created_at_epoch,omitempty"`

	Twitter  string `json:"twitter,omitempty"`
	Telegram string `json:"telegram,omitempty"`
	Website  string `json:"website,omitempty"`

	Graduated bool   `json:"graduated"`
	Source    string `json:"source"`
}
