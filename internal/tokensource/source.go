package tokensource

import (
	"context"
	"encoding/json"

	"copydesk/internal/models"
)

// Result carries the unified cards plus the untouched upstream payload so
// the caller can snapshot it.
type Result struct {
	Cards []models.TokenCard
	Raw   json.RawMessage
}

// Source is one upstream token listing. Fetch never returns a partial-parse
// error for malformed items; bad records are defaulted or dropped. Network
// and HTTP failures are returned so the caller can decide between
// empty-and-continue and abort.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}
