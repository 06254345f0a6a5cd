package tokensource

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

// msEpochFloor disambiguates second- vs millisecond-resolution epochs by
// magnitude: anything at or above 1e12 is milliseconds.
const msEpochFloor = 1_000_000_000_000

// NormalizeEpoch returns a second-resolution unix timestamp, or 0 when the
// input is absent or nonsensical.
func NormalizeEpoch(epoch int64) int64 {
	if epoch <= 0 {
		return 0
	}
	if epoch >= msEpochFloor {
		return epoch / 1000
	}
	return epoch
}

// FormatAge renders the elapsed time since a creation epoch using the
// coarsest unit that fits. Missing timestamps render as "N/A".
func FormatAge(now time.Time, epoch int64) string {
	sec := NormalizeEpoch(epoch)
	if sec <= 0 {
		return "N/A"
	}
	elapsed := now.Unix() - sec
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed < 60:
		return fmt.Sprintf("%ds", elapsed)
	case elapsed < 60*60:
		return fmt.Sprintf("%dm", elapsed/60)
	case elapsed < 24*60*60:
		return fmt.Sprintf("%dh", elapsed/3600)
	case elapsed < 30*24*60*60:
		return fmt.Sprintf("%dd", elapsed/86400)
	default:
		return fmt.Sprintf("%dmo", elapsed/(30*24*60*60))
	}
}

// DeriveCurvePrice computes a bonding-curve token's price from its virtual
// reserves, scaled by rate when the collateral reserve is denominated in the
// native asset. Zero reserves yield zero, never an error.
func DeriveCurvePrice(virtualCollateral, virtualToken, rate float64) float64 {
	if virtualCollateral <= 0 || virtualToken <= 0 {
		return 0
	}
	price := virtualCollateral / virtualToken
	if rate > 0 {
		price *= rate
	}
	return price
}

// DisplayName walks the fallback chain: name, then symbol, then a short
// prefix of the address.
func DisplayName(name, symbol, address string) string {
	if s := strings.TrimSpace(name); s != "" {
		return s
	}
	if s := strings.TrimSpace(symbol); s != "" {
		return s
	}
	addr := strings.TrimSpace(address)
	if len(addr) > 6 {
		return addr[:6]
	}
	return addr
}

// ValidAddress checks that the address is base58 and decodes to a 32-byte
// key. Cards with junk addresses would poison the dedupe key, so they are
// dropped at transform time.
func ValidAddress(address string) bool {
	raw, err := base58.Decode(strings.TrimSpace(address))
	if err != nil {
		return false
	}
	return len(raw) == 32
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}

func firstPositive(values ...float64) float64 {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	return 0
}

// asFloat tolerates the unit variance of upstream numeric fields: numbers,
// numeric strings, or nothing at all.
func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case float32:
		return float64(t)
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}
