package helper

import (
	"math"
	"strconv"
	"strings"
)

// PairKey — ключ пары "strategyID:securityID" для in-flight/cooldown мап.
func PairKey(strategyID int64, securityID string) string {
	return strconv.FormatInt(strategyID, 10) + ":" + securityID
}

func SplitPairKey(key string) (strategyID int64, securityID string, ok bool) {
	i := strings.IndexByte(key, ':')
	if i <= 0 || i >= len(key)-1 {
		return 0, "", false
	}
	id, err := strconv.ParseInt(key[:i], 10, 64)
	if err != nil {
		return 0, "", false
	}
	return id, key[i+1:], true
}

// RoundPrice округляет base+offset до целой цены.
func RoundPrice(base int64, offset float64) int64 {
	return int64(math.Round(float64(base) + offset))
}

// FloorDiv — floor(a/b), b > 0.
func FloorDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return int64(math.Floor(float64(a) / float64(b)))
}

// FloorPct — floor(v * pct / 100) для бюджетов.
func FloorPct(v int64, pct float64) int64 {
	if pct <= 0 || v <= 0 {
		return 0
	}
	return int64(math.Floor(float64(v) * pct / 100.0))
}
