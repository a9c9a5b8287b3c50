// Package risk holds guard-rails applied when signals are sized into orders.
package risk

// Limits caps how much size the portfolio may take on per trade intent.
// Zero values disable the corresponding check.
type Limits struct {
	MaxNotionalPerTrade float64
	MaxQuantityPerTrade float64
}

// Allow reports whether a trade of the given notional and quantity is within limits.
func (l Limits) Allow(notional, quantity float64) bool {
	if l.MaxNotionalPerTrade > 0 && notional > l.MaxNotionalPerTrade {
		return false
	}
	if l.MaxQuantityPerTrade > 0 && quantity > l.MaxQuantityPerTrade {
		return false
	}
	return true
}
