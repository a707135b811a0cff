package strategy

import (
	"math"

	"StockPulse/internal/model"
)

// IsHammer reports a long lower shadow (more than twice the body) with a
// negligible upper shadow: under half the body, or under a tenth of the
// bar's range when the body itself is tiny.
func IsHammer(b model.Bar) bool {
	body := math.Abs(b.Close - b.Open)
	lower := math.Min(b.Close, b.Open) - b.Low
	upper := b.High - math.Max(b.Close, b.Open)
	limit := math.Max(body*0.5, (b.High-b.Low)*0.1)
	return lower > body*2 && upper < limit
}

// IsMorningStar reports a bearish bar, a gap-down open, then a bullish bar
// closing above the first bar's body midpoint.
func IsMorningStar(first, second, third model.Bar) bool {
	gapDown := second.Open < first.Close
	recovery := third.Close > (first.Open+first.Close)/2
	return first.Bearish() && gapDown && third.Bullish() && recovery
}
