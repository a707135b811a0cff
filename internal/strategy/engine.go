package strategy

import (
	"errors"

	"StockPulse/internal/model"
)

// CategoryCap bounds each category's contribution to confidence.
const CategoryCap = 30

// MaxReasons limits the reasons carried on a result.
const MaxReasons = 5

// Tiers maps confidence to label, action and position, highest first.
var Tiers = []struct {
	MinConfidence float64
	Tier          model.Tier
}{
	{75, model.Tier{Label: "strong buy", Action: model.ActionBuy, Position: "medium (30-50%)"}},
	{60, model.Tier{Label: "buy", Action: model.ActionBuy, Position: "light (20-30%)"}},
	{45, model.Tier{Label: "watch", Action: model.ActionHold, Position: "none"}},
}

// DefaultTier applies below the lowest threshold.
var DefaultTier = model.Tier{Label: "avoid", Action: model.ActionSell, Position: "none"}

// ErrNotAnnotated is returned when a series has no indicator columns.
var ErrNotAnnotated = errors.New("series has no indicators")

// mapTier maps a confidence to its Tier.
func mapTier(confidence float64) model.Tier {
	for _, t := range Tiers {
		if confidence >= t.MinConfidence {
			return t.Tier
		}
	}
	return DefaultTier
}

// Score runs the five categories on an annotated series. Scores are raw;
// the cap is applied by Confidence.
func Score(s *model.Series) ([]model.SignalCategory, error) {
	if s.Indicators == nil {
		return nil, ErrNotAnnotated
	}
	if s.Len() < 2 {
		return nil, errors.New("need at least two bars to score")
	}
	return []model.SignalCategory{
		scoreTrend(s),
		scoreMomentum(s),
		scoreVolume(s),
		scoreOscillators(s),
		scorePatterns(s),
	}, nil
}

// Confidence sums each category's score capped at CategoryCap and clamps the
// total to [0,100].
func Confidence(categories []model.SignalCategory) float64 {
	total := 0
	for _, c := range categories {
		total += min(max(c.Score, 0), CategoryCap)
	}
	return float64(min(max(total, 0), 100))
}

// Evaluate scores the series and maps the result to a tier.
func Evaluate(s *model.Series) (*model.TradeSignal, error) {
	categories, err := Score(s)
	if err != nil {
		return nil, err
	}
	confidence := Confidence(categories)

	var reasons []string
	for _, c := range categories {
		for _, r := range c.Reasons {
			if len(reasons) == MaxReasons {
				break
			}
			reasons = append(reasons, r)
		}
	}

	return &model.TradeSignal{
		Categories: categories,
		Confidence: confidence,
		Tier:       mapTier(confidence),
		TopReasons: reasons,
	}, nil
}
