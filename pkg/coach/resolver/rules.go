package resolver

import (
	"strings"

	"chart-coach-be/internal/entity"
)

// Rule is a keyword trigger over lower-cased text. Keywords match as substrings,
// so "buyers" triggers "buyer".
type Rule struct {
	Name     string
	Keywords []string
	TLDR     string
	Full     string
}

func (r Rule) Matches(lower string) bool {
	for _, kw := range r.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (r Rule) Reply(mode entity.ResponseMode) string {
	if mode == entity.ResponseModeFull {
		return r.Full
	}
	return r.TLDR
}

// DefaultRules is evaluated top to bottom and the first match wins.
// A message mentioning both buyers and sellers gets the buyer/long reply.
var DefaultRules = []Rule{
	{
		Name:     "buyer_long",
		Keywords: []string{"buyer", "long"},
		TLDR: "Careful with the long idea. Buyers look strong here but price is extended into resistance; " +
			"wait for a pullback that holds before committing.",
		Full: "Bearish caution. The push higher is real, but it is stretched away from support and momentum " +
			"is already flattening. Late longs at these levels often become exit liquidity. " +
			"Plan: let price pull back to the last breakout level and show a higher low, then reassess. " +
			"The long idea is wrong if that level fails on a closing basis.",
	},
	{
		Name:     "seller_short",
		Keywords: []string{"seller", "short"},
		TLDR: "Sellers are in control. Lower highs and closes near the lows confirm the downside; " +
			"shorts are favoured while the last lower high holds.",
		Full: "Bearish confirmation. The sequence of lower highs and lower lows is intact and rallies are being " +
			"sold before they reach prior support turned resistance. Candles are closing near their lows, " +
			"which shows sellers defending every bounce. Plan: look for short entries on weak retests of " +
			"broken levels. The idea is wrong on a close above the most recent lower high.",
	},
}

// Fallback answers text that no rule matched.
var Fallback = Rule{
	Name: "fallback",
	TLDR: "Hard to call from text alone. Share a chart screenshot or pick a scenario and I will give you a read.",
	Full: "There is not enough here to form a view. A useful read needs structure: the trend on the timeframe " +
		"you trade, where the nearest support and resistance sit, and what volume is doing. Upload a chart " +
		"screenshot or choose one of the example scenarios and I will walk through bias, trigger, risk and target.",
}

// Match returns the first rule that fires on text, or Fallback.
func Match(rules []Rule, text string) Rule {
	lower := strings.ToLower(text)
	for _, rule := range rules {
		if rule.Matches(lower) {
			return rule
		}
	}
	return Fallback
}
