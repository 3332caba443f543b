package tips

import (
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Percentage считает (price - reference) / reference * 100 с округлением до 2 знаков
// и форматирует как "20.00%". ok = false, если reference не положительное число
// или price не число: поле в этом случае не меняется.
func Percentage(price, reference string) (string, bool) {
	ref, err := decimal.NewFromString(strings.TrimSpace(reference))
	if err != nil || !ref.IsPositive() {
		return "", false
	}

	p, err := decimal.NewFromString(strings.TrimSpace(price))
	if err != nil {
		return "", false
	}

	pct := p.Sub(ref).Div(ref).Mul(hundred).Round(2)

	return pct.StringFixed(2) + "%", true
}
