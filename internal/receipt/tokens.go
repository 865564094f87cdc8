package receipt

import (
	"regexp"
	"strconv"
	"strings"
)

// priceRe matches a currency amount: optional currency symbol, digits,
// decimal separator (dot or comma), exactly two fraction digits.
var priceRe = regexp.MustCompile(`[€$£]?\s*\d{1,6}[.,]\d{2}\b`)

// multiplierRe matches the "NxM" quantity form, e.g. "3x" in
// "Bananas 3x 0.25".
var multiplierRe = regexp.MustCompile(`(?i)\b(\d{1,4}(?:[.,]\d+)?)\s*x\b`)

// qtyUnitRe matches a quantity followed by a unit word from the closed
// unit set, e.g. "0,5 kg" or "1l".
var qtyUnitRe = regexp.MustCompile(
	`(?i)\b(\d{1,5}(?:[.,]\d+)?)\s*(kg|g|l|ml|stk|pcs|pc|pieces|piece|loaves|loaf|packs|pack|bunches|bunch|dozen)\b`)

// leadingQtyRe matches a bare leading item count, e.g. "2 Croissant".
var leadingQtyRe = regexp.MustCompile(`^(\d{1,3})\s+`)

// canonicalUnits maps matched unit tokens to their canonical form.
var canonicalUnits = map[string]string{
	"kg": "kg", "g": "g", "l": "l", "ml": "ml",
	"stk": "pieces", "pcs": "pieces", "pc": "pieces", "pieces": "pieces", "piece": "pieces",
	"loaf": "loaf", "loaves": "loaf",
	"pack": "pack", "packs": "pack",
	"bunch": "bunch", "bunches": "bunch",
	"dozen": "dozen",
}

// nonItemRe matches lines that are receipt scaffolding rather than
// purchased items: totals, tax lines, payment methods, footer noise.
var nonItemRe = regexp.MustCompile(`(?i)^\s*[*\-=\s]*(` +
	`sub\s*total|subtotal|total|tax|vat|mwst|ust|summe|gesamt|zwischensumme|` +
	`balance|change|cash|card|credit|debit|visa|mastercard|girocard|maestro|ec[- ]karte|` +
	`thank|danke|vielen dank|receipt|kassenbon|beleg|rechnung|invoice|` +
	`tel[.:]|www\.|http|uid|ust[- ]id|steuernr)`)

// totalRe matches lines carrying the receipt grand total. Subtotals are
// deliberately excluded.
var totalRe = regexp.MustCompile(`(?i)^\s*[*\-=\s]*(?:grand\s+)?(?:total|summe|gesamt(?:betrag)?)\b`)

// extractPrice finds the rightmost price token, returning its value and
// the line with that token removed. Receipts often print unit price
// then line total; the rightmost token is assumed to be the total.
func extractPrice(line string) (*float64, string) {
	locs := priceRe.FindAllStringIndex(line, -1)
	if len(locs) == 0 {
		return nil, line
	}
	last := locs[len(locs)-1]
	token := line[last[0]:last[1]]
	rest := line[:last[0]] + line[last[1]:]

	value, ok := parseAmount(token)
	if !ok {
		return nil, line
	}
	return &value, rest
}

// extractQuantity finds a quantity and optional unit, returning them and
// the line with the matched token removed. The NxM multiplier form wins
// over a quantity+unit pair, which wins over a bare leading count.
func extractQuantity(line string) (*float64, *string, string) {
	if loc := multiplierRe.FindStringSubmatchIndex(line); loc != nil {
		qty, ok := parseAmount(line[loc[2]:loc[3]])
		if ok && qty > 0 {
			unit := "pieces"
			rest := line[:loc[0]] + line[loc[1]:]
			return &qty, &unit, rest
		}
	}

	if loc := qtyUnitRe.FindStringSubmatchIndex(line); loc != nil {
		qty, ok := parseAmount(line[loc[2]:loc[3]])
		if ok && qty > 0 {
			unit := canonicalUnits[strings.ToLower(line[loc[4]:loc[5]])]
			rest := line[:loc[0]] + line[loc[1]:]
			return &qty, &unit, rest
		}
	}

	if loc := leadingQtyRe.FindStringSubmatchIndex(line); loc != nil {
		qty, ok := parseAmount(line[loc[2]:loc[3]])
		if ok && qty > 0 {
			rest := line[:loc[0]] + line[loc[1]:]
			return &qty, nil, rest
		}
	}

	return nil, nil, line
}

// parseAmount parses a numeric token that may carry a currency symbol
// and use a comma as decimal separator.
func parseAmount(token string) (float64, bool) {
	s := strings.TrimSpace(token)
	s = strings.TrimLeft(s, "€$£ ")
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// isNonItemLine reports whether the line is receipt scaffolding.
func isNonItemLine(line string) bool {
	return nonItemRe.MatchString(line)
}

// extractTotal returns the grand total amount when the line is a total
// line carrying a price token.
func extractTotal(line string) *float64 {
	if !totalRe.MatchString(line) {
		return nil
	}
	total, _ := extractPrice(line)
	return total
}
