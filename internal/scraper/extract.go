package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricepeek/scrapeworker/helpers"
)

// Price token interpretations in priority order. Indian product pages mix
// lakh grouping, western thousands grouping and plain integers; a flat
// decimal match would silently read "2,999" as "2". Each grouped or plain
// interpretation is gated at >= 100 so rating or percentage fragments do not
// pass as prices.
var (
	lakhGroupedRe  = regexp.MustCompile(`\d{1,2},\d{2},\d{3}`)
	commaGroupedRe = regexp.MustCompile(`\d{1,2},\d{3}`)
	wholeNumberRe  = regexp.MustCompile(`\d{3,}`)
	decimalRe      = regexp.MustCompile(`\d+\.\d{1,2}`)
	digitRunRe     = regexp.MustCompile(`\d+`)
)

const minPlausiblePrice = 100

// ExtractPrice walks candidate nodes in order and returns the parsed price
// of the first one carrying non-empty text. The empty string means no
// candidate had text, never a guessed number.
func ExtractPrice(candidates ...*goquery.Selection) string {
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		text := strings.TrimSpace(candidate.First().Text())
		if text == "" {
			continue
		}
		return ParsePriceText(text)
	}
	return ""
}

// ParsePriceText cleans a raw price string down to digits, dots and commas
// and interprets it: lakh-grouped, then comma-grouped, then plain whole
// number, then decimal, then a bare digit run as the last resort.
func ParsePriceText(text string) string {
	cleaned := stripNonPrice(text)
	if cleaned == "" {
		return ""
	}

	if m := lakhGroupedRe.FindString(cleaned); m != "" {
		if v := strings.ReplaceAll(m, ",", ""); atoiOrZero(v) >= minPlausiblePrice {
			return v
		}
	}

	if m := commaGroupedRe.FindString(cleaned); m != "" {
		if v := strings.ReplaceAll(m, ",", ""); atoiOrZero(v) >= minPlausiblePrice {
			return v
		}
	}

	if m := wholeNumberRe.FindString(cleaned); m != "" {
		if atoiOrZero(m) >= minPlausiblePrice {
			return m
		}
	}

	if m := decimalRe.FindString(cleaned); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil && f >= minPlausiblePrice {
			return m
		}
	}

	// Low-confidence fallback, no minimum. Callers tolerate imprecision here.
	return digitRunRe.FindString(cleaned)
}

// ExtractCurrency returns the first character of the node's trimmed text
func ExtractCurrency(sel *goquery.Selection) string {
	if sel == nil {
		return ""
	}
	text := strings.TrimSpace(sel.First().Text())
	if text == "" {
		return ""
	}
	runes := []rune(text)
	return string(runes[0])
}

// Description selector groups, most structured first
var descriptionGroups = []string{
	".a-unordered-list .a-list-item",
	".a-expander-content p",
}

// ExtractDescription joins the trimmed text of the first matching selector
// group with newlines. With clean set, whitespace runs collapse to single
// spaces.
func ExtractDescription(doc *goquery.Document, clean bool) string {
	for _, group := range descriptionGroups {
		sel := doc.Find(group)
		if sel.Length() == 0 {
			continue
		}
		var parts []string
		sel.Each(func(_ int, s *goquery.Selection) {
			parts = append(parts, strings.TrimSpace(s.Text()))
		})
		text := strings.Join(parts, "\n")
		if clean {
			text = helpers.CollapseWhitespace(text)
		}
		return text
	}
	return ""
}

func stripNonPrice(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
