package scraper

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"pricepeek/scrapeworker/helpers"
)

// Candidate chains per logical field. Order is priority order and encodes
// which DOM regions are reliable: the dedicated price-to-pay region comes
// before generic price-styled elements, because those may carry
// strikethrough or deal prices instead of the charged price.
var (
	currentPriceCandidates = []Candidate{
		{Selector: ".priceToPay .a-price-whole"},
		{Selector: ".a-price-whole"},
		{Selector: ".a-size-base.a-color-price"},
		{Selector: ".a-button-selected .a-color-base"},
		{Selector: ".a-price .a-offscreen"},
	}

	originalPriceCandidates = []Candidate{
		{Selector: ".a-price.a-text-price .a-offscreen"},
		{Selector: "#listPrice"},
		{Selector: ".a-text-strike"},
		{Selector: "#priceblock_ourprice"},
		{Selector: "#priceblock_dealprice"},
	}

	categoryCandidates = []Candidate{
		{Selector: ".nav-a-content img", Kind: KindAttr, Attr: "alt"},
		{Selector: ".nav-categ-image", Kind: KindAttr, Attr: "alt"},
		{Selector: ".nav-a-content"},
		{Selector: "#nav-subnav .nav-a-content"},
		{Selector: ".a-subheader"},
	}

	reviewsCandidates = []Candidate{
		{Selector: "#acrCustomerReviewText"},
		{Selector: "[data-automation-id='reviews-block'] span"},
	}

	starsCandidates = []Candidate{
		{Selector: "#averageCustomerReviews .a-icon-star"},
		{Selector: "[data-automation-id='reviews-block'] .a-icon-star"},
	}

	dynamicImageCandidates = []Candidate{
		{Selector: "#imgBlkFront", Kind: KindAttr, Attr: "data-a-dynamic-image"},
		{Selector: "#landingImage", Kind: KindAttr, Attr: "data-a-dynamic-image"},
	}

	fallbackImageCandidates = []Candidate{
		{Selector: "#landingImage", Kind: KindAttr, Attr: "src"},
		{Selector: ".a-dynamic-image", Kind: KindAttr, Attr: "src"},
	}
)

// SelectField returns the first candidate's trimmed, non-empty result.
// Within a matched selector group the first node wins. Empty candidate
// lists and documents without matches yield the empty string.
func SelectField(doc *goquery.Document, candidates []Candidate) string {
	for _, c := range candidates {
		sel := doc.Find(c.Selector).First()
		if sel.Length() == 0 {
			continue
		}

		var value string
		switch c.Kind {
		case KindAttr:
			value, _ = sel.Attr(c.Attr)
		default:
			value = sel.Text()
		}

		value = strings.TrimSpace(value)
		if value != "" {
			return value
		}
	}
	return ""
}

// SelectPriceText runs the candidate chain through the locale-aware price
// extractor, preserving the configured order.
func SelectPriceText(doc *goquery.Document, candidates []Candidate) string {
	selections := make([]*goquery.Selection, 0, len(candidates))
	for _, c := range candidates {
		selections = append(selections, doc.Find(c.Selector).First())
	}
	return ExtractPrice(selections...)
}

// SelectImages reads the JSON-encoded image map from one of two known
// attributes and returns its keys as the candidate image URLs. On parse
// failure it falls back to a direct src attribute; both failing leaves the
// image list empty, which the assembler tolerates.
func SelectImages(doc *goquery.Document) []string {
	raw := SelectField(doc, dynamicImageCandidates)
	if raw != "" {
		var imageMap map[string]json.RawMessage
		if err := json.Unmarshal([]byte(raw), &imageMap); err == nil && len(imageMap) > 0 {
			urls := make([]string, 0, len(imageMap))
			for u := range imageMap {
				urls = append(urls, u)
			}
			return urls
		}
	}

	if src := SelectField(doc, fallbackImageCandidates); src != "" {
		return []string{src}
	}
	return nil
}

// SelectCategory tries the breadcrumb trail's last link, then the
// navigation-element chain, defaulting to the literal "category".
func SelectCategory(doc *goquery.Document) string {
	breadcrumb := doc.Find("#wayfinding-breadcrumbs_container").Find(".a-link-normal").Last()
	if text := strings.TrimSpace(breadcrumb.Text()); text != "" {
		return text
	}

	if text := SelectField(doc, categoryCandidates); text != "" {
		return text
	}
	return "category"
}

// SelectOutOfStock reports whether the availability block says the product
// is currently unavailable
func SelectOutOfStock(doc *goquery.Document) bool {
	text := strings.ToLower(strings.TrimSpace(doc.Find("#availability span").First().Text()))
	return text == "currently unavailable"
}

// leadingToken isolates the rating value from texts like "4.3 out of 5".
func leadingToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// ExtractFields pulls every raw field out of a parsed product page. Field
// extractors never fail on absence; missing values stay empty and are
// reconciled by the assembler.
func ExtractFields(doc *goquery.Document) Fields {
	return Fields{
		Title:             strings.TrimSpace(doc.Find("#productTitle").First().Text()),
		CurrentPriceText:  SelectPriceText(doc, currentPriceCandidates),
		OriginalPriceText: SelectPriceText(doc, originalPriceCandidates),
		Currency:          ExtractCurrency(doc.Find(".a-price-symbol")),
		DiscountText:      helpers.DigitsAndDots(doc.Find(".savingsPercentage").First().Text()),
		Images:            SelectImages(doc),
		Description:       ExtractDescription(doc, true),
		Category:          SelectCategory(doc),
		ReviewsText:       helpers.DigitsOnly(SelectField(doc, reviewsCandidates)),
		StarsText:         helpers.DigitsAndDots(leadingToken(SelectField(doc, starsCandidates))),
		OutOfStock:        SelectOutOfStock(doc),
	}
}
