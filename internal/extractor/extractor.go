// Package extractor parses rendered search results pages into structured
// records.
//
// Design decision: Extraction is deliberately forgiving. Search engines
// ship malformed and experimental markup constantly; a candidate result
// block missing its URL or title is skipped and counted, never allowed to
// abort the page. Selector lists carry several generations of markup class
// names because old and new variants coexist in the wild.
package extractor

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/serpharvest/serpharvest/internal/model"
)

// Selector sets for the current and recent SERP markup generations.
const (
	organicSelector     = ".tF2Cxc, .Ww4FFb"
	titleSelector       = "h3.LC20lb, h3.DKV0Md, h3"
	descriptionSelector = ".VwiC3b, .yXK7lf, .lEBKkf, [data-sncf=\"1\"]"
	relatedSelector     = ".AJLUJb a, .b2Rnsc a, .dg6jd"
	paaSelector         = ".related-question-pair span, [data-sgrd] div[role=\"button\"]"
)

// Extract parses a rendered SERP document into a SerpResult for the given
// keyword and page number. A document that parses as HTML but contains no
// recognizable results yields an empty (not nil) result; the caller decides
// whether that means a layout change or a genuinely empty page.
func Extract(rawHTML, keyword string, page int) (*model.SerpResult, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}

	result := &model.SerpResult{
		Keyword:   keyword,
		Page:      page,
		ScrapedAt: time.Now(),
	}

	extractOrganic(doc, result)
	result.RelatedKeywords = extractRelated(doc)
	result.PeopleAlsoAsk = extractPAA(doc)

	return result, nil
}

// extractOrganic walks the organic result blocks in rendering order.
// Position numbering is 1-based over the kept results, so skipped blocks
// never leave gaps.
func extractOrganic(doc *goquery.Document, result *model.SerpResult) {
	doc.Find(organicSelector).Each(func(_ int, sel *goquery.Selection) {
		link := sel.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			role, _ := a.Attr("role")
			return role != "button"
		}).First()

		href, ok := link.Attr("href")
		if !ok || !strings.HasPrefix(href, "http") {
			result.SkippedItems++
			return
		}

		title := strings.TrimSpace(sel.Find(titleSelector).First().Text())
		if title == "" {
			result.SkippedItems++
			return
		}

		description := strings.TrimSpace(sel.Find(descriptionSelector).First().Text())

		result.Organic = append(result.Organic, model.OrganicResult{
			URL:         href,
			Title:       title,
			Description: description,
			Domain:      model.DomainOf(href),
			Position:    len(result.Organic) + 1,
		})
	})
}

// extractRelated collects "related searches" strings, deduplicated within
// the page. Insertion order is kept for stable exports but carries no
// ranking meaning.
func extractRelated(doc *goquery.Document) []string {
	var related []string
	seen := make(map[string]struct{})

	doc.Find(relatedSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) <= 2 {
			return
		}
		key := model.NormalizeKeyword(text)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		related = append(related, text)
	})
	return related
}

// extractPAA collects "people also ask" questions. Only strings containing
// a question mark qualify; the PAA widget's expander buttons and labels
// share the same markup.
func extractPAA(doc *goquery.Document) []string {
	var questions []string
	seen := make(map[string]struct{})

	doc.Find(paaSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" || !strings.Contains(text, "?") {
			return
		}
		key := model.NormalizeKeyword(text)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		questions = append(questions, text)
	})
	return questions
}
