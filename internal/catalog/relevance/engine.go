// Package relevance scores and filters raw catalog search pages so the
// agent only ever sees products that plausibly answer the query.
package relevance

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopagent-core-poc/server/internal/agent/model"
	"github.com/shopagent-core-poc/server/internal/catalog/relevance/lexicon"
	logx "github.com/shopagent-core-poc/server/pkg/logger"
)

// Engine is a pure function of its lexicon: no network access, no
// mutable state, safe for concurrent use.
type Engine struct {
	lex          *lexicon.Lexicon
	typeKeywords map[string][]string
	irrelevantRe map[string]*regexp.Regexp // single-word keywords, word-boundary matched
	gameSuffixRe []*regexp.Regexp
}

func NewEngine(lex *lexicon.Lexicon) (*Engine, error) {
	e := &Engine{
		lex:          lex,
		typeKeywords: make(map[string][]string, len(lex.ProductTypes)),
		irrelevantRe: make(map[string]*regexp.Regexp),
	}
	for _, pt := range lex.ProductTypes {
		e.typeKeywords[pt.Name] = pt.Keywords
	}
	for _, kw := range lex.Irrelevant {
		if strings.Contains(kw, " ") {
			continue // phrases are substring matched
		}
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			return nil, fmt.Errorf("compile irrelevant keyword %q: %w", kw, err)
		}
		e.irrelevantRe[kw] = re
	}
	for _, pattern := range lex.GameTitleSuffixes {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compile game title pattern %q: %w", pattern, err)
		}
		e.gameSuffixRe = append(e.gameSuffixRe, re)
	}
	return e, nil
}

// DeviceQuery reports whether the query names a device or appliance
// class. Such searches sort by best-selling rank so real hardware
// outranks gift cards and accessories.
func (e *Engine) DeviceQuery(query string) bool {
	q := strings.ToLower(query)
	return containsAny(q, e.lex.SortDevices)
}

// Rank filters products against the query and returns at most
// maxResults of them, best first. Scoring is deterministic and the
// sort is stable, so ranking an already ranked page again yields the
// same order.
func (e *Engine) Rank(query string, products []model.Product, maxResults int) []model.Product {
	if len(products) == 0 {
		return nil
	}
	if maxResults <= 0 {
		maxResults = len(products)
	}

	queryLower := strings.ToLower(query)
	queryTerms := strings.Fields(queryLower)
	detectedType := e.detectType(queryLower)
	specs := e.extractSpecs(queryTerms)
	explicitGameSearch := containsAny(queryLower, e.lex.GameSearchTerms)
	isDeviceSearch := containsAny(queryLower, e.lex.FilterDevices)
	accessoryInQuery := containsAny(queryLower, e.lex.Accessories)

	type scored struct {
		score   int
		product model.Product
	}
	var kept []scored      // passed the score threshold
	var allScored []scored // everything that survived the hard filters
	irrelevantCount := 0

	for _, p := range products {
		productText := strings.ToLower(p.Name + " " + p.ShortDescription + " " + p.ModelNumber)
		nameLower := strings.ToLower(p.Name)

		if kw := e.matchIrrelevant(productText); kw != "" {
			logx.Debug().Str("keyword", kw).Str("product", p.Name).Msg("filtered non-product listing")
			irrelevantCount++
			continue
		}

		if e.isApplianceAccessory(queryLower, nameLower) {
			continue
		}

		isConsoleSearch := detectedType != "" && containsString(e.lex.ConsoleTypes, detectedType)
		if isConsoleSearch && !explicitGameSearch && e.isGameTitle(detectedType, nameLower) {
			logx.Debug().Str("product", p.Name).Msg("filtered game title on console hardware search")
			continue
		}

		// "Sport Band for Apple Watch" is an accessory; devices say
		// "with Sport Band", never "for Apple Watch".
		isAccessoryProduct := containsAny(productText, e.lex.Accessories)
		accessoryByPattern := false
		if detectedType != "" && isDeviceSearch && !accessoryInQuery {
			for _, kw := range e.typeKeywords[detectedType] {
				if strings.Contains(productText, "for "+kw) {
					accessoryByPattern = true
					break
				}
			}
		}
		if isDeviceSearch && (isAccessoryProduct || accessoryByPattern) && !accessoryInQuery {
			continue
		}

		score := 0
		if detectedType != "" {
			if e.hasConflict(detectedType, nameLower) {
				continue
			}
			if containsAny(nameLower, e.typeKeywords[detectedType]) {
				switch {
				case isConsoleSearch && strings.Contains(nameLower, "console"):
					// Hardware must outrank game titles matching the platform name.
					score += 500
				case isConsoleSearch:
					// Platform matched without "console" is likely a game title.
				default:
					score += 200
				}
			}
		}

		if strings.Contains(nameLower, queryLower) {
			score += 100
		}

		missing := 0
		for _, spec := range specs {
			if strings.Contains(productText, spec) {
				score += 50
			} else {
				missing++
			}
		}
		score -= missing * 30

		if score < 0 {
			// Keep it rankable for the fallback, but never in the main list.
			allScored = append(allScored, scored{score, p})
			continue
		}

		for _, term := range queryTerms {
			if strings.Contains(productText, term) {
				score += 10
			}
		}
		if p.ModelNumber != "" && hasModelLikeTerm(queryTerms) {
			score += 20
		}
		if p.OnlineAvailability {
			score += 5
		}

		kept = append(kept, scored{score, p})
		allScored = append(allScored, scored{score, p})
	}

	byScore := func(s []scored) {
		sort.SliceStable(s, func(i, j int) bool { return s[i].score > s[j].score })
	}
	byScore(kept)
	out := make([]model.Product, 0, maxResults)
	for i := 0; i < len(kept) && i < maxResults; i++ {
		out = append(out, kept[i].product)
	}

	if len(out) == 0 {
		if float64(irrelevantCount)/float64(len(products)) >= 0.8 {
			logx.Warn().
				Int("irrelevant", irrelevantCount).
				Int("total", len(products)).
				Str("query", query).
				Msg("page dominated by non-product listings, returning nothing")
			return nil
		}
		if len(allScored) > 0 {
			logx.Warn().
				Str("query", query).
				Int("candidates", len(allScored)).
				Msg("score filter removed every product, falling back to best scored")
			byScore(allScored)
			for i := 0; i < len(allScored) && i < maxResults; i++ {
				out = append(out, allScored[i].product)
			}
		}
	}
	return out
}

// detectType returns the first product type whose any keyword appears
// in the query, or "".
func (e *Engine) detectType(queryLower string) string {
	for _, pt := range e.lex.ProductTypes {
		if containsAny(queryLower, pt.Keywords) {
			return pt.Name
		}
	}
	return ""
}

// extractSpecs pulls storage sizes and colors out of the query terms.
func (e *Engine) extractSpecs(queryTerms []string) []string {
	var specs []string
	for _, term := range queryTerms {
		if strings.Contains(term, "gb") || strings.Contains(term, "tb") {
			specs = append(specs, term)
		} else if containsString(e.lex.Colors, term) {
			specs = append(specs, term)
		}
	}
	return specs
}

// matchIrrelevant returns the matched keyword when the product is a
// gift card, warranty, service or similar non-product listing.
func (e *Engine) matchIrrelevant(productText string) string {
	for _, kw := range e.lex.Irrelevant {
		if strings.Contains(kw, " ") {
			if strings.Contains(productText, kw) {
				return kw
			}
		} else if e.irrelevantRe[kw].MatchString(productText) {
			return kw
		}
	}
	return ""
}

func (e *Engine) isApplianceAccessory(queryLower, nameLower string) bool {
	for applianceKw, fragments := range e.lex.ApplianceAccessories {
		if !strings.Contains(queryLower, applianceKw) {
			continue
		}
		for _, fragment := range fragments {
			if strings.Contains(nameLower, fragment) {
				return true
			}
		}
	}
	return false
}

// isGameTitle reports whether a product on a console hardware search is
// a game rather than the console. Catalog game titles carry the
// platform as a terminal suffix ("Spider-Man 2 - PlayStation 5");
// hardware names keep it mid-string. Anything naming "console" is
// hardware, full stop.
func (e *Engine) isGameTitle(detectedType, nameLower string) bool {
	if strings.Contains(nameLower, "console") {
		return false
	}
	// Switch game titles list several platforms; the device itself
	// mentions "nintendo switch" exactly once.
	if detectedType == "nintendo_switch" && strings.Count(nameLower, "nintendo switch") >= 2 {
		return true
	}
	for _, prefix := range e.lex.GameTitlePrefixes {
		if strings.HasPrefix(nameLower, prefix) {
			return true
		}
	}
	for _, ending := range e.lex.GameTitleEndings {
		if strings.HasSuffix(nameLower, ending) {
			return true
		}
	}
	for _, re := range e.gameSuffixRe {
		if re.MatchString(nameLower) {
			return true
		}
	}
	return false
}

func (e *Engine) hasConflict(detectedType, nameLower string) bool {
	return containsAny(nameLower, e.lex.Conflicts[detectedType])
}

// hasModelLikeTerm reports whether any query term looks like a model
// number fragment worth rewarding.
func hasModelLikeTerm(queryTerms []string) bool {
	for _, term := range queryTerms {
		t := strings.ReplaceAll(term, " ", "")
		if len(t) > 3 && isAlnum(t) {
			return true
		}
	}
	return false
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return len(s) > 0
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
