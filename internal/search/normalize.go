// Package search holds the text normalization rules used by listing search:
// keyword cleanup, the keyword-to-category lexicon, category list parsing and
// city alias expansion.
package search

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"bizdir/internal/models"
)

// nearMePhrases are stripped from keywords; they carry intent, not content.
var nearMePhrases = []string{
	"near me",
	"afër meje",
	"afer meje",
	"afër mej",
}

// keywordCategories maps whole normalized keywords onto a category.
var keywordCategories = map[string]models.BusinessCategory{
	"restaurant":  models.BusinessCategoryRestaurant,
	"restorant":   models.BusinessCategoryRestaurant,
	"cafe":        models.BusinessCategoryCafe,
	"coffee":      models.BusinessCategoryCafe,
	"coffee shop": models.BusinessCategoryCafe,
	"shop":        models.BusinessCategoryShop,
	"store":       models.BusinessCategoryShop,
	"market":      models.BusinessCategoryShop,
	"car wash":    models.BusinessCategoryService,
	"pharmacy":    models.BusinessCategoryService,
	"service":     models.BusinessCategoryService,
}

// NormalizeKeyword lowercases and trims the keyword, removes "near me"
// phrases and collapses runs of whitespace.
func NormalizeKeyword(raw string) string {
	k := strings.ToLower(strings.TrimSpace(raw))
	for _, phrase := range nearMePhrases {
		k = strings.ReplaceAll(k, phrase, " ")
	}
	return strings.Join(strings.Fields(k), " ")
}

// CategoryForKeyword returns the category a normalized keyword stands for.
func CategoryForKeyword(keyword string) (models.BusinessCategory, bool) {
	c, ok := keywordCategories[keyword]
	return c, ok
}

// ParseCategories parses a comma-separated category list. Unknown tokens are
// dropped. present is false when raw holds no tokens at all, which callers
// must treat differently from a list in which nothing parsed.
func ParseCategories(raw string) (categories []models.BusinessCategory, present bool) {
	seen := make(map[models.BusinessCategory]struct{})
	for _, token := range strings.Split(raw, ",") {
		token = strings.TrimSpace(token)
		if token == "" {
			continue
		}
		present = true
		c, ok := models.ParseBusinessCategory(token)
		if !ok {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		categories = append(categories, c)
	}
	return categories, present
}

// Fold lowercases s, strips diacritics and trims surrounding space, so that
// "Prishtinë" and "prishtine" compare equal.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}
