package service

import (
	"regexp"
	"strings"
)

var digitPattern = regexp.MustCompile(`[0-9]`)

// SplitIngredients splits a raw ingredient list on commas, tolerating one
// space after each comma. Tokens are returned as typed; a blank list has no tokens.
func SplitIngredients(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(strings.ReplaceAll(raw, ", ", ","), ",")
}

// NormalizeIngredient strips digits and surrounding whitespace. The result is the ledger key.
func NormalizeIngredient(token string) string {
	return strings.TrimSpace(digitPattern.ReplaceAllString(token, ""))
}

// NormalizeIngredients normalizes every token, keeping order and duplicates.
func NormalizeIngredients(tokens []string) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = NormalizeIngredient(t)
	}
	return out
}
