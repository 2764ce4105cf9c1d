package utils

import (
	"math"
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Similarity scores a and b on a 0-100 scale using normalized Levenshtein
// distance, rounded to two decimals. Inputs are compared as given.
func Similarity(a, b string) float64 {
	if a == b {
		return 100
	}
	lev := metrics.NewLevenshtein()
	lev.CaseSensitive = true
	return math.Round(strutil.Similarity(a, b, lev)*10000) / 100
}

// SortTokens returns s with its space separated words in lexical order.
func SortTokens(s string) string {
	words := strings.Fields(s)
	sort.Strings(words)
	return strings.Join(words, " ")
}

// MinPairwiseSimilarity returns the lowest Similarity across every pair of
// values. ok is false when fewer than two values were given.
func MinPairwiseSimilarity(values []string) (score float64, ok bool) {
	if len(values) < 2 {
		return 0, false
	}
	score = 100
	for i := 0; i < len(values); i++ {
		for j := i + 1; j < len(values); j++ {
			if s := Similarity(values[i], values[j]); s < score {
				score = s
			}
		}
	}
	return score, true
}
