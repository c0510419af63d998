package normalization

import (
	"strings"
	"unicode"
)

// FuzzyAlgorithms groups the string similarity measures used to rank
// master-data candidates.
type FuzzyAlgorithms struct{}

// NewFuzzyAlgorithms создает новый экземпляр алгоритмов нечеткого поиска
func NewFuzzyAlgorithms() *FuzzyAlgorithms {
	return &FuzzyAlgorithms{}
}

// ContainsEither reports whether either normalized name contains the other.
// Names shorter than minLen never match by containment.
func (fa *FuzzyAlgorithms) ContainsEither(a, b string, minLen int) bool {
	if len([]rune(a)) < minLen || len([]rune(b)) < minLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// NGramSimilarity вычисляет схожесть на основе N-грамм
// n - размер граммы (2 для bigram, 3 для trigram)
func (fa *FuzzyAlgorithms) NGramSimilarity(s1, s2 string, n int) float64 {
	if s1 == s2 {
		return 1.0
	}

	grams1 := fa.generateNGrams(s1, n)
	grams2 := fa.generateNGrams(s2, n)

	if len(grams1) == 0 && len(grams2) == 0 {
		return 1.0
	}
	if len(grams1) == 0 || len(grams2) == 0 {
		return 0.0
	}

	return fa.jaccardIndex(grams1, grams2)
}

// BigramSimilarity вычисляет схожесть на основе биграмм
func (fa *FuzzyAlgorithms) BigramSimilarity(s1, s2 string) float64 {
	return fa.NGramSimilarity(s1, s2, 2)
}

func (fa *FuzzyAlgorithms) generateNGrams(text string, n int) map[string]int {
	text = strings.ToLower(strings.TrimSpace(text))
	grams := make(map[string]int)

	runes := []rune(text)
	if len(runes) < n {
		if len(runes) > 0 {
			grams[string(runes)] = 1
		}
		return grams
	}

	for i := 0; i <= len(runes)-n; i++ {
		grams[string(runes[i:i+n])]++
	}
	return grams
}

func (fa *FuzzyAlgorithms) jaccardIndex(set1, set2 map[string]int) float64 {
	if len(set1) == 0 && len(set2) == 0 {
		return 1.0
	}
	if len(set1) == 0 || len(set2) == 0 {
		return 0.0
	}

	intersection := 0
	for key := range set1 {
		if _, exists := set2[key]; exists {
			intersection++
		}
	}

	union := len(set1) + len(set2) - intersection
	if union == 0 {
		return 0.0
	}
	return float64(intersection) / float64(union)
}

// Tokens splits text into lowercase letter/digit tokens.
func (fa *FuzzyAlgorithms) Tokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// DamerauLevenshteinDistance вычисляет расстояние Дамерау-Левенштейна
func (fa *FuzzyAlgorithms) DamerauLevenshteinDistance(s1, s2 string) int {
	r1 := []rune(s1)
	r2 := []rune(s2)
	len1 := len(r1)
	len2 := len(r2)

	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	matrix := make([][]int, len1+1)
	for i := range matrix {
		matrix[i] = make([]int, len2+1)
	}
	for i := 0; i <= len1; i++ {
		matrix[i][0] = i
	}
	for j := 0; j <= len2; j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len1; i++ {
		for j := 1; j <= len2; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}

			matrix[i][j] = min(
				matrix[i-1][j]+1,      // deletion
				matrix[i][j-1]+1,      // insertion
				matrix[i-1][j-1]+cost, // substitution
			)

			// транспозиция
			if i > 1 && j > 1 && r1[i-1] == r2[j-2] && r1[i-2] == r2[j-1] {
				matrix[i][j] = min(matrix[i][j], matrix[i-2][j-2]+cost)
			}
		}
	}

	return matrix[len1][len2]
}
