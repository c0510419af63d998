package normalization

import (
	"strings"
	"sync"

	"github.com/kljensen/snowball"
)

// Stemmer reduces words to their Snowball stem, with a small cache.
// Example: "invoices" -> "invoic", "certificates" -> "certif"
type Stemmer struct {
	language string
	cache    map[string]string
	mu       sync.RWMutex
}

// NewEnglishStemmer creates a stemmer for the Latin tokens found in file names.
func NewEnglishStemmer() *Stemmer {
	return &Stemmer{
		language: "english",
		cache:    make(map[string]string),
	}
}

// Stem returns the stemmed version of a word. Words snowball cannot handle
// (Arabic, digits) come back lowercased.
func (s *Stemmer) Stem(word string) string {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ""
	}

	s.mu.RLock()
	if cached, found := s.cache[normalized]; found {
		s.mu.RUnlock()
		return cached
	}
	s.mu.RUnlock()

	stemmed, err := snowball.Stem(normalized, s.language, true)
	if err != nil || stemmed == "" {
		stemmed = normalized
	}

	s.mu.Lock()
	s.cache[normalized] = stemmed
	s.mu.Unlock()

	return stemmed
}

// StemTokens returns stemmed versions of multiple words
func (s *Stemmer) StemTokens(tokens []string) []string {
	stemmed := make([]string, len(tokens))
	for i, token := range tokens {
		stemmed[i] = s.Stem(token)
	}
	return stemmed
}
