package service

import (
	"strings"
	"unicode"
)

// DuplicateThreshold минимальное сходство, при котором пост считается повтором
const DuplicateThreshold = 0.7

// Jaccard сходство множеств слов (без учета регистра и пунктуации).
// Одинаковые строки дают 1, непересекающиеся множества слов дают 0.
func Jaccard(a, b string) float64 {
	if a == b {
		return 1
	}

	setA := wordSet(a)
	setB := wordSet(b)

	union := len(setA)
	intersection := 0
	for w := range setB {
		if _, ok := setA[w]; ok {
			intersection++
		} else {
			union++
		}
	}

	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
