package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJaccard(t *testing.T) {
	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"equal strings", "Sunset over the bay", "Sunset over the bay", 1},
		{"both empty", "", "", 1},
		{"disjoint", "hello world", "goodbye moon", 0},
		{"case and punctuation", "Hello, World!", "hello world", 1},
		{"partial", "a b c d", "a b c e", 3.0 / 5.0},
		{"one empty", "hello", "", 0},
		{"repeated words", "go go go", "go", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Jaccard(tt.a, tt.b), 1e-9)
		})
	}
}

func TestJaccardThreshold(t *testing.T) {
	// 7 общих из 10 слов ровно на пороге
	a := "one two three four five six seven eight nine"
	b := "one two three four five six seven ten"
	assert.InDelta(t, 0.7, Jaccard(a, b), 1e-9)
	assert.GreaterOrEqual(t, Jaccard(a, b), DuplicateThreshold)

	assert.Less(t, Jaccard("one two three", "one two four"), DuplicateThreshold)
}
