package score

import (
	"strings"
	"unicode"
)

// Point values per character. The five vowels are matched case-insensitively;
// every other character, including digits, punctuation, and whitespace, counts
// as a consonant.
const (
	VowelPoints     = 1
	ConsonantPoints = 2
)

// Score totals the point value of every character in word. It performs no
// validation; any string is scorable, and the empty string scores zero.
func Score(word string) int {
	total := 0
	for _, r := range word {
		if IsVowel(r) {
			total += VowelPoints
		} else {
			total += ConsonantPoints
		}
	}
	return total
}

func IsVowel(r rune) bool {
	switch unicode.ToLower(r) {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

// ScoreWords scores every whitespace-separated word in line, returning the
// combined total and the number of words scored.
func ScoreWords(line string) (int, int) {
	total := 0
	words := strings.Fields(line)
	for _, word := range words {
		total += Score(word)
	}
	return total, len(words)
}
