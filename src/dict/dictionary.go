package dict

import (
	_ "embed"
	"strings"
)

//go:embed data/english-words.txt
var wordsFile string

var words map[string]struct{}

// IsWord reports whether word appears in the embedded English word list.
// Lookup is case-insensitive.
func IsWord(word string) bool {
	_, ok := words[strings.ToUpper(word)]
	return ok
}

// Len reports the number of words loaded from the embedded list.
func Len() int {
	return len(words)
}

var TrieRoot *TrieNode

func init() {
	words = make(map[string]struct{})
	TrieRoot = &TrieNode{}

	for _, line := range strings.Split(wordsFile, "\n") {
		word := strings.TrimSpace(line)
		if word == "" {
			continue
		}
		words[word] = struct{}{}
		TrieRoot.insert(word)
	}
}
