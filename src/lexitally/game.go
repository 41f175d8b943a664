package lexitally

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lexitally/lexitally/src/dict"
	"github.com/lexitally/lexitally/src/score"
)

// DictionaryBonus is added to a submission's points when the word appears in
// the embedded dictionary.
const DictionaryBonus = 3

type Result struct {
	Word       string
	Points     int
	Bonus      int
	Dictionary bool
}

func (r Result) Total() int {
	return r.Points + r.Bonus
}

func (r Result) String() string {
	if r.Dictionary {
		return fmt.Sprintf("**%s** scores %d points (%d + %d dictionary bonus)", r.Word, r.Total(), r.Points, r.Bonus)
	}
	return fmt.Sprintf("**%s** scores %d points", r.Word, r.Points)
}

// Evaluate scores a single-word submission. Any characters are accepted; the
// scorer itself never rejects input, so the only invalid submissions are
// empty messages and messages containing more than one word.
func Evaluate(content string) (Result, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return Result{}, errors.New("nothing to score; send a single word")
	}
	words := strings.Fields(trimmed)
	if len(words) > 1 {
		return Result{}, fmt.Errorf("expected a single word, got %d; send one word at a time", len(words))
	}
	result := Result{
		Word:   trimmed,
		Points: score.Score(trimmed),
	}
	if dict.IsWord(trimmed) {
		result.Dictionary = true
		result.Bonus = DictionaryBonus
	}
	return result, nil
}
