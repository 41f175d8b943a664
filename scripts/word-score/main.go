package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lexitally/lexitally/src/score"
)

const DefaultFilename = "src/dict/data/english-words.txt"

func main() {
	filename := DefaultFilename
	if len(os.Args) > 1 {
		filename = os.Args[1]
	}

	entries, err := readEntries(filename)
	if err != nil {
		fmt.Printf("encountered error: %v\n", err)
		os.Exit(1)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].points != entries[j].points {
			return entries[i].points > entries[j].points
		}
		return entries[i].word < entries[j].word
	})

	total := 0
	for _, entry := range entries {
		fmt.Printf("%s %d\n", entry.word, entry.points)
		total += entry.points
	}
	fmt.Printf("scored %d words for a total of %d points\n", len(entries), total)
	os.Exit(0)
}

func readEntries(filename string) ([]Entry, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var result []Entry
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" {
			continue
		}
		result = append(result, Entry{word, score.Score(word)})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type Entry struct {
	word   string
	points int
}
