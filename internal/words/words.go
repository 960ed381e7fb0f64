package words

import (
	"bufio"
	"bytes"
	"fmt"
	"math/rand"
	"os"

	_ "embed"
)

//go:embed words.txt
var defaultWords []byte

// A word list used to offer choices to the current drawer.
type List struct {
	words []string
}

// Default returns the list embedded in the binary.
func Default() *List {
	list, err := parse(bytes.NewReader(defaultWords))
	if err != nil {
		// The embedded list is fixed at build time; failing to parse it
		// is a programming error.
		panic(err)
	}
	return list
}

// LoadFile reads a newline-separated word list from disk.
func LoadFile(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open word list: %w", err)
	}
	defer f.Close()

	list, err := parse(f)
	if err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return list, nil
}

func parse(r interface{ Read([]byte) (int, error) }) (*List, error) {
	seen := make(map[string]bool)
	var words []string

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		word := scanner.Text()
		if word == "" || seen[word] {
			continue
		}
		seen[word] = true
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("word list is empty")
	}

	return &List{words: words}, nil
}

func (l *List) Len() int {
	return len(l.words)
}

// Pick returns n distinct words sampled without replacement. The whole
// list is shuffled and a prefix taken so the selection is not biased
// toward list order. If n exceeds the list size the full shuffled list
// is returned.
func (l *List) Pick(n int) []string {
	shuffled := make([]string, len(l.words))
	copy(shuffled, l.words)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
