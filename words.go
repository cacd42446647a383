package main

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// defaultWords keeps the server playable without an external word list.
var defaultWords = []string{
	"albero", "amore", "ancora", "aquila", "barca", "bosco", "caffè",
	"campana", "candela", "cavallo", "chiave", "cielo", "collina",
	"coltello", "corona", "cucina", "delfino", "divano", "drago",
	"estate", "farfalla", "fiamma", "finestra", "fiume", "foglia",
	"fontana", "formica", "fragola", "fulmine", "gelato", "giardino",
	"grano", "isola", "lampada", "leone", "libro", "luna", "lupo",
	"mare", "mattino", "melone", "montagna", "musica", "neve", "nido",
	"nuvola", "ombra", "orologio", "panettone", "pioggia", "ponte",
	"porta", "quadro", "radice", "ruota", "sabbia", "scala", "sole",
	"specchio", "stella", "strada", "tamburo", "tavolo", "tesoro",
	"torre", "treno", "uva", "valle", "vento", "vulcano", "zaino",
}

// WordSource is the shared pool sessions draw from.
type WordSource struct {
	words []string
}

func newWordSource(path string) (*WordSource, error) {
	if path == "" {
		return &WordSource{words: defaultWords}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var words []string
	if err := json.Unmarshal(data, &words); err != nil {
		return nil, err
	}

	filtered := words[:0]
	for _, w := range words {
		if strings.TrimSpace(w) != "" {
			filtered = append(filtered, w)
		}
	}
	if len(filtered) == 0 {
		return nil, errors.New("word list is empty")
	}

	return &WordSource{words: filtered}, nil
}

// deck returns a fresh per-session view over the source.
func (ws *WordSource) deck() *WordDeck {
	return &WordDeck{
		source: ws,
		used:   make(map[string]bool),
	}
}

// WordDeck tracks which words a single session has already seen. Not
// safe for concurrent use; callers hold the owning hub's lock.
type WordDeck struct {
	source *WordSource
	used   map[string]bool
}

func randIndex(n int) int {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}

// draw picks a random unused word distinct from exclude. Once every
// word has been seen the used set recycles so play can continue.
func (d *WordDeck) draw(exclude string) string {
	available := make([]string, 0, len(d.source.words))
	for _, w := range d.source.words {
		if !d.used[w] && w != exclude {
			available = append(available, w)
		}
	}

	if len(available) == 0 {
		d.reset()
		for _, w := range d.source.words {
			if w != exclude {
				available = append(available, w)
			}
		}
	}
	if len(available) == 0 {
		// Single-word list; nothing distinct exists.
		return exclude
	}

	word := available[randIndex(len(available))]
	d.used[word] = true
	return word
}

func (d *WordDeck) reset() {
	clear(d.used)
}
