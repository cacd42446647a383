package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWordDeckDrawsDistinctWords(t *testing.T) {
	source, err := newWordSource("")
	if err != nil {
		t.Fatal(err)
	}
	deck := source.deck()

	word := deck.draw("")
	if word == "" {
		t.Fatal("draw returned an empty word")
	}

	for i := 0; i < 20; i++ {
		next := deck.draw(word)
		if next == word {
			t.Fatalf("draw %d repeated the previous word %q", i, word)
		}
		word = next
	}
}

func TestWordDeckRecycles(t *testing.T) {
	source := &WordSource{words: []string{"sole", "luna", "mare"}}
	deck := source.deck()

	word := ""
	for i := 0; i < 10; i++ {
		next := deck.draw(word)
		if next == "" || next == word {
			t.Fatalf("draw %d = %q after %q", i, next, word)
		}
		word = next
	}
}

func TestWordDeckSingleWord(t *testing.T) {
	source := &WordSource{words: []string{"sole"}}
	deck := source.deck()

	if got := deck.draw("sole"); got != "sole" {
		t.Fatalf("single-word draw = %q", got)
	}
}

func TestNewWordSourceFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`["sole", "", "  ", "luna"]`), 0o644); err != nil {
		t.Fatal(err)
	}

	source, err := newWordSource(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(source.words) != 2 {
		t.Fatalf("loaded %d words, want 2 (blanks filtered)", len(source.words))
	}
}

func TestNewWordSourceRejectsEmptyList(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.json")
	if err := os.WriteFile(path, []byte(`[]`), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := newWordSource(path); err == nil {
		t.Fatal("empty word list accepted")
	}
}

func TestNewWordSourceMissingFile(t *testing.T) {
	if _, err := newWordSource(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("missing word list accepted")
	}
}
