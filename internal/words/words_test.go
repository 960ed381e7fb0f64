package words

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultList(t *testing.T) {
	list := Default()
	if list.Len() < 3 {
		t.Fatalf("Embedded list too small: %d words", list.Len())
	}
}

func TestPickDistinct(t *testing.T) {
	list := Default()

	picked := list.Pick(3)
	if len(picked) != 3 {
		t.Fatalf("Expected 3 words, got %d", len(picked))
	}

	seen := make(map[string]bool)
	for _, w := range picked {
		if seen[w] {
			t.Errorf("Duplicate word picked: %s", w)
		}
		seen[w] = true
	}
}

func TestPickMoreThanAvailable(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "words.txt")
	if err := os.WriteFile(path, []byte("cat\ndog\n"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	picked := list.Pick(3)
	if len(picked) != 2 {
		t.Errorf("Expected 2 words, got %d", len(picked))
	}
}

func TestLoadFileDeduplicates(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "words.txt")
	if err := os.WriteFile(path, []byte("cat\ncat\ndog\n\ncat\n"), 0644); err != nil {
		t.Fatal(err)
	}

	list, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if list.Len() != 2 {
		t.Errorf("Expected 2 unique words, got %d", list.Len())
	}
}

func TestLoadFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "words.txt")
	if err := os.WriteFile(path, []byte("\n\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadFile(path); err == nil {
		t.Error("Expected error for empty word list")
	}
}
