package templates

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// Library loads a bank on first use. Loading happens at most once; later
// calls return the same bank and error.
type Library struct {
	ranksDir string
	suitsDir string

	once sync.Once
	bank *Bank
	err  error
}

// NewLibrary creates a lazily loaded library over the two asset directories.
func NewLibrary(ranksDir, suitsDir string) *Library {
	return &Library{ranksDir: ranksDir, suitsDir: suitsDir}
}

// Dirs returns the rank and suit asset directories.
func (l *Library) Dirs() (string, string) {
	return l.ranksDir, l.suitsDir
}

// Bank returns the loaded bank. An empty bank is returned together with
// ErrNoTemplates so callers can keep going on OCR and geometry alone.
func (l *Library) Bank() (*Bank, error) {
	l.once.Do(func() {
		l.bank, l.err = LoadBank(l.ranksDir, l.suitsDir)
		switch {
		case errors.Is(l.err, ErrNoTemplates):
			log.Printf("No card templates found in %s and %s", l.ranksDir, l.suitsDir)
		case l.err != nil:
			log.Printf("Failed to load card templates: %v", l.err)
		default:
			log.Printf("Loaded %d rank and %d suit templates", len(l.bank.Ranks), len(l.bank.Suits))
		}
	})
	return l.bank, l.err
}

// Close releases the bank if it was loaded.
func (l *Library) Close() {
	l.once.Do(func() { l.bank = &Bank{} })
	l.bank.Close()
}

// DefaultDirs resolves the rank and suit asset directories. POKERIA_RANKS_DIR
// and POKERIA_SUITS_DIR take precedence over the default root.
func DefaultDirs() (string, string) {
	root := DefaultRoot()
	ranks := filepath.Join(root, "ranks")
	suits := filepath.Join(root, "suits")
	if v := os.Getenv("POKERIA_RANKS_DIR"); v != "" {
		ranks = v
	}
	if v := os.Getenv("POKERIA_SUITS_DIR"); v != "" {
		suits = v
	}
	return ranks, suits
}

// DefaultRoot returns assets/templates next to the executable when present,
// falling back to assets/templates under the working directory.
func DefaultRoot() string {
	if exe, err := os.Executable(); err == nil {
		for _, dir := range []string{
			filepath.Join(filepath.Dir(exe), "assets", "templates"),
			filepath.Join(filepath.Dir(exe), "..", "assets", "templates"),
		} {
			if info, err := os.Stat(dir); err == nil && info.IsDir() {
				return dir
			}
		}
	}
	return filepath.Join("assets", "templates")
}
