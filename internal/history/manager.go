package history

import (
	"os"
	"path/filepath"
	"slices"

	"github.com/pelletier/go-toml/v2"
)

// Manager handles loading and saving history to TOML files
type Manager struct {
	historyDir string
}

// HistoryFile represents the structure of a history TOML file
type HistoryFile struct {
	Entries []string `toml:"entries"`
}

// NewManager creates a history manager storing files in dir, or in
// ~/.local/share/treestate/history when dir is empty
func NewManager(dir string) (*Manager, error) {
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(homeDir, ".local", "share", "treestate", "history")
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	return &Manager{
		historyDir: dir,
	}, nil
}

// Load loads history entries from a TOML file, oldest first
func (m *Manager) Load(filename string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(m.historyDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, err
	}

	var histFile HistoryFile
	if err := toml.Unmarshal(data, &histFile); err != nil {
		// A corrupted file starts a fresh history
		return []string{}, nil
	}
	if histFile.Entries == nil {
		histFile.Entries = []string{}
	}
	return histFile.Entries, nil
}

// Save saves history entries to a TOML file
func (m *Manager) Save(filename string, entries []string) error {
	data, err := toml.Marshal(HistoryFile{Entries: entries})
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(m.historyDir, filename), data, 0644)
}

// Add appends entry to the history in filename, moving an existing copy to
// the end and keeping at most limit entries
func (m *Manager) Add(filename, entry string, limit int) error {
	entries, err := m.Load(filename)
	if err != nil {
		return err
	}

	entries = slices.DeleteFunc(entries, func(e string) bool { return e == entry })
	entries = append(entries, entry)
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return m.Save(filename, entries)
}
