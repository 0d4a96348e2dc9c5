package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/ncruces/go-strftime"

	"github.com/pstuifzand/treestate/internal/model"
)

const (
	backupStamp      = "%Y%m%d_%H%M%S"
	backupTimeFormat = "20060102_150405"
	backupExt        = ".json"
)

// BackupManager writes timestamped snapshots of a forest before it is saved
type BackupManager struct {
	backupDir string
}

// backupDocument is the on-disk shape of a backup
type backupDocument struct {
	OriginalFile string       `json:"originalFile"`
	Items        []model.Item `json:"items"`
}

// BackupMetadata holds parsed information about a backup file
type BackupMetadata struct {
	FilePath     string
	Timestamp    time.Time
	SessionID    string
	OriginalFile string
}

// NewBackupManager creates a backup manager writing to dir, or to the
// default backup directory when dir is empty
func NewBackupManager(dir string) (*BackupManager, error) {
	if dir == "" {
		dir = GetBackupDir()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create backup directory: %w", err)
	}
	return &BackupManager{backupDir: dir}, nil
}

// GetBackupDir returns the default backup directory
func GetBackupDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "treestate", "backups")
	}
	return filepath.Join(homeDir, ".local", "share", "treestate", "backups")
}

// CreateBackup stores items together with the absolute path of the file they
// belong to, and returns the path of the backup
func (bm *BackupManager) CreateBackup(items []model.Item, originalPath, sessionID string) (string, error) {
	absPath, err := filepath.Abs(originalPath)
	if err != nil {
		absPath = originalPath
	}

	data, err := json.MarshalIndent(backupDocument{OriginalFile: absPath, Items: items}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal backup JSON: %w", err)
	}

	name := fmt.Sprintf("%s_%s%s", strftime.Format(backupStamp, time.Now()), sessionID, backupExt)
	path := filepath.Join(bm.backupDir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write backup file: %w", err)
	}
	return path, nil
}

// FindBackupsForFile returns the backups of originalPath, oldest first.
// An empty originalPath returns every backup.
func (bm *BackupManager) FindBackupsForFile(originalPath string) ([]BackupMetadata, error) {
	entries, err := os.ReadDir(bm.backupDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var searchPath string
	if originalPath != "" {
		if abs, err := filepath.Abs(originalPath); err == nil {
			searchPath = filepath.Clean(abs)
		} else {
			searchPath = originalPath
		}
	}

	var backups []BackupMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), backupExt) {
			continue
		}
		meta, err := parseBackup(filepath.Join(bm.backupDir, entry.Name()))
		if err != nil {
			continue
		}
		if searchPath != "" && filepath.Clean(meta.OriginalFile) != searchPath {
			continue
		}
		backups = append(backups, meta)
	}

	slices.SortFunc(backups, func(a, b BackupMetadata) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return backups, nil
}

// LoadBackup reads the forest stored in a backup file
func LoadBackup(path string) ([]model.Item, error) {
	doc, err := readBackup(path)
	if err != nil {
		return nil, err
	}
	return doc.Items, nil
}

// parseBackup extracts metadata from a backup named
// YYYYMMDD_HHMMSS_<session>.json
func parseBackup(path string) (BackupMetadata, error) {
	name := strings.TrimSuffix(filepath.Base(path), backupExt)
	if len(name) < len(backupTimeFormat)+2 || name[len(backupTimeFormat)] != '_' {
		return BackupMetadata{}, fmt.Errorf("invalid backup name %s", name)
	}

	timestamp, err := time.ParseInLocation(backupTimeFormat, name[:len(backupTimeFormat)], time.Local)
	if err != nil {
		return BackupMetadata{}, fmt.Errorf("invalid timestamp format: %w", err)
	}

	doc, err := readBackup(path)
	if err != nil {
		return BackupMetadata{}, err
	}

	return BackupMetadata{
		FilePath:     path,
		Timestamp:    timestamp,
		SessionID:    name[len(backupTimeFormat)+1:],
		OriginalFile: doc.OriginalFile,
	}, nil
}

func readBackup(path string) (backupDocument, error) {
	var doc backupDocument
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, fmt.Errorf("failed to read backup: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("failed to parse backup: %w", err)
	}
	return doc, nil
}
