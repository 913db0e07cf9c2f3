package backup

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/logger"
	"github.com/julianstephens/tweeklike/internal/models"
)

const snapshotVersion = 1

// Snapshot is the on-disk form of one backup.
type Snapshot struct {
	Version   int           `yaml:"version"`
	CreatedAt time.Time     `yaml:"created_at"`
	Tasks     []models.Task `yaml:"tasks"`
}

// BackupInfo contains information about a backup file
type BackupInfo struct {
	Path      string
	Timestamp time.Time
	Size      int64
}

// Collection is the live task set a backup is taken from and restored into.
type Collection interface {
	All() []models.Task
	Replace(tasks []models.Task) error
}

// Manager writes, lists, rotates and restores YAML snapshots.
type Manager struct {
	backupDir string
	now       func() time.Time
}

// NewManager keeps snapshots in a backups directory beside configPath.
func NewManager(configPath string) *Manager {
	return &Manager{
		backupDir: filepath.Join(filepath.Dir(configPath), constants.BackupDirName),
		now:       time.Now,
	}
}

// GetBackupDir returns the backup directory path
func (m *Manager) GetBackupDir() string {
	return m.backupDir
}

// CreateBackup writes a snapshot of tasks and prunes the oldest snapshots
// beyond the retention limit.
func (m *Manager) CreateBackup(tasks []models.Task) (string, error) {
	path, err := m.write(tasks)
	if err != nil {
		return "", err
	}
	if err := m.rotateBackups(); err != nil {
		logger.Warn("Failed to rotate old backups", "error", err)
	}
	return path, nil
}

func (m *Manager) write(tasks []models.Task) (string, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := m.now()
	path, err := m.uniquePath(now)
	if err != nil {
		return "", err
	}

	if tasks == nil {
		tasks = []models.Task{}
	}
	data, err := yaml.Marshal(Snapshot{Version: snapshotVersion, CreatedAt: now.UTC(), Tasks: tasks})
	if err != nil {
		return "", fmt.Errorf("failed to serialize snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return "", fmt.Errorf("failed to write snapshot: %w", err)
	}
	return path, nil
}

// uniquePath names the snapshot by minute, falling back to seconds and then a
// counter when that name is taken.
func (m *Manager) uniquePath(now time.Time) (string, error) {
	name := func(stamp string) string {
		return filepath.Join(m.backupDir, constants.BackupFilePrefix+stamp+constants.BackupFileSuffix)
	}

	path := name(now.Format("20060102-1504"))
	if !exists(path) {
		return path, nil
	}

	stamp := now.Format("20060102-150405")
	path = name(stamp)
	for counter := 1; exists(path); counter++ {
		if counter > 100 {
			return "", fmt.Errorf("failed to generate unique backup filename")
		}
		path = name(fmt.Sprintf("%s-%d", stamp, counter))
	}
	return path, nil
}

// ListBackups returns every snapshot, newest first.
func (m *Manager) ListBackups() ([]BackupInfo, error) {
	entries, err := os.ReadDir(m.backupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []BackupInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []BackupInfo
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
			continue
		}

		timestamp, ok := parseStamp(strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix))
		if !ok {
			continue
		}

		path := filepath.Join(m.backupDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		backups = append(backups, BackupInfo{Path: path, Timestamp: timestamp, Size: info.Size()})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		if !backups[i].Timestamp.Equal(backups[j].Timestamp) {
			return backups[i].Timestamp.After(backups[j].Timestamp)
		}
		return backups[i].Path > backups[j].Path
	})
	return backups, nil
}

// parseStamp reads YYYYMMDD-HHMM or YYYYMMDD-HHMMSS with an optional -N counter.
func parseStamp(s string) (time.Time, bool) {
	parts := strings.Split(s, "-")
	if len(parts) == 3 {
		s = parts[0] + "-" + parts[1]
	}
	for _, layout := range []string{"20060102-1504", "20060102-150405"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (m *Manager) rotateBackups() error {
	backups, err := m.ListBackups()
	if err != nil {
		return err
	}
	for i := constants.MaxBackups; i < len(backups); i++ {
		if err := os.Remove(backups[i].Path); err != nil {
			return fmt.Errorf("failed to remove old backup %s: %w", backups[i].Path, err)
		}
	}
	return nil
}

// ReadBackup decodes the tasks of one snapshot.
func (m *Manager) ReadBackup(path string) ([]models.Task, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("backup file does not exist: %s", path)
		}
		return nil, fmt.Errorf("failed to read backup: %w", err)
	}

	var snap Snapshot
	if err := yaml.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}
	if snap.Version < 1 || snap.Version > snapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	return models.MigrateTasks(snap.Tasks), nil
}

// RestoreBackup replaces the collection with a snapshot's tasks. The current
// tasks are snapshotted first, without rotation, and that path is returned.
func (m *Manager) RestoreBackup(path string, into Collection) (string, error) {
	tasks, err := m.ReadBackup(path)
	if err != nil {
		return "", err
	}

	current, err := m.write(into.All())
	if err != nil {
		return "", fmt.Errorf("failed to back up current tasks before restore: %w", err)
	}

	if err := into.Replace(tasks); err != nil {
		return current, fmt.Errorf("failed to restore tasks: %w", err)
	}
	return current, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
