package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/tweeklike/internal/constants"
	"github.com/julianstephens/tweeklike/internal/models"
)

// JSONStore keeps the collection in a single JSON document of the form
// {"tweeklike-tasks": [...]}.
type JSONStore struct {
	path  string
	tasks []models.Task
}

func NewJSONStore(configPath string) *JSONStore {
	return &JSONStore{
		path: configPath,
	}
}

func (s *JSONStore) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if _, err := os.Stat(s.path); err == nil {
		return fmt.Errorf("storage already initialized at %s", s.path)
	}

	s.tasks = []models.Task{}
	return s.save()
}

func (s *JSONStore) Load() error {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotInitialized
		}
		return fmt.Errorf("failed to read storage: %w", err)
	}

	var doc map[string][]models.Task
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("failed to parse storage: %w", err)
	}
	s.tasks = models.MigrateTasks(doc[constants.StorageKey])
	return nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) LoadTasks() ([]models.Task, error) {
	if s.tasks == nil {
		return nil, ErrNotLoaded
	}
	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out, nil
}

func (s *JSONStore) SaveTasks(tasks []models.Task) error {
	if s.tasks == nil {
		return ErrNotLoaded
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	prev := s.tasks
	s.tasks = tasks
	if err := s.save(); err != nil {
		s.tasks = prev
		return err
	}
	return nil
}

func (s *JSONStore) GetConfigPath() string {
	return s.path
}

// save replaces the document through a temporary file and rename.
func (s *JSONStore) save() error {
	data, err := json.MarshalIndent(map[string][]models.Task{constants.StorageKey: s.tasks}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize storage: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to write storage: %w", err)
	}
	return nil
}
