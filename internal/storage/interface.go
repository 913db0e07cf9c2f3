package storage

import "github.com/julianstephens/tweeklike/internal/models"

// Provider keeps the whole task collection under one well-known key.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Tasks
	LoadTasks() ([]models.Task, error)
	SaveTasks(tasks []models.Task) error

	// Utils
	GetConfigPath() string
}
