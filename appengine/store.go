package appengine

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

var (
	ErrAppNotFound   = errors.New("app not found")
	ErrAppExists     = errors.New("app already exists")
	ErrModelNotFound = errors.New("model not found")
)

// Model maps the field names of a UI5 data model to their types
type Model map[string]string

// App is a registered UI5 application, identified by its manifest sap.app.id
type App struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AppStore persists apps and their versioned data models
type AppStore interface {
	CreateApp(app *App) error
	GetApp(id string) (*App, error)
	ListApps() ([]*App, error)
	DeleteApp(id string) error

	// ActiveModel returns the active model and its version
	ActiveModel(appID string) (Model, int, error)

	// SaveModel stores a new model version and makes it the active one
	SaveModel(appID string, model Model) (int, error)
}

// InMemoryAppStore implements AppStore in memory
type InMemoryAppStore struct {
	apps   map[string]*App
	models map[string][]Model // appID -> versions, index+1 == version
	mu     sync.RWMutex
}

// NewInMemoryAppStore creates an empty in-memory app store
func NewInMemoryAppStore() *InMemoryAppStore {
	return &InMemoryAppStore{
		apps:   make(map[string]*App),
		models: make(map[string][]Model),
	}
}

func (s *InMemoryAppStore) CreateApp(app *App) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[app.ID]; exists {
		return fmt.Errorf("app %s: %w", app.ID, ErrAppExists)
	}
	now := time.Now()
	app.CreatedAt = now
	app.UpdatedAt = now
	s.apps[app.ID] = app
	return nil
}

func (s *InMemoryAppStore) GetApp(id string) (*App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	app, exists := s.apps[id]
	if !exists {
		return nil, fmt.Errorf("app %s: %w", id, ErrAppNotFound)
	}
	return app, nil
}

func (s *InMemoryAppStore) ListApps() ([]*App, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	apps := make([]*App, 0, len(s.apps))
	for _, app := range s.apps {
		apps = append(apps, app)
	}
	sort.Slice(apps, func(i, j int) bool { return apps[i].ID < apps[j].ID })
	return apps, nil
}

func (s *InMemoryAppStore) DeleteApp(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[id]; !exists {
		return fmt.Errorf("app %s: %w", id, ErrAppNotFound)
	}
	delete(s.apps, id)
	delete(s.models, id)
	return nil
}

func (s *InMemoryAppStore) ActiveModel(appID string) (Model, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	versions := s.models[appID]
	if len(versions) == 0 {
		return nil, 0, fmt.Errorf("app %s: %w", appID, ErrModelNotFound)
	}
	return copyModel(versions[len(versions)-1]), len(versions), nil
}

func (s *InMemoryAppStore) SaveModel(appID string, model Model) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.apps[appID]; !exists {
		return 0, fmt.Errorf("app %s: %w", appID, ErrAppNotFound)
	}
	s.models[appID] = append(s.models[appID], copyModel(model))
	return len(s.models[appID]), nil
}

func copyModel(m Model) Model {
	out := make(Model, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// PostgresAppStore implements AppStore backed by PostgreSQL
type PostgresAppStore struct {
	db *sql.DB
}

// NewPostgresAppStore creates a PostgreSQL-backed AppStore
func NewPostgresAppStore(db *sql.DB) *PostgresAppStore {
	return &PostgresAppStore{db: db}
}

func (s *PostgresAppStore) CreateApp(app *App) error {
	err := s.db.QueryRow(`
		INSERT INTO apps (id, name, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at, updated_at
	`, app.ID, app.Name).Scan(&app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("app %s: %w", app.ID, ErrAppExists)
	}
	if err != nil {
		return fmt.Errorf("failed to create app: %w", err)
	}
	return nil
}

func (s *PostgresAppStore) GetApp(id string) (*App, error) {
	var app App
	err := s.db.QueryRow(`
		SELECT id, name, created_at, updated_at FROM apps WHERE id = $1
	`, id).Scan(&app.ID, &app.Name, &app.CreatedAt, &app.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("app %s: %w", id, ErrAppNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get app: %w", err)
	}
	return &app, nil
}

func (s *PostgresAppStore) ListApps() ([]*App, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at, updated_at FROM apps ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list apps: %w", err)
	}
	defer rows.Close()

	var apps []*App
	for rows.Next() {
		var app App
		if err := rows.Scan(&app.ID, &app.Name, &app.CreatedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan app row: %w", err)
		}
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating app rows: %w", err)
	}
	return apps, nil
}

func (s *PostgresAppStore) DeleteApp(id string) error {
	result, err := s.db.Exec(`DELETE FROM apps WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete app: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("app %s: %w", id, ErrAppNotFound)
	}
	return nil
}

func (s *PostgresAppStore) ActiveModel(appID string) (Model, int, error) {
	var (
		raw     []byte
		version int
	)
	err := s.db.QueryRow(`
		SELECT version, definition FROM models WHERE app_id = $1 AND active = true
	`, appID).Scan(&version, &raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, 0, fmt.Errorf("app %s: %w", appID, ErrModelNotFound)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get model: %w", err)
	}

	var model Model
	if err := json.Unmarshal(raw, &model); err != nil {
		return nil, 0, fmt.Errorf("invalid model for app %s: %w", appID, err)
	}
	return model, version, nil
}

// SaveModel deactivates the previous version and inserts the next one in one transaction
func (s *PostgresAppStore) SaveModel(appID string, model Model) (int, error) {
	definition, err := json.Marshal(model)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal model: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE models SET active = false WHERE app_id = $1`, appID); err != nil {
		return 0, fmt.Errorf("failed to deactivate old models: %w", err)
	}

	var version int
	err = tx.QueryRow(`
		INSERT INTO models (app_id, version, definition, active, created_at)
		SELECT $1, COALESCE(MAX(version), 0) + 1, $2, true, NOW()
		FROM models
		WHERE app_id = $1
		RETURNING version
	`, appID, definition).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to save model: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit model: %w", err)
	}
	return version, nil
}
