package appengine

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/liamcoop/ui5helper/internal/logger"
	"github.com/liamcoop/ui5helper/rules"
)

// RuleSetStoreFactory returns the rule set store scoped to one app
type RuleSetStoreFactory func(appID string) rules.RuleSetStore

// AppEngine wraps a rules.Engine with the app's model
type AppEngine struct {
	AppID        string
	Model        Model
	ModelVersion int
	Engine       *rules.Engine
}

// Manager keeps one rules engine per registered app
type Manager struct {
	engines  map[string]*AppEngine
	store    AppStore
	ruleSets RuleSetStoreFactory
	mu       sync.RWMutex
}

// NewManager creates a manager over the given stores
func NewManager(store AppStore, ruleSets RuleSetStoreFactory) *Manager {
	return &Manager{
		engines:  make(map[string]*AppEngine),
		store:    store,
		ruleSets: ruleSets,
	}
}

// InMemoryRuleSets returns a factory handing every app its own in-memory store
func InMemoryRuleSets() RuleSetStoreFactory {
	var mu sync.Mutex
	stores := make(map[string]*rules.InMemoryRuleSetStore)
	return func(appID string) rules.RuleSetStore {
		mu.Lock()
		defer mu.Unlock()
		s, ok := stores[appID]
		if !ok {
			s = rules.NewInMemoryRuleSetStore()
			stores[appID] = s
		}
		return s
	}
}

// LoadAll builds an engine for every stored app
func (m *Manager) LoadAll() error {
	apps, err := m.store.ListApps()
	if err != nil {
		return fmt.Errorf("failed to fetch apps: %w", err)
	}

	for _, app := range apps {
		ae, err := m.build(app.ID)
		if err != nil {
			return fmt.Errorf("failed to initialize app %s: %w", app.ID, err)
		}
		m.mu.Lock()
		m.engines[app.ID] = ae
		m.mu.Unlock()
	}

	logger.Info("apps loaded", "count", len(apps))
	return nil
}

// build compiles the app's rule sets together with its active model, if any
func (m *Manager) build(appID string) (*AppEngine, error) {
	model, version, err := m.store.ActiveModel(appID)
	if err != nil && !errors.Is(err, ErrModelNotFound) {
		return nil, err
	}

	engine, err := rules.NewEngine(m.ruleSets(appID))
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	return &AppEngine{
		AppID:        appID,
		Model:        model,
		ModelVersion: version,
		Engine:       engine,
	}, nil
}

// CreateApp registers a new app with an optional initial model
func (m *Manager) CreateApp(app *App, model Model) error {
	if err := ValidateAppID(app.ID); err != nil {
		return err
	}
	if model != nil {
		if err := ValidateModel(model); err != nil {
			return err
		}
	}

	if err := m.store.CreateApp(app); err != nil {
		return err
	}
	if model != nil {
		if _, err := m.store.SaveModel(app.ID, model); err != nil {
			return err
		}
	}

	ae, err := m.build(app.ID)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.engines[app.ID] = ae
	m.mu.Unlock()
	return nil
}

// Get returns the app engine for an app
func (m *Manager) Get(appID string) (*AppEngine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ae, exists := m.engines[appID]
	if !exists {
		return nil, fmt.Errorf("app %s: %w", appID, ErrAppNotFound)
	}
	return ae, nil
}

// GetEngine returns the rules engine of an app
func (m *Manager) GetEngine(appID string) (*rules.Engine, error) {
	ae, err := m.Get(appID)
	if err != nil {
		return nil, err
	}
	return ae.Engine, nil
}

// AddRuleSet checks the rule set against the app model and adds it to the app engine
func (m *Manager) AddRuleSet(appID string, set *rules.RuleSet) error {
	ae, err := m.Get(appID)
	if err != nil {
		return err
	}
	if ae.Model != nil {
		if err := ValidateRuleSet(ae.Model, set); err != nil {
			return err
		}
	}
	set.AppID = appID
	return ae.Engine.AddRuleSet(set)
}

// UpdateRuleSet checks the rule set against the app model and replaces it
func (m *Manager) UpdateRuleSet(appID string, set *rules.RuleSet) error {
	ae, err := m.Get(appID)
	if err != nil {
		return err
	}
	if ae.Model != nil {
		if err := ValidateRuleSet(ae.Model, set); err != nil {
			return err
		}
	}
	set.AppID = appID
	return ae.Engine.UpdateRuleSet(set)
}

// UpdateModel stores a new model version and swaps in a rebuilt engine.
// It fails without saving when an active rule set references a field the
// new model drops.
func (m *Manager) UpdateModel(appID string, model Model) (int, error) {
	if err := ValidateModel(model); err != nil {
		return 0, err
	}

	current, err := m.Get(appID)
	if err != nil {
		return 0, err
	}

	active, err := current.Engine.ListActive()
	if err != nil {
		return 0, fmt.Errorf("failed to load rule sets: %w", err)
	}
	for _, set := range active {
		if err := ValidateRuleSet(model, set); err != nil {
			return 0, fmt.Errorf("rule set %s: %w", set.ID, err)
		}
	}

	version, err := m.store.SaveModel(appID, model)
	if err != nil {
		return 0, err
	}

	ae, err := m.build(appID)
	if err != nil {
		return 0, fmt.Errorf("failed to rebuild engine: %w", err)
	}

	m.mu.Lock()
	m.engines[appID] = ae
	m.mu.Unlock()

	logger.Info("model updated", "app", appID, "version", version, "ruleSets", len(active))
	return version, nil
}

// GetModel returns the active model of an app and its version
func (m *Manager) GetModel(appID string) (Model, int, error) {
	ae, err := m.Get(appID)
	if err != nil {
		return nil, 0, err
	}
	if ae.Model == nil {
		return nil, 0, fmt.Errorf("app %s: %w", appID, ErrModelNotFound)
	}
	return copyModel(ae.Model), ae.ModelVersion, nil
}

// ListApps returns the loaded app IDs in sorted order
func (m *Manager) ListApps() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.engines))
	for id := range m.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DeleteApp removes the app from the store and drops its engine.
// Postgres cascades to the app's rule sets; in-memory stores are cleared here.
func (m *Manager) DeleteApp(appID string) error {
	if err := m.store.DeleteApp(appID); err != nil {
		return err
	}
	if c, ok := m.ruleSets(appID).(interface{ Clear() }); ok {
		c.Clear()
	}

	m.mu.Lock()
	delete(m.engines, appID)
	m.mu.Unlock()
	return nil
}
