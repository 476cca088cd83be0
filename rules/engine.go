package rules

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// compiledRuleSet holds the decoded rules and constraint programs of one rule set
type compiledRuleSet struct {
	rules       []Rule
	constraints []compiledConstraint
}

// Engine keeps every stored rule set decoded and ready to validate records.
// Rule strings are parsed once when a rule set is added or loaded, so a
// malformed rule fails there rather than during validation.
// Safe for concurrent use.
type Engine struct {
	env      *cel.Env
	store    RuleSetStore
	cache    RuleSetCache
	compiled map[string]*compiledRuleSet // ruleSetID -> compiled form
	mu       sync.RWMutex
}

// NewEngine creates an engine with the default constraint environment and
// compiles every active rule set in the store
func NewEngine(store RuleSetStore) (*Engine, error) {
	env, err := NewConstraintEnv()
	if err != nil {
		return nil, err
	}
	return NewEngineWithEnv(env, store)
}

// NewEngineWithEnv creates an engine with a custom CEL environment.
// The environment must declare the `record` variable.
func NewEngineWithEnv(env *cel.Env, store RuleSetStore) (*Engine, error) {
	en := &Engine{
		env:      env,
		store:    store,
		cache:    NewInMemoryRuleSetCache(DefaultCacheConfig()),
		compiled: make(map[string]*compiledRuleSet),
	}

	if err := en.CompileAll(); err != nil {
		return nil, fmt.Errorf("failed to compile rule sets: %w", err)
	}

	return en, nil
}

func (en *Engine) compile(set *RuleSet) (*compiledRuleSet, error) {
	parsed, err := ParseAll(set.Rules)
	if err != nil {
		return nil, err
	}

	fields := make(map[string]bool, len(parsed))
	for _, r := range parsed {
		fields[r.FieldName] = true
	}

	c := &compiledRuleSet{rules: parsed}
	for _, con := range set.Constraints {
		if !fields[con.Field] {
			return nil, fmt.Errorf("%w: field %q has no rule", ErrInvalidConstraint, con.Field)
		}
		cc, err := compileConstraint(en.env, con)
		if err != nil {
			return nil, err
		}
		c.constraints = append(c.constraints, cc)
	}
	return c, nil
}

// CompileRuleSet compiles a rule set and registers it for validation
func (en *Engine) CompileRuleSet(set *RuleSet) error {
	c, err := en.compile(set)
	if err != nil {
		return err
	}

	en.mu.Lock()
	en.compiled[set.ID] = c
	en.mu.Unlock()

	return nil
}

// CompileAll compiles every active rule set in the store and refreshes the cache
func (en *Engine) CompileAll() error {
	sets, err := en.store.ListActive()
	if err != nil {
		return err
	}

	for _, set := range sets {
		if err := en.CompileRuleSet(set); err != nil {
			return fmt.Errorf("failed to compile rule set %s: %w", set.ID, err)
		}
	}

	en.cache.Set(sets)
	return nil
}

// AddRuleSet compiles a new rule set and stores it. Only active rule sets can be validated.
// A missing ID is filled with a random UUID. Nothing is stored when compilation fails.
func (en *Engine) AddRuleSet(set *RuleSet) error {
	if set.ID == "" {
		set.ID = uuid.NewString()
	}

	if _, err := en.store.Get(set.ID); err == nil {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetExists)
	}

	c, err := en.compile(set)
	if err != nil {
		return fmt.Errorf("rule set validation failed: %w", err)
	}

	if err := en.store.Add(set); err != nil {
		return err
	}

	en.register(set, c)
	en.cache.Invalidate()
	return nil
}

// UpdateRuleSet recompiles a rule set and replaces the stored copy
func (en *Engine) UpdateRuleSet(set *RuleSet) error {
	c, err := en.compile(set)
	if err != nil {
		return fmt.Errorf("rule set validation failed: %w", err)
	}

	if err := en.store.Update(set); err != nil {
		return err
	}

	en.register(set, c)
	en.cache.Invalidate()
	return nil
}

// register makes an active rule set available for validation and drops an inactive one
func (en *Engine) register(set *RuleSet, c *compiledRuleSet) {
	en.mu.Lock()
	defer en.mu.Unlock()

	if set.Active {
		en.compiled[set.ID] = c
		return
	}
	delete(en.compiled, set.ID)
}

// DeleteRuleSet removes a rule set from the store and the compiled programs
func (en *Engine) DeleteRuleSet(id string) error {
	if err := en.store.Delete(id); err != nil {
		return err
	}

	en.mu.Lock()
	delete(en.compiled, id)
	en.mu.Unlock()

	en.cache.Invalidate()
	return nil
}

// GetRuleSet returns the stored rule set
func (en *Engine) GetRuleSet(id string) (*RuleSet, error) {
	return en.store.Get(id)
}

// ListActive returns the active rule sets, served from cache when possible
func (en *Engine) ListActive() ([]*RuleSet, error) {
	if sets := en.cache.Get(); sets != nil {
		return sets, nil
	}

	sets, err := en.store.ListActive()
	if err != nil {
		return nil, err
	}
	en.cache.Set(sets)
	return sets, nil
}

func (en *Engine) lookup(id string) (*compiledRuleSet, error) {
	en.mu.RLock()
	c, exists := en.compiled[id]
	en.mu.RUnlock()

	if exists {
		return c, nil
	}
	if _, err := en.store.Get(id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("rule set %s: %w", id, ErrNotCompiled)
}

// Validate validates one record against a stored rule set
func (en *Engine) Validate(id string, rec Record) (ValidationReport, error) {
	c, err := en.lookup(id)
	if err != nil {
		return ValidationReport{}, err
	}
	return c.validate(rec), nil
}

// ValidateBatch validates records in parallel against one rule set.
// Reports are returned in record order.
func (en *Engine) ValidateBatch(ctx context.Context, id string, records []Record) ([]ValidationReport, error) {
	c, err := en.lookup(id)
	if err != nil {
		return nil, err
	}

	reports := make([]ValidationReport, len(records))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reports[i] = c.validate(rec)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

// validate runs the rule checks, then the constraints of every field that passed them
func (c *compiledRuleSet) validate(rec Record) ValidationReport {
	report := Validate(c.rules, rec)

	for _, con := range c.constraints {
		outcome, ok := report.Fields[con.Field]
		if !ok || !outcome.OK() {
			continue
		}
		if res := con.check(rec); !res.OK() {
			report.Fields[con.Field] = res
			report.Valid = false
		}
	}
	return report
}

// IsNotFound reports whether err means the rule set does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRuleSetNotFound)
}
