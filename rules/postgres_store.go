package rules

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// PostgresRuleSetStore implements RuleSetStore backed by PostgreSQL,
// scoped to the rule sets of one app
type PostgresRuleSetStore struct {
	db    *sql.DB
	appID string
}

// NewPostgresRuleSetStore creates a PostgreSQL-backed RuleSetStore for a specific app
func NewPostgresRuleSetStore(db *sql.DB, appID string) *PostgresRuleSetStore {
	return &PostgresRuleSetStore{
		db:    db,
		appID: appID,
	}
}

// Add inserts a new rule set into the database
func (s *PostgresRuleSetStore) Add(set *RuleSet) error {
	var exists bool
	err := s.db.QueryRow(`
		SELECT EXISTS(SELECT 1 FROM rule_sets WHERE id = $1 AND app_id = $2)
	`, set.ID, s.appID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check rule set existence: %w", err)
	}
	if exists {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetExists)
	}

	constraints, err := json.Marshal(set.Constraints)
	if err != nil {
		return fmt.Errorf("failed to marshal constraints: %w", err)
	}

	now := time.Now().UTC()
	set.AppID = s.appID
	set.CreatedAt = now
	set.UpdatedAt = now

	_, err = s.db.Exec(`
		INSERT INTO rule_sets (id, app_id, name, model, rules, constraints, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, set.ID, s.appID, set.Name, set.Model, pq.Array(set.Rules), constraints, set.Active,
		set.CreatedAt, set.UpdatedAt)
	if isUniqueViolation(err) {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetExists)
	}
	if err != nil {
		return fmt.Errorf("failed to insert rule set: %w", err)
	}

	return nil
}

// Get retrieves a rule set by ID
func (s *PostgresRuleSetStore) Get(id string) (*RuleSet, error) {
	row := s.db.QueryRow(`
		SELECT id, app_id, name, model, rules, constraints, active, created_at, updated_at
		FROM rule_sets
		WHERE id = $1 AND app_id = $2
	`, id, s.appID)

	set, err := scanRuleSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule set %s: %w", id, ErrRuleSetNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule set: %w", err)
	}
	return set, nil
}

// ListActive returns all active rule sets for the app, oldest first
func (s *PostgresRuleSetStore) ListActive() ([]*RuleSet, error) {
	rows, err := s.db.Query(`
		SELECT id, app_id, name, model, rules, constraints, active, created_at, updated_at
		FROM rule_sets
		WHERE app_id = $1 AND active = true
		ORDER BY created_at ASC, id ASC
	`, s.appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active rule sets: %w", err)
	}
	defer rows.Close()

	var sets []*RuleSet
	for rows.Next() {
		set, err := scanRuleSet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule set: %w", err)
		}
		sets = append(sets, set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rule sets: %w", err)
	}

	return sets, nil
}

// Update modifies an existing rule set
func (s *PostgresRuleSetStore) Update(set *RuleSet) error {
	existing, err := s.Get(set.ID)
	if err != nil {
		return err
	}

	constraints, err := json.Marshal(set.Constraints)
	if err != nil {
		return fmt.Errorf("failed to marshal constraints: %w", err)
	}

	set.AppID = s.appID
	set.CreatedAt = existing.CreatedAt
	set.UpdatedAt = time.Now().UTC()

	result, err := s.db.Exec(`
		UPDATE rule_sets
		SET name = $1, model = $2, rules = $3, constraints = $4, active = $5, updated_at = $6
		WHERE id = $7 AND app_id = $8
	`, set.Name, set.Model, pq.Array(set.Rules), constraints, set.Active, set.UpdatedAt, set.ID, s.appID)
	if err != nil {
		return fmt.Errorf("failed to update rule set: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule set %s: %w", set.ID, ErrRuleSetNotFound)
	}

	return nil
}

// Delete removes a rule set from the database
func (s *PostgresRuleSetStore) Delete(id string) error {
	result, err := s.db.Exec(`
		DELETE FROM rule_sets
		WHERE id = $1 AND app_id = $2
	`, id, s.appID)
	if err != nil {
		return fmt.Errorf("failed to delete rule set: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("rule set %s: %w", id, ErrRuleSetNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuleSet(row rowScanner) (*RuleSet, error) {
	var (
		set         RuleSet
		constraints []byte
	)
	if err := row.Scan(&set.ID, &set.AppID, &set.Name, &set.Model, pq.Array(&set.Rules),
		&constraints, &set.Active, &set.CreatedAt, &set.UpdatedAt); err != nil {
		return nil, err
	}
	if len(constraints) > 0 {
		if err := json.Unmarshal(constraints, &set.Constraints); err != nil {
			return nil, fmt.Errorf("invalid constraints for rule set %s: %w", set.ID, err)
		}
	}
	return &set, nil
}

// uniqueViolation is the Postgres SQLSTATE for a duplicate key
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
