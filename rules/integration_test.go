//go:build integration
// +build integration

package rules_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/liamcoop/ui5helper/rules"

	_ "github.com/lib/pq"
)

// setupTestDB starts a PostgreSQL container, applies the schema and returns a connection
func setupTestDB(t *testing.T) (*sql.DB, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:15-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "rules_test",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgresContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("host=%s port=%s user=test password=test dbname=rules_test sslmode=disable", host, port.Port())

	var db *sql.DB
	for i := 0; i < 30; i++ {
		db, err = sql.Open("postgres", connStr)
		if err == nil {
			err = db.Ping()
			if err == nil {
				break
			}
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}

	migrationSQL, err := os.ReadFile(filepath.Join("..", "migrations", "000001_initial_schema.up.sql"))
	if err != nil {
		t.Fatalf("Failed to read migration file: %v", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	cleanup := func() {
		db.Close()
		postgresContainer.Terminate(ctx)
	}

	return db, cleanup
}

func createApp(t *testing.T, db *sql.DB, id string) {
	if _, err := db.Exec(`INSERT INTO apps (id, name) VALUES ($1, $1)`, id); err != nil {
		t.Fatalf("Failed to create app: %v", err)
	}
}

func TestPostgresRuleSetStore_BasicCRUD(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createApp(t, db, "com.example.hr")
	store := rules.NewPostgresRuleSetStore(db, "com.example.hr")

	id := uuid.NewString()
	set := &rules.RuleSet{
		ID:    id,
		Name:  "Employee",
		Model: "dataModel",
		Rules: []string{"empName|req|50|str|Name required", "age|req|null|num|Age required"},
		Constraints: []rules.Constraint{
			{Field: "age", Expression: `record.age != "13"`, Message: "unlucky"},
		},
		Active: true,
	}
	if err := store.Add(set); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.AppID != "com.example.hr" || len(got.Rules) != 2 || got.Rules[1] != "age|req|null|num|Age required" {
		t.Errorf("Get() = %+v", got)
	}
	if len(got.Constraints) != 1 || got.Constraints[0].Message != "unlucky" {
		t.Errorf("constraints not round-tripped: %+v", got.Constraints)
	}

	got.Rules = []string{"empName|req|10|str|"}
	got.Active = false
	if err := store.Update(got); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	active, err := store.ListActive()
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}
	if len(active) != 0 {
		t.Errorf("ListActive() returned %d sets, want 0", len(active))
	}

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := store.Get(id); !errors.Is(err, rules.ErrRuleSetNotFound) {
		t.Errorf("Get() after Delete() error = %v", err)
	}
}

func TestPostgresRuleSetStore_AppIsolation(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createApp(t, db, "app.one")
	createApp(t, db, "app.two")
	one := rules.NewPostgresRuleSetStore(db, "app.one")
	two := rules.NewPostgresRuleSetStore(db, "app.two")

	id := uuid.NewString()
	if err := one.Add(&rules.RuleSet{ID: id, Name: "x", Rules: []string{"a|req|null|null|"}, Active: true}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	if _, err := two.Get(id); !errors.Is(err, rules.ErrRuleSetNotFound) {
		t.Errorf("other app should not see the rule set, err = %v", err)
	}
	if err := two.Delete(id); !errors.Is(err, rules.ErrRuleSetNotFound) {
		t.Errorf("other app should not delete the rule set, err = %v", err)
	}

	// ids are unique per app, so the other app may reuse one
	if err := two.Add(&rules.RuleSet{ID: id, Name: "y", Rules: []string{"b|req|null|null|"}, Active: true}); err != nil {
		t.Fatalf("Add() with an id used by another app failed: %v", err)
	}
	got, err := two.Get(id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.Name != "y" || got.AppID != "app.two" {
		t.Errorf("Get() = %+v, want app.two's rule set", got)
	}
	original, err := one.Get(id)
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if original.Name != "x" {
		t.Errorf("app.one's rule set changed: %+v", original)
	}
}

func TestPostgresRuleSetStore_Duplicate(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createApp(t, db, "app.one")
	store := rules.NewPostgresRuleSetStore(db, "app.one")

	set := &rules.RuleSet{ID: "fixed", Name: "x", Rules: []string{"a|req|null|null|"}, Active: true}
	if err := store.Add(set); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}
	if err := store.Add(set); !errors.Is(err, rules.ErrRuleSetExists) {
		t.Errorf("duplicate Add() error = %v, want ErrRuleSetExists", err)
	}
}

func TestEngine_WithDatabase(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	createApp(t, db, "app.one")
	store := rules.NewPostgresRuleSetStore(db, "app.one")
	if err := store.Add(&rules.RuleSet{
		ID:     "emp",
		Name:   "Employee",
		Rules:  []string{"age|req|null|num|Age required", "name|req|50|str|Name required"},
		Active: true,
	}); err != nil {
		t.Fatalf("Add() failed: %v", err)
	}

	engine, err := rules.NewEngine(store)
	if err != nil {
		t.Fatalf("NewEngine() failed: %v", err)
	}

	report, err := engine.Validate("emp", rules.Record{"age": 0, "name": "John123"})
	if err != nil {
		t.Fatalf("Validate() failed: %v", err)
	}
	if report.Valid {
		t.Error("report should be invalid")
	}
	if report.Fields["age"].Message != "Age required" || report.Fields["name"].Message != "name must contain only letters" {
		t.Errorf("unexpected report: %+v", report)
	}
}
