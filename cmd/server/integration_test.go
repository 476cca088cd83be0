//go:build integration

package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/liamcoop/ui5helper/internal/config"
)

// setupTestDB starts a PostgreSQL container, applies the schema and returns its URL
func setupTestDB(t *testing.T) (string, func()) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_PASSWORD": "password",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	postgres, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	host, err := postgres.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := postgres.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	connStr := fmt.Sprintf("postgres://postgres:password@%s:%s/testdb?sslmode=disable", host, port.Port())

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	for i := 0; i < 30; i++ {
		if err := db.Ping(); err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	migrationSQL, err := os.ReadFile("../../migrations/000001_initial_schema.up.sql")
	if err != nil {
		t.Fatalf("Failed to read migration file: %v", err)
	}
	if _, err := db.Exec(string(migrationSQL)); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return connStr, func() { postgres.Terminate(ctx) }
}

func TestEndToEnd_PostgresPersistence(t *testing.T) {
	databaseURL, cleanup := setupTestDB(t)
	defer cleanup()

	cfg := config.Server{
		DatabaseURL:    databaseURL,
		RequestTimeout: 10 * time.Second,
		MaxBatchSize:   100,
	}

	server, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	rec := doRequest(t, server, http.MethodGet, "/api/v1/health", nil)
	expectStatus(t, rec, http.StatusOK)
	if storage := decode(t, rec)["storage"]; storage != "postgres" {
		t.Errorf("Expected postgres storage, got %v", storage)
	}

	t.Log("Step 1: Creating app...")
	rec = doRequest(t, server, http.MethodPost, "/api/v1/apps", map[string]any{
		"id":    "com.example.hr",
		"name":  "HR Portal",
		"model": map[string]string{"empName": "string", "age": "number"},
	})
	expectStatus(t, rec, http.StatusCreated)

	rec = doRequest(t, server, http.MethodPost, "/api/v1/apps", map[string]any{"id": "com.example.hr"})
	expectStatus(t, rec, http.StatusConflict)

	t.Log("Step 2: Adding rule set...")
	rec = doRequest(t, server, http.MethodPost, "/api/v1/apps/com.example.hr/rulesets", map[string]any{
		"name":  "Employee",
		"rules": []string{"empName|req|50|str|Name is required", "age|req|null|num|"},
	})
	expectStatus(t, rec, http.StatusCreated)
	ruleSetID, _ := decode(t, rec)["id"].(string)

	t.Log("Step 3: Updating model...")
	rec = doRequest(t, server, http.MethodPost, "/api/v1/apps/com.example.hr/model", map[string]any{
		"definition": map[string]string{"empName": "string", "age": "number", "hired": "date"},
	})
	expectStatus(t, rec, http.StatusCreated)
	server.db.Close()

	t.Log("Step 4: Restarting server...")
	restarted, err := NewServer(cfg)
	if err != nil {
		t.Fatalf("Failed to restart server: %v", err)
	}
	defer restarted.db.Close()

	rec = doRequest(t, restarted, http.MethodGet, "/api/v1/apps/com.example.hr/model", nil)
	expectStatus(t, rec, http.StatusOK)
	if v := decode(t, rec)["version"]; v != float64(2) {
		t.Errorf("Expected model version 2 after restart, got %v", v)
	}

	rec = doRequest(t, restarted, http.MethodPost, "/api/v1/validate", map[string]any{
		"appId":     "com.example.hr",
		"ruleSetId": ruleSetID,
		"record":    map[string]any{"empName": "", "age": "old"},
	})
	expectStatus(t, rec, http.StatusOK)
	resp := decode(t, rec)
	if got := fieldMessage(t, resp, "empName"); got != "Name is required" {
		t.Errorf("empName message = %q", got)
	}
	if got := fieldMessage(t, resp, "age"); got != "age must be a number" {
		t.Errorf("age message = %q", got)
	}

	t.Log("Step 5: Deleting app...")
	rec = doRequest(t, restarted, http.MethodDelete, "/api/v1/apps/com.example.hr", nil)
	expectStatus(t, rec, http.StatusNoContent)

	rec = doRequest(t, restarted, http.MethodGet, "/api/v1/apps/com.example.hr/rulesets", nil)
	expectStatus(t, rec, http.StatusNotFound)
}
