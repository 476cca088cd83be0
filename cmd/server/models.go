package main

import (
	"time"

	"github.com/liamcoop/ui5helper/appengine"
	"github.com/liamcoop/ui5helper/rules"
)

// CreateAppRequest represents the request body for registering a UI5 app
type CreateAppRequest struct {
	ID    string          `json:"id" example:"com.example.hr"`
	Name  string          `json:"name" example:"HR Portal"`
	Model appengine.Model `json:"model,omitempty"`
}

// AppsListResponse represents the response for listing apps
type AppsListResponse struct {
	Apps []string `json:"apps"`
}

// UpdateModelRequest represents the request body for replacing an app's data model
type UpdateModelRequest struct {
	Definition appengine.Model `json:"definition"`
}

// ModelResponse represents a data model in API responses
type ModelResponse struct {
	Version    int             `json:"version" example:"1"`
	Status     string          `json:"status,omitempty" example:"active"`
	Definition appengine.Model `json:"definition"`
}

// RuleSetRequest represents the request body for creating or replacing a rule set
type RuleSetRequest struct {
	ID          string             `json:"id,omitempty"`
	Name        string             `json:"name" example:"Employee form"`
	Model       string             `json:"model,omitempty" example:"dataModel"`
	Rules       []string           `json:"rules" example:"empName|req|50|str|Name is required"`
	Constraints []rules.Constraint `json:"constraints,omitempty"`
	Active      *bool              `json:"active,omitempty"`
}

func (r RuleSetRequest) ruleSet(id string) *rules.RuleSet {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return &rules.RuleSet{
		ID:          id,
		Name:        r.Name,
		Model:       r.Model,
		Rules:       r.Rules,
		Constraints: r.Constraints,
		Active:      active,
	}
}

// RuleSetsListResponse represents the response for listing rule sets
type RuleSetsListResponse struct {
	RuleSets []*rules.RuleSet `json:"ruleSets"`
}

// ValidateRequest validates one record against inline rules or a stored rule set
type ValidateRequest struct {
	AppID     string       `json:"appId,omitempty"`
	RuleSetID string       `json:"ruleSetId,omitempty"`
	Rules     []string     `json:"rules,omitempty"`
	Record    rules.Record `json:"record"`
}

// ValidateResponse represents the outcome of validating one record
type ValidateResponse struct {
	Fields         map[string]rules.FieldOutcome `json:"fields"`
	IsValid        bool                          `json:"isValid"`
	ValueStates    map[string]any                `json:"valueStates"`
	ValidationTime string                        `json:"validationTime" example:"120µs"`
}

// BatchValidateRequest validates many records against the same rules
type BatchValidateRequest struct {
	AppID     string         `json:"appId,omitempty"`
	RuleSetID string         `json:"ruleSetId,omitempty"`
	Rules     []string       `json:"rules,omitempty"`
	Records   []rules.Record `json:"records"`
}

// BatchValidateResponse holds one report per record in request order
type BatchValidateResponse struct {
	Results        []rules.ValidationReport `json:"results"`
	Invalid        int                      `json:"invalid"`
	ValidationTime string                   `json:"validationTime"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"rule set validation failed"`
	Details string `json:"details,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string `json:"status" example:"healthy"`
	Storage    string `json:"storage" example:"postgres"`
	AppsLoaded int    `json:"appsLoaded"`
	Error      string `json:"error,omitempty"`
}

// MetricsResponse exposes the logger counters
type MetricsResponse struct {
	Uptime           string `json:"uptime"`
	TotalErrors      int64  `json:"totalErrors"`
	TotalWarnings    int64  `json:"totalWarnings"`
	Total5xxErrors   int64  `json:"total5xxErrors"`
	Total4xxErrors   int64  `json:"total4xxErrors"`
	Total400Errors   int64  `json:"total400Errors"`
	Total404Errors   int64  `json:"total404Errors"`
	Total422Errors   int64  `json:"total422Errors"`
	SlowRequests     int64  `json:"slowRequests"`
	MalformedRules   int64  `json:"malformedRules"`
	RecordsValidated int64  `json:"recordsValidated"`
	InvalidReports   int64  `json:"invalidReports"`
}

var startedAt = time.Now()
