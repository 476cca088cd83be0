package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/liamcoop/ui5helper/appengine"
	"github.com/liamcoop/ui5helper/internal/logger"
	"github.com/liamcoop/ui5helper/rules"
)

// Health check handler
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:     "healthy",
		Storage:    "memory",
		AppsLoaded: len(s.apps.ListApps()),
	}

	if s.db != nil {
		resp.Storage = "postgres"
		if err := s.db.PingContext(r.Context()); err != nil {
			resp.Status = "unhealthy"
			resp.Error = err.Error()
			respondJSON(w, http.StatusServiceUnavailable, resp)
			return
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

// Metrics handler
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, MetricsResponse{
		Uptime:           time.Since(startedAt).Round(time.Second).String(),
		TotalErrors:      logger.TotalErrors.Load(),
		TotalWarnings:    logger.TotalWarnings.Load(),
		Total5xxErrors:   logger.Total5xxErrors.Load(),
		Total4xxErrors:   logger.Total4xxErrors.Load(),
		Total400Errors:   logger.Total400Errors.Load(),
		Total404Errors:   logger.Total404Errors.Load(),
		Total422Errors:   logger.Total422Errors.Load(),
		SlowRequests:     logger.SlowRequests.Load(),
		MalformedRules:   logger.MalformedRules.Load(),
		RecordsValidated: logger.RecordsValidated.Load(),
		InvalidReports:   logger.InvalidReports.Load(),
	})
}

// Validate handler: one record against inline rule strings or a stored rule set
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	var req ValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Record == nil {
		respondError(w, http.StatusBadRequest, "record is required", nil)
		return
	}

	startTime := time.Now()

	var (
		report rules.ValidationReport
		err    error
	)
	if len(req.Rules) > 0 {
		report, err = rules.ValidateStrings(req.Rules, req.Record)
	} else {
		var engine *rules.Engine
		engine, err = s.engineFor(req.AppID, req.RuleSetID)
		if err == nil {
			report, err = engine.Validate(req.RuleSetID, req.Record)
		}
	}
	if err != nil {
		respondFailure(w, "validation failed", err)
		return
	}

	logger.CountValidation(report.Valid)

	respondJSON(w, http.StatusOK, ValidateResponse{
		Fields:         report.Fields,
		IsValid:        report.Valid,
		ValueStates:    rules.BindValueStates(req.Record, report),
		ValidationTime: time.Since(startTime).String(),
	})
}

// Batch validate handler
func (s *Server) handleValidateBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchValidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if len(req.Records) == 0 {
		respondError(w, http.StatusBadRequest, "records are required", nil)
		return
	}
	if s.cfg.MaxBatchSize > 0 && len(req.Records) > s.cfg.MaxBatchSize {
		respondError(w, http.StatusBadRequest,
			fmt.Sprintf("batch of %d records exceeds maximum of %d", len(req.Records), s.cfg.MaxBatchSize), nil)
		return
	}

	startTime := time.Now()

	var (
		reports []rules.ValidationReport
		err     error
	)
	if len(req.Rules) > 0 {
		reports, err = validateInline(r, req.Rules, req.Records)
	} else {
		var engine *rules.Engine
		engine, err = s.engineFor(req.AppID, req.RuleSetID)
		if err == nil {
			reports, err = engine.ValidateBatch(r.Context(), req.RuleSetID, req.Records)
		}
	}
	if err != nil {
		respondFailure(w, "batch validation failed", err)
		return
	}

	invalid := 0
	for _, report := range reports {
		logger.CountValidation(report.Valid)
		if !report.Valid {
			invalid++
		}
	}

	respondJSON(w, http.StatusOK, BatchValidateResponse{
		Results:        reports,
		Invalid:        invalid,
		ValidationTime: time.Since(startTime).String(),
	})
}

func validateInline(r *http.Request, ruleStrings []string, records []rules.Record) ([]rules.ValidationReport, error) {
	rs, err := rules.ParseAll(ruleStrings)
	if err != nil {
		return nil, err
	}

	reports := make([]rules.ValidationReport, len(records))
	for i, rec := range records {
		if err := r.Context().Err(); err != nil {
			return nil, err
		}
		reports[i] = rules.Validate(rs, rec)
	}
	return reports, nil
}

func (s *Server) engineFor(appID, ruleSetID string) (*rules.Engine, error) {
	if appID == "" || ruleSetID == "" {
		return nil, errMissingTarget
	}
	return s.apps.GetEngine(appID)
}

// List apps handler
func (s *Server) handleListApps(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, AppsListResponse{Apps: s.apps.ListApps()})
}

// Create app handler
func (s *Server) handleCreateApp(w http.ResponseWriter, r *http.Request) {
	var req CreateAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	app := &appengine.App{ID: req.ID, Name: req.Name}
	if app.Name == "" {
		app.Name = req.ID
	}

	if err := s.apps.CreateApp(app, req.Model); err != nil {
		respondFailure(w, "failed to create app", err)
		return
	}

	ae, err := s.apps.Get(app.ID)
	if err != nil {
		respondFailure(w, "failed to load app", err)
		return
	}

	logger.Info("app created", "app", app.ID, "modelVersion", ae.ModelVersion)
	respondJSON(w, http.StatusCreated, map[string]any{
		"id":           app.ID,
		"name":         app.Name,
		"modelVersion": ae.ModelVersion,
	})
}

// Delete app handler
func (s *Server) handleDeleteApp(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")

	if err := s.apps.DeleteApp(appID); err != nil {
		respondFailure(w, "failed to delete app", err)
		return
	}

	logger.Info("app deleted", "app", appID)
	w.WriteHeader(http.StatusNoContent)
}

// Get model handler
func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")

	model, version, err := s.apps.GetModel(appID)
	if err != nil {
		respondFailure(w, "failed to get model", err)
		return
	}

	respondJSON(w, http.StatusOK, ModelResponse{
		Version:    version,
		Status:     "active",
		Definition: model,
	})
}

// Update model handler
func (s *Server) handleUpdateModel(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")

	var req UpdateModelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	version, err := s.apps.UpdateModel(appID, req.Definition)
	if err != nil {
		respondFailure(w, "failed to update model", err)
		return
	}

	respondJSON(w, http.StatusCreated, ModelResponse{
		Version:    version,
		Status:     "active",
		Definition: req.Definition,
	})
}

// List rule sets handler
func (s *Server) handleListRuleSets(w http.ResponseWriter, r *http.Request) {
	engine, err := s.apps.GetEngine(chi.URLParam(r, "appId"))
	if err != nil {
		respondFailure(w, "failed to list rule sets", err)
		return
	}

	sets, err := engine.ListActive()
	if err != nil {
		respondFailure(w, "failed to list rule sets", err)
		return
	}
	if sets == nil {
		sets = []*rules.RuleSet{}
	}

	respondJSON(w, http.StatusOK, RuleSetsListResponse{RuleSets: sets})
}

// Create rule set handler
func (s *Server) handleCreateRuleSet(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")

	var req RuleSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required", nil)
		return
	}
	if len(req.Rules) == 0 {
		respondError(w, http.StatusBadRequest, "rules are required", nil)
		return
	}

	set := req.ruleSet(req.ID)
	if err := s.apps.AddRuleSet(appID, set); err != nil {
		respondFailure(w, "failed to create rule set", err)
		return
	}

	logger.Info("rule set created", "app", appID, "ruleSet", set.ID, "rules", len(set.Rules))
	respondJSON(w, http.StatusCreated, set)
}

// Get rule set handler
func (s *Server) handleGetRuleSet(w http.ResponseWriter, r *http.Request) {
	engine, err := s.apps.GetEngine(chi.URLParam(r, "appId"))
	if err != nil {
		respondFailure(w, "failed to get rule set", err)
		return
	}

	set, err := engine.GetRuleSet(chi.URLParam(r, "ruleSetId"))
	if err != nil {
		respondFailure(w, "failed to get rule set", err)
		return
	}

	respondJSON(w, http.StatusOK, set)
}

// Update rule set handler
func (s *Server) handleUpdateRuleSet(w http.ResponseWriter, r *http.Request) {
	appID := chi.URLParam(r, "appId")
	ruleSetID := chi.URLParam(r, "ruleSetId")

	var req RuleSetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if len(req.Rules) == 0 {
		respondError(w, http.StatusBadRequest, "rules are required", nil)
		return
	}

	set := req.ruleSet(ruleSetID)
	if err := s.apps.UpdateRuleSet(appID, set); err != nil {
		respondFailure(w, "failed to update rule set", err)
		return
	}

	respondJSON(w, http.StatusOK, set)
}

// Delete rule set handler
func (s *Server) handleDeleteRuleSet(w http.ResponseWriter, r *http.Request) {
	engine, err := s.apps.GetEngine(chi.URLParam(r, "appId"))
	if err != nil {
		respondFailure(w, "failed to delete rule set", err)
		return
	}

	if err := engine.DeleteRuleSet(chi.URLParam(r, "ruleSetId")); err != nil {
		respondFailure(w, "failed to delete rule set", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

var errMissingTarget = errors.New("either rules or appId and ruleSetId are required")

// statusFor maps domain errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, errMissingTarget),
		errors.Is(err, rules.ErrMalformedRule),
		errors.Is(err, rules.ErrInvalidConstraint),
		errors.Is(err, appengine.ErrInvalidModel),
		errors.Is(err, appengine.ErrInvalidAppID):
		return http.StatusBadRequest
	case errors.Is(err, appengine.ErrAppNotFound),
		errors.Is(err, appengine.ErrModelNotFound),
		errors.Is(err, rules.ErrRuleSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, appengine.ErrAppExists),
		errors.Is(err, rules.ErrRuleSetExists),
		errors.Is(err, rules.ErrNotCompiled):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondFailure(w http.ResponseWriter, message string, err error) {
	var mre *rules.MalformedRuleError
	if errors.As(err, &mre) {
		logger.WarnMalformedRule(mre.Rule, err)
	}
	respondError(w, statusFor(err), message, err)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}
	respondJSON(w, status, response)
}
