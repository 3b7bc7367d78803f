package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/kittipat-ch/pricebench-backend/internal/calculation"
	"github.com/kittipat-ch/pricebench-backend/internal/customers"
	"github.com/kittipat-ch/pricebench-backend/internal/masterdata"
	"github.com/kittipat-ch/pricebench-backend/internal/rules"
	"github.com/kittipat-ch/pricebench-backend/pkg/config"
	"github.com/kittipat-ch/pricebench-backend/pkg/enums"
	pkgerrors "github.com/kittipat-ch/pricebench-backend/pkg/errors"
	"github.com/kittipat-ch/pricebench-backend/pkg/logger"
	pkgredis "github.com/kittipat-ch/pricebench-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubMasterDataService struct {
	createDraft func(ctx context.Context, input masterdata.CreateDraftInput) (*masterdata.RecordDTO, error)
	approve     func(ctx context.Context, id uuid.UUID, approvedBy string) (*masterdata.RecordDTO, error)
	history     func(ctx context.Context, input masterdata.HistoryInput) (*masterdata.HistoryResult, error)
}

func (s stubMasterDataService) CreateDraft(ctx context.Context, input masterdata.CreateDraftInput) (*masterdata.RecordDTO, error) {
	if s.createDraft != nil {
		return s.createDraft(ctx, input)
	}
	return &masterdata.RecordDTO{ID: uuid.New(), EntityType: input.EntityType, EntityKey: input.EntityKey, Version: 1, Status: enums.RecordStatusDraft}, nil
}

func (s stubMasterDataService) UpdateDraft(ctx context.Context, id uuid.UUID, input masterdata.UpdateDraftInput) (*masterdata.RecordDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
}

func (s stubMasterDataService) DeleteDraft(ctx context.Context, id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "record not found")
}

func (s stubMasterDataService) Approve(ctx context.Context, id uuid.UUID, approvedBy string) (*masterdata.RecordDTO, error) {
	if s.approve != nil {
		return s.approve(ctx, id, approvedBy)
	}
	return &masterdata.RecordDTO{ID: id, Status: enums.RecordStatusActive}, nil
}

func (s stubMasterDataService) Rollback(ctx context.Context, id uuid.UUID, input masterdata.RollbackInput) (*masterdata.RecordDTO, error) {
	return &masterdata.RecordDTO{ID: uuid.New(), Status: enums.RecordStatusDraft}, nil
}

func (s stubMasterDataService) GetRecord(ctx context.Context, id uuid.UUID) (*masterdata.RecordDTO, error) {
	return &masterdata.RecordDTO{ID: id}, nil
}

func (s stubMasterDataService) GetActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope masterdata.Scope) (*masterdata.RecordDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active record for this entity")
}

func (s stubMasterDataService) ResolveActive(ctx context.Context, entityType enums.EntityType, entityKey string, scope masterdata.Scope) (*masterdata.RecordDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no active record for this entity")
}

func (s stubMasterDataService) ListActive(ctx context.Context, entityType enums.EntityType, scope masterdata.Scope) ([]masterdata.RecordDTO, error) {
	return []masterdata.RecordDTO{}, nil
}

func (s stubMasterDataService) History(ctx context.Context, input masterdata.HistoryInput) (*masterdata.HistoryResult, error) {
	if s.history != nil {
		return s.history(ctx, input)
	}
	return &masterdata.HistoryResult{}, nil
}

type stubRuleService struct{}

func (stubRuleService) CreateRule(ctx context.Context, input rules.CreateRuleInput) (*rules.RuleDTO, error) {
	return &rules.RuleDTO{ID: uuid.New(), Name: input.Name}, nil
}

func (stubRuleService) UpdateRule(ctx context.Context, id uuid.UUID, input rules.UpdateRuleInput) (*rules.RuleDTO, error) {
	return &rules.RuleDTO{ID: id}, nil
}

func (stubRuleService) DeleteRule(ctx context.Context, id uuid.UUID) error {
	return nil
}

func (stubRuleService) GetRule(ctx context.Context, id uuid.UUID) (*rules.RuleDTO, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "rule not found")
}

func (stubRuleService) ListRules(ctx context.Context, activeOnly bool) ([]rules.RuleDTO, error) {
	return []rules.RuleDTO{}, nil
}

type stubCalculationService struct {
	calculate func(ctx context.Context, input calculation.Input) (*calculation.Result, error)
}

func (s stubCalculationService) CalculateHybrid(ctx context.Context, input calculation.Input) (*calculation.Result, error) {
	if s.calculate != nil {
		return s.calculate(ctx, input)
	}
	return &calculation.Result{ProductID: input.ProductID, RequestedCurrency: input.Currency}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
	}
}

func newTestRouter(masterSvc masterdata.Service, calcSvc calculation.Service) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		testConfig(),
		logg,
		stubPinger{},
		(*pkgredis.Client)(nil),
		nil,
		masterSvc,
		stubRuleService{},
		calcSvc,
		(*customers.Repository)(nil),
	)
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if resp.Header().Get("X-PriceBench-Env") != "test" {
		t.Fatalf("expected env header, got %q", resp.Header().Get("X-PriceBench-Env"))
	}
}

func TestHealthReady(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for readiness got %d", resp.Code)
	}
}

func TestCreateDraftRejectsUnknownEntityType(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	body := `{"entity_key":"CU-001","payload":{"price_per_unit":"300","unit":"kg"},"created_by":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-data/bogus_type/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown entity type got %d", resp.Code)
	}
}

func TestCreateDraftReturnsCreated(t *testing.T) {
	var got masterdata.CreateDraftInput
	svc := stubMasterDataService{
		createDraft: func(ctx context.Context, input masterdata.CreateDraftInput) (*masterdata.RecordDTO, error) {
			got = input
			return &masterdata.RecordDTO{ID: uuid.New(), EntityType: input.EntityType, EntityKey: input.EntityKey, Version: 1, Status: enums.RecordStatusDraft}, nil
		},
	}
	router := newTestRouter(svc, stubCalculationService{})

	body := `{"entity_key":"CU-001","payload":{"price_per_unit":"300","unit":"kg"},"created_by":"ops"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-data/standard_price/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.EntityType != enums.EntityTypeStandardPrice {
		t.Fatalf("expected entity type forwarded, got %q", got.EntityType)
	}
	if got.EntityKey != "CU-001" {
		t.Fatalf("expected entity key forwarded, got %q", got.EntityKey)
	}
	if !got.Scope.IsGlobal() {
		t.Fatalf("expected global scope when scope_group_id is absent")
	}
}

func TestCreateDraftRejectsUnknownBodyField(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	body := `{"entity_key":"CU-001","payload":{},"created_by":"ops","surprise":true}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-data/standard_price/drafts", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field got %d", resp.Code)
	}
}

func TestApproveRejectsMalformedRecordID(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-data/fab_cost/versions/not-a-uuid/approve", strings.NewReader(`{"approved_by":"ops"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed record id got %d", resp.Code)
	}
}

func TestApproveConflictMapsTo409(t *testing.T) {
	svc := stubMasterDataService{
		approve: func(ctx context.Context, id uuid.UUID, approvedBy string) (*masterdata.RecordDTO, error) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "another approval is in flight for this lifecycle")
		},
	}
	router := newTestRouter(svc, stubCalculationService{})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/master-data/fab_cost/versions/"+uuid.NewString()+"/approve", strings.NewReader(`{"approved_by":"ops"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
}

func TestCalculationRequiresQuantity(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	body := `{"product_id":"` + uuid.NewString() + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations/hybrid", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity got %d", resp.Code)
	}

	body = `{"product_id":"` + uuid.NewString() + `","quantity":"-3"}`
	req = httptest.NewRequest(http.MethodPost, "/api/v1/calculations/hybrid", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative quantity got %d", resp.Code)
	}
}

func TestCalculationDefaultsToBaseCurrency(t *testing.T) {
	var got calculation.Input
	svc := stubCalculationService{
		calculate: func(ctx context.Context, input calculation.Input) (*calculation.Result, error) {
			got = input
			return &calculation.Result{ProductID: input.ProductID, RequestedCurrency: input.Currency}, nil
		},
	}
	router := newTestRouter(stubMasterDataService{}, svc)

	body := `{"product_id":"` + uuid.NewString() + `","customer_group_id":"` + uuid.NewString() + `","quantity":"10"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations/hybrid", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if got.Currency != enums.CurrencyTHB {
		t.Fatalf("expected THB default currency got %q", got.Currency)
	}
	if got.CustomerGroupID == nil {
		t.Fatalf("expected customer group forwarded")
	}
}

func TestListPricingRules(t *testing.T) {
	router := newTestRouter(stubMasterDataService{}, stubCalculationService{})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/pricing-rules?active_only=true", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for rule listing got %d", resp.Code)
	}
}
