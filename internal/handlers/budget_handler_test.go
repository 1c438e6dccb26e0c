package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "kopilka/internal/errors"
	"kopilka/internal/models"
	"kopilka/internal/services"
)

// --- mock budget service ---

type mockBudgetService struct {
	setFn    func(householdID uint, categoryName string, limit decimal.Decimal) (*models.CategoryBudget, error)
	statusFn func(householdID uint) ([]services.BudgetStatus, error)
}

func (m *mockBudgetService) Set(householdID uint, categoryName string, limit decimal.Decimal) (*models.CategoryBudget, error) {
	if m.setFn != nil {
		return m.setFn(householdID, categoryName, limit)
	}
	return &models.CategoryBudget{HouseholdID: householdID, LimitAmount: limit}, nil
}

func (m *mockBudgetService) Status(householdID uint) ([]services.BudgetStatus, error) {
	if m.statusFn != nil {
		return m.statusFn(householdID)
	}
	return []services.BudgetStatus{}, nil
}

var _ services.BudgetServicer = (*mockBudgetService)(nil)

func setupBudgetRouter(handler *BudgetHandler) *gin.Engine {
	r := gin.New()
	member := r.Group("", injectMember(1, 7))
	member.PUT("/budgets", handler.SetBudget)
	member.GET("/budgets/status", handler.GetBudgetStatus)
	return r
}

func TestBudgetHandler_SetBudget(t *testing.T) {
	t.Run("returns 200 on success", func(t *testing.T) {
		audit := &mockAuditService{}
		var gotCategory string
		var gotLimit decimal.Decimal
		svc := &mockBudgetService{
			setFn: func(householdID uint, category string, limit decimal.Decimal) (*models.CategoryBudget, error) {
				gotCategory, gotLimit = category, limit
				return &models.CategoryBudget{Base: models.Base{ID: 4}, HouseholdID: householdID, Period: "2026-10", LimitAmount: limit}, nil
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, audit))

		rec := doRequest(r, "PUT", "/budgets", `{"category":"Продукты","limit":"50000.00"}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotCategory != "Продукты" || !gotLimit.Equal(decimal.NewFromInt(50000)) {
			t.Errorf("unexpected args %q %s", gotCategory, gotLimit)
		}
		if len(audit.entries) != 1 || audit.entries[0].changes["limit"] != "50000.00" {
			t.Errorf("expected budget audit entry, got %+v", audit.entries)
		}
	})

	t.Run("accepts numeric limit", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets", `{"category":"Кафе","limit":1500.5}`)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("returns 400 from service on non-positive limit", func(t *testing.T) {
		svc := &mockBudgetService{
			setFn: func(uint, string, decimal.Decimal) (*models.CategoryBudget, error) {
				return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "budget limit must be greater than zero")
			},
		}
		r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets", `{"category":"Кафе","limit":0}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
	})

	t.Run("returns 400 on missing category", func(t *testing.T) {
		r := setupBudgetRouter(NewBudgetHandler(&mockBudgetService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/budgets", `{"limit":100}`)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})
}

func TestBudgetHandler_GetBudgetStatus(t *testing.T) {
	svc := &mockBudgetService{
		statusFn: func(uint) ([]services.BudgetStatus, error) {
			return []services.BudgetStatus{{Category: "Продукты", Period: "2026-10", Limit: 50000, Spent: 2435, Percent: 4.9}}, nil
		},
	}
	r := setupBudgetRouter(NewBudgetHandler(svc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/budgets/status", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	budgets := parseJSON(t, rec)["budgets"].([]interface{})
	first := budgets[0].(map[string]interface{})
	if first["percent"].(float64) != 4.9 || first["spent"].(float64) != 2435 {
		t.Errorf("unexpected status %v", first)
	}
}
