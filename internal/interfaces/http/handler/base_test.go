package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
	"github.com/petsupply/storefront/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Set(middleware.RequestIDKey, "req-1")
	return c, w
}

func TestBaseHandler_HandleError(t *testing.T) {
	view := inventory.NewStockView()
	view.Set(7, 1)
	stockErr := inventory.ValidateAvailability(7, decimal.NewFromInt(3), view)
	require.Error(t, stockErr)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		retryable  bool
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, dto.ErrCodeNotFound, true},
		{"conflict", shared.NewDomainError(shared.CodeConflict, "stale"), http.StatusConflict, dto.ErrCodeConflict, false},
		{"invalid state", shared.NewDomainError(shared.CodeInvalidState, "bad status"), http.StatusUnprocessableEntity, dto.ErrCodeInvalidState, false},
		{"insufficient stock", stockErr, http.StatusUnprocessableEntity, dto.ErrCodeInsufficientStock, false},
		{"transient wrapped", fmt.Errorf("get sale: %w", shared.NewDomainError(shared.CodeTransient, "timeout")), http.StatusServiceUnavailable, dto.ErrCodeTransient, true},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, dto.ErrCodeInternal, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := newTestContext()
			h := &BaseHandler{}

			h.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
			assert.Equal(t, tt.retryable, resp.Error.Retryable)
			assert.Equal(t, "req-1", resp.Error.RequestID)
		})
	}
}

func TestBaseHandler_HandleError_StockMessageNamesProduct(t *testing.T) {
	view := inventory.NewStockView()
	view.Set(7, 1)
	c, w := newTestContext()

	(&BaseHandler{}).HandleError(c, inventory.ValidateAvailability(7, decimal.NewFromInt(3), view))

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error.Message, "7")
}

func TestBaseHandler_HandleError_Nil(t *testing.T) {
	c, w := newTestContext()

	(&BaseHandler{}).HandleError(c, nil)

	assert.Empty(t, w.Body.String())
}

func TestBaseHandler_Created(t *testing.T) {
	c, w := newTestContext()

	(&BaseHandler{}).Created(c, map[string]int{"id": 9})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":9}}`, w.Body.String())
}
