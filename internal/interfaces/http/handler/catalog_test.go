package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/petsupply/storefront/internal/domain/catalog"
	"github.com/petsupply/storefront/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCatalogHandler_ListProducts(t *testing.T) {
	f := newAPIFixture(t)
	f.products.On("ListProducts", mock.Anything).Return([]catalog.Product{*concentrate(), *collar()}, nil)

	w, resp := f.do(t, http.MethodGet, "/api/v1/products", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	require.Len(t, resp.List, 2)
	assert.Equal(t, "Concentrado", resp.List[0]["name"])
	assert.Equal(t, "Collar", resp.List[1]["name"])
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.NotNil(t, resp.Meta.RefreshedAt)

	entry, ok := f.view.Get(7)
	require.True(t, ok, "a refresh fills the stock view")
	assert.Equal(t, 5, entry.Available)
}

func TestCatalogHandler_ListProducts_BackendDown(t *testing.T) {
	f := newAPIFixture(t)
	f.products.On("ListProducts", mock.Anything).
		Return(nil, shared.NewDomainError(shared.CodeTransient, "Backend unavailable, retry the request"))

	w, resp := f.do(t, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "ERR_TRANSIENT", resp.Error.Code)
	assert.True(t, resp.Error.Retryable)
	assert.NotEmpty(t, resp.Error.RequestID)
}

func TestCatalogHandler_GetProduct(t *testing.T) {
	f := newAPIFixture(t)
	f.products.On("GetProduct", mock.Anything, int64(3)).Return(concentrate(), nil)

	w, resp := f.do(t, http.MethodGet, "/api/v1/products/3", nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Concentrado", resp.Data["name"])
	assert.Equal(t, "KG", resp.Data["unit"])
	assert.Equal(t, true, resp.Data["is_bulk"])
	assert.Equal(t, 18.0, resp.Data["gain_percent"])
}

func TestCatalogHandler_GetProduct_Vanished(t *testing.T) {
	f := newAPIFixture(t)
	f.products.On("GetProduct", mock.Anything, int64(99)).Return(nil, shared.ErrNotFound)

	w, resp := f.do(t, http.MethodGet, "/api/v1/products/99", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "refresh the catalog")
}

func TestCatalogHandler_GetProduct_InvalidID(t *testing.T) {
	f := newAPIFixture(t)

	w, resp := f.do(t, http.MethodGet, "/api/v1/products/abc", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, resp.Success)
	f.products.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestCatalogHandler_UnexpectedError(t *testing.T) {
	f := newAPIFixture(t)
	f.products.On("ListProducts", mock.Anything).Return(nil, errors.New("decoder exploded"))

	w, resp := f.do(t, http.MethodGet, "/api/v1/products", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "ERR_INTERNAL", resp.Error.Code)
	assert.NotContains(t, resp.Error.Message, "decoder")
}
