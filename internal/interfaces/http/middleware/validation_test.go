package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quoteInput struct {
	ProductID int64  `json:"product_id" binding:"required,gt=0"`
	Quantity  int    `json:"quantity" binding:"gte=0,lte=10000"`
	Kind      string `json:"kind" binding:"omitempty,oneof=sale purchase order"`
}

func validationRouter() *gin.Engine {
	SetupValidator()
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", func(c *gin.Context) {
		var req quoteInput
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func postJSON(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	assert.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	router := validationRouter()

	t.Run("reports json field names", func(t *testing.T) {
		w := postJSON(router, `{"quantity": -1, "kind": "gift"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.RequestID)

		fields := map[string]string{}
		for _, d := range resp.Error.Details {
			fields[d.Field] = d.Message
		}
		assert.Equal(t, "This field is required", fields["product_id"])
		assert.Equal(t, "Must be greater than or equal to 0", fields["quantity"])
		assert.Equal(t, "Must be one of: sale purchase order", fields["kind"])
	})

	t.Run("malformed json", func(t *testing.T) {
		w := postJSON(router, `{"product_id": `)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeInvalidJSON)
	})

	t.Run("wrong json type", func(t *testing.T) {
		w := postJSON(router, `{"product_id": "seven"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), dto.ErrCodeValidation)
		assert.Contains(t, w.Body.String(), "product_id")
	})

	t.Run("valid input", func(t *testing.T) {
		w := postJSON(router, `{"product_id": 7, "quantity": 2, "kind": "sale"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}
