package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/petsupply/storefront/internal/domain/inventory"
	"github.com/petsupply/storefront/internal/interfaces/http/dto"
)

// SystemHandler serves liveness. It answers from process state only, so it
// stays green while the backend is down.
type SystemHandler struct {
	BaseHandler
	name    string
	version string
	stock   *inventory.StockView
	started time.Time
}

func NewSystemHandler(name, version string, stock *inventory.StockView) *SystemHandler {
	return &SystemHandler{name: name, version: version, stock: stock, started: time.Now()}
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	Status        string `json:"status"`
	Name          string `json:"name"`
	Version       string `json:"version"`
	GoVersion     string `json:"go_version"`
	Uptime        string `json:"uptime"`
	CachedEntries int    `json:"cached_stock_entries"`
}

// Health godoc
// @ID           getHealth
// @Summary      Service health
// @Tags         system
// @Produce      json
// @Success      200 {object} dto.Response
// @Failure      500 {object} dto.Response
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	cached := 0
	if h.stock != nil {
		cached = h.stock.Len()
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(HealthResponse{
		Status:        "ok",
		Name:          h.name,
		Version:       h.version,
		GoVersion:     runtime.Version(),
		Uptime:        time.Since(h.started).Round(time.Second).String(),
		CachedEntries: cached,
	}))
}
