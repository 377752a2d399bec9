package handlers

import (
	"net/http"
	"time"

	"market/analyzer/internal/domain"
	"market/analyzer/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handlers struct {
	Service *service.Service
}

func New(svc *service.Service) *Handlers {
	return &Handlers{Service: svc}
}

// Imports handles POST /imports.
func (h *Handlers) Imports(c *gin.Context) {
	var req domain.ShopUnitImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, messageValidationFailed)
		return
	}

	if err := h.Service.Import(c.Request.Context(), req); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "The insertion or update was successful"})
}

// Delete handles DELETE /delete/:id.
func (h *Handlers) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if _, err := h.Service.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "message": "OK"})
}

// Node handles GET /nodes/:id.
func (h *Handlers) Node(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	view, err := h.Service.Node(id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// Sales handles GET /sales?date=.
func (h *Handlers) Sales(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	if date == nil {
		abortWithError(c, http.StatusBadRequest, messageValidationFailed)
		return
	}

	c.JSON(http.StatusOK, domain.ShopUnitStatisticResponse{Items: h.Service.Sales(*date)})
}

// Statistic handles GET /node/:id/statistic?dateStart=&dateEnd=.
func (h *Handlers) Statistic(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	start, ok := queryDate(c, "dateStart")
	if !ok {
		return
	}
	end, ok := queryDate(c, "dateEnd")
	if !ok {
		return
	}

	items, err := h.Service.Statistic(id, start, end)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, domain.ShopUnitStatisticResponse{Items: items})
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.Health(c.Request.Context()))
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, messageValidationFailed)
		return uuid.Nil, false
	}
	return id, true
}

// queryDate parses an optional RFC 3339 query parameter. It returns false after
// writing a 400 response when the value is malformed.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	date, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, messageValidationFailed)
		return nil, false
	}
	return &date, true
}
