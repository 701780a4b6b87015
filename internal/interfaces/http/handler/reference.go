package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/propman/backend/internal/application/leasing"
)

// defaultTenantSearchLimit caps tenant search results when the client
// does not ask for a limit
const defaultTenantSearchLimit = 20

// ReferenceHandler handles the lookup endpoints that feed the
// origination form: chart of accounts, properties, units, and tenants
type ReferenceHandler struct {
	BaseHandler
	service *leasingapp.OriginationService
}

// NewReferenceHandler creates a new ReferenceHandler
func NewReferenceHandler(service *leasingapp.OriginationService) *ReferenceHandler {
	return &ReferenceHandler{
		service: service,
	}
}

// ListGLAccounts godoc
// @ID           listReferenceGLAccounts
// @Summary      List active GL accounts
// @Description  Returns the chart of accounts used for charge rows
// @Tags         reference
// @Produce      json
// @Success      200 {object} APIResponse[[]leasingapp.GLAccountResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /reference/gl-accounts [get]
func (h *ReferenceHandler) ListGLAccounts(c *gin.Context) {
	accounts, err := h.service.ListGLAccounts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, accounts)
}

// ListProperties godoc
// @ID           listReferenceProperties
// @Summary      List active properties
// @Tags         reference
// @Produce      json
// @Success      200 {object} APIResponse[[]leasingapp.PropertyResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /reference/properties [get]
func (h *ReferenceHandler) ListProperties(c *gin.Context) {
	properties, err := h.service.ListProperties(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, properties)
}

// ListUnits godoc
// @ID           listReferenceUnits
// @Summary      List units of a property
// @Tags         reference
// @Produce      json
// @Param        id path string true "Property ID"
// @Success      200 {object} APIResponse[[]leasingapp.UnitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /reference/properties/{id}/units [get]
func (h *ReferenceHandler) ListUnits(c *gin.Context) {
	propertyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid property ID")
		return
	}

	units, err := h.service.ListUnits(c.Request.Context(), propertyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, units)
}

// SearchTenants godoc
// @ID           searchReferenceTenants
// @Summary      Search existing tenants
// @Description  Searches tenants by name or email; a blank term returns nothing
// @Tags         reference
// @Produce      json
// @Param        search query string false "Search term"
// @Param        limit query int false "Maximum results" default(20)
// @Success      200 {object} APIResponse[[]leasingapp.TenantSearchResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /reference/tenants [get]
func (h *ReferenceHandler) SearchTenants(c *gin.Context) {
	limit := defaultTenantSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "Invalid limit")
			return
		}
		limit = parsed
	}

	tenants, err := h.service.SearchTenants(c.Request.Context(), c.Query("search"), limit)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, tenants)
}

// ListUnitLeases godoc
// @ID           listReferenceUnitLeases
// @Summary      List platform leases on a unit
// @Description  Returns the leases the platform already holds for a unit, used to warn about overlaps before submitting
// @Tags         reference
// @Produce      json
// @Param        id path string true "Unit ID"
// @Success      200 {object} APIResponse[[]leasingapp.UnitLeaseResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /reference/units/{id}/leases [get]
func (h *ReferenceHandler) ListUnitLeases(c *gin.Context) {
	unitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid unit ID")
		return
	}

	leases, err := h.service.ListUnitLeases(c.Request.Context(), unitID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, leases)
}

// RegisterRoutes registers all reference lookup routes
func (h *ReferenceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reference := rg.Group("/reference")
	{
		reference.GET("/gl-accounts", h.ListGLAccounts)
		reference.GET("/properties", h.ListProperties)
		reference.GET("/properties/:id/units", h.ListUnits)
		reference.GET("/tenants", h.SearchTenants)
		reference.GET("/units/:id/leases", h.ListUnitLeases)
	}
}
