package handler

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReferenceHandler_ListGLAccounts(t *testing.T) {
	f := newHandlerFixture()
	f.glRepo.accounts = []leasing.GLAccount{
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, Name: "Rent Income", Type: "Income", IsActive: true},
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, Name: "Security Deposit Liability", Type: "Liability", IsSecurityDepositLiability: true, IsActive: true},
	}

	w := f.do(t, http.MethodGet, "/api/v1/reference/gl-accounts", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	accounts := resp.Data.([]interface{})
	require.Len(t, accounts, 2)
	first := accounts[0].(map[string]interface{})
	assert.Equal(t, "Rent Income", first["name"])
}

func TestReferenceHandler_ListProperties(t *testing.T) {
	f := newHandlerFixture()
	f.propRepo.properties = []leasing.Property{
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, Name: "Maple Court", Status: "Active"},
	}

	w := f.do(t, http.MethodGet, "/api/v1/reference/properties", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	properties := resp.Data.([]interface{})
	require.Len(t, properties, 1)
	assert.Equal(t, "Maple Court", properties[0].(map[string]interface{})["name"])
}

func TestReferenceHandler_ListUnits(t *testing.T) {
	f := newHandlerFixture()
	propertyID := uuid.New()
	f.propRepo.units = []leasing.Unit{
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, PropertyID: propertyID, UnitNumber: "101", Status: "Vacant"},
		{BaseEntity: shared.BaseEntity{ID: uuid.New()}, PropertyID: uuid.New(), UnitNumber: "201", Status: "Vacant"},
	}

	t.Run("returns units of the property", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/properties/"+propertyID.String()+"/units", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		units := resp.Data.([]interface{})
		require.Len(t, units, 1)
		assert.Equal(t, "101", units[0].(map[string]interface{})["unit_number"])
	})

	t.Run("malformed property id returns 400", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/properties/nope/units", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReferenceHandler_SearchTenants(t *testing.T) {
	f := newHandlerFixture()
	f.tenRepo.tenants = []leasing.TenantSummary{
		{ID: uuid.New(), FirstName: "Maria", LastName: "Santos", Email: "maria@example.com"},
	}

	t.Run("returns matches for a term", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/tenants?search=maria", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		tenants := resp.Data.([]interface{})
		require.Len(t, tenants, 1)
		assert.Equal(t, "Maria Santos", tenants[0].(map[string]interface{})["name"])
	})

	t.Run("blank term returns an empty list", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/tenants", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		tenants := resp.Data.([]interface{})
		assert.Empty(t, tenants)
	})

	t.Run("invalid limit returns 400", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/tenants?search=maria&limit=zero", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestReferenceHandler_ListUnitLeases(t *testing.T) {
	f := newHandlerFixture()
	unitID := uuid.New()
	f.platform.leases = []leasing.PlatformLease{
		{ID: 301, LeaseFromDate: "2025-01-01", LeaseToDate: "2025-12-31", Status: "Active"},
	}

	t.Run("returns platform leases", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/units/"+unitID.String()+"/leases", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		leases := resp.Data.([]interface{})
		require.Len(t, leases, 1)
		assert.Equal(t, float64(301), leases[0].(map[string]interface{})["id"])
	})

	t.Run("malformed unit id returns 400", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/reference/units/nope/leases", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
