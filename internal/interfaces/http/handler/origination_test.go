package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/propman/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Stub implementations backing the origination service in handler tests

type stubPlatform struct {
	createID  int64
	createErr error
	leases    []leasing.PlatformLease
	listErr   error
	uploadErr error
}

func (s *stubPlatform) CreateLease(ctx context.Context, payload *leasing.LeaseCreationPayload) (int64, error) {
	if s.createErr != nil {
		return 0, s.createErr
	}
	return s.createID, nil
}

func (s *stubPlatform) UploadLeaseDocument(ctx context.Context, leaseID int64, file *leasing.PendingFile) error {
	return s.uploadErr
}

func (s *stubPlatform) ListUnitLeases(ctx context.Context, unitID uuid.UUID) ([]leasing.PlatformLease, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.leases, nil
}

type stubGLAccountRepository struct {
	accounts []leasing.GLAccount
	err      error
}

func (s *stubGLAccountRepository) ListActive(ctx context.Context) ([]leasing.GLAccount, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.accounts, nil
}

func (s *stubGLAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.GLAccount, error) {
	for i := range s.accounts {
		if s.accounts[i].ID == id {
			return &s.accounts[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

type stubPropertyRepository struct {
	properties []leasing.Property
	units      []leasing.Unit
	err        error
}

func (s *stubPropertyRepository) ListActive(ctx context.Context) ([]leasing.Property, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.properties, nil
}

func (s *stubPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	for i := range s.properties {
		if s.properties[i].ID == id {
			return &s.properties[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

func (s *stubPropertyRepository) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]leasing.Unit, 0)
	for _, u := range s.units {
		if u.PropertyID == propertyID {
			result = append(result, u)
		}
	}
	return result, nil
}

func (s *stubPropertyRepository) FindUnitByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	for i := range s.units {
		if s.units[i].ID == id {
			return &s.units[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

type stubTenantRepository struct {
	tenants []leasing.TenantSummary
	err     error
}

func (s *stubTenantRepository) Search(ctx context.Context, term string, limit int) ([]leasing.TenantSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.tenants, nil
}

func (s *stubTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.TenantSummary, error) {
	for i := range s.tenants {
		if s.tenants[i].ID == id {
			return &s.tenants[i], nil
		}
	}
	return nil, shared.ErrNotFound
}

type stubLeaseRepository struct {
	saved []*leasing.Lease
}

func (s *stubLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	s.saved = append(s.saved, lease)
	return nil
}

func (s *stubLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	return nil, shared.ErrNotFound
}

func (s *stubLeaseRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.Lease, error) {
	return nil, nil
}

type stubGuard struct{}

func (s *stubGuard) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (s *stubGuard) IsProcessed(ctx context.Context, key string) (bool, error) {
	return false, nil
}

func (s *stubGuard) Release(ctx context.Context, key string) error { return nil }

func (s *stubGuard) Close() error { return nil }

type handlerFixture struct {
	router   *gin.Engine
	platform *stubPlatform
	glRepo   *stubGLAccountRepository
	propRepo *stubPropertyRepository
	tenRepo  *stubTenantRepository
}

func newHandlerFixture() *handlerFixture {
	f := &handlerFixture{
		platform: &stubPlatform{createID: 9001},
		glRepo:   &stubGLAccountRepository{},
		propRepo: &stubPropertyRepository{},
		tenRepo:  &stubTenantRepository{},
	}

	service := leasingapp.NewOriginationService(
		leasingapp.NewSessionRegistry(time.Hour),
		f.platform,
		f.glRepo,
		f.propRepo,
		f.tenRepo,
		&stubLeaseRepository{},
		nil,
		&stubGuard{},
		zap.NewNop(),
	)

	f.router = gin.New()
	api := f.router.Group("/api/v1")
	NewOriginationHandler(service).RegisterRoutes(api)
	NewReferenceHandler(service).RegisterRoutes(api)
	return f
}

func (f *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *handlerFixture) createSession(t *testing.T) string {
	t.Helper()

	w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions", nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	return data["id"].(string)
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestOriginationHandler_CreateSession(t *testing.T) {
	f := newHandlerFixture()

	w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions", nil)

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "Idle", data["phase"])
	_, err := uuid.Parse(data["id"].(string))
	assert.NoError(t, err)
}

func TestOriginationHandler_GetSession(t *testing.T) {
	f := newHandlerFixture()

	t.Run("returns the session", func(t *testing.T) {
		id := f.createSession(t)

		w := f.do(t, http.MethodGet, "/api/v1/leasing/sessions/"+id, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, id, data["id"])
	})

	t.Run("unknown session returns 404", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/leasing/sessions/"+uuid.New().String(), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeSessionNotFound, resp.Error.Code)
	})

	t.Run("malformed session id returns 400", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/leasing/sessions/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOriginationHandler_UpdateForm(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	t.Run("updates dates and proration flags", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/v1/leasing/sessions/"+id+"/form", gin.H{
			"from_date":           "2026-09-10",
			"to_date":             "2027-09-09",
			"prorate_first_month": true,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "2026-09-10", data["from_date"])
		assert.Equal(t, true, data["prorate_first_month"])
	})

	t.Run("rejects an unknown lease type", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/v1/leasing/sessions/"+id+"/form", gin.H{
			"lease_type": "MonthToMonth",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/api/v1/leasing/sessions/"+id+"/form",
			strings.NewReader("{not json"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOriginationHandler_StagePerson(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	t.Run("stages a tenant", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/people", gin.H{
			"role":       "Tenant",
			"first_name": "Maria",
			"last_name":  "Santos",
			"email":      "maria@example.com",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		tenants := data["tenants"].([]interface{})
		require.Len(t, tenants, 1)
		first := tenants[0].(map[string]interface{})
		assert.Equal(t, "Maria", first["first_name"])
	})

	t.Run("missing name fails binding", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/people", gin.H{
			"role": "Tenant",
		})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.NotEmpty(t, resp.Error.Details)
	})

	t.Run("unstages by role and index", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/v1/leasing/sessions/"+id+"/people/Tenant/0", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Empty(t, data["tenants"])
	})

	t.Run("non-numeric index returns 400", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/v1/leasing/sessions/"+id+"/people/Tenant/first", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOriginationHandler_ExistingTenants(t *testing.T) {
	f := newHandlerFixture()
	tenantID := uuid.New()
	f.tenRepo.tenants = []leasing.TenantSummary{
		{ID: tenantID, FirstName: "Lee", LastName: "Wong", Email: "lee@example.com"},
	}
	id := f.createSession(t)

	t.Run("selects a known tenant", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/existing-tenants", gin.H{
			"tenant_id": tenantID.String(),
		})

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		existing := data["existing_tenants"].([]interface{})
		require.Len(t, existing, 1)
	})

	t.Run("deselects the tenant", func(t *testing.T) {
		w := f.do(t, http.MethodDelete,
			"/api/v1/leasing/sessions/"+id+"/existing-tenants/"+tenantID.String(), nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Empty(t, data["existing_tenants"])
	})

	t.Run("unknown tenant returns 404", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/existing-tenants", gin.H{
			"tenant_id": uuid.New().String(),
		})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOriginationHandler_AttachFile(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	attach := func(t *testing.T, fieldName, fileName, contentType string, content []byte) *httptest.ResponseRecorder {
		t.Helper()

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		header := make(map[string][]string)
		header["Content-Disposition"] = []string{`form-data; name="` + fieldName + `"; filename="` + fileName + `"`}
		if contentType != "" {
			header["Content-Type"] = []string{contentType}
		}
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/leasing/sessions/"+id+"/files", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	t.Run("attaches a document", func(t *testing.T) {
		w := attach(t, "file", "lease.pdf", "application/pdf", []byte("pdf content"))

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		files := data["files"].([]interface{})
		require.Len(t, files, 1)
		first := files[0].(map[string]interface{})
		assert.Equal(t, "lease.pdf", first["name"])
		assert.Equal(t, "pending", first["status"])
	})

	t.Run("removes the document", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/v1/leasing/sessions/"+id, nil)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		files := data["files"].([]interface{})
		require.Len(t, files, 1)
		fileID := files[0].(map[string]interface{})["id"].(string)

		w = f.do(t, http.MethodDelete, "/api/v1/leasing/sessions/"+id+"/files/"+fileID, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp = decodeResponse(t, w)
		data = resp.Data.(map[string]interface{})
		assert.Empty(t, data["files"])
	})

	t.Run("missing file part returns 400", func(t *testing.T) {
		w := attach(t, "document", "lease.pdf", "application/pdf", []byte("pdf content"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("disallowed type is rejected", func(t *testing.T) {
		w := attach(t, "file", "virus.exe", "application/x-msdownload", []byte{0x4d, 0x5a})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOriginationHandler_Submit(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	t.Run("incomplete session fails validation", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/submit", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		require.NotNil(t, resp.Error)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Contains(t, resp.Error.Message, "property")
	})

	t.Run("complete session creates the lease", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/v1/leasing/sessions/"+id+"/form", gin.H{
			"property_id": uuid.New().String(),
			"unit_id":     uuid.New().String(),
			"from_date":   "2026-09-10",
			"to_date":     "2027-09-09",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/people", gin.H{
			"role":       "Tenant",
			"first_name": "Maria",
			"last_name":  "Santos",
		})
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodPost, "/api/v1/leasing/sessions/"+id+"/submit", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		resp := decodeResponse(t, w)
		data := resp.Data.(map[string]interface{})
		assert.Equal(t, "Finalized", data["phase"])
		assert.Equal(t, float64(9001), data["lease_id"])
	})
}

func TestOriginationHandler_Cancel(t *testing.T) {
	f := newHandlerFixture()
	id := f.createSession(t)

	w := f.do(t, http.MethodDelete, "/api/v1/leasing/sessions/"+id, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = f.do(t, http.MethodGet, "/api/v1/leasing/sessions/"+id, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
