package leasing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockLeasePlatform is a mock implementation of LeasePlatform
type MockLeasePlatform struct {
	mock.Mock
}

func (m *MockLeasePlatform) CreateLease(ctx context.Context, payload *leasing.LeaseCreationPayload) (int64, error) {
	args := m.Called(ctx, payload)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockLeasePlatform) UploadLeaseDocument(ctx context.Context, leaseID int64, file *leasing.PendingFile) error {
	args := m.Called(ctx, leaseID, file)
	return args.Error(0)
}

func (m *MockLeasePlatform) ListUnitLeases(ctx context.Context, unitID uuid.UUID) ([]leasing.PlatformLease, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).([]leasing.PlatformLease), args.Error(1)
}

// MockGLAccountRepository is a mock implementation of GLAccountRepository
type MockGLAccountRepository struct {
	mock.Mock
}

func (m *MockGLAccountRepository) ListActive(ctx context.Context) ([]leasing.GLAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]leasing.GLAccount), args.Error(1)
}

func (m *MockGLAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.GLAccount, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.GLAccount), args.Error(1)
}

// MockPropertyRepository is a mock implementation of PropertyRepository
type MockPropertyRepository struct {
	mock.Mock
}

func (m *MockPropertyRepository) ListActive(ctx context.Context) ([]leasing.Property, error) {
	args := m.Called(ctx)
	return args.Get(0).([]leasing.Property), args.Error(1)
}

func (m *MockPropertyRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Property), args.Error(1)
}

func (m *MockPropertyRepository) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]leasing.Unit, error) {
	args := m.Called(ctx, propertyID)
	return args.Get(0).([]leasing.Unit), args.Error(1)
}

func (m *MockPropertyRepository) FindUnitByID(ctx context.Context, id uuid.UUID) (*leasing.Unit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Unit), args.Error(1)
}

// MockTenantRepository is a mock implementation of TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) Search(ctx context.Context, term string, limit int) ([]leasing.TenantSummary, error) {
	args := m.Called(ctx, term, limit)
	return args.Get(0).([]leasing.TenantSummary), args.Error(1)
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.TenantSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.TenantSummary), args.Error(1)
}

// MockLeaseRepository is a mock implementation of LeaseRepository
type MockLeaseRepository struct {
	mock.Mock
}

func (m *MockLeaseRepository) Save(ctx context.Context, lease *leasing.Lease) error {
	args := m.Called(ctx, lease)
	return args.Error(0)
}

func (m *MockLeaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*leasing.Lease, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*leasing.Lease), args.Error(1)
}

func (m *MockLeaseRepository) ListByUnit(ctx context.Context, unitID uuid.UUID) ([]leasing.Lease, error) {
	args := m.Called(ctx, unitID)
	return args.Get(0).([]leasing.Lease), args.Error(1)
}

// MockIdempotencyStore is a mock implementation of IdempotencyStore
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) IsProcessed(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

type serviceFixture struct {
	service     *OriginationService
	sessions    *SessionRegistry
	platform    *MockLeasePlatform
	glRepo      *MockGLAccountRepository
	propRepo    *MockPropertyRepository
	tenantRepo  *MockTenantRepository
	leaseRepo   *MockLeaseRepository
	idempotency *MockIdempotencyStore
}

func newFixture() *serviceFixture {
	f := &serviceFixture{
		sessions:    NewSessionRegistry(time.Hour),
		platform:    new(MockLeasePlatform),
		glRepo:      new(MockGLAccountRepository),
		propRepo:    new(MockPropertyRepository),
		tenantRepo:  new(MockTenantRepository),
		leaseRepo:   new(MockLeaseRepository),
		idempotency: new(MockIdempotencyStore),
	}
	f.service = NewOriginationService(
		f.sessions, f.platform, f.glRepo, f.propRepo, f.tenantRepo,
		f.leaseRepo, nil, f.idempotency, zap.NewNop(),
	)
	return f
}

func glAccounts() []leasing.GLAccount {
	return []leasing.GLAccount{
		{BaseEntity: shared.NewBaseEntity(), Name: "Rent Income", Type: "Income", IsActive: true},
		{BaseEntity: shared.NewBaseEntity(), Name: "Security Deposits", Type: "Liability", IsSecurityDepositLiability: true, IsActive: true},
	}
}

func (f *serviceFixture) allowSubmission() {
	f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)
	f.idempotency.On("Release", mock.Anything, mock.Anything).Return(nil)
}

// readySession creates a session that would pass submit validation
func (f *serviceFixture) readySession(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()

	f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	propertyID := uuid.New()
	unitID := uuid.New()
	from := "2026-04-15"
	_, err = f.service.UpdateForm(ctx, created.ID, UpdateFormRequest{
		PropertyID: &propertyID,
		UnitID:     &unitID,
		FromDate:   &from,
	})
	require.NoError(t, err)

	session, err := f.sessions.Get(created.ID)
	require.NoError(t, err)
	session.Form.SetRentAmount("2000")

	_, err = f.service.StagePerson(ctx, created.ID, StagePersonRequest{
		Role:      "Tenant",
		FirstName: "Alice",
		LastName:  "Tester",
		Email:     "alice@example.com",
	})
	require.NoError(t, err)

	return created.ID
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()

	t.Run("loads GL accounts into the form", func(t *testing.T) {
		f := newFixture()
		accounts := glAccounts()
		f.glRepo.On("ListActive", mock.Anything).Return(accounts, nil).Once()

		resp, err := f.service.CreateSession(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Idle", resp.Phase)
		assert.Equal(t, "Fixed", resp.LeaseType)
		assert.True(t, resp.SyncPlatform)

		session, err := f.sessions.Get(resp.ID)
		require.NoError(t, err)
		// defaults resolved from the loaded accounts
		assert.Equal(t, accounts[0].ID, session.Form.Charges.RentGLAccountID)
		assert.Equal(t, accounts[1].ID, session.Form.Charges.DepositGLAccountID)
	})

	t.Run("tolerates a failing account load", func(t *testing.T) {
		f := newFixture()
		f.glRepo.On("ListActive", mock.Anything).Return(nil, errors.New("db down")).Once()

		resp, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		session, err := f.sessions.Get(resp.ID)
		require.NoError(t, err)
		assert.Empty(t, session.Form.Accounts())
	})
}

func TestUpdateForm(t *testing.T) {
	ctx := context.Background()

	t.Run("derives dates from the start date", func(t *testing.T) {
		f := newFixture()
		f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
		created, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		from := "2026-04-15"
		resp, err := f.service.UpdateForm(ctx, created.ID, UpdateFormRequest{FromDate: &from})
		require.NoError(t, err)
		assert.Equal(t, "2026-04-15", resp.FromDate)
		assert.Equal(t, "2027-04-14", resp.ToDate)
		assert.Equal(t, "2026-04-15", resp.Charges.NextDueDate)
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		f := newFixture()
		f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
		created, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		bad := "04/15/2026"
		_, err = f.service.UpdateForm(ctx, created.ID, UpdateFormRequest{FromDate: &bad})
		require.Error(t, err)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newFixture()
		_, err := f.service.UpdateForm(ctx, uuid.New(), UpdateFormRequest{})
		require.Error(t, err)
	})
}

func TestUpdateCharges(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	resp, err := f.service.UpdateCharges(ctx, created.ID, UpdateChargesRequest{
		RentAmount:  "$2,000",
		RentCycle:   "Monthly",
		NextDueDate: "2026-04-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "$2,000", resp.Charges.RentAmount)
	// defaults re-resolved after the charge section was replaced
	assert.NotEqual(t, uuid.Nil, resp.Charges.RentGLAccountID)
}

func TestStagePersonAndSelectExisting(t *testing.T) {
	ctx := context.Background()

	t.Run("stages people and reports counts", func(t *testing.T) {
		f := newFixture()
		f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
		created, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		resp, err := f.service.StagePerson(ctx, created.ID, StagePersonRequest{
			Role: "Tenant", FirstName: "Alice", LastName: "Tester",
		})
		require.NoError(t, err)
		require.Len(t, resp.Tenants, 1)

		resp, err = f.service.UnstagePerson(ctx, created.ID, "Tenant", 0)
		require.NoError(t, err)
		assert.Empty(t, resp.Tenants)
	})

	t.Run("select existing verifies the tenant", func(t *testing.T) {
		f := newFixture()
		f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
		created, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		tenantID := uuid.New()
		f.tenantRepo.On("FindByID", mock.Anything, tenantID).
			Return(&leasing.TenantSummary{ID: tenantID, FirstName: "Dana", LastName: "Tester"}, nil).Once()

		resp, err := f.service.SelectExistingTenant(ctx, created.ID, SelectExistingRequest{TenantID: tenantID})
		require.NoError(t, err)
		require.Len(t, resp.ExistingTenants, 1)
		assert.Equal(t, "Dana Tester", resp.ExistingTenants[0].Name)

		f.tenantRepo.On("FindByID", mock.Anything, uuid.Nil).Return(nil, shared.ErrNotFound).Maybe()
		_, err = f.service.DeselectExistingTenant(ctx, created.ID, tenantID)
		require.NoError(t, err)
	})
}

func TestAttachFile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	resp, err := f.service.AttachFile(ctx, created.ID, "lease.pdf", "application/pdf", []byte("content"))
	require.NoError(t, err)
	require.Len(t, resp.Files, 1)
	assert.Equal(t, "pending", resp.Files[0].Status)

	_, err = f.service.AttachFile(ctx, created.ID, "malware.exe", "application/octet-stream", []byte("x"))
	require.Error(t, err)

	resp, err = f.service.RemoveFile(ctx, created.ID, resp.Files[0].ID)
	require.NoError(t, err)
	assert.Empty(t, resp.Files)
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("happy path with documents", func(t *testing.T) {
		f := newFixture()
		f.allowSubmission()
		id := f.readySession(t)

		_, err := f.service.AttachFile(ctx, id, "lease.pdf", "application/pdf", []byte("content"))
		require.NoError(t, err)

		f.platform.On("CreateLease", mock.Anything, mock.MatchedBy(func(p *leasing.LeaseCreationPayload) bool {
			return p.LeaseFromDate == "2026-04-15" && len(p.NewPeople) == 1
		})).Return(int64(4711), nil).Once()
		f.platform.On("UploadLeaseDocument", mock.Anything, int64(4711), mock.Anything).Return(nil).Once()
		f.leaseRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := f.service.Submit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Finalized", resp.Phase)
		assert.Equal(t, int64(4711), resp.LeaseID)
		require.Len(t, resp.Files, 1)
		assert.Equal(t, "uploaded", resp.Files[0].Status)

		// session is gone once finalized
		_, err = f.sessions.Get(id)
		require.Error(t, err)
		f.platform.AssertExpectations(t)
	})

	t.Run("validation failure leaves a recoverable session", func(t *testing.T) {
		f := newFixture()
		f.allowSubmission()
		f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
		created, err := f.service.CreateSession(ctx)
		require.NoError(t, err)

		_, err = f.service.Submit(ctx, created.ID)
		require.Error(t, err)

		session, err := f.sessions.Get(created.ID)
		require.NoError(t, err)
		assert.Equal(t, leasing.PhaseErrorRecoverable, session.Submission.Phase)
		assert.NotEmpty(t, session.Submission.LastError)
		f.platform.AssertNotCalled(t, "CreateLease", mock.Anything, mock.Anything)
	})

	t.Run("creation failure is recoverable and retried", func(t *testing.T) {
		f := newFixture()
		f.allowSubmission()
		id := f.readySession(t)

		f.platform.On("CreateLease", mock.Anything, mock.Anything).
			Return(int64(0), errors.New("502 bad gateway")).Once()
		_, err := f.service.Submit(ctx, id)
		require.Error(t, err)

		session, err := f.sessions.Get(id)
		require.NoError(t, err)
		assert.Equal(t, leasing.PhaseErrorRecoverable, session.Submission.Phase)
		assert.Nil(t, session.Submission.CreatedLeaseID)

		f.platform.On("CreateLease", mock.Anything, mock.Anything).Return(int64(4711), nil).Once()
		f.leaseRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()

		resp, err := f.service.Submit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Finalized", resp.Phase)
	})

	t.Run("upload failure retries without creating a second lease", func(t *testing.T) {
		f := newFixture()
		f.allowSubmission()
		id := f.readySession(t)

		_, err := f.service.AttachFile(ctx, id, "a.pdf", "application/pdf", []byte("x"))
		require.NoError(t, err)
		_, err = f.service.AttachFile(ctx, id, "b.pdf", "application/pdf", []byte("x"))
		require.NoError(t, err)

		f.platform.On("CreateLease", mock.Anything, mock.Anything).Return(int64(4711), nil).Once()
		f.leaseRepo.On("Save", mock.Anything, mock.Anything).Return(nil).Once()
		f.platform.On("UploadLeaseDocument", mock.Anything, int64(4711), mock.MatchedBy(func(f *leasing.PendingFile) bool {
			return f.Name == "a.pdf"
		})).Return(nil)
		f.platform.On("UploadLeaseDocument", mock.Anything, int64(4711), mock.MatchedBy(func(f *leasing.PendingFile) bool {
			return f.Name == "b.pdf"
		})).Return(errors.New("connection reset")).Once()

		resp, err := f.service.Submit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "ErrorRecoverable", resp.Phase)
		assert.Equal(t, int64(4711), resp.LeaseID)
		assert.Contains(t, resp.Error, "1 document(s) failed")

		// retry: creation is skipped, only the failed file re-uploads
		f.platform.On("UploadLeaseDocument", mock.Anything, int64(4711), mock.MatchedBy(func(f *leasing.PendingFile) bool {
			return f.Name == "b.pdf"
		})).Return(nil).Once()

		resp, err = f.service.Submit(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, "Finalized", resp.Phase)
		f.platform.AssertNumberOfCalls(t, "CreateLease", 1)
		f.leaseRepo.AssertNumberOfCalls(t, "Save", 1)
	})

	t.Run("concurrent submit is refused by the guard", func(t *testing.T) {
		f := newFixture()
		f.idempotency.On("MarkProcessed", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()
		id := f.readySession(t)

		_, err := f.service.Submit(ctx, id)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrSubmissionInFlight)
	})
}

func TestCancel(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.glRepo.On("ListActive", mock.Anything).Return(glAccounts(), nil).Once()
	created, err := f.service.CreateSession(ctx)
	require.NoError(t, err)

	require.NoError(t, f.service.Cancel(ctx, created.ID))
	_, err = f.sessions.Get(created.ID)
	require.Error(t, err)
}

func TestReferenceData(t *testing.T) {
	ctx := context.Background()

	t.Run("tenant search trims and bounds the query", func(t *testing.T) {
		f := newFixture()
		f.tenantRepo.On("Search", mock.Anything, "dana", 20).
			Return([]leasing.TenantSummary{{ID: uuid.New(), FirstName: "Dana", LastName: "Tester"}}, nil).Once()

		results, err := f.service.SearchTenants(ctx, "  dana  ", 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Dana Tester", results[0].Name)

		results, err = f.service.SearchTenants(ctx, "   ", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("tenant search caps oversized limits at fifty", func(t *testing.T) {
		f := newFixture()
		f.tenantRepo.On("Search", mock.Anything, "dana", 50).
			Return([]leasing.TenantSummary{}, nil).Once()

		_, err := f.service.SearchTenants(ctx, "dana", 200)
		require.NoError(t, err)
		f.tenantRepo.AssertExpectations(t)
	})

	t.Run("unit leases come from the platform", func(t *testing.T) {
		f := newFixture()
		unitID := uuid.New()
		f.platform.On("ListUnitLeases", mock.Anything, unitID).
			Return([]leasing.PlatformLease{{ID: 4711, Status: "Active"}}, nil).Once()

		leases, err := f.service.ListUnitLeases(ctx, unitID)
		require.NoError(t, err)
		require.Len(t, leases, 1)
		assert.Equal(t, int64(4711), leases[0].ID)
	})
}
