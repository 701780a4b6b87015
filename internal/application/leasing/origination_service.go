package leasing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

const submissionKeyPrefix = "lease:submission:"

// submissionGuardTTL bounds how long a crashed submit can keep a
// session locked out
const submissionGuardTTL = 5 * time.Minute

// OriginationService drives the lease origination workflow: session
// lifecycle, form edits, people staging, document attachment, and the
// submit/recovery path against the external platform.
type OriginationService struct {
	sessions     *SessionRegistry
	platform     leasing.LeasePlatform
	glRepo       leasing.GLAccountRepository
	propertyRepo leasing.PropertyRepository
	tenantRepo   leasing.TenantRepository
	leaseRepo    leasing.LeaseRepository
	docStorage   leasing.DocumentStorage
	idempotency  shared.IdempotencyStore
	logger       *zap.Logger
	now          func() time.Time
}

// NewOriginationService creates an OriginationService. docStorage may
// be nil when no archive bucket is configured.
func NewOriginationService(
	sessions *SessionRegistry,
	platform leasing.LeasePlatform,
	glRepo leasing.GLAccountRepository,
	propertyRepo leasing.PropertyRepository,
	tenantRepo leasing.TenantRepository,
	leaseRepo leasing.LeaseRepository,
	docStorage leasing.DocumentStorage,
	idempotency shared.IdempotencyStore,
	logger *zap.Logger,
) *OriginationService {
	return &OriginationService{
		sessions:     sessions,
		platform:     platform,
		glRepo:       glRepo,
		propertyRepo: propertyRepo,
		tenantRepo:   tenantRepo,
		leaseRepo:    leaseRepo,
		docStorage:   docStorage,
		idempotency:  idempotency,
		logger:       logger,
		now:          time.Now,
	}
}

// CreateSession opens a new origination session and loads the chart of
// accounts into it. A failing account load is logged and tolerated;
// validation relaxes its GL checks when no accounts are available.
func (s *OriginationService) CreateSession(ctx context.Context) (*SessionResponse, error) {
	session := s.sessions.Create()

	accounts, err := s.glRepo.ListActive(ctx)
	if err != nil {
		s.logger.Warn("failed to load GL accounts for session",
			zap.String("session_id", session.ID.String()),
			zap.Error(err))
	} else {
		session.Form.SetAccounts(accounts)
	}

	return toSessionResponse(session), nil
}

// GetSession returns the current session state
func (s *OriginationService) GetSession(ctx context.Context, id uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	var resp *SessionResponse
	err = session.WithLock(func() error {
		resp = toSessionResponse(session)
		return nil
	})
	return resp, err
}

// UpdateForm applies header edits to the session
func (s *OriginationService) UpdateForm(ctx context.Context, id uuid.UUID, req UpdateFormRequest) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		form := session.Form
		if req.PropertyID != nil {
			form.PropertyID = *req.PropertyID
		}
		if req.UnitID != nil {
			form.UnitID = *req.UnitID
		}
		if req.LeaseType != nil {
			leaseType := leasing.LeaseType(*req.LeaseType)
			if !leaseType.IsValid() {
				return shared.NewDomainError("INVALID_LEASE_TYPE", "Unknown lease type")
			}
			form.LeaseType = leaseType
		}
		if req.FromDate != nil {
			d, err := parseDate(*req.FromDate)
			if err != nil {
				return err
			}
			form.SetFromDate(d)
		}
		if req.ToDate != nil {
			d, err := parseDate(*req.ToDate)
			if err != nil {
				return err
			}
			form.SetToDate(d)
		}
		if req.ProrateFirstMonth != nil {
			form.ProrateFirstMonth = *req.ProrateFirstMonth
		}
		if req.ProrateLastMonth != nil {
			form.ProrateLastMonth = *req.ProrateLastMonth
		}
		if req.SyncPlatform != nil {
			form.SyncPlatform = *req.SyncPlatform
		}
		if req.SendWelcomeEmail != nil {
			form.SendWelcomeEmail = *req.SendWelcomeEmail
		}
		form.Recompute()
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UpdateCharges replaces the charge section of the session
func (s *OriginationService) UpdateCharges(ctx context.Context, id uuid.UUID, req UpdateChargesRequest) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		charges, err := toChargeForm(req)
		if err != nil {
			return err
		}
		session.Form.Charges = *charges
		leasing.ResolveChargeDefaults(session.Form.Accounts(), &session.Form.Charges)
		session.Form.Recompute()
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// StagePerson stages a new tenant or cosigner on the session
func (s *OriginationService) StagePerson(ctx context.Context, id uuid.UUID, req StagePersonRequest) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		address, err := toAddress(req.Address)
		if err != nil {
			return shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}
		altAddress, err := toAddress(req.AltAddress)
		if err != nil {
			return shared.NewDomainError("INVALID_ADDRESS", err.Error())
		}

		person, err := leasing.NewStagedPerson(req.FirstName, req.LastName, leasing.StagedPerson{
			Email:             req.Email,
			Phone:             req.Phone,
			AltEmail:          req.AltEmail,
			AltPhone:          req.AltPhone,
			SameAsUnitAddress: req.SameAsUnitAddress,
			Address:           address,
			AltAddress:        altAddress,
		})
		if err != nil {
			return err
		}
		if err := session.People.Stage(leasing.PersonRole(req.Role), person); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// UnstagePerson removes a staged person by role and index
func (s *OriginationService) UnstagePerson(ctx context.Context, id uuid.UUID, role string, index int) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		if err := session.People.Unstage(leasing.PersonRole(role), index); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// SelectExistingTenant attaches an existing tenant to the session.
// The tenant is looked up so the session carries a verified name.
func (s *OriginationService) SelectExistingTenant(ctx context.Context, id uuid.UUID, req SelectExistingRequest) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	tenant, err := s.tenantRepo.FindByID(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		if err := session.People.SelectExisting(leasing.ExistingTenantRef{
			TenantID: tenant.ID,
			Name:     tenant.FullName(),
			Email:    tenant.Email,
		}); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// DeselectExistingTenant removes a selected existing tenant
func (s *OriginationService) DeselectExistingTenant(ctx context.Context, id, tenantID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		if err := session.People.DeselectExisting(tenantID); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// AttachFile validates and attaches a document to the session
func (s *OriginationService) AttachFile(ctx context.Context, id uuid.UUID, name, contentType string, content []byte) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		if err := session.Files.Add(leasing.NewPendingFile(name, contentType, content)); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// RemoveFile detaches a document from the session
func (s *OriginationService) RemoveFile(ctx context.Context, id, fileID uuid.UUID) (*SessionResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	var resp *SessionResponse
	err = session.WithLock(func() error {
		if err := session.Files.Remove(fileID); err != nil {
			return err
		}
		resp = toSessionResponse(session)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// Cancel discards the session. Nothing persisted outside the session
// is touched: a cancelled session with a created lease leaves that
// lease in place, no compensation runs.
func (s *OriginationService) Cancel(ctx context.Context, id uuid.UUID) error {
	session, err := s.sessions.Get(id)
	if err != nil {
		return err
	}
	if session.Submission.InFlight() {
		return shared.NewDomainError(shared.ErrSubmissionInFlight.Code,
			"Cannot cancel while a submission is running")
	}
	s.sessions.Remove(id)
	return nil
}

// Submit runs the submission pipeline: validate, create the lease at
// most once, upload pending documents, finalize. A failed attempt
// leaves the session in a recoverable state; a retry after a creation
// success resumes at upload and never creates a second lease.
func (s *OriginationService) Submit(ctx context.Context, id uuid.UUID) (*SubmitResponse, error) {
	session, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}

	guardKey := submissionKeyPrefix + id.String()
	acquired, err := s.idempotency.MarkProcessed(ctx, guardKey, submissionGuardTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire submission guard: %w", err)
	}
	if !acquired {
		return nil, shared.ErrSubmissionInFlight
	}
	defer func() {
		if err := s.idempotency.Release(ctx, guardKey); err != nil {
			s.logger.Warn("failed to release submission guard",
				zap.String("session_id", id.String()),
				zap.Error(err))
		}
	}()

	var resp *SubmitResponse
	err = session.WithLock(func() error {
		var err error
		resp, err = s.submit(ctx, session)
		return err
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *OriginationService) submit(ctx context.Context, session *Session) (*SubmitResponse, error) {
	sub := session.Submission

	if err := sub.BeginValidation(); err != nil {
		return nil, err
	}

	payload, err := leasing.BuildPayload(session.Form, session.People, s.now())
	if err != nil {
		if failErr := sub.Fail(err.Error()); failErr != nil {
			return nil, failErr
		}
		return nil, err
	}

	if sub.RequiresCreate() {
		if err := sub.BeginCreate(); err != nil {
			return nil, err
		}
		leaseID, err := s.platform.CreateLease(ctx, payload)
		if err != nil {
			msg := "Lease creation failed: " + err.Error()
			if failErr := sub.Fail(msg); failErr != nil {
				return nil, failErr
			}
			return nil, shared.NewDomainError(shared.ErrCreationFailed.Code, msg)
		}
		if err := sub.RecordCreated(leaseID, session.Files.HasPending()); err != nil {
			return nil, err
		}
		s.logger.Info("lease created on platform",
			zap.String("session_id", session.ID.String()),
			zap.Int64("lease_id", leaseID))
		s.saveLocalLease(ctx, session, leaseID)
	} else {
		if err := sub.SkipToUpload(); err != nil {
			return nil, err
		}
		s.logger.Info("resuming submission at document upload",
			zap.String("session_id", session.ID.String()),
			zap.Int64("lease_id", *sub.CreatedLeaseID))
	}

	leaseID := *sub.CreatedLeaseID

	if sub.Phase == leasing.PhaseCreatedAwaitingUpload {
		if err := sub.BeginUpload(); err != nil {
			return nil, err
		}
	}

	var results []leasing.UploadResult
	if sub.Phase == leasing.PhaseUploadingFiles {
		results = session.Files.UploadAll(ctx, leaseID, s.uploadDocument)
	}

	resp := &SubmitResponse{
		LeaseID: leaseID,
		Files:   toUploadResponses(results),
	}

	if !session.Files.AllUploaded() {
		failed := 0
		for _, r := range results {
			if r.Status == leasing.FileStatusError {
				failed++
			}
		}
		msg := fmt.Sprintf("%d document(s) failed to upload", failed)
		if err := sub.Fail(msg); err != nil {
			return nil, err
		}
		resp.Phase = string(sub.Phase)
		resp.Error = msg
		return resp, nil
	}

	if err := sub.Finalize(); err != nil {
		return nil, err
	}
	resp.Phase = string(sub.Phase)
	s.sessions.Remove(session.ID)
	return resp, nil
}

// uploadDocument pushes one document to the platform and archives a
// copy in object storage when an archive is configured. Archive
// failures are logged, not surfaced; the platform copy is the one that
// counts.
func (s *OriginationService) uploadDocument(ctx context.Context, leaseID int64, file *leasing.PendingFile) error {
	if err := s.platform.UploadLeaseDocument(ctx, leaseID, file); err != nil {
		return err
	}
	if s.docStorage != nil {
		if _, err := s.docStorage.StoreDocument(ctx, leaseID, file); err != nil {
			s.logger.Warn("failed to archive lease document",
				zap.Int64("lease_id", leaseID),
				zap.String("file", file.Name),
				zap.Error(err))
		}
	}
	return nil
}

// saveLocalLease records the created lease locally. Failure is logged
// and swallowed: the platform lease exists, and blocking the workflow
// on bookkeeping would strand the user mid-submission.
func (s *OriginationService) saveLocalLease(ctx context.Context, session *Session, leaseID int64) {
	form := session.Form
	lease, err := leasing.NewLease(form.PropertyID, form.UnitID, leaseID, form.LeaseType, form.FromDate)
	if err != nil {
		s.logger.Warn("failed to build local lease record", zap.Error(err))
		return
	}
	if !form.ToDate.IsZero() {
		to := form.ToDate
		lease.ToDate = &to
	}
	if rent, ok := form.Charges.RentValue(); ok {
		lease.RentAmount = &rent
	}
	if deposit, ok := form.Charges.DepositValue(); ok {
		lease.SecurityDeposit = &deposit
	}
	lease.PaymentDueDay = form.PaymentDueDay()

	if err := s.leaseRepo.Save(ctx, lease); err != nil {
		s.logger.Warn("failed to save local lease record",
			zap.Int64("lease_id", leaseID),
			zap.Error(err))
	}
}

// ListGLAccounts returns the active chart of accounts
func (s *OriginationService) ListGLAccounts(ctx context.Context) ([]GLAccountResponse, error) {
	accounts, err := s.glRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toGLAccountResponses(accounts), nil
}

// ListProperties returns the active properties
func (s *OriginationService) ListProperties(ctx context.Context) ([]PropertyResponse, error) {
	properties, err := s.propertyRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	return toPropertyResponses(properties), nil
}

// ListUnits returns the units of a property
func (s *OriginationService) ListUnits(ctx context.Context, propertyID uuid.UUID) ([]UnitResponse, error) {
	units, err := s.propertyRepo.ListUnits(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	return toUnitResponses(units), nil
}

// SearchTenants searches existing tenants and applicants by name or email
func (s *OriginationService) SearchTenants(ctx context.Context, term string, limit int) ([]TenantSearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []TenantSearchResponse{}, nil
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 50 {
		limit = 50
	}
	tenants, err := s.tenantRepo.Search(ctx, term, limit)
	if err != nil {
		return nil, err
	}
	return toTenantSearchResponses(tenants), nil
}

// ListUnitLeases returns the leases the platform reports for a unit
func (s *OriginationService) ListUnitLeases(ctx context.Context, unitID uuid.UUID) ([]UnitLeaseResponse, error) {
	leases, err := s.platform.ListUnitLeases(ctx, unitID)
	if err != nil {
		return nil, err
	}
	return toUnitLeaseResponses(leases), nil
}

func parseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, shared.NewDomainError("INVALID_DATE", "Dates must use the YYYY-MM-DD format")
	}
	return d, nil
}

func toChargeForm(req UpdateChargesRequest) (*leasing.ChargeForm, error) {
	nextDue, err := parseDate(req.NextDueDate)
	if err != nil {
		return nil, err
	}
	depositDate, err := parseDate(req.DepositDate)
	if err != nil {
		return nil, err
	}

	cycle := leasing.RentCycle(req.RentCycle)
	if req.RentCycle == "" {
		cycle = leasing.RentCycleMonthly
	}

	form := &leasing.ChargeForm{
		RentAmount:         req.RentAmount,
		RentMemo:           req.RentMemo,
		RentCycle:          cycle,
		NextDueDate:        nextDue,
		RentGLAccountID:    req.RentGLAccountID,
		DepositAmount:      req.DepositAmount,
		DepositMemo:        req.DepositMemo,
		DepositDate:        depositDate,
		DepositGLAccountID: req.DepositGLAccountID,
	}

	for _, row := range req.ExtraRecurring {
		start, err := parseDate(row.StartDate)
		if err != nil {
			return nil, err
		}
		form.ExtraRecurring = append(form.ExtraRecurring, leasing.RecurringChargeRow{
			GLAccountID: row.GLAccountID,
			Frequency:   leasing.RentCycle(row.Frequency),
			StartDate:   start,
			Amount:      row.Amount,
			Memo:        row.Memo,
		})
	}
	for _, row := range req.ExtraOneTime {
		date, err := parseDate(row.Date)
		if err != nil {
			return nil, err
		}
		form.ExtraOneTime = append(form.ExtraOneTime, leasing.OneTimeChargeRow{
			GLAccountID: row.GLAccountID,
			Date:        date,
			Amount:      row.Amount,
			Memo:        row.Memo,
		})
	}

	return form, nil
}
