package leasing

import (
	"github.com/propman/backend/internal/domain/shared"
)

// SubmissionPhase is the phase of a lease submission attempt
type SubmissionPhase string

const (
	PhaseIdle                  SubmissionPhase = "Idle"
	PhaseValidating            SubmissionPhase = "Validating"
	PhaseCreating              SubmissionPhase = "Creating"
	PhaseCreatedNoFiles        SubmissionPhase = "CreatedNoFiles"
	PhaseCreatedAwaitingUpload SubmissionPhase = "CreatedAwaitingUpload"
	PhaseUploadingFiles        SubmissionPhase = "UploadingFiles"
	PhaseFinalized             SubmissionPhase = "Finalized"
	PhaseErrorRecoverable      SubmissionPhase = "ErrorRecoverable"
)

// IsValid checks if the phase is a known SubmissionPhase
func (p SubmissionPhase) IsValid() bool {
	switch p {
	case PhaseIdle, PhaseValidating, PhaseCreating, PhaseCreatedNoFiles,
		PhaseCreatedAwaitingUpload, PhaseUploadingFiles, PhaseFinalized, PhaseErrorRecoverable:
		return true
	}
	return false
}

// CanTransitionTo checks if a transition to the target phase is legal
func (p SubmissionPhase) CanTransitionTo(target SubmissionPhase) bool {
	transitions := map[SubmissionPhase][]SubmissionPhase{
		PhaseIdle:                  {PhaseValidating},
		PhaseValidating:            {PhaseCreating, PhaseUploadingFiles, PhaseErrorRecoverable},
		PhaseCreating:              {PhaseCreatedNoFiles, PhaseCreatedAwaitingUpload, PhaseErrorRecoverable},
		PhaseCreatedNoFiles:        {PhaseFinalized},
		PhaseCreatedAwaitingUpload: {PhaseUploadingFiles},
		PhaseUploadingFiles:        {PhaseFinalized, PhaseErrorRecoverable},
		PhaseFinalized:             {PhaseIdle},
		PhaseErrorRecoverable:      {PhaseValidating, PhaseIdle},
	}

	for _, allowed := range transitions[p] {
		if allowed == target {
			return true
		}
	}
	return false
}

// SubmissionState is the state machine guarding a lease submission.
// CreatedLeaseID is the at-most-once guard: once set, no retry may
// create a second lease; retries resume at document upload instead.
type SubmissionState struct {
	Phase          SubmissionPhase
	CreatedLeaseID *int64
	LastError      string
}

// NewSubmissionState returns an idle submission
func NewSubmissionState() *SubmissionState {
	return &SubmissionState{Phase: PhaseIdle}
}

func (s *SubmissionState) transition(target SubmissionPhase) error {
	if !s.Phase.CanTransitionTo(target) {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			"Cannot transition submission from "+string(s.Phase)+" to "+string(target))
	}
	s.Phase = target
	return nil
}

// RequiresCreate reports whether this submission still needs the
// lease-creation call. False once a lease ID has been recorded.
func (s *SubmissionState) RequiresCreate() bool {
	return s.CreatedLeaseID == nil
}

// InFlight reports whether a submission attempt is currently running
func (s *SubmissionState) InFlight() bool {
	switch s.Phase {
	case PhaseValidating, PhaseCreating, PhaseUploadingFiles:
		return true
	}
	return false
}

// BeginValidation starts a submission attempt, either the first one or
// a retry after a recoverable error
func (s *SubmissionState) BeginValidation() error {
	s.LastError = ""
	return s.transition(PhaseValidating)
}

// BeginCreate moves into the lease-creation call. Refused when a lease
// was already created: the guard holds even if a caller skips
// RequiresCreate.
func (s *SubmissionState) BeginCreate() error {
	if s.CreatedLeaseID != nil {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			"Lease was already created; retry resumes at document upload")
	}
	return s.transition(PhaseCreating)
}

// RecordCreated stores the platform lease ID and advances past
// creation. With pending files the submission awaits upload; without
// any it is ready to finalize.
func (s *SubmissionState) RecordCreated(leaseID int64, hasPendingFiles bool) error {
	if leaseID <= 0 {
		return shared.NewDomainError("INVALID_LEASE_ID", "Platform lease ID must be positive")
	}
	target := PhaseCreatedNoFiles
	if hasPendingFiles {
		target = PhaseCreatedAwaitingUpload
	}
	if err := s.transition(target); err != nil {
		return err
	}
	s.CreatedLeaseID = &leaseID
	return nil
}

// SkipToUpload resumes a retry directly at document upload, allowed
// only when a lease ID is already recorded
func (s *SubmissionState) SkipToUpload() error {
	if s.CreatedLeaseID == nil {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			"No created lease to resume; run creation first")
	}
	return s.transition(PhaseUploadingFiles)
}

// BeginUpload starts the document upload pass after creation
func (s *SubmissionState) BeginUpload() error {
	return s.transition(PhaseUploadingFiles)
}

// Finalize completes the submission
func (s *SubmissionState) Finalize() error {
	return s.transition(PhaseFinalized)
}

// Fail records a recoverable failure. The created lease ID, if any,
// survives so the next attempt cannot create a duplicate.
func (s *SubmissionState) Fail(message string) error {
	if err := s.transition(PhaseErrorRecoverable); err != nil {
		return err
	}
	s.LastError = message
	return nil
}

// Reset returns the submission to idle and clears the lease ID guard.
// Only valid after finalization or from a recoverable error when the
// user abandons the attempt.
func (s *SubmissionState) Reset() error {
	if s.Phase != PhaseFinalized && s.Phase != PhaseErrorRecoverable && s.Phase != PhaseIdle {
		return shared.NewDomainError(shared.ErrInvalidState.Code,
			"Cannot reset a submission while it is in flight")
	}
	s.Phase = PhaseIdle
	s.CreatedLeaseID = nil
	s.LastError = ""
	return nil
}
