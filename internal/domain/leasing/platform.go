package leasing

import (
	"context"

	"github.com/google/uuid"
)

// PlatformLease is a lease as reported by the external platform
type PlatformLease struct {
	ID            int64  `json:"id"`
	LeaseType     string `json:"lease_type"`
	LeaseFromDate string `json:"lease_from_date"`
	LeaseToDate   string `json:"lease_to_date"`
	Status        string `json:"status"`
}

// LeasePlatform is the outbound port to the property management
// platform. CreateLease returns the platform's numeric lease ID; the
// workflow records it before any document upload starts.
type LeasePlatform interface {
	CreateLease(ctx context.Context, payload *LeaseCreationPayload) (int64, error)
	UploadLeaseDocument(ctx context.Context, leaseID int64, file *PendingFile) error
	ListUnitLeases(ctx context.Context, unitID uuid.UUID) ([]PlatformLease, error)
}
