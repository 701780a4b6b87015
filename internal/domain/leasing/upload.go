package leasing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/propman/backend/internal/domain/shared"
)

// FileStatus is the upload status of one attached document
type FileStatus string

const (
	FileStatusPending   FileStatus = "pending"
	FileStatusUploading FileStatus = "uploading"
	FileStatusUploaded  FileStatus = "uploaded"
	FileStatusError     FileStatus = "error"
)

const (
	// MaxDocumentSize is the per-file size limit for lease documents
	MaxDocumentSize int64 = 25 << 20

	// MaxDocumentsPerLease caps how many documents one session may attach
	MaxDocumentsPerLease = 10
)

// allowedDocumentTypes are the exact MIME types accepted beyond the
// prefix rules below
var allowedDocumentTypes = map[string]struct{}{
	"application/msword":            {},
	"application/vnd.ms-excel":      {},
	"application/vnd.ms-powerpoint": {},
	"text/plain":                    {},
	"text/csv":                      {},
}

// AllowedDocumentType reports whether a MIME type is accepted for
// lease documents. Images, PDFs, and common office formats pass; an
// empty type passes because some browsers omit it.
func AllowedDocumentType(mimeType string) bool {
	if mimeType == "" {
		return true
	}
	if strings.HasPrefix(mimeType, "image/") ||
		strings.HasPrefix(mimeType, "application/pdf") ||
		strings.HasPrefix(mimeType, "application/vnd.openxmlformats-officedocument") {
		return true
	}
	_, ok := allowedDocumentTypes[mimeType]
	return ok
}

// PendingFile is one document attached to the session, together with
// its upload status. Content stays in memory until the upload pass.
type PendingFile struct {
	ID          uuid.UUID
	Name        string
	Size        int64
	ContentType string
	Content     []byte
	Status      FileStatus
	Error       string
}

// NewPendingFile wraps raw content as a pending document
func NewPendingFile(name, contentType string, content []byte) *PendingFile {
	return &PendingFile{
		ID:          uuid.New(),
		Name:        name,
		Size:        int64(len(content)),
		ContentType: contentType,
		Content:     content,
		Status:      FileStatusPending,
	}
}

// Validate checks the size and MIME guards for a document
func (f *PendingFile) Validate() error {
	if f.Size > MaxDocumentSize {
		return shared.NewDomainError(shared.ErrValidationFailed.Code,
			fmt.Sprintf("%s exceeds the 25MB size limit", f.Name))
	}
	if !AllowedDocumentType(f.ContentType) {
		return shared.NewDomainError(shared.ErrValidationFailed.Code,
			fmt.Sprintf("%s has unsupported type %s", f.Name, f.ContentType))
	}
	return nil
}

// FileSet holds the documents attached to a lease session
type FileSet struct {
	files []*PendingFile
}

// NewFileSet creates an empty file set
func NewFileSet() *FileSet {
	return &FileSet{}
}

// Add validates and attaches a document. Files failing the size or
// type guard are rejected at attach time, before any upload starts.
func (s *FileSet) Add(f *PendingFile) error {
	if f == nil {
		return shared.ErrInvalidInput
	}
	if len(s.files) >= MaxDocumentsPerLease {
		return shared.NewDomainError(shared.ErrValidationFailed.Code,
			fmt.Sprintf("At most %d documents can be attached", MaxDocumentsPerLease))
	}
	if err := f.Validate(); err != nil {
		return err
	}
	s.files = append(s.files, f)
	return nil
}

// Remove detaches a document. Refused while it is uploading.
func (s *FileSet) Remove(id uuid.UUID) error {
	for i, f := range s.files {
		if f.ID != id {
			continue
		}
		if f.Status == FileStatusUploading {
			return shared.NewDomainError(shared.ErrInvalidState.Code,
				"Cannot remove a file while it is uploading")
		}
		s.files = append(s.files[:i], s.files[i+1:]...)
		return nil
	}
	return shared.ErrNotFound
}

// List returns the attached documents in attach order
func (s *FileSet) List() []*PendingFile {
	return s.files
}

// Pending returns the documents that still need uploading
func (s *FileSet) Pending() []*PendingFile {
	var out []*PendingFile
	for _, f := range s.files {
		if f.Status != FileStatusUploaded {
			out = append(out, f)
		}
	}
	return out
}

// HasPending reports whether any document still needs uploading
func (s *FileSet) HasPending() bool {
	return len(s.Pending()) > 0
}

// AllUploaded reports whether every attached document has uploaded
func (s *FileSet) AllUploaded() bool {
	for _, f := range s.files {
		if f.Status != FileStatusUploaded {
			return false
		}
	}
	return true
}

// Reset detaches everything
func (s *FileSet) Reset() {
	s.files = nil
}

// UploadFunc uploads one document for a created lease
type UploadFunc func(ctx context.Context, leaseID int64, f *PendingFile) error

// UploadResult is the per-file outcome of an upload pass
type UploadResult struct {
	FileID uuid.UUID
	Name   string
	Status FileStatus
	Error  string
}

// UploadAll runs the upload pass over the attached documents in attach
// order. Already-uploaded files are skipped, a failure marks that file
// and moves on, and the full per-file report comes back regardless of
// how many failed. One bad file never blocks the rest.
func (s *FileSet) UploadAll(ctx context.Context, leaseID int64, upload UploadFunc) []UploadResult {
	results := make([]UploadResult, 0, len(s.files))

	for _, f := range s.files {
		if f.Status == FileStatusUploaded {
			results = append(results, UploadResult{FileID: f.ID, Name: f.Name, Status: FileStatusUploaded})
			continue
		}
		if err := f.Validate(); err != nil {
			f.Status = FileStatusError
			f.Error = err.Error()
			results = append(results, UploadResult{FileID: f.ID, Name: f.Name, Status: FileStatusError, Error: f.Error})
			continue
		}

		f.Status = FileStatusUploading
		f.Error = ""
		if err := upload(ctx, leaseID, f); err != nil {
			f.Status = FileStatusError
			f.Error = err.Error()
			results = append(results, UploadResult{FileID: f.ID, Name: f.Name, Status: FileStatusError, Error: f.Error})
			continue
		}
		f.Status = FileStatusUploaded
		results = append(results, UploadResult{FileID: f.ID, Name: f.Name, Status: FileStatusUploaded})
	}

	return results
}
