package handler

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	leasingapp "github.com/propman/backend/internal/application/leasing"
	"github.com/propman/backend/internal/domain/leasing"
	"github.com/propman/backend/internal/interfaces/http/middleware"
)

// OriginationHandler handles lease origination session endpoints
type OriginationHandler struct {
	BaseHandler
	service *leasingapp.OriginationService
}

// NewOriginationHandler creates a new OriginationHandler
func NewOriginationHandler(service *leasingapp.OriginationService) *OriginationHandler {
	return &OriginationHandler{
		service: service,
	}
}

// bindJSON binds the request body, writing an error response when it fails
func (h *OriginationHandler) bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			middleware.HandleValidationError(c, err)
		} else {
			h.BadRequest(c, err.Error())
		}
		return false
	}
	return true
}

// sessionID parses the session ID path parameter
func (h *OriginationHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}

// CreateSession godoc
// @ID           createOriginationSession
// @Summary      Start a lease origination session
// @Description  Opens a new origination session preloaded with GL defaults
// @Tags         leasing
// @Produce      json
// @Success      201 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      500 {object} ErrorResponse
// @Router       /leasing/sessions [post]
func (h *OriginationHandler) CreateSession(c *gin.Context) {
	session, err := h.service.CreateSession(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, session)
}

// GetSession godoc
// @ID           getOriginationSession
// @Summary      Get an origination session
// @Description  Returns the full state of an origination session
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id} [get]
func (h *OriginationHandler) GetSession(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UpdateForm godoc
// @ID           updateOriginationForm
// @Summary      Update the lease form
// @Description  Updates header fields of the session; absent fields stay untouched
// @Tags         leasing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body leasingapp.UpdateFormRequest true "Form update request"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/form [patch]
func (h *OriginationHandler) UpdateForm(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req leasingapp.UpdateFormRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.service.UpdateForm(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UpdateCharges godoc
// @ID           updateOriginationCharges
// @Summary      Replace the charge section
// @Description  Replaces rent, deposit, and extra charge rows of the session
// @Tags         leasing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body leasingapp.UpdateChargesRequest true "Charges update request"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/charges [put]
func (h *OriginationHandler) UpdateCharges(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req leasingapp.UpdateChargesRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.service.UpdateCharges(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// StagePerson godoc
// @ID           stageOriginationPerson
// @Summary      Stage a new tenant or cosigner
// @Description  Adds a new person to the session without persisting them
// @Tags         leasing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body leasingapp.StagePersonRequest true "Person staging request"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/people [post]
func (h *OriginationHandler) StagePerson(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req leasingapp.StagePersonRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.service.StagePerson(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// UnstagePerson godoc
// @ID           unstageOriginationPerson
// @Summary      Remove a staged person
// @Description  Removes a staged tenant or cosigner by role and position
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        role path string true "Person role (Tenant or Cosigner)"
// @Param        index path int true "Position within the role list"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/people/{role}/{index} [delete]
func (h *OriginationHandler) UnstagePerson(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		h.BadRequest(c, "Invalid person index")
		return
	}

	session, err := h.service.UnstagePerson(c.Request.Context(), id, c.Param("role"), index)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// SelectExistingTenant godoc
// @ID           selectOriginationExistingTenant
// @Summary      Select an existing tenant
// @Description  Attaches an already known tenant to the session
// @Tags         leasing
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body leasingapp.SelectExistingRequest true "Tenant selection request"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/existing-tenants [post]
func (h *OriginationHandler) SelectExistingTenant(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	var req leasingapp.SelectExistingRequest
	if !h.bindJSON(c, &req) {
		return
	}

	session, err := h.service.SelectExistingTenant(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// DeselectExistingTenant godoc
// @ID           deselectOriginationExistingTenant
// @Summary      Deselect an existing tenant
// @Description  Detaches a previously selected tenant from the session
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        tenantId path string true "Tenant ID"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/existing-tenants/{tenantId} [delete]
func (h *OriginationHandler) DeselectExistingTenant(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	tenantID, err := uuid.Parse(c.Param("tenantId"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	session, err := h.service.DeselectExistingTenant(c.Request.Context(), id, tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// AttachFile godoc
// @ID           attachOriginationFile
// @Summary      Attach a lease document
// @Description  Attaches a document to the session; uploaded after lease creation
// @Tags         leasing
// @Accept       multipart/form-data
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        file formData file true "Document file"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      413 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/files [post]
func (h *OriginationHandler) AttachFile(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.BadRequest(c, "Missing file in request")
		return
	}

	if fileHeader.Size > leasing.MaxDocumentSize {
		h.RequestTooLarge(c, fmt.Sprintf("File exceeds the %d MB limit", leasing.MaxDocumentSize>>20))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Unable to read uploaded file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	session, err := h.service.AttachFile(c.Request.Context(), id, fileHeader.Filename, contentType, content)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// RemoveFile godoc
// @ID           removeOriginationFile
// @Summary      Remove an attached document
// @Description  Detaches a pending document from the session
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        fileId path string true "File ID"
// @Success      200 {object} APIResponse[leasingapp.SessionResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/files/{fileId} [delete]
func (h *OriginationHandler) RemoveFile(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	fileID, err := uuid.Parse(c.Param("fileId"))
	if err != nil {
		h.BadRequest(c, "Invalid file ID")
		return
	}

	session, err := h.service.RemoveFile(c.Request.Context(), id, fileID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, session)
}

// Submit godoc
// @ID           submitOriginationSession
// @Summary      Submit the session
// @Description  Validates the session, creates the lease on the platform, and uploads documents. Resubmitting after a partial failure retries only the missing pieces.
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} APIResponse[leasingapp.SubmitResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      409 {object} ErrorResponse
// @Failure      422 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Router       /leasing/sessions/{id}/submit [post]
func (h *OriginationHandler) Submit(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	result, err := h.service.Submit(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Cancel godoc
// @ID           cancelOriginationSession
// @Summary      Cancel the session
// @Description  Discards an origination session and all staged state
// @Tags         leasing
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      204 "No Content"
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /leasing/sessions/{id} [delete]
func (h *OriginationHandler) Cancel(c *gin.Context) {
	id, ok := h.sessionID(c)
	if !ok {
		return
	}

	if err := h.service.Cancel(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// RegisterRoutes registers all origination session routes
func (h *OriginationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	sessions := rg.Group("/leasing/sessions")
	{
		sessions.POST("", h.CreateSession)
		sessions.GET("/:id", h.GetSession)
		sessions.DELETE("/:id", h.Cancel)
		sessions.PATCH("/:id/form", h.UpdateForm)
		sessions.PUT("/:id/charges", h.UpdateCharges)
		sessions.POST("/:id/people", h.StagePerson)
		sessions.DELETE("/:id/people/:role/:index", h.UnstagePerson)
		sessions.POST("/:id/existing-tenants", h.SelectExistingTenant)
		sessions.DELETE("/:id/existing-tenants/:tenantId", h.DeselectExistingTenant)
		sessions.POST("/:id/files", h.AttachFile)
		sessions.DELETE("/:id/files/:fileId", h.RemoveFile)
		sessions.POST("/:id/submit", h.Submit)
	}
}
