package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
)

// maximum accepted upload size (20 MB)
const maxDocumentSize = 20 << 20

var allowedDocumentTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

type DocumentApi struct {
	documentService *services.DocumentService
	s3Service       *services.S3Service
}

func NewDocumentApi(documentService *services.DocumentService, s3Service *services.S3Service) *DocumentApi {
	return &DocumentApi{
		documentService: documentService,
		s3Service:       s3Service,
	}
}

// CreateDocumentRequest
// @Summary Request a document from a user
// @Description A staff member asks the user (identified by email) to upload a document
// @Tags Documents
// @Param request body types.CreateDocumentRequestInput true "document request"
// @Success 201 {object} types.DocumentRequest
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 404 {object} api.ApiError "no user with that email"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/documentrequest [post]
func (da *DocumentApi) CreateDocumentRequest(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var input types.CreateDocumentRequestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid document request: %s", err.Error())
		return
	}

	request, cErr := da.documentService.CreateRequest(ctx, &input)
	if cErr != nil {
		if errors.Is(cErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "no user with that email")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to store document request: %s", cErr.Error())
		return
	}
	c.JSON(http.StatusCreated, request)
}

// ListPendingRequests
// @Summary List a user's pending document requests
// @Description Requests the user has not yet answered with an upload
// @Tags Documents
// @Param user_id path string true "User ID"
// @Success 200 {object} []types.DocumentRequest
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/documentrequests/{user_id} [get]
func (da *DocumentApi) ListPendingRequests(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, lErr := da.documentService.ListPendingForUser(ctx, c.Param("user_id"))
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list document requests: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, requests)
}

// UploadDocument
// @Summary Upload a requested document
// @Description Accepts a multipart upload, stores it and records a presigned download URL
// @Tags Documents
// @Param document formData file true "the document (pdf, jpeg or png)"
// @Param user_id formData string true "User ID"
// @Param document_type formData string true "document type"
// @Param collegue_id formData string true "requesting collegue"
// @Param request_id formData string true "the answered document request"
// @Success 201 {object} types.Document
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Failure 503 {object} api.ApiError "storage unavailable"
// @Accept multipart/form-data
// @Produce json
// @Router /api/v1/document [post]
func (da *DocumentApi) UploadDocument(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID := c.PostForm("user_id")
	documentType := c.PostForm("document_type")
	collegueID := c.PostForm("collegue_id")
	requestID := c.PostForm("request_id")
	if userID == "" || documentType == "" || collegueID == "" || requestID == "" {
		ApiErrorf(c, http.StatusBadRequest, "user_id, document_type, collegue_id and request_id are required")
		return
	}

	fileHeader, fErr := c.FormFile("document")
	if fErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "document file missing: %s", fErr.Error())
		return
	}
	if fileHeader.Size > maxDocumentSize {
		ApiErrorf(c, http.StatusBadRequest, "document exceeds maximum size")
		return
	}

	file, oErr := fileHeader.Open()
	if oErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "failed to read document: %s", oErr.Error())
		return
	}
	defer file.Close()

	content, rErr := io.ReadAll(file)
	if rErr != nil {
		ApiErrorf(c, http.StatusBadRequest, "failed to read document: %s", rErr.Error())
		return
	}

	contentType := http.DetectContentType(content)
	if !allowedDocumentTypes[contentType] {
		ApiErrorf(c, http.StatusBadRequest, "unsupported file type %s, only pdf, jpeg and png are accepted", contentType)
		return
	}

	presignedURL, uErr := da.s3Service.UploadDocument(fileHeader.Filename, content)
	if uErr != nil {
		ApiErrorf(c, http.StatusServiceUnavailable, "failed to store document")
		return
	}

	document := &types.Document{
		UserID:              userID,
		DocumentType:        documentType,
		Filename:            fileHeader.Filename,
		RequestedCollegueID: collegueID,
		DocumentRequestID:   requestID,
		PresignedURL:        presignedURL,
	}
	if sErr := da.documentService.SaveUploadedDocument(ctx, document); sErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to record document: %s", sErr.Error())
		return
	}
	c.JSON(http.StatusCreated, document)
}

// ListCollegueRequests
// @Summary List document requests issued by a staff member
// @Tags Documents
// @Param collegue_id path string true "Collegue ID"
// @Success 200 {object} []types.DocumentRequest
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/collegue/{collegue_id}/documentrequests [get]
func (da *DocumentApi) ListCollegueRequests(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	requests, lErr := da.documentService.ListRequestsForCollegue(ctx, c.Param("collegue_id"))
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list document requests: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, requests)
}

// ListCollegueDocuments
// @Summary List documents uploaded for a staff member
// @Tags Documents
// @Param collegue_id path string true "Collegue ID"
// @Success 200 {object} []types.Document
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/collegue/{collegue_id}/documents [get]
func (da *DocumentApi) ListCollegueDocuments(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	documents, lErr := da.documentService.ListDocumentsForCollegue(ctx, c.Param("collegue_id"))
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list documents: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, documents)
}
