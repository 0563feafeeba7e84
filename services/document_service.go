package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
)

type DocumentService struct {
	requestRepo  repository.Repository
	documentRepo repository.Repository
	userService  *UserService
}

func NewDocumentService(dbSelector repository.DBSelector, userService *UserService) *DocumentService {
	requestRepo, rErr := dbSelector.ChooseDB(repository.DocumentRequest)
	if rErr != nil {
		panic(rErr)
	}
	documentRepo, dErr := dbSelector.ChooseDB(repository.Document)
	if dErr != nil {
		panic(dErr)
	}
	return &DocumentService{
		requestRepo:  requestRepo,
		documentRepo: documentRepo,
		userService:  userService,
	}
}

// CreateRequest records a staff member's request for a document from a user
// (identified by email).
func (ds *DocumentService) CreateRequest(ctx context.Context, input *types.CreateDocumentRequestInput) (*types.DocumentRequest, error) {
	user, uErr := ds.userService.GetUserByEmail(ctx, input.Email)
	if uErr != nil {
		return nil, uErr
	}
	request := &types.DocumentRequest{
		RequestID:       uuid.NewString(),
		UserID:          user.UserID,
		DocumentType:    input.DocumentType,
		CollegueID:      input.CollegueID,
		DocumentPurpose: input.DocumentPurpose,
		RequestedDpt:    input.RequestedDpt,
		RequestedAt:     time.Now().UTC(),
	}
	if sErr := ds.requestRepo.Save(ctx, request.RequestID, request); sErr != nil {
		return nil, sErr
	}
	return request, nil
}

// ListPendingForUser returns the user's document requests without an upload yet
func (ds *DocumentService) ListPendingForUser(ctx context.Context, userID string) ([]*types.DocumentRequest, error) {
	requests, rErr := ds.findRequests(ctx, map[string]interface{}{"user_id": userID})
	if rErr != nil {
		return nil, rErr
	}
	pending := []*types.DocumentRequest{}
	for _, request := range requests {
		docs, dErr := ds.documentRepo.Find(ctx, map[string]interface{}{"document_request_id": request.RequestID}, nil, 1)
		if dErr != nil {
			return nil, dErr
		}
		if len(docs) == 0 {
			pending = append(pending, request)
		}
	}
	return pending, nil
}

// ListRequestsForCollegue returns requests a staff member issued
func (ds *DocumentService) ListRequestsForCollegue(ctx context.Context, collegueID string) ([]*types.DocumentRequest, error) {
	return ds.findRequests(ctx, map[string]interface{}{"collegue_id": collegueID})
}

// SaveUploadedDocument records an uploaded document and its presigned url
func (ds *DocumentService) SaveUploadedDocument(ctx context.Context, doc *types.Document) error {
	doc.DocumentID = uuid.NewString()
	doc.UploadedAt = time.Now().UTC()
	return ds.documentRepo.Save(ctx, doc.DocumentID, doc)
}

// ListDocumentsForCollegue returns documents uploaded for a staff member
func (ds *DocumentService) ListDocumentsForCollegue(ctx context.Context, collegueID string) ([]*types.Document, error) {
	docs, fErr := ds.documentRepo.Find(ctx, map[string]interface{}{"requested_collegue_id": collegueID}, nil, 0)
	if fErr != nil {
		return nil, fErr
	}
	documents := []*types.Document{}
	for _, raw := range docs {
		var document types.Document
		if uErr := json.Unmarshal(raw, &document); uErr != nil {
			return nil, uErr
		}
		documents = append(documents, &document)
	}
	return documents, nil
}

func (ds *DocumentService) findRequests(ctx context.Context, selector map[string]interface{}) ([]*types.DocumentRequest, error) {
	docs, fErr := ds.requestRepo.Find(ctx, selector, nil, 0)
	if fErr != nil {
		return nil, fErr
	}
	requests := []*types.DocumentRequest{}
	for _, raw := range docs {
		var request types.DocumentRequest
		if uErr := json.Unmarshal(raw, &request); uErr != nil {
			return nil, uErr
		}
		requests = append(requests, &request)
	}
	return requests, nil
}
