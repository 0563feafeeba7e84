package types

import "time"

type DocumentRequest struct {
	BaseDocument    `json:",inline"`
	RequestID       string    `json:"request_id"`
	UserID          string    `json:"user_id"`
	DocumentType    string    `json:"document_type"`
	CollegueID      string    `json:"collegue_id"`
	DocumentPurpose string    `json:"document_purpose"`
	RequestedDpt    string    `json:"requested_dpt"`
	RequestedAt     time.Time `json:"requested_at"`
}

type Document struct {
	BaseDocument        `json:",inline"`
	DocumentID          string    `json:"document_id"`
	UserID              string    `json:"user_id"`
	DocumentType        string    `json:"document_type"`
	Filename            string    `json:"filename"`
	UploadedAt          time.Time `json:"uploaded_at"`
	RequestedCollegueID string    `json:"requested_collegue_id"`
	DocumentRequestID   string    `json:"document_request_id"`
	PresignedURL        string    `json:"presigned_url"`
}

type CreateDocumentRequestInput struct {
	Email           string `json:"email" binding:"required,email"`
	DocumentType    string `json:"document_type" binding:"required"`
	CollegueID      string `json:"collegue_id" binding:"required"`
	DocumentPurpose string `json:"document_purpose" binding:"required"`
	RequestedDpt    string `json:"requested_dpt" binding:"required"`
}
