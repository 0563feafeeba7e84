package types

import "time"

// Complaint is the stored complaint record. ComplaintData is serialized with
// cbor and encrypted with the service cipher key before it lands here.
type Complaint struct {
	BaseDocument  `json:",inline"`
	ComplaintID   string    `json:"complaint_id"`
	EncryptedData string    `json:"encrypted_data"`
	UserID        string    `json:"user_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// ComplaintData is the cleartext complaint content (only ever persisted encrypted)
type ComplaintData struct {
	Title       string `json:"title" cbor:"1,keyasint"`
	Description string `json:"description" cbor:"2,keyasint"`
	Category    string `json:"category" cbor:"3,keyasint"`
	UserID      string `json:"user_id" cbor:"4,keyasint"`
}

type Ticket struct {
	BaseDocument `json:",inline"`
	TicketID     string `json:"ticket_id"`
	TicketStatus string `json:"ticket_status"`
	ComplaintID  string `json:"complaint_id"`
	UserID       string `json:"user_id"`
}

// ComplaintArchiveEntry is the second persistence path: the chat-independent,
// double-wrapped complaint payload produced by the encryption engine. It is
// deliberately a separate store from the chat log (which keeps cleartext).
type ComplaintArchiveEntry struct {
	BaseDocument `json:",inline"`
	ComplaintID  string    `json:"complaint_id"`
	SenderID     string    `json:"sender_id"`
	ReceiverID   string    `json:"receiver_id"`
	Payload      string    `json:"payload"`
	CreatedAt    time.Time `json:"created_at"`
}

// ComplaintOutput is the decrypted REST view of a complaint
type ComplaintOutput struct {
	ComplaintID   string         `json:"complaint_id"`
	ComplaintData *ComplaintData `json:"complaint_data"`
	UserID        string         `json:"user_id"`
	CreatedAt     string         `json:"created_at"`
	TicketID      string         `json:"ticketID,omitempty"`
	TicketStatus  string         `json:"ticket_status,omitempty"`
}

type CreateComplaintInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category" binding:"required"`
	UserID      string `json:"user_id" binding:"required"`
}

type UpdateTicketInput struct {
	TicketStatus string `json:"ticket_status" binding:"required"`
}
