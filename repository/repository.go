package repository

import (
	"context"
	"encoding/json"
)

const (
	// CouchDB database names
	User             = "users"
	Collegue         = "collegues"
	Complaint        = "complaints"
	Ticket           = "tickets"
	DocumentRequest  = "document_requests"
	Document         = "documents"
	ComplaintArchive = "complaint_archive"
)

type Repository interface {
	GetByID(ctx context.Context, id string) (interface{}, error)
	Find(ctx context.Context, selector map[string]interface{}, sort []map[string]string, limit int) ([]json.RawMessage, error)
	Save(ctx context.Context, docID string, data interface{}) error
	Update(ctx context.Context, id string, data interface{}) error
	Delete(ctx context.Context, id string) error
	GetDBName() string
	GetClient() interface{}
}

type DBSelector interface {
	ChooseDB(dbName string) (Repository, error)
}
