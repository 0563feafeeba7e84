package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/jarcoal/httpmock"

	"github.com/digitalbox/go-digitalbox-server/types"
)

// implements Repository interface using CouchDB
type CouchDBRepository struct {
	client *resty.Client
	dbName string
}

func NewCouchDBRepository(url, dbName string, username string, password string, mock bool) (Repository, error) {
	cl := resty.New().SetBaseURL(url).SetTimeout(time.Second * 10)
	cl.SetHeader("Content-Type", "application/json")
	cl.SetHeader("Accept", "application/json")
	cl.SetBasicAuth(username, password)

	if mock {
		httpmock.ActivateNonDefault(cl.GetClient())
	}

	existsRes, existsErr := cl.R().Head(dbName)
	if existsErr != nil {
		return nil, fmt.Errorf("failed to check if database exists: %s", existsErr.Error())
	}
	if existsRes.StatusCode() == 200 {
		return &CouchDBRepository{cl, dbName}, nil
	}

	var ok types.OK
	var dbErr types.CouchDBError
	// create DB since it doesn't exist
	cl.R().SetResult(&ok).SetError(&dbErr).Put(dbName)
	if dbErr.Error != "" {
		return nil, fmt.Errorf("failed to create database %s: %s", dbName, dbErr.Error)
	}
	if !ok.IsOK {
		return nil, fmt.Errorf("failed to create database %s", dbName)
	}
	return &CouchDBRepository{cl, dbName}, nil
}

// GetByID returns a document by its ID
func (c *CouchDBRepository) GetByID(ctx context.Context, id string) (interface{}, error) {
	response, err := c.client.R().SetContext(ctx).Get(fmt.Sprintf("%s/%s", c.dbName, id))
	if err != nil {
		return nil, err
	}
	if hErr := handleError(response); hErr != nil {
		return nil, hErr
	}
	return response, nil
}

type findRequest struct {
	Selector map[string]interface{} `json:"selector"`
	Sort     []map[string]string    `json:"sort,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
}

type findResult struct {
	Docs []json.RawMessage `json:"docs"`
}

// Find runs a mango _find query and returns the raw documents
func (c *CouchDBRepository) Find(ctx context.Context, selector map[string]interface{}, sort []map[string]string, limit int) ([]json.RawMessage, error) {
	var result findResult
	var dbErr types.CouchDBError

	body := findRequest{Selector: selector, Sort: sort, Limit: limit}
	response, err := c.client.R().SetContext(ctx).SetBody(body).SetResult(&result).SetError(&dbErr).Post(fmt.Sprintf("%s/_find", c.dbName))
	if err != nil {
		return nil, err
	}
	if dbErr.Error != "" {
		return nil, fmt.Errorf("failed to query documents: %s", dbErr.Error)
	}
	if hErr := handleError(response); hErr != nil {
		return nil, hErr
	}
	return result.Docs, nil
}

// Save creates a new doc or updates an existing one
func (c *CouchDBRepository) Save(ctx context.Context, docID string, data interface{}) error {
	var ok types.OK
	var dbErr types.CouchDBError

	response, err := c.client.R().SetContext(ctx).SetBody(data).SetResult(&ok).SetError(&dbErr).Put(fmt.Sprintf("%s/%s", c.dbName, docID))
	if err != nil {
		return err
	}
	if dbErr.Error != "" {
		return fmt.Errorf("failed to save document: %s", dbErr.Error)
	}
	return handleError(response)
}

// Update updates an existing document (body must carry the current _rev)
func (c *CouchDBRepository) Update(ctx context.Context, id string, data interface{}) error {
	var ok types.OK
	var dbErr types.CouchDBError
	response, err := c.client.R().SetContext(ctx).SetBody(data).SetResult(&ok).SetError(&dbErr).Put(fmt.Sprintf("%s/%s", c.dbName, id))
	if err != nil {
		return err
	}
	if dbErr.Error != "" {
		return fmt.Errorf("failed to update document: %s", dbErr.Error)
	}
	return handleError(response)
}

// Delete deletes a document by its ID
func (c *CouchDBRepository) Delete(ctx context.Context, id string) error {
	doc, err := c.GetByID(ctx, id)
	if err != nil {
		return err
	}
	var base types.BaseDocument
	if mErr := MapToObject(doc, &base); mErr != nil {
		return mErr
	}
	rev := base.UnderscoreRev
	if rev == "" {
		rev = base.Rev
	}

	var delErr types.CouchDBError
	c.client.R().SetContext(ctx).SetError(&delErr).SetQueryParam("rev", rev).Delete(fmt.Sprintf("%s/%s", c.dbName, id))
	if delErr.Error != "" {
		return fmt.Errorf("failed to delete document: %s", delErr.Error)
	}
	return nil
}

// return name of the database
func (c *CouchDBRepository) GetDBName() string {
	return c.dbName
}

// returns a resty client
func (c *CouchDBRepository) GetClient() interface{} {
	return c.client
}
