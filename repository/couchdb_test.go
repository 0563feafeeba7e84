package repository

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"

	"github.com/digitalbox/go-digitalbox-server/types"
)

var url = "http://localhost:5689"

func InitMockDatabase(dbName string) (Repository, error) {
	httpmock.Activate()

	mr, mErr := httpmock.NewJsonResponder(201, types.OK{IsOK: true})
	if mErr != nil {
		return nil, mErr
	}
	httpmock.RegisterResponder("PUT", fmt.Sprintf("%s/%s", url, dbName), mr)
	httpmock.RegisterResponder("HEAD", fmt.Sprintf("%s/%s", url, dbName), mr)
	httpmock.RegisterResponder("GET", fmt.Sprintf("%s/%s", url, dbName), mr)

	db, err := NewCouchDBRepository(url, dbName, "test", "test", true)
	if err != nil {
		return nil, err
	}
	return db, nil
}

func deactivateMock() {
	httpmock.DeactivateAndReset()
}

func TestInitNewDatabase(t *testing.T) {
	db, err := InitMockDatabase("complaints")
	defer deactivateMock()
	if err != nil {
		t.Fatal(err)
	}
	if db == nil {
		t.Fatal("db is nil")
	}
	assert.Equal(t, "complaints", db.GetDBName())
}

func TestGetByID(t *testing.T) {
	db, _ := InitMockDatabase("complaints")
	defer deactivateMock()

	mk, _ := httpmock.NewJsonResponder(201, types.OK{IsOK: true})
	httpmock.RegisterResponder("PUT", fmt.Sprintf("%s/%s/%s", url, "complaints", "123_abcd"), mk)

	mk, _ = httpmock.NewJsonResponder(200, types.Complaint{ComplaintID: "123_abcd", UserID: "u1"})
	httpmock.RegisterResponder("GET", fmt.Sprintf("%s/%s/%s", url, "complaints", "123_abcd"), mk)

	sErr := db.Save(context.Background(), "123_abcd", &types.Complaint{
		ComplaintID: "123_abcd",
		UserID:      "u1",
	})
	if sErr != nil {
		t.Fatal(sErr)
	}
	res, err := db.GetByID(context.Background(), "123_abcd")
	if err != nil {
		t.Fatal(err)
	}
	var complaint types.Complaint
	if mErr := MapToObject(res, &complaint); mErr != nil {
		t.Fatal(mErr)
	}
	assert.Equal(t, "123_abcd", complaint.ComplaintID)
	assert.Equal(t, "u1", complaint.UserID)
}

func TestGetByIDNotFound(t *testing.T) {
	db, _ := InitMockDatabase("complaints")
	defer deactivateMock()

	mk := httpmock.NewStringResponder(404, `{"error":"not_found","reason":"missing"}`)
	httpmock.RegisterResponder("GET", fmt.Sprintf("%s/%s/%s", url, "complaints", "missing"), mk)

	_, err := db.GetByID(context.Background(), "missing")
	assert.Equal(t, types.ErrNotFound, err)
}

func TestFind(t *testing.T) {
	db, _ := InitMockDatabase("complaints")
	defer deactivateMock()

	mk := httpmock.NewStringResponder(200, `{"docs":[{"complaint_id":"1_a"},{"complaint_id":"2_b"}]}`).
		HeaderSet(http.Header{"Content-Type": []string{"application/json"}})
	httpmock.RegisterResponder("POST", fmt.Sprintf("%s/%s/_find", url, "complaints"), mk)

	docs, err := db.Find(context.Background(), map[string]interface{}{"user_id": "u1"}, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Len(t, docs, 2)
}
