package services

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"

	"github.com/digitalbox/go-digitalbox-server/global"
	"github.com/digitalbox/go-digitalbox-server/repository"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/digitalbox/go-digitalbox-server/util"
)

// staffReceiverID is the receiver identity the archive wraps payloads for.
// Complaints are always addressed to the support side of the workflow.
const staffReceiverID = "support"

// ComplaintService owns complaints, their tickets and the secure archive.
// Complaint content is cbor-serialized and encrypted with a process cipher key
// before storage. The archive is the second, independent persistence path: it
// holds the double-wrapped payloads produced by the encryption engine and is
// deliberately separate from the cleartext chat log.
type ComplaintService struct {
	complaintRepo     repository.Repository
	ticketRepo        repository.Repository
	archiveRepo       repository.Repository
	encryptionService *EncryptionService
	cipherKey         string
}

func NewComplaintService(dbSelector repository.DBSelector, encryptionService *EncryptionService) *ComplaintService {
	complaintRepo, cErr := dbSelector.ChooseDB(repository.Complaint)
	if cErr != nil {
		panic(cErr)
	}
	ticketRepo, tErr := dbSelector.ChooseDB(repository.Ticket)
	if tErr != nil {
		panic(tErr)
	}
	archiveRepo, aErr := dbSelector.ChooseDB(repository.ComplaintArchive)
	if aErr != nil {
		panic(aErr)
	}
	cipherKey, kErr := util.GenerateSymmetricKey()
	if kErr != nil {
		panic(kErr)
	}
	return &ComplaintService{
		complaintRepo:     complaintRepo,
		ticketRepo:        ticketRepo,
		archiveRepo:       archiveRepo,
		encryptionService: encryptionService,
		cipherKey:         cipherKey,
	}
}

// CreateComplaint stores the encrypted complaint, opens its ticket and writes
// the wrapped payload into the archive.
func (cs *ComplaintService) CreateComplaint(ctx context.Context, input *types.CreateComplaintInput) (*types.Complaint, error) {
	data := &types.ComplaintData{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		UserID:      input.UserID,
	}
	raw, mErr := cbor.Marshal(data)
	if mErr != nil {
		return nil, mErr
	}
	encrypted, eErr := util.SymmetricEncrypt(raw, cs.cipherKey)
	if eErr != nil {
		return nil, eErr
	}

	complaint := &types.Complaint{
		ComplaintID:   util.GenerateComplaintID(),
		EncryptedData: encrypted,
		UserID:        input.UserID,
		CreatedAt:     time.Now().UTC(),
	}
	if sErr := cs.complaintRepo.Save(ctx, complaint.ComplaintID, complaint); sErr != nil {
		return nil, sErr
	}

	ticket := &types.Ticket{
		TicketID:     util.GenerateTicketID(complaint.ComplaintID, input.UserID),
		TicketStatus: "open",
		ComplaintID:  complaint.ComplaintID,
		UserID:       input.UserID,
	}
	if sErr := cs.ticketRepo.Save(ctx, ticket.TicketID, ticket); sErr != nil {
		return nil, sErr
	}

	if aErr := cs.archiveComplaint(ctx, complaint.ComplaintID, input.UserID, input.Description); aErr != nil {
		// the archive is a secondary record; the complaint itself is already durable
		global.Logger.Log("warn", "failed to archive complaint payload", "complaintId", complaint.ComplaintID, "error", aErr.Error())
	}
	return complaint, nil
}

func (cs *ComplaintService) archiveComplaint(ctx context.Context, complaintID, senderID, message string) error {
	payload, wErr := cs.encryptionService.Wrap(senderID, staffReceiverID, message)
	if wErr != nil {
		return wErr
	}
	entry := &types.ComplaintArchiveEntry{
		ComplaintID: complaintID,
		SenderID:    senderID,
		ReceiverID:  staffReceiverID,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
	return cs.archiveRepo.Save(ctx, uuid.NewString(), entry)
}

// GetComplaint returns the decrypted complaint together with its ticket
func (cs *ComplaintService) GetComplaint(ctx context.Context, complaintID string) (*types.ComplaintOutput, error) {
	response, gErr := cs.complaintRepo.GetByID(ctx, complaintID)
	if gErr != nil {
		return nil, gErr
	}
	var complaint types.Complaint
	if mErr := repository.MapToObject(response, &complaint); mErr != nil {
		return nil, mErr
	}
	data, dErr := cs.decryptData(&complaint)
	if dErr != nil {
		return nil, dErr
	}

	output := &types.ComplaintOutput{
		ComplaintID:   complaint.ComplaintID,
		ComplaintData: data,
		UserID:        complaint.UserID,
		CreatedAt:     complaint.CreatedAt.Format(time.RFC3339),
	}
	if ticket, tErr := cs.getTicketByComplaint(ctx, complaintID); tErr == nil {
		output.TicketID = ticket.TicketID
		output.TicketStatus = ticket.TicketStatus
	}
	return output, nil
}

// ListUserComplaints returns the user's complaints, newest first
func (cs *ComplaintService) ListUserComplaints(ctx context.Context, userID string) ([]*types.ComplaintOutput, error) {
	return cs.listComplaints(ctx, map[string]interface{}{"user_id": userID}, false)
}

// ListOpenComplaints returns all complaints with an open ticket, newest first
func (cs *ComplaintService) ListOpenComplaints(ctx context.Context) ([]*types.ComplaintOutput, error) {
	return cs.listComplaints(ctx, map[string]interface{}{}, true)
}

func (cs *ComplaintService) listComplaints(ctx context.Context, selector map[string]interface{}, openOnly bool) ([]*types.ComplaintOutput, error) {
	docs, fErr := cs.complaintRepo.Find(ctx, selector, nil, 0)
	if fErr != nil {
		return nil, fErr
	}

	complaints := []*types.Complaint{}
	for _, doc := range docs {
		var complaint types.Complaint
		if uErr := json.Unmarshal(doc, &complaint); uErr != nil {
			return nil, uErr
		}
		complaints = append(complaints, &complaint)
	}
	sort.Slice(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})

	outputs := []*types.ComplaintOutput{}
	for _, complaint := range complaints {
		data, dErr := cs.decryptData(complaint)
		if dErr != nil {
			global.Logger.Log("error", "failed to decrypt complaint", "complaintId", complaint.ComplaintID, "error", dErr.Error())
			continue
		}
		output := &types.ComplaintOutput{
			ComplaintID:   complaint.ComplaintID,
			ComplaintData: data,
			UserID:        complaint.UserID,
			CreatedAt:     complaint.CreatedAt.Format(time.RFC3339),
		}
		if ticket, tErr := cs.getTicketByComplaint(ctx, complaint.ComplaintID); tErr == nil {
			output.TicketID = ticket.TicketID
			output.TicketStatus = ticket.TicketStatus
		}
		if openOnly && output.TicketStatus != "open" {
			continue
		}
		outputs = append(outputs, output)
	}
	return outputs, nil
}

// ListArchive returns the wrapped archive entries for a complaint. Payloads
// stay opaque; the one-time keys they were sealed under are long rotated away.
func (cs *ComplaintService) ListArchive(ctx context.Context, complaintID string) ([]*types.ComplaintArchiveEntry, error) {
	docs, fErr := cs.archiveRepo.Find(ctx, map[string]interface{}{"complaint_id": complaintID}, nil, 0)
	if fErr != nil {
		return nil, fErr
	}
	entries := []*types.ComplaintArchiveEntry{}
	for _, doc := range docs {
		var entry types.ComplaintArchiveEntry
		if uErr := json.Unmarshal(doc, &entry); uErr != nil {
			return nil, uErr
		}
		entries = append(entries, &entry)
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}

// GetTicket returns a ticket by its id
func (cs *ComplaintService) GetTicket(ctx context.Context, ticketID string) (*types.Ticket, error) {
	response, gErr := cs.ticketRepo.GetByID(ctx, ticketID)
	if gErr != nil {
		return nil, gErr
	}
	var ticket types.Ticket
	if mErr := repository.MapToObject(response, &ticket); mErr != nil {
		return nil, mErr
	}
	return &ticket, nil
}

// UpdateTicketStatus transitions the ticket to the given status
func (cs *ComplaintService) UpdateTicketStatus(ctx context.Context, ticketID, status string) (*types.Ticket, error) {
	ticket, gErr := cs.GetTicket(ctx, ticketID)
	if gErr != nil {
		return nil, gErr
	}
	ticket.TicketStatus = status
	if uErr := cs.ticketRepo.Update(ctx, ticketID, ticket); uErr != nil {
		return nil, uErr
	}
	return ticket, nil
}

func (cs *ComplaintService) getTicketByComplaint(ctx context.Context, complaintID string) (*types.Ticket, error) {
	docs, fErr := cs.ticketRepo.Find(ctx, map[string]interface{}{"complaint_id": complaintID}, nil, 1)
	if fErr != nil {
		return nil, fErr
	}
	if len(docs) == 0 {
		return nil, types.ErrNotFound
	}
	var ticket types.Ticket
	if uErr := json.Unmarshal(docs[0], &ticket); uErr != nil {
		return nil, uErr
	}
	return &ticket, nil
}

func (cs *ComplaintService) decryptData(complaint *types.Complaint) (*types.ComplaintData, error) {
	raw, dErr := util.SymmetricDecrypt(complaint.EncryptedData, cs.cipherKey)
	if dErr != nil {
		return nil, dErr
	}
	var data types.ComplaintData
	if uErr := cbor.Unmarshal(raw, &data); uErr != nil {
		return nil, uErr
	}
	return &data, nil
}
