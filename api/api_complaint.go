package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/digitalbox/go-digitalbox-server/services"
	"github.com/digitalbox/go-digitalbox-server/types"
	"github.com/gin-gonic/gin"
)

type ComplaintApi struct {
	complaintService *services.ComplaintService
}

func NewComplaintApi(complaintService *services.ComplaintService) *ComplaintApi {
	return &ComplaintApi{complaintService: complaintService}
}

// CreateComplaint
// @Summary File a new complaint
// @Description Encrypts and stores the complaint, opens a ticket for it
// @Tags Complaints
// @Param complaint body types.CreateComplaintInput true "complaint content"
// @Success 201 {object} types.ComplaintOutput
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/complaint [post]
func (ca *ComplaintApi) CreateComplaint(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var input types.CreateComplaintInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid complaint: %s", err.Error())
		return
	}

	complaint, cErr := ca.complaintService.CreateComplaint(ctx, &input)
	if cErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to store complaint: %s", cErr.Error())
		return
	}

	output, gErr := ca.complaintService.GetComplaint(ctx, complaint.ComplaintID)
	if gErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to read complaint back: %s", gErr.Error())
		return
	}
	c.JSON(http.StatusCreated, output)
}

// GetComplaint
// @Summary Get a single complaint
// @Description Returns the decrypted complaint with its ticket state
// @Tags Complaints
// @Param complaint_id path string true "Complaint ID"
// @Success 200 {object} types.ComplaintOutput
// @Failure 404 {object} api.ApiError "complaint not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/complaint/{complaint_id} [get]
func (ca *ComplaintApi) GetComplaint(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	complaintID := c.Param("complaint_id")
	output, gErr := ca.complaintService.GetComplaint(ctx, complaintID)
	if gErr != nil {
		if errors.Is(gErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "complaint not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to read complaint: %s", gErr.Error())
		return
	}
	c.JSON(http.StatusOK, output)
}

// ListComplaints
// @Summary List complaints
// @Description Lists open complaints, or all complaints of a user when user_id is given
// @Tags Complaints
// @Param user_id query string false "filter by complaint owner"
// @Success 200 {object} []types.ComplaintOutput
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/complaints [get]
func (ca *ComplaintApi) ListComplaints(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	userID := c.Query("user_id")

	var outputs []*types.ComplaintOutput
	var lErr error
	if userID != "" {
		outputs, lErr = ca.complaintService.ListUserComplaints(ctx, userID)
	} else {
		outputs, lErr = ca.complaintService.ListOpenComplaints(ctx)
	}
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list complaints: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, outputs)
}

// ListArchive
// @Summary List the encrypted complaint archive
// @Description Returns the double wrapped archive entries for a complaint, oldest first
// @Tags Complaints
// @Param complaint_id path string true "Complaint ID"
// @Success 200 {object} []types.ComplaintArchiveEntry
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/complaint/{complaint_id}/archive [get]
func (ca *ComplaintApi) ListArchive(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	complaintID := c.Param("complaint_id")
	entries, lErr := ca.complaintService.ListArchive(ctx, complaintID)
	if lErr != nil {
		ApiErrorf(c, http.StatusInternalServerError, "failed to list archive: %s", lErr.Error())
		return
	}
	c.JSON(http.StatusOK, entries)
}

// GetTicket
// @Summary Get a ticket
// @Tags Tickets
// @Param ticket_id path string true "Ticket ID"
// @Success 200 {object} types.Ticket
// @Failure 404 {object} api.ApiError "ticket not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/ticket/{ticket_id} [get]
func (ca *ComplaintApi) GetTicket(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ticketID := c.Param("ticket_id")
	ticket, gErr := ca.complaintService.GetTicket(ctx, ticketID)
	if gErr != nil {
		if errors.Is(gErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "ticket not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to read ticket: %s", gErr.Error())
		return
	}
	c.JSON(http.StatusOK, ticket)
}

// UpdateTicket
// @Summary Update ticket status
// @Description Moves a ticket to a new status (open, in_progress, resolved)
// @Tags Tickets
// @Param ticket_id path string true "Ticket ID"
// @Param status body types.UpdateTicketInput true "new status"
// @Success 200 {object} types.Ticket
// @Failure 400 {object} api.ApiError "bad request"
// @Failure 404 {object} api.ApiError "ticket not found"
// @Failure 429 {object} api.ApiError "rate limit exceeded"
// @Accept json
// @Produce json
// @Router /api/v1/ticket/{ticket_id} [put]
func (ca *ComplaintApi) UpdateTicket(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	ticketID := c.Param("ticket_id")

	var input types.UpdateTicketInput
	if err := c.ShouldBindJSON(&input); err != nil {
		ApiErrorf(c, http.StatusBadRequest, "invalid ticket update: %s", err.Error())
		return
	}

	ticket, uErr := ca.complaintService.UpdateTicketStatus(ctx, ticketID, input.TicketStatus)
	if uErr != nil {
		if errors.Is(uErr, types.ErrNotFound) {
			ApiErrorf(c, http.StatusNotFound, "ticket not found")
			return
		}
		ApiErrorf(c, http.StatusInternalServerError, "failed to update ticket: %s", uErr.Error())
		return
	}
	c.JSON(http.StatusOK, ticket)
}
