package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateComplaintID returns a unique complaint id of the form
// {unix_timestamp}_{8 random hex chars}.
func GenerateComplaintID() string {
	timestamp := time.Now().Unix()
	randomChars := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("%d_%s", timestamp, randomChars)
}

// GenerateTicketID derives the ticket id from the complaint and its requester
func GenerateTicketID(complaintID, userID string) string {
	return fmt.Sprintf("%s_%s", complaintID, userID)
}
