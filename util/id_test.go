package util

import (
	"strconv"
	"strings"
	"testing"

	"github.com/tj/assert"
)

func TestGenerateComplaintID(t *testing.T) {
	id := GenerateComplaintID()
	parts := strings.Split(id, "_")
	if len(parts) != 2 {
		t.Fatalf("unexpected complaint id format: %s", id)
	}
	if _, err := strconv.ParseInt(parts[0], 10, 64); err != nil {
		t.Fatalf("complaint id prefix is not a timestamp: %s", id)
	}
	if len(parts[1]) != 8 {
		t.Fatalf("complaint id suffix is not 8 chars: %s", id)
	}

	// two ids generated back to back must not collide
	assert.NotEqual(t, id, GenerateComplaintID())
}

func TestGenerateTicketID(t *testing.T) {
	assert.Equal(t, "123_abcd_u1", GenerateTicketID("123_abcd", "u1"))
}
