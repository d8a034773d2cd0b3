package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/venuedesk/backend/internal/models"
)

func TestFullyDecided(t *testing.T) {
	tests := []struct {
		name            string
		selectedPerItem []int
		want            bool
	}{
		{"no items never approves", nil, false},
		{"single item with selection", []int{1}, true},
		{"one item still undecided", []int{1, 0}, false},
		{"item without options counts as undecided", []int{2, 0, 1}, false},
		{"all items decided", []int{1, 1, 1}, true},
		{"multiple selections on one item still counts", []int{2, 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fullyDecided(tt.selectedPerItem))
		})
	}
}

func TestValidTransition(t *testing.T) {
	allowed := [][2]string{
		{models.RequestStatusPending, models.RequestStatusInProgress},
		{models.RequestStatusPending, models.RequestStatusCancelled},
		{models.RequestStatusInProgress, models.RequestStatusPendingApproval},
		{models.RequestStatusInProgress, models.RequestStatusCancelled},
		{models.RequestStatusPendingApproval, models.RequestStatusApproved},
		{models.RequestStatusPendingApproval, models.RequestStatusCancelled},
		{models.RequestStatusApproved, models.RequestStatusConfirmed},
		{models.RequestStatusApproved, models.RequestStatusCancelled},
	}
	for _, pair := range allowed {
		assert.True(t, ValidTransition(pair[0], pair[1]), "%s -> %s should be allowed", pair[0], pair[1])
	}

	denied := [][2]string{
		{models.RequestStatusPending, models.RequestStatusApproved},
		{models.RequestStatusPending, models.RequestStatusConfirmed},
		{models.RequestStatusInProgress, models.RequestStatusApproved},
		{models.RequestStatusPendingApproval, models.RequestStatusConfirmed},
		{models.RequestStatusCancelled, models.RequestStatusPending},
		{models.RequestStatusConfirmed, models.RequestStatusCancelled},
		{models.RequestStatusApproved, models.RequestStatusPending},
	}
	for _, pair := range denied {
		assert.False(t, ValidTransition(pair[0], pair[1]), "%s -> %s should be denied", pair[0], pair[1])
	}
}
