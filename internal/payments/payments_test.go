package payments

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/venuedesk/backend/internal/models"
)

func mustID(s string) uuid.UUID {
	return uuid.MustParse(s)
}

func TestTotalCents(t *testing.T) {
	assert.Equal(t, int64(0), TotalCents(nil))
	assert.Equal(t, int64(0), TotalCents([]LineItemInput{}))

	items := []LineItemInput{
		{DocumentType: models.DocumentTypeInvoice, DocumentID: "INV-001", AmountCents: 12550},
		{DocumentType: models.DocumentTypeTransport, DocumentID: "DDT-42", AmountCents: 999},
		{DocumentType: models.DocumentTypeInvoice, DocumentID: "INV-002", AmountCents: 1},
	}
	assert.Equal(t, int64(13550), TotalCents(items))
}

func TestValidateLineItems(t *testing.T) {
	msg, ok := validateLineItems([]LineItemBody{
		{DocumentType: models.DocumentTypeInvoice, DocumentID: "INV-001", AmountCents: 100},
	})
	assert.True(t, ok)
	assert.Empty(t, msg)

	_, ok = validateLineItems([]LineItemBody{
		{DocumentType: "receipt", DocumentID: "R-1", AmountCents: 100},
	})
	assert.False(t, ok)

	_, ok = validateLineItems([]LineItemBody{
		{DocumentType: models.DocumentTypeInvoice, DocumentID: "INV-001", AmountCents: -5},
	})
	assert.False(t, ok)
}

func TestDedupePreservesOrder(t *testing.T) {
	a := mustID("11111111-1111-1111-1111-111111111111")
	b := mustID("22222222-2222-2222-2222-222222222222")

	out := dedupe(nil)
	assert.Empty(t, out)

	out = dedupe([]uuid.UUID{a, b, a, b, a})
	assert.Equal(t, []uuid.UUID{a, b}, out)
}
