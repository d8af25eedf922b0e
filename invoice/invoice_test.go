package invoice

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"vitrine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() models.Order {
	return models.Order{
		OrderID:       "ord-1",
		Username:      "ada",
		Address:       "1 Main St",
		PaymentMethod: models.PaymentCash,
		Products: []models.OrderLine{
			{ProductID: "p1", Name: "Shirt", Price: 25, Quantity: 2, Subtotal: 50},
		},
		Price:      50,
		Discount:   5,
		FinalPrice: 45,
	}
}

func TestRenderProducesPDF(t *testing.T) {
	g := NewGenerator(t.TempDir(), []byte("secret"))

	data, err := g.Render(sampleOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")), "output should start with a PDF header")
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	g := NewGenerator(dir, []byte("secret"))

	name, err := g.WriteFile(sampleOrder())
	require.NoError(t, err)
	assert.Equal(t, "invoice-ord-1.pdf", name)

	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestQRPayloadRoundTrip(t *testing.T) {
	g := NewGenerator(t.TempDir(), []byte("secret"))

	payload := g.QRPayload("ord-42")
	orderID, ok := g.VerifyPayload(payload)
	assert.True(t, ok)
	assert.Equal(t, "ord-42", orderID)
}

func TestVerifyPayloadRejectsTampering(t *testing.T) {
	g := NewGenerator(t.TempDir(), []byte("secret"))

	payload := g.QRPayload("ord-42")
	tampered := "ord-43" + payload[len("ord-42"):]
	_, ok := g.VerifyPayload(tampered)
	assert.False(t, ok)

	_, ok = g.VerifyPayload("not|a-payload")
	assert.False(t, ok)
}

func TestVerifyPayloadWrongSecret(t *testing.T) {
	g1 := NewGenerator(t.TempDir(), []byte("secret-a"))
	g2 := NewGenerator(t.TempDir(), []byte("secret-b"))

	_, ok := g2.VerifyPayload(g1.QRPayload("ord-1"))
	assert.False(t, ok)
}
