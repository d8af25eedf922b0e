package invoice

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vitrine/models"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Generator renders order invoices as PDFs with a signed QR payload so a
// printed invoice can be verified against the order id later.
type Generator struct {
	Dir    string
	secret []byte
	now    func() time.Time
}

func NewGenerator(dir string, secret []byte) *Generator {
	return &Generator{Dir: dir, secret: secret, now: time.Now}
}

// QRPayload returns orderID|timestamp|signature.
func (g *Generator) QRPayload(orderID string) string {
	data := fmt.Sprintf("%s|%d", orderID, g.now().Unix())

	h := hmac.New(sha256.New, g.secret)
	h.Write([]byte(data))
	sig := base64.StdEncoding.EncodeToString(h.Sum(nil))

	return fmt.Sprintf("%s|%s", data, sig)
}

// VerifyPayload checks the signature on a scanned QR payload and returns
// the embedded order id.
func (g *Generator) VerifyPayload(payload string) (string, bool) {
	parts := bytes.Split([]byte(payload), []byte("|"))
	if len(parts) != 3 {
		return "", false
	}
	data := append(append([]byte{}, parts[0]...), '|')
	data = append(data, parts[1]...)

	h := hmac.New(sha256.New, g.secret)
	h.Write(data)
	want := base64.StdEncoding.EncodeToString(h.Sum(nil))
	if !hmac.Equal([]byte(want), parts[2]) {
		return "", false
	}
	return string(parts[0]), true
}

// Render produces the invoice PDF in memory.
func (g *Generator) Render(order models.Order) ([]byte, error) {
	qrPNG, err := qrcode.Encode(g.QRPayload(order.OrderID), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("generate QR code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Invoice")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 10, fmt.Sprintf("Order ID: %s", order.OrderID))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Name: %s", order.Username))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Address: %s", order.Address))
	pdf.Ln(8)
	pdf.Cell(0, 10, fmt.Sprintf("Payment: %s", order.PaymentMethod))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(90, 8, "Product")
	pdf.Cell(30, 8, "Qty")
	pdf.Cell(30, 8, "Price")
	pdf.Cell(30, 8, "Subtotal")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 12)
	for _, line := range order.Products {
		pdf.Cell(90, 8, line.Name)
		pdf.Cell(30, 8, fmt.Sprintf("%d", line.Quantity))
		pdf.Cell(30, 8, fmt.Sprintf("%.2f", line.Price))
		pdf.Cell(30, 8, fmt.Sprintf("%.2f", line.Subtotal))
		pdf.Ln(8)
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total: %.2f", order.Price))
	pdf.Ln(8)
	if order.Discount > 0 {
		pdf.Cell(0, 8, fmt.Sprintf("Discount: -%.2f", order.Discount))
		pdf.Ln(8)
	}
	pdf.Cell(0, 8, fmt.Sprintf("Amount due: %.2f", order.FinalPrice))
	pdf.Ln(12)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// WriteFile renders the invoice and writes it under Dir, returning the
// stored filename.
func (g *Generator) WriteFile(order models.Order) (string, error) {
	data, err := g.Render(order)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(g.Dir, 0o755); err != nil {
		return "", err
	}
	name := "invoice-" + order.OrderID + ".pdf"
	if err := os.WriteFile(filepath.Join(g.Dir, name), data, 0o644); err != nil {
		return "", err
	}
	return name, nil
}
