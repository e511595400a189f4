package services

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"madchef/internal/domain"
	"madchef/internal/domain/models"
	"madchef/internal/utils"
)

var receiptTitles = map[domain.ReceiptTitle]string{
	domain.ReceiptProPackage:  "Mad Chef Pro package",
	domain.ReceiptChefSupport: "Chef support",
}

func buildReceiptPDF(r *models.PaymentReceipt) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payment receipt", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "PAYMENT RECEIPT")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Receipt no.    : RCP-%s", shortID(r.ID.String())),
		fmt.Sprintf("Date           : %s", r.CreatedAt.UTC().Format("2006-01-02 15:04")),
		fmt.Sprintf("Name           : %s", safe(r.Username, "-")),
		fmt.Sprintf("Email          : %s", safe(r.Email, "-")),
		fmt.Sprintf("Transaction    : %s", safe(r.TransactionID, "-")),
		fmt.Sprintf("Status         : %s", safe(r.Status, "-")),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, s)
		pdf.Ln(7)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "Details:")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 11)
	pdf.MultiCell(0, 6, "1) "+safe(receiptTitles[r.Title], string(r.Title)), "", "", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Total: "+utils.FormatCents(r.Amount, "USD"))
	pdf.Ln(12)

	if r.Status != domain.PaymentSucceeded {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "This payment has not been settled.", "", "", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	filename := fmt.Sprintf("RECEIPT_%s_%s.pdf", shortID(r.ID.String()), safeFilenamePart(r.Username))
	return buf.Bytes(), filename, nil
}

func shortID(id string) string {
	id = strings.ToUpper(strings.ReplaceAll(id, "-", ""))
	if len(id) > 12 {
		return id[:12]
	}
	return id
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
