package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/dkoval/milesworth/internal/domain"
)

// PDFReport generates a redemption report for the result set and returns
// raw bytes, no filesystem needed.
func PDFReport(q domain.Query, routes []domain.Route) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 14, 12)
	pdf.AddPage()

	// header bar
	pdf.SetFillColor(13, 24, 37)
	pdf.Rect(0, 0, 297, 24, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(12, 6)
	pdf.CellFormat(180, 8, "Milesworth Redemption Report", "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetXY(12, 15)
	pdf.CellFormat(180, 5, fmt.Sprintf("%s to %s, %s - %s", q.Origin, q.Destination, q.StartDate, q.EndDate), "", 1, "L", false, 0, "")

	pdf.SetY(30)
	pdf.SetTextColor(0, 0, 0)

	// summary line
	pdf.SetFont("Helvetica", "", 10)
	summary := fmt.Sprintf("%d routes", len(routes))
	if best, ok := bestVPM(routes); ok {
		summary += fmt.Sprintf(", best value %.2f cents/mile", best)
	}
	pdf.CellFormat(0, 6, summary, "", 1, "L", false, 0, "")
	pdf.Ln(2)

	headers := []string{"Date", "Type", "Route", "Airline", "Price $", "Taxes $", "Miles", "Cents/Mile", "Advice"}
	widths := []float64{22, 22, 52, 52, 22, 22, 24, 24, 28}

	pdf.SetFillColor(13, 24, 37)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "", 8)
	fill := false
	for _, r := range routes {
		pdf.SetFillColor(240, 243, 247)
		cells := []string{
			r.Date,
			string(r.Kind),
			asciiPath(r),
			r.Airlines(),
			fmt.Sprintf("%.2f", r.Price),
			fmt.Sprintf("%.2f", r.Taxes),
			fmt.Sprintf("%d", r.Miles),
			fmt.Sprintf("%.2f", r.VPMCents),
			string(r.Recommendation),
		}
		for i, cell := range cells {
			pdf.CellFormat(widths[i], 6, cell, "1", 0, "L", fill, 0, "")
		}
		pdf.Ln(-1)
		fill = !fill
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func bestVPM(routes []domain.Route) (float64, bool) {
	best, ok := 0.0, false
	for _, r := range routes {
		if !ok || r.VPMCents > best {
			best, ok = r.VPMCents, true
		}
	}
	return best, ok
}

// asciiPath swaps the arrow for a core-font-safe separator.
func asciiPath(r domain.Route) string {
	path := r.Legs[0].Origin
	for _, leg := range r.Legs {
		path += " > " + leg.Destination
	}
	return path
}
