package export

import (
	"fmt"
	"io"
	"time"

	"tripmeet/models"

	"github.com/jung-kurt/gofpdf"
)

const (
	pageMargin = 15.0
	// itemBlockHeight is the reserved vertical space for one item
	// section. A new page starts when less than this remains.
	itemBlockHeight = 70.0
)

// Filename derives the deterministic download name from the given date.
func Filename(now time.Time) string {
	return fmt.Sprintf("trip-research-%s.pdf", now.Format("2006-01-02"))
}

// WriteDocument assembles the research document: a title/summary block,
// then one section per item in original itinerary order with fixed
// sub-fields and a separator, breaking to a new page whenever the next
// block would not fit.
func WriteDocument(w io.Writer, results []models.ResearchResult, generatedAt time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(false, pageMargin)
	pdf.AddPage()

	writeTitleBlock(pdf, results, generatedAt)

	_, pageHeight := pdf.GetPageSize()
	for i, result := range results {
		if pdf.GetY()+itemBlockHeight > pageHeight-pageMargin {
			pdf.AddPage()
		}
		writeItemSection(pdf, i+1, result)
	}

	return pdf.Output(w)
}

func writeTitleBlock(pdf *gofpdf.Fpdf, results []models.ResearchResult, generatedAt time.Time) {
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 12, "Trip Research Guide", "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, generatedAt.Format("January 2, 2006"), "", 1, "C", false, 0, "")

	errored := 0
	for _, r := range results {
		if r.Error != "" {
			errored++
		}
	}
	summary := fmt.Sprintf("%d places researched", len(results))
	if errored > 0 {
		summary = fmt.Sprintf("%s (%d with incomplete research)", summary, errored)
	}
	pdf.CellFormat(0, 7, summary, "", 1, "C", false, 0, "")
	pdf.Ln(6)
}

func writeItemSection(pdf *gofpdf.Fpdf, index int, result models.ResearchResult) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 8, fmt.Sprintf("%d. %s", index, result.ItemName), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "I", 10)
	pdf.CellFormat(0, 6, string(result.ItemType), "", 1, "L", false, 0, "")
	pdf.Ln(1)

	if result.Error != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, "Research unavailable: "+result.Error, "", "L", false)
	} else {
		writeField(pdf, "Best time to visit", result.Research.BestTimeToVisit)
		writeField(pdf, "Duration", result.Research.Duration)
		writeField(pdf, "Getting there", result.Research.Directions)
		writeField(pdf, "Tips", result.Research.Tips)
		writeField(pdf, "Accessibility", result.Research.Accessibility)
		reservation := "Not required"
		if result.Research.ReservationRequired {
			reservation = "Required"
		}
		writeField(pdf, "Reservation", reservation)
	}

	// Visual separator between item sections.
	pdf.Ln(3)
	x, y := pdf.GetX(), pdf.GetY()
	pageWidth, _ := pdf.GetPageSize()
	pdf.SetDrawColor(180, 180, 180)
	pdf.Line(x, y, pageWidth-pageMargin, y)
	pdf.Ln(5)
}

func writeField(pdf *gofpdf.Fpdf, label, value string) {
	if value == "" {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(40, 5, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(0, 5, value, "", "L", false)
}
