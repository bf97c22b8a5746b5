package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/rhetorlabs/rhetor/internal/core"
)

// PDFExporter exports sessions to PDF format.
type PDFExporter struct{}

// Export writes the session as PDF.
func (e *PDFExporter) Export(session *core.Session, w io.Writer) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(0, 10, e.sanitizeText(session.Topic), "", "C", false)
	pdf.Ln(5)

	// Metadata section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	id := session.ID
	if len(id) > 8 {
		id = id[:8] + "..."
	}
	e.addMetadataRow(pdf, "ID:", id)
	e.addMetadataRow(pdf, "Status:", string(session.Status))
	e.addMetadataRow(pdf, "Rounds:", fmt.Sprintf("%d", session.Rounds))
	e.addMetadataRow(pdf, "Created:", session.CreatedAt.Format("January 2, 2006 at 3:04 PM"))
	if session.CompletedAt != nil {
		e.addMetadataRow(pdf, "Completed:", session.CompletedAt.Format("January 2, 2006 at 3:04 PM"))
		e.addMetadataRow(pdf, "Duration:", formatDuration(session.CreatedAt, *session.CompletedAt))
	}
	pdf.Ln(5)

	// Participants section
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Participants")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	e.addParticipantBox(pdf, session.Scientist, 200, 230, 255) // Light blue
	pdf.Ln(3)
	e.addParticipantBox(pdf, session.Philosopher, 200, 255, 200) // Light green
	pdf.Ln(8)

	// Arguments
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 8, "Debate")
	pdf.Ln(8)

	if len(session.Arguments) == 0 {
		pdf.SetFont("Arial", "I", 10)
		pdf.Cell(0, 6, "No arguments recorded.")
		pdf.Ln(6)
	} else {
		for _, arg := range session.Arguments {
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}

			if arg.Agent == core.RoleScientist {
				pdf.SetFillColor(200, 230, 255) // Light blue
			} else {
				pdf.SetFillColor(200, 255, 200) // Light green
			}

			pdf.SetFont("Arial", "B", 10)
			header := fmt.Sprintf("Round %d - %s (%s)", arg.RoundNum, arg.Agent, arg.CreatedAt.Format("3:04 PM"))
			pdf.CellFormat(0, 7, header, "", 1, "", true, 0, "")

			pdf.SetFont("Arial", "", 9)
			pdf.SetFillColor(255, 255, 255)
			pdf.MultiCell(0, 5, e.sanitizeText(arg.Content), "", "", false)
			pdf.Ln(5)
		}
	}

	// Judgment
	if session.Judged() {
		if pdf.GetY() > 230 {
			pdf.AddPage()
		}

		pdf.SetFont("Arial", "B", 12)
		pdf.Cell(0, 8, "Judgment")
		pdf.Ln(8)

		pdf.SetFillColor(255, 235, 180) // Light amber
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(0, 7, fmt.Sprintf("Winner: %s", session.Winner), "", 1, "", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetFillColor(255, 255, 255)
		if session.FullSummary != "" {
			pdf.MultiCell(0, 5, e.sanitizeText(session.FullSummary), "", "", false)
			pdf.Ln(3)
		}
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 6, "Reason:")
		pdf.Ln(6)
		pdf.SetFont("Arial", "", 9)
		pdf.MultiCell(0, 5, e.sanitizeText(session.JudgmentReason), "", "", false)
	}

	// Footer
	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 10, "Exported from rhetor", "", 0, "C", false, 0, "")

	return pdf.Output(w)
}

// FileExtension returns the file extension for PDF.
func (e *PDFExporter) FileExtension() string {
	return "pdf"
}

// Helper to add a metadata row
func (e *PDFExporter) addMetadataRow(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Arial", "B", 10)
	pdf.Cell(30, 5, label)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 5, value)
	pdf.Ln(5)
}

// Helper to add a participant box
func (e *PDFExporter) addParticipantBox(pdf *gofpdf.Fpdf, agent core.Agent, r, g, b int) {
	pdf.SetFillColor(r, g, b)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, string(agent.Role), "", 1, "", true, 0, "")

	pdf.SetFont("Arial", "", 9)
	pdf.SetFillColor(255, 255, 255)
	pdf.Cell(25, 5, "Provider:")
	pdf.Cell(0, 5, agent.Provider)
	pdf.Ln(5)
	if agent.Model != "" {
		pdf.Cell(25, 5, "Model:")
		pdf.Cell(0, 5, agent.Model)
		pdf.Ln(5)
	}
}

// Sanitize text for PDF (remove problematic characters)
func (e *PDFExporter) sanitizeText(text string) string {
	// gofpdf uses Windows-1252 encoding by default
	replacer := strings.NewReplacer(
		"\u2018", "'",
		"\u2019", "'",
		"\u201C", "\"",
		"\u201D", "\"",
		"\u2013", "-",
		"\u2014", "--",
		"\u2026", "...",
		"\u2022", "*",
		"\u00A0", " ",
	)
	return replacer.Replace(text)
}
