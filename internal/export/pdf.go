package export

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/nao1215/blackbird/internal/model"
)

// Page layout in millimeters.
const (
	pdfMargin       = 15.0
	pdfHeaderHeight = 42.0
	pdfLineHeight   = 7.0
)

// PDFWriter writes an A4 report: a header with the title and date, the
// username, a reliability warning, then one linked bullet per found account.
type PDFWriter struct{}

// Write implements Writer.
func (p *PDFWriter) Write(w io.Writer, rs *model.ResultSet) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetTitle("Blackbird Report - "+rs.Username, true)
	pdf.SetCreator("blackbird", true)
	pdf.SetCreationDate(rs.Date)
	pdf.SetModificationDate(rs.Date)
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(true, pdfMargin)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-pdfMargin)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	pageWidth, _ := pdf.GetPageSize()
	contentWidth := pageWidth - 2*pdfMargin

	p.writeHeader(pdf, tr, rs, pageWidth)
	p.writeUsername(pdf, tr, rs, contentWidth)
	p.writeWarning(pdf, tr, contentWidth)
	p.writeAccounts(pdf, tr, rs, contentWidth)

	if err := pdf.Error(); err != nil {
		return err
	}
	return pdf.Output(w)
}

func (p *PDFWriter) writeHeader(pdf *fpdf.Fpdf, tr func(string) string, rs *model.ResultSet, pageWidth float64) {
	pdf.SetFillColor(24, 24, 27)
	pdf.Rect(0, 0, pageWidth, pdfHeaderHeight, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.Text(pdfMargin, 20, "Blackbird")

	pdf.SetFont("Helvetica", "", 11)
	pdf.Text(pdfMargin, 29, tr("Username search report"))

	date := tr(rs.PrettyDate())
	pdf.Text(pageWidth-pdfMargin-pdf.GetStringWidth(date), 29, date)

	pdf.SetY(pdfHeaderHeight + 8)
}

func (p *PDFWriter) writeUsername(pdf *fpdf.Fpdf, tr func(string) string, rs *model.ResultSet, width float64) {
	pdf.SetFillColor(243, 244, 246)
	pdf.SetDrawColor(209, 213, 219)
	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(width, 12, tr("  Username: "+rs.Username), "1", 1, "L", true, 0, "")
	pdf.Ln(4)
}

func (p *PDFWriter) writeWarning(pdf *fpdf.Fpdf, tr func(string) string, width float64) {
	pdf.SetFillColor(254, 243, 199)
	pdf.SetDrawColor(245, 158, 11)
	pdf.SetTextColor(120, 53, 15)
	pdf.SetFont("Helvetica", "", 10)
	pdf.MultiCell(width, 6, tr("Blackbird can make mistakes. Consider checking the information."), "1", "L", true)
	pdf.Ln(6)
}

func (p *PDFWriter) writeAccounts(pdf *fpdf.Fpdf, tr func(string) string, rs *model.ResultSet, width float64) {
	found := rs.Found()

	pdf.SetTextColor(17, 24, 39)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(width, 10, fmt.Sprintf("Results (%d)", len(found)), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	for _, o := range found {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(17, 24, 39)
		label := tr("• " + o.Site + "  ")
		labelWidth := pdf.GetStringWidth(label)
		pdf.CellFormat(labelWidth, pdfLineHeight, label, "", 0, "L", false, 0, "")

		pdf.SetFont("Helvetica", "U", 10)
		pdf.SetTextColor(37, 99, 235)
		cellWidth := width - labelWidth
		text := fitText(pdf.GetStringWidth, tr(o.Link()), cellWidth)
		pdf.CellFormat(cellWidth, pdfLineHeight, text, "", 1, "L", false, 0, o.Link())
	}
}

// pdfEllipsis marks link text cut by fitText.
const pdfEllipsis = "..."

// fitText shortens s until it is at most width wide in the current font,
// marking the cut with pdfEllipsis. The link target is not affected.
func fitText(stringWidth func(string) float64, s string, width float64) string {
	if stringWidth(s) <= width {
		return s
	}
	for n := len(s) - 1; n > 0; n-- {
		if cut := s[:n] + pdfEllipsis; stringWidth(cut) <= width {
			return cut
		}
	}
	return pdfEllipsis
}
