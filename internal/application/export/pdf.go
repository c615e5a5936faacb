package export

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/studytrack/core/internal/domain/entities"
)

// Layout constants for the tabular report: landscape A4, a fixed margin, and
// fixed per-column x offsets in millimeters.
const (
	pdfMargin     = 14.0
	pdfTitleSize  = 14.0
	pdfBodySize   = 11.0
	pdfFooterSize = 9.0
	pdfRowHeight  = 8.0
)

var pdfColOffsets = []float64{0, 90, 160, 205, 245}

// WritePDF renders the task list as a paginated tabular PDF. Rows run top to
// bottom; when the next row would pass the printable height a new page starts
// and the header row is redrawn before data rows resume. Zero tasks still
// produce one "No data" placeholder row so the report is never a confusing
// header-only document.
//
// Output is byte-for-byte reproducible for the same ordered input and the
// same generatedAt instant: generatedAt feeds the footer line and the
// document's creation and modification dates.
func WritePDF(w io.Writer, tasks []*entities.Task, generatedAt time.Time) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetCreationDate(generatedAt.UTC())
	pdf.SetModificationDate(generatedAt.UTC())
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	pageWidth, pageHeight := pdf.GetPageSize()

	y := pdfMargin + 10
	pdf.SetFont("Helvetica", "", pdfTitleSize)
	pdf.Text(pdfMargin, y, "Tasks Report")
	y += 10

	y = drawPDFHeader(pdf, pageWidth, y)

	drawRow := func(cells []string) {
		if y > pageHeight-pdfMargin {
			pdf.AddPage()
			y = pdfMargin + 10
			y = drawPDFHeader(pdf, pageWidth, y)
		}
		for i, cell := range cells {
			pdf.Text(pdfMargin+pdfColOffsets[i], y, cell)
		}
		y += pdfRowHeight
	}

	if len(tasks) == 0 {
		drawRow([]string{"No data", "-", "-", "-", "-"})
	} else {
		for _, task := range tasks {
			drawRow([]string{
				orDash(task.Title),
				orDash(task.Subject),
				string(task.Priority),
				string(task.Status),
				formatDeadline(task.Deadline, "-"),
			})
		}
	}

	pdf.SetFont("Helvetica", "", pdfFooterSize)
	pdf.Text(pdfMargin, pageHeight-6, "Generated: "+generatedAt.UTC().Format("1/2/2006, 3:04:05 PM"))

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render pdf: %w", err)
	}
	return nil
}

// drawPDFHeader draws the column header row and its separator line, returning
// the y offset where data rows should resume.
func drawPDFHeader(pdf *gofpdf.Fpdf, pageWidth, y float64) float64 {
	pdf.SetFont("Helvetica", "", pdfBodySize)
	for i, h := range Columns {
		pdf.Text(pdfMargin+pdfColOffsets[i], y, h)
	}
	y += pdfRowHeight

	pdf.SetDrawColor(200, 200, 200)
	pdf.Line(pdfMargin, y, pageWidth-pdfMargin, y)
	y += 6

	return y
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
