package server

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"github.com/go-pdf/fpdf"

	"talecanvas/internal/domain/storybook"
)

// renderPDF lays the book out one sheet per renderable: the cover image
// centred with the theme as title, then each page with its illustration
// above the text and a centred page number at the foot.
func renderPDF(book *storybook.Storybook) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	width, height := pdf.GetPageSize()

	pdf.AddPage()
	addImage(pdf, "cover", book.Cover, width*0.15, 25, width*0.7)
	if book.Theme != "" {
		pdf.SetFont("Helvetica", "B", 20)
		pdf.SetY(height - 35)
		pdf.CellFormat(0, 10, book.Theme, "", 0, "C", false, 0, "")
	}

	for _, page := range book.Pages {
		pdf.AddPage()
		addImage(pdf, fmt.Sprintf("page_%d", page.PageNumber), page.Renderable, width*0.1, 20, width*0.8)

		pdf.SetFont("Helvetica", "", 13)
		pdf.SetXY(20, height*0.62)
		pdf.MultiCell(width-40, 8, page.Text, "", "L", false)

		pdf.SetFont("Helvetica", "", 10)
		pdf.SetY(height - 18)
		pdf.CellFormat(0, 6, fmt.Sprintf("- %d -", page.PageNumber), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// addImage draws a renderable's base64 image if present; missing or broken
// image data just leaves the slot blank, it never fails the export.
func addImage(pdf *fpdf.Fpdf, name string, r storybook.Renderable, x, y, w float64) {
	if r.ImageData == "" {
		return
	}
	raw, err := base64.StdEncoding.DecodeString(r.ImageData)
	if err != nil {
		return
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(raw))
	if pdf.Err() {
		// Undecodable payload; clear the error so later pages still render.
		pdf.ClearError()
		return
	}
	pdf.ImageOptions(name, x, y, w, 0, false, opts, 0, "")
}
