package render

import (
	"bytes"
	"context"
	"net/http"

	"github.com/jung-kurt/gofpdf"

	"payslip/internal/domain/payslip"
)

// NativePDF draws the payslip directly with gofpdf. It needs no external
// binary and is the default engine.
type NativePDF struct {
	PageSize string
	MarginMM int
}

func (n *NativePDF) Generate(ctx context.Context, doc payslip.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	layout := newSlipLayout(doc)
	margin := float64(n.MarginMM)

	pdf := gofpdf.New("P", "mm", n.PageSize, "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, _ := pdf.GetPageSize()
	width := pageW - 2*margin

	n.header(pdf, tr, doc.Company, margin)

	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(width, 9, tr(layout.Title), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	labelW, valueW := width*0.18, width*0.32
	for _, pair := range layout.Details {
		for _, d := range pair {
			pdf.SetFont("Helvetica", "B", 9)
			pdf.CellFormat(labelW, 6, tr(d.Label), "1", 0, "L", false, 0, "")
			pdf.SetFont("Helvetica", "", 9)
			pdf.CellFormat(valueW, 6, tr(d.Value), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	cols := []float64{width * 0.24, width * 0.16, width * 0.16, width * 0.26, width * 0.18}
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Earnings", "Fixed", "Earned", "Deductions", "Amount"} {
		pdf.CellFormat(cols[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	for _, row := range layout.Rows {
		salaryRow(pdf, cols, row, false)
	}
	pdf.SetFont("Helvetica", "B", 9)
	salaryRow(pdf, cols, layout.Totals, true)

	pdf.CellFormat(cols[0]+cols[1]+cols[2]+cols[3], 8, "Net Pay", "1", 0, "L", true, 0, "")
	pdf.CellFormat(cols[4], 8, layout.NetPay, "1", 1, "R", true, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.MultiCell(width, 6, tr("Amount in words: "+layout.NetPayWords), "1", "L", false)

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(width, 5, "This is a computer generated payslip and does not require a signature. Generated on "+layout.GeneratedOn+".", "", 1, "C", false, 0, "")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *NativePDF) header(pdf *gofpdf.Fpdf, tr func(string) string, company payslip.Company, margin float64) {
	textX := margin
	if imageType := logoImageType(company.Logo); imageType != "" {
		opts := gofpdf.ImageOptions{ImageType: imageType, ReadDpi: true}
		pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(company.Logo))
		if pdf.Ok() {
			pdf.ImageOptions("logo", margin, margin, 0, 18, false, opts, 0, "")
			textX = margin + 30
		} else {
			pdf.ClearError()
		}
	}
	pdf.SetXY(textX, margin)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 8, tr(company.Name), "", 2, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 5, tr(company.Address), "", 2, "L", false, 0, "")
	pdf.CellFormat(0, 5, tr(company.City), "", 1, "L", false, 0, "")

	y := max(pdf.GetY(), margin+18) + 2
	pageW, _ := pdf.GetPageSize()
	pdf.SetLineWidth(0.5)
	pdf.Line(margin, y, pageW-margin, y)
	pdf.SetLineWidth(0.2)
	pdf.SetXY(margin, y+3)
}

func salaryRow(pdf *gofpdf.Fpdf, cols []float64, row slipRow, fill bool) {
	pdf.CellFormat(cols[0], 6, row.Earning, "1", 0, "L", fill, 0, "")
	pdf.CellFormat(cols[1], 6, row.Fixed, "1", 0, "R", fill, 0, "")
	pdf.CellFormat(cols[2], 6, row.Earned, "1", 0, "R", fill, 0, "")
	pdf.CellFormat(cols[3], 6, row.Deduction, "1", 0, "L", fill, 0, "")
	pdf.CellFormat(cols[4], 6, row.Amount, "1", 1, "R", fill, 0, "")
}

func logoImageType(logo []byte) string {
	if len(logo) == 0 {
		return ""
	}
	switch http.DetectContentType(logo) {
	case "image/png":
		return "PNG"
	case "image/jpeg":
		return "JPG"
	case "image/gif":
		return "GIF"
	}
	return ""
}
