package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
)

// QRItem is one printable coupon: the link encoded into the QR image and the
// reward printed under it.
type QRItem struct {
	Code   string
	Link   string
	Reward int
}

// QRPNG renders one coupon link as a standalone PNG.
func QRPNG(link string, size int) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, size)
}

// A4 portrait in millimetres.
const (
	pageW  = 210.0
	pageH  = 297.0
	margin = 15.0

	qrCols = 3
	rowH   = 65.0
	qrSize = 40.0
)

// QRSheet renders a printable A4 grid of QR codes, three per row, each with
// the reward amount captioned underneath. Returns the finished PDF bytes.
func QRSheet(items []QRItem) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(220, 38, 38)
	pdf.CellFormat(pageW-2*margin, 10, "Coupon QR Codes", "", 1, "C", false, 0, "")

	colW := (pageW - 2*margin) / qrCols
	y := margin + 10

	for i, item := range items {
		col := i % qrCols
		if col == 0 && i > 0 {
			y += rowH
		}
		if y+rowH > pageH-margin {
			pdf.AddPage()
			y = margin
		}

		png, err := qrcode.Encode(item.Link, qrcode.Medium, 256)
		if err != nil {
			return nil, fmt.Errorf("qr encode for %s: %w", item.Code, err)
		}

		name := fmt.Sprintf("qr-%d", i)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))

		colCenterX := margin + float64(col)*colW + colW/2
		pdf.ImageOptions(name, colCenterX-qrSize/2, y+5, qrSize, qrSize, false, opts, 0, "")

		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(220, 38, 38)
		pdf.SetXY(margin+float64(col)*colW, y+5+qrSize+2)
		pdf.CellFormat(colW, 8, fmt.Sprintf("Rs. %d", item.Reward), "", 0, "C", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
