package ocr

import "context"

// DemoText is the canned OCR output of the demo invoice.
const DemoText = `FACTURA A
Proveedor Demo
RUT: 12.345.678-9
Servicio de consultoría 10 $100.00
Subtotal: $1000.00
IVA: $190.00
Total: $1190.00`

// Static returns the same text for every document. Used for demos and dry runs
// where tesseract is not installed.
type Static struct {
	Text string
}

func (s Static) ExtractText(ctx context.Context, _ []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return s.Text, nil
}
