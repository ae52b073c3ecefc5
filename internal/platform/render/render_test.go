package render

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
)

func sampleDocument(name string) payslip.Document {
	net := decimal.RequireFromString("13905.5")
	return payslip.Document{
		Company: payslip.Company{Name: "RS MAN-TECH", Address: "#14, 3rd Cross", City: "Bengaluru-100"},
		Record: payslip.PayslipRecord{
			Employee: payslip.Employee{ID: "101", Name: name, Designation: "Supervisor", BasicDays: "31", ActualDays: "30"},
			Fixed:    payslip.Salary{Basic: decimal.NewFromInt(10000), Total: decimal.NewFromInt(17000)},
			Earned:   payslip.Salary{Basic: decimal.NewFromInt(9000), Total: decimal.NewFromInt(15300)},
			Deductions: payslip.Deduction{
				PF:    decimal.NewFromInt(1080),
				Total: decimal.NewFromInt(1395),
			},
			NetPay:      net,
			NetPayWords: payslip.AmountInWords(net),
		},
		Period:      "Jan-2026",
		GeneratedOn: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNativePDF(t *testing.T) {
	gen := &NativePDF{PageSize: "A4", MarginMM: 10}
	pdf, err := gen.Generate(context.Background(), sampleDocument("José Rao"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(pdf, []byte("%PDF")))
}

func TestNativePDFHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := (&NativePDF{PageSize: "A4"}).Generate(ctx, sampleDocument("Asha"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTMLRendererEscapesValues(t *testing.T) {
	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)

	html, err := renderer.Render(sampleDocument("<script>alert(1)</script>"))
	require.NoError(t, err)

	out := string(html)
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
	assert.Contains(t, out, "Payslip for the month of Jan-2026")
	assert.Contains(t, out, "13905.50")
	assert.Contains(t, out, "Thirteen Thousand Nine Hundred Five rupees only")
	assert.Contains(t, out, "01 Feb 2026")
}

func TestSlipLayoutFormatsMoney(t *testing.T) {
	layout := newSlipLayout(sampleDocument("Asha"))
	assert.Equal(t, "10000.00", layout.Rows[0].Fixed)
	assert.Equal(t, "0.00", layout.Rows[3].Fixed)
	assert.Equal(t, "1395.00", layout.Totals.Amount)
}

func fakeConverter(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script converter")
	}
	path := filepath.Join(t.TempDir(), "wkhtmltopdf")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestWkhtmltopdfConvert(t *testing.T) {
	path := fakeConverter(t, "#!/bin/sh\nfor a; do out=$a; done\nprintf '%%PDF-fake' > \"$out\"\n")
	detected, err := DetectWkhtmltopdf(path)
	require.NoError(t, err)

	renderer, err := NewHTMLRenderer()
	require.NoError(t, err)
	gen := &HTMLToPDF{Renderer: renderer, Converter: &Wkhtmltopdf{Path: detected, PageSize: "A4", MarginMM: 10}}

	pdf, err := gen.Generate(context.Background(), sampleDocument("Asha"))
	require.NoError(t, err)
	assert.Equal(t, "%PDF-fake", string(pdf))
}

func TestWkhtmltopdfFailureWrapsConversionError(t *testing.T) {
	path := fakeConverter(t, "#!/bin/sh\necho broken >&2\nexit 3\n")
	conv := &Wkhtmltopdf{Path: path, PageSize: "A4"}

	_, err := conv.Convert(context.Background(), []byte("<html></html>"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, payslip.ErrConversionFailed))
	assert.Contains(t, err.Error(), "broken")
}

func TestWkhtmltopdfArgsBlockLocalFiles(t *testing.T) {
	args := (&Wkhtmltopdf{PageSize: "A4", MarginMM: 10}).args("in.html", "out.pdf")
	assert.Contains(t, args, "--disable-local-file-access")
	assert.NotContains(t, args, "--enable-local-file-access")
	assert.Equal(t, []string{"in.html", "out.pdf"}, args[len(args)-2:])
}

func TestDetectWkhtmltopdfMissingPath(t *testing.T) {
	_, err := DetectWkhtmltopdf(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}

func TestNewSelectsNativeEngine(t *testing.T) {
	gen, err := New(config.Config{RenderEngine: config.RenderEngineNative, PageSize: "A4", PageMarginMM: 10})
	require.NoError(t, err)
	assert.IsType(t, &NativePDF{}, gen)

	_, err = New(config.Config{RenderEngine: "latex"})
	assert.Error(t, err)
}
