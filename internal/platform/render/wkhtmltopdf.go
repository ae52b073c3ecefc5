package render

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"

	"payslip/internal/domain/payslip"
)

var wkhtmltopdfCandidates = []string{"/usr/local/bin/wkhtmltopdf", "/usr/bin/wkhtmltopdf"}

// DetectWkhtmltopdf returns the converter binary: the configured path if
// given, then the usual install locations, then $PATH.
func DetectWkhtmltopdf(configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("wkhtmltopdf not found at %s: %w", configured, err)
		}
		return configured, nil
	}
	for _, candidate := range wkhtmltopdfCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	path, err := exec.LookPath("wkhtmltopdf")
	if err != nil {
		return "", fmt.Errorf("wkhtmltopdf not found: %w", err)
	}
	return path, nil
}

// Wkhtmltopdf converts HTML to PDF with the external wkhtmltopdf binary.
type Wkhtmltopdf struct {
	Path     string
	PageSize string
	MarginMM int
}

func (w *Wkhtmltopdf) args(in, out string) []string {
	margin := strconv.Itoa(w.MarginMM) + "mm"
	return []string{
		"--quiet",
		"--disable-local-file-access",
		"--page-size", w.PageSize,
		"--margin-top", margin,
		"--margin-bottom", margin,
		"--margin-left", margin,
		"--margin-right", margin,
		in,
		out,
	}
}

// Convert runs the binary on a scratch directory. The process is killed when
// ctx is done. Failures wrap payslip.ErrConversionFailed.
func (w *Wkhtmltopdf) Convert(ctx context.Context, html []byte) ([]byte, error) {
	dir, err := os.MkdirTemp("", "payslip-*")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(dir)

	in := filepath.Join(dir, "payslip.html")
	out := filepath.Join(dir, "payslip.pdf")
	if err := os.WriteFile(in, html, 0o600); err != nil {
		return nil, err
	}

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, w.Path, w.args(in, out)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", payslip.ErrConversionFailed, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %v: %s", payslip.ErrConversionFailed, err, bytes.TrimSpace(stderr.Bytes()))
	}
	pdf, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", payslip.ErrConversionFailed, err)
	}
	return pdf, nil
}

// HTMLToPDF renders the template and converts it, implementing
// payslip.DocumentGenerator.
type HTMLToPDF struct {
	Renderer  *HTMLRenderer
	Converter *Wkhtmltopdf
}

func (g *HTMLToPDF) Generate(ctx context.Context, doc payslip.Document) ([]byte, error) {
	html, err := g.Renderer.Render(doc)
	if err != nil {
		return nil, err
	}
	return g.Converter.Convert(ctx, html)
}
