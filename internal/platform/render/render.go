package render

import (
	"fmt"
	"log/slog"

	"payslip/internal/domain/payslip"
	"payslip/internal/platform/config"
)

// New returns the document generator selected by RENDER_ENGINE.
func New(cfg config.Config) (payslip.DocumentGenerator, error) {
	switch cfg.RenderEngine {
	case config.RenderEngineWkhtmltopdf:
		path, err := DetectWkhtmltopdf(cfg.WkhtmltopdfPath)
		if err != nil {
			return nil, err
		}
		renderer, err := NewHTMLRenderer()
		if err != nil {
			return nil, err
		}
		slog.Info("render engine selected", "engine", cfg.RenderEngine, "binary", path)
		return &HTMLToPDF{
			Renderer:  renderer,
			Converter: &Wkhtmltopdf{Path: path, PageSize: cfg.PageSize, MarginMM: cfg.PageMarginMM},
		}, nil
	case config.RenderEngineNative, "":
		slog.Info("render engine selected", "engine", config.RenderEngineNative)
		return &NativePDF{PageSize: cfg.PageSize, MarginMM: cfg.PageMarginMM}, nil
	}
	return nil, fmt.Errorf("unknown render engine %q", cfg.RenderEngine)
}
