package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"html/template"
	"net/http"

	"payslip/internal/domain/payslip"
)

//go:embed templates/payslip.html
var templateFS embed.FS

// HTMLRenderer fills the payslip template. Every value from the input table
// is escaped by html/template.
type HTMLRenderer struct {
	tmpl *template.Template
}

func NewHTMLRenderer() (*HTMLRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/payslip.html")
	if err != nil {
		return nil, err
	}
	return &HTMLRenderer{tmpl: tmpl}, nil
}

type htmlData struct {
	Company payslip.Company
	LogoURI template.URL
	Layout  slipLayout
}

func (r *HTMLRenderer) Render(doc payslip.Document) ([]byte, error) {
	data := htmlData{
		Company: doc.Company,
		LogoURI: logoDataURI(doc.Company.Logo),
		Layout:  newSlipLayout(doc),
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// logoDataURI inlines the logo so the converter needs no file access.
func logoDataURI(logo []byte) template.URL {
	if len(logo) == 0 {
		return ""
	}
	return template.URL("data:" + http.DetectContentType(logo) + ";base64," + base64.StdEncoding.EncodeToString(logo))
}
