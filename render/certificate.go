// Package render turns issued certificates into HTML, PDF, QR and preview
// images.
package render

import (
	"bytes"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"

	"opengalaxy/model"
)

//go:embed templates/certificate.html
var templateFS embed.FS

var certificateTemplate = template.Must(template.ParseFS(templateFS, "templates/certificate.html"))

type certificatePage struct {
	Cert model.Certificate
	QR   template.URL
}

// HTML renders the printable certificate page. The verification QR code is
// inlined as a data URI so the page has no external assets.
func HTML(cert model.Certificate) ([]byte, error) {
	page := certificatePage{Cert: cert}
	if cert.VerificationURL != "" {
		png, err := QRCode(cert.VerificationURL, 256)
		if err != nil {
			return nil, err
		}
		page.QR = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png))
	}

	var buf bytes.Buffer
	if err := certificateTemplate.Execute(&buf, page); err != nil {
		return nil, fmt.Errorf("failed to render certificate %s: %w", cert.ID, err)
	}
	return buf.Bytes(), nil
}
