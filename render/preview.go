package render

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"opengalaxy/model"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	PreviewWidth  = 1200
	PreviewHeight = 630
)

var (
	fontsOnce sync.Once
	fontsErr  error
	regular   *truetype.Font
	bold      *truetype.Font
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regular, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		bold, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

func face(f *truetype.Font, size float64) font.Face {
	return truetype.NewFace(f, &truetype.Options{Size: size})
}

// Preview draws a social-card sized PNG summarising the certificate.
func Preview(cert model.Certificate) ([]byte, error) {
	if err := loadFonts(); err != nil {
		return nil, fmt.Errorf("failed to load preview fonts: %w", err)
	}

	w, h := float64(PreviewWidth), float64(PreviewHeight)
	dc := gg.NewContext(PreviewWidth, PreviewHeight)

	dc.SetColor(color.NRGBA{R: 11, G: 16, B: 38, A: 255})
	dc.DrawRectangle(0, 0, w, h)
	dc.Fill()

	dc.SetColor(color.NRGBA{R: 31, G: 42, B: 92, A: 255})
	dc.SetLineWidth(18)
	dc.DrawRectangle(9, 9, w-18, h-18)
	dc.Stroke()

	dc.SetColor(color.NRGBA{R: 143, G: 162, B: 255, A: 255})
	dc.SetFontFace(face(bold, 26))
	dc.DrawStringAnchored("OPENGALAXY", w/2, 90, 0.5, 0.5)

	dc.SetColor(color.White)
	dc.SetFontFace(face(bold, 54))
	dc.DrawStringAnchored("Certificate of Achievement", w/2, 180, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 255, G: 211, B: 107, A: 255})
	dc.SetFontFace(face(bold, 60))
	dc.DrawStringAnchored(cert.UserName, w/2, 290, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 232, G: 236, B: 255, A: 255})
	dc.SetFontFace(face(regular, 32))
	dc.DrawStringAnchored(cert.CourseTitle, w/2, 370, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 185, G: 195, B: 255, A: 255})
	dc.SetFontFace(face(regular, 26))
	dc.DrawStringAnchored(fmt.Sprintf("%s  ·  %d badge(s)", cert.PrimarySkill, len(cert.AllSkills)), w/2, 425, 0.5, 0.5)

	dc.SetColor(color.NRGBA{R: 154, G: 166, B: 217, A: 255})
	dc.SetFontFace(face(regular, 20))
	dc.DrawStringAnchored("Issued "+cert.IssuedDate, w/2, 530, 0.5, 0.5)
	dc.DrawStringAnchored(cert.ID, w/2, 565, 0.5, 0.5)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode PNG: %w", err)
	}
	return buf.Bytes(), nil
}
