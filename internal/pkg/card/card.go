// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package card

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"text/template"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/go-pdf/fpdf"
)

// ErrTemplateNotFound 卡片布局未配置
var ErrTemplateNotFound = errors.New("card template not found")

// Data is the view model of a membership card
type Data struct {
	Sequence    string
	Name        string
	Tier        string
	TierName    string
	State       string
	IdNumber    string
	Nationality string
	StartDate   string
	EndDate     string
	VerifyURL   string
}

// Conf card 渲染配置
type Conf struct {
	LayoutDir string `mapstructure:"layoutDir"`
	FontPath  string `mapstructure:"fontPath"` // UTF-8 TTF, 为空时使用内置 Helvetica
	Title     string `mapstructure:"title"`
}

// DefaultLayout is registered under "membership_card". The first line is the
// card heading, every following non-empty line is printed as a row.
const DefaultLayout = `{{.Title}}
No: {{.Data.Sequence}}
Name: {{.Data.Name}}
Tier: {{.Data.TierName}}
ID: {{.Data.IdNumber}}
Valid: {{.Data.StartDate}} - {{.Data.EndDate}}`

// Renderer turns a layout and Data into an A6 landscape PDF with a QR code of
// the verification link
type Renderer struct {
	mu       sync.RWMutex
	layouts  map[string]*template.Template
	fontPath string
	title    string
	now      func() time.Time
}

func NewRenderer(conf Conf) *Renderer {
	title := conf.Title
	if title == "" {
		title = "Fan Club Membership"
	}
	return &Renderer{
		layouts:  make(map[string]*template.Template),
		fontPath: conf.FontPath,
		title:    title,
		now:      time.Now,
	}
}

// Register parses and stores a layout under name
func (r *Renderer) Register(name, layout string) error {
	tmpl, err := template.New(name).Option("missingkey=zero").Parse(layout)
	if err != nil {
		return fmt.Errorf("parse card layout %s: %w", name, err)
	}
	r.mu.Lock()
	r.layouts[name] = tmpl
	r.mu.Unlock()
	return nil
}

// LoadDir registers every *.tmpl file in dir under its base name
func (r *Renderer) LoadDir(dir string) (int, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.tmpl"))
	if err != nil {
		return 0, err
	}
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return 0, err
		}
		if err := r.Register(strings.TrimSuffix(filepath.Base(f), ".tmpl"), string(raw)); err != nil {
			return 0, err
		}
	}
	return len(files), nil
}

// Render renders the named layout. ErrTemplateNotFound is returned when no
// layout is registered under name.
func (r *Renderer) Render(ctx context.Context, name string, data Data) ([]byte, error) {
	r.mu.RLock()
	tmpl, ok := r.layouts[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, name)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var text bytes.Buffer
	if err := tmpl.Execute(&text, map[string]any{"Title": r.title, "Data": data}); err != nil {
		return nil, fmt.Errorf("execute card layout %s: %w", name, err)
	}
	var lines []string
	for _, l := range strings.Split(text.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("card layout %s rendered no content", name)
	}

	return r.pdf(lines, data.VerifyURL)
}

func (r *Renderer) pdf(lines []string, verifyURL string) ([]byte, error) {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "L",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 105, Ht: 148},
	})
	pdf.SetCreationDate(r.now())
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(8, 8, 8)
	pdf.AddPage()

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if r.fontPath != "" {
		family = "CardFont"
		pdf.AddUTF8Font(family, "", r.fontPath)
		pdf.AddUTF8Font(family, "B", r.fontPath)
		tr = func(s string) string { return s }
	}

	// 标题栏
	pdf.SetFillColor(178, 34, 34)
	pdf.Rect(0, 0, 148, 18, "F")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont(family, "B", 14)
	pdf.SetXY(8, 5)
	pdf.CellFormat(132, 8, tr(lines[0]), "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(family, "", 10)
	y := 24.0
	for _, l := range lines[1:] {
		pdf.SetXY(8, y)
		pdf.CellFormat(90, 6, tr(l), "", 0, "L", false, 0, "")
		y += 7
	}

	if verifyURL != "" {
		img, err := qrPNG(verifyURL)
		if err != nil {
			return nil, err
		}
		opt := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("verify-qr", opt, bytes.NewReader(img))
		pdf.ImageOptions("verify-qr", 102, 26, 38, 38, false, opt, 0, "")
		pdf.SetFont(family, "", 6)
		pdf.SetXY(98, 66)
		pdf.CellFormat(46, 4, "Scan to verify", "", 0, "C", false, 0, "")
	}

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, fmt.Errorf("render card pdf: %w", err)
	}
	return out.Bytes(), nil
}

func qrPNG(content string) ([]byte, error) {
	code, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	code, err = barcode.Scale(code, 256, 256)
	if err != nil {
		return nil, fmt.Errorf("scale qr: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, code); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
