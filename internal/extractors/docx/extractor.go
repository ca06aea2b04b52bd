// Package docx extracts text from Word documents. A .docx file is a
// ZIP archive; the text lives in word/document.xml.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/atlas-safety/safekb-cli/internal/core/domain"
	"github.com/atlas-safety/safekb-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX documents.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the file extensions this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".docx"}
}

// Extract opens the archive and returns the document's paragraph and
// table text. Table rows render as cell text joined with " | ".
func (e *Extractor) Extract(_ context.Context, path string) (string, error) {
	reader, err := zip.OpenReader(path)
	if err != nil {
		return "", fmt.Errorf("%w: opening %s as docx: %v", domain.ErrParse, path, err)
	}
	defer reader.Close()

	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", domain.ErrParse, file.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("%w: reading %s: %v", domain.ErrParse, file.Name, err)
		}

		return parseDocumentXML(content)
	}

	return "", fmt.Errorf("%w: %s has no word/document.xml", domain.ErrParse, path)
}

// documentXML mirrors the parts of word/document.xml we read.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
		Tables     []table     `xml:"tbl"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

type table struct {
	Rows []tableRow `xml:"tr"`
}

type tableRow struct {
	Cells []tableCell `xml:"tc"`
}

type tableCell struct {
	Paragraphs []paragraph `xml:"p"`
}

func (p paragraph) text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		for _, t := range r.Text {
			b.WriteString(t.Content)
		}
	}
	return b.String()
}

// parseDocumentXML renders body paragraphs first, then table rows,
// as blank-line separated blocks.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("%w: parsing document xml: %v", domain.ErrParse, err)
	}

	var blocks []string

	for _, para := range doc.Body.Paragraphs {
		if text := para.text(); strings.TrimSpace(text) != "" {
			blocks = append(blocks, text)
		}
	}

	for _, tbl := range doc.Body.Tables {
		for _, row := range tbl.Rows {
			var cells []string
			for _, cell := range row.Cells {
				var paras []string
				for _, p := range cell.Paragraphs {
					if text := p.text(); strings.TrimSpace(text) != "" {
						paras = append(paras, text)
					}
				}
				if len(paras) > 0 {
					cells = append(cells, strings.Join(paras, "\n"))
				}
			}
			if len(cells) > 0 {
				blocks = append(blocks, strings.Join(cells, " | "))
			}
		}
	}

	return strings.Join(blocks, "\n\n"), nil
}
