package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedFormat is returned for filenames outside the supported
// extension set.
var ErrUnsupportedFormat = errors.New("unsupported file format")

var supportedExtensions = map[string]bool{
	".txt":  true,
	".pdf":  true,
	".docx": true,
}

// SupportedExtension reports whether the filename's extension is in the
// supported set. Callers use it to fail fast before reading file bytes.
func SupportedExtension(filename string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(filename))]
}

// Extractor converts raw upload bytes into an ordered sequence of text
// fragments: lines for .txt, pages for .pdf, paragraphs for .docx.
type Extractor interface {
	Extract(data []byte, filename string) ([]string, error)
}

// FileExtractor is the production Extractor.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(data []byte, filename string) ([]string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		return extractTxt(data), nil
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

func extractTxt(data []byte) []string {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF}) // UTF-8 BOM

	var text string
	if utf8.Valid(data) {
		text = string(data)
	} else {
		// Lenient fallback: treat each byte as Latin-1 rather than failing
		// the whole upload on a stray byte.
		runes := make([]rune, len(data))
		for i, b := range data {
			runes[i] = rune(b)
		}
		text = string(runes)
	}

	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

func extractPDF(data []byte) ([]string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to create PDF reader: %w", err)
	}

	var fragments []string
	pages := reader.NumPage()

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		fonts := make(map[string]*pdf.Font)
		text, err := page.GetPlainText(fonts)
		if err != nil {
			// A single unreadable page does not fail the document.
			continue
		}
		fragments = append(fragments, text)
	}

	return fragments, nil
}

// extractDocx pulls paragraph text out of word/document.xml. A .docx file is
// a zip envelope around WordprocessingML; paragraphs are <w:p> elements and
// their text lives in <w:t> runs.
func extractDocx(data []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open docx archive: %w", err)
	}

	var doc io.ReadCloser
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			doc, err = f.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open document.xml: %w", err)
			}
			break
		}
	}
	if doc == nil {
		return nil, fmt.Errorf("docx archive has no word/document.xml")
	}
	defer doc.Close()

	decoder := xml.NewDecoder(doc)
	var fragments []string
	var paragraph strings.Builder
	inParagraph := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse document.xml: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "p" {
				inParagraph = true
				paragraph.Reset()
			}
		case xml.CharData:
			if inParagraph {
				paragraph.Write(t)
			}
		case xml.EndElement:
			if t.Name.Local == "p" && inParagraph {
				inParagraph = false
				fragments = append(fragments, paragraph.String())
			}
		}
	}

	return fragments, nil
}
