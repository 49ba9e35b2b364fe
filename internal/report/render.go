package report

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/fentz26/taskgov/internal/fsutil"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var pageTemplate = template.Must(template.New("report.html.tmpl").ParseFS(templateFS, "templates/report.html.tmpl"))

// Render writes the HTML document to w. All snapshot text passes through
// html/template escaping.
func Render(w io.Writer, doc *Document) error {
	if err := pageTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// RenderBytes renders the document into memory.
func RenderBytes(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders doc and replaces the file at path. The page is written
// to a temporary file in the same directory and renamed into place, so a
// failed run leaves any previous report untouched.
func WriteFile(path string, doc *Document) error {
	data, err := RenderBytes(doc)
	if err != nil {
		return err
	}
	if err := fsutil.WriteAtomic(path, data, 0644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}
