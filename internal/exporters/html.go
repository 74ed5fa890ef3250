package exporters

import (
	"fmt"
	"html"
	"strings"
)

const DateTimeLayout = "2006-01-02 15:04:05"

const stylesheet = `body{font-family:'Georgia',serif;line-height:1.7;max-width:850px;margin:auto;padding:30px;background:#fdfdfd;}` +
	` .header-section{display:flex;justify-content:space-between;align-items:flex-start;margin-bottom:30px;}` +
	` h1{margin:0;padding:0;} h3{margin:5px 0 0 0;padding:0;}` +
	` .export-date{font-size:0.75rem;color:#888;text-align:right;}` +
	` .note-block{border-left:5px solid #3498db;padding:20px;margin:30px 0;background:#fff;box-shadow:0 2px 8px rgba(0,0,0,0.05);}` +
	` mark{background:#fff176;font-weight:normal;color:black;padding:2px;}` +
	` .user-note{margin-top:15px;padding:12px;background:#eef7fe;border-radius:5px;font-style:italic;}`

// HTMLWriter keeps one self-contained HTML page per book. New highlights
// are appended, so a page grows across export runs; the header carries the
// date of the run that created it.
type HTMLWriter struct {
	Dir string
}

func NewHTMLWriter(dir string) *HTMLWriter {
	return &HTMLWriter{Dir: dir}
}

func (w *HTMLWriter) Name() string { return "html" }

func (w *HTMLWriter) Write(entry Entry) error {
	path := BookPath(w.Dir, entry.BookLabel, HTMLExtension)
	return appendFile(path, func() string { return htmlHeader(entry) }, htmlBlock(entry))
}

func htmlHeader(entry Entry) string {
	return fmt.Sprintf("<html><head><meta charset='UTF-8'><style>%s</style></head><body>"+
		"<div class='header-section'><div class='title-author'><h1>%s</h1><h3>%s</h3></div>"+
		"<div class='export-date'>Exported: %s</div></div><hr>",
		stylesheet,
		html.EscapeString(entry.Title),
		html.EscapeString(entry.Author),
		entry.ExportedAt.Format(DateTimeLayout),
	)
}

func htmlBlock(entry Entry) string {
	var b strings.Builder
	b.WriteString("<div class='note-block'>")
	b.WriteString(entry.Fragment)
	if strings.TrimSpace(entry.Note) != "" {
		b.WriteString("<div class='user-note'><b>My Note:</b> ")
		b.WriteString(html.EscapeString(entry.Note))
		b.WriteString("</div>")
	}
	b.WriteString("</div>")
	return b.String()
}
