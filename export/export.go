// Package export renders scan reports for machine consumption. Exports
// serialize outcomes in completion order, reflecting what actually
// happened during the scan rather than the sorted display order.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html/template"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/d1childress/neoTUI/scanner"
)

// Document wraps one scan report with the invocation metadata exports need.
type Document struct {
	XMLName   xml.Name        `json:"-" xml:"scan"`
	Host      string          `json:"host" xml:"host"`
	PortSpec  string          `json:"port_spec" xml:"port-spec"`
	Timestamp time.Time       `json:"timestamp" xml:"timestamp"`
	Duration  string          `json:"duration" xml:"duration"`
	Report    *scanner.Report `json:"report" xml:"report"`
}

// JSON writes the document as indented JSON.
func JSON(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// CSV writes one row per outcome, completion order, with a header row.
func CSV(doc *Document, w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"host", "port", "state", "service", "error"}); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, o := range doc.Report.Outcomes {
		row := []string{doc.Host, strconv.Itoa(o.Port), string(o.State), o.Service, o.Err}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// XML writes the document as indented XML with a declaration header.
func XML(doc *Document, w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode xml: %w", err)
	}
	return enc.Close()
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"lower": func(s scanner.State) string { return strings.ToLower(string(s)) },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>neoTUI scan: {{.Host}}</title>
<style>
body { font-family: monospace; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 4px 10px; text-align: left; }
.open { color: #087f23; font-weight: bold; }
.closed { color: #666; }
.error { color: #b00020; }
</style>
</head>
<body>
<h1>{{.Host}} ({{.PortSpec}})</h1>
<p>{{.Timestamp.Format "2006-01-02 15:04:05 MST"}} &mdash; {{.Duration}}</p>
<p>{{len .Report.Open}} open, {{.Report.ClosedCount}} closed, {{.Report.ErrorCount}} errors of {{.Report.TotalRequested}} requested</p>
<table>
<tr><th>Port</th><th>State</th><th>Service</th><th>Error</th></tr>
{{range .Report.Outcomes}}<tr><td>{{.Port}}</td><td class="{{.State | lower}}">{{.State}}</td><td>{{.Service}}</td><td>{{.Err}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// HTML writes a standalone report page.
func HTML(doc *Document, w io.Writer) error {
	if err := htmlTemplate.Execute(w, doc); err != nil {
		return fmt.Errorf("render html: %w", err)
	}
	return nil
}

// Format names a supported export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatXML  Format = "xml"
)

// Save renders the document in the given format and writes it to path
// atomically.
func Save(doc *Document, format Format, path string) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = JSON(doc, &buf)
	case FormatCSV:
		err = CSV(doc, &buf)
	case FormatHTML:
		err = HTML(doc, &buf)
	case FormatXML:
		err = XML(doc, &buf)
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return err
	}
	return WriteAtomic(path, buf.Bytes())
}
