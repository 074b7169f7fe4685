package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d1childress/neoTUI/scanner"
)

func sampleDocument() *Document {
	outcomes := []scanner.Outcome{
		{Port: 443, State: scanner.StateOpen, Service: "HTTPS"},
		{Port: 21, State: scanner.StateClosed},
		{Port: 22, State: scanner.StateOpen, Service: "SSH"},
		{Port: 23, State: scanner.StateError, Err: "network is unreachable"},
	}
	return &Document{
		Host:      "scanme.example.com",
		PortSpec:  "21-23,443",
		Timestamp: time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC),
		Duration:  "1.2s",
		Report:    scanner.Aggregate(outcomes, 4),
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	doc := sampleDocument()
	var buf bytes.Buffer
	require.NoError(t, JSON(doc, &buf))

	var decoded Document
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, doc.Host, decoded.Host)
	assert.Equal(t, doc.Report.TotalRequested, decoded.Report.TotalRequested)
	// Completion order preserved.
	assert.Equal(t, 443, decoded.Report.Outcomes[0].Port)
}

func TestCSV_RowsInCompletionOrder(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSV(sampleDocument(), &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"host", "port", "state", "service", "error"}, rows[0])
	assert.Equal(t, "443", rows[1][1])
	assert.Equal(t, "Open", rows[1][2])
	assert.Equal(t, "network is unreachable", rows[4][4])
}

func TestXML_WellFormed(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, XML(sampleDocument(), &buf))
	assert.True(t, strings.HasPrefix(buf.String(), xml.Header))

	var decoded Document
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "scanme.example.com", decoded.Host)
}

func TestHTML_ContainsSummaryAndRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(sampleDocument(), &buf))
	html := buf.String()
	assert.Contains(t, html, "scanme.example.com")
	assert.Contains(t, html, "2 open, 1 closed, 1 errors of 4 requested")
	assert.Contains(t, html, `class="open"`)
	assert.Contains(t, html, "SSH")
}

func TestRender_Deterministic(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, JSON(sampleDocument(), &a))
	require.NoError(t, JSON(sampleDocument(), &b))
	assert.Equal(t, a.String(), b.String())
}

func TestSave_Atomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.json")

	require.NoError(t, Save(sampleDocument(), FormatJSON, path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))

	// Overwrite keeps the file readable end to end.
	require.NoError(t, Save(sampleDocument(), FormatCSV, path))
	data, err = os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "host,port,state,service,error")
}

func TestSave_UnsupportedFormat(t *testing.T) {
	err := Save(sampleDocument(), Format("yaml"), filepath.Join(t.TempDir(), "x"))
	assert.Error(t, err)
}

func TestWriteAtomic_FailurePreservesOriginal(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions do not bind root")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	err := WriteAtomic(path, []byte("should-not-land"))
	require.Error(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "original", string(got))
}
