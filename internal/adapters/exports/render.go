package exports

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"immunizetrack/internal/core"
)

// Format is an artifact encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for unknown format names.
var ErrUnsupportedFormat = errors.New("exports: unsupported format")

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatJSON:
		return "application/json"
	default:
		return "application/octet-stream"
	}
}

// ParseFormat resolves a format name.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, name)
	}
}

type jsonDocument struct {
	Kind     string   `json:"kind"`
	Query    string   `json:"query"`
	Fields   []string `json:"fields"`
	Revision uint64   `json:"revision"`
	Total    int      `json:"total"`
	Matched  int      `json:"matched"`
	Records  []any    `json:"records"`
}

// Render encodes the rows of listing in format.
func Render(format Format, listing core.Listing) ([]byte, error) {
	switch format {
	case FormatJSON:
		return renderJSON(listing)
	case FormatCSV:
		return renderCSV(listing)
	default:
		return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}
}

func renderJSON(listing core.Listing) ([]byte, error) {
	doc := jsonDocument{
		Kind:     string(listing.Kind),
		Query:    listing.Query,
		Fields:   listing.Fields,
		Revision: listing.Revision,
		Total:    listing.Total,
		Matched:  listing.Matched,
		Records:  make([]any, 0, len(listing.Rows)),
	}
	for _, row := range listing.Rows {
		doc.Records = append(doc.Records, row.Record)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// renderCSV writes one column per top-level JSON attribute of the records, in
// first-seen order, followed by the row category.
func renderCSV(listing core.Listing) ([]byte, error) {
	var (
		columns []string
		seen    = map[string]bool{}
		rows    = make([]map[string]string, 0, len(listing.Rows))
	)
	for _, row := range listing.Rows {
		keys, values, err := flatten(row.Record)
		if err != nil {
			return nil, fmt.Errorf("flatten %s: %w", row.ID, err)
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				columns = append(columns, k)
			}
		}
		values["category"] = string(row.Category)
		rows = append(rows, values)
	}
	if !seen["category"] {
		columns = append(columns, "category")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(columns); err != nil {
		return nil, err
	}
	record := make([]string, len(columns))
	for _, values := range rows {
		for i, col := range columns {
			record[i] = values[col]
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatten(rec any) ([]string, map[string]string, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, nil, fmt.Errorf("record is not an object")
	}
	var keys []string
	values := map[string]string{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := tok.(string)
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		keys = append(keys, key)
		values[key] = cell(raw)
	}
	return keys, values, nil
}

func cell(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	switch {
	case bytes.Equal(trimmed, []byte("null")):
		return ""
	case len(trimmed) > 0 && trimmed[0] == '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			return s
		}
	}
	return string(trimmed)
}
