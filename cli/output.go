package cli

import (
	"bsonkit/bson"
	"bsonkit/extjson"
	"bytes"
	"encoding/json"
	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"io"
	"strconv"
)

const maxPreviewLen = 48

// WriteDocument prints doc as Extended JSON: indented for the text format,
// one line per document for the json format.
func WriteDocument(w io.Writer, doc *bson.Document, format string) error {
	out, err := extjson.Marshal(doc)
	if err != nil {
		return err
	}
	return writeJSON(w, out, format)
}

// WriteValue prints a single value the same way WriteDocument does.
func WriteValue(w io.Writer, v interface{}, format string) error {
	out, err := extjson.MarshalValue(v)
	if err != nil {
		return err
	}
	return writeJSON(w, out, format)
}

func writeJSON(w io.Writer, out []byte, format string) error {
	switch format {
	case FormatJSON:
	case FormatText:
		var buf bytes.Buffer
		if err := json.Indent(&buf, out, "", "  "); err != nil {
			return err
		}
		out = buf.Bytes()
	default:
		return errors.Errorf("unknown output format %q", format)
	}
	if _, err := w.Write(append(out, '\n')); err != nil {
		return errors.Wrap(err, "error writing output")
	}
	return nil
}

type FieldInfo struct {
	Document int    `json:"document"`
	Key      string `json:"key"`
	Type     string `json:"type"`
	Size     int    `json:"size"`
	Preview  string `json:"preview"`
}

// InspectDocument describes each top-level field of doc. Size is the
// encoded payload length, excluding the tag and key.
func InspectDocument(index int, doc *bson.Document) ([]FieldInfo, error) {
	var fields []FieldInfo
	for _, e := range doc.Elems() {
		t, payload, err := bson.MarshalValue(e.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", e.Key)
		}
		preview, err := extjson.MarshalValue(e.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "field %q", e.Key)
		}
		p := string(preview)
		if r := []rune(p); len(r) > maxPreviewLen {
			p = string(r[:maxPreviewLen-3]) + "..."
		}
		fields = append(fields, FieldInfo{
			Document: index,
			Key:      e.Key,
			Type:     t.String(),
			Size:     len(payload),
			Preview:  p,
		})
	}
	return fields, nil
}

func WriteFieldTable(w io.Writer, fields []FieldInfo) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Doc",
		"Key",
		"Type",
		"Size",
		"Value",
	})
	for _, f := range fields {
		table.Append([]string{
			strconv.Itoa(f.Document),
			f.Key,
			f.Type,
			strconv.Itoa(f.Size),
			f.Preview,
		})
	}
	table.Render()
}
