package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

var sampleRows = []map[string]interface{}{
	{"sections_dept": "cpsc", "avgGrade": 87.5},
	{"sections_dept": "math", "avgGrade": 70.0},
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(nil, sampleRows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != len(sampleRows) {
		t.Fatalf("Format() wrote %d lines, want %d", len(lines), len(sampleRows))
	}
	for i, line := range lines {
		var row map[string]interface{}
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", i, err)
		}
		if row["sections_dept"] != sampleRows[i]["sections_dept"] {
			t.Errorf("line %d sections_dept = %v, want %v", i, row["sections_dept"], sampleRows[i]["sections_dept"])
		}
	}
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter(&buf).Format(nil, nil); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Format() output = %q, want empty", buf.String())
	}
}

func TestJSONArrayFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONArrayFormatter(&buf).Format(nil, sampleRows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	var rows []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &rows); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(rows) != 2 || rows[1]["avgGrade"] != 70.0 {
		t.Errorf("Format() = %v", rows)
	}

	buf.Reset()
	if err := NewJSONArrayFormatter(&buf).Format(nil, nil); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty result = %q, want []", buf.String())
	}
}

func TestSetOutput(t *testing.T) {
	var first, second bytes.Buffer
	f := NewJSONFormatter(&first)
	f.SetOutput(&second)
	if err := f.Format(nil, sampleRows); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if first.Len() != 0 || second.Len() == 0 {
		t.Error("SetOutput() did not redirect output")
	}
}
