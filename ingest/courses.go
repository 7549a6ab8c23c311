package ingest

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
	"github.com/tidwall/gjson"

	"github.com/vegasq/insight/dataset"
)

// coursesDir is the directory inside a course archive holding section files
const coursesDir = "courses/"

// overallYear is the year assigned to "overall" summary sections
const overallYear = 1900

// ParseCourses reads a zip archive of course files and returns one record per
// valid section. Each file under courses/ holds {"result": [section, ...]}.
// Files that are not JSON and sections missing required fields are skipped.
//
// content may be the raw archive or its base64 encoding.
func ParseCourses(content []byte) ([]dataset.Record, error) {
	archive, err := openZip(content)
	if err != nil {
		return nil, err
	}

	var records []dataset.Record
	found := false
	for _, f := range archive.File {
		if !strings.HasPrefix(f.Name, coursesDir) {
			continue
		}
		found = true
		if f.FileInfo().IsDir() {
			continue
		}

		data, err := readZipFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		records = append(records, parseCourseFile(data)...)
	}

	if !found {
		return nil, fmt.Errorf("%w: archive has no %s directory", ErrInvalidContent, strings.TrimSuffix(coursesDir, "/"))
	}
	if len(records) == 0 {
		return nil, ErrNoValidRecords
	}
	return records, nil
}

func openZip(content []byte) (*zip.Reader, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: empty content", ErrInvalidContent)
	}
	if !bytes.HasPrefix(content, []byte("PK")) {
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(string(content)))
		if err != nil {
			return nil, fmt.Errorf("%w: not a zip archive", ErrInvalidContent)
		}
		content = decoded
	}

	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return archive, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// parseCourseFile extracts the valid sections of one course file
func parseCourseFile(data []byte) []dataset.Record {
	if !gjson.ValidBytes(data) {
		return nil
	}
	result := gjson.GetBytes(data, "result")
	if !result.IsArray() {
		return nil
	}

	var records []dataset.Record
	result.ForEach(func(_, section gjson.Result) bool {
		if r, ok := parseSection(section); ok {
			records = append(records, r)
		}
		return true
	})
	return records
}

// parseSection converts one raw section into a courses record
func parseSection(section gjson.Result) (dataset.Record, bool) {
	if !section.IsObject() {
		return nil, false
	}

	var year float64
	if section.Get("Section").String() == "overall" {
		year = overallYear
	} else {
		raw := section.Get("Year")
		if raw.Type != gjson.String {
			return nil, false
		}
		y, ok := leadingInt(raw.Str)
		if !ok {
			return nil, false
		}
		year = float64(y)
	}

	text := map[string]string{"dept": "Subject", "id": "Course", "instructor": "Professor", "title": "Title"}
	numeric := map[string]string{"avg": "Avg", "pass": "Pass", "fail": "Fail", "audit": "Audit"}

	r := dataset.Record{"year": year}
	for field, key := range text {
		v := section.Get(key)
		if v.Type != gjson.String {
			return nil, false
		}
		r[field] = v.Str
	}
	for field, key := range numeric {
		v := section.Get(key)
		if v.Type != gjson.Number {
			return nil, false
		}
		r[field] = v.Num
	}

	id := section.Get("id")
	if id.Type != gjson.Number {
		return nil, false
	}
	r["uuid"] = strconv.FormatFloat(id.Num, 'f', -1, 64)
	return r, true
}

// leadingInt parses the integer prefix of s, ignoring leading spaces
func leadingInt(s string) (int, bool) {
	s = strings.TrimLeft(s, " \t\n\r")
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	return n, err == nil
}
