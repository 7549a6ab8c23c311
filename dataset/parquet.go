package dataset

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/vegasq/insight/schema"
)

const parquetExt = ".parquet"

// courseRow is the on-disk layout of a courses record.
type courseRow struct {
	Dept       string  `parquet:"dept"`
	ID         string  `parquet:"id"`
	Avg        float64 `parquet:"avg"`
	Instructor string  `parquet:"instructor"`
	Title      string  `parquet:"title"`
	Pass       float64 `parquet:"pass"`
	Fail       float64 `parquet:"fail"`
	Audit      float64 `parquet:"audit"`
	UUID       string  `parquet:"uuid"`
	Year       float64 `parquet:"year"`
}

// roomRow is the on-disk layout of a rooms record.
type roomRow struct {
	Fullname  string  `parquet:"fullname"`
	Shortname string  `parquet:"shortname"`
	Number    string  `parquet:"number"`
	Name      string  `parquet:"name"`
	Address   string  `parquet:"address"`
	Lat       float64 `parquet:"lat"`
	Lon       float64 `parquet:"lon"`
	Seats     float64 `parquet:"seats"`
	Type      string  `parquet:"type"`
	Furniture string  `parquet:"furniture"`
	Href      string  `parquet:"href"`
}

// rowCodec converts records to and from one parquet row type.
type rowCodec interface {
	write(w io.Writer, records []Record) error
	read(r io.ReaderAt) ([]Record, error)
}

type parquetCodec[T any] struct {
	encode func(Record) T
	decode func(T) Record
}

func (c parquetCodec[T]) write(w io.Writer, records []Record) error {
	rows := make([]T, len(records))
	for i, rec := range records {
		rows[i] = c.encode(rec)
	}

	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close writer: %w", err)
	}
	return nil
}

func (c parquetCodec[T]) read(r io.ReaderAt) ([]Record, error) {
	reader := parquet.NewGenericReader[T](r)
	defer func() { _ = reader.Close() }()

	records := make([]Record, 0, reader.NumRows())
	buf := make([]T, 256)
	for {
		n, err := reader.Read(buf)
		for _, row := range buf[:n] {
			records = append(records, c.decode(row))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to read row: %w", err)
		}
		if n == 0 {
			break
		}
	}
	return records, nil
}

func num(r Record, field string) float64 {
	if v, ok := r[field].(float64); ok {
		return v
	}
	return 0
}

func str(r Record, field string) string {
	if v, ok := r[field].(string); ok {
		return v
	}
	return ""
}

var codecs = map[schema.Kind]rowCodec{
	schema.Courses: parquetCodec[courseRow]{
		encode: func(r Record) courseRow {
			return courseRow{
				Dept:       str(r, "dept"),
				ID:         str(r, "id"),
				Avg:        num(r, "avg"),
				Instructor: str(r, "instructor"),
				Title:      str(r, "title"),
				Pass:       num(r, "pass"),
				Fail:       num(r, "fail"),
				Audit:      num(r, "audit"),
				UUID:       str(r, "uuid"),
				Year:       num(r, "year"),
			}
		},
		decode: func(c courseRow) Record {
			return Record{
				"dept":       c.Dept,
				"id":         c.ID,
				"avg":        c.Avg,
				"instructor": c.Instructor,
				"title":      c.Title,
				"pass":       c.Pass,
				"fail":       c.Fail,
				"audit":      c.Audit,
				"uuid":       c.UUID,
				"year":       c.Year,
			}
		},
	},
	schema.Rooms: parquetCodec[roomRow]{
		encode: func(r Record) roomRow {
			return roomRow{
				Fullname:  str(r, "fullname"),
				Shortname: str(r, "shortname"),
				Number:    str(r, "number"),
				Name:      str(r, "name"),
				Address:   str(r, "address"),
				Lat:       num(r, "lat"),
				Lon:       num(r, "lon"),
				Seats:     num(r, "seats"),
				Type:      str(r, "type"),
				Furniture: str(r, "furniture"),
				Href:      str(r, "href"),
			}
		},
		decode: func(r roomRow) Record {
			return Record{
				"fullname":  r.Fullname,
				"shortname": r.Shortname,
				"number":    r.Number,
				"name":      r.Name,
				"address":   r.Address,
				"lat":       r.Lat,
				"lon":       r.Lon,
				"seats":     r.Seats,
				"type":      r.Type,
				"furniture": r.Furniture,
				"href":      r.Href,
			}
		},
	},
}

// ParquetStore persists datasets as parquet files laid out as
// <dir>/<kind>/<id>.parquet.
type ParquetStore struct {
	dir string
}

// NewParquetStore creates a persister rooted at dir, creating it if needed.
func NewParquetStore(dir string) (*ParquetStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &ParquetStore{dir: dir}, nil
}

// Dir returns the root directory.
func (p *ParquetStore) Dir() string {
	return p.dir
}

func (p *ParquetStore) path(kind schema.Kind, id string) string {
	return filepath.Join(p.dir, string(kind), id+parquetExt)
}

// Save writes ds to disk. The file is written next to its final path and
// renamed into place, so a reader never sees a partial file.
func (p *ParquetStore) Save(ds *Dataset) error {
	codec, ok := codecs[ds.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", schema.ErrUnknownKind, ds.Kind)
	}

	path := p.path(ds.Kind, ds.ID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create kind directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+ds.ID+"-*")
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := codec.write(tmp, ds.Records); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("dataset %s: %w", ds.ID, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to publish file: %w", err)
	}
	return nil
}

// Delete removes the file of the dataset. A missing file is not an error.
func (p *ParquetStore) Delete(kind schema.Kind, id string) error {
	if err := os.Remove(p.path(kind, id)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete dataset %s: %w", id, err)
	}
	return nil
}

// Load reads the persisted dataset id of the given kind.
func (p *ParquetStore) Load(kind schema.Kind, id string) (*Dataset, error) {
	codec, ok := codecs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", schema.ErrUnknownKind, kind)
	}

	file, err := os.Open(p.path(kind, id))
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	if _, err := parquet.OpenFile(file, stat.Size()); err != nil {
		return nil, fmt.Errorf("failed to open parquet file: %w", err)
	}

	records, err := codec.read(file)
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", id, err)
	}
	return New(id, kind, records)
}

// LoadAll reads every persisted dataset, ordered by kind then id.
func (p *ParquetStore) LoadAll() ([]*Dataset, error) {
	kinds := make([]schema.Kind, 0, len(codecs))
	for kind := range codecs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	var all []*Dataset
	for _, kind := range kinds {
		matches, err := filepath.Glob(filepath.Join(p.dir, string(kind), "*"+parquetExt))
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern: %w", err)
		}
		sort.Strings(matches)

		for _, match := range matches {
			id := strings.TrimSuffix(filepath.Base(match), parquetExt)
			if strings.HasPrefix(id, ".") {
				continue
			}
			ds, err := p.Load(kind, id)
			if err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", match, err)
			}
			all = append(all, ds)
		}
	}
	return all, nil
}
