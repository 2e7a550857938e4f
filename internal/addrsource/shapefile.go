// Package addrsource reads municipal address points from a shapefile.
package addrsource

import (
	"strconv"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/mapgrind/addresser/internal/pipeline"
)

// Fields names the DBF columns an address record is read from.
type Fields struct {
	Latitude  string
	Longitude string
	Number    string
	Street    string
	Qualifier string
	Zip       string
}

// DefaultFields matches the column layout of master address table exports.
func DefaultFields() Fields {
	return Fields{
		Latitude:  "latitude",
		Longitude: "longitude",
		Number:    "txt_number",
		Street:    "txt_street",
		Qualifier: "txt_suffix",
		Zip:       "txt_zip",
	}
}

// Reader loads address records from a shapefile's attribute table.
type Reader struct {
	fields   Fields
	decode   func(string) (string, error)
	encoding string
}

// Option configures the Reader.
type Option func(*Reader)

// WithFields overrides the DBF column names.
func WithFields(f Fields) Option {
	return func(r *Reader) { r.fields = f }
}

// WithEncoding decodes DBF attribute bytes from the named charset (e.g.
// "latin1"); municipal exports frequently predate UTF-8.
func WithEncoding(name string) Option {
	return func(r *Reader) { r.encoding = name }
}

// NewReader creates a Reader with the given options.
func NewReader(opts ...Option) (*Reader, error) {
	r := &Reader{fields: DefaultFields()}
	for _, opt := range opts {
		opt(r)
	}

	if r.encoding != "" && !strings.EqualFold(r.encoding, "utf-8") {
		enc, err := htmlindex.Get(r.encoding)
		if err != nil {
			return nil, eris.Wrapf(err, "addrsource: unsupported encoding %q", r.encoding)
		}
		decoder := enc.NewDecoder()
		r.decode = func(s string) (string, error) { return decoder.String(s) }
	}
	return r, nil
}

// Read loads every address record from the shapefile at path. Records with
// unparseable coordinates are skipped with a warning; everything else is
// returned as-is for the pipeline to validate.
func (r *Reader) Read(path string) ([]pipeline.Address, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "addrsource: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	// Build field name -> index map.
	fields := reader.Fields()
	fieldIdx := make(map[string]int, len(fields))
	for i, f := range fields {
		name := strings.TrimRight(f.String(), "\x00")
		fieldIdx[strings.ToLower(name)] = i
	}

	required := []string{r.fields.Latitude, r.fields.Longitude, r.fields.Number, r.fields.Street}
	for _, name := range required {
		if _, ok := fieldIdx[strings.ToLower(name)]; !ok {
			return nil, eris.Errorf("addrsource: shapefile missing field %q", name)
		}
	}

	var addrs []pipeline.Address
	var skipped int
	for reader.Next() {
		attr := func(name string) string { return r.attribute(reader, fieldIdx, name) }

		lat, latErr := strconv.ParseFloat(attr(r.fields.Latitude), 64)
		lng, lngErr := strconv.ParseFloat(attr(r.fields.Longitude), 64)
		if latErr != nil || lngErr != nil {
			skipped++
			continue
		}

		addrs = append(addrs, pipeline.Address{
			Latitude:     lat,
			Longitude:    lng,
			RawNumber:    attr(r.fields.Number),
			RawStreet:    attr(r.fields.Street),
			RawQualifier: attr(r.fields.Qualifier),
			Zip:          attr(r.fields.Zip),
		})
	}

	if skipped > 0 {
		zap.L().Warn("addrsource: skipped records with bad coordinates",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return addrs, nil
}

// attribute fetches, decodes, and trims one attribute value. Unknown fields
// (the optional qualifier and zip columns) read as empty.
func (r *Reader) attribute(reader *shp.Reader, fieldIdx map[string]int, name string) string {
	idx, ok := fieldIdx[strings.ToLower(name)]
	if !ok {
		return ""
	}
	val := reader.Attribute(idx)
	if r.decode != nil {
		if decoded, err := r.decode(val); err == nil {
			val = decoded
		}
	}
	val = strings.TrimRight(val, "\x00")
	return strings.TrimSpace(val)
}
