package project

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"region-explorer/internal/region"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Format identifies a region file encoding.
type Format int

const (
	FormatRON Format = iota
	FormatJSON
	FormatYAML
	FormatTOML
)

func (f Format) String() string {
	switch f {
	case FormatRON:
		return "ron"
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ron":
		return FormatRON, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return 0, fmt.Errorf("unsupported region file extension %q", filepath.Ext(path))
	}
}

// filePoint and fileDocument mirror the on-disk schema. Pointer fields let
// the decoder tell a missing field from a zero value; every field is required.
type filePoint struct {
	X           *float64 `json:"x" yaml:"x" toml:"x"`
	Y           *float64 `json:"y" yaml:"y" toml:"y"`
	Description *string  `json:"description" yaml:"description" toml:"description"`
}

type fileDocument struct {
	Name        *string      `json:"name" yaml:"name" toml:"name"`
	Image       *string      `json:"image" yaml:"image" toml:"image"`
	Description *string      `json:"description" yaml:"description" toml:"description"`
	Points      *[]filePoint `json:"points" yaml:"points" toml:"points"`
}

func (f *fileDocument) toDocument() (*region.Document, error) {
	var missing []string
	if f.Name == nil {
		missing = append(missing, "name")
	}
	if f.Image == nil {
		missing = append(missing, "image")
	}
	if f.Description == nil {
		missing = append(missing, "description")
	}
	if f.Points == nil {
		missing = append(missing, "points")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing field(s): %s", strings.Join(missing, ", "))
	}

	doc := &region.Document{
		Name:        *f.Name,
		Image:       *f.Image,
		Description: *f.Description,
		Points:      make([]region.MapPoint, 0, len(*f.Points)),
	}
	for i, p := range *f.Points {
		if p.X == nil || p.Y == nil || p.Description == nil {
			return nil, fmt.Errorf("point %d: x, y and description are required", i)
		}
		doc.Points = append(doc.Points, region.NewMapPoint(*p.X, *p.Y, *p.Description))
	}
	return doc, nil
}

// Encode serializes doc in the given format. Text that is not valid UTF-8
// is rejected, since no format stores it faithfully.
func Encode(doc *region.Document, format Format) ([]byte, error) {
	if err := validateText(doc); err != nil {
		return nil, err
	}
	out := *doc
	if out.Points == nil {
		out.Points = []region.MapPoint{}
	}

	switch format {
	case FormatRON:
		return encodeRON(&out), nil
	case FormatJSON:
		data, err := json.MarshalIndent(&out, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&out); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(&out); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
}

func validateText(doc *region.Document) error {
	fields := []struct {
		name, text string
	}{
		{"name", doc.Name},
		{"image", doc.Image},
		{"description", doc.Description},
	}
	for _, f := range fields {
		if !utf8.ValidString(f.text) {
			return fmt.Errorf("region %s is not valid UTF-8", f.name)
		}
	}
	for i, p := range doc.Points {
		if !utf8.ValidString(p.Description) {
			return fmt.Errorf("point %d description is not valid UTF-8", i)
		}
	}
	return nil
}

// Decode parses data in the given format and validates it against the
// region schema. Unknown fields are rejected.
func Decode(data []byte, format Format) (*region.Document, error) {
	switch format {
	case FormatRON:
		return decodeRON(data)
	case FormatJSON:
		var f fileDocument
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse json: %w", err)
		}
		return f.toDocument()
	case FormatYAML:
		var f fileDocument
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
		return f.toDocument()
	case FormatTOML:
		var f fileDocument
		md, err := toml.Decode(string(data), &f)
		if err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown field %q", undecoded[0].String())
		}
		return f.toDocument()
	default:
		return nil, fmt.Errorf("unsupported format %v", format)
	}
}
