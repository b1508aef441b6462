package jsonfile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"satisfaction/internal/core"
	"satisfaction/internal/ratings"
)

var _ ratings.Source = (*Source)(nil)

// ErrTrailingData is returned when anything but whitespace follows the
// top-level JSON value.
var ErrTrailingData = errors.New("unexpected data after top-level value")

// ErrUnsupportedShape is returned when the document is neither a list of
// objects nor an object of equally long columns.
var ErrUnsupportedShape = errors.New("unsupported JSON shape")

// Source reads ratings from a JSON file at a fixed path.
type Source struct {
	Path string
}

func New(path string) *Source {
	return &Source{Path: path}
}

// Load reads and decodes the whole file. Two shapes are accepted:
//
//	[{"date": "2024-01-10", "rate": 2}, ...]
//	{"date": ["2024-01-10", ...], "rate": [2, ...]}
func (s *Source) Load(ctx context.Context) ([]core.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read ratings file: %w", err)
	}
	recs, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.Path, err)
	}
	return recs, nil
}

// Decode parses a JSON document into raw records.
func Decode(data []byte) ([]core.RawRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w at offset %d", ErrTrailingData, dec.InputOffset())
	}

	switch v := doc.(type) {
	case []any:
		return fromRows(v)
	case map[string]any:
		return fromColumns(v)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedShape, doc)
	}
}

func fromRows(rows []any) ([]core.RawRecord, error) {
	out := make([]core.RawRecord, 0, len(rows))
	for i, row := range rows {
		obj, ok := row.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, want object", ErrUnsupportedShape, i, row)
		}
		out = append(out, core.RawRecord{
			Index: i,
			Date:  stringify(obj["date"]),
			Rate:  stringify(obj["rate"]),
		})
	}
	return out, nil
}

func fromColumns(cols map[string]any) ([]core.RawRecord, error) {
	dates, ok := cols["date"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing \"date\" column", ErrUnsupportedShape)
	}
	rates, ok := cols["rate"].([]any)
	if !ok {
		return nil, fmt.Errorf("%w: missing \"rate\" column", ErrUnsupportedShape)
	}
	if len(dates) != len(rates) {
		return nil, fmt.Errorf("%w: %d dates but %d rates", ErrUnsupportedShape, len(dates), len(rates))
	}
	out := make([]core.RawRecord, len(dates))
	for i := range dates {
		out[i] = core.RawRecord{Index: i, Date: stringify(dates[i]), Rate: stringify(rates[i])}
	}
	return out, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
