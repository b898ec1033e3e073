package backend

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// The backend is inconsistent about field naming: the same concept arrives as
// "activo", "Activo" or "active", and numbers arrive as JSON numbers or strings.
// record resolves a field from a list of aliases, case-insensitively, so the
// decoders below are the only place that knows about those spellings.
type record struct {
	fields map[string]any
}

func decodeTree(body []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

func asRecord(v any) (record, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return record{}, false
	}
	fields := make(map[string]any, len(m))
	for k, val := range m {
		fields[foldKey(k)] = val
	}
	return record{fields: fields}, true
}

var keySeparators = strings.NewReplacer("_", "", "-", "", " ", "")

// foldKey makes "precio_unitario", "precioUnitario" and "PrecioUnitario" equal
func foldKey(k string) string {
	return strings.ToLower(keySeparators.Replace(k))
}

func (r record) raw(aliases ...string) any {
	for _, a := range aliases {
		if v, ok := r.fields[foldKey(a)]; ok && v != nil {
			return v
		}
	}
	return nil
}

func (r record) str(aliases ...string) string {
	switch v := r.raw(aliases...).(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	}
	return ""
}

func (r record) num(aliases ...string) (decimal.Decimal, bool) {
	switch v := r.raw(aliases...).(type) {
	case json.Number:
		d, err := decimal.NewFromString(v.String())
		return d, err == nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(v))
		return d, err == nil
	}
	return decimal.Zero, false
}

func (r record) integer(aliases ...string) (int64, bool) {
	d, ok := r.num(aliases...)
	if !ok {
		return 0, false
	}
	return d.IntPart(), true
}

func (r record) float(aliases ...string) (float64, bool) {
	switch v := r.raw(aliases...).(type) {
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// boolean accepts true/false, 1/0 and the Spanish "si"/"no" spellings
func (r record) boolean(def bool, aliases ...string) bool {
	switch v := r.raw(aliases...).(type) {
	case bool:
		return v
	case json.Number:
		return v.String() != "0"
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "si", "sí", "yes", "activo", "active":
			return true
		case "false", "0", "no", "inactivo", "inactive":
			return false
		}
	}
	return def
}

// strList reads a list field given as a JSON array or a comma separated string
func (r record) strList(aliases ...string) []string {
	var out []string
	switch v := r.raw(aliases...).(type) {
	case []any:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				if s = strings.TrimSpace(s); s != "" {
					out = append(out, s)
				}
			case map[string]any:
				if rec, ok := asRecord(s); ok {
					if name := rec.str("nombre", "name", "label", "valor", "value"); name != "" {
						out = append(out, name)
					}
				}
			}
		}
	case string:
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

func (r record) list(aliases ...string) []record {
	items, ok := r.raw(aliases...).([]any)
	if !ok {
		return nil
	}
	out := make([]record, 0, len(items))
	for _, item := range items {
		if rec, ok := asRecord(item); ok {
			out = append(out, rec)
		}
	}
	return out
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (r record) when(aliases ...string) (time.Time, bool) {
	s := r.str(aliases...)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// unwrapList accepts a bare array or an envelope such as {"data": [...]} or {"productos": [...]}
func unwrapList(v any, envelopes ...string) ([]record, error) {
	if items, ok := v.([]any); ok {
		out := make([]record, 0, len(items))
		for _, item := range items {
			if rec, ok := asRecord(item); ok {
				out = append(out, rec)
			}
		}
		return out, nil
	}
	rec, ok := asRecord(v)
	if !ok {
		return nil, fmt.Errorf("expected a list, got %T", v)
	}
	keys := append([]string{"data", "items", "results"}, envelopes...)
	for _, k := range keys {
		if _, ok := rec.raw(k).([]any); ok {
			return rec.list(k), nil
		}
	}
	return nil, fmt.Errorf("no list found in response envelope")
}

// unwrapRecord accepts a bare object or one wrapped in {"data": {...}}
func unwrapRecord(v any, envelopes ...string) (record, error) {
	rec, ok := asRecord(v)
	if !ok {
		return record{}, fmt.Errorf("expected an object, got %T", v)
	}
	for _, k := range append([]string{"data"}, envelopes...) {
		if inner, ok := asRecord(rec.raw(k)); ok {
			return inner, nil
		}
	}
	return rec, nil
}
