package tablemodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TokenizedInput is the pre-tokenized shape produced by the extraction service.
// Rows are usually arrays; keyed rows are ordered by Headers.
type TokenizedInput struct {
	Headers []string `json:"headers"`
	Rows    []any    `json:"rows"`
}

// DecodeInput turns bytes into an input shape for Engine.Normalize: decoded
// JSON when the bytes are a JSON object or array, otherwise the raw text.
// Objects inside arrays keep their key order.
func DecodeInput(data []byte) any {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || (trimmed[0] != '{' && trimmed[0] != '[') {
		return string(data)
	}
	v, err := decodeOrdered(trimmed)
	if err != nil {
		return string(data)
	}
	return v
}

// decodeOrdered decodes JSON, numbers as json.Number and objects as Record
func decodeOrdered(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeValue(dec)
	if err != nil {
		return nil, err
	}
	if dec.More() {
		return nil, fmt.Errorf("trailing data after JSON value")
	}
	return unwrapTopLevel(v), nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			r := Record{Values: make(map[string]any)}
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				if _, dup := r.Values[key]; !dup {
					r.Keys = append(r.Keys, key)
				}
				r.Values[key] = value
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return r, nil
		case '[':
			list := []any{}
			for dec.More() {
				value, err := decodeValue(dec)
				if err != nil {
					return nil, err
				}
				list = append(list, value)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		}
		return nil, fmt.Errorf("unexpected delimiter %v", t)
	default:
		return t, nil
	}
}

// unwrapTopLevel converts a top-level {headers, rows} record into a
// TokenizedInput and nested records into plain maps for cell typing
func unwrapTopLevel(v any) any {
	switch t := v.(type) {
	case Record:
		if in, ok := tokenizedFromRecord(t); ok {
			return in
		}
		return flatten(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			switch it := item.(type) {
			case Record:
				out[i] = Record{Keys: it.Keys, Values: flattenValues(it.Values)}
			default:
				out[i] = flatten(it)
			}
		}
		return out
	}
	return v
}

// tokenizedFromRecord recognizes the {headers, rows} shape
func tokenizedFromRecord(r Record) (TokenizedInput, bool) {
	rowsValue, ok := lookupFold(r.Values, "rows")
	if !ok {
		return TokenizedInput{}, false
	}
	rows, ok := rowsValue.([]any)
	if !ok {
		return TokenizedInput{}, false
	}

	in := TokenizedInput{Rows: make([]any, len(rows))}
	if headers, ok := lookupFold(r.Values, "headers"); ok {
		in.Headers = headerStrings(headers)
	}
	for i, row := range rows {
		if rec, ok := row.(Record); ok {
			in.Rows[i] = Record{Keys: rec.Keys, Values: flattenValues(rec.Values)}
			continue
		}
		in.Rows[i] = flatten(row)
	}
	return in, true
}

// tokenizedFromMap recognizes the {headers, rows} shape in a plain map
func tokenizedFromMap(m map[string]any) (TokenizedInput, bool) {
	return tokenizedFromRecord(Record{Values: m})
}

func lookupFold(values map[string]any, key string) (any, bool) {
	if v, ok := values[key]; ok {
		return v, true
	}
	for k, v := range values {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

func headerStrings(v any) []string {
	var list []any
	switch t := v.(type) {
	case []any:
		list = t
	case []string:
		return append([]string(nil), t...)
	default:
		return nil
	}
	headers := make([]string, len(list))
	for i, h := range list {
		if h == nil {
			continue
		}
		headers[i] = fmt.Sprint(h)
	}
	return headers
}

// flatten turns nested Records into maps so cell values are plain JSON values
func flatten(v any) any {
	switch t := v.(type) {
	case Record:
		return flattenValues(t.Values)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = flatten(item)
		}
		return out
	}
	return v
}

func flattenValues(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		out[k] = flatten(v)
	}
	return out
}
