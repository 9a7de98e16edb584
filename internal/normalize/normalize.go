// Package normalize extracts canonical payloads from the envelopes the
// backend wraps them in.
//
// A logical list may arrive as {success, data: {<key>: [...]}},
// {data: [...]}, {<key>: [...]} or a bare array. Every list endpoint goes
// through List so the probing order is the same everywhere. Nothing in
// this package returns an error: an unrecognized shape yields an empty
// result and callers substitute defaults when they read fields.
package normalize

import (
	"bytes"
	"encoding/json"
)

// List returns the elements of the first matching shape, probing
// data.<key> for each key, then data as an array, then <key> for each
// key, then the body itself as an array. Elements that do not decode
// into T are skipped. The result is never nil.
func List[T any](raw []byte, keys ...string) []T {
	out := make([]T, 0)

	body, ok := decode(raw)
	if !ok {
		return out
	}

	elems, ok := findList(body, keys)
	if !ok {
		return out
	}

	for _, elem := range elems {
		var item T
		if err := convert(elem, &item); err != nil {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Record returns a single object from data.<key>, then data, then
// <key>, then the body itself. ok is false when the body is not a JSON
// object or the chosen object does not decode into T.
func Record[T any](raw []byte, keys ...string) (T, bool) {
	var zero T

	body, ok := decode(raw)
	if !ok {
		return zero, false
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return zero, false
	}

	target := any(obj)
	if data, ok := obj["data"].(map[string]any); ok {
		target = data
		for _, key := range keys {
			if nested, ok := data[key].(map[string]any); ok {
				target = nested
				break
			}
		}
	} else {
		for _, key := range keys {
			if keyed, ok := obj[key].(map[string]any); ok {
				target = keyed
				break
			}
		}
	}

	var out T
	if err := convert(target, &out); err != nil {
		return zero, false
	}
	return out, true
}

// Field decodes the value found by walking segments through nested
// objects, e.g. Field[Pagination](raw, "data", "pagination").
func Field[T any](raw []byte, segments ...string) (T, bool) {
	var zero T

	body, ok := decode(raw)
	if !ok {
		return zero, false
	}

	node := body
	for _, segment := range segments {
		obj, ok := node.(map[string]any)
		if !ok {
			return zero, false
		}
		next, exists := obj[segment]
		if !exists || next == nil {
			return zero, false
		}
		node = next
	}

	var out T
	if err := convert(node, &out); err != nil {
		return zero, false
	}
	return out, true
}

func findList(body any, keys []string) ([]any, bool) {
	obj, isObject := body.(map[string]any)
	if !isObject {
		arr, ok := body.([]any)
		return arr, ok
	}

	data := obj["data"]
	if nested, ok := data.(map[string]any); ok {
		for _, key := range keys {
			if arr, ok := nested[key].([]any); ok {
				return arr, true
			}
		}
	}

	if arr, ok := data.([]any); ok {
		return arr, true
	}

	for _, key := range keys {
		if arr, ok := obj[key].([]any); ok {
			return arr, true
		}
	}

	return nil, false
}

func decode(raw []byte) (any, bool) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, false
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	// json.Number keeps monetary values exact on the way back out.
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, false
	}
	return body, true
}

func convert(node any, out any) error {
	b, err := json.Marshal(node)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}
