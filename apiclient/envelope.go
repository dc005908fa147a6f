package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
)

// Page is a decoded list response.
type Page[T any] struct {
	Items    []T
	Count    int
	Next     string
	Previous string
}

// defaultListKeys are tried after the endpoint specific keys.
var defaultListKeys = []string{"data", "items"}

// DecodeList accepts the list shapes the backend uses:
//
//	[...]                                  bare array
//	{"count": n, "next": .., "results": [...]}  paginated
//	{"<key>": [...]}                       array under a named key
//	{"<key>": {"results": [...]}}          paginated under a named key
//
// keys names the envelope keys accepted for the endpoint, in order.
func DecodeList[T any](body []byte, keys ...string) (Page[T], error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Page[T]{}, fmt.Errorf("[apiclient DecodeList] empty body: %w", ErrUnknownEnvelope)
	}
	return decodeList[T](body, slices.Concat(keys, defaultListKeys), true)
}

func decodeList[T any](body []byte, keys []string, nested bool) (Page[T], error) {
	switch body[0] {
	case '[':
		var items []T
		if err := json.Unmarshal(body, &items); err != nil {
			return Page[T]{}, fmt.Errorf("[apiclient DecodeList] failed to decode array: %w", err)
		}
		return Page[T]{Items: items, Count: len(items)}, nil

	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(body, &obj); err != nil {
			return Page[T]{}, fmt.Errorf("[apiclient DecodeList] failed to decode object: %w", err)
		}
		if results, ok := obj["results"]; ok {
			return decodePaginated[T](obj, results)
		}
		for _, key := range keys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
				return Page[T]{}, nil
			}
			if raw[0] == '[' || (nested && raw[0] == '{') {
				return decodeList[T](raw, keys, false)
			}
		}
	}
	return Page[T]{}, ErrUnknownEnvelope
}

func decodePaginated[T any](obj map[string]json.RawMessage, results json.RawMessage) (Page[T], error) {
	var page Page[T]
	if err := json.Unmarshal(results, &page.Items); err != nil {
		return Page[T]{}, fmt.Errorf("[apiclient DecodeList] failed to decode results: %w", err)
	}
	page.Count = len(page.Items)
	if raw, ok := obj["count"]; ok {
		_ = json.Unmarshal(raw, &page.Count)
	}
	page.Next = optionalString(obj["next"])
	page.Previous = optionalString(obj["previous"])
	return page, nil
}

func optionalString(raw json.RawMessage) string {
	var s *string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil || s == nil {
		return ""
	}
	return *s
}

// GetList fetches path and decodes its list envelope.
func GetList[T any](ctx context.Context, d Doer, path string, query url.Values, keys ...string) (Page[T], error) {
	var raw json.RawMessage
	if err := d.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, &raw); err != nil {
		return Page[T]{}, err
	}
	page, err := DecodeList[T](raw, keys...)
	if err != nil {
		return Page[T]{}, fmt.Errorf("[apiclient GetList] %s: %w", path, err)
	}
	return page, nil
}
