package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
)

// DefaultMaxBodyBytes is the request body limit used when none is configured.
const DefaultMaxBodyBytes = 100 << 10 // 100 KiB

var (
	errMalformedBody = apperr.Validation("Malformed JSON request body.")
	errBodyTooLarge  = apperr.Validation("Request body too large.")
	errBodyNotObject = apperr.Validation("Request body must be a JSON object.")
)

// Payload is a decoded JSON object body. Keys lists the fields in document order.
type Payload struct {
	Keys   []string
	Fields map[string]any
}

// Get returns the raw decoded value of a field.
func (p Payload) Get(key string) (any, bool) {
	v, ok := p.Fields[key]
	return v, ok
}

// Has reports whether the field is present, even when its value is null.
func (p Payload) Has(key string) bool {
	_, ok := p.Fields[key]
	return ok
}

// Len returns the number of distinct fields.
func (p Payload) Len() int {
	return len(p.Keys)
}

// ParseBody returns the body parsing stage. Only JSON bodies are decoded; any other
// content type, or no body at all, leaves the payload empty.
func ParseBody(maxBytes int64) Stage {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(req *Request) error {
		req.Payload = Payload{Fields: map[string]any{}}
		if req.Request.Body == nil || req.Request.Body == http.NoBody || !isJSON(req.Header.Get("Content-Type")) {
			return nil
		}

		data, err := io.ReadAll(io.LimitReader(req.Request.Body, maxBytes+1))
		if err != nil {
			return fmt.Errorf("read request body: %w", err)
		}
		if int64(len(data)) > maxBytes {
			return errBodyTooLarge
		}
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		payload, err := decodeObject(data)
		if err != nil {
			return err
		}
		req.Payload = payload
		return nil
	}
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// decodeObject walks the top-level object token by token so that key order survives.
// A repeated key keeps its first position and its last value.
func decodeObject(data []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return Payload{}, errMalformedBody
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Payload{}, errBodyNotObject
	}

	p := Payload{Fields: map[string]any{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Payload{}, errMalformedBody
		}
		key, ok := tok.(string)
		if !ok {
			return Payload{}, errMalformedBody
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return Payload{}, errMalformedBody
		}
		if _, seen := p.Fields[key]; !seen {
			p.Keys = append(p.Keys, key)
		}
		p.Fields[key] = value
	}
	// closing brace
	if _, err := dec.Token(); err != nil {
		return Payload{}, errMalformedBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Payload{}, errMalformedBody
	}
	return p, nil
}
