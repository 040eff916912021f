package web

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/abgdnv/productcatalog/internal/platform/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONRequest(body string) *Request {
	r := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")
	return &Request{Request: r}
}

func Test_ParseBody(t *testing.T) {
	testCases := []struct {
		name            string
		body            string
		expectedKeys    []string
		expectedFields  map[string]any
		expectedMessage string
	}{
		{
			name:           "Success - keys keep document order",
			body:           `{"price": 10, "name": "Mug", "inStock": true, "extra": null}`,
			expectedKeys:   []string{"price", "name", "inStock", "extra"},
			expectedFields: map[string]any{"price": 10.0, "name": "Mug", "inStock": true, "extra": nil},
		},
		{
			name:           "Success - repeated key keeps first position and last value",
			body:           `{"name": "a", "price": 1, "name": "b"}`,
			expectedKeys:   []string{"name", "price"},
			expectedFields: map[string]any{"name": "b", "price": 1.0},
		},
		{
			name:           "Success - empty body",
			body:           "",
			expectedFields: map[string]any{},
		},
		{
			name:           "Success - nested values",
			body:           `{"tags": ["a", "b"], "meta": {"k": 1}}`,
			expectedKeys:   []string{"tags", "meta"},
			expectedFields: map[string]any{"tags": []any{"a", "b"}, "meta": map[string]any{"k": 1.0}},
		},
		{
			name:            "Error - malformed JSON",
			body:            `{"name": "Mug",`,
			expectedMessage: "Malformed JSON request body.",
		},
		{
			name:            "Error - trailing garbage",
			body:            `{"name": "Mug"} x`,
			expectedMessage: "Malformed JSON request body.",
		},
		{
			name:            "Error - array body",
			body:            `[1, 2]`,
			expectedMessage: "Request body must be a JSON object.",
		},
		{
			name:            "Error - scalar body",
			body:            `42`,
			expectedMessage: "Request body must be a JSON object.",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// given
			req := newJSONRequest(tc.body)

			// when
			err := ParseBody(DefaultMaxBodyBytes)(req)

			// then
			if tc.expectedMessage != "" {
				appErr, ok := apperr.As(err)
				require.True(t, ok, "error should be typed")
				assert.Equal(t, apperr.KindValidation, appErr.Kind())
				assert.Equal(t, tc.expectedMessage, appErr.Message())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expectedKeys, req.Payload.Keys)
			assert.Equal(t, tc.expectedFields, req.Payload.Fields)
		})
	}
}

func Test_ParseBody_TooLarge(t *testing.T) {
	req := newJSONRequest(`{"name": "` + strings.Repeat("x", 64) + `"}`)

	err := ParseBody(32)(req)

	appErr, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Request body too large.", appErr.Message())
}

func Test_ParseBody_NonJSONContentTypeIsIgnored(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`not json`))
	r.Header.Set("Content-Type", "text/plain")
	req := &Request{Request: r}

	err := ParseBody(DefaultMaxBodyBytes)(req)

	require.NoError(t, err)
	assert.Equal(t, 0, req.Payload.Len())
	assert.NotNil(t, req.Payload.Fields)
}

func Test_ParseBody_JSONSuffixContentType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"a": 1}`))
	r.Header.Set("Content-Type", "application/merge-patch+json; charset=utf-8")
	req := &Request{Request: r}

	require.NoError(t, ParseBody(DefaultMaxBodyBytes)(req))
	assert.True(t, req.Payload.Has("a"))
}

func Test_Payload_Accessors(t *testing.T) {
	p := Payload{Keys: []string{"name", "note"}, Fields: map[string]any{"name": "Mug", "note": nil}}

	v, ok := p.Get("name")
	assert.True(t, ok)
	assert.Equal(t, "Mug", v)
	assert.True(t, p.Has("note"), "null valued field should be present")
	assert.False(t, p.Has("price"))
	assert.Equal(t, 2, p.Len())
}
