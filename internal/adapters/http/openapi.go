package http

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
)

//go:embed openapi.yaml
var openapiSpec []byte

// Spec returns the raw OpenAPI document served at /openapi.yaml.
func Spec() []byte {
	return openapiSpec
}

// validator checks request bodies against the embedded document.
type validator struct {
	doc *openapi3.T
}

func newValidator() (*validator, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(openapiSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}
	if err := doc.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI spec: %w", err)
	}
	return &validator{doc: doc}, nil
}

// validate checks r against the operation documented for path and
// r.Method. The body is left readable for the handler.
func (v *validator) validate(r *http.Request, path string) error {
	item := v.doc.Paths.Value(path)
	if item == nil {
		return fmt.Errorf("no documented path %s", path)
	}
	op := item.GetOperation(r.Method)
	if op == nil {
		return fmt.Errorf("no documented operation %s %s", r.Method, path)
	}
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	return openapi3filter.ValidateRequest(r.Context(), &openapi3filter.RequestValidationInput{
		Request: r,
		Route: &routers.Route{
			Spec:      v.doc,
			Path:      path,
			PathItem:  item,
			Method:    r.Method,
			Operation: op,
		},
		Options: &openapi3filter.Options{MultiError: false},
	})
}
