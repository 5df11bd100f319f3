package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/erazemk/pivoteka/web"
)

// DocsHandler serves the OpenAPI document and the documentation chooser page.
type DocsHandler struct {
	specJSON []byte
}

// NewDocsHandler loads and validates the embedded OpenAPI document.
func NewDocsHandler() (*DocsHandler, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(web.OpenAPISpec())
	if err != nil {
		return nil, fmt.Errorf("loading openapi document: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("validating openapi document: %w", err)
	}

	specJSON, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshaling openapi document: %w", err)
	}

	return &DocsHandler{specJSON: specJSON}, nil
}

// Root handles GET / by redirecting to the documentation chooser.
func (h *DocsHandler) Root(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/docs", http.StatusFound)
}

// Index handles GET /docs with a page linking the documentation renderers.
func (h *DocsHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.DocsPage())
}

// Spec handles GET /openapi.json.
func (h *DocsHandler) Spec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write(h.specJSON)
}
