package web

import _ "embed"

//go:embed openapi.yaml
var openapiSpec []byte

//go:embed docs.html
var docsPage []byte

// OpenAPISpec returns the embedded OpenAPI document.
func OpenAPISpec() []byte {
	return openapiSpec
}

// DocsPage returns the embedded documentation chooser page.
func DocsPage() []byte {
	return docsPage
}
