package contract

import (
	"mime"
	"strings"
)

const (
	MediaTypeJWT = "application/jwt"

	placeholderMarker = "{"
)

// PathTable is the flattened "paths" section of a contract, in declaration order.
// It is not modified after Parse returns.
type PathTable struct {
	Items []*PathItem
}

type PathItem struct {
	Template   string
	segments   []string
	Operations []*Operation
}

type Operation struct {
	Method      string
	RequestBody *RequestBody
	Responses   []*Response
}

type RequestBody struct {
	Content []*MediaType
}

type Response struct {
	Status  string
	Content []*MediaType
}

// MediaType is one content entry. Schema is nil when the contract declares none.
type MediaType struct {
	ContentType string
	Schema      interface{}
}

func NewPathItem(template string, operations ...*Operation) *PathItem {
	return &PathItem{
		Template:   template,
		segments:   splitSegments(template),
		Operations: operations,
	}
}

func (t *PathTable) Len() int {
	return len(t.Items)
}

func (p *PathItem) operation(method string) (*Operation, bool) {
	for _, op := range p.Operations {
		if strings.EqualFold(op.Method, method) {
			return op, true
		}
	}
	return nil, false
}

// RequestSchema returns the request body schema declared for contentType.
func (o *Operation) RequestSchema(contentType string) (interface{}, bool) {
	if o.RequestBody == nil {
		return nil, false
	}
	return schemaFor(o.RequestBody.Content, contentType)
}

// ResponseSchema returns the schema of the first response, in the order the
// contract lists them, that declares contentType. The search stops there even
// when that entry has no schema.
func (o *Operation) ResponseSchema(contentType string) (interface{}, bool) {
	for _, response := range o.Responses {
		if mt := mediaTypeFor(response.Content, contentType); mt != nil {
			return mt.Schema, mt.Schema != nil
		}
	}
	return nil, false
}

func schemaFor(content []*MediaType, contentType string) (interface{}, bool) {
	mt := mediaTypeFor(content, contentType)
	if mt == nil || mt.Schema == nil {
		return nil, false
	}
	return mt.Schema, true
}

func mediaTypeFor(content []*MediaType, contentType string) *MediaType {
	for _, mt := range content {
		if sameMediaType(mt.ContentType, contentType) {
			return mt
		}
	}
	return nil
}

func sameMediaType(a, b string) bool {
	return strings.EqualFold(baseMediaType(a), baseMediaType(b))
}

func baseMediaType(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.TrimSpace(contentType)
	}
	return mediaType
}

func isPlaceholder(segment string) bool {
	return strings.HasPrefix(segment, placeholderMarker)
}

func splitSegments(path string) []string {
	segments := make([]string, 0)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func joinSegments(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
