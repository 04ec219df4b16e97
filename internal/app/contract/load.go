package contract

import (
	"bytes"
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const maxRefHops = 64

var httpMethods = map[string]bool{
	"get":     true,
	"put":     true,
	"post":    true,
	"delete":  true,
	"options": true,
	"head":    true,
	"patch":   true,
	"trace":   true,
}

// Parse reads an OpenAPI document (YAML or JSON) into a PathTable. Local
// $refs are replaced by the value they point to, so every schema in the
// table is a plain nested value.
func Parse(data []byte) (*PathTable, error) {
	// Tab indented JSON is not valid YAML, compacting it is.
	if json.Valid(data) {
		var compact bytes.Buffer
		if err := json.Compact(&compact, data); err == nil {
			data = compact.Bytes()
		}
	}

	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.Wrap(err, "unable to parse contract")
	}
	if document.Kind != yaml.DocumentNode || len(document.Content) == 0 {
		return nil, errors.New("unable to parse contract, document is empty")
	}

	r := &resolver{root: document.Content[0]}
	root, err := r.mapping(r.root, "contract")
	if err != nil {
		return nil, err
	}

	pathsNode, ok := lookup(root, "paths")
	if !ok {
		return nil, errors.New("unable to parse contract, no paths defined")
	}
	paths, err := r.mapping(pathsNode, "paths")
	if err != nil {
		return nil, err
	}

	table := &PathTable{}
	for i := 0; i+1 < len(paths.Content); i += 2 {
		template := paths.Content[i].Value
		item, err := r.mapping(paths.Content[i+1], "path "+template)
		if err != nil {
			return nil, err
		}

		var operations []*Operation
		for j := 0; j+1 < len(item.Content); j += 2 {
			method := strings.ToLower(item.Content[j].Value)
			if !httpMethods[method] {
				continue
			}
			operation, err := r.operation(method, item.Content[j+1])
			if err != nil {
				return nil, errors.Wrapf(err, "unable to parse operation %s %s", method, template)
			}
			operations = append(operations, operation)
		}
		table.Items = append(table.Items, NewPathItem(template, operations...))
	}

	return table, nil
}

type resolver struct {
	root *yaml.Node
}

func (r *resolver) operation(method string, n *yaml.Node) (*Operation, error) {
	node, err := r.mapping(n, "operation")
	if err != nil {
		return nil, err
	}

	operation := &Operation{Method: method}

	if requestBody, ok := lookup(node, "requestBody"); ok {
		body, err := r.mapping(requestBody, "requestBody")
		if err != nil {
			return nil, err
		}
		content, err := r.content(body)
		if err != nil {
			return nil, errors.Wrap(err, "requestBody")
		}
		operation.RequestBody = &RequestBody{Content: content}
	}

	if responsesNode, ok := lookup(node, "responses"); ok {
		responses, err := r.mapping(responsesNode, "responses")
		if err != nil {
			return nil, err
		}
		for i := 0; i+1 < len(responses.Content); i += 2 {
			status := responses.Content[i].Value
			response, err := r.mapping(responses.Content[i+1], "response "+status)
			if err != nil {
				return nil, err
			}
			content, err := r.content(response)
			if err != nil {
				return nil, errors.Wrapf(err, "response %s", status)
			}
			operation.Responses = append(operation.Responses, &Response{Status: status, Content: content})
		}
	}

	return operation, nil
}

func (r *resolver) content(parent *yaml.Node) ([]*MediaType, error) {
	contentNode, ok := lookup(parent, "content")
	if !ok {
		return nil, nil
	}
	content, err := r.mapping(contentNode, "content")
	if err != nil {
		return nil, err
	}

	var result []*MediaType
	for i := 0; i+1 < len(content.Content); i += 2 {
		contentType := content.Content[i].Value
		mediaType, err := r.mapping(content.Content[i+1], "content "+contentType)
		if err != nil {
			return nil, err
		}

		mt := &MediaType{ContentType: contentType}
		if schemaNode, ok := lookup(mediaType, "schema"); ok {
			mt.Schema, err = r.value(schemaNode, nil)
			if err != nil {
				return nil, errors.Wrapf(err, "schema for %s", contentType)
			}
		}
		result = append(result, mt)
	}
	return result, nil
}

// mapping follows aliases and $refs until it reaches a node that is not a
// reference, which must be a mapping.
func (r *resolver) mapping(n *yaml.Node, what string) (*yaml.Node, error) {
	for hops := 0; ; hops++ {
		if hops > maxRefHops {
			return nil, errors.Errorf("too many $ref hops resolving %s", what)
		}
		switch n.Kind {
		case yaml.AliasNode:
			n = n.Alias
			continue
		case yaml.MappingNode:
			ref, ok := refOf(n)
			if !ok {
				return n, nil
			}
			target, err := r.pointer(ref)
			if err != nil {
				return nil, err
			}
			n = target
			continue
		}
		return nil, errors.Errorf("%s is not a mapping", what)
	}
}

// value converts a node to plain Go values, inlining every $ref on the way.
// refs holds the chain of references currently being expanded.
func (r *resolver) value(n *yaml.Node, refs []string) (interface{}, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return r.value(n.Alias, refs)
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return r.value(n.Content[0], refs)
	case yaml.SequenceNode:
		values := make([]interface{}, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := r.value(c, refs)
			if err != nil {
				return nil, err
			}
			values = append(values, v)
		}
		return values, nil
	case yaml.MappingNode:
		if ref, ok := refOf(n); ok {
			for _, seen := range refs {
				if seen == ref {
					return nil, errors.Errorf("recursive $ref %q is not supported", ref)
				}
			}
			target, err := r.pointer(ref)
			if err != nil {
				return nil, err
			}
			return r.value(target, append(refs, ref))
		}
		values := make(map[string]interface{}, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := r.value(n.Content[i+1], refs)
			if err != nil {
				return nil, err
			}
			values[n.Content[i].Value] = v
		}
		return values, nil
	default:
		var v interface{}
		if err := n.Decode(&v); err != nil {
			return nil, errors.Wrapf(err, "unable to decode value at line %d", n.Line)
		}
		return v, nil
	}
}

// pointer resolves a local reference such as "#/components/schemas/User".
func (r *resolver) pointer(ref string) (*yaml.Node, error) {
	if !strings.HasPrefix(ref, "#") {
		return nil, errors.Errorf("unsupported external $ref %q", ref)
	}
	fragment, err := url.PathUnescape(ref[1:])
	if err != nil {
		return nil, errors.Wrapf(err, "invalid $ref %q", ref)
	}

	current := r.root
	if fragment == "" {
		return current, nil
	}
	if !strings.HasPrefix(fragment, "/") {
		return nil, errors.Errorf("invalid $ref %q", ref)
	}

	for _, token := range strings.Split(fragment[1:], "/") {
		token = strings.ReplaceAll(strings.ReplaceAll(token, "~1", "/"), "~0", "~")
		for current.Kind == yaml.AliasNode {
			current = current.Alias
		}

		var next *yaml.Node
		switch current.Kind {
		case yaml.MappingNode:
			next, _ = lookup(current, token)
		case yaml.SequenceNode:
			if index, err := strconv.Atoi(token); err == nil && index >= 0 && index < len(current.Content) {
				next = current.Content[index]
			}
		}
		if next == nil {
			return nil, errors.Errorf("unable to resolve $ref %q", ref)
		}
		current = next
	}
	return current, nil
}

func refOf(n *yaml.Node) (string, bool) {
	ref, ok := lookup(n, "$ref")
	if !ok || ref.Kind != yaml.ScalarNode {
		return "", false
	}
	return ref.Value, true
}

func lookup(n *yaml.Node, key string) (*yaml.Node, bool) {
	if n.Kind != yaml.MappingNode {
		return nil, false
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1], true
		}
	}
	return nil, false
}
