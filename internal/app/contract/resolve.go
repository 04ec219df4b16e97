package contract

// Resolve finds the operation declared for an already normalized path.
// The path must equal a template exactly; the method is matched ignoring case.
func (t *PathTable) Resolve(path, method string) (*Operation, bool) {
	for _, item := range t.Items {
		if item.Template != path {
			continue
		}
		return item.operation(method)
	}
	return nil, false
}
