package doctree

import (
	"fmt"
	"log/slog"
)

// ResolveScope turns a scope into the concrete root nodes to traverse.
//
// Selection is the host's snapshot, unaltered. Page is the active
// page's immediate children. Document is every page's children, with
// unmaterialized pages skipped (logged, not fatal) so the result is a
// best-effort document-wide list.
func ResolveScope(host Host, scope Scope) ([]Node, error) {
	switch scope {
	case ScopeSelection:
		return host.Selection(), nil
	case ScopePage:
		page, ok := host.CurrentPage()
		if !ok {
			return nil, fmt.Errorf("no active page")
		}
		children, ok := page.Children()
		if !ok {
			return nil, fmt.Errorf("active page %q is not materialized", page.Name())
		}
		return children, nil
	case ScopeDocument:
		var roots []Node
		for _, page := range host.Pages() {
			children, ok := page.Children()
			if !ok {
				slog.Debug("skipping unmaterialized page", "page", page.Name())
				continue
			}
			roots = append(roots, children...)
		}
		return roots, nil
	default:
		return nil, fmt.Errorf("unknown scope %q", scope)
	}
}

// CollectTextElements gathers every text element reachable from roots
// in depth-first pre-order. Locked nodes are excluded along with their
// entire subtrees; unmaterialized subtrees are skipped. The traversal
// uses an explicit stack so deeply nested trees cannot exhaust the
// call stack. Pure read, no side effects.
func CollectTextElements(roots []Node) []TextElement {
	var elements []TextElement

	// Push in reverse so pops come off in natural sibling order.
	stack := make([]Node, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if node == nil || node.Locked() {
			continue
		}
		if el, ok := node.(TextElement); ok {
			elements = append(elements, el)
			continue
		}
		children, ok := node.Children()
		if !ok {
			continue
		}
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
	return elements
}
