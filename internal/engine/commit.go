package engine

import (
	"slices"

	"github.com/roach88/reelsync/internal/ir"
)

// ResolveIndex turns a selector into the index sent to the server.
//
// A key is looked up against refs by the label field, falling back to 0
// when absent; a key without refs cannot be resolved and reports false.
// Any index below 0, or past the end of refs when refs are given, becomes 0.
func ResolveIndex(sel ir.Selector, refs []ir.PendingAction) (int, bool) {
	index := sel.Index
	if sel.IsKey() {
		if refs == nil {
			return 0, false
		}
		index = max(slices.IndexFunc(refs, func(a ir.PendingAction) bool {
			return a != nil && a.Field(3) == sel.Key
		}), 0)
	}
	if index < 0 || (refs != nil && index >= len(refs)) {
		index = 0
	}
	return index, true
}
