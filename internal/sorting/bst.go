package sorting

import (
	"strings"

	"pondo/internal/core"
)

// nameTreeStrategy orders entries by case-insensitive name via a binary
// search tree: strictly-smaller names descend left, equal-or-greater descend
// right, so the in-order traversal is a stable ascending sort.
type nameTreeStrategy struct{}

type bstNode struct {
	entry core.Entry
	key   string
	left  *bstNode
	right *bstNode
}

func (nameTreeStrategy) Sort(entries []core.Entry) []core.Entry {
	if len(entries) == 0 {
		return []core.Entry{}
	}
	var root *bstNode
	for _, e := range entries {
		root = bstInsert(root, e)
	}
	out := make([]core.Entry, 0, len(entries))
	return bstInorder(root, out)
}

func bstInsert(node *bstNode, e core.Entry) *bstNode {
	if node == nil {
		return &bstNode{entry: e, key: strings.ToLower(e.Name)}
	}
	if strings.ToLower(e.Name) < node.key {
		node.left = bstInsert(node.left, e)
	} else {
		node.right = bstInsert(node.right, e)
	}
	return node
}

func bstInorder(node *bstNode, out []core.Entry) []core.Entry {
	if node == nil {
		return out
	}
	out = bstInorder(node.left, out)
	out = append(out, node.entry)
	return bstInorder(node.right, out)
}
