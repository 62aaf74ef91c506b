// Package sitetree builds and walks the tree of web files found under a workspace root.
package sitetree

import "github.com/temirov/sitemapper/internal/types"

// Kind distinguishes folders from files.
type Kind string

const (
	KindFolder Kind = types.NodeKindFolder
	KindFile   Kind = types.NodeKindFile
)

// TreeNode is one filesystem entry of a scanned hierarchy.
// File nodes never carry children.
type TreeNode struct {
	Label    string      `json:"label"`
	FullPath string      `json:"fullPath"`
	Kind     Kind        `json:"kind"`
	Children []*TreeNode `json:"children"`
}

// IsFolder reports whether the node represents a directory.
func (node *TreeNode) IsFolder() bool {
	return node.Kind == KindFolder
}

func (node *TreeNode) removeChild(child *TreeNode) {
	for childIndex, candidate := range node.Children {
		if candidate == child {
			node.Children = append(node.Children[:childIndex], node.Children[childIndex+1:]...)
			return
		}
	}
}
