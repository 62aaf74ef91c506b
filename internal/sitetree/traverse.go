package sitetree

// Visitor receives nodes during Traverse. Either callback may be nil.
// Returning an error from a callback stops the traversal.
type Visitor struct {
	Enter func(node *TreeNode, depth int) error
	Leave func(node *TreeNode, depth int) error
}

type traversalFrame struct {
	node    *TreeNode
	depth   int
	leaving bool
}

// Traverse walks nodes depth-first in pre-order. Top-level nodes have depth 0.
// Leave is called for a node after all of its descendants were entered and left.
func Traverse(nodes []*TreeNode, visitor Visitor) error {
	stack := make([]traversalFrame, 0, len(nodes))
	for nodeIndex := len(nodes) - 1; nodeIndex >= 0; nodeIndex-- {
		stack = append(stack, traversalFrame{node: nodes[nodeIndex]})
	}
	for len(stack) > 0 {
		lastIndex := len(stack) - 1
		frame := stack[lastIndex]
		stack = stack[:lastIndex]
		if frame.node == nil {
			continue
		}
		if frame.leaving {
			if visitor.Leave != nil {
				if err := visitor.Leave(frame.node, frame.depth); err != nil {
					return err
				}
			}
			continue
		}
		if visitor.Enter != nil {
			if err := visitor.Enter(frame.node, frame.depth); err != nil {
				return err
			}
		}
		stack = append(stack, traversalFrame{node: frame.node, depth: frame.depth, leaving: true})
		for childIndex := len(frame.node.Children) - 1; childIndex >= 0; childIndex-- {
			stack = append(stack, traversalFrame{node: frame.node.Children[childIndex], depth: frame.depth + 1})
		}
	}
	return nil
}

// CountNodes returns the number of folders and files in nodes, descendants included.
func CountNodes(nodes []*TreeNode) int {
	count := 0
	_ = Traverse(nodes, Visitor{Enter: func(*TreeNode, int) error {
		count++
		return nil
	}})
	return count
}

// Clone returns a deep copy of nodes that shares no memory with the input.
func Clone(nodes []*TreeNode) []*TreeNode {
	type clonePair struct {
		source      *TreeNode
		destination *TreeNode
	}
	cloned := make([]*TreeNode, 0, len(nodes))
	var pending []clonePair
	for _, node := range nodes {
		if node == nil {
			continue
		}
		copied := &TreeNode{Label: node.Label, FullPath: node.FullPath, Kind: node.Kind}
		cloned = append(cloned, copied)
		pending = append(pending, clonePair{source: node, destination: copied})
	}
	for len(pending) > 0 {
		lastIndex := len(pending) - 1
		pair := pending[lastIndex]
		pending = pending[:lastIndex]
		pair.destination.Children = make([]*TreeNode, 0, len(pair.source.Children))
		for _, child := range pair.source.Children {
			if child == nil {
				continue
			}
			copied := &TreeNode{Label: child.Label, FullPath: child.FullPath, Kind: child.Kind}
			pair.destination.Children = append(pair.destination.Children, copied)
			pending = append(pending, clonePair{source: child, destination: copied})
		}
	}
	return cloned
}
