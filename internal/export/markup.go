package export

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"github.com/temirov/sitemapper/internal/sitetree"
)

const (
	markupRootElement    = "siteStructure"
	markupNodeElement    = "node"
	markupLabelAttribute = "label"
	markupKindAttribute  = "kind"
	markupIndent         = "  "

	errorDecodeMarkupFormat = "decoding markup: %w"
	errorMissingRootFormat  = "decoding markup: missing <%s> root element"
)

// MarkupSerializer writes the tree as an indented XML document rooted at <siteStructure>
// with one nested <node label="..." kind="..."> element per tree node.
type MarkupSerializer struct{}

// Serialize implements Serializer.
func (MarkupSerializer) Serialize(nodes []*sitetree.TreeNode, writer io.Writer) error {
	if _, err := io.WriteString(writer, xml.Header); err != nil {
		return err
	}
	encoder := xml.NewEncoder(writer)
	encoder.Indent("", markupIndent)

	rootElement := xml.StartElement{Name: xml.Name{Local: markupRootElement}}
	if err := encoder.EncodeToken(rootElement); err != nil {
		return err
	}
	nodeName := xml.Name{Local: markupNodeElement}
	traverseError := sitetree.Traverse(nodes, sitetree.Visitor{
		Enter: func(node *sitetree.TreeNode, depth int) error {
			return encoder.EncodeToken(xml.StartElement{
				Name: nodeName,
				Attr: []xml.Attr{
					{Name: xml.Name{Local: markupLabelAttribute}, Value: node.Label},
					{Name: xml.Name{Local: markupKindAttribute}, Value: string(node.Kind)},
				},
			})
		},
		Leave: func(node *sitetree.TreeNode, depth int) error {
			return encoder.EncodeToken(xml.EndElement{Name: nodeName})
		},
	})
	if traverseError != nil {
		return traverseError
	}
	if err := encoder.EncodeToken(rootElement.End()); err != nil {
		return err
	}
	if err := encoder.Flush(); err != nil {
		return err
	}
	_, err := io.WriteString(writer, "\n")
	return err
}

// ParseMarkup reads a markup export back into a tree. Labels and shape are
// restored; full paths are not part of the markup and stay empty. Elements
// without a kind attribute become folders when they have children.
func ParseMarkup(reader io.Reader) ([]*sitetree.TreeNode, error) {
	decoder := xml.NewDecoder(reader)
	roots := []*sitetree.TreeNode{}
	var openNodes []*sitetree.TreeNode
	var kindDeclared []bool
	sawRoot := false

	for {
		token, tokenError := decoder.Token()
		if errors.Is(tokenError, io.EOF) {
			break
		}
		if tokenError != nil {
			return nil, fmt.Errorf(errorDecodeMarkupFormat, tokenError)
		}
		switch typedToken := token.(type) {
		case xml.StartElement:
			switch typedToken.Name.Local {
			case markupRootElement:
				sawRoot = true
			case markupNodeElement:
				node := &sitetree.TreeNode{Kind: sitetree.KindFile, Children: []*sitetree.TreeNode{}}
				declared := false
				for _, attribute := range typedToken.Attr {
					switch attribute.Name.Local {
					case markupLabelAttribute:
						node.Label = attribute.Value
					case markupKindAttribute:
						node.Kind = sitetree.Kind(attribute.Value)
						declared = true
					}
				}
				if len(openNodes) == 0 {
					roots = append(roots, node)
				} else {
					parentIndex := len(openNodes) - 1
					parent := openNodes[parentIndex]
					parent.Children = append(parent.Children, node)
					if !kindDeclared[parentIndex] {
						parent.Kind = sitetree.KindFolder
					}
				}
				openNodes = append(openNodes, node)
				kindDeclared = append(kindDeclared, declared)
			}
		case xml.EndElement:
			if typedToken.Name.Local == markupNodeElement && len(openNodes) > 0 {
				openNodes = openNodes[:len(openNodes)-1]
				kindDeclared = kindDeclared[:len(kindDeclared)-1]
			}
		}
	}

	if !sawRoot {
		return nil, fmt.Errorf(errorMissingRootFormat, markupRootElement)
	}
	return roots, nil
}
