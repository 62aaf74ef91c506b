package export_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/sitetree"
)

func stripPaths(nodes []*sitetree.TreeNode) []*sitetree.TreeNode {
	stripped := sitetree.Clone(nodes)
	_ = sitetree.Traverse(stripped, sitetree.Visitor{Enter: func(node *sitetree.TreeNode, depth int) error {
		node.FullPath = ""
		return nil
	}})
	return stripped
}

func TestMarkupSerializerOutput(t *testing.T) {
	nodes := []*sitetree.TreeNode{
		{Label: "assets", Kind: sitetree.KindFolder, Children: []*sitetree.TreeNode{
			{Label: "a&b.js", Kind: sitetree.KindFile, Children: []*sitetree.TreeNode{}},
		}},
		{Label: "index.html", Kind: sitetree.KindFile, Children: []*sitetree.TreeNode{}},
	}
	var buffer bytes.Buffer

	require.NoError(t, export.MarkupSerializer{}.Serialize(nodes, &buffer))

	expected := strings.Join([]string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<siteStructure>`,
		`  <node label="assets" kind="folder">`,
		`    <node label="a&amp;b.js" kind="file"></node>`,
		`  </node>`,
		`  <node label="index.html" kind="file"></node>`,
		`</siteStructure>`,
		``,
	}, "\n")
	require.Equal(t, expected, buffer.String())
}

func TestMarkupRoundTripRestoresLabelsAndShape(t *testing.T) {
	nodes := buildSampleTree(t)
	var buffer bytes.Buffer
	require.NoError(t, export.MarkupSerializer{}.Serialize(nodes, &buffer))

	parsed, err := export.ParseMarkup(&buffer)

	require.NoError(t, err)
	require.Equal(t, stripPaths(nodes), parsed)
}

func TestParseMarkupInfersFolderWithoutKindAttribute(t *testing.T) {
	document := `<?xml version="1.0"?>
<siteStructure>
  <node label="pages">
    <node label="about.html"/>
  </node>
  <node label="empty"/>
</siteStructure>`

	parsed, err := export.ParseMarkup(strings.NewReader(document))

	require.NoError(t, err)
	require.Len(t, parsed, 2)
	require.Equal(t, sitetree.KindFolder, parsed[0].Kind)
	require.Equal(t, "about.html", parsed[0].Children[0].Label)
	require.Equal(t, sitetree.KindFile, parsed[0].Children[0].Kind)
	require.Equal(t, sitetree.KindFile, parsed[1].Kind)
}

func TestParseMarkupRejectsForeignDocuments(t *testing.T) {
	_, err := export.ParseMarkup(strings.NewReader(`<other><node label="x"/></other>`))
	require.Error(t, err)

	_, err = export.ParseMarkup(strings.NewReader(`<siteStructure><node label="x">`))
	require.Error(t, err)
}
