// Package output renders a workspace snapshot for the terminal in the
// formats accepted by the scan command.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/services/workspace"
	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
	"github.com/temirov/sitemapper/internal/utils"
)

const (
	indentPrefix = ""
	indentSpacer = "  "

	treeBranchConnector = "├── "
	treeLastConnector   = "└── "
	treeBranchPadding   = "│   "
	treeLastPadding     = "    "

	rawHeaderFormat  = "--- %s: %s ---\n"
	rawSummaryFormat = "Summary: %d %s, %d %s%s\n"
	scannedAtFormat  = " (scanned %s)"
	scannedAtLayout  = "2006-01-02 15:04"
	emptyTreeLine    = "(no web files found)"

	glyphFolder = "[dir]"
	glyphOther  = "[file]"

	errorUnsupportedOutputFormat = "unsupported output format %q (expected raw, json, xml or table)"
)

// glyphsByExtension maps file suffixes to the marker printed before their label.
var glyphsByExtension = map[string]string{
	".html": "[html]",
	".css":  "[css]",
	".js":   "[js]",
}

// Render writes snapshot to writer in the named format.
func Render(writer io.Writer, format string, snapshot *workspace.Snapshot) error {
	if snapshot == nil {
		snapshot = &workspace.Snapshot{Nodes: []*sitetree.TreeNode{}}
	}
	switch strings.ToLower(strings.TrimSpace(format)) {
	case types.FormatRaw, utils.EmptyString:
		return WriteTreeRaw(writer, snapshot)
	case types.FormatJSON:
		rendered, err := RenderJSON(snapshot)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(writer, rendered)
		return err
	case types.FormatXML:
		rendered, err := RenderXML(snapshot.Nodes)
		if err != nil {
			return err
		}
		_, err = io.WriteString(writer, rendered)
		return err
	case types.FormatTable:
		WriteTable(writer, snapshot.Nodes)
		return nil
	default:
		return fmt.Errorf(errorUnsupportedOutputFormat, format)
	}
}

// Glyph returns the marker shown before a node in the raw tree.
func Glyph(node *sitetree.TreeNode) string {
	if node.IsFolder() {
		return glyphFolder
	}
	if glyph, known := glyphsByExtension[strings.ToLower(filepath.Ext(node.Label))]; known {
		return glyph
	}
	return glyphOther
}

type countedTree struct {
	folders int
	files   int
}

func countKinds(nodes []*sitetree.TreeNode) countedTree {
	var counted countedTree
	_ = sitetree.Traverse(nodes, sitetree.Visitor{Enter: func(node *sitetree.TreeNode, _ int) error {
		if node.IsFolder() {
			counted.folders++
		} else {
			counted.files++
		}
		return nil
	}})
	return counted
}

func pluralize(count int, singular string, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// scannedAt renders the build time of a snapshot in the local zone, or
// nothing for a snapshot that was never built.
func scannedAt(builtAt time.Time) string {
	if builtAt.IsZero() {
		return ""
	}
	return fmt.Sprintf(scannedAtFormat, builtAt.In(time.Local).Format(scannedAtLayout))
}

type rawFrame struct {
	node   *sitetree.TreeNode
	prefix string
	isLast bool
}

// WriteTreeRaw prints the snapshot as an indented tree with box-drawing connectors.
func WriteTreeRaw(writer io.Writer, snapshot *workspace.Snapshot) error {
	var buffer bytes.Buffer
	fmt.Fprintf(&buffer, rawHeaderFormat, types.DocumentTitle, snapshot.RootPath)
	counted := countKinds(snapshot.Nodes)
	fmt.Fprintf(&buffer, rawSummaryFormat,
		counted.folders, pluralize(counted.folders, "folder", "folders"),
		counted.files, pluralize(counted.files, "file", "files"),
		scannedAt(snapshot.BuiltAt))
	if len(snapshot.Nodes) == 0 {
		buffer.WriteString(emptyTreeLine + "\n")
	}

	stack := make([]rawFrame, 0, len(snapshot.Nodes))
	for nodeIndex := len(snapshot.Nodes) - 1; nodeIndex >= 0; nodeIndex-- {
		stack = append(stack, rawFrame{node: snapshot.Nodes[nodeIndex], isLast: nodeIndex == len(snapshot.Nodes)-1})
	}
	for len(stack) > 0 {
		lastIndex := len(stack) - 1
		frame := stack[lastIndex]
		stack = stack[:lastIndex]

		connector := treeBranchConnector
		childPrefix := frame.prefix + treeBranchPadding
		if frame.isLast {
			connector = treeLastConnector
			childPrefix = frame.prefix + treeLastPadding
		}
		fmt.Fprintf(&buffer, "%s%s%s %s\n", frame.prefix, connector, Glyph(frame.node), frame.node.Label)

		children := frame.node.Children
		for childIndex := len(children) - 1; childIndex >= 0; childIndex-- {
			stack = append(stack, rawFrame{node: children[childIndex], prefix: childPrefix, isLast: childIndex == len(children)-1})
		}
	}
	_, err := writer.Write(buffer.Bytes())
	return err
}

type jsonDocument struct {
	RootPath   string               `json:"rootPath"`
	SnapshotID string               `json:"snapshotId,omitempty"`
	Generation uint64               `json:"generation"`
	NodeCount  int                  `json:"nodeCount"`
	Nodes      []*sitetree.TreeNode `json:"nodes"`
}

// RenderJSON marshals the snapshot with its tree to indented JSON.
func RenderJSON(snapshot *workspace.Snapshot) (string, error) {
	nodes := snapshot.Nodes
	if nodes == nil {
		nodes = []*sitetree.TreeNode{}
	}
	encoded, err := json.MarshalIndent(jsonDocument{
		RootPath:   snapshot.RootPath,
		SnapshotID: snapshot.ID,
		Generation: snapshot.Generation,
		NodeCount:  sitetree.CountNodes(nodes),
		Nodes:      nodes,
	}, indentPrefix, indentSpacer)
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// RenderXML renders nodes with the same markup written by the xml export.
func RenderXML(nodes []*sitetree.TreeNode) (string, error) {
	var buffer bytes.Buffer
	if err := (export.MarkupSerializer{}).Serialize(nodes, &buffer); err != nil {
		return "", err
	}
	return buffer.String(), nil
}
