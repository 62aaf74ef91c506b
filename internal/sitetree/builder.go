package sitetree

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/temirov/sitemapper/internal/types"
	"github.com/temirov/sitemapper/internal/utils"
)

const (
	// errorRootStatFormat is reported when the root exists but cannot be inspected.
	errorRootStatFormat = "inspecting root %s: %w"
	// errorReadDirectoryFormat is reported when a directory listing fails.
	errorReadDirectoryFormat = "reading directory %s: %w"
)

// Builder walks a root directory and produces the web file tree.
// The zero value scans the OS filesystem for the default extensions.
type Builder struct {
	FileSystem     afero.Fs
	Extensions     []string
	IgnorePatterns []string
	Warn           func(path string, err error)
}

// NewBuilder returns a Builder reading from fileSystem.
func NewBuilder(fileSystem afero.Fs) *Builder {
	return &Builder{FileSystem: fileSystem}
}

// DefaultExtensions returns a fresh copy of the suffixes scanned when none are configured.
func DefaultExtensions() []string {
	return append([]string(nil), types.DefaultWebExtensions...)
}

type pendingDirectory struct {
	path   string
	node   *TreeNode
	parent *TreeNode
}

// Build scans rootPath and returns its top-level nodes.
// A missing or empty root yields an empty result.
func (builder *Builder) Build(rootPath string) []*TreeNode {
	nodes, _ := builder.BuildContext(context.Background(), rootPath)
	return nodes
}

// BuildContext scans rootPath like Build and stops early when ctx is cancelled.
// Directories are processed from an explicit work-list, so hierarchy depth
// does not grow the call stack. A subdirectory whose listing fails is dropped
// from its parent and reported through Warn.
func (builder *Builder) BuildContext(ctx context.Context, rootPath string) ([]*TreeNode, error) {
	if strings.TrimSpace(rootPath) == "" {
		return []*TreeNode{}, nil
	}
	fileSystem := builder.fileSystem()
	cleanRootPath := filepath.Clean(rootPath)

	rootInfo, rootStatError := fileSystem.Stat(cleanRootPath)
	if rootStatError != nil {
		if !os.IsNotExist(rootStatError) {
			builder.warn(cleanRootPath, fmt.Errorf(errorRootStatFormat, cleanRootPath, rootStatError))
		}
		return []*TreeNode{}, nil
	}
	if !rootInfo.IsDir() {
		return []*TreeNode{}, nil
	}

	extensions := builder.Extensions
	if len(extensions) == 0 {
		extensions = DefaultExtensions()
	}

	rootHolder := &TreeNode{FullPath: cleanRootPath, Kind: KindFolder, Children: []*TreeNode{}}
	workList := []pendingDirectory{{path: cleanRootPath, node: rootHolder}}
	for len(workList) > 0 {
		if contextError := ctx.Err(); contextError != nil {
			return nil, contextError
		}
		lastIndex := len(workList) - 1
		current := workList[lastIndex]
		workList = workList[:lastIndex]

		directoryEntries, readDirectoryError := afero.ReadDir(fileSystem, current.path)
		if readDirectoryError != nil {
			builder.warn(current.path, fmt.Errorf(errorReadDirectoryFormat, current.path, readDirectoryError))
			if current.parent != nil {
				current.parent.removeChild(current.node)
			}
			continue
		}

		for _, directoryEntry := range directoryEntries {
			childPath := filepath.Join(current.path, directoryEntry.Name())
			if len(builder.IgnorePatterns) > 0 && utils.ShouldIgnoreByPath(utils.RelativePathOrSelf(childPath, cleanRootPath), builder.IgnorePatterns) {
				continue
			}
			switch {
			case directoryEntry.IsDir():
				folderNode := &TreeNode{
					Label:    directoryEntry.Name(),
					FullPath: childPath,
					Kind:     KindFolder,
					Children: []*TreeNode{},
				}
				current.node.Children = append(current.node.Children, folderNode)
				workList = append(workList, pendingDirectory{path: childPath, node: folderNode, parent: current.node})
			case directoryEntry.Mode().IsRegular() && hasWebExtension(directoryEntry.Name(), extensions):
				current.node.Children = append(current.node.Children, &TreeNode{
					Label:    directoryEntry.Name(),
					FullPath: childPath,
					Kind:     KindFile,
					Children: []*TreeNode{},
				})
			}
		}
	}

	return rootHolder.Children, nil
}

func (builder *Builder) fileSystem() afero.Fs {
	if builder.FileSystem == nil {
		return afero.NewOsFs()
	}
	return builder.FileSystem
}

func (builder *Builder) warn(path string, err error) {
	if builder.Warn != nil {
		builder.Warn(path, err)
	}
}

// hasWebExtension performs a case-sensitive suffix match.
func hasWebExtension(fileName string, extensions []string) bool {
	for _, extension := range extensions {
		if extension != "" && strings.HasSuffix(fileName, extension) {
			return true
		}
	}
	return false
}
