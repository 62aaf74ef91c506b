// Package workspace owns the current site tree of one workspace root, rebuilds
// it on refresh and hands read-only copies to the host.
package workspace

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/sitemapper/internal/export"
	"github.com/temirov/sitemapper/internal/sitetree"
	"github.com/temirov/sitemapper/internal/types"
)

const (
	logMessageRefreshStarted  = "refresh started"
	logMessageRefreshFinished = "refresh finished"
	logMessageScanWarning     = "skipping entry"
)

// ErrNoSnapshot is returned by Export when no refresh has completed yet.
var ErrNoSnapshot = errors.New("workspace has not been scanned yet")

// Snapshot is the immutable result of one refresh.
type Snapshot struct {
	ID         string
	Generation uint64
	RootPath   string
	BuiltAt    time.Time
	Nodes      []*sitetree.TreeNode
}

// ChangeEvent is delivered to listeners after every refresh.
type ChangeEvent struct {
	SnapshotID string
	Generation uint64
	RootPath   string
	NodeCount  int
}

// Listener receives change notifications in generation order. Listeners run
// after the refresh lock is released, so a listener may call Refresh itself;
// the event of that nested refresh is delivered once the current one returns.
// A slow listener delays the return of the Refresh call that delivers to it.
type Listener func(ChangeEvent)

// Workspace is the single writer of a workspace's tree.
//
// Refreshes are queued: a refresh requested while another one runs waits for
// it and then performs its own complete walk. Readers never block on a
// refresh and always observe one complete tree.
type Workspace struct {
	rootPath string
	builder  *sitetree.Builder
	exporter *export.Exporter
	logger   *zap.Logger

	refreshMutex sync.Mutex
	current      atomic.Pointer[Snapshot]
	generation   uint64

	listenersMutex sync.RWMutex
	listeners      map[uint64]Listener
	nextListenerID uint64

	deliveryMutex sync.Mutex
	pendingEvents []ChangeEvent
	delivering    bool
}

// New creates a Workspace for rootPath. No scan happens until Refresh is called.
// The workspace keeps its own copy of builder; later changes to builder are not seen.
func New(rootPath string, builder *sitetree.Builder, exporter *export.Exporter, logger *zap.Logger) *Workspace {
	if logger == nil {
		logger = zap.NewNop()
	}
	var scanner sitetree.Builder
	if builder != nil {
		scanner = *builder
	}
	if scanner.Warn == nil {
		scanner.Warn = func(path string, err error) {
			logger.Warn(logMessageScanWarning, zap.String("path", path), zap.Error(err))
		}
	}
	if exporter == nil {
		exporter = export.NewExporter(logger)
	}
	return &Workspace{
		rootPath:  rootPath,
		builder:   &scanner,
		exporter:  exporter,
		logger:    logger,
		listeners: map[uint64]Listener{},
	}
}

// RootPath returns the directory the workspace scans.
func (workspace *Workspace) RootPath() string {
	return workspace.rootPath
}

// Refresh rebuilds the tree from scratch, publishes it and notifies listeners.
// When ctx is cancelled mid-scan the previous tree stays current.
func (workspace *Workspace) Refresh(ctx context.Context) (*Snapshot, error) {
	snapshot, err := workspace.rebuild(ctx)
	if err != nil {
		return nil, err
	}
	workspace.deliverPending()
	return workspace.copyOf(snapshot), nil
}

// rebuild publishes a new snapshot and queues its change event while holding
// the refresh lock, so events are queued in generation order.
func (workspace *Workspace) rebuild(ctx context.Context) (*Snapshot, error) {
	workspace.refreshMutex.Lock()
	defer workspace.refreshMutex.Unlock()

	refreshID := uuid.NewString()
	startedAt := time.Now()
	workspace.logger.Debug(logMessageRefreshStarted, zap.String("refresh", refreshID), zap.String("root", workspace.rootPath))

	nodes, buildError := workspace.builder.BuildContext(ctx, workspace.rootPath)
	if buildError != nil {
		return nil, buildError
	}

	workspace.generation++
	snapshot := &Snapshot{
		ID:         refreshID,
		Generation: workspace.generation,
		RootPath:   workspace.rootPath,
		BuiltAt:    time.Now(),
		Nodes:      nodes,
	}
	workspace.current.Store(snapshot)

	nodeCount := sitetree.CountNodes(nodes)
	workspace.logger.Debug(logMessageRefreshFinished,
		zap.String("refresh", refreshID),
		zap.Uint64("generation", snapshot.Generation),
		zap.Int("nodes", nodeCount),
		zap.Duration("elapsed", time.Since(startedAt)),
	)
	workspace.deliveryMutex.Lock()
	workspace.pendingEvents = append(workspace.pendingEvents, ChangeEvent{
		SnapshotID: refreshID,
		Generation: snapshot.Generation,
		RootPath:   workspace.rootPath,
		NodeCount:  nodeCount,
	})
	workspace.deliveryMutex.Unlock()
	return snapshot, nil
}

// deliverPending notifies listeners of queued events until the queue is empty.
// Only one goroutine delivers at a time; others leave their events to it.
func (workspace *Workspace) deliverPending() {
	workspace.deliveryMutex.Lock()
	if workspace.delivering {
		workspace.deliveryMutex.Unlock()
		return
	}
	workspace.delivering = true
	for len(workspace.pendingEvents) > 0 {
		event := workspace.pendingEvents[0]
		workspace.pendingEvents = workspace.pendingEvents[1:]
		workspace.deliveryMutex.Unlock()
		workspace.notify(event)
		workspace.deliveryMutex.Lock()
	}
	workspace.delivering = false
	workspace.deliveryMutex.Unlock()
}

// TreeSnapshot returns a deep copy of the current tree, or an empty tree
// before the first refresh. Callers may modify the result freely.
func (workspace *Workspace) TreeSnapshot() []*sitetree.TreeNode {
	snapshot := workspace.current.Load()
	if snapshot == nil {
		return []*sitetree.TreeNode{}
	}
	return sitetree.Clone(snapshot.Nodes)
}

// Snapshot returns a copy of the current snapshot with its metadata, or nil before the first refresh.
func (workspace *Workspace) Snapshot() *Snapshot {
	return workspace.copyOf(workspace.current.Load())
}

// ExportDirectory returns the default destination of exports, inside the root.
func (workspace *Workspace) ExportDirectory() string {
	return filepath.Join(workspace.rootPath, types.ExportDirectoryName)
}

// Export writes the current tree in format to destinationDirectory, or to
// ExportDirectory when destinationDirectory is empty.
// Exports read a private copy, so they may run alongside refreshes and each other.
func (workspace *Workspace) Export(ctx context.Context, format export.Format, destinationDirectory string) (string, error) {
	snapshot := workspace.current.Load()
	if snapshot == nil {
		return "", ErrNoSnapshot
	}
	if destinationDirectory == "" {
		destinationDirectory = workspace.ExportDirectory()
	}
	return workspace.exporter.Export(ctx, sitetree.Clone(snapshot.Nodes), format, destinationDirectory)
}

// ExportAll writes the current tree in every format concurrently.
func (workspace *Workspace) ExportAll(ctx context.Context, formats []export.Format, destinationDirectory string) ([]string, error) {
	snapshot := workspace.current.Load()
	if snapshot == nil {
		return nil, ErrNoSnapshot
	}
	if destinationDirectory == "" {
		destinationDirectory = workspace.ExportDirectory()
	}
	return workspace.exporter.ExportAll(ctx, sitetree.Clone(snapshot.Nodes), formats, destinationDirectory)
}

// Subscribe registers listener for change notifications and returns a function that removes it.
func (workspace *Workspace) Subscribe(listener Listener) func() {
	workspace.listenersMutex.Lock()
	defer workspace.listenersMutex.Unlock()
	workspace.nextListenerID++
	listenerID := workspace.nextListenerID
	workspace.listeners[listenerID] = listener
	return func() {
		workspace.listenersMutex.Lock()
		defer workspace.listenersMutex.Unlock()
		delete(workspace.listeners, listenerID)
	}
}

func (workspace *Workspace) notify(event ChangeEvent) {
	workspace.listenersMutex.RLock()
	listenerIDs := make([]uint64, 0, len(workspace.listeners))
	for listenerID := range workspace.listeners {
		listenerIDs = append(listenerIDs, listenerID)
	}
	sort.Slice(listenerIDs, func(left, right int) bool { return listenerIDs[left] < listenerIDs[right] })
	listeners := make([]Listener, 0, len(listenerIDs))
	for _, listenerID := range listenerIDs {
		listeners = append(listeners, workspace.listeners[listenerID])
	}
	workspace.listenersMutex.RUnlock()

	for _, listener := range listeners {
		listener(event)
	}
}

func (workspace *Workspace) copyOf(snapshot *Snapshot) *Snapshot {
	if snapshot == nil {
		return nil
	}
	copied := *snapshot
	copied.Nodes = sitetree.Clone(snapshot.Nodes)
	return &copied
}
