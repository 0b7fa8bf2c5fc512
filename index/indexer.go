package index

import (
	"context"
	"os"
	"sort"
	"sync"

	"github.com/flowsight/flowsight/cparser"
	"github.com/flowsight/flowsight/model"
	"golang.org/x/sync/errgroup"
)

// ProgressPhase names one stage of the indexing pipeline. Deliberately
// English (not the project's Chinese originals) since FlowSight's
// reporting surface is English throughout.
type ProgressPhase string

const (
	PhaseScanning      ProgressPhase = "Scanning"
	PhaseParsing       ProgressPhase = "Parsing"
	PhaseAnalyzing     ProgressPhase = "Analyzing"
	PhaseIndexing      ProgressPhase = "Indexing"
	PhaseBuildingGraph ProgressPhase = "BuildingGraph"
	PhaseComplete      ProgressPhase = "Complete"
)

// ProgressEvent reports one step of indexing progress.
type ProgressEvent struct {
	Phase       ProgressPhase
	Current     int
	Total       int
	Message     string
	CurrentFile string
}

// SymbolIndex is the merged result of indexing a project: every file's
// parsed content plus the flattened, project-wide function/struct tables.
type SymbolIndex struct {
	Files       map[string]FileVersion
	FileResults map[string]*model.ParseResult
	Functions   map[string]*model.FunctionDef
	Structs     map[string]*model.StructDef
}

// Indexer scans, parses, and merges a project's source files, optionally
// reusing cached per-file results across incremental runs.
type Indexer struct {
	root     string
	cfg      Config
	scanner  *Scanner
	tracker  *FileTracker
	cache    *TreeCache
	parser   cparser.Parser
	progress chan<- ProgressEvent

	mu   sync.Mutex
	last *SymbolIndex
}

// NewIndexer returns an Indexer rooted at root. progress may be nil; sends
// to it are always best-effort and never block indexing.
func NewIndexer(root string, cfg Config, parser cparser.Parser, progress chan<- ProgressEvent) *Indexer {
	return &Indexer{
		root:     root,
		cfg:      cfg,
		scanner:  NewScanner(cfg),
		tracker:  NewFileTracker(),
		cache:    NewTreeCache(256),
		parser:   parser,
		progress: progress,
	}
}

// IndexAll performs a full, from-scratch index of the project.
func (ix *Indexer) IndexAll(ctx context.Context) (*SymbolIndex, error) {
	idx, err := ix.indexFiles(ctx, nil)
	if err != nil {
		return nil, err
	}
	ix.mu.Lock()
	ix.last = idx
	ix.mu.Unlock()
	return idx, nil
}

// IndexChanged reindexes only files whose content changed since the last
// IndexAll/IndexChanged call, reusing the previous run's parsed result for
// every unchanged file. Calling it with no filesystem changes since the
// last run yields a SymbolIndex value-equal to that run's result.
func (ix *Indexer) IndexChanged(ctx context.Context) (*SymbolIndex, error) {
	ix.mu.Lock()
	reuse := map[string]*model.ParseResult{}
	if ix.last != nil {
		for k, v := range ix.last.FileResults {
			reuse[k] = v
		}
	}
	ix.mu.Unlock()

	idx, err := ix.indexFiles(ctx, reuse)
	if err != nil {
		return nil, err
	}
	ix.mu.Lock()
	ix.last = idx
	ix.mu.Unlock()
	return idx, nil
}

func (ix *Indexer) indexFiles(ctx context.Context, reuse map[string]*model.ParseResult) (*SymbolIndex, error) {
	files, err := ix.scanner.Scan(ix.root)
	if err != nil {
		return nil, err
	}
	ix.emit(ProgressEvent{Phase: PhaseScanning, Total: len(files)})

	idx := &SymbolIndex{
		Files:       map[string]FileVersion{},
		FileResults: map[string]*model.ParseResult{},
		Functions:   map[string]*model.FunctionDef{},
		Structs:     map[string]*model.StructDef{},
	}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, ix.cfg.Parallelism)
	total := len(files)

	for i, path := range files {
		path, pos := path, i
		g.Go(func() error {
			select {
			case sem <- struct{}{}:
			case <-gctx.Done():
				return gctx.Err()
			}
			defer func() { <-sem }()

			result, version, err := ix.parseOne(path, reuse)
			if err != nil {
				return err
			}

			mu.Lock()
			idx.Files[path] = version
			idx.FileResults[path] = result
			mu.Unlock()

			ix.emit(ProgressEvent{Phase: PhaseParsing, Current: pos + 1, Total: total, CurrentFile: path})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ix.emit(ProgressEvent{Phase: PhaseIndexing, Total: total})
	mergeResults(idx)
	ix.emit(ProgressEvent{Phase: PhaseComplete, Total: total})
	return idx, nil
}

func (ix *Indexer) parseOne(path string, reuse map[string]*model.ParseResult) (*model.ParseResult, FileVersion, error) {
	version, changed, err := ix.tracker.Scan(path)
	if err != nil {
		return nil, FileVersion{}, err
	}

	if !changed {
		if cached, ok := reuse[path]; ok {
			return cached, version, nil
		}
	}
	if cached, ok := ix.cache.Get(version.Hash); ok {
		return cached, version, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FileVersion{}, err
	}
	result, err := ix.parser.Parse(data, path)
	if err != nil {
		return nil, FileVersion{}, err
	}
	ix.cache.Put(version.Hash, result)
	return result, version, nil
}

func mergeResults(idx *SymbolIndex) {
	paths := make([]string, 0, len(idx.FileResults))
	for p := range idx.FileResults {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		r := idx.FileResults[p]
		for name, fn := range r.Functions {
			idx.Functions[name] = fn
		}
		for name, st := range r.Structs {
			idx.Structs[name] = st
		}
	}
}

func (ix *Indexer) emit(e ProgressEvent) {
	if ix.progress == nil {
		return
	}
	select {
	case ix.progress <- e:
	default:
	}
}
