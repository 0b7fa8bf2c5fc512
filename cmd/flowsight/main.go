// Command flowsight indexes a C project, runs FlowSight's analysis
// passes, and prints the reconstructed execution-flow trees as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/flowsight/flowsight/async"
	"github.com/flowsight/flowsight/cparser"
	"github.com/flowsight/flowsight/flow"
	"github.com/flowsight/flowsight/index"
	"github.com/flowsight/flowsight/kb"
	"github.com/flowsight/flowsight/model"
	"github.com/flowsight/flowsight/ops"
)

func main() {
	root := flag.String("path", ".", "project root to index and analyze")
	kbPath := flag.String("kb", "", "optional knowledge base overlay file (YAML or JSON)")
	flag.Parse()

	knowledge := kb.BuiltIn()
	if *kbPath != "" {
		overlay, err := kb.Load(*kbPath)
		if err != nil {
			log.Fatalf("loading knowledge base %s: %v", *kbPath, err)
		}
		knowledge.Merge(overlay)
	}

	cfg := index.DefaultConfig()
	ix := index.NewIndexer(*root, cfg, cparser.New(), nil)

	idx, err := ix.IndexAll(context.Background())
	if err != nil {
		log.Fatalf("indexing %s: %v", *root, err)
	}

	bindings := runAnalysisPasses(idx)

	edges := flow.BuildCallEdges(idx.Functions, bindings)
	builder := flow.NewBuilder(idx.Functions, edges, bindings, knowledge)
	forest := builder.BuildForest()

	encoded, err := json.MarshalIndent(forest, "", "  ")
	if err != nil {
		log.Fatalf("encoding flow trees: %v", err)
	}
	fmt.Println(string(encoded))
}

// runAnalysisPasses layers the async-binding and ops-table passes over
// every indexed file's raw source, mutating idx.Functions in place (they
// mark handler functions as callbacks) and returns the combined async
// bindings the call-graph builder needs.
func runAnalysisPasses(idx *index.SymbolIndex) []model.AsyncBinding {
	tracker := async.NewTracker()
	resolver := ops.NewResolver()

	var bindings []model.AsyncBinding
	for path := range idx.FileResults {
		data, err := os.ReadFile(path)
		if err != nil {
			log.Printf("skipping %s: %v", path, err)
			continue
		}
		source := string(data)
		bindings = append(bindings, tracker.Analyze(source, path, idx.Functions)...)
		resolver.AnalyzeOpsTables(source, idx.Functions)
	}
	return bindings
}
