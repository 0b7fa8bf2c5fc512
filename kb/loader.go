package kb

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads a knowledge-base overlay file (YAML or JSON, chosen by
// extension) and merges it on top of BuiltIn. A framework callback whose
// call chain has no user-entry node is dropped with a logged warning; any
// other malformed content makes the whole document fail to decode, and
// that error is returned with nothing from the file merged.
func Load(path string) (*KnowledgeBase, error) {
	base := BuiltIn()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	overlay := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(data, overlay); err != nil {
			return nil, err
		}
	default:
		if err := yaml.Unmarshal(data, overlay); err != nil {
			return nil, err
		}
	}

	validateAndMerge(base, overlay)
	return base, nil
}

// validateAndMerge merges overlay into base, dropping (and logging) any
// framework callback whose call chain has no user-entry node, since the
// flow builder depends on exactly one existing.
func validateAndMerge(base, overlay *KnowledgeBase) {
	for name, fw := range overlay.Frameworks {
		for cbName, cb := range fw.Callbacks {
			if cb.CallChain != nil && cb.CallChain.UserEntryIndex() < 0 {
				log.Printf("kb: dropping callback %s.%s: call chain has no user-entry node", name, cbName)
				delete(fw.Callbacks, cbName)
			}
		}
	}
	base.Merge(overlay)
}
