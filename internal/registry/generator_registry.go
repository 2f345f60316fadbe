package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mmrzaf/datalchemy/internal/assets"
	"github.com/mmrzaf/datalchemy/internal/generators"
)

// GeneratorRegistry maps generator and transform ids to implementations.
type GeneratorRegistry struct {
	mu         sync.RWMutex
	generators map[string]generators.Generator
	transforms map[string]generators.Transform
}

func NewGeneratorRegistry() *GeneratorRegistry {
	return &GeneratorRegistry{
		generators: make(map[string]generators.Generator),
		transforms: make(map[string]generators.Transform),
	}
}

func (r *GeneratorRegistry) Register(gen generators.Generator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generators[gen.ID()] = gen
}

func (r *GeneratorRegistry) RegisterTransform(t generators.Transform) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transforms[t.ID()] = t
}

func (r *GeneratorRegistry) Get(id string) (generators.Generator, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen, ok := r.generators[id]
	if !ok {
		return nil, fmt.Errorf("generator not found: %s", id)
	}
	return gen, nil
}

func (r *GeneratorRegistry) GetTransform(id string) (generators.Transform, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.transforms[id]
	if !ok {
		return nil, fmt.Errorf("transform not found: %s", id)
	}
	return t, nil
}

// List returns generator ids in sorted order.
func (r *GeneratorRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.generators))
	for id := range r.generators {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (r *GeneratorRegistry) ListTransforms() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.transforms))
	for id := range r.transforms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Info describes a registered generator or transform for listings.
type Info struct {
	ID      string                 `json:"id"`
	Kind    string                 `json:"kind"`
	Params  []generators.ParamSpec `json:"params"`
	PIITags []string               `json:"pii_tags,omitempty"`
}

// Describe lists generators then transforms, each sorted by id.
func (r *GeneratorRegistry) Describe() []Info {
	out := make([]Info, 0)
	for _, id := range r.List() {
		gen, err := r.Get(id)
		if err != nil {
			continue
		}
		info := Info{ID: id, Kind: "generator", Params: gen.Params()}
		if tagger, ok := gen.(generators.PIITagger); ok {
			info.PIITags = tagger.PIITags()
		}
		out = append(out, info)
	}
	for _, id := range r.ListTransforms() {
		t, err := r.GetTransform(id)
		if err != nil {
			continue
		}
		out = append(out, Info{ID: id, Kind: "transform", Params: t.Params()})
	}
	return out
}

// DefaultGeneratorRegistry registers the built-in catalogue.
func DefaultGeneratorRegistry(loader *assets.Loader) *GeneratorRegistry {
	r := NewGeneratorRegistry()
	for _, gen := range generators.Catalogue(loader) {
		r.Register(gen)
	}
	for _, t := range generators.Transforms() {
		r.RegisterTransform(t)
	}
	return r
}
