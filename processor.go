package metasprite

import (
	"fmt"
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
)

// Processor consumes meta layers naming its action.
type Processor interface {
	Action() string
	// Order sorts processors; lower runs first.
	Order() int
	Process(ctx *ImportContext, layer *Layer) error
}

// PivotFrame is the pivot of a group from Frame onwards.
type PivotFrame struct {
	Frame int
	// Pivot is in texture pixels with the origin at the bottom-left.
	Pivot Vec2
	// Relative is Pivot divided by the canvas size.
	Relative Vec2
}

// ImportContext carries the parsed file and the data processors produce.
// The File itself is never modified.
type ImportContext struct {
	File     *File
	Settings *ImportSettings
	Logger   zerolog.Logger

	Clips  map[string]*Clip        // by tag name
	Pivots map[string][]PivotFrame // by group path, one entry per frame
}

// NewImportContext builds the clips of f and logs duplicate tag names. A nil
// settings uses the defaults.
func NewImportContext(f *File, settings *ImportSettings, logger zerolog.Logger) *ImportContext {
	if settings == nil {
		settings = DefaultSettings()
	}
	for _, tag := range f.DuplicateTags() {
		logger.Warn().Str("tag", tag.Name).Int("from", tag.From).Int("to", tag.To).
			Msg("duplicate frame tag name, only the first tag gets a clip")
	}
	return &ImportContext{
		File:     f,
		Settings: settings,
		Logger:   logger,
		Clips:    BuildClips(f),
		Pivots:   make(map[string][]PivotFrame),
	}
}

// Registry maps action names to processors.
type Registry struct {
	processors map[string]Processor
	actions    []string
}

// NewRegistry registers ps. Two processors with the same action are an error.
func NewRegistry(ps ...Processor) (*Registry, error) {
	r := &Registry{processors: make(map[string]Processor, len(ps))}
	for _, p := range ps {
		name := p.Action()
		if other, dup := r.processors[name]; dup {
			return nil, fmt.Errorf("duplicate processor for action %q: %T and %T", name, other, p)
		}
		r.processors[name] = p
		r.actions = append(r.actions, name)
	}
	sort.Strings(r.actions)
	return r, nil
}

// Lookup returns the processor registered for action.
func (r *Registry) Lookup(action string) (Processor, bool) {
	p, ok := r.processors[action]
	return p, ok
}

// Actions returns the registered action names, sorted.
func (r *Registry) Actions() []string {
	return append([]string(nil), r.actions...)
}

// Suggest returns the registered action closest to action, or "".
func (r *Registry) Suggest(action string) string {
	if ranks := fuzzy.RankFindFold(action, r.actions); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", 3
	for _, name := range r.actions {
		if d := fuzzy.LevenshteinDistance(action, name); d < bestDist {
			best, bestDist = name, d
		}
	}
	return best
}

type pendingLayer struct {
	layer     *Layer
	processor Processor
}

// Run invokes the processor of every meta layer. Layers are visited in
// reverse declaration order, then stably sorted by processor order. Layers
// without a processor are logged and skipped.
func (r *Registry) Run(ctx *ImportContext) error {
	metas := ctx.File.MetaLayersInOrder()
	pending := make([]pendingLayer, 0, len(metas))
	for i := len(metas) - 1; i >= 0; i-- {
		layer := metas[i]
		p, ok := r.processors[layer.Action]
		if !ok {
			ev := ctx.Logger.Warn().Str("layer", layer.Name).Str("action", layer.Action)
			if s := r.Suggest(layer.Action); s != "" {
				ev = ev.Str("suggestion", s)
			}
			ev.Msg("no processor for meta layer")
			continue
		}
		pending = append(pending, pendingLayer{layer: layer, processor: p})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].processor.Order() < pending[j].processor.Order()
	})

	for _, it := range pending {
		ctx.Logger.Debug().Str("layer", it.layer.Name).Str("path", it.layer.Path()).Msg("processing meta layer")
		if err := it.processor.Process(ctx, it.layer); err != nil {
			return fmt.Errorf("meta layer %q: %w", it.layer.Name, err)
		}
	}
	return nil
}
