package graph

import "github.com/nervalabs/routecore/internal/handler"

// Constants holds the tunable costs enumerated in spec §6.
type Constants struct {
	DepthCost                 float64
	DefaultCategoryChangeCost float64
	LossyCostMultiplier       float64
	HandlerPriorityCost       float64
	FormatPriorityCost        float64
}

// DefaultConstants returns the shipped tunable defaults.
func DefaultConstants() Constants {
	return Constants{
		DepthCost:                 1,
		DefaultCategoryChangeCost: 0.6,
		LossyCostMultiplier:       1.4,
		HandlerPriorityCost:       0.2,
		FormatPriorityCost:        0.05,
	}
}

// DefaultCategoryChangeTable returns the shipped category-change cost table
// (spec §4.4).
func DefaultCategoryChangeTable() []CategoryChangeEntry {
	return []CategoryChangeEntry{
		{From: "image", To: "video", Cost: 0.2},
		{From: "video", To: "image", Cost: 0.4},
		{From: "image", To: "audio", Handler: "ffmpeg", Cost: 100},
		{From: "audio", To: "image", Handler: "ffmpeg", Cost: 100},
		{From: "text", To: "audio", Handler: "ffmpeg", Cost: 100},
		{From: "audio", To: "text", Handler: "ffmpeg", Cost: 100},
		{From: "image", To: "audio", Cost: 1.4},
		{From: "audio", To: "image", Cost: 1.0},
		{From: "video", To: "audio", Cost: 1.4},
		{From: "audio", To: "video", Cost: 1.0},
		{From: "text", To: "image", Cost: 0.5},
		{From: "image", To: "text", Cost: 0.5},
		{From: "text", To: "audio", Cost: 0.6},
	}
}

// DefaultAdaptiveTable returns the shipped category-adaptive cost table
// (spec §4.4).
func DefaultAdaptiveTable() []CategoryAdaptiveEntry {
	return []CategoryAdaptiveEntry{
		{Categories: []string{"text", "image", "audio"}, Cost: 15},
		{Categories: []string{"image", "video", "audio"}, Cost: 10000},
		{Categories: []string{"audio", "video", "image"}, Cost: 10000},
	}
}

// CostTables bundles the mutable category-change and category-adaptive
// tables. Mutations are idempotent and do not retroactively re-cost an
// already-built graph; callers must rebuild.
type CostTables struct {
	changes  []CategoryChangeEntry
	adaptive []CategoryAdaptiveEntry
}

// NewCostTables returns tables seeded with the shipped defaults.
func NewCostTables() *CostTables {
	return &CostTables{
		changes:  DefaultCategoryChangeTable(),
		adaptive: DefaultAdaptiveTable(),
	}
}

// Changes returns a copy of the current category-change table.
func (t *CostTables) Changes() []CategoryChangeEntry {
	out := make([]CategoryChangeEntry, len(t.changes))
	copy(out, t.changes)
	return out
}

// Adaptive returns a copy of the current category-adaptive table.
func (t *CostTables) Adaptive() []CategoryAdaptiveEntry {
	out := make([]CategoryAdaptiveEntry, len(t.adaptive))
	copy(out, t.adaptive)
	return out
}

func (t *CostTables) changeIndex(from, to, h string) int {
	for i, e := range t.changes {
		if e.From == from && e.To == to && e.Handler == h {
			return i
		}
	}
	return -1
}

// HasCategoryChangeCost reports whether an entry with this exact key exists.
func (t *CostTables) HasCategoryChangeCost(from, to, h string) bool {
	return t.changeIndex(from, to, h) >= 0
}

// AddCategoryChangeCost inserts a new entry if one with this key does not
// already exist. Idempotent: calling it again with the same key is a no-op.
func (t *CostTables) AddCategoryChangeCost(from, to, h string, cost float64) {
	if t.HasCategoryChangeCost(from, to, h) {
		return
	}
	t.changes = append(t.changes, CategoryChangeEntry{From: from, To: to, Handler: h, Cost: cost})
}

// UpdateCategoryChangeCost updates the cost of an existing entry. Returns
// false if no entry with this key exists.
func (t *CostTables) UpdateCategoryChangeCost(from, to, h string, cost float64) bool {
	i := t.changeIndex(from, to, h)
	if i < 0 {
		return false
	}
	t.changes[i].Cost = cost
	return true
}

// RemoveCategoryChangeCost deletes the matching entry. Idempotent: removing
// a nonexistent entry is a no-op and returns false.
func (t *CostTables) RemoveCategoryChangeCost(from, to, h string) bool {
	i := t.changeIndex(from, to, h)
	if i < 0 {
		return false
	}
	t.changes = append(t.changes[:i], t.changes[i+1:]...)
	return true
}

func (t *CostTables) adaptiveIndex(seq []string) int {
	for i, e := range t.adaptive {
		if sameSequence(e.Categories, seq) {
			return i
		}
	}
	return -1
}

// HasCategoryAdaptiveCost reports whether an entry for this exact sequence
// exists.
func (t *CostTables) HasCategoryAdaptiveCost(seq []string) bool {
	return t.adaptiveIndex(seq) >= 0
}

// AddCategoryAdaptiveCost inserts a new adaptive entry if this sequence is
// not already present.
func (t *CostTables) AddCategoryAdaptiveCost(seq []string, cost float64) {
	if t.HasCategoryAdaptiveCost(seq) {
		return
	}
	t.adaptive = append(t.adaptive, CategoryAdaptiveEntry{Categories: cloneStrings(seq), Cost: cost})
}

// UpdateCategoryAdaptiveCost updates the cost of an existing adaptive entry.
func (t *CostTables) UpdateCategoryAdaptiveCost(seq []string, cost float64) bool {
	i := t.adaptiveIndex(seq)
	if i < 0 {
		return false
	}
	t.adaptive[i].Cost = cost
	return true
}

// RemoveCategoryAdaptiveCost deletes the matching adaptive entry.
func (t *CostTables) RemoveCategoryAdaptiveCost(seq []string) bool {
	i := t.adaptiveIndex(seq)
	if i < 0 {
		return false
	}
	t.adaptive = append(t.adaptive[:i], t.adaptive[i+1:]...)
	return true
}

// handlerPairKey identifies a (from,to) category pair.
type handlerPairKey struct{ from, to string }

// buildHandlerPairs pre-builds a (fromCat,toCat) → handlerName table from
// the handler-specific entries of the category-change table (spec §4.4).
func buildHandlerPairs(table []CategoryChangeEntry) map[handlerPairKey]string {
	out := make(map[handlerPairKey]string)
	for _, e := range table {
		if e.Handler == "" {
			continue
		}
		out[handlerPairKey{e.From, e.To}] = e.Handler
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if contains(b, x) {
			return true
		}
	}
	return false
}

// categoryChangeCost computes the category-change component of an edge's
// cost, per spec §4.4's strict/lenient rules.
func categoryChangeCost(fromCats, toCats []string, h string, strict bool, table []CategoryChangeEntry, defaultCost float64) float64 {
	fromEmpty := len(fromCats) == 0
	toEmpty := len(toCats) == 0

	if fromEmpty && toEmpty {
		return 0
	}
	if fromEmpty != toEmpty {
		return defaultCost
	}

	if strict {
		var sum float64
		for _, e := range table {
			match := contains(fromCats, e.From) && contains(toCats, e.To) && (e.Handler == "" || e.Handler == h)
			if match {
				sum += e.Cost
			} else {
				sum += defaultCost
			}
		}
		return sum
	}

	if intersects(fromCats, toCats) {
		return 0
	}

	handlerPairs := buildHandlerPairs(table)
	var best float64
	haveCandidate := false
	for _, e := range table {
		if !contains(fromCats, e.From) || !contains(toCats, e.To) {
			continue
		}
		eligible := false
		switch {
		case e.Handler == h:
			eligible = true
		case e.Handler == "":
			if handlerPairs[handlerPairKey{e.From, e.To}] != h {
				eligible = true
			}
		}
		if !eligible {
			continue
		}
		if !haveCandidate || e.Cost < best {
			best = e.Cost
			haveCandidate = true
		}
	}
	if haveCandidate {
		return best
	}
	return defaultCost
}

// formatPosition returns the index of t within formats, matched by
// (Extension, Internal, MIME, Format), or -1 if not found.
func formatPosition(formats []handler.FormatDescriptor, t handler.FormatDescriptor) int {
	for i, f := range formats {
		if f.Extension == t.Extension && f.Internal == t.Internal && f.MIME == t.MIME && f.Format == t.Format {
			return i
		}
	}
	return -1
}

// edgeCost computes an edge's total cost per spec §4.4: base depth cost,
// category-change component, handler-position penalty, format-position
// penalty, then the lossy multiplier, applied in that order.
func edgeCost(
	from, to handler.FormatDescriptor,
	handlerName string,
	hIdx int,
	handlerFormats []handler.FormatDescriptor,
	strict bool,
	table []CategoryChangeEntry,
	c Constants,
) float64 {
	cost := c.DepthCost

	cost += categoryChangeCost(from.Category, to.Category, handlerName, strict, table, c.DefaultCategoryChangeCost)

	cost += c.HandlerPriorityCost * float64(hIdx)

	pos := formatPosition(handlerFormats, to)
	if pos < 0 {
		pos = 0
	}
	cost += c.FormatPriorityCost * float64(pos)

	if !to.Lossless {
		cost *= c.LossyCostMultiplier
	}

	return cost
}
