package duplicates

import "slices"

// PlanEntry is the set of page indices queued for removal from one archive.
type PlanEntry struct {
	Path    string
	Indices []int
}

// Plan accumulates page removals approved during review.
type Plan struct {
	order   []string
	pending map[string][]int
}

// NewPlan returns an empty plan.
func NewPlan() *Plan {
	return &Plan{pending: make(map[string][]int)}
}

// Approve queues the rows of one duplicate group. Each archive contributes
// only its first row of the group; an archive already in the plan has the
// index appended to its existing list.
func (p *Plan) Approve(rows []Row) {
	if p.pending == nil {
		p.pending = make(map[string][]int)
	}
	seen := make(map[string]struct{})
	for _, r := range rows {
		if _, ok := seen[r.Path]; ok {
			continue
		}
		seen[r.Path] = struct{}{}

		indices, queued := p.pending[r.Path]
		if !queued {
			p.order = append(p.order, r.Path)
		}
		if !slices.Contains(indices, r.Index) {
			indices = append(indices, r.Index)
		}
		p.pending[r.Path] = indices
	}
}

// Entries returns the queued removals in the order archives were first
// approved.
func (p *Plan) Entries() []PlanEntry {
	entries := make([]PlanEntry, 0, len(p.order))
	for _, path := range p.order {
		entries = append(entries, PlanEntry{Path: path, Indices: slices.Clone(p.pending[path])})
	}
	return entries
}

// Len returns the number of archives in the plan.
func (p *Plan) Len() int { return len(p.order) }

// Pages returns the total number of queued page removals.
func (p *Plan) Pages() int {
	total := 0
	for _, indices := range p.pending {
		total += len(indices)
	}
	return total
}
