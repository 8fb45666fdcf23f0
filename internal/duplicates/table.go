package duplicates

// Row is one fingerprinted page.
type Row struct {
	Path  string
	Index int
	Hash  string
}

// Stats summarizes a Table.
type Stats struct {
	Comics          int // archives handed to the collector
	Pages           int // pages fingerprinted
	DuplicatePages  int // pages whose fingerprint occurs more than once
	DuplicateHashes int // distinct fingerprints occurring more than once
}

// Table is the flat list of fingerprinted pages from one scan.
type Table struct {
	rows   []Row
	counts map[string]int
	comics int
}

// NewTable returns a table holding rows.
func NewTable(rows ...Row) *Table {
	t := &Table{counts: make(map[string]int)}
	for _, r := range rows {
		t.Add(r)
	}
	return t
}

// Add appends one row.
func (t *Table) Add(r Row) {
	if t.counts == nil {
		t.counts = make(map[string]int)
	}
	t.rows = append(t.rows, r)
	t.counts[r.Hash]++
}

// Rows returns every row in insertion order.
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// DistinctHashes returns each fingerprint shared by two or more rows, in the
// order its first row was added.
func (t *Table) DistinctHashes() []string {
	seen := make(map[string]struct{})
	var hashes []string
	for _, r := range t.rows {
		if t.counts[r.Hash] < 2 {
			continue
		}
		if _, ok := seen[r.Hash]; ok {
			continue
		}
		seen[r.Hash] = struct{}{}
		hashes = append(hashes, r.Hash)
	}
	return hashes
}

// Group returns the rows carrying hash, in insertion order.
func (t *Table) Group(hash string) []Row {
	var group []Row
	for _, r := range t.rows {
		if r.Hash == hash {
			group = append(group, r)
		}
	}
	return group
}

// Stats summarizes the table.
func (t *Table) Stats() Stats {
	s := Stats{Comics: t.comics, Pages: len(t.rows)}
	for _, r := range t.rows {
		if t.counts[r.Hash] > 1 {
			s.DuplicatePages++
		}
	}
	s.DuplicateHashes = len(t.DistinctHashes())
	return s
}
