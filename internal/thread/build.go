package thread

import (
	"log"
	"sort"
)

// SortByDate orders records by Date ascending, in place. The sort is stable:
// records with equal dates keep their relative input order, so output is
// deterministic given deterministic input. Zero dates sort first.
func SortByDate(records []*MessageRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date.Before(records[j].Date)
	})
}

// BuildForest builds the reply forest for one conversation's worth of
// records and returns its roots, each subtree reachable via Children.
// Callers pre-group records with GroupByThread.
//
// Placement is a single pass over an id index: a record whose ParentID is
// present in the index becomes that parent's child, everything else becomes
// a root. There is no transitive ancestry walk, so reference cycles cannot
// produce infinite structures and every record lands in exactly one children
// list or the root set. A self-referencing ParentID counts as
// parent-not-found. BuildForest never fails on malformed input.
func BuildForest(records []*MessageRecord) []*MessageRecord {
	byID := make(map[string]*MessageRecord, len(records))
	for _, r := range records {
		if r.ID == "" {
			continue
		}
		if earlier, ok := byID[r.ID]; ok && earlier != r {
			log.Printf("Warning: duplicate Message-ID %q; later message replaces the earlier one as a reply target", r.ID)
		}
		byID[r.ID] = r
	}

	for _, r := range records {
		r.Children = nil
	}

	var roots []*MessageRecord
	for _, r := range records {
		parent, ok := byID[r.ParentID]
		if r.ParentID != "" && r.ParentID != r.ID && ok {
			parent.Children = append(parent.Children, r)
		} else {
			roots = append(roots, r)
		}
	}

	for _, r := range records {
		SortByDate(r.Children)
	}
	SortByDate(roots)

	return roots
}
