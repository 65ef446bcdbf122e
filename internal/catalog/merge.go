package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roomportal/backend/internal/storage/models"
)

// Merge produces the effective property list from the static catalog and
// the live documents.
//
// Static entries are visited in order; an entry whose id has a live document
// is replaced by that document wholesale, otherwise the static entry is kept.
// Live documents with no static counterpart follow in their given order. If
// live holds the same id twice, the later document wins. The result is
// stable-sorted by address using Spanish collation.
//
// Merge does not modify its inputs.
func Merge(static []models.Property, live []models.Property) []models.Property {
	byID := make(map[string]models.Property, len(live))
	var order []string
	for _, p := range live {
		if _, seen := byID[p.ID]; !seen {
			order = append(order, p.ID)
		}
		byID[p.ID] = p
	}

	merged := make([]models.Property, 0, len(static)+len(byID))
	handled := make(map[string]bool, len(byID))
	emitted := make(map[string]bool, len(static))

	for _, s := range static {
		if emitted[s.ID] {
			continue
		}
		emitted[s.ID] = true

		if l, ok := byID[s.ID]; ok {
			merged = append(merged, l)
			handled[s.ID] = true
			continue
		}
		merged = append(merged, s)
	}

	for _, id := range order {
		if handled[id] || emitted[id] {
			continue
		}
		merged = append(merged, byID[id])
	}

	SortByAddress(merged)
	return merged
}

// SortByAddress stable-sorts props by address, ascending, with Spanish collation.
func SortByAddress(props []models.Property) {
	// Collators keep internal buffers and are not safe for concurrent use.
	col := collate.New(language.Spanish)
	sort.SliceStable(props, func(i, j int) bool {
		return col.CompareString(props[i].Address, props[j].Address) < 0
	})
}
