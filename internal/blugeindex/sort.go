package blugeindex

import (
	blugesearch "github.com/blugelabs/bluge/search"

	"github.com/nlstn/go-odata-search/internal/search"
)

// idField is the stored identifier field of every bluge document.
const idField = "_id"

// SortOrder converts sort criteria into a bluge sort order. Documents missing
// a field are placed according to the criterion's missing policy; ties are
// broken by document identifier. Bluge ignores sort fields absent from the
// index, which covers IgnoreUnmappedFields.
func SortOrder(criteria []search.SortCriterion) blugesearch.SortOrder {
	order := make(blugesearch.SortOrder, 0, len(criteria)+1)
	for _, c := range criteria {
		s := blugesearch.SortBy(blugesearch.Field(c.Field))
		if c.Direction == search.Descending {
			s = s.Desc()
		}
		// Missing values sort last unless asked otherwise.
		if c.Missing == search.MissingFirst {
			s = s.MissingFirst()
		}
		order = append(order, s)
	}
	return append(order, blugesearch.SortBy(blugesearch.Field(idField)))
}
