package worksheets

import (
	"net/url"

	"github.com/JaimeStill/worksheet-lab/pkg/query"
	"go.mongodb.org/mongo-driver/bson"
)

// Wildcard is the filter value that matches every record.
const Wildcard = "All"

// Filters contains optional equality criteria for listing worksheets.
type Filters struct {
	Category *string
	Grade    *string
}

// FiltersFromQuery extracts filters from URL query parameters. The subject
// parameter is an alias for category; category wins when both are set.
// Empty values and Wildcard leave a field unfiltered.
func FiltersFromQuery(values url.Values) Filters {
	category := filterValue(values.Get("category"))
	if category == nil {
		category = filterValue(values.Get("subject"))
	}
	return Filters{
		Category: category,
		Grade:    filterValue(values.Get("grade")),
	}
}

// Apply adds filter conditions to the query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereText("Category", f.Category).
		WhereText("Grade", f.Grade)
}

// BSON returns the filters as a MongoDB query document.
func (f Filters) BSON() bson.M {
	m := bson.M{}
	if f.Category != nil {
		m["category"] = *f.Category
	}
	if f.Grade != nil {
		m["grade"] = *f.Grade
	}
	return m
}

func filterValue(v string) *string {
	if v == "" || v == Wildcard {
		return nil
	}
	return &v
}
