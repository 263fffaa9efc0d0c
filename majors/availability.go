package majors

import "github.com/transferai/agreement-proxy/assist"

// Availability reports which agreement categories exist for a fully
// selected (sending, receiving, year) context.
type Availability struct {
	Majors      bool `json:"majors"`
	Departments bool `json:"departments"`
}

// Has reports whether the given category has any agreements
func (a Availability) Has(category assist.Category) bool {
	switch category {
	case assist.CategoryMajor:
		return a.Majors
	case assist.CategoryDept:
		return a.Departments
	}
	return false
}

// Switch returns the category the caller should use instead of current.
// When the current category has no agreements but the other one does, the
// other category is returned with true; otherwise current is returned
// unchanged with false.
func (a Availability) Switch(current assist.Category) (assist.Category, bool) {
	if a.Has(current) || !a.Has(current.Other()) {
		return current, false
	}
	return current.Other(), true
}

// Empty reports that neither category has agreements
func (a Availability) Empty() bool {
	return !a.Majors && !a.Departments
}
