package domain

// Category labels tickets. Names are unique; deletion is blocked while
// any ticket references the category.
type Category struct {
	ID          string
	Name        string
	Description string
}
