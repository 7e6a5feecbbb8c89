package domain

// Category is a named classification bucket within a family.
type Category struct {
	ID       string
	FamilyID string
	Name     string
}

// Tag is a free-form label within a family.
type Tag struct {
	ID       string
	FamilyID string
	Name     string
}
