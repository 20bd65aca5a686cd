package entities

// Product represents a stock item a pharmacy can offer as a formula ingredient
type Product struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category,omitempty"`
}

// ProductInput is a candidate product before an id has been assigned,
// as produced by manual entry or CSV import.
type ProductInput struct {
	Name        string
	Description string
	Category    string
}
