package entities

// Formula represents a compounded-medication recipe suggested for a condition
type Formula struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Ingredients  []string `json:"ingredients"`
	Instructions string   `json:"instructions"`
	AverageValue string   `json:"averageValue,omitempty"`
}

// Clone returns an independent copy of the formula. Copies of the same
// logical formula are held by value in the current response, history
// snapshots and the saved list, so mutations must never travel through a
// shared slice.
func (f *Formula) Clone() *Formula {
	if f == nil {
		return nil
	}
	dup := *f
	dup.Ingredients = append([]string(nil), f.Ingredients...)
	return &dup
}

// GroundingSource is a citation backing an AI-generated claim
type GroundingSource struct {
	URI     string `json:"uri"`
	Title   string `json:"title"`
	Snippet string `json:"snippet,omitempty"`
}

// SuggestionResponse is the assembled result of one completed suggestion call
type SuggestionResponse struct {
	Summary  string     `json:"summary"`
	Formulas []*Formula `json:"formulas"`
}

// Clone returns an independent copy of the response and every formula in it.
func (r *SuggestionResponse) Clone() *SuggestionResponse {
	if r == nil {
		return nil
	}
	dup := &SuggestionResponse{Summary: r.Summary}
	for _, f := range r.Formulas {
		dup.Formulas = append(dup.Formulas, f.Clone())
	}
	return dup
}
