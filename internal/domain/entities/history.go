package entities

// HistoryItem snapshots one completed search: the query, the assembled
// response and the citations collected while streaming it.
type HistoryItem struct {
	ID          string              `json:"id"`
	Timestamp   int64               `json:"timestamp"`
	Disease     string              `json:"disease"`
	DoctorName  string              `json:"doctorName,omitempty"`
	PatientName string              `json:"patientName,omitempty"`
	Response    *SuggestionResponse `json:"response"`
	Sources     []GroundingSource   `json:"sources"`
}

// Clone returns an independent copy of the history item, including its
// response snapshot.
func (h *HistoryItem) Clone() *HistoryItem {
	if h == nil {
		return nil
	}
	dup := *h
	dup.Response = h.Response.Clone()
	dup.Sources = append([]GroundingSource(nil), h.Sources...)
	return &dup
}
