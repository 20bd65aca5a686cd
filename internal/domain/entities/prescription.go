package entities

import "strings"

// PrescribedItem is one line of a scanned prescription
type PrescribedItem struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage,omitempty"`
}

// PrescriptionData is the structured content extracted from a prescription scan
type PrescriptionData struct {
	DoctorName  string           `json:"doctorName"`
	PatientName string           `json:"patientName"`
	Date        string           `json:"date"`
	Items       []PrescribedItem `json:"items"`
}

// Fingerprint returns a deterministic key over doctor, patient, date and the
// serialized item list. Two saves with equal fingerprints are duplicates.
func (d *PrescriptionData) Fingerprint() string {
	var b strings.Builder
	b.WriteString(d.DoctorName)
	b.WriteByte('\x1f')
	b.WriteString(d.PatientName)
	b.WriteByte('\x1f')
	b.WriteString(d.Date)
	for _, item := range d.Items {
		b.WriteByte('\x1e')
		b.WriteString(item.Name)
		b.WriteByte('\x1f')
		b.WriteString(item.Dosage)
	}
	return b.String()
}

// SavedPrescription is a persisted prescription scan with its preview image
type SavedPrescription struct {
	ID              string            `json:"id"`
	Timestamp       int64             `json:"timestamp"`
	Data            *PrescriptionData `json:"data"`
	ImagePreviewURL string            `json:"imagePreviewUrl"`
}
