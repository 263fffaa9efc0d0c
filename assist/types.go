package assist

// NameIDMap maps display names to opaque backend ids. Names are unique within
// a single response; ids are stable identifiers assigned by the backend.
type NameIDMap map[string]string

// Category partitions transfer requirements into "major" or "department" views
type Category string

const (
	CategoryMajor Category = "major"
	CategoryDept  Category = "dept"
)

// Valid reports whether the category code is one the backend understands
func (c Category) Valid() bool {
	return c == CategoryMajor || c == CategoryDept
}

// Other returns the opposite category
func (c Category) Other() Category {
	if c == CategoryMajor {
		return CategoryDept
	}
	return CategoryMajor
}

// Institution pairs a display name with its opaque backend id
type Institution struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// IgetcID is the synthetic sending id of the statewide IGETC reference
// agreement, which is carried alongside per-institution agreements.
const IgetcID = "IGETC"

// Agreement is one articulation record for a (receiving, year, major) tuple,
// produced per selected sending institution plus at most one IGETC record.
// PdfFilename is empty when no document exists for the pairing.
type Agreement struct {
	SendingID   string `json:"sendingId"`
	SendingName string `json:"sendingName"`
	PdfFilename string `json:"pdfFilename"`
	IsIgetc     bool   `json:"isIgetc"`
}

// AgreementsRequest is the POST payload of the articulation-agreements endpoint
type AgreementsRequest struct {
	SendingIDs  []string `json:"sending_ids"`
	ReceivingID string   `json:"receiving_id"`
	YearID      string   `json:"year_id"`
	MajorKey    string   `json:"major_key"`
}
