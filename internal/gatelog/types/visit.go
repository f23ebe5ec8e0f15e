package types

import (
	"strings"
	"time"
)

// Layouts for the string-typed date and time fields as stored in the
// partition files.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// VisitRecord is one row of a monthly partition. TimeOut is empty while
// the session is open; Notes carries system annotations such as the
// auto-close marker. Once TimeOut is set the row is immutable.
type VisitRecord struct {
	Category   Category `json:"category"`
	LastName   string   `json:"last_name"`
	FirstName  string   `json:"first_name"`
	IDNumber   string   `json:"id_number"`
	Group      string   `json:"group"`
	DateLogged string   `json:"date_logged"` // YYYY-MM-DD
	TimeIn     string   `json:"time_in"`     // HH:MM, 24h
	TimeOut    string   `json:"time_out,omitempty"`
	Notes      string   `json:"notes,omitempty"`
}

// Open reports whether the visit is still in progress. Any blank or
// missing TimeOut representation counts as open.
func (v VisitRecord) Open() bool {
	return strings.TrimSpace(v.TimeOut) == ""
}

// PartitionKey identifies one monthly partition.
type PartitionKey struct {
	Year  int
	Month time.Month
}

// PartitionKeyFor returns the key of the partition covering t.
func PartitionKeyFor(t time.Time) PartitionKey {
	return PartitionKey{Year: t.Year(), Month: t.Month()}
}

// String renders the key as YYYYMM, the form used in partition filenames
// and audit rows.
func (k PartitionKey) String() string {
	return time.Date(k.Year, k.Month, 1, 0, 0, 0, 0, time.UTC).Format("200601")
}

// FileName is the partition's on-disk name, e.g. log_202508.csv.
func (k PartitionKey) FileName() string {
	return "log_" + k.String() + ".csv"
}

// TapRequest is the kiosk payload for an RFID tap.
type TapRequest struct {
	Token string `json:"token"`
}

// TapResponse tells the kiosk what happened so it can show a greeting.
type TapResponse struct {
	Action  string `json:"action"`
	Name    string `json:"name"`
	Time    string `json:"time"`
	Message string `json:"message"`
}

// VisitEntryRequest is a manual form submission for visitors without a
// registered card (guests, or students who forgot theirs).
type VisitEntryRequest struct {
	Category  Category `json:"category"`
	LastName  string   `json:"last_name"`
	FirstName string   `json:"first_name"`
	IDNumber  string   `json:"id_number,omitempty"`
	Group     string   `json:"group"`
}

// VisitEntryResponse confirms a logged form entry.
type VisitEntryResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
}
