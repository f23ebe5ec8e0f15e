package types

// Category classifies a visitor. Students and Employees come from the
// roster; Guests only ever arrive through the manual entry form.
type Category string

const (
	CategoryStudent  Category = "Student"
	CategoryEmployee Category = "Employee"
	CategoryGuest    Category = "Guest"
)

// GuestIDNumber is the ID_Number sentinel used for visitors without a
// campus ID (guests and form-entered employees).
const GuestIDNumber = "N/A"

// Identity is a single roster row: a physical credential token mapped to
// a person. Immutable at runtime; the roster is provisioned out-of-band.
//
// IDNumber is deliberately a string — campus IDs carry leading zeros and
// must never be coerced to a numeric type.
type Identity struct {
	Token     string   `json:"token"`
	IDNumber  string   `json:"id_number"`
	LastName  string   `json:"last_name"`
	FirstName string   `json:"first_name"`
	Category  Category `json:"category"`
	Group     string   `json:"group"` // department (students) or agency (employees)
}
