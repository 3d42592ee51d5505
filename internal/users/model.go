package users

import (
	"strconv"
	"time"
)

// dateLayout is the wire format for dates of birth.
const dateLayout = "2006-01-02"

// Date is a day-precision timestamp serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

// NewDate truncates t to day precision in UTC.
func NewDate(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return Date{time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

// MarshalJSON serializes the date as a quoted YYYY-MM-DD string.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(d.Format(dateLayout))), nil
}

// UnmarshalJSON parses a quoted YYYY-MM-DD string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s, err := strconv.Unquote(string(b))
	if err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// User is a credential record. PasswordHash is excluded from JSON so a
// serialized user is always sanitized; no handler ever returns the hash.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	DateOfBirth  Date      `json:"dob"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Sanitized returns a copy of the user without the password hash. The JSON
// tag already hides the hash; this is for code paths that hand the record
// to other packages.
func (u *User) Sanitized() *User {
	copied := *u
	copied.PasswordHash = ""
	return &copied
}
