package user

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
	RoleAdmin    Role = "Admin"
	RoleFinance  Role = "Finance"
)

var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin, RoleFinance}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

type User struct {
	ID         string           `json:"_id,omitempty"`
	AltID      string           `json:"id,omitempty"`
	Name       string           `json:"name"`
	Email      string           `json:"email"`
	Role       Role             `json:"role"`
	HourlyRate *decimal.Decimal `json:"hourlyRate,omitempty"`
	Department string           `json:"department,omitempty"`
}

func (u User) Key() string {
	if u.ID != "" {
		return u.ID
	}
	return u.AltID
}

// DisplayName falls back to the email when the backend sent no name.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// Ref is a user reference as the backend sends it: either a bare id
// string or a populated user object.
type Ref struct {
	ID   string
	User *User
}

func (r Ref) Key() string {
	if r.User != nil && r.User.Key() != "" {
		return r.User.Key()
	}
	return r.ID
}

func (r Ref) Populated() bool {
	return r.User != nil
}

func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return err
		}
		*r = Ref{ID: id}
		return nil
	}
	if len(data) > 0 && data[0] == '{' {
		var u User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		*r = Ref{ID: u.Key(), User: &u}
		return nil
	}
	// Numeric ids and anything else are kept verbatim.
	*r = Ref{ID: string(data)}
	return nil
}

func (r Ref) MarshalJSON() ([]byte, error) {
	if r.User != nil {
		return json.Marshal(r.User)
	}
	if r.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(r.ID)
}
