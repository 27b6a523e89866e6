package model

import "time"

// Person kinds. An individual carries a CPF, a legal entity a CNPJ; the
// two document fields are mutually exclusive.
const (
	PersonIndividual  = "1"
	PersonLegalEntity = "2"
)

// Person statuses.
const (
	PersonActive   = 1
	PersonInactive = 2
)

// Person represents a row in the `persons` table. Every person belongs to
// exactly one company (CompanyID); repository queries always filter by it
// so tenants never see each other's records.
type Person struct {
	ID           int64
	CompanyID    int64
	BranchID     int64
	Kind         string // PersonIndividual or PersonLegalEntity
	Name         string
	CPF          string
	CNPJ         string
	Email        string
	Phone        string
	Mobile       string
	ZipCode      string
	Street       string
	StreetNumber string
	Complement   string
	District     string
	City         string
	State        string
	BirthDate    *time.Time
	ContactName  string
	Notes        string
	Status       int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
