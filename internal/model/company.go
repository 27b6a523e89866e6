package model

import "time"

// Company represents a row in the `companies` table. A company is a
// tenant: users, persons and audit entries are all scoped by its id.
type Company struct {
	ID        int64
	Name      string
	TradeName string
	CNPJ      string
	Email     string
	Phone     string
	Address   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
