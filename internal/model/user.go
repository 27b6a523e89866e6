package model

import "time"

// User represents a row in the `users` table. A login is unique within
// its company but the same login may exist under several companies with
// independent credentials, so the primary key is (login, company_id).
//
// Fields:
//  Login        – account login, unique per company.
//  CompanyID    – owning tenant (companies.id).
//  PasswordHash – bcrypt hashed password. Never serialized to clients.
//  RoleID       – foreign key into the roles table; zero when unassigned.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	Login        string
	CompanyID    int64
	PasswordHash string
	RoleID       int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Role represents a row in the `roles` table. Each user holds at most one
// role per company; permissions attach to roles, never to users directly.
type Role struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Permission represents a row in the `permissions` table. A permission is
// an exact (resource, action) pair, e.g. ("companies", "update"). Roles
// reference permissions through the role_permissions join table.
type Permission struct {
	ID          int64
	Resource    string
	Action      string
	Description string
	CreatedAt   time.Time
}
