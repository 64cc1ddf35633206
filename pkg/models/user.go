package models

import "assetdb/pkg/roles"

// AdminSecLevel is the sec_level granting data management rights.
const AdminSecLevel = 100

type User struct {
	ID           int    `json:"user_id" db:"user_id"`
	CjID         string `json:"cj_id" db:"cj_id"`
	Name         string `json:"name" db:"name"`
	Part         string `json:"part" db:"part"`
	State        string `json:"state" db:"state"`
	SecLevel     int    `json:"sec_level" db:"sec_level"`
	IsTemporary  bool   `json:"is_temporary" db:"is_temporary"`
	PasswordHash string `json:"-" db:"password"`
}

func (u *User) Role() roles.Role {
	if u.SecLevel >= AdminSecLevel {
		return roles.Admin
	}
	return roles.User
}

func (u *User) CreateLogView() AuditLog {
	return AuditLog{
		ResourceID:   u.ID,
		ResourceType: "user",
	}
}

type UserDetail struct {
	User
	AssetCounts map[string]int `json:"asset_counts"`
}

type UserUpdate struct {
	Name     *string `json:"name"`
	Part     *string `json:"part"`
	State    *string `json:"state"`
	SecLevel *int    `json:"sec_level"`
	Password *string `json:"password"`
}

type UserChanges struct {
	Name         *string
	Part         *string
	State        *string
	SecLevel     *int
	PasswordHash *string
}

func (c *UserChanges) HasChanges() bool {
	return c.Name != nil || c.Part != nil || c.State != nil || c.SecLevel != nil || c.PasswordHash != nil
}

type TemporaryUserRequest struct {
	Name string `json:"name" binding:"required"`
	Part string `json:"part"`
}

type FinalizeUserRequest struct {
	CjID string `json:"cj_id" binding:"required"`
	Part string `json:"part"`
}

type LoginRequest struct {
	CjID     string `json:"cj_id" binding:"required"`
	Password string `json:"password" binding:"required"`
}
