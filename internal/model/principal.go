package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin           UserRole = "admin"
	UserRoleContractManager UserRole = "contract_manager"
	UserRoleViewer          UserRole = "viewer"
)

type Principal struct {
	UserID uuid.UUID
	OrgID  uuid.UUID
	Role   UserRole
	Name   string
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) IsContractManager() bool {
	return p.Role == UserRoleContractManager
}

func (p Principal) IsViewer() bool {
	return p.Role == UserRoleViewer
}

func (p Principal) CanWrite() bool {
	return p.IsAdmin() || p.IsContractManager()
}
