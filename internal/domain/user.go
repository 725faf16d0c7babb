package domain

import (
	"time"
)

type Role string

const (
	RoleStaff        Role = "员工"
	RoleVenueManager Role = "场馆经理"
	RoleAdmin        Role = "系统管理员"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	Role         Role      `json:"role"`
	VenueIDs     []int64   `json:"venueIDs"`
	IsActive     bool      `json:"isActive"`
	CreatedAt    time.Time `json:"createdAt"`
	Version      int32     `json:"-"`
}

// CanManageVenue 判断用户是否有权限管理某个场馆的排班表
func (u *User) CanManageVenue(venueID int64) bool {
	if u.Role == RoleAdmin {
		return true
	}
	if u.Role != RoleVenueManager {
		return false
	}
	for _, id := range u.VenueIDs {
		if id == venueID {
			return true
		}
	}
	return false
}
