package dto

import (
	"time"
)

type UserOutput struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ListUsersQuery struct {
	Page   int    `query:"page"`
	Limit  int    `query:"limit"`
	SortBy string `query:"sort_by"`
	Order  string `query:"order"`
	Role   string `query:"role"`
	Email  string `query:"email"`
}

type UserListOutput struct {
	Page       int          `json:"page"`
	Limit      int          `json:"limit"`
	TotalUsers int          `json:"total_users"`
	Users      []UserOutput `json:"users"`
}
