package dto

type ChangePasswordInput struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
	IPAddress   string `json:"-"`
	UserAgent   string `json:"-"`
}
