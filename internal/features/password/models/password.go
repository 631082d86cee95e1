package models

// ChangeRequest тело POST /auth/password
type ChangeRequest struct {
	CurrentPassword string `json:"current_password" binding:"required,max=128"`
	NewPassword     string `json:"new_password" binding:"required,max=128"`
}

type ChangeResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Password updated"`
}
