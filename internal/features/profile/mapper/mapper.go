package mapper

import "social-hub-backend/internal/features/profile/models"

// ToPublicProfile скрывает контактные данные
func ToPublicProfile(p *models.Profile) *models.PublicProfile {
	return &models.PublicProfile{
		ID:        p.ID,
		Username:  p.Username,
		FullName:  p.FullName,
		Bio:       p.Bio,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}
