package models

import "gorm.io/gorm"

// Permission represents one access right, e.g. "payments_record" or
// "waivers_decide".
type Permission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Name        string `json:"name" gorm:"unique;not null"`
	Description string `json:"description"`
	Category    string `json:"category" gorm:"not null"`
}

// UserPermissions collects the unique permission names a user holds through
// their roles.
func UserPermissions(db *gorm.DB, userID uint) ([]string, error) {
	var user User
	if err := db.Preload("Roles.Permissions").First(&user, userID).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, role := range user.Roles {
		for _, permission := range role.Permissions {
			if !seen[permission.Name] {
				seen[permission.Name] = true
				names = append(names, permission.Name)
			}
		}
	}
	return names, nil
}
