package model

type Organization struct {
	BaseModel
	Name     string `gorm:"uniqueIndex;size:255;not null" json:"name"`
	IsActive bool   `gorm:"default:true" json:"is_active"`

	// 关联
	Projects    []Project    `gorm:"foreignKey:OrganizationID" json:"projects,omitempty"`
	Credentials []Credential `gorm:"foreignKey:OrganizationID" json:"-"`
	APIKeys     []APIKey     `gorm:"foreignKey:OrganizationID" json:"-"`
}
