package model

// Project 组织下的项目，凭证和成员都可以按项目划分
type Project struct {
	BaseModel
	Name           string `gorm:"index;size:255;not null" json:"name"`
	Description    string `gorm:"size:500" json:"description"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	OrganizationID uint   `gorm:"index;not null" json:"organization_id"`

	Users []ProjectUser `gorm:"foreignKey:ProjectID" json:"-"`
}
