package model

type User struct {
	BaseModel
	Email          string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	HashedPassword string `gorm:"not null" json:"-"`
	FullName       string `gorm:"size:255" json:"full_name"`
	IsActive       bool   `gorm:"default:true" json:"is_active"`
	IsSuperuser    bool   `gorm:"default:false" json:"is_superuser"`

	Documents []Document    `gorm:"foreignKey:OwnerID" json:"-"`
	Projects  []ProjectUser `gorm:"foreignKey:UserID" json:"-"`
	APIKeys   []APIKey      `gorm:"foreignKey:UserID" json:"-"`
}

// UserOrganization 在 User 之上补充调用方所属组织
// API Key 鉴权时能解析出组织，JWT 鉴权时组织由请求参数提供
type UserOrganization struct {
	User
	OrganizationID *uint `json:"organization_id"`
}

// UserProjectOrg 进一步绑定到某个项目（项目级接口鉴权通过后构造）
type UserProjectOrg struct {
	UserOrganization
	ProjectID uint `json:"project_id"`
}
