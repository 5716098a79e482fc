// Package model 定义了与数据库表对应的 Go 结构体。
package model

import "time"

// Profile 定义了 profiles 表的 ORM 模型，每个用户至多一条。
// Allergies 以 JSON 数组字符串存储在 text 列中。
type Profile struct {
	ID                           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID                       uint      `gorm:"uniqueIndex;not null" json:"userId"`
	FullName                     string    `gorm:"type:varchar(100)" json:"fullName"`
	Email                        string    `gorm:"type:varchar(100)" json:"email"`
	Phone                        string    `gorm:"type:varchar(30)" json:"phone"`
	DateOfBirth                  string    `gorm:"type:varchar(30)" json:"dateOfBirth"`
	BloodType                    string    `gorm:"type:varchar(5)" json:"bloodType"`
	Allergies                    string    `gorm:"type:text" json:"-"`
	EmergencyContactName         string    `gorm:"type:varchar(100)" json:"-"`
	EmergencyContactPhone        string    `gorm:"type:varchar(30)" json:"-"`
	EmergencyContactRelationship string    `gorm:"type:varchar(50)" json:"-"`
	Location                     string    `gorm:"type:varchar(100)" json:"location"`
	UpdatedAt                    time.Time `gorm:"autoUpdateTime" json:"updatedAt"`
}

// TableName 指定了此模型在数据库中对应的表名。
func (Profile) TableName() string {
	return "profiles"
}

// EmergencyContactDTO 紧急联系人的出入参结构。
type EmergencyContactDTO struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// ProfileDetailsDTO 定义了返回给前端的完整资料结构。
type ProfileDetailsDTO struct {
	FullName         string              `json:"fullName"`
	Email            string              `json:"email"`
	Phone            string              `json:"phone"`
	DateOfBirth      string              `json:"dateOfBirth"`
	BloodType        string              `json:"bloodType"`
	Allergies        []string            `json:"allergies"`
	EmergencyContact EmergencyContactDTO `json:"emergencyContact"`
	Location         string              `json:"location"`
}

// HasData 报告资料中是否存在任何已填写的字段。
func (d ProfileDetailsDTO) HasData() bool {
	return d.FullName != "" ||
		d.Email != "" ||
		d.Phone != "" ||
		d.DateOfBirth != "" ||
		d.BloodType != "" ||
		len(d.Allergies) > 0 ||
		d.EmergencyContact.Name != "" ||
		d.EmergencyContact.Phone != "" ||
		d.EmergencyContact.Relationship != "" ||
		d.Location != ""
}
