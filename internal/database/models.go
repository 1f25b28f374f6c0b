package database

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User 表示系统中的账号信息。
type User struct {
	gorm.Model
	Username     string `gorm:"uniqueIndex;size:64"`
	PasswordHash string `gorm:"size:255"`
	CVs          []CV   `gorm:"constraint:OnDelete:CASCADE"`
}

// CV 表示用户创建的简历。每行一份：content 为 JSONB 的 Section 序列，
// template 为内置模板 ID，user_id 为属主外键。
// 主键是创建时生成的 UUID 字符串，创建后不可变。
type CV struct {
	ID              string         `gorm:"primaryKey;size:36"`
	Title           string         `gorm:"size:255"`
	Content         datatypes.JSON `gorm:"type:jsonb"`
	Template        string         `gorm:"size:32"`
	UserID          uint           `gorm:"index"`
	User            User           `gorm:"constraint:OnDelete:CASCADE"`
	PDFObjectKey    string         `gorm:"size:512"`
	PreviewImageURL string         `gorm:"size:512"`
	Status          string         `gorm:"size:32"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
