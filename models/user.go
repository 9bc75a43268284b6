// file: models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// 自定义类型 UserRole
type UserRole string

const (
	RolePlayer    UserRole = "player"
	RoleCaptain   UserRole = "team_captain"
	RoleAdmin     UserRole = "admin"
	RoleOrganiser UserRole = "organiser"
)

type User struct {
	ID         string     `gorm:"size:36;primarykey" json:"id"`
	Email      string     `gorm:"size:100;unique;not null;index" json:"email"`
	Password   string     `gorm:"size:255;not null" json:"-"`
	Name       string     `gorm:"size:50;not null" json:"name"`
	Role       UserRole   `gorm:"size:20;not null;default:'player'" json:"role"`
	IsVerified bool       `gorm:"default:0" json:"is_verified"`
	OTP        *string    `gorm:"size:6" json:"-"`
	OTPExpiry  *time.Time `json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"-"`
}

func (User) TableName() string {
	return "ectf_user"
}

// BeforeCreate 生成 UUID 主键
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return
}

// BeforeSave GORM Hook，在保存用户前自动哈希密码。
// bcrypt 哈希以 '$' 开头，借此避免对已哈希的值二次哈希。
func (u *User) BeforeSave(tx *gorm.DB) (err error) {
	if u.Password != "" && u.Password[0] != '$' {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		u.Password = string(hashedPassword)
	}
	return
}

// CheckPassword 校验密码是否正确
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
