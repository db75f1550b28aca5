package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Email        string    `gorm:"uniqueIndex;not null"        json:"email"`
	Username     string    `gorm:"uniqueIndex;not null"        json:"username"`
	PasswordHash string    `gorm:"not null"                    json:"-"`
	UserCost     float64   `gorm:"not null;default:0"          json:"user_cost"`
	RegisteredAt time.Time `gorm:"not null"                    json:"registration_time"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// Snapshot is the owner copy embedded into posts at authoring time.
func (u *User) Snapshot() Owner {
	return Owner{Username: u.Username, Email: u.Email}
}

// Owner is denormalized on purpose: renaming a user does not rewrite old posts.
type Owner struct {
	Username string `gorm:"not null;index" json:"username"`
	Email    string `gorm:"not null;index" json:"email"`
}

type Blog struct {
	ID            string    `gorm:"primaryKey;type:varchar(36)"  json:"id"`
	Title         string    `gorm:"not null"                     json:"title"`
	Hashtags      string    `gorm:"not null;default:''"          json:"hashtags"`
	Content       string    `gorm:"type:text"                    json:"content"`
	GeneratedByAI bool      `gorm:"not null;default:false"       json:"generated_by_ai"`
	User          Owner     `gorm:"embedded;embeddedPrefix:user_" json:"user"`
	PostDate      string    `gorm:"not null"                     json:"post_date"`
	PostTime      string    `gorm:"not null"                     json:"post_time"`
	UserCost      float64   `gorm:"not null;default:0"           json:"user_cost"`
	CreatedAt     time.Time `gorm:"index"                        json:"-"`
	UpdatedAt     time.Time `                                    json:"-"`
}

func (b *Blog) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

const (
	PostDateLayout = "2006-01-02"
	PostTimeLayout = "15:04:05.000000"
)

func (b *Blog) StampPosted(t time.Time) {
	t = t.UTC()
	b.PostDate = t.Format(PostDateLayout)
	b.PostTime = t.Format(PostTimeLayout)
}

func All() []any {
	return []any{&User{}, &Blog{}}
}
