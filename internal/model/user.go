package model

import "time"

// DigestEmailConfig 摘要邮件频率
type DigestEmailConfig string

const (
	DigestDaily  DigestEmailConfig = "DAILY"
	DigestWeekly DigestEmailConfig = "WEEKLY"
	DigestOff    DigestEmailConfig = "OFF"
)

// Valid 是否为已知取值
func (c DigestEmailConfig) Valid() bool {
	switch c {
	case DigestDaily, DigestWeekly, DigestOff:
		return true
	}
	return false
}

// Interval 两次摘要之间的最短间隔，OFF 返回 0
func (c DigestEmailConfig) Interval() time.Duration {
	switch c {
	case DigestDaily:
		return 24 * time.Hour
	case DigestWeekly:
		return 7 * 24 * time.Hour
	}
	return 0
}

// User 用户。邮箱只通过 userView / GraphQL 解析器对本人输出
type User struct {
	ID                int               `json:"id" gorm:"primaryKey"`
	Email             string            `json:"-" gorm:"type:varchar(255);uniqueIndex;not null"`
	Handle            string            `json:"handle" gorm:"type:varchar(64);uniqueIndex;not null"`
	Name              string            `json:"name" gorm:"type:varchar(128)"`
	Password          string            `json:"-" gorm:"type:varchar(255);not null"`
	DigestEmailConfig DigestEmailConfig `json:"digest_email_config" gorm:"type:varchar(16);not null;index"`
	LastDigestAt      *time.Time        `json:"-"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

func (User) TableName() string { return "users" }
