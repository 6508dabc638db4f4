package model

import "time"

// Terminal 考勤机记录
// 协议层没有准入控制，陌生 SN 首次上报时自动建档，便于之后人工稽核
type Terminal struct {
	BaseModel
	SN             string     `gorm:"uniqueIndex;type:varchar(64);not null" json:"sn"`
	Name           string     `gorm:"type:varchar(64);not null;default:''" json:"name"`
	LastSeenAt     *time.Time `gorm:"type:timestamptz" json:"last_seen_at,omitempty"`
	SelfRegistered bool       `gorm:"not null;default:true" json:"self_registered"`
}

// TableName 指定表名
func (Terminal) TableName() string {
	return "terminals"
}
