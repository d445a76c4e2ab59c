package model

import (
	"time"
)

// NeedStatus is the lifecycle state of a Need
type NeedStatus int

const (
	NeedPublished NeedStatus = 0
	NeedReserved  NeedStatus = 1 // kept for compatibility, never assigned
	NeedCancelled NeedStatus = 2
)

// Need is a posted request for service
type Need struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OwnerID     uint       `json:"owner_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"type:varchar(200);not null"`
	Description string     `json:"description" gorm:"type:text"`
	Region      string     `json:"region" gorm:"type:varchar(100);index"`
	ServiceType string     `json:"service_type" gorm:"type:varchar(100);not null"`
	ImgURLs     StringList `json:"img_urls"`
	VideoURL    string     `json:"video_url" gorm:"type:varchar(500)"`
	Status      NeedStatus `json:"status" gorm:"not null;default:0"`
	CreateTime  time.Time  `json:"create_time" gorm:"autoCreateTime;index"`
	UpdateTime  time.Time  `json:"update_time" gorm:"autoUpdateTime"`

	// Relations
	Owner    User      `json:"-" gorm:"foreignKey:OwnerID"`
	Services []Service `json:"-" gorm:"foreignKey:NeedID"`
}

// IsOpen reports whether the need still accepts responses
func (n *Need) IsOpen() bool {
	return n.Status == NeedPublished
}
