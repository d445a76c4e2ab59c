package model

import (
	"time"
)

// ServiceStatus is the review state of an offer
type ServiceStatus int

const (
	ServicePending  ServiceStatus = 0
	ServiceAccepted ServiceStatus = 1
	ServiceRejected ServiceStatus = 2
)

// Service is an offer submitted against a Need by another user
type Service struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	NeedID      *uint         `json:"need_id" gorm:"index"`
	OwnerID     uint          `json:"owner_id" gorm:"index;not null"`
	Title       string        `json:"title" gorm:"type:varchar(200)"`
	Content     string        `json:"content" gorm:"type:text"`
	ServiceType string        `json:"service_type" gorm:"type:varchar(100)"`
	Files       StringList    `json:"files"`
	Status      ServiceStatus `json:"status" gorm:"not null;default:0;index"`
	CreateTime  time.Time     `json:"create_time" gorm:"autoCreateTime;index"`
	UpdateTime  time.Time     `json:"update_time" gorm:"autoUpdateTime"`

	// Relations
	Need  *Need `json:"-" gorm:"foreignKey:NeedID"`
	Owner User  `json:"-" gorm:"foreignKey:OwnerID"`
}
