package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/store"
)

// UserDTO is the public shape of a user
type UserDTO struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	RealName     string    `json:"realName"`
	Phone        string    `json:"phone"`
	Intro        string    `json:"intro"`
	UserType     string    `json:"userType"`
	RegisterTime time.Time `json:"registerTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

func toUserDTO(u *model.User, withEmail bool) UserDTO {
	dto := UserDTO{
		ID:           u.ID,
		UserID:       u.ID,
		Username:     u.Username,
		RealName:     u.FullName,
		Phone:        u.Phone,
		Intro:        u.Intro,
		UserType:     u.UserType,
		RegisterTime: u.RegisterTime,
		UpdateTime:   u.UpdateTime,
	}
	if dto.UserType == "" {
		dto.UserType = model.RoleOrdinary
	}
	if withEmail && u.Email != nil {
		dto.Email = *u.Email
	}
	return dto
}

// NeedDTO is the public shape of a need
type NeedDTO struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Region      string    `json:"region"`
	ServiceType string    `json:"serviceType"`
	ImgURLs     []string  `json:"imgUrls"`
	VideoURL    string    `json:"videoUrl"`
	Status      int       `json:"status"`
	HasResponse bool      `json:"hasResponse"`
	HasAccepted bool      `json:"hasAccepted"`
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
}

func toNeedDTO(v store.NeedView) NeedDTO {
	imgs := []string(v.ImgURLs)
	if imgs == nil {
		imgs = []string{}
	}
	return NeedDTO{
		ID:          v.ID,
		Title:       v.Title,
		Description: v.Description,
		Region:      v.Region,
		ServiceType: v.ServiceType,
		ImgURLs:     imgs,
		VideoURL:    v.VideoURL,
		Status:      int(v.Status),
		HasResponse: v.HasResponse,
		HasAccepted: v.HasAccepted,
		UserID:      v.OwnerID,
		UserName:    v.OwnerName,
		CreateTime:  v.CreateTime,
		UpdateTime:  v.UpdateTime,
	}
}

func toNeedDTOs(views []store.NeedView) []NeedDTO {
	out := make([]NeedDTO, len(views))
	for i, v := range views {
		out[i] = toNeedDTO(v)
	}
	return out
}

// ServiceDTO is the public shape of a service offer
type ServiceDTO struct {
	ID          uint      `json:"id"`
	ServiceID   uint      `json:"serviceId"`
	NeedID      *uint     `json:"needId"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ServiceType string    `json:"serviceType"`
	Files       []string  `json:"files"`
	Status      int       `json:"status"`
	UserID      uint      `json:"userId"`
	UserName    string    `json:"userName"`
	CreateTime  time.Time `json:"createTime"`
	UpdateTime  time.Time `json:"updateTime"`
}

func toServiceDTO(v store.ServiceView) ServiceDTO {
	files := []string(v.Files)
	if files == nil {
		files = []string{}
	}
	return ServiceDTO{
		ID:          v.ID,
		ServiceID:   v.ID,
		NeedID:      v.NeedID,
		Title:       v.Title,
		Content:     v.Content,
		ServiceType: v.ServiceType,
		Files:       files,
		Status:      int(v.Status),
		UserID:      v.OwnerID,
		UserName:    v.OwnerName,
		CreateTime:  v.CreateTime,
		UpdateTime:  v.UpdateTime,
	}
}

func toServiceDTOs(views []store.ServiceView) []ServiceDTO {
	out := make([]ServiceDTO, len(views))
	for i, v := range views {
		out[i] = toServiceDTO(v)
	}
	return out
}

// PageDTO wraps one page of records
type PageDTO struct {
	Records interface{} `json:"records"`
	Total   int64       `json:"total"`
	Page    int         `json:"page,omitempty"`
	Size    int         `json:"size,omitempty"`
}

// fileRefs flattens attachment entries. Clients send either plain strings or
// objects carrying a url.
func fileRefs(items []interface{}) []string {
	refs := make([]string, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case nil:
		case string:
			if v != "" {
				refs = append(refs, v)
			}
		case map[string]interface{}:
			if url, ok := v["url"].(string); ok && url != "" {
				refs = append(refs, url)
				continue
			}
			if b, err := json.Marshal(v); err == nil {
				refs = append(refs, string(b))
			}
		default:
			refs = append(refs, fmt.Sprint(v))
		}
	}
	return refs
}
