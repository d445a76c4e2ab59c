package store

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/prometheus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NeedInput holds the editable fields of a need
type NeedInput struct {
	Title       string
	Description string
	Region      string
	ServiceType string
	ImgURLs     []string
	VideoURL    string
}

// NeedFilter narrows the caller's own needs
type NeedFilter struct {
	Keyword     string // substring of the title
	ServiceType string // exact match
}

// NeedView is a need enriched with its publisher and response state
type NeedView struct {
	model.Need
	OwnerName   string
	HasResponse bool
	HasAccepted bool
}

// CreateNeed publishes a new need owned by ownerID
func (s *Store) CreateNeed(ctx context.Context, ownerID uint, in NeedInput) (*model.Need, error) {
	defer prometheus.TrackDBOperation("create_need")(time.Now())

	need := &model.Need{
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Region:      in.Region,
		ServiceType: in.ServiceType,
		ImgURLs:     model.StringList(in.ImgURLs),
		VideoURL:    in.VideoURL,
		Status:      model.NeedPublished,
	}
	if need.ImgURLs == nil {
		need.ImgURLs = model.StringList{}
	}
	if err := s.db.WithContext(ctx).Create(need).Error; err != nil {
		return nil, fmt.Errorf("create need: %w", err)
	}
	return need, nil
}

// ListNeeds returns one page of needs, newest first, and the total count
func (s *Store) ListNeeds(ctx context.Context, page, size int) ([]NeedView, int64, error) {
	defer prometheus.TrackDBOperation("list_needs")(time.Now())

	db := s.db.WithContext(ctx)

	var total int64
	if err := db.Model(&model.Need{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count needs: %w", err)
	}

	var needs []model.Need
	err := db.Preload("Owner").
		Order(newestFirst).
		Offset((page - 1) * size).
		Limit(size).
		Find(&needs).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list needs: %w", err)
	}

	views, err := enrichNeeds(db, needs)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

// ListMyNeeds returns every need owned by ownerID matching the filter, newest first.
// Pagination is applied by the caller.
func (s *Store) ListMyNeeds(ctx context.Context, ownerID uint, filter NeedFilter) ([]NeedView, error) {
	defer prometheus.TrackDBOperation("list_my_needs")(time.Now())

	db := s.db.WithContext(ctx)
	query := db.Preload("Owner").Where("owner_id = ?", ownerID)
	if filter.Keyword != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, containsPattern(filter.Keyword))
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}

	var needs []model.Need
	if err := query.Order(newestFirst).Find(&needs).Error; err != nil {
		return nil, fmt.Errorf("list my needs: %w", err)
	}
	return enrichNeeds(db, needs)
}

// GetNeed returns one need with the same enrichment as ListNeeds
func (s *Store) GetNeed(ctx context.Context, id uint) (*NeedView, error) {
	defer prometheus.TrackDBOperation("get_need")(time.Now())

	db := s.db.WithContext(ctx)
	var need model.Need
	if err := db.Preload("Owner").First(&need, id).Error; err != nil {
		return nil, notFound(err)
	}

	views, err := enrichNeeds(db, []model.Need{need})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateNeed overwrites the editable fields. Only the owner may update.
func (s *Store) UpdateNeed(ctx context.Context, id, callerID uint, in NeedInput) (*model.Need, error) {
	defer prometheus.TrackDBOperation("update_need")(time.Now())

	var need model.Need
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&need, id).Error; err != nil {
			return notFound(err)
		}
		if need.OwnerID != callerID {
			return ErrForbidden
		}

		imgs := model.StringList(in.ImgURLs)
		if imgs == nil {
			imgs = model.StringList{}
		}
		need.Title = in.Title
		need.ServiceType = in.ServiceType
		need.Region = in.Region
		need.Description = in.Description
		need.ImgURLs = imgs
		need.VideoURL = in.VideoURL
		return tx.Omit(clause.Associations).Save(&need).Error
	})
	if err != nil {
		return nil, err
	}
	return &need, nil
}

// CancelNeed closes a need for further responses. Only the owner may cancel.
func (s *Store) CancelNeed(ctx context.Context, id, callerID uint) (*model.Need, error) {
	defer prometheus.TrackDBOperation("cancel_need")(time.Now())

	var need model.Need
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&need, id).Error; err != nil {
			return notFound(err)
		}
		if need.OwnerID != callerID {
			return ErrForbidden
		}
		if err := tx.Model(&need).Update("status", model.NeedCancelled).Error; err != nil {
			return err
		}
		need.Status = model.NeedCancelled
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &need, nil
}

// DeleteNeed removes a need. Its services are kept and detached (need_id = NULL).
func (s *Store) DeleteNeed(ctx context.Context, id, callerID uint) error {
	defer prometheus.TrackDBOperation("delete_need")(time.Now())

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var need model.Need
		if err := lockForUpdate(tx).First(&need, id).Error; err != nil {
			return notFound(err)
		}
		if need.OwnerID != callerID {
			return ErrForbidden
		}
		if err := tx.Model(&model.Service{}).Where("need_id = ?", id).Update("need_id", nil).Error; err != nil {
			return fmt.Errorf("detach services: %w", err)
		}
		if err := tx.Delete(&need).Error; err != nil {
			return fmt.Errorf("delete need: %w", err)
		}
		return nil
	})
}

type needResponseCount struct {
	NeedID   uint
	Total    int64
	Accepted int64
}

// enrichNeeds attaches publisher names and response flags in two batched queries
func enrichNeeds(db *gorm.DB, needs []model.Need) ([]NeedView, error) {
	views := make([]NeedView, len(needs))
	if len(needs) == 0 {
		return views, nil
	}

	ids := make([]uint, 0, len(needs))
	var missingOwners []uint
	for _, n := range needs {
		ids = append(ids, n.ID)
		if n.Owner.Username == "" {
			missingOwners = append(missingOwners, n.OwnerID)
		}
	}

	var counts []needResponseCount
	err := db.Model(&model.Service{}).
		Select("need_id, COUNT(*) AS total, SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS accepted", model.ServiceAccepted).
		Where("need_id IN ?", ids).
		Group("need_id").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("count responses: %w", err)
	}
	byNeed := make(map[uint]needResponseCount, len(counts))
	for _, c := range counts {
		byNeed[c.NeedID] = c
	}

	// relation not loaded, fall back to a direct lookup
	names, err := usernames(db, missingOwners)
	if err != nil {
		return nil, fmt.Errorf("resolve publishers: %w", err)
	}

	for i, n := range needs {
		name := n.Owner.Username
		if name == "" {
			name = names[n.OwnerID]
		}
		c := byNeed[n.ID]
		views[i] = NeedView{
			Need:        n,
			OwnerName:   name,
			HasResponse: c.Total > 0,
			HasAccepted: c.Accepted > 0,
		}
	}
	return views, nil
}
