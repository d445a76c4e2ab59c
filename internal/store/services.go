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

// ServiceInput holds the fields of a new offer
type ServiceInput struct {
	NeedID      *uint
	Title       string
	Content     string
	ServiceType string
	Files       []string
}

// ServicePatch holds a partial update. Nil fields keep their stored value.
type ServicePatch struct {
	Title       *string
	Content     *string
	ServiceType *string
	Files       *[]string
}

// ServiceFilter narrows the public service listing
type ServiceFilter struct {
	Keyword     string // substring of the title
	ServiceType string // exact match
}

// ServiceView is an offer with its publisher's username
type ServiceView struct {
	model.Service
	OwnerName string
}

// CreateService records a pending offer. When attached to a need, the need must
// exist, be open and have no accepted offer; the need row is locked while checking.
func (s *Store) CreateService(ctx context.Context, ownerID uint, in ServiceInput) (*model.Service, error) {
	defer prometheus.TrackDBOperation("create_service")(time.Now())

	files := model.StringList(in.Files)
	if files == nil {
		files = model.StringList{}
	}
	svc := &model.Service{
		NeedID:      in.NeedID,
		OwnerID:     ownerID,
		Title:       in.Title,
		Content:     in.Content,
		ServiceType: in.ServiceType,
		Files:       files,
		Status:      model.ServicePending,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if in.NeedID != nil {
			var need model.Need
			if err := lockForUpdate(tx).First(&need, *in.NeedID).Error; err != nil {
				return notFound(err)
			}
			if !need.IsOpen() {
				return ErrNeedNotOpen
			}
			var accepted int64
			err := tx.Model(&model.Service{}).
				Where("need_id = ? AND status = ?", need.ID, model.ServiceAccepted).
				Count(&accepted).Error
			if err != nil {
				return err
			}
			if accepted > 0 {
				return ErrNeedAlreadyAccepted
			}
		}
		return tx.Omit(clause.Associations).Create(svc).Error
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// ListServices returns all offers matching the filter, newest first
func (s *Store) ListServices(ctx context.Context, filter ServiceFilter) ([]ServiceView, error) {
	defer prometheus.TrackDBOperation("list_services")(time.Now())

	query := s.db.WithContext(ctx).Preload("Owner")
	if filter.Keyword != "" {
		query = query.Where(`LOWER(title) LIKE ? ESCAPE '\'`, containsPattern(filter.Keyword))
	}
	if filter.ServiceType != "" {
		query = query.Where("service_type = ?", filter.ServiceType)
	}
	return s.findServices(ctx, query)
}

// ListMyServices returns the caller's own offers, newest first
func (s *Store) ListMyServices(ctx context.Context, ownerID uint) ([]ServiceView, error) {
	defer prometheus.TrackDBOperation("list_my_services")(time.Now())

	return s.findServices(ctx, s.db.WithContext(ctx).Preload("Owner").Where("owner_id = ?", ownerID))
}

// ListServicesByNeed returns the offers attached to a need, newest first
func (s *Store) ListServicesByNeed(ctx context.Context, needID uint) ([]ServiceView, error) {
	defer prometheus.TrackDBOperation("list_services_by_need")(time.Now())

	db := s.db.WithContext(ctx)
	var count int64
	if err := db.Model(&model.Need{}).Where("id = ?", needID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNotFound
	}
	return s.findServices(ctx, db.Preload("Owner").Where("need_id = ?", needID))
}

// GetService returns one offer with its publisher's username
func (s *Store) GetService(ctx context.Context, id uint) (*ServiceView, error) {
	defer prometheus.TrackDBOperation("get_service")(time.Now())

	var svc model.Service
	if err := s.db.WithContext(ctx).Preload("Owner").First(&svc, id).Error; err != nil {
		return nil, notFound(err)
	}
	views, err := s.viewServices(ctx, []model.Service{svc})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateService applies a partial update. Only the offer's owner may update.
func (s *Store) UpdateService(ctx context.Context, id, callerID uint, patch ServicePatch) (*model.Service, error) {
	defer prometheus.TrackDBOperation("update_service")(time.Now())

	var svc model.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockForUpdate(tx).First(&svc, id).Error; err != nil {
			return notFound(err)
		}
		if svc.OwnerID != callerID {
			return ErrForbidden
		}

		if patch.Title != nil {
			svc.Title = *patch.Title
		}
		if patch.Content != nil {
			svc.Content = *patch.Content
		}
		if patch.ServiceType != nil {
			svc.ServiceType = *patch.ServiceType
		}
		if patch.Files != nil {
			files := model.StringList(*patch.Files)
			if files == nil {
				files = model.StringList{}
			}
			svc.Files = files
		}
		return tx.Omit(clause.Associations).Save(&svc).Error
	})
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// AcceptService marks the offer accepted and rejects every other offer on the
// same need in one transaction. Only the need's owner may accept.
func (s *Store) AcceptService(ctx context.Context, id, callerID uint) (*model.Service, error) {
	defer prometheus.TrackDBOperation("accept_service")(time.Now())

	var svc model.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorizeReview(tx, id, callerID, &svc); err != nil {
			return err
		}

		err := tx.Model(&model.Service{}).
			Where("need_id = ? AND id <> ?", *svc.NeedID, svc.ID).
			Update("status", model.ServiceRejected).Error
		if err != nil {
			return fmt.Errorf("reject siblings: %w", err)
		}
		if err := tx.Model(&svc).Update("status", model.ServiceAccepted).Error; err != nil {
			return fmt.Errorf("accept service: %w", err)
		}
		svc.Status = model.ServiceAccepted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// RejectService marks only the given offer rejected. Only the need's owner may reject.
func (s *Store) RejectService(ctx context.Context, id, callerID uint) (*model.Service, error) {
	defer prometheus.TrackDBOperation("reject_service")(time.Now())

	var svc model.Service
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.authorizeReview(tx, id, callerID, &svc); err != nil {
			return err
		}
		if err := tx.Model(&svc).Update("status", model.ServiceRejected).Error; err != nil {
			return fmt.Errorf("reject service: %w", err)
		}
		svc.Status = model.ServiceRejected
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

// authorizeReview loads the offer and checks that callerID owns its need.
// Unattached offers cannot be reviewed by anyone.
func (s *Store) authorizeReview(tx *gorm.DB, id, callerID uint, svc *model.Service) error {
	if err := tx.First(svc, id).Error; err != nil {
		return notFound(err)
	}
	if svc.NeedID == nil {
		return ErrForbidden
	}
	var need model.Need
	if err := lockForUpdate(tx).First(&need, *svc.NeedID).Error; err != nil {
		if notFound(err) == ErrNotFound {
			return ErrForbidden
		}
		return err
	}
	if need.OwnerID != callerID {
		return ErrForbidden
	}
	return nil
}

func (s *Store) findServices(ctx context.Context, query *gorm.DB) ([]ServiceView, error) {
	var services []model.Service
	if err := query.Order(newestFirst).Find(&services).Error; err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return s.viewServices(ctx, services)
}

func (s *Store) viewServices(ctx context.Context, services []model.Service) ([]ServiceView, error) {
	views := make([]ServiceView, len(services))
	var missingOwners []uint
	for _, svc := range services {
		if svc.Owner.Username == "" {
			missingOwners = append(missingOwners, svc.OwnerID)
		}
	}
	names, err := usernames(s.db.WithContext(ctx), missingOwners)
	if err != nil {
		return nil, fmt.Errorf("resolve publishers: %w", err)
	}
	for i, svc := range services {
		name := svc.Owner.Username
		if name == "" {
			name = names[svc.OwnerID]
		}
		views[i] = ServiceView{Service: svc, OwnerName: name}
	}
	return views, nil
}
