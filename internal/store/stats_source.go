package store

import (
	"context"
	"fmt"
	"time"

	"github.com/suteetoe/marketplace/internal/model"
	"github.com/suteetoe/marketplace/internal/stats"
	"github.com/suteetoe/marketplace/prometheus"
)

type statRow struct {
	CreateTime time.Time
	Region     string
}

func toRecords(rows []statRow) []stats.Record {
	records := make([]stats.Record, len(rows))
	for i, r := range rows {
		records[i] = stats.Record{CreatedAt: r.CreateTime, Region: r.Region}
	}
	return records
}

// NeedRecords returns creation time and region of needs created in [from, to)
func (s *Store) NeedRecords(ctx context.Context, from, to time.Time, regionKeyword string) ([]stats.Record, error) {
	defer prometheus.TrackDBOperation("stats_needs")(time.Now())

	query := s.db.WithContext(ctx).Model(&model.Need{}).
		Select("create_time, COALESCE(region, '') AS region").
		Where("create_time >= ? AND create_time < ?", from, to)
	if regionKeyword != "" {
		query = query.Where(`LOWER(region) LIKE ? ESCAPE '\'`, containsPattern(regionKeyword))
	}

	var rows []statRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query need records: %w", err)
	}
	return toRecords(rows), nil
}

// AcceptedServiceRecords returns accepted offers created in [from, to), each
// carrying the region of its need. Unattached offers have an empty region.
func (s *Store) AcceptedServiceRecords(ctx context.Context, from, to time.Time, regionKeyword string) ([]stats.Record, error) {
	defer prometheus.TrackDBOperation("stats_services")(time.Now())

	query := s.db.WithContext(ctx).Model(&model.Service{}).
		Select("services.create_time AS create_time, COALESCE(needs.region, '') AS region").
		Joins("LEFT JOIN needs ON needs.id = services.need_id").
		Where("services.status = ?", model.ServiceAccepted).
		Where("services.create_time >= ? AND services.create_time < ?", from, to)
	if regionKeyword != "" {
		query = query.Where(`LOWER(needs.region) LIKE ? ESCAPE '\'`, containsPattern(regionKeyword))
	}

	var rows []statRow
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("query service records: %w", err)
	}
	return toRecords(rows), nil
}

var _ stats.Source = (*Store)(nil)
