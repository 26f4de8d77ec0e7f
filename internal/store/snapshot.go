package store

import (
	"context"
	"fmt"
	"time"

	"cnc-telemetry-backend/internal/model"
)

// LatestMachines returns every machine row. The machine table is static, so
// the latest projection is simply all rows.
func (s *gormStore) LatestMachines(ctx context.Context) ([]model.Machine, error) {
	machines := make([]model.Machine, 0)
	if err := s.db.WithContext(ctx).Order("machine_id").Find(&machines).Error; err != nil {
		return nil, fmt.Errorf("latest machines: %w", err)
	}
	return machines, nil
}

// LatestToolSamples returns exactly one tool row per machine: the row with
// the most recent update_timestamp, ties broken by the highest surrogate id.
// The selection is a correlated sub-query so it stays correct under
// concurrent writers rather than relying on result ordering.
func (s *gormStore) LatestToolSamples(ctx context.Context) ([]model.ToolSample, error) {
	rows := make([]model.ToolSample, 0)
	err := s.db.WithContext(ctx).
		Where(`tool_id = (
			SELECT t2.tool_id FROM tool t2
			WHERE t2.machine_id = tool.machine_id
			ORDER BY t2.update_timestamp DESC, t2.tool_id DESC
			LIMIT 1)`).
		Order("machine_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("latest tool samples: %w", err)
	}
	return rows, nil
}

// LatestAxisSamples returns exactly one axis_data row per axis, chosen the
// same way as LatestToolSamples but partitioned by axis_id.
func (s *gormStore) LatestAxisSamples(ctx context.Context) ([]model.AxisData, error) {
	rows := make([]model.AxisData, 0)
	err := s.db.WithContext(ctx).
		Where(`axis_data_id = (
			SELECT a2.axis_data_id FROM axis_data a2
			WHERE a2.axis_id = axis_data.axis_id
			ORDER BY a2.update_timestamp DESC, a2.axis_data_id DESC
			LIMIT 1)`).
		Order("axis_id").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("latest axis samples: %w", err)
	}
	return rows, nil
}

// AxisDataWindow returns the axis samples of one machine written since the
// given instant, optionally filtered to a set of axis names. An empty result
// is valid; the API layer decides whether that is a 404.
func (s *gormStore) AxisDataWindow(ctx context.Context, machineID int64, axisNames []string, since time.Time) ([]model.AxisData, error) {
	rows := make([]model.AxisData, 0)
	tx := s.db.WithContext(ctx).
		Joins("JOIN axis ON axis.axis_id = axis_data.axis_id").
		Where("axis.machine_id = ?", machineID).
		Where("axis_data.update_timestamp >= ?", since)

	if len(axisNames) > 0 {
		tx = tx.Where("axis.axis_name IN ?", axisNames)
	}

	if err := tx.Order("axis_data.update_timestamp").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("axis data window for machine %d: %w", machineID, err)
	}
	return rows, nil
}
