package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"cnc-telemetry-backend/internal/model"
)

var (
	// ErrAxisNotFound is returned when an axis sample arrives for a
	// (machine, axis) pair that was never provisioned. Callers drop the
	// sample instead of failing the stream.
	ErrAxisNotFound = errors.New("axis not found")

	// ErrInvalidToken is returned when a subscriber token cannot be
	// resolved to an identity.
	ErrInvalidToken = errors.New("invalid token")
)

// AxisSample carries one generated kinematics sample into the store.
// DistanceToGo is intentionally absent; the store derives it.
type AxisSample struct {
	ActualPosition float64
	TargetPosition float64
	Homed          bool
	Acceleration   float64
	Velocity       float64
}

// Store defines all database operations used by the scheduler, the
// broadcaster, and the API layer.
type Store interface {
	UpsertMachine(ctx context.Context, machineID int64, name string, toolCapacity int) error
	UpsertAxis(ctx context.Context, machineID int64, axisName string, maxAccel, maxVel float64) error

	AppendToolSample(ctx context.Context, machineID int64, toolOffset, feedrate float64) error
	AppendToolUsage(ctx context.Context, machineID int64, toolInUse int) error
	AppendAxisSample(ctx context.Context, machineID int64, axisName string, sample AxisSample) error

	LatestMachines(ctx context.Context) ([]model.Machine, error)
	LatestToolSamples(ctx context.Context) ([]model.ToolSample, error)
	LatestAxisSamples(ctx context.Context) ([]model.AxisData, error)
	AxisDataWindow(ctx context.Context, machineID int64, axisNames []string, since time.Time) ([]model.AxisData, error)

	ResolveToken(ctx context.Context, token string) (string, error)

	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertMachine inserts a machine row, ignoring the insert when the primary
// key already exists. Existing rows are never overwritten.
func (s *gormStore) UpsertMachine(ctx context.Context, machineID int64, name string, toolCapacity int) error {
	machine := model.Machine{
		MachineID:    machineID,
		MachineName:  name,
		ToolCapacity: toolCapacity,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine_id"}},
		DoNothing: true,
	}).Create(&machine).Error
	if err != nil {
		return fmt.Errorf("upsert machine %d: %w", machineID, err)
	}
	return nil
}

// UpsertAxis inserts an axis definition, ignoring conflicts on the
// (machine_id, axis_name) logical key.
func (s *gormStore) UpsertAxis(ctx context.Context, machineID int64, axisName string, maxAccel, maxVel float64) error {
	axis := model.Axis{
		MachineID:       machineID,
		AxisName:        axisName,
		MaxAcceleration: round3(maxAccel),
		MaxVelocity:     round3(maxVel),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "machine_id"}, {Name: "axis_name"}},
		DoNothing: true,
	}).Create(&axis).Error
	if err != nil {
		return fmt.Errorf("upsert axis %s for machine %d: %w", axisName, machineID, err)
	}
	return nil
}

// AppendToolSample appends one tool telemetry row. A foreign-key violation
// for an unknown machine surfaces as the wrapped driver error.
func (s *gormStore) AppendToolSample(ctx context.Context, machineID int64, toolOffset, feedrate float64) error {
	row := model.ToolSample{
		MachineID:       machineID,
		ToolOffset:      toolOffset,
		Feedrate:        feedrate,
		UpdateTimestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append tool sample for machine %d: %w", machineID, err)
	}
	return nil
}

// AppendToolUsage appends one tool-in-use event row.
func (s *gormStore) AppendToolUsage(ctx context.Context, machineID int64, toolInUse int) error {
	row := model.ToolUsage{
		MachineID:       machineID,
		ToolInUse:       toolInUse,
		UpdateTimestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append tool usage for machine %d: %w", machineID, err)
	}
	return nil
}

// AppendAxisSample resolves the surrogate axis id for (machineID, axisName)
// and appends one sample. An unresolved axis returns ErrAxisNotFound so the
// caller can drop the sample without aborting its round. distance_to_go is
// computed here from the rounded operands.
func (s *gormStore) AppendAxisSample(ctx context.Context, machineID int64, axisName string, sample AxisSample) error {
	var axis model.Axis
	err := s.db.WithContext(ctx).
		Select("axis_id").
		Where("machine_id = ? AND axis_name = ?", machineID, axisName).
		First(&axis).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("axis %s of machine %d: %w", axisName, machineID, ErrAxisNotFound)
	}
	if err != nil {
		return fmt.Errorf("resolve axis %s for machine %d: %w", axisName, machineID, err)
	}

	actual := round3(sample.ActualPosition)
	target := round3(sample.TargetPosition)
	row := model.AxisData{
		AxisID:          axis.AxisID,
		ActualPosition:  actual,
		TargetPosition:  target,
		DistanceToGo:    round3(target - actual),
		Homed:           sample.Homed,
		Acceleration:    round3(sample.Acceleration),
		Velocity:        round3(sample.Velocity),
		UpdateTimestamp: time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("append axis sample for axis %d: %w", axis.AxisID, err)
	}
	return nil
}

// round3 rounds to the precision of the decimal(10,3) columns so the stored
// distance_to_go identity holds exactly.
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
