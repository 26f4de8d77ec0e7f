package model

import "time"

// AxisNames is the fixed set of logical axes every machine carries.
var AxisNames = []string{"X", "Y", "Z", "A", "C"}

// Axis is the static definition of one machine axis. The logical key is
// (machine_id, axis_name); axis_id is the surrogate key axis_data rows hang
// off.
type Axis struct {
	AxisID          int64   `gorm:"column:axis_id;primaryKey;autoIncrement" json:"axis_id"`
	MachineID       int64   `gorm:"column:machine_id;not null;index;uniqueIndex:uq_axis_machine_name" json:"machine_id"`
	AxisName        string  `gorm:"column:axis_name;size:1;not null;uniqueIndex:uq_axis_machine_name" json:"axis_name"`
	MaxAcceleration float64 `gorm:"column:max_acceleration;type:decimal(10,3);not null" json:"max_acceleration"`
	MaxVelocity     float64 `gorm:"column:max_velocity;type:decimal(10,3);not null" json:"max_velocity"`

	Machine Machine `gorm:"foreignKey:MachineID;references:MachineID;constraint:OnDelete:CASCADE" json:"-"`
}

func (Axis) TableName() string { return "axis" }

// AxisData is one append-only kinematics sample for an axis. DistanceToGo is
// derived at write time, never settable by callers.
type AxisData struct {
	AxisDataID      int64     `gorm:"column:axis_data_id;primaryKey;autoIncrement" json:"axis_data_id"`
	AxisID          int64     `gorm:"column:axis_id;not null;index" json:"axis_id"`
	ActualPosition  float64   `gorm:"column:actual_position;type:decimal(10,3);not null" json:"actual_position"`
	TargetPosition  float64   `gorm:"column:target_position;type:decimal(10,3);not null" json:"target_position"`
	DistanceToGo    float64   `gorm:"column:distance_to_go;type:decimal(10,3);not null" json:"distance_to_go"`
	Homed           bool      `gorm:"column:homed;not null" json:"homed"`
	Acceleration    float64   `gorm:"column:acceleration;type:decimal(10,3);not null" json:"acceleration"`
	Velocity        float64   `gorm:"column:velocity;type:decimal(10,3);not null" json:"velocity"`
	UpdateTimestamp time.Time `gorm:"column:update_timestamp;not null" json:"update_timestamp"`

	Axis Axis `gorm:"foreignKey:AxisID;references:AxisID;constraint:OnDelete:CASCADE" json:"-"`
}

func (AxisData) TableName() string { return "axis_data" }
