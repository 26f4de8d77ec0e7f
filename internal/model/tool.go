package model

import "time"

// ToolSample is one append-only tool telemetry row for a machine.
type ToolSample struct {
	ToolID          int64     `gorm:"column:tool_id;primaryKey;autoIncrement" json:"tool_id"`
	MachineID       int64     `gorm:"column:machine_id;not null;index" json:"machine_id"`
	ToolOffset      float64   `gorm:"column:tool_offset;not null" json:"tool_offset"`
	Feedrate        float64   `gorm:"column:feedrate;not null" json:"feedrate"`
	UpdateTimestamp time.Time `gorm:"column:update_timestamp;not null" json:"update_timestamp"`

	Machine Machine `gorm:"foreignKey:MachineID;references:MachineID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ToolSample) TableName() string { return "tool" }

// ToolUsage records which tool slot a machine had loaded at a point in time.
type ToolUsage struct {
	UsageID         int64     `gorm:"column:usage_id;primaryKey;autoIncrement" json:"usage_id"`
	MachineID       int64     `gorm:"column:machine_id;not null;index" json:"machine_id"`
	ToolInUse       int       `gorm:"column:tool_in_use;not null" json:"tool_in_use"`
	UpdateTimestamp time.Time `gorm:"column:update_timestamp;not null" json:"update_timestamp"`

	Machine Machine `gorm:"foreignKey:MachineID;references:MachineID;constraint:OnDelete:CASCADE" json:"-"`
}

func (ToolUsage) TableName() string { return "tool_usage" }
