package model

// Machine represents one CNC machine in the fleet. Rows are created once at
// provisioning and never mutated afterwards.
type Machine struct {
	MachineID    int64  `gorm:"column:machine_id;primaryKey;autoIncrement:false" json:"machine_id"`
	MachineName  string `gorm:"column:machine_name;size:255;not null" json:"machine_name"`
	ToolCapacity int    `gorm:"column:tool_capacity;not null" json:"tool_capacity"`
}

// TableName keeps the table name identical to the provisioned schema.
func (Machine) TableName() string { return "machine" }
