package models

import (
	"time"
)

// Repair statuses as stored by the monitored portal application.
const (
	RepairRequested  = "REQUESTED"
	RepairPending    = "PENDING"
	RepairApproved   = "APPROVED"
	RepairInProgress = "IN_PROGRESS"
	RepairCompleted  = "COMPLETED"
	RepairDenied     = "DENIED"
)

// Repair mirrors the portal's technician_portal_repair table. The monitor
// reads it to gauge queue health; it never writes application data.
type Repair struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	TechnicianID *uint     `gorm:"index" json:"technician_id"`
	CustomerID   *uint     `gorm:"index" json:"customer_id"`
	UnitNumber   string    `json:"unit_number"`
	RepairDate   time.Time `gorm:"index" json:"repair_date"`
	Description  string    `json:"description"`
	QueueStatus  string    `gorm:"index" json:"queue_status"`
	DamageType   string    `json:"damage_type"`
	Cost         *float64  `json:"cost"`
}

func (Repair) TableName() string { return "technician_portal_repair" }

// Technician mirrors technician_portal_technician.
type Technician struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	UserID    uint `gorm:"index" json:"user_id"`
	IsActive  bool `json:"is_active"`
	IsManager bool `json:"is_manager"`
}

func (Technician) TableName() string { return "technician_portal_technician" }

// Customer mirrors core_customer.
type Customer struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

func (Customer) TableName() string { return "core_customer" }

// PortalUser mirrors the Django auth_user table of the monitored
// application; LastLogin feeds the activity monitor.
type PortalUser struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	IsActive   bool       `json:"is_active"`
	IsStaff    bool       `json:"is_staff"`
	LastLogin  *time.Time `gorm:"index" json:"last_login"`
	DateJoined time.Time  `json:"date_joined"`
}

func (PortalUser) TableName() string { return "auth_user" }
