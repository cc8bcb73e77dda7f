package sqlite

import (
	"strings"
	"time"
)

type userModel struct {
	ID           int64     `gorm:"primaryKey;autoIncrement"`
	Username     string    `gorm:"size:150;not null;uniqueIndex"`
	PasswordHash string    `gorm:"not null"`
	IsActive     bool      `gorm:"not null;default:true"`
	CreatedAt    time.Time `gorm:"not null"`
}

func (userModel) TableName() string {
	return "users"
}

type profileModel struct {
	ID       int64     `gorm:"primaryKey;autoIncrement"`
	UserID   int64     `gorm:"not null;uniqueIndex"`
	User     userModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Role     string    `gorm:"size:20;not null;default:employee;check:chk_profile_role,role IN ('employee','manager','head','admin')"`
	Progress int       `gorm:"not null;default:0;check:chk_profile_progress,progress BETWEEN 0 AND 100"`
}

func (profileModel) TableName() string {
	return "employee_profiles"
}

type taskModel struct {
	ID            int64         `gorm:"primaryKey;autoIncrement"`
	Title         string        `gorm:"size:200;not null"`
	Description   string        `gorm:"not null;default:''"`
	AssignedTo    int64         `gorm:"not null;index"`
	Assignee      profileModel  `gorm:"foreignKey:AssignedTo;constraint:OnDelete:CASCADE"`
	AssignedBy    *int64        `gorm:"index"`
	Assigner      *profileModel `gorm:"foreignKey:AssignedBy;constraint:OnDelete:SET NULL"`
	Status        string        `gorm:"size:20;not null;default:pending;check:chk_task_status,status IN ('pending','in_progress','done')"`
	Progress      int           `gorm:"not null;default:0;check:chk_task_progress,progress BETWEEN 0 AND 100"`
	Review        string        `gorm:"not null;default:''"`
	AttachmentKey *string
	DueDate       *time.Time
	CreatedAt     time.Time `gorm:"not null"`
}

func (taskModel) TableName() string {
	return "tasks"
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
