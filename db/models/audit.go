// Package models holds the persisted row shapes.
package models

import "time"

// AuditEntry is one immutable invocation record. Rows are append-only:
// nothing in the harness updates or deletes them.
type AuditEntry struct {
	ID         string    `gorm:"primaryKey;size:36"`
	UserID     string    `gorm:"index;size:128"`
	Action     string    `gorm:"index;size:32"`
	SkillID    string    `gorm:"index;size:128"`
	Input      string    `gorm:"type:text"`
	Output     string    `gorm:"type:text"`
	Source     string    `gorm:"size:64"`
	DurationMs int64
	Success    bool
	CreatedAt  time.Time `gorm:"index"`
}

func (AuditEntry) TableName() string { return "audit_entries" }
