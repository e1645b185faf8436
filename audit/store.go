package audit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ryan12324/OpenAssistant-sub003/db/models"
	"gorm.io/gorm"
)

// Store persists entries through GORM. It never updates or deletes rows on
// the recording path; Purge exists for out-of-band retention jobs only.
type Store struct {
	gdb         *gorm.DB
	maxFieldLen int
}

func NewStore(gdb *gorm.DB, maxFieldLen int) (*Store, error) {
	if gdb == nil {
		return nil, fmt.Errorf("audit: nil gorm db")
	}
	if maxFieldLen <= 0 {
		maxFieldLen = DefaultMaxFieldLen
	}
	return &Store{gdb: gdb, maxFieldLen: maxFieldLen}, nil
}

func (s *Store) Record(ctx context.Context, e Entry) error {
	if !e.Action.Valid() {
		return fmt.Errorf("audit: unknown action %q", e.Action)
	}
	row := models.AuditEntry{
		ID:         strings.TrimSpace(e.ID),
		UserID:     e.UserID,
		Action:     string(e.Action),
		SkillID:    e.SkillID,
		Input:      Truncate(e.Input, s.maxFieldLen),
		Output:     Truncate(e.Output, s.maxFieldLen),
		Source:     e.Source,
		DurationMs: e.DurationMs,
		Success:    e.Success,
		CreatedAt:  e.CreatedAt,
	}
	if row.ID == "" {
		row.ID = uuid.NewString()
	}
	if row.CreatedAt.IsZero() {
		row.CreatedAt = time.Now().UTC()
	}
	return s.gdb.WithContext(ctx).Create(&row).Error
}

func (s *Store) Query(ctx context.Context, userID string, f Filter, p Page) ([]Entry, error) {
	q := s.gdb.WithContext(ctx).Model(&models.AuditEntry{}).Order("created_at DESC, id DESC")
	if strings.TrimSpace(userID) != "" {
		q = q.Where("user_id = ?", userID)
	}
	if f.Action != "" {
		q = q.Where("action = ?", string(f.Action))
	}
	if f.SkillID != "" {
		q = q.Where("skill_id = ?", f.SkillID)
	}
	if f.Success != nil {
		q = q.Where("success = ?", *f.Success)
	}
	if p.Limit > 0 {
		q = q.Limit(p.Limit)
	}
	if p.Offset > 0 {
		q = q.Offset(p.Offset)
	}

	var rows []models.AuditEntry
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]Entry, 0, len(rows))
	for _, r := range rows {
		out = append(out, Entry{
			ID:         r.ID,
			UserID:     r.UserID,
			Action:     Action(r.Action),
			SkillID:    r.SkillID,
			Input:      r.Input,
			Output:     r.Output,
			Source:     r.Source,
			DurationMs: r.DurationMs,
			Success:    r.Success,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}

// Purge deletes entries older than the cutoff. Retention is driven by a
// separate scheduled job, never by the dispatch path.
func (s *Store) Purge(ctx context.Context, olderThan time.Time) (int64, error) {
	res := s.gdb.WithContext(ctx).Where("created_at < ?", olderThan).Delete(&models.AuditEntry{})
	return res.RowsAffected, res.Error
}
