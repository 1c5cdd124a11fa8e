package curriculum

import "time"

// CurriculumVersion records each catalogue load so reseeding an unchanged file is a no-op.
type CurriculumVersion struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Version      int       `gorm:"column:version;not null" json:"version"`
	Checksum     string    `gorm:"column:checksum;not null;uniqueIndex" json:"checksum"`
	MissionCount int       `gorm:"column:mission_count;not null" json:"missionCount"`
	SeededAt     time.Time `gorm:"column:seeded_at;not null" json:"seededAt"`
}

func (CurriculumVersion) TableName() string { return "curriculum_version" }
