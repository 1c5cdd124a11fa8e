package mentor

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"

	DefaultContext = "general"

	// TranscriptSchemaVersion tags the serialized Messages layout.
	TranscriptSchemaVersion = 1
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// MentorSession stores the transcript as an opaque JSON document. Readers
// decode it with DecodeTranscript, which never fails.
type MentorSession struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index:idx_mentor_session_student_updated,priority:1" json:"studentId"`

	Messages      datatypes.JSON `gorm:"column:messages;not null" json:"-"`
	SchemaVersion int            `gorm:"column:schema_version;not null;default:1" json:"-"`
	Context       string         `gorm:"column:context;not null;default:'general'" json:"context"`

	// Version guards read-modify-write of Messages.
	Version int64 `gorm:"column:version;not null;default:0" json:"-"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null;index:idx_mentor_session_student_updated,priority:2" json:"updatedAt"`
}

func (MentorSession) TableName() string { return "mentor_session" }

func (s *MentorSession) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Context == "" {
		s.Context = DefaultContext
	}
	if s.SchemaVersion == 0 {
		s.SchemaVersion = TranscriptSchemaVersion
	}
	if len(s.Messages) == 0 {
		s.Messages = datatypes.JSON("[]")
	}
	return nil
}
