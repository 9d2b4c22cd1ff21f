package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VectorSet describes the code and decoder a batch of reference vectors was produced with
type VectorSet struct {
	ID          string            `gorm:"primarykey;size:36" json:"id"`
	Feedback    string            `gorm:"size:16;not null" json:"feedback"`
	Forward     []string          `gorm:"serializer:json;not null" json:"forward"`
	FrameLength int               `gorm:"not null" json:"frame_length"`
	Buffered    bool              `gorm:"not null" json:"buffered"`
	Operator    string            `gorm:"size:16;not null" json:"operator"`
	Variant     string            `gorm:"size:16;not null" json:"variant"`
	Precision   string            `gorm:"size:8;not null" json:"precision"`
	Seed        uint64            `json:"seed"`
	Amplitude   float64           `json:"amplitude"`
	Sigma       float64           `json:"sigma"`
	Vectors     []ReferenceVector `gorm:"foreignKey:SetID;constraint:OnDelete:CASCADE" json:"vectors,omitempty"`
	CreatedAt   time.Time         `gorm:"index" json:"created_at"`
}

// TableName specifies the table name for VectorSet
func (VectorSet) TableName() string {
	return "vector_sets"
}

// BeforeCreate assigns an identifier and creation time when missing
func (s *VectorSet) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	return nil
}

// Code returns the generator description, e.g. "013/015,017"
func (s *VectorSet) Code() string {
	return fmt.Sprintf("%s/%s", s.Feedback, strings.Join(s.Forward, ","))
}

// ReferenceVector is one decoded frame: channel LLRs in, extrinsic LLRs out
type ReferenceVector struct {
	ID    uint      `gorm:"primarykey" json:"id"`
	SetID string    `gorm:"size:36;index:idx_set_index,unique;not null" json:"set_id"`
	Index int       `gorm:"column:frame_index;index:idx_set_index,unique;not null" json:"index"`
	Info  []uint8   `gorm:"serializer:json" json:"info"`
	Sys   []float64 `gorm:"serializer:json" json:"sys"`
	Par   []float64 `gorm:"serializer:json" json:"par"`
	Ext   []float64 `gorm:"serializer:json" json:"ext"`
}

// TableName specifies the table name for ReferenceVector
func (ReferenceVector) TableName() string {
	return "reference_vectors"
}
