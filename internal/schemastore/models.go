package schemastore

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ContentType is a stored content schema.
type ContentType struct {
	ID         uuid.UUID            `gorm:"type:char(36);primaryKey"`
	Name       string               `gorm:"size:255;uniqueIndex;not null"`
	Open       bool                 `gorm:"column:is_open;not null"`
	Properties []PropertyDefinition `gorm:"foreignKey:ContentTypeID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PropertyDefinition is a declared property of a ContentType. An empty Kind
// marks a complex property.
type PropertyDefinition struct {
	ID            uuid.UUID `gorm:"type:char(36);primaryKey"`
	ContentTypeID uuid.UUID `gorm:"type:char(36);index;not null"`
	Path          string    `gorm:"size:512;not null"`
	Kind          string    `gorm:"size:64"`
	Collection    bool      `gorm:"not null"`
}

// BeforeCreate assigns a key to new content types.
func (c *ContentType) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// BeforeCreate assigns a key to new property definitions.
func (p *PropertyDefinition) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
