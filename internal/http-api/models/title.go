package models

import "time"

type Title struct {
	ID          int64   `json:"id" gorm:"primaryKey;autoIncrement"`
	Name        string  `json:"name" gorm:"size:256;not null;uniqueIndex:idx_titles_name_year"`
	Year        int     `json:"year" gorm:"not null;uniqueIndex:idx_titles_name_year"`
	Description *string `json:"description,omitempty" gorm:"type:text"`
	CategoryID  *int64  `json:"-" gorm:"index"`

	// Rating is the live mean of associated review scores, filled by the
	// repository's aggregate subquery. Nil when no reviews exist.
	Rating *float64 `json:"rating" gorm:"-:migration;->"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Associations
	Category *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL;"`
	Genres   []Genre   `json:"genres,omitempty" gorm:"many2many:title_genres;constraint:OnDelete:CASCADE;"`
}

func (Title) TableName() string {
	return "titles"
}
