package postgresadapter

import (
	"strings"
	"time"

	"github.com/MF-patino/HerculaneumTranscriptor/contexts/transcription/scroll-annotation/domain/entities"
)

type scrollModel struct {
	ID           string    `gorm:"column:id;primaryKey"`
	DisplayName  string    `gorm:"column:display_name;not null"`
	Description  string    `gorm:"column:description"`
	ImageKey     string    `gorm:"column:image_key;not null"`
	ThumbnailURL string    `gorm:"column:thumbnail_url"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (scrollModel) TableName() string {
	return "scrolls"
}

func scrollModelFromEntity(scroll entities.Scroll) scrollModel {
	return scrollModel{
		ID:           strings.TrimSpace(scroll.ScrollID),
		DisplayName:  scroll.DisplayName,
		Description:  scroll.Description,
		ImageKey:     scroll.ImageKey,
		ThumbnailURL: scroll.ThumbnailURL,
		CreatedAt:    scroll.CreatedAt.UTC(),
		UpdatedAt:    scroll.UpdatedAt.UTC(),
	}
}

func (m scrollModel) toEntity() entities.Scroll {
	return entities.Scroll{
		ScrollID:     m.ID,
		DisplayName:  m.DisplayName,
		Description:  m.Description,
		ImageKey:     m.ImageKey,
		ThumbnailURL: m.ThumbnailURL,
		CreatedAt:    m.CreatedAt.UTC(),
		UpdatedAt:    m.UpdatedAt.UTC(),
	}
}

type regionModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	ScrollID       string    `gorm:"column:scroll_id;not null;index:regions_scroll_updated_idx,priority:1"`
	AuthorID       string    `gorm:"column:author_id;not null"`
	X              float64   `gorm:"column:x"`
	Y              float64   `gorm:"column:y"`
	Width          float64   `gorm:"column:width"`
	Height         float64   `gorm:"column:height"`
	Transcription  string    `gorm:"column:transcription"`
	CertaintyScore float64   `gorm:"column:certainty_score;not null;default:-1"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;index:regions_scroll_updated_idx,priority:2"`
}

func (regionModel) TableName() string {
	return "regions"
}

func regionModelFromEntity(region entities.Region) regionModel {
	return regionModel{
		ID:             strings.TrimSpace(region.RegionID),
		ScrollID:       strings.TrimSpace(region.ScrollID),
		AuthorID:       region.AuthorID,
		X:              region.Coordinates.X,
		Y:              region.Coordinates.Y,
		Width:          region.Coordinates.Width,
		Height:         region.Coordinates.Height,
		Transcription:  region.Transcription,
		CertaintyScore: region.CertaintyScore,
		CreatedAt:      region.CreatedAt.UTC(),
		UpdatedAt:      region.UpdatedAt.UTC(),
	}
}

func (m regionModel) toEntity() entities.Region {
	return entities.Region{
		RegionID: m.ID,
		ScrollID: m.ScrollID,
		AuthorID: m.AuthorID,
		Coordinates: entities.Coordinates{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Transcription:  m.Transcription,
		CertaintyScore: m.CertaintyScore,
		CreatedAt:      m.CreatedAt.UTC(),
		UpdatedAt:      m.UpdatedAt.UTC(),
	}
}

type voteModel struct {
	UserID    string    `gorm:"column:user_id;primaryKey"`
	RegionID  string    `gorm:"column:region_id;primaryKey;index"`
	Value     int       `gorm:"column:value;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (voteModel) TableName() string {
	return "votes"
}

func voteModelFromEntity(vote entities.Vote) voteModel {
	return voteModel{
		UserID:    strings.TrimSpace(vote.UserID),
		RegionID:  strings.TrimSpace(vote.RegionID),
		Value:     vote.Value,
		CreatedAt: vote.CreatedAt.UTC(),
		UpdatedAt: vote.UpdatedAt.UTC(),
	}
}

func (m voteModel) toEntity() entities.Vote {
	return entities.Vote{
		UserID:    m.UserID,
		RegionID:  m.RegionID,
		Value:     m.Value,
		CreatedAt: m.CreatedAt.UTC(),
		UpdatedAt: m.UpdatedAt.UTC(),
	}
}
