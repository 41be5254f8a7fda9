package model

import (
	"database/sql"
	"time"
)

// GenerationImage is one row per produced image. Written best-effort
// when MySQL is configured.
type GenerationImage struct {
	Id            int            `json:"id" gorm:"primaryKey"`
	ImageId       string         `json:"image_id" gorm:"column:image_id;type:varchar(64);index"`
	Provider      string         `json:"provider" gorm:"column:provider;type:varchar(20)"`
	Model         string         `json:"model" gorm:"column:model;type:varchar(64)"`
	Prompt        string         `json:"prompt" gorm:"column:prompt;type:varchar(5000)"`
	Style         string         `json:"style" gorm:"column:style;type:varchar(32)"`
	Resolution    string         `json:"resolution" gorm:"column:resolution;type:varchar(20)"`
	MimeType      string         `json:"mime_type" gorm:"column:mime_type;type:varchar(32)"`
	SizeBytes     int            `json:"size_bytes" gorm:"column:size_bytes;type:int"`
	FileName      sql.NullString `json:"file_name" gorm:"column:file_name;type:varchar(255)"`
	URL           sql.NullString `json:"url" gorm:"column:url;type:varchar(500)"`
	RevisedPrompt sql.NullString `json:"revised_prompt" gorm:"column:revised_prompt;type:varchar(5000)"`
	CreatedAt     time.Time      `json:"created_at" gorm:"column:created_at;type:datetime;not null;default:CURRENT_TIMESTAMP"`
}

func (GenerationImage) TableName() string {
	return "generation_image"
}
