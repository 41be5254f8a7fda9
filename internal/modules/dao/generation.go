package dao

import (
	"github.com/reusedev/draw-mcp/internal/components/mysql"
	"github.com/reusedev/draw-mcp/internal/modules/model"
)

func CreateGenerationImage(row *model.GenerationImage) error {
	return mysql.DB.Create(row).Error
}
