package mysql

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/reusedev/draw-mcp/config"
	"github.com/reusedev/draw-mcp/internal/modules/model"
)

var DB *gorm.DB

// InitMySQL opens the history database and migrates its table. The
// caller treats failure as "run without history", not a fatal error.
func InitMySQL(cfg config.MySQL) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	if err := db.AutoMigrate(&model.GenerationImage{}); err != nil {
		return err
	}
	DB = db
	return nil
}

func Enabled() bool {
	return DB != nil
}
