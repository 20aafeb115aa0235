package db

import (
	"fmt"

	"github.com/kasuganosora/platformerkit/server/config"
	dbmysql "github.com/kasuganosora/platformerkit/server/db/mysql"
	dbsqlite "github.com/kasuganosora/platformerkit/server/db/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	ModeMemory = "memory"
	ModeSQLite = "sqlite"
	ModeMySQL  = "mysql"
)

// Open returns a *gorm.DB for the configured database mode.
// SQL statements are logged to logger at debug level.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	gl := NewGormLogger(logger)
	switch cfg.Mode {
	case ModeMemory:
		return dbsqlite.OpenMemory(gl)
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath, gl)
	case ModeMySQL:
		return dbmysql.Open(cfg.MySQLDSN, cfg.MySQLMaxOpen, cfg.MySQLMaxIdle, cfg.MySQLMaxLife, gl)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
}
