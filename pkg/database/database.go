package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"giftbot/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database представляет подключение к базе данных
type Database struct {
	DB *gorm.DB
}

// NewDatabase создает новое подключение к базе данных.
// driver: "sqlite" (path - файл базы) или "mysql" (dsn).
func NewDatabase(driver, path, dsn string) (*Database, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		// Создаем директорию для базы данных если она не существует
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dialector = sqlite.Open(path + "?_foreign_keys=on&_busy_timeout=5000")
	}

	// SQLite допускает одного писателя: сериализуем транзакции на одном соединении
	return Open(dialector, logger.Warn, driver != "mysql")
}

// Open подключается через готовый диалект и выполняет миграцию
func Open(dialector gorm.Dialector, level logger.LogLevel, singleConn bool) (*Database, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	database := &Database{DB: db}

	if singleConn {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql db: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	// Автомиграция моделей
	if err := database.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// NewMemory открывает чистую SQLite базу в памяти; используется в тестах и seed.
// Каждое новое соединение к :memory: видит свою пустую базу, поэтому соединение одно.
func NewMemory() (*Database, error) {
	return Open(sqlite.Open("file::memory:?_foreign_keys=on"), logger.Silent, true)
}

// Migrate выполняет миграцию базы данных
func (d *Database) Migrate() error {
	return d.DB.AutoMigrate(
		&models.Group{},
		&models.Participant{},
		&models.Assignment{},
		&models.Notification{},
	)
}

// Ping проверяет доступность базы для health-check
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает подключение к базе данных
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
