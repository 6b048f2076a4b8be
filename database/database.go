// File: /database/database.go
package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"eventhub-api/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Initialize opens the record store for the configured driver.
func Initialize(driver, databaseURL string, debug bool) (*gorm.DB, error) {
	dialector, err := dialectorFor(driver, databaseURL)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   newLogger(os.Stdout, debug),
		DisableForeignKeyConstraintWhenMigrating: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if strings.EqualFold(driver, "sqlite") {
		// SQLite allows a single writer; serialise through one connection.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// newLogger writes SQL warnings to w, and every statement when debug is set.
// Missing rows are an expected outcome of lookups and are not logged.
func newLogger(w io.Writer, debug bool) logger.Interface {
	logLevel := logger.Warn
	if debug {
		logLevel = logger.Info
	}
	return logger.New(log.New(w, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logLevel,
		IgnoreRecordNotFoundError: true,
		Colorful:                  false,
	})
}

func dialectorFor(driver, databaseURL string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "mysql", "":
		return mysql.Open(databaseURL), nil
	case "postgres", "postgresql":
		return postgres.Open(databaseURL), nil
	case "sqlite":
		return sqlite.Open(databaseURL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}
}

func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Host{},
		&models.Event{},
		&models.Participant{},
		&models.Payment{},
		&models.Review{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := addCustomIndexes(db); err != nil {
		return fmt.Errorf("failed to add custom indexes: %w", err)
	}

	return nil
}

func addCustomIndexes(db *gorm.DB) error {
	// Reservation sweeps scan unpaid seats by expiry
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_participants_unpaid_reserved ON participants(payment_status, reserved_until)").Error; err != nil {
		log.Printf("Warning: Could not create index for participants reservations: %v", err)
	}

	// Revenue aggregation joins paid payments to events
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_payments_event_status ON payments(event_id, status)").Error; err != nil {
		log.Printf("Warning: Could not create index for payments: %v", err)
	}

	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_events_host_status ON events(host_id, status)").Error; err != nil {
		log.Printf("Warning: Could not create index for events: %v", err)
	}

	return nil
}

// SeedData creates the initial admin account when the users table is empty.
func SeedData(db *gorm.DB, adminEmail, adminPassword string) error {
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}

	if userCount > 0 {
		log.Println("Database already has data, skipping seed")
		return nil
	}
	if adminEmail == "" || adminPassword == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	admin := models.User{
		ID:       uuid.New().String(),
		Name:     "Administrator",
		Email:    adminEmail,
		Password: string(hashed),
		Role:     models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}

	log.Printf("Database seeded with admin user %s", adminEmail)
	return nil
}
