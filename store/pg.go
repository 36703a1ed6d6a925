package store

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/imkonsowa/places-chat/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type Pg struct {
	db *gorm.DB
}

func NewPg(connStr string) (*Pg, error) {
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(postgres.Open(connStr), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	return New(db), nil
}

// New wraps an already opened connection.
func New(db *gorm.DB) *Pg {
	return &Pg{db: db}
}

// Migrate creates the places and query_logs tables. The places table needs PostGIS for its geometry column.
func (p *Pg) Migrate(ctx context.Context) error {
	if err := p.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS postgis").Error; err != nil {
		return fmt.Errorf("failed to enable postgis: %w", err)
	}

	return p.db.WithContext(ctx).AutoMigrate(&models.Place{}, &models.QueryLog{})
}

// SaveOrUpdatePlace upserts the place keyed on its provider place id.
func (p *Pg) SaveOrUpdatePlace(ctx context.Context, place *models.Place) error {
	if err := p.upsertPlace(ctx, place).Error; err != nil {
		return fmt.Errorf("failed to save place %s: %w", place.PlaceID, err)
	}

	return nil
}

func (p *Pg) upsertPlace(ctx context.Context, place *models.Place) *gorm.DB {
	return p.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "place_id"}},
			UpdateAll: true,
		}).
		Create(place)
}

func (p *Pg) ListPlaces(ctx context.Context) ([]models.Place, error) {
	var places []models.Place
	if err := p.db.WithContext(ctx).Order("place_id").Find(&places).Error; err != nil {
		return nil, fmt.Errorf("failed to list places: %w", err)
	}

	return places, nil
}

func (p *Pg) CreateQueryLog(ctx context.Context, entry *models.QueryLog) error {
	if err := p.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to save query log: %w", err)
	}

	return nil
}

func (p *Pg) ListQueryLogs(ctx context.Context) ([]models.QueryLog, error) {
	var logs []models.QueryLog
	if err := p.db.WithContext(ctx).Order("id").Find(&logs).Error; err != nil {
		return nil, fmt.Errorf("failed to list query logs: %w", err)
	}

	return logs, nil
}

func (p *Pg) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
