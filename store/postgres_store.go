package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Aashish23092/kyc-document-verification/dto"
)

// VerificationRecord is one persisted person verdict.
type VerificationRecord struct {
	ID            uint   `gorm:"primaryKey"`
	PersonID      string `gorm:"uniqueIndex;not null"`
	OverallStatus string `gorm:"not null"`
	FailedRules   int
	Payload       string `gorm:"type:jsonb"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (VerificationRecord) TableName() string {
	return "verification_records"
}

// PostgresStore upserts results into the verification_records table.
type PostgresStore struct {
	db *gorm.DB
}

// OpenPostgres connects to dsn and migrates the schema.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connection to db failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get db from GORM: %w", err)
	}
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&VerificationRecord{}); err != nil {
		return nil, fmt.Errorf("automigration failed for VerificationRecord: %w", err)
	}
	log.Println("Connected to database")
	return db, nil
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Save stores each result, replacing any earlier verdict for the same person.
func (s *PostgresStore) Save(ctx context.Context, results []dto.PersonResult) error {
	if len(results) == 0 {
		return nil
	}

	rows := make([]VerificationRecord, 0, len(results))
	for _, r := range results {
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encode result for %s: %w", r.PersonID, err)
		}
		rows = append(rows, VerificationRecord{
			PersonID:      r.PersonID,
			OverallStatus: string(r.OverallStatus),
			FailedRules:   r.FailedRules,
			Payload:       string(payload),
		})
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "person_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"overall_status", "failed_rules", "payload", "updated_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("save verification records: %w", err)
	}
	return nil
}

// Find returns the stored result for personID.
func (s *PostgresStore) Find(ctx context.Context, personID string) (*dto.PersonResult, error) {
	var row VerificationRecord
	if err := s.db.WithContext(ctx).Where("person_id = ?", personID).First(&row).Error; err != nil {
		return nil, fmt.Errorf("find verification record %s: %w", personID, err)
	}

	var result dto.PersonResult
	if err := json.Unmarshal([]byte(row.Payload), &result); err != nil {
		return nil, fmt.Errorf("decode verification record %s: %w", personID, err)
	}
	return &result, nil
}
