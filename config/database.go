package config

import (
	"fmt"

	"github.com/harborline/CruiseLink/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB initializes the database connection
func InitDB() {
	config, err := LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		config.DBHost, config.DBPort, config.DBUser, config.DBPassword, config.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		panic(fmt.Sprintf("Failed to connect to database: %v", err))
	}

	DB = db

	err = DB.AutoMigrate(
		&models.Admin{},
		&models.AffiliateProfile{},
		&models.AffiliateRelation{},
		&models.AffiliateLead{},
		&models.LeadTransferEvent{},
		&models.AffiliateSale{},
		&models.AffiliateCommissionTier{},
		&models.AffiliatePayslip{},
		&models.AuditInteraction{},
	)
	if err != nil {
		panic(fmt.Sprintf("Failed to migrate database: %v", err))
	}
}
