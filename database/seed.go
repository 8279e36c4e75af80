package database

import (
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/finassist/finchat-api/model"
	"github.com/finassist/finchat-api/utils/auth"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	if err := s.SeedConfigSettings(); err != nil {
		return fmt.Errorf("failed to seed config settings: %w", err)
	}

	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

// DefaultConfigSettings returns the settings catalog inserted on first start.
// Value and DefaultValue start equal; admins edit Value at runtime.
func DefaultConfigSettings() []model.ConfigSetting {
	return []model.ConfigSetting{
		{
			Name: "chunk_size", Value: "800", DefaultValue: "800",
			DataType: model.SettingTypeInt, MinValue: floatPtr(100), MaxValue: floatPtr(2000),
			Category:    "ingestion",
			Description: "Target chunk length in characters for document splitting",
		},
		{
			Name: "chunk_overlap", Value: "100", DefaultValue: "100",
			DataType: model.SettingTypeInt, MinValue: floatPtr(0), MaxValue: floatPtr(500),
			Category:    "ingestion",
			Description: "Characters of overlap between consecutive chunks",
		},
		{
			Name: "top_k_chunks", Value: "5", DefaultValue: "5",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(20),
			Category:    "retrieval",
			Description: "Maximum chunks retrieved per query",
		},
		{
			Name: "similarity_threshold", Value: "0.7", DefaultValue: "0.7",
			DataType: model.SettingTypeFloat, MinValue: floatPtr(0), MaxValue: floatPtr(1),
			Category:    "retrieval",
			Description: "Minimum cosine similarity for a chunk to count as relevant",
		},
		{
			Name: "max_conversation_turns", Value: "20", DefaultValue: "20",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(100),
			Category:    "chat",
			Description: "Conversation turns included in the prompt history",
		},
		{
			Name: "max_file_size_mb", Value: "10", DefaultValue: "10",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(100),
			Category:    "ingestion",
			Description: "Maximum upload size in megabytes",
		},
		{
			Name: "gemini_temperature", Value: "0.7", DefaultValue: "0.7",
			DataType: model.SettingTypeFloat, MinValue: floatPtr(0), MaxValue: floatPtr(2.0),
			Category:    "llm",
			Description: "Sampling temperature for answer generation",
		},
		{
			Name: "gemini_max_tokens", Value: "500", DefaultValue: "500",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(8192),
			Category:    "llm",
			Description: "Maximum output tokens per generated answer",
		},
		{
			Name: "gemini_chat_model", Value: "models/gemini-2.5-flash", DefaultValue: "models/gemini-2.5-flash",
			DataType: model.SettingTypeString, MaxLength: intPtr(100),
			Category:    "llm",
			Description: "Gemini model used for answer generation",
		},
		{
			Name: "gemini_embedding_model", Value: "models/text-embedding-004", DefaultValue: "models/text-embedding-004",
			DataType: model.SettingTypeString, MaxLength: intPtr(100),
			Category:    "llm",
			Description: "Gemini model used for embeddings",
		},
		{
			Name: "session_inactive_days", Value: "30", DefaultValue: "30",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(365),
			Category:    "chat",
			Description: "Days of inactivity before a session is evicted",
		},
		{
			Name: "metrics_retention_days", Value: "30", DefaultValue: "30",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(365),
			Category:    "api",
			Description: "Days of API metric samples kept before pruning",
		},
		{
			Name: "jwt_access_token_expire_minutes", Value: "30", DefaultValue: "30",
			DataType: model.SettingTypeInt, MinValue: floatPtr(1), MaxValue: floatPtr(1440),
			Category:    "auth",
			Description: "Access token lifetime in minutes, applied to new logins",
		},
	}
}

// SeedConfigSettings inserts any missing settings from the default catalog.
// Existing rows are never overwritten, so admin edits survive restarts.
func (s *Seeder) SeedConfigSettings() error {
	for _, setting := range DefaultConfigSettings() {
		var count int64
		if err := s.db.Model(&model.ConfigSetting{}).Where("name = ?", setting.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return err
		}
		log.Printf("✅ Seeded config setting: %s\n", setting.Name)
	}
	return nil
}

// SeedAdminUser creates the bootstrap admin account
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("is_admin = ?", true).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminUsername := os.Getenv("ADMIN_USERNAME")
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminUsername == "" || adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_USERNAME, ADMIN_EMAIL and ADMIN_PASSWORD not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		Username:     adminUsername,
		Email:        adminEmail,
		PasswordHash: passwordHash,
		FullName:     "System Administrator",
		IsActive:     true,
		IsAdmin:      true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Username)
	return nil
}
