package database

import (
	"embed"
	"fmt"
	"log"

	"github.com/2025-Database-Soongsil/database/internal/models"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed presets/presets.yaml
var presetsFS embed.FS

type presetSupplement struct {
	Code       string `yaml:"code"`
	Name       string `yaml:"name"`
	Brand      string `yaml:"brand"`
	DosageInfo string `yaml:"dosage_info"`
	Caution    string `yaml:"caution"`
}

type presetNutrient struct {
	Code              string             `yaml:"code"`
	Name              string             `yaml:"name"`
	RecommendedPeriod string             `yaml:"recommended_period"`
	Description       string             `yaml:"description"`
	Supplements       []presetSupplement `yaml:"supplements"`
}

type presetFile struct {
	Nutrients []presetNutrient `yaml:"nutrients"`
	Tips      []string         `yaml:"tips"`
}

// SeedCatalog populates the nutrient/supplement preset catalog and tips from
// the embedded YAML. Idempotent: rows are matched by code, existing rows are
// left untouched.
func SeedCatalog(db *gorm.DB) error {
	raw, err := presetsFS.ReadFile("presets/presets.yaml")
	if err != nil {
		return fmt.Errorf("failed to read embedded presets: %w", err)
	}

	var presets presetFile
	if err := yaml.Unmarshal(raw, &presets); err != nil {
		return fmt.Errorf("failed to parse presets: %w", err)
	}

	var nutrientCount, supplementCount int
	for _, pn := range presets.Nutrients {
		nutrient := models.Nutrient{
			Code:              pn.Code,
			Name:              pn.Name,
			Description:       pn.Description,
			RecommendedPeriod: pn.RecommendedPeriod,
		}
		if err := db.Where("code = ?", pn.Code).FirstOrCreate(&nutrient).Error; err != nil {
			return fmt.Errorf("failed to seed nutrient %s: %w", pn.Code, err)
		}
		nutrientCount++

		for _, ps := range pn.Supplements {
			supplement := models.Supplement{
				Code:       ps.Code,
				Name:       ps.Name,
				Brand:      ps.Brand,
				DosageInfo: ps.DosageInfo,
				Caution:    ps.Caution,
			}
			if err := db.Where("code = ?", ps.Code).FirstOrCreate(&supplement).Error; err != nil {
				return fmt.Errorf("failed to seed supplement %s: %w", ps.Code, err)
			}

			join := models.SupplementNutrient{
				SupplementID: supplement.ID,
				NutrientID:   nutrient.ID,
			}
			if err := db.Where(&join).FirstOrCreate(&join).Error; err != nil {
				return fmt.Errorf("failed to link supplement %s: %w", ps.Code, err)
			}
			supplementCount++
		}
	}

	var tipCount int64
	db.Model(&models.Tip{}).Count(&tipCount)
	if tipCount == 0 {
		for _, content := range presets.Tips {
			if err := db.Create(&models.Tip{Content: content}).Error; err != nil {
				return fmt.Errorf("failed to seed tip: %w", err)
			}
		}
		tipCount = int64(len(presets.Tips))
	}

	log.Printf("Seeded catalog: %d nutrients, %d supplements, %d tips", nutrientCount, supplementCount, tipCount)
	return nil
}

// SeedDevData populates the database with development test data.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB) error {
	var existingUser models.User
	result := db.Where("email = ?", "dev@babyprep.local").First(&existingUser)
	if result.Error == nil {
		log.Println("Seed data already exists, skipping")
		return nil
	}

	user := models.User{
		Email:      "dev@babyprep.local",
		Password:   "devpass123",
		Provider:   models.ProviderLocal,
		Nickname:   "개발용 계정",
		IsPregnant: false,
	}
	if err := db.Create(&user).Error; err != nil {
		return err
	}

	setting := models.UserSetting{
		UserID:              user.ID,
		NotificationEnabled: true,
		DefaultNotifyTime:   "09:00",
	}
	if err := db.Create(&setting).Error; err != nil {
		return err
	}

	var folic models.Supplement
	if err := db.Where("code = ?", "folic800").First(&folic).Error; err == nil {
		assignment := models.UserSupplement{
			UserID:       user.ID,
			SupplementID: folic.ID,
			StartDate:    user.CreatedAt,
			Cycle:        models.CycleDaily,
			TimeOfDay:    "08:00",
		}
		if err := db.Create(&assignment).Error; err != nil {
			return err
		}
		log.Println("Seeded dev data: 1 user, 1 setting, 1 supplement assignment")
	} else {
		log.Println("Seeded dev data: 1 user, 1 setting (catalog empty, no assignment)")
	}

	return nil
}
