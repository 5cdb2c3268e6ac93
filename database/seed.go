package database

import (
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/concours-mef/api/model"
	"github.com/concours-mef/api/utils/auth"
)

// Seed populates the referential tables and a default admin account. All
// inserts are idempotent so the seeder can run on every deploy.
func Seed(db *gorm.DB) error {
	if err := seedCities(db); err != nil {
		return err
	}
	if err := seedSpecialties(db); err != nil {
		return err
	}
	if err := seedCenters(db); err != nil {
		return err
	}
	if err := seedContest(db); err != nil {
		return err
	}
	if err := seedAdmin(db); err != nil {
		return err
	}

	log.Println("Database seeding completed.")
	return nil
}

func seedCities(db *gorm.DB) error {
	names := []string{
		"Rabat", "Casablanca", "Marrakech", "Fes", "Tanger",
		"Agadir", "Oujda", "Meknes", "Kenitra", "Tetouan",
	}

	for _, name := range names {
		city := model.City{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&city).Error; err != nil {
			return fmt.Errorf("failed to seed city %s: %w", name, err)
		}
	}
	return nil
}

func seedSpecialties(db *gorm.DB) error {
	specialties := []model.Specialty{
		{Code: "INFO", Label: "Ingenierie Informatique", SeatCount: 25},
		{Code: "FIN", Label: "Finances Publiques", SeatCount: 40},
		{Code: "AUDIT", Label: "Audit et Controle de Gestion", SeatCount: 15},
		{Code: "STAT", Label: "Statistique et Economie Appliquee", SeatCount: 20},
		{Code: "DROIT", Label: "Droit Public et Administration", SeatCount: 30},
	}

	for _, specialty := range specialties {
		record := specialty
		if err := db.Where("code = ?", specialty.Code).FirstOrCreate(&record).Error; err != nil {
			return fmt.Errorf("failed to seed specialty %s: %w", specialty.Code, err)
		}
	}
	return nil
}

func seedCenters(db *gorm.DB) error {
	centers := []struct {
		Code     string
		Capacity int
		City     string
	}{
		{"RAB-01", 200, "Rabat"},
		{"CAS-01", 300, "Casablanca"},
		{"MAR-01", 150, "Marrakech"},
		{"FES-01", 120, "Fes"},
	}

	var specialties []model.Specialty
	if err := db.Find(&specialties).Error; err != nil {
		return err
	}

	for _, c := range centers {
		var city model.City
		if err := db.Where("name = ?", c.City).First(&city).Error; err != nil {
			return fmt.Errorf("failed to resolve city %s: %w", c.City, err)
		}

		center := model.ExamCenter{
			Code:     c.Code,
			Capacity: c.Capacity,
			Active:   true,
			CityID:   city.ID,
		}
		if err := db.Where("code = ?", c.Code).FirstOrCreate(&center).Error; err != nil {
			return fmt.Errorf("failed to seed center %s: %w", c.Code, err)
		}

		// Every seeded center offers every seeded specialty
		if err := db.Model(&center).Association("Specialties").Replace(specialties); err != nil {
			return fmt.Errorf("failed to link specialties for %s: %w", c.Code, err)
		}
	}
	return nil
}

func seedContest(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Contest{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	var specialties []model.Specialty
	if err := db.Find(&specialties).Error; err != nil {
		return err
	}
	var centers []model.ExamCenter
	if err := db.Find(&centers).Error; err != nil {
		return err
	}

	now := time.Now()
	contest := model.Contest{
		Reference:   fmt.Sprintf("CONC-%d-0001", now.UnixMilli()),
		Title:       "Concours de recrutement des cadres du Ministere",
		OpenDate:    now.AddDate(0, 0, -7),
		CloseDate:   now.AddDate(0, 1, 0),
		ExamDate:    now.AddDate(0, 2, 0),
		SeatCount:   130,
		Published:   true,
		Specialties: specialties,
		Centers:     centers,
	}

	if err := db.Create(&contest).Error; err != nil {
		return fmt.Errorf("failed to seed contest: %w", err)
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var existing model.User
	if err := db.Where("username = ?", "admin").First(&existing).Error; err == nil {
		return nil
	}

	hash, err := auth.HashPassword("ChangeMe!2024")
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
		Email:        "admin@mef.gov.ma",
		Enabled:      true,
	}

	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	log.Println("Seeded default admin account (username: admin). Change its password immediately.")
	return nil
}
