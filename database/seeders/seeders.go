package seeders

import (
	"log"

	"jadwali_go/database"
	"jadwali_go/models"
	"jadwali_go/services/timetable"
)

// SeedAll runs all seeders
func SeedAll() {
	log.Println("Starting database seeding...")

	SeedCanonicalSpans()

	log.Println("Database seeding completed successfully!")
}

// SeedCanonicalSpans fills the canonical span table from the built-in
// defaults. Existing rows always win; the seeder never overwrites values an
// operator has adjusted.
func SeedCanonicalSpans() {
	var count int64
	database.DB.Model(&models.CanonicalSpan{}).Count(&count)
	if count > 0 {
		log.Println("Canonical spans already seeded, skipping...")
		return
	}

	defaults := timetable.DefaultTables().CanonicalSpans
	rows := make([]models.CanonicalSpan, 0, len(defaults))
	for courseCode, span := range defaults {
		rows = append(rows, models.CanonicalSpan{
			CourseCode:   courseCode,
			ExpectedSpan: span,
			Notes:        "built-in default",
		})
	}

	if err := database.DB.Create(&rows).Error; err != nil {
		log.Printf("Failed to seed canonical spans: %v", err)
		return
	}
	log.Printf("Seeded %d canonical spans", len(rows))
}
