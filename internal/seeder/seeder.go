package seeder

import (
	"log"

	"github.com/cogestio/espaceclient/internal/database"
)

type Seeder struct {
	DB *database.DB
}

func New(db *database.DB) *Seeder {
	return &Seeder{
		DB: db,
	}
}

func (seeder *Seeder) Run() {
	if err := seeder.seedAdminAccount(); err != nil {
		log.Printf("Error seeding admin account: %v", err)
	}
}
