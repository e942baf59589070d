package seeder

import (
	"github.com/cogestio/espaceclient/internal/database"
	"github.com/cogestio/espaceclient/internal/env"

	"github.com/cradoe/gopass"
)

// seedAdminAccount creates the initial admin profile on a fresh database so
// the first operator can log in and provision everyone else. It is a no-op
// when the account already exists.
func (seeder *Seeder) seedAdminAccount() error {
	email := env.GetString("SEED_ADMIN_EMAIL", "admin@cogestio.example")
	password := env.GetString("SEED_ADMIN_PASSWORD", "")

	if password == "" {
		return nil
	}

	exists, err := seeder.DB.CheckIfEmailExist(email)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashedPassword, err := gopass.Hash(password)
	if err != nil {
		return err
	}

	_, err = seeder.DB.InsertProfile(&database.Profile{
		FirstName:      "Admin",
		LastName:       "Cogestio",
		Email:          email,
		Role:           database.RoleAdmin,
		HashedPassword: hashedPassword,
	}, nil)

	return err
}
