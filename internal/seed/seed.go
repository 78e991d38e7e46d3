package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/mkajic20/smart-charger-backend/internal/auth"
	"github.com/mkajic20/smart-charger-backend/internal/model"
	"github.com/mkajic20/smart-charger-backend/internal/repository"
)

// Admin describes the administrator account to provision.
type Admin struct {
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Password  string `yaml:"password"`
}

// Charger describes a demo charging station.
type Charger struct {
	Name      string  `yaml:"name"`
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`
}

// Data is the content of a seed file.
type Data struct {
	Admin    Admin     `yaml:"admin"`
	Chargers []Charger `yaml:"chargers"`
}

// Report counts what a seed run changed.
type Report struct {
	AdminCreated    bool
	ChargersCreated int
	ChargersUpdated int
}

// Load reads a YAML seed file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	return &data, nil
}

// Run provisions the admin and upserts the chargers by name. Existing admins
// keep their password; their role and status are restored.
func Run(ctx context.Context, store repository.Store, hasher auth.Hasher, data *Data) (Report, error) {
	var report Report
	if strings.TrimSpace(data.Admin.Email) == "" {
		return report, errors.New("seed: admin email is required")
	}

	err := store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		admin, err := tx.Users().FindByEmail(ctx, data.Admin.Email)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if len(data.Admin.Password) < 6 {
				return errors.New("seed: admin password must have at least 6 characters")
			}
			hash, err := hasher.Hash(data.Admin.Password)
			if err != nil {
				return fmt.Errorf("hash admin password: %w", err)
			}
			admin = &model.User{
				FirstName:    data.Admin.FirstName,
				LastName:     data.Admin.LastName,
				Email:        data.Admin.Email,
				PasswordHash: &hash,
				Enabled:      true,
				RoleID:       model.RoleAdmin,
			}
			if err := tx.Users().Create(ctx, admin); err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			report.AdminCreated = true
		case err != nil:
			return fmt.Errorf("find admin: %w", err)
		default:
			if err := tx.Users().SetRole(ctx, admin.ID, model.RoleAdmin); err != nil {
				return fmt.Errorf("restore admin role: %w", err)
			}
			if err := tx.Users().SetEnabled(ctx, admin.ID, true); err != nil {
				return fmt.Errorf("enable admin: %w", err)
			}
		}

		for _, c := range data.Chargers {
			existing, err := tx.Chargers().FindByName(ctx, c.Name)
			switch {
			case errors.Is(err, gorm.ErrRecordNotFound):
				charger := &model.Charger{Name: c.Name, Latitude: c.Latitude, Longitude: c.Longitude, CreatorID: admin.ID}
				if err := tx.Chargers().Create(ctx, charger); err != nil {
					return fmt.Errorf("create charger %q: %w", c.Name, err)
				}
				report.ChargersCreated++
			case err != nil:
				return fmt.Errorf("find charger %q: %w", c.Name, err)
			default:
				existing.Latitude, existing.Longitude = c.Latitude, c.Longitude
				if err := tx.Chargers().UpdateLocation(ctx, existing); err != nil {
					return fmt.Errorf("update charger %q: %w", c.Name, err)
				}
				report.ChargersUpdated++
			}
		}
		return nil
	})
	return report, err
}
