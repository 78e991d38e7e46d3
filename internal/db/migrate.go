package db

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mkajic20/smart-charger-backend/internal/model"
)

// Models lists every table in dependency order.
func Models() []interface{} {
	return []interface{}{
		&model.Role{},
		&model.User{},
		&model.Card{},
		&model.Charger{},
		&model.Event{},
	}
}

// openSessionIndexes keep at most one open event per charger and per card on
// dialects with partial indexes.
var openSessionIndexes = []string{
	"CREATE UNIQUE INDEX IF NOT EXISTS ux_events_open_charger ON events (charger_id) WHERE end_time IS NULL",
	"CREATE UNIQUE INDEX IF NOT EXISTS ux_events_open_card ON events (card_id) WHERE end_time IS NULL",
}

// Migrate creates the schema, the open-session indexes and the seeded roles.
func Migrate(gormDB *gorm.DB) error {
	if err := gormDB.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}

	switch gormDB.Dialector.Name() {
	case "postgres", "sqlite":
		for _, stmt := range openSessionIndexes {
			if err := gormDB.Exec(stmt).Error; err != nil {
				return fmt.Errorf("create open session index: %w", err)
			}
		}
	}

	roles := model.DefaultRoles()
	if err := gormDB.Clauses(clause.OnConflict{DoNothing: true}).Create(&roles).Error; err != nil {
		return fmt.Errorf("seed roles: %w", err)
	}
	return nil
}

// Reset drops every table. Used when RESET_DB is set.
func Reset(gormDB *gorm.DB) error {
	models := Models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := gormDB.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return nil
}
