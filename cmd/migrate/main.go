// Command migrate creates the database schema and optionally seeds the first
// manager account.
//
// Usage:
//
//	migrate            run schema migration
//	migrate -seed      migrate, then create the initial manager if absent
//
// The seeded manager credentials come from CASHDRAWER_SEED_USERNAME,
// CASHDRAWER_SEED_PASSWORD and CASHDRAWER_SEED_SUPERVISOR_CODE.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/erp/cashdrawer/internal/domain/cashdrawer"
	"github.com/erp/cashdrawer/internal/domain/identity"
	"github.com/erp/cashdrawer/internal/infrastructure/config"
	"github.com/erp/cashdrawer/internal/infrastructure/logger"
	"github.com/erp/cashdrawer/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	seed := flag.Bool("seed", false, "seed the initial manager account after migrating")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	log.Info("Running schema migration")
	err = db.DB.AutoMigrate(
		&cashdrawer.CashRegister{},
		&cashdrawer.CashTransaction{},
		&cashdrawer.CashAudit{},
		&identity.User{},
	)
	if err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Migration completed")

	if *seed {
		if err := seedManager(db, log); err != nil {
			log.Fatal("Seeding failed", zap.Error(err))
		}
	}
}

func seedManager(db *persistence.Database, log *zap.Logger) error {
	username := os.Getenv("CASHDRAWER_SEED_USERNAME")
	password := os.Getenv("CASHDRAWER_SEED_PASSWORD")
	code := os.Getenv("CASHDRAWER_SEED_SUPERVISOR_CODE")
	if username == "" {
		username = "admin"
	}
	if password == "" {
		log.Warn("CASHDRAWER_SEED_PASSWORD not set, skipping seed")
		return nil
	}

	ctx := context.Background()
	users := persistence.NewGormUserRepository(db.DB)

	existing, err := users.FindByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		log.Info("Seed user already exists", zap.String("username", username))
		return nil
	}

	user, err := identity.NewUser(username, "Administrator", password, cashdrawer.RoleManager)
	if err != nil {
		return err
	}
	if code != "" {
		if err := user.SetSupervisorCode(code); err != nil {
			return err
		}
	}
	if err := users.Save(ctx, user); err != nil {
		return err
	}

	log.Info("Seeded manager account", zap.String("username", username))
	return nil
}
