package main

import (
	"context"
	"flag"
	"github.com/burenotti/nutrition_counselling/internal/adapter/storage"
	counsellingstorage "github.com/burenotti/nutrition_counselling/internal/adapter/storage/counselling"
	"github.com/burenotti/nutrition_counselling/internal/config"
	"github.com/google/uuid"
	"github.com/leporo/sqlf"
	"github.com/samber/lo"
	"log/slog"
	"os"
	"time"
)

// Fixed identifiers so the fixtures can be opened from a browser shell
// without looking them up.
var (
	completeID   = uuid.MustParse("6f1b2c4e-0a35-4d7e-9c1a-0b5d2f8e7a01")
	incompleteID = uuid.MustParse("6f1b2c4e-0a35-4d7e-9c1a-0b5d2f8e7a02")
	derivedID    = uuid.MustParse("6f1b2c4e-0a35-4d7e-9c1a-0b5d2f8e7a03")
	memberID     = uuid.MustParse("a3c9d1e2-5b7f-4a60-8e21-7c4d9f0b1e11")
)

func fixtures() []counsellingstorage.Fixture {
	member := counsellingstorage.Fixture{
		MemberID: memberID.String(),
		FullName: "Sample Member",
		Height:   lo.ToPtr(175.0),
		Age:      lo.ToPtr(34),
		Gender:   lo.ToPtr(0),
	}

	complete := member
	complete.CounsellingID = completeID.String()
	complete.BMR = lo.ToPtr(1650.0)
	complete.TDEE = lo.ToPtr(2310.0)
	complete.TargetCalories = lo.ToPtr(2100.0)
	complete.ActivityLevel = lo.ToPtr(2)
	complete.Weight = lo.ToPtr(78.0)

	incomplete := member
	incomplete.CounsellingID = incompleteID.String()
	incomplete.BMR = lo.ToPtr(1650.0)
	incomplete.ActivityLevel = lo.ToPtr(2)
	incomplete.Weight = lo.ToPtr(78.0)

	// TDEE is left out so it gets derived on load.
	derived := member
	derived.CounsellingID = derivedID.String()
	derived.BMR = lo.ToPtr(1650.0)
	derived.TargetCalories = lo.ToPtr(2100.0)
	derived.ActivityLevel = lo.ToPtr(3)

	return []counsellingstorage.Fixture{complete, incomplete, derived}
}

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "config/config.yaml", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := config.LoadDotEnv(".env"); err != nil {
		panic(err)
	}
	cfg := config.MustLoad(configPath)
	if cfg.RecordStore.Driver != config.DriverPostgres {
		logger.Error("seeding is only supported for the postgres record store")
		os.Exit(1)
	}

	sqlf.SetDialect(sqlf.PostgreSQL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := storage.Open(ctx, cfg.RecordStore.DSN)
	if err != nil {
		panic("failed to connect database: " + err.Error())
	}
	defer db.Close()

	st := counsellingstorage.NewPostgresStorage(db)
	if err := st.Migrate(ctx); err != nil {
		logger.Error("failed to migrate", "error", err)
		os.Exit(1)
	}

	for _, f := range fixtures() {
		if err := st.Upsert(ctx, f); err != nil {
			logger.Error("failed to seed fixture", "counselling_id", f.CounsellingID, "error", err)
			os.Exit(1)
		}
		logger.Info("seeded fixture", "counselling_id", f.CounsellingID)
	}
}
