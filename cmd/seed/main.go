package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"sim-activation-portal/internal/config"
	"sim-activation-portal/internal/domain/model"
	pg "sim-activation-portal/internal/infra/db/postgres"
	"sim-activation-portal/internal/infra/logging"
	red "sim-activation-portal/internal/infra/redis"
	"sim-activation-portal/internal/infra/web"
	"sim-activation-portal/internal/usecase"

	"github.com/shopspring/decimal"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	adminEmail := flag.String("admin", "admin@example.com", "email of the admin account to ensure")
	flush := flag.Bool("flush-cache", false, "flush the redis database before seeding")
	flag.Parse()

	// ---- Config ----
	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := logging.New(cfg.Log, true)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 4)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()
	if err := pg.Migrate(ctx, pool); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("redis: %v", err)
	}
	defer redisClient.Close()
	if *flush {
		if err := redisClient.FlushDB(ctx); err != nil {
			log.Fatalf("flush redis: %v", err)
		}
	}

	txManager := pg.NewTxManager(pool)
	offerRepo := pg.NewOfferRepoCacheDecorator(pg.NewPostgresOfferRepo(pool), redisClient, cfg.Redis.TTL)
	offerUC := usecase.NewOfferUseCase(offerRepo, txManager, logger)
	userUC := usecase.NewUserUseCase(pg.NewPostgresUserRepo(pool), txManager, logger)

	// ---- Offers ----
	offers, err := offerUC.List(ctx, false)
	if err != nil {
		log.Fatalf("list offers: %v", err)
	}
	if len(offers) > 0 {
		fmt.Printf("%d offers already present. No changes.\n", len(offers))
		for _, o := range offers {
			fmt.Printf("  - %s (id=%s, %s HT, %s)\n", o.Name, o.ID, o.PriceExclTax.StringFixed(2), o.Recurrence)
		}
	} else {
		seed := []model.OfferInput{
			{Name: "Essentiel 5 Go", PriceExclTax: decimal.RequireFromString("8.25"), Recurrence: model.RecurrenceMonthly, DataCapGB: 5},
			{Name: "Confort 20 Go", PriceExclTax: decimal.RequireFromString("16.58"), ActivationFee: decimal.RequireFromString("10"), Recurrence: model.RecurrenceMonthly, DataCapGB: 20, IsFeatured: true},
			{Name: "Voyage 3 Go", PriceExclTax: decimal.RequireFromString("4.13"), Recurrence: model.RecurrenceWeekly, DataCapGB: 3},
			{Name: "Annuel 100 Go", PriceExclTax: decimal.RequireFromString("149"), Recurrence: model.RecurrenceYearly, DataCapGB: 100},
		}
		for _, in := range seed {
			o, err := offerUC.Create(ctx, in)
			if err != nil {
				log.Fatalf("create offer %q: %v", in.Name, err)
			}
			fmt.Printf("seeded: %s (id=%s, %s HT / %s TTC)\n", o.Name, o.ID, o.PriceExclTax.StringFixed(2), o.PriceInclTax.StringFixed(2))
		}
	}

	// ---- Admin ----
	admin, err := userUC.RegisterOrFetch(ctx, *adminEmail, "Admin", model.RoleAdmin)
	if err != nil {
		log.Fatalf("admin: %v", err)
	}
	token, err := web.NewAuthManager(cfg.Session).Token(admin.ID, admin.Role)
	if err != nil {
		log.Fatalf("mint admin token: %v", err)
	}
	fmt.Printf("admin %s (id=%s)\nAuthorization: Bearer %s\n", admin.Email, admin.ID, token)
	fmt.Println("✅ Seeding complete.")
}
