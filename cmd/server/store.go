package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fekuna/storefront-inventory-service/config"
	"github.com/fekuna/storefront-inventory-service/internal/attribute"
	attrRepoPkg "github.com/fekuna/storefront-inventory-service/internal/attribute/repository"
	"github.com/fekuna/storefront-inventory-service/internal/category"
	catRepoPkg "github.com/fekuna/storefront-inventory-service/internal/category/repository"
	"github.com/fekuna/storefront-inventory-service/internal/inventory"
	invRepoPkg "github.com/fekuna/storefront-inventory-service/internal/inventory/repository"
	"github.com/fekuna/storefront-inventory-service/internal/pkg/logger"
	"github.com/fekuna/storefront-inventory-service/internal/product"
	prodRepoPkg "github.com/fekuna/storefront-inventory-service/internal/product/repository"
	"github.com/fekuna/storefront-inventory-service/internal/sale"
	saleRepoPkg "github.com/fekuna/storefront-inventory-service/internal/sale/repository"
	"github.com/fekuna/storefront-inventory-service/internal/store"
)

type repositories struct {
	categories category.Repository
	attributes attribute.Repository
	products   product.Repository
	inventory  inventory.Repository
	sales      sale.Repository
}

// openStore builds every repository on the configured driver. The returned
// func releases the driver's resources.
func openStore(ctx context.Context, cfg *config.Config, log logger.ZapLogger) (repositories, func(), error) {
	switch cfg.Store.Driver {
	case "memory":
		log.Warn("Using in-memory store, data is lost on restart")
		return memoryRepositories(), func() {}, nil
	case "postgres", "":
		pgCfg := &store.PostgresConfig{
			Host:            cfg.Postgres.Host,
			Port:            cfg.Postgres.Port,
			User:            cfg.Postgres.User,
			Password:        cfg.Postgres.Password,
			DBName:          cfg.Postgres.DBName,
			SSLMode:         cfg.Postgres.SSLMode,
			MaxOpenConns:    cfg.Postgres.MaxOpenConns,
			MaxIdleConns:    cfg.Postgres.MaxIdleConns,
			ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
			ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
		}
		if cfg.Store.MigrateOnStart {
			if err := store.Migrate(cfg.Store.MigrationsURL, pgCfg); err != nil {
				return repositories{}, nil, fmt.Errorf("migrate: %w", err)
			}
			log.Info("Migrations applied", zap.String("source", cfg.Store.MigrationsURL))
		}

		db, err := store.NewPostgres(ctx, pgCfg)
		if err != nil {
			return repositories{}, nil, err
		}
		log.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

		return repositories{
			categories: catRepoPkg.NewPGRepository(db),
			attributes: attrRepoPkg.NewPGRepository(db),
			products:   prodRepoPkg.NewPGRepository(db),
			inventory:  invRepoPkg.NewPGRepository(db),
			sales:      saleRepoPkg.NewPGRepository(db),
		}, func() { db.Close() }, nil
	default:
		return repositories{}, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

// memoryRepositories links the in-process repositories through the same
// references the postgres schema declares.
func memoryRepositories() repositories {
	categories := catRepoPkg.NewMemoryRepository()
	attributes := attrRepoPkg.NewMemoryRepository(categories.SubcategoryExists)
	categories.SubcategoryInUse = attributes.InSubcategory
	products := prodRepoPkg.NewMemoryRepository()

	return repositories{
		categories: categories,
		attributes: attributes,
		products:   products,
		inventory:  invRepoPkg.NewMemoryRepository(products.Exists),
		sales:      saleRepoPkg.NewMemoryRepository(products.Exists),
	}
}
