package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/fruitables/fruitables/config"
	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/imagestore"
	"github.com/fruitables/fruitables/internal/shop"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// ImageStoreProvider provides the upload image store
type ImageStoreProvider interface {
	ImageStore() *imagestore.Store
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ServiceProvider provides the catalog and storefront services
type ServiceProvider interface {
	Catalog() *catalog.Service
	Tags() *catalog.TagService
	Categories() *catalog.CategoryService
	Shop() *shop.QueryService
}

// AppContext combines all provider interfaces for full application context.
// Handlers should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	ImageStoreProvider
	SchedulerProvider
	ServiceProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
