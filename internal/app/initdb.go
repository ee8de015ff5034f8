package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/fruitables/fruitables/internal/domain"
)

// checkCategories initializes default storefront categories
func (a *Application) checkCategories() {
	defaultCategories := []domain.Category{
		{Name: "Fruits"},
		{Name: "Vegetables"},
		{Name: "Juices"},
		{Name: "Dried Fruits"},
	}

	for _, category := range defaultCategories {
		var count int64
		a.gormDB.Model(&domain.Category{}).Where("name = ?", category.Name).Count(&count)
		if count == 0 {
			category.CreatedAt = time.Now()
			category.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&category).Error; err != nil {
				zap.L().Error("failed to create default category", zap.String("name", category.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default category", zap.String("name", category.Name))
			}
		}
	}
}

// checkTags initializes default product tags
func (a *Application) checkTags() {
	defaultTags := []domain.Tag{
		{Name: "fresh"},
		{Name: "organic"},
		{Name: "seasonal"},
		{Name: "discounted"},
	}

	for _, tag := range defaultTags {
		var count int64
		a.gormDB.Model(&domain.Tag{}).Where("LOWER(TRIM(name)) = ?", tag.Name).Count(&count)
		if count == 0 {
			tag.CreatedAt = time.Now()
			tag.UpdatedAt = time.Now()
			if err := a.gormDB.Create(&tag).Error; err != nil {
				zap.L().Error("failed to create default tag", zap.String("name", tag.Name), zap.Error(err))
			} else {
				zap.L().Info("initialized default tag", zap.String("name", tag.Name))
			}
		}
	}
}
