package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/fruitables/fruitables/internal/catalog"
	"github.com/fruitables/fruitables/internal/domain"
)

// subscribeAudit wires the catalog mutation events into the audit trail.
// Handlers run on the publishing goroutine; a failed insert only loses the
// audit row, never the mutation itself.
func (a *Application) subscribeAudit() {
	record := func(entity string) func(action string, id int64, detail string) {
		return func(action string, id int64, detail string) {
			err := a.gormDB.Create(&domain.CatalogOpLog{
				Action:    action,
				Entity:    entity,
				EntityID:  id,
				Detail:    detail,
				CreatedAt: time.Now(),
			}).Error
			if err != nil {
				zap.L().Warn("failed to write audit entry",
					zap.String("entity", entity),
					zap.String("action", action),
					zap.Int64("id", id),
					zap.Error(err))
			}
		}
	}

	_ = a.bus.Subscribe(catalog.EventProduct, record("product"))
	_ = a.bus.Subscribe(catalog.EventTag, record("tag"))
	_ = a.bus.Subscribe(catalog.EventCategory, record("category"))
}
