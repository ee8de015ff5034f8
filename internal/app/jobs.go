package app

import (
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fruitables/fruitables/internal/domain"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// orphanGracePeriod keeps freshly written uploads out of the sweep while
// their transaction may still be in flight.
const orphanGracePeriod = 24 * time.Hour

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@hourly", a.SweepOrphanUploads)
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("created_at < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.CatalogOpLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// SweepOrphanUploads removes image files no product row references anymore.
// Files younger than the grace period are skipped.
func (a *Application) SweepOrphanUploads() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	files, err := a.images.List()
	if err != nil {
		zap.L().Error("orphan sweep failed to list uploads", zap.Error(err))
		return
	}
	if len(files) == 0 {
		return
	}

	var referenced []string
	err = a.gormDB.Model(&domain.Product{}).
		Where("image <> ''").
		Pluck("image", &referenced).Error
	if err != nil {
		zap.L().Error("orphan sweep failed to query products", zap.Error(err))
		return
	}

	inUse := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		inUse[name] = struct{}{}
	}

	cutoff := time.Now().Add(-orphanGracePeriod)
	removed := 0
	for _, f := range files {
		if _, ok := inUse[f.Name]; ok {
			continue
		}
		if f.ModTime.After(cutoff) {
			continue
		}
		if err := a.images.Remove(f.Name); err != nil {
			zap.L().Warn("orphan sweep failed to remove file", zap.String("file", f.Name), zap.Error(err))
			continue
		}
		removed++
	}
	if removed > 0 {
		zap.L().Info("orphan sweep removed unreferenced uploads", zap.Int("count", removed))
	}
}
