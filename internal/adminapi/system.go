package adminapi

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"gorm.io/gorm"

	"github.com/fruitables/fruitables/internal/domain"
	"github.com/fruitables/fruitables/internal/webserver"
)

// SystemHandler serves the admin system status endpoint.
type SystemHandler struct {
	db      *gorm.DB
	started time.Time
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
	return &SystemHandler{db: db, started: time.Now()}
}

func (h *SystemHandler) Register(g *echo.Group) {
	g.GET("/system/status", h.status)
}

type systemStatus struct {
	Hostname   string           `json:"hostname"`
	OS         string           `json:"os"`
	UptimeSec  int64            `json:"uptime_sec"`
	CPUPercent float64          `json:"cpu_percent"`
	MemPercent float64          `json:"mem_percent"`
	Tables     map[string]int64 `json:"tables"`
}

func (h *SystemHandler) status(c echo.Context) error {
	status := systemStatus{
		UptimeSec: int64(time.Since(h.started).Seconds()),
		Tables:    map[string]int64{},
	}

	if info, err := host.Info(); err == nil {
		status.Hostname = info.Hostname
		status.OS = info.Platform
	}
	if usage, err := cpu.Percent(0, false); err == nil && len(usage) > 0 {
		status.CPUPercent = usage[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemPercent = vm.UsedPercent
	}

	counts := map[string]interface{}{
		"products":   &domain.Product{},
		"categories": &domain.Category{},
		"tags":       &domain.Tag{},
	}
	for name, model := range counts {
		var total int64
		if err := h.db.WithContext(c.Request().Context()).Model(model).Count(&total).Error; err == nil {
			status.Tables[name] = total
		}
	}

	return webserver.OK(c, status)
}
