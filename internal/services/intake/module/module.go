// Package module wires the intake service and its webhook routes
package module

import (
	"context"

	"tradein/internal/adapters/sheets"
	"tradein/internal/modkit"
	phttp "tradein/internal/platform/net/http"
	dom "tradein/internal/services/intake/domain"
	ihttp "tradein/internal/services/intake/http"
	"tradein/internal/services/intake/service"
)

// Module defines the intake module
type Module struct {
	deps  modkit.Deps
	ports Ports
	h     *ihttp.Handlers
}

// Ports holds the ports exposed by the intake module
type Ports struct {
	Intake dom.IntakePort
}

// New constructs the intake module with the sheet appender wired from config
func New(deps modkit.Deps) *Module {
	sheetsCfg := deps.Cfg.Prefix("SHEETS_")
	appender := &sheetAppender{client: sheets.NewClient(sheets.Options{
		BaseURL:       sheetsCfg.MustString("BASE_URL"),
		Token:         sheetsCfg.MustString("TOKEN"),
		SpreadsheetID: sheetsCfg.MustString("SPREADSHEET_ID"),
		WatchTab:      sheetsCfg.MayString("WATCH_TAB", ""),
		IntakeTab:     sheetsCfg.MayString("INTAKE_TAB", ""),
	})}

	svc := service.New(deps, appender)

	m := &Module{deps: deps}
	m.ports = Ports{Intake: svc}
	m.h = ihttp.NewHandlers(svc)
	return m
}

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "intake" }

// MountRoutes registers the webhook routes
func (m *Module) MountRoutes(r phttp.Router) { m.h.Mount(r) }

// sheetAppender fans a validated request out to one sheet row per box
type sheetAppender struct{ client *sheets.Client }

func (a *sheetAppender) AppendTradeIn(ctx context.Context, req dom.TradeInRequest) error {
	rows := make([]sheets.TradeInRow, 0, req.Boxes)
	for i := 1; i <= req.Boxes; i++ {
		rows = append(rows, sheets.TradeInRow{
			Name:        req.Name,
			Phone:       req.Phone,
			Postal:      req.Postal,
			Address:     req.Address,
			RequestDate: req.RequestDate,
			BoxNo:       i,
			BoxTotal:    req.Boxes,
		})
	}
	return a.client.AppendTradeInRows(ctx, rows)
}
