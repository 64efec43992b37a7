// Package module wires the order-sync pipeline and exposes its ports
package module

import (
	"context"
	"time"

	"tradein/internal/adapters/cornerlogis"
	"tradein/internal/adapters/sheets"
	"tradein/internal/adapters/shopby"
	"tradein/internal/modkit"
	"tradein/internal/platform/clock"
	dom "tradein/internal/services/shipsync/domain"
	"tradein/internal/services/shipsync/service"
)

// Module defines the shipsync module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// Ports holds the ports exposed by the shipsync module
type Ports struct {
	Worker   dom.WorkerPort
	Schedule dom.SchedulePort
}

// New constructs the shipsync module with its collaborators wired from config
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.OrderWindow != 0 {
		opts.OrderWindow = overrides.OrderWindow
	}
	if overrides.RetryWait != 0 {
		opts.RetryWait = overrides.RetryWait
	}
	if overrides.TickInterval != 0 {
		opts.TickInterval = overrides.TickInterval
	}
	// the window overrides travel as a pair so a forced run can set 0..1440
	if overrides.WindowTill != 0 {
		opts.WindowFrom = overrides.WindowFrom
		opts.WindowTill = overrides.WindowTill
	}

	shopbyCfg := deps.Cfg.Prefix("SHOPBY_")
	lister := &orderLister{client: shopby.NewClient(shopby.Options{
		BaseURL:  shopbyCfg.MustString("BASE_URL"),
		ClientID: shopbyCfg.MustString("CLIENT_ID"),
		Secret:   shopbyCfg.MustString("SECRET"),
		MallNo:   shopbyCfg.MayString("MALL_NO", ""),
	})}

	sheetsCfg := deps.Cfg.Prefix("SHEETS_")
	mapper := &skuMapper{client: sheets.NewClient(sheets.Options{
		BaseURL:       sheetsCfg.MustString("BASE_URL"),
		Token:         sheetsCfg.MustString("TOKEN"),
		SpreadsheetID: sheetsCfg.MustString("SPREADSHEET_ID"),
		MappingTab:    sheetsCfg.MayString("MAPPING_TAB", ""),
	})}

	logisCfg := deps.Cfg.Prefix("CORNERLOGIS_")
	submitter := &shipmentSubmitter{client: cornerlogis.NewClient(cornerlogis.Options{
		BaseURL:    logisCfg.MustString("BASE_URL"),
		APIKey:     logisCfg.MustString("API_KEY"),
		CenterCode: logisCfg.MustString("CENTER_CODE"),
	})}

	// the fulfillment partner picks up once a day shortly after 14:00 KST,
	// so the default window is 13:00-13:59
	gate := clock.NewGate(opts.WindowFrom, opts.WindowTill)

	svc := service.New(deps, service.Config{
		OrderWindow:  opts.OrderWindow,
		RetryWait:    opts.RetryWait,
		TickInterval: opts.TickInterval,
	}, gate, lister, mapper, submitter)

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc, Schedule: svc}
	return m
}

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "shipsync" }

// orderLister converts the storefront order shape into pipeline orders
type orderLister struct{ client *shopby.Client }

func (l *orderLister) ListPaidOrders(ctx context.Context, since time.Time) ([]dom.Order, error) {
	raw, err := l.client.ListPaidOrders(ctx, since)
	if err != nil {
		return nil, err
	}
	out := make([]dom.Order, 0, len(raw))
	for _, o := range raw {
		addr := o.Receiver.Address
		if o.Receiver.Detail != "" {
			addr += " " + o.Receiver.Detail
		}
		items := make([]dom.OrderLine, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, dom.OrderLine{SKU: it.SKU, Name: it.Name, Qty: it.Qty})
		}
		out = append(out, dom.Order{
			OrderNo:   o.OrderNo,
			OrderedAt: o.OrderedAt,
			Receiver: dom.Receiver{
				Name:    o.Receiver.Name,
				Phone:   o.Receiver.Phone,
				Zip:     o.Receiver.Zip,
				Address: addr,
				Memo:    o.Receiver.Memo,
			},
			Items: items,
		})
	}
	return out, nil
}

// skuMapper loads the mapping tab fresh each run
type skuMapper struct{ client *sheets.Client }

func (m *skuMapper) LoadSkuMapping(ctx context.Context) (map[string]string, error) {
	return m.client.ReadSkuMapping(ctx)
}

// shipmentSubmitter converts pipeline submissions into partner shipments
type shipmentSubmitter struct{ client *cornerlogis.Client }

func (s *shipmentSubmitter) SubmitShipment(ctx context.Context, sub dom.Submission) (string, error) {
	items := make([]cornerlogis.ShipmentItem, 0, len(sub.Items))
	for _, it := range sub.Items {
		items = append(items, cornerlogis.ShipmentItem{ItemCode: it.ItemCode, Qty: it.Qty})
	}
	return s.client.CreateShipment(ctx, cornerlogis.Shipment{
		OrderNo:  sub.OrderNo,
		Receiver: sub.Receiver,
		Phone:    sub.Phone,
		Zip:      sub.Zip,
		Address:  sub.Address,
		Memo:     sub.Memo,
		Items:    items,
	})
}
