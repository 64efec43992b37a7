// Package module wires the invoice sync pipeline and exposes its ports
package module

import (
	"context"

	"tradein/internal/adapters/cornerlogis"
	"tradein/internal/adapters/shopby"
	"tradein/internal/modkit"
	"tradein/internal/platform/clock"
	dom "tradein/internal/services/invoicesync/domain"
	"tradein/internal/services/invoicesync/service"
)

// Module defines the invoicesync module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// Ports holds the ports exposed by the invoicesync module
type Ports struct {
	Worker   dom.WorkerPort
	Schedule dom.SchedulePort
}

// New constructs the invoicesync module with its collaborators wired from config
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
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

	logisCfg := deps.Cfg.Prefix("CORNERLOGIS_")
	source := &shipmentSource{client: cornerlogis.NewClient(cornerlogis.Options{
		BaseURL:    logisCfg.MustString("BASE_URL"),
		APIKey:     logisCfg.MustString("API_KEY"),
		CenterCode: logisCfg.MayString("CENTER_CODE", ""),
	})}

	shopbyCfg := deps.Cfg.Prefix("SHOPBY_")
	target := &invoiceTarget{client: shopby.NewClient(shopby.Options{
		BaseURL:  shopbyCfg.MustString("BASE_URL"),
		ClientID: shopbyCfg.MustString("CLIENT_ID"),
		Secret:   shopbyCfg.MustString("SECRET"),
		MallNo:   shopbyCfg.MayString("MALL_NO", ""),
	})}

	gate := clock.NewGate(opts.WindowFrom, opts.WindowTill)

	svc := service.New(deps, service.Config{
		RetryWait:    opts.RetryWait,
		TickInterval: opts.TickInterval,
	}, gate, source, target)

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc, Schedule: svc}
	return m
}

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "invoicesync" }

// shipmentSource converts the partner's outbound shape into sync candidates
type shipmentSource struct{ client *cornerlogis.Client }

func (s *shipmentSource) ListShippedWithInvoices(ctx context.Context) ([]dom.ShippedOrder, error) {
	raw, err := s.client.ListShippedWithInvoices(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dom.ShippedOrder, 0, len(raw))
	for _, o := range raw {
		out = append(out, dom.ShippedOrder{
			OrderNo:    cornerlogis.StorefrontOrderNo(o.CompanyRef),
			CompanyRef: o.CompanyRef,
			InvoiceNo:  o.InvoiceNo,
			Status:     o.Status,
		})
	}
	return out, nil
}

// invoiceTarget pushes invoice numbers onto storefront orders
type invoiceTarget struct{ client *shopby.Client }

func (t *invoiceTarget) LookupShippingNo(ctx context.Context, orderNo string) (string, error) {
	detail, err := t.client.GetOrderDetail(ctx, orderNo)
	if err != nil {
		return "", err
	}
	return detail.ShippingNo, nil
}

func (t *invoiceTarget) RegisterInvoice(ctx context.Context, shippingNo, invoiceNo string) error {
	return t.client.RegisterInvoice(ctx, shippingNo, invoiceNo)
}
