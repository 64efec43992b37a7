// Package module wires the watch worker service and exposes its ports
package module

import (
	"context"

	"tradein/internal/adapters/sheets"
	"tradein/internal/adapters/slack"
	"tradein/internal/adapters/solapi"
	"tradein/internal/modkit"
	dom "tradein/internal/services/sheetwatch/domain"
	"tradein/internal/services/sheetwatch/service"
)

// Module defines the watch worker module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the watch module with its collaborators wired from config
func New(deps modkit.Deps, overrides Options) *Module {
	opts := FromConfig(deps.Cfg)
	if overrides.Interval != 0 {
		opts.Interval = overrides.Interval
	}
	if overrides.Channel != "" {
		opts.Channel = overrides.Channel
	}
	if overrides.SMSTmpl != "" {
		opts.SMSTmpl = overrides.SMSTmpl
	}
	if overrides.RetryWait != 0 {
		opts.RetryWait = overrides.RetryWait
	}

	sheetsCfg := deps.Cfg.Prefix("SHEETS_")
	reader := &sheetReader{client: sheets.NewClient(sheets.Options{
		BaseURL:       sheetsCfg.MustString("BASE_URL"),
		Token:         sheetsCfg.MustString("TOKEN"),
		SpreadsheetID: sheetsCfg.MustString("SPREADSHEET_ID"),
		WatchTab:      sheetsCfg.MayString("WATCH_TAB", ""),
		MappingTab:    sheetsCfg.MayString("MAPPING_TAB", ""),
	})}

	slackCfg := deps.Cfg.Prefix("SLACK_")
	chat := slack.NewClient(slack.Options{
		BaseURL: slackCfg.MayString("BASE_URL", ""),
		Token:   slackCfg.MustString("BOT_TOKEN"),
	})

	smsCfg := deps.Cfg.Prefix("SOLAPI_")
	sms := solapi.NewClient(solapi.Options{
		BaseURL:   smsCfg.MayString("BASE_URL", ""),
		APIKey:    smsCfg.MustString("API_KEY"),
		APISecret: smsCfg.MustString("API_SECRET"),
		Sender:    smsCfg.MustString("SENDER"),
	})

	svc := service.New(deps, service.Config{
		Interval:  opts.Interval,
		Channel:   opts.Channel,
		SMSTmpl:   opts.SMSTmpl,
		RetryWait: opts.RetryWait,
	}, reader, chat, sms)

	m := &Module{deps: deps}
	m.ports = Ports{Worker: svc, Cycle: svc}
	return m
}

// Ports returns the module ports
func (m *Module) Ports() Ports { return m.ports }

// Name returns the module name
func (m *Module) Name() string { return "sheetwatch" }

// sheetReader converts the vendor row shape into the engine's row state
type sheetReader struct{ client *sheets.Client }

func (r *sheetReader) ReadWatchedRows(ctx context.Context) ([]dom.RowState, error) {
	raw, err := r.client.ReadWatchedRows(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dom.RowState, 0, len(raw))
	for _, w := range raw {
		out = append(out, dom.RowState{
			Row:      w.Row,
			Name:     w.Name,
			Phone:    w.Phone,
			Postal:   w.Postal,
			Address:  w.Address,
			Tracking: w.Tracking,
			Arrival:  w.Arrival,
		})
	}
	return out, nil
}
