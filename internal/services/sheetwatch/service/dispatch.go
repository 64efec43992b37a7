package service

import (
	"context"
	"fmt"
	"time"

	perr "tradein/internal/platform/errors"
	"tradein/internal/platform/logger"
	dom "tradein/internal/services/sheetwatch/domain"
)

// Dispatcher sends classified actions with a single transient retry.
// Validation-class failures never retry. Whatever the outcome, the caller
// advances the snapshot afterward: a send that failed after its retry is
// logged for manual follow-up and never retried on later cycles
type Dispatcher struct {
	Chat    dom.ChatNotifier
	SMS     dom.SmsNotifier
	Channel string // chat channel for operator notices
	SMSTmpl string // template id for tracking-issued sends

	RetryWait time.Duration
	sleep     func(time.Duration)
}

// NewDispatcher wires a dispatcher with defaults
func NewDispatcher(chat dom.ChatNotifier, sms dom.SmsNotifier, channel, smsTmpl string) *Dispatcher {
	return &Dispatcher{
		Chat:      chat,
		SMS:       sms,
		Channel:   channel,
		SMSTmpl:   smsTmpl,
		RetryWait: 2 * time.Second,
		sleep:     time.Sleep,
	}
}

// Dispatch performs one action, retrying once on a retry-worthy failure
func (d *Dispatcher) Dispatch(ctx context.Context, a dom.DispatchAction) dom.DispatchResult {
	log := logger.C(ctx)
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		err = d.send(ctx, a)
		if err == nil {
			return dom.DispatchResult{OK: true, Attempts: attempt}
		}
		if attempt == 1 && perr.Retryable(err) {
			log.Warn().Err(err).
				Int("row", a.Row).
				Str("notice", string(a.Notice)).
				Msg("dispatch attempt failed, retrying once")
			d.sleep(d.RetryWait)
			continue
		}
		return dom.DispatchResult{Attempts: attempt, Err: wrapDispatch(err, a)}
	}
	return dom.DispatchResult{Attempts: 2, Err: wrapDispatch(err, a)}
}

func (d *Dispatcher) send(ctx context.Context, a dom.DispatchAction) error {
	switch a.Kind {
	case dom.ActionChatNotify:
		return d.Chat.PostMessage(ctx, d.Channel, chatText(a))
	case dom.ActionSmsNotify:
		return d.SMS.SendTemplate(ctx, d.SMSTmpl, a.Phone, map[string]string{
			"name":     a.Name,
			"tracking": a.Value,
		})
	default:
		return perr.Validationf("unknown action kind %q", a.Kind)
	}
}

func wrapDispatch(err error, a dom.DispatchAction) error {
	return perr.Wrapf(err, perr.ErrorCodeDispatch,
		"dispatch %s/%s row %d failed", a.Kind, a.Notice, a.Row)
}

// chatText renders the operator notice for a chat action
func chatText(a dom.DispatchAction) string {
	switch a.Notice {
	case dom.NoticeInvoiceEntered:
		return fmt.Sprintf("[보상판매] %d행 %s님 송장번호 입력됨: %s", a.Row, a.Name, a.Value)
	case dom.NoticeArrivedAtWarehouse:
		return fmt.Sprintf("[보상판매] %d행 %s님 물류센터 입고 완료", a.Row, a.Name)
	default:
		return fmt.Sprintf("[보상판매] %d행 %s님 변경 감지: %s", a.Row, a.Name, a.Value)
	}
}
