package service

import (
	"fmt"

	dom "tradein/internal/services/sheetwatch/domain"
)

// Classify maps one change event to its dispatch actions.
//
// Tracking number entered: operators get a chat notice and the customer gets
// an SMS with the number. A missing phone drops only the SMS leg; the chat
// notice still goes out and the drop is returned as a warning.
// Warehouse arrival entered: chat notice only.
// Any other column: no actions
func Classify(ev dom.ChangeEvent, row dom.RowState) (actions []dom.DispatchAction, warnings []string) {
	switch ev.Column {
	case dom.ColumnTracking:
		actions = append(actions, dom.DispatchAction{
			Kind:   dom.ActionChatNotify,
			Notice: dom.NoticeInvoiceEntered,
			Row:    ev.Row,
			Name:   row.Name,
			Value:  ev.Value,
		})
		if row.Phone == "" {
			warnings = append(warnings,
				fmt.Sprintf("row %d: tracking issued but phone empty, sms skipped", ev.Row))
		} else {
			actions = append(actions, dom.DispatchAction{
				Kind:   dom.ActionSmsNotify,
				Notice: dom.NoticeTrackingIssued,
				Row:    ev.Row,
				Name:   row.Name,
				Phone:  row.Phone,
				Value:  ev.Value,
			})
		}
	case dom.ColumnArrival:
		actions = append(actions, dom.DispatchAction{
			Kind:   dom.ActionChatNotify,
			Notice: dom.NoticeArrivedAtWarehouse,
			Row:    ev.Row,
			Name:   row.Name,
			Value:  ev.Value,
		})
	}
	return actions, warnings
}
