package service

import (
	"strings"

	perr "tradein/internal/platform/errors"
	dom "tradein/internal/services/shipsync/domain"
)

// Transform converts one paid order into the partner's submission schema.
// Every line's SKU must map; any miss rejects the whole order (a partial
// shipment would strand the unmapped items) and the run moves on
func Transform(order dom.Order, skuMap map[string]string) (dom.Submission, error) {
	var missing []string
	items := make([]dom.SubmissionItem, 0, len(order.Items))
	for _, line := range order.Items {
		code, ok := skuMap[line.SKU]
		if !ok || code == "" {
			missing = append(missing, line.SKU)
			continue
		}
		items = append(items, dom.SubmissionItem{ItemCode: code, Qty: line.Qty})
	}
	if len(missing) > 0 {
		return dom.Submission{}, perr.WithField(
			perr.Validationf("order %s has unmapped SKUs: %s",
				order.OrderNo, strings.Join(missing, ", ")),
			"sku")
	}

	addr := order.Receiver.Address
	return dom.Submission{
		OrderNo:  order.OrderNo,
		Receiver: order.Receiver.Name,
		Phone:    order.Receiver.Phone,
		Zip:      order.Receiver.Zip,
		Address:  addr,
		Memo:     order.Receiver.Memo,
		Items:    items,
	}, nil
}
