package sheets

import (
	"context"
	"strings"

	perr "tradein/internal/platform/errors"
)

// WatchedRow is one data row of the trade-in tracking tab.
// Column positions are fixed by the operators and must not be reordered:
// B name, C phone, D postal, E address, F boxes, H received, I requested,
// L warehouse arrival, M tracking number
type WatchedRow struct {
	Row       int // 1-based sheet row number
	Name      string
	Phone     string
	Postal    string
	Address   string
	Boxes     string
	Received  string
	Requested string
	Arrival   string
	Tracking  string
}

// TradeInRow is one appended intake row; a request with N boxes appends N rows
type TradeInRow struct {
	Name        string
	Phone       string
	Postal      string
	Address     string
	RequestDate string
	BoxNo       int
	BoxTotal    int
}

// watched tab column indexes within A..M
const (
	colName      = 1
	colPhone     = 2
	colPostal    = 3
	colAddress   = 4
	colBoxes     = 5
	colReceived  = 7
	colRequested = 8
	colArrival   = 11
	colTracking  = 12
)

// ReadWatchedRows reads the full watch range. Fail-closed: any failure comes
// back retry-worthy so a partial read is never mistaken for sheet state
func (c *Client) ReadWatchedRows(ctx context.Context) ([]WatchedRow, error) {
	values, err := c.getValues(ctx, c.opts.WatchTab+"!A2:M")
	if err != nil {
		return nil, perr.WrapIf(err, perr.ErrorCodeTransient, "watched rows read failed")
	}
	rows := make([]WatchedRow, 0, len(values))
	for i, rec := range values {
		rows = append(rows, WatchedRow{
			Row:       i + 2,
			Name:      cell(rec, colName),
			Phone:     cell(rec, colPhone),
			Postal:    cell(rec, colPostal),
			Address:   cell(rec, colAddress),
			Boxes:     cell(rec, colBoxes),
			Received:  cell(rec, colReceived),
			Requested: cell(rec, colRequested),
			Arrival:   cell(rec, colArrival),
			Tracking:  cell(rec, colTracking),
		})
	}
	return rows, nil
}

// ReadSkuMapping loads the two-column store-SKU to logistics-code mapping.
// The header row is skipped; rows with either side blank are skipped.
// Loaded fresh each run, never cached
func (c *Client) ReadSkuMapping(ctx context.Context) (map[string]string, error) {
	values, err := c.getValues(ctx, c.opts.MappingTab+"!A:B")
	if err != nil {
		return nil, perr.WrapIf(err, perr.ErrorCodeTransient, "sku mapping read failed")
	}
	m := make(map[string]string, len(values))
	for i, rec := range values {
		if i == 0 {
			continue
		}
		k := strings.TrimSpace(cell(rec, 0))
		v := strings.TrimSpace(cell(rec, 1))
		if k == "" || v == "" {
			continue
		}
		m[k] = v
	}
	return m, nil
}

// AppendTradeInRows appends one sheet row per box of a validated request.
// Callers only reach this after the whole request validated, so a rejected
// request never leaves partial rows behind
func (c *Client) AppendTradeInRows(ctx context.Context, rows []TradeInRow) error {
	if len(rows) == 0 {
		return nil
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, []string{
			"", // A is operator-managed
			r.Name,
			r.Phone,
			r.Postal,
			r.Address,
			boxLabel(r.BoxNo, r.BoxTotal),
			"",
			"",
			r.RequestDate,
		})
	}
	return c.appendValues(ctx, c.opts.IntakeTab+"!A:M", out)
}

func cell(rec []string, idx int) string {
	if idx >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[idx])
}
