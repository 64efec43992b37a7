package service

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"tradein/internal/platform/clock"
	perr "tradein/internal/platform/errors"
	pstrings "tradein/internal/platform/strings"
	dom "tradein/internal/services/intake/domain"
)

// A request line is five pipe-delimited fields:
//
//	이름|연락처|(우편번호) 주소|신청일|박스수
//	김철수|010-1234-5678|(12345) 서울시 강남구|2024-01-15|2개
//
// Chat clients wrap phone numbers and URLs in link markup, fullwidth digits
// show up from mobile keyboards, and operators paste with stray spaces; the
// text is normalized before any field check

var (
	// <tel:010-1234-5678|010-1234-5678> and friends; the label wins when
	// present, the inner address otherwise
	linkLabelRe = regexp.MustCompile(`<(?:tel:|mailto:|https?://)[^|>]*\|([^>]*)>`)
	linkBareRe  = regexp.MustCompile(`<(?:tel:|mailto:)([^>|]*)>`)

	phoneRe  = regexp.MustCompile(`^\d[\d-]*\d$`)
	postalRe = regexp.MustCompile(`^\((\d{5})\)\s*(.+)$`)
)

var dateLayouts = []string{"2006-01-02", "2006.01.02", "2006/01/02", "2006.1.2"}

// CleanLine strips chat link markup and normalizes unicode before parsing
func CleanLine(s string) string {
	s = linkLabelRe.ReplaceAllString(s, "$1")
	s = linkBareRe.ReplaceAllString(s, "$1")
	s = pstrings.Clean(s)
	return strings.TrimSpace(s)
}

// ParseLine parses one cleaned request line into a validated TradeInRequest.
// Errors are validation-class and name the offending field; the message as a
// whole keeps processing other lines
func ParseLine(text string) (dom.TradeInRequest, error) {
	var zero dom.TradeInRequest

	line := CleanLine(text)
	if line == "" {
		return zero, perr.Validationf("empty line")
	}

	parts := strings.Split(line, "|")
	if len(parts) != 5 {
		return zero, perr.Validationf("expected 5 fields separated by |, got %d", len(parts))
	}
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	name := parts[0]
	if name == "" {
		return zero, perr.WithField(perr.Validationf("name is empty"), "name")
	}

	phone := parts[1]
	if !phoneRe.MatchString(phone) {
		return zero, perr.WithField(perr.Validationf("phone %q must be digits and hyphens", phone), "phone")
	}

	postal, address, err := splitPostalAddress(parts[2])
	if err != nil {
		return zero, err
	}

	date, err := parseDate(parts[3])
	if err != nil {
		return zero, err
	}

	boxes, err := parseBoxCount(parts[4])
	if err != nil {
		return zero, err
	}

	return dom.TradeInRequest{
		Name:        name,
		Phone:       phone,
		Postal:      postal,
		Address:     address,
		RequestDate: date,
		Boxes:       boxes,
	}, nil
}

// ParsedLine pairs a message line with its parse outcome
type ParsedLine struct {
	Line    int // 1-based position among non-blank lines
	Text    string
	Request dom.TradeInRequest
	Err     error
}

// ParseMessage splits a multi-line chat post into request lines.
// Blank lines are dropped and a leading header line (the field-name row
// operators paste along with the data) is skipped
func ParseMessage(text string) []ParsedLine {
	var out []ParsedLine
	n := 0
	for _, raw := range strings.Split(text, "\n") {
		line := CleanLine(raw)
		if line == "" {
			continue
		}
		n++
		if n == 1 && isHeaderLine(line) {
			continue
		}
		req, err := ParseLine(line)
		out = append(out, ParsedLine{Line: n, Text: line, Request: req, Err: err})
	}
	return out
}

// isHeaderLine detects the pasted field-name row
func isHeaderLine(line string) bool {
	return strings.HasPrefix(line, "이름") && strings.Contains(line, "연락처")
}

// splitPostalAddress takes "(12345) 서울시 강남구" apart
func splitPostalAddress(s string) (postal, address string, err error) {
	m := postalRe.FindStringSubmatch(s)
	if m == nil {
		return "", "", perr.WithField(
			perr.Validationf("address %q must start with a (5-digit) postal code", s), "address")
	}
	addr := strings.TrimSpace(m[2])
	if addr == "" {
		return "", "", perr.WithField(perr.Validationf("address is empty"), "address")
	}
	return m[1], addr, nil
}

// parseDate accepts the date forms operators actually type and normalizes
// to 2006-01-02 in KST
func parseDate(s string) (string, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, clock.KST()); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}
	return "", perr.WithField(perr.Validationf("request date %q is not a date", s), "request_date")
}

// parseBoxCount reads the strict "N개" form. Empty or non-numeric input is
// rejected rather than defaulted; a wrong box count means missing labels at
// the warehouse
func parseBoxCount(s string) (int, error) {
	v := strings.TrimSuffix(s, "개")
	if v == "" || v != strings.TrimSpace(v) {
		return 0, perr.WithField(perr.Validationf("box count %q is not of the form N개", s), "box_count")
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, perr.WithField(perr.Validationf("box count %q is not of the form N개", s), "box_count")
	}
	return n, nil
}
