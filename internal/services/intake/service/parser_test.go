package service

import (
	"strings"
	"testing"

	perr "tradein/internal/platform/errors"
)

func TestParseLine_RoundTrip(t *testing.T) {
	t.Parallel()

	req, err := ParseLine("김철수|010-1234-5678|(12345) 서울시 강남구|2024-01-15|2개")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if req.Name != "김철수" {
		t.Fatalf("name = %q", req.Name)
	}
	if req.Phone != "010-1234-5678" {
		t.Fatalf("phone = %q", req.Phone)
	}
	if req.Postal != "12345" || req.Address != "서울시 강남구" {
		t.Fatalf("postal = %q address = %q", req.Postal, req.Address)
	}
	if req.RequestDate != "2024-01-15" {
		t.Fatalf("date = %q", req.RequestDate)
	}
	if req.Boxes != 2 {
		t.Fatalf("boxes = %d", req.Boxes)
	}
}

func TestParseLine_FourFieldsRejected(t *testing.T) {
	t.Parallel()

	_, err := ParseLine("김철수|010-1234-5678|(12345) 서울시|2024-01-15")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("code = %v, want validation", perr.CodeOf(err))
	}
	if !strings.Contains(err.Error(), "5 fields") {
		t.Fatalf("error %q does not name the field count", err)
	}
}

func TestParseLine_StripsChatLinkMarkup(t *testing.T) {
	t.Parallel()

	req, err := ParseLine("김철수|<tel:01012345678|010-1234-5678>|(12345) 서울시|2024-01-15|1개")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if req.Phone != "010-1234-5678" {
		t.Fatalf("phone = %q, markup not stripped", req.Phone)
	}
}

func TestParseLine_FullwidthDigitsNormalized(t *testing.T) {
	t.Parallel()

	// fullwidth digits and a zero width space from a mobile paste
	req, err := ParseLine("김철수|０１０-１２３４-５６７８|(12345) 서울시​|2024-01-15|１개")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if req.Phone != "010-1234-5678" {
		t.Fatalf("phone = %q", req.Phone)
	}
	if req.Boxes != 1 {
		t.Fatalf("boxes = %d", req.Boxes)
	}
}

func TestParseLine_FieldErrors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		line  string
		field string
	}{
		{"bad phone", "김철수|전화없음|(12345) 서울시|2024-01-15|1개", "phone"},
		{"no postal", "김철수|010-1234-5678|서울시 강남구|2024-01-15|1개", "address"},
		{"bad date", "김철수|010-1234-5678|(12345) 서울시|내일|1개", "request_date"},
		{"empty boxes", "김철수|010-1234-5678|(12345) 서울시|2024-01-15|", "box_count"},
		{"word boxes", "김철수|010-1234-5678|(12345) 서울시|2024-01-15|두개", "box_count"},
	}
	for _, tc := range cases {
		_, err := ParseLine(tc.line)
		if err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
		e, ok := perr.As(err)
		if !ok || e.Code() != perr.ErrorCodeValidation {
			t.Fatalf("%s: err = %v, want validation", tc.name, err)
		}
		if e.Field() != tc.field {
			t.Fatalf("%s: field = %q, want %q", tc.name, e.Field(), tc.field)
		}
	}
}

func TestParseLine_DottedDateNormalized(t *testing.T) {
	t.Parallel()

	req, err := ParseLine("김철수|010-1234-5678|(12345) 서울시|2024.01.15|1개")
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	if req.RequestDate != "2024-01-15" {
		t.Fatalf("date = %q", req.RequestDate)
	}
}

func TestParseMessage_SkipsHeaderAndBlankLines(t *testing.T) {
	t.Parallel()

	msg := "이름|연락처|주소|신청일|박스수\n\n김철수|010-1234-5678|(12345) 서울시|2024-01-15|2개\n박영희|010-9876-5432|(54321) 부산시|2024-01-16|1개\n"
	lines := ParseMessage(msg)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (header skipped)", len(lines))
	}
	for _, pl := range lines {
		if pl.Err != nil {
			t.Fatalf("line %d: %v", pl.Line, pl.Err)
		}
	}
	if lines[0].Request.Name != "김철수" || lines[1].Request.Name != "박영희" {
		t.Fatalf("names = %q, %q", lines[0].Request.Name, lines[1].Request.Name)
	}
}

func TestParseMessage_BadLineDoesNotSinkGoodLines(t *testing.T) {
	t.Parallel()

	msg := "김철수|010-1234-5678|(12345) 서울시|2024-01-15|2개\n깨진줄\n박영희|010-9876-5432|(54321) 부산시|2024-01-16|1개"
	lines := ParseMessage(msg)
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want 3", len(lines))
	}
	if lines[0].Err != nil || lines[2].Err != nil {
		t.Fatalf("good lines failed: %v / %v", lines[0].Err, lines[2].Err)
	}
	if lines[1].Err == nil {
		t.Fatalf("broken line passed")
	}
}
