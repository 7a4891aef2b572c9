package scheduling

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("09:30")
	if err != nil {
		t.Fatalf("ParseTimeOfDay returned error: %v", err)
	}
	if got != TimeOfDay(9*60+30) {
		t.Fatalf("expected 570 minutes, got %d", int(got))
	}
	if got.String() != "09:30" {
		t.Fatalf("expected 09:30, got %s", got)
	}
}

func TestParseTimeOfDayInvalid(t *testing.T) {
	for _, input := range []string{"", "25:00", "9am", "09:61"} {
		if _, err := ParseTimeOfDay(input); err == nil {
			t.Fatalf("expected error for %q", input)
		}
	}
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	data, err := json.Marshal([]TimeOfDay{0, 570, 1439})
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	if string(data) != `["00:00","09:30","23:59"]` {
		t.Fatalf("unexpected JSON: %s", data)
	}

	var decoded []TimeOfDay
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if len(decoded) != 3 || decoded[1] != 570 {
		t.Fatalf("unexpected decode result: %v", decoded)
	}
}

func TestParseDateNormalizesToUTC(t *testing.T) {
	date, err := ParseDate("2026-08-31")
	if err != nil {
		t.Fatalf("ParseDate returned error: %v", err)
	}
	if date.Weekday() != time.Monday {
		t.Fatalf("expected Monday, got %s", date.Weekday())
	}
	if h, m, s := date.Clock(); h+m+s != 0 {
		t.Fatalf("expected midnight, got %s", date)
	}
}

func TestParseDateInvalid(t *testing.T) {
	if _, err := ParseDate("31/08/2026"); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
	if _, err := ParseDate("2026-02-30"); err == nil {
		t.Fatalf("expected error for impossible date")
	}
}
