package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecordDayUpdatesCounters(t *testing.T) {
	reg := New()
	reg.RecordDay(1234, 3, 5000, 0.5)
	reg.RecordShifts(7)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()
	reg.Handler().ServeHTTP(rec, req)

	body := rec.Body.String()
	for _, want := range []string{
		"qrsdp_events_total 1234",
		"qrsdp_book_shifts_total 7",
		"qrsdp_session_days_total 1",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics output missing %q:\n%s", want, body)
		}
	}
}
