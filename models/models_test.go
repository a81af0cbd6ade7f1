package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDateJSON(t *testing.T) {
	var payload struct {
		Day  Date  `json:"day"`
		Born *Date `json:"born"`
	}
	if err := json.Unmarshal([]byte(`{"day":"2025-02-28","born":null}`), &payload); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payload.Day.String() != "2025-02-28" {
		t.Fatalf("unexpected day: %s", payload.Day)
	}
	if payload.Born != nil {
		t.Fatalf("expected nil birthdate, got %v", payload.Born)
	}

	out, err := json.Marshal(payload.Day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != `"2025-02-28"` {
		t.Fatalf("unexpected encoding: %s", out)
	}
}

func TestDateUnmarshalAcceptsTimestamps(t *testing.T) {
	var d Date
	if err := json.Unmarshal([]byte(`"2025-03-01T18:45:00Z"`), &d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Format(DateLayout) != "2025-03-01" {
		t.Fatalf("unexpected day: %s", d.Format(DateLayout))
	}
	if err := json.Unmarshal([]byte(`"03/01/2025"`), &d); err == nil {
		t.Fatal("expected error for non ISO date")
	}
}

func TestDateScanAndValue(t *testing.T) {
	var d Date
	if err := d.Scan([]byte("2024-12-31 00:00:00")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.String() != "2024-12-31" {
		t.Fatalf("unexpected day: %s", d)
	}

	if err := d.Scan(time.Date(2024, 6, 1, 15, 4, 0, 0, time.UTC)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := d.Value()
	if err != nil || v != "2024-06-01" {
		t.Fatalf("unexpected value %v (%v)", v, err)
	}

	if err := d.Scan(nil); err != nil || !d.IsZero() {
		t.Fatalf("expected zero date after nil scan, got %v (%v)", d, err)
	}
	if v, _ := d.Value(); v != nil {
		t.Fatalf("expected NULL for zero date, got %v", v)
	}
	if err := d.Scan(42); err == nil {
		t.Fatal("expected error for int")
	}
}

func TestAttendanceDeriveStatus(t *testing.T) {
	clock := func(h int) *time.Time {
		t := time.Date(2025, 5, 2, h, 0, 0, 0, time.UTC)
		return &t
	}

	cases := []struct {
		name string
		a    Attendance
		want string
	}{
		{"no punches", Attendance{}, AttendanceAbsent},
		{"checked in", Attendance{CheckInTime: clock(7)}, AttendanceCheckedIn},
		{"on break", Attendance{CheckInTime: clock(7), BreakOutTime: clock(12)}, AttendanceOnBreak},
		{"back from break", Attendance{CheckInTime: clock(7), BreakOutTime: clock(12), BreakInTime: clock(13)}, AttendanceCheckedIn},
		{"checked out", Attendance{CheckInTime: clock(7), CheckOutTime: clock(17)}, AttendancePresent},
		{"check out without check in", Attendance{CheckOutTime: clock(17)}, AttendanceAbsent},
	}
	for _, tc := range cases {
		if got := tc.a.DeriveStatus(); got != tc.want {
			t.Errorf("%s: got %s want %s", tc.name, got, tc.want)
		}
	}
}

func TestAllCoversEveryTable(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range All() {
		tn, ok := m.(interface{ TableName() string })
		if !ok {
			t.Fatalf("%T has no TableName", m)
		}
		if seen[tn.TableName()] {
			t.Fatalf("table %s listed twice", tn.TableName())
		}
		seen[tn.TableName()] = true
	}
	for _, table := range []string{"users", "projects", "supervisors", "clients", "field_workers", "phases", "subtasks", "subtask_field_workers", "attendance", "invitation_deliveries"} {
		if !seen[table] {
			t.Errorf("missing table %s", table)
		}
	}
}
