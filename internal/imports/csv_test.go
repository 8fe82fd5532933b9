package imports

import (
	"strings"
	"testing"

	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
)

const csvHeader = "Technician Name,Badge ID,Project ID,Customer Name,Address,Scheduled Time,Truck ID"

func TestParseCSVBareTimeAndDateTime(t *testing.T) {
	input := csvHeader + "\n" +
		"Jane Doe,T001,P-100,Acme Corp,12 Elm St,09:00,T-9\n" +
		"Rob Lee,T002,P-101,Beta LLC,4 Oak Ave,2024-06-02 14:30,T-3\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows got %d", len(rows))
	}

	if rows[0].ScheduledTime != "09:00" || rows[0].ServiceDate != "" {
		t.Fatalf("bare time row mishandled: %+v", rows[0])
	}
	if rows[1].ScheduledTime != "14:30" || rows[1].ServiceDate != "2024-06-02" {
		t.Fatalf("date-time row mishandled: %+v", rows[1])
	}
	if rows[0].Line != 2 || rows[1].Line != 3 {
		t.Fatalf("unexpected line numbers: %d %d", rows[0].Line, rows[1].Line)
	}
}

func TestParseCSVOptionalPhotoColumn(t *testing.T) {
	input := csvHeader + ",Photo URL\n" +
		"Jane Doe,T001,P-100,Acme Corp,12 Elm St,09:00,T-9,https://example.com/p.jpg\n"

	rows, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if rows[0].PhotoURL != "https://example.com/p.jpg" {
		t.Fatalf("photo url not captured: %+v", rows[0])
	}
}

func TestParseCSVMissingColumn(t *testing.T) {
	input := "Technician Name,Project ID,Customer Name,Address,Scheduled Time,Truck ID\n" +
		"Jane Doe,P-100,Acme Corp,12 Elm St,09:00,T-9\n"

	_, err := ParseCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected missing column error")
	}
	if !strings.Contains(err.Error(), "Badge ID") {
		t.Fatalf("error does not name the missing column: %v", err)
	}
}

func TestParseCSVReportsAllBadRows(t *testing.T) {
	input := csvHeader + "\n" +
		"Jane Doe,,P-100,Acme Corp,12 Elm St,09:00,T-9\n" +
		"Rob Lee,T002,P-101,Beta LLC,4 Oak Ave,whenever,T-3\n"

	_, err := ParseCSV(strings.NewReader(input))
	if err == nil {
		t.Fatal("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "line 2") || !strings.Contains(msg, "line 3") {
		t.Fatalf("expected both bad lines reported: %v", err)
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	if _, err := ParseCSV(strings.NewReader("")); err == nil {
		t.Fatal("expected error for empty file")
	}
	if _, err := ParseCSV(strings.NewReader(csvHeader + "\n")); err == nil {
		t.Fatal("expected error for header-only file")
	}
}
