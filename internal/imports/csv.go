package imports

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	pkgerrors "github.com/brightideas/dispatch-backend/pkg/errors"
	"go.uber.org/multierr"
)

const (
	colTechnicianName = "Technician Name"
	colBadgeID        = "Badge ID"
	colProjectID      = "Project ID"
	colCustomerName   = "Customer Name"
	colAddress        = "Address"
	colScheduledTime  = "Scheduled Time"
	colTruckID        = "Truck ID"
	colPhotoURL       = "Photo URL"
)

var requiredColumns = []string{
	colTechnicianName,
	colBadgeID,
	colProjectID,
	colCustomerName,
	colAddress,
	colScheduledTime,
	colTruckID,
}

// Accepted forms for the Scheduled Time column. A bare time-of-day leaves the
// service date to be stamped at apply time; a full date-time carries its own.
var dateTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
}

// Row is one validated import line. ServiceDate is empty when the source gave
// only a time-of-day.
type Row struct {
	Line           int    `json:"line"`
	TechnicianName string `json:"technician_name"`
	BadgeID        string `json:"badge_id"`
	ProjectID      string `json:"project_id"`
	CustomerName   string `json:"customer_name"`
	Address        string `json:"address"`
	ScheduledTime  string `json:"scheduled_time"`
	ServiceDate    string `json:"service_date,omitempty"`
	TruckID        string `json:"truck_id"`
	PhotoURL       string `json:"photo_url,omitempty"`
}

// ParseCSV reads the whole file and validates every row before returning.
// Any bad row fails the entire parse; all row problems are reported together.
func ParseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv file is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read csv header")
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	var missing []string
	for _, name := range requiredColumns {
		if _, ok := index[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			"csv is missing required columns: "+strings.Join(missing, ", "))
	}

	var (
		rows    []Row
		rowErrs error
	)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("line %d: %w", line, err))
			continue
		}

		field := func(name string) string {
			i := index[name]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Line:           line,
			TechnicianName: field(colTechnicianName),
			BadgeID:        field(colBadgeID),
			ProjectID:      field(colProjectID),
			CustomerName:   field(colCustomerName),
			Address:        field(colAddress),
			TruckID:        field(colTruckID),
		}
		if i, ok := index[colPhotoURL]; ok && i < len(record) {
			row.PhotoURL = strings.TrimSpace(record[i])
		}

		if row.BadgeID == "" {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("line %d: badge id is required", line))
		}

		scheduled, serviceDate, err := normalizeScheduledTime(field(colScheduledTime))
		if err != nil {
			rowErrs = multierr.Append(rowErrs, fmt.Errorf("line %d: %w", line, err))
		} else {
			row.ScheduledTime = scheduled
			row.ServiceDate = serviceDate
		}

		rows = append(rows, row)
	}

	if rowErrs != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, rowErrs, "csv rows failed validation")
	}
	if len(rows) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "csv has no data rows")
	}
	return rows, nil
}

// normalizeScheduledTime accepts a bare HH:MM or a full date-time and returns
// the time-of-day plus an optional embedded service date.
func normalizeScheduledTime(value string) (scheduled, serviceDate string, err error) {
	if value == "" {
		return "", "", fmt.Errorf("scheduled time is required")
	}
	if t, perr := time.Parse("15:04", value); perr == nil {
		return t.Format("15:04"), "", nil
	}
	for _, layout := range dateTimeLayouts {
		if t, perr := time.Parse(layout, value); perr == nil {
			return t.Format("15:04"), t.Format("2006-01-02"), nil
		}
	}
	return "", "", fmt.Errorf("scheduled time %q is neither HH:MM nor a date-time", value)
}
