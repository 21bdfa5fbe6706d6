package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/models"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
	"github.com/campushub/classroom-api/pkg/export"
)

type exportBookingReader interface {
	ListActive(ctx context.Context) ([]models.Booking, error)
	ListActiveByRoom(ctx context.Context, roomID string) ([]models.Booking, error)
}

type exportIncidentReader interface {
	ListVisibleByRoom(ctx context.Context, roomID string) ([]models.Incident, error)
}

type exportRoomReader interface {
	ListAll(ctx context.Context) ([]models.Room, error)
	FindByID(ctx context.Context, id string) (*models.Room, error)
}

// ExportService renders report payloads into PDF, XLSX, or CSV bytes.
type ExportService struct {
	rooms     exportRoomReader
	bookings  exportBookingReader
	incidents exportIncidentReader
	pdf       *export.PDFExporter
	xlsx      *export.XLSXExporter
	csv       *export.CSVExporter
	logger    *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(rooms exportRoomReader, bookings exportBookingReader, incidents exportIncidentReader, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		rooms:     rooms,
		bookings:  bookings,
		incidents: incidents,
		pdf:       export.NewPDFExporter(),
		xlsx:      export.NewXLSXExporter(),
		csv:       export.NewCSVExporter(),
		logger:    logger,
	}
}

// Generate builds the requested report and returns a filename plus bytes.
func (s *ExportService) Generate(ctx context.Context, reportType models.ReportType, format models.ReportFormat, roomID *string) (string, []byte, error) {
	if !reportType.Valid() {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}
	if !format.Valid() {
		return "", nil, appErrors.Clone(appErrors.ErrValidation, "unknown report format")
	}

	switch reportType {
	case models.ReportTypeRoomDetail:
		if roomID == nil || *roomID == "" {
			return "", nil, appErrors.Clone(appErrors.ErrValidation, "room detail report requires a room id")
		}
		return s.roomDetail(ctx, *roomID, format)
	case models.ReportTypeGeneral:
		return s.general(ctx, format)
	default:
		return s.availability(ctx, format)
	}
}

func (s *ExportService) roomDetail(ctx context.Context, roomID string, format models.ReportFormat) (string, []byte, error) {
	room, err := s.rooms.FindByID(ctx, roomID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, appErrors.Clone(appErrors.ErrNotFound, "room not found")
		}
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room")
	}

	bookings, err := s.bookings.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room schedule")
	}
	incidents, err := s.incidents.ListVisibleByRoom(ctx, roomID)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load room incidents")
	}

	schedule := scheduleDataset(bookings)
	occupancy := float64(len(bookings)) / float64(slotsPerRoom())

	hasComputers := "No"
	if room.HasComputers {
		hasComputers = "Yes"
	}
	info := [][2]string{
		{"Name", room.Name},
		{"Block", room.Block},
		{"Capacity", fmt.Sprintf("%d seats", room.Capacity)},
		{"Computers", hasComputers},
		{"Software", room.Software},
		{"Occupancy", fmt.Sprintf("%.0f%% of weekly slots", occupancy*100)},
	}

	filename := fmt.Sprintf("room-%s.%s", slugify(room.Name), format)
	switch format {
	case models.ReportFormatPDF:
		sections := []export.Section{
			{Heading: "Room", KeyValues: info},
			{Heading: "Weekly schedule", Table: &schedule},
		}
		if len(incidents) > 0 {
			incidentTable := incidentDataset(incidents)
			sections = append(sections, export.Section{Heading: "Open incidents", Table: &incidentTable})
		}
		data, err := s.pdf.Render(export.Document{
			Title:    "Room report",
			Subtitle: room.Name,
			Sections: sections,
			Footer:   generatedFooter(),
		})
		return filename, data, wrapRender(err)
	case models.ReportFormatXLSX:
		sheets := []export.Sheet{{Name: "Schedule", Data: schedule}}
		if len(incidents) > 0 {
			sheets = append(sheets, export.Sheet{Name: "Incidents", Data: incidentDataset(incidents)})
		}
		data, err := s.xlsx.Render(sheets)
		return filename, data, wrapRender(err)
	default:
		data, err := s.csv.Render(schedule)
		return filename, data, wrapRender(err)
	}
}

func (s *ExportService) general(ctx context.Context, format models.ReportFormat) (string, []byte, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	counts := make(map[string]int)
	for _, booking := range bookings {
		counts[booking.RoomID]++
	}

	summary := export.Dataset{Headers: []string{"Room", "Block", "Capacity", "Computers", "Weekly bookings", "Occupancy"}}
	for _, room := range rooms {
		hasComputers := "No"
		if room.HasComputers {
			hasComputers = "Yes"
		}
		summary.Rows = append(summary.Rows, map[string]string{
			"Room":            room.Name,
			"Block":           room.Block,
			"Capacity":        fmt.Sprintf("%d", room.Capacity),
			"Computers":       hasComputers,
			"Weekly bookings": fmt.Sprintf("%d", counts[room.ID]),
			"Occupancy":       fmt.Sprintf("%.0f%%", float64(counts[room.ID])/float64(slotsPerRoom())*100),
		})
	}

	filename := "rooms-general." + string(format)
	switch format {
	case models.ReportFormatPDF:
		data, err := s.pdf.Render(export.Document{
			Title:    "General room report",
			Subtitle: fmt.Sprintf("%d rooms, %d active bookings", len(rooms), len(bookings)),
			Sections: []export.Section{{Heading: "Rooms", Table: &summary}},
			Footer:   generatedFooter(),
		})
		return filename, data, wrapRender(err)
	case models.ReportFormatXLSX:
		data, err := s.xlsx.Render([]export.Sheet{{Name: "Rooms", Data: summary}})
		return filename, data, wrapRender(err)
	default:
		data, err := s.csv.Render(summary)
		return filename, data, wrapRender(err)
	}
}

// availability renders the weekday-by-shift grid of occupied rooms.
func (s *ExportService) availability(ctx context.Context, format models.ReportFormat) (string, []byte, error) {
	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return "", nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	names := make(map[string]string, len(rooms))
	for _, room := range rooms {
		names[room.ID] = room.Name
	}

	occupied := make(map[string][]string)
	for _, booking := range bookings {
		if !slotOpen(booking.Weekday, booking.Shift) {
			continue
		}
		key := fmt.Sprintf("%d:%s", booking.Weekday, booking.Shift)
		occupied[key] = append(occupied[key], names[booking.RoomID])
	}

	grid := export.Dataset{Headers: []string{"Weekday"}}
	for _, shift := range models.Shifts() {
		grid.Headers = append(grid.Headers, shift.Label())
	}
	for day := models.Monday; day <= models.Saturday; day++ {
		row := map[string]string{"Weekday": day.Name()}
		for _, shift := range models.Shifts() {
			if !slotOpen(day, shift) {
				row[shift.Label()] = "-"
				continue
			}
			key := fmt.Sprintf("%d:%s", day, shift)
			if rooms := occupied[key]; len(rooms) > 0 {
				row[shift.Label()] = strings.Join(rooms, ", ")
			} else {
				row[shift.Label()] = "all free"
			}
		}
		grid.Rows = append(grid.Rows, row)
	}

	filename := "availability." + string(format)
	switch format {
	case models.ReportFormatPDF:
		data, err := s.pdf.Render(export.Document{
			Title:    "Weekly availability",
			Subtitle: "Occupied rooms per weekday and shift",
			Sections: []export.Section{{Table: &grid}},
			Footer:   generatedFooter(),
		})
		return filename, data, wrapRender(err)
	case models.ReportFormatXLSX:
		data, err := s.xlsx.Render([]export.Sheet{{Name: "Availability", Data: grid}})
		return filename, data, wrapRender(err)
	default:
		data, err := s.csv.Render(grid)
		return filename, data, wrapRender(err)
	}
}

func scheduleDataset(bookings []models.Booking) export.Dataset {
	data := export.Dataset{Headers: []string{"Weekday", "Shift", "Course", "Instructor", "Time", "Valid"}}
	for _, booking := range bookings {
		window := "always"
		if booking.ValidFrom != nil || booking.ValidUntil != nil {
			from, until := "...", "..."
			if booking.ValidFrom != nil {
				from = booking.ValidFrom.Format("2006-01-02")
			}
			if booking.ValidUntil != nil {
				until = booking.ValidUntil.Format("2006-01-02")
			}
			window = from + " to " + until
		}
		timeRange := ""
		if booking.StartTime != "" || booking.EndTime != "" {
			timeRange = booking.StartTime + "-" + booking.EndTime
		}
		data.Rows = append(data.Rows, map[string]string{
			"Weekday":    booking.Weekday.Name(),
			"Shift":      booking.Shift.Label(),
			"Course":     booking.CourseName,
			"Instructor": booking.Instructor,
			"Time":       timeRange,
			"Valid":      window,
		})
	}
	return data
}

func incidentDataset(incidents []models.Incident) export.Dataset {
	data := export.Dataset{Headers: []string{"Reported", "Reporter", "Description", "Status"}}
	for _, incident := range incidents {
		status := "open"
		if incident.Resolved {
			status = "resolved"
		}
		data.Rows = append(data.Rows, map[string]string{
			"Reported":    incident.CreatedAt.Format("2006-01-02"),
			"Reporter":    incident.ReporterName,
			"Description": incident.Description,
			"Status":      status,
		})
	}
	return data
}

func slugify(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "room"
	}
	return slug
}

func generatedFooter() string {
	return "Generated " + time.Now().UTC().Format("2006-01-02 15:04 MST")
}

func wrapRender(err error) error {
	if err == nil {
		return nil
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report")
}
