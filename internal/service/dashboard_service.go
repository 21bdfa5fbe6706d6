package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/campushub/classroom-api/internal/dto"
	"github.com/campushub/classroom-api/internal/models"
	appErrors "github.com/campushub/classroom-api/pkg/errors"
)

const dashboardCacheKey = "dashboard:stats"

type dashboardBookingReader interface {
	ListActive(ctx context.Context) ([]models.Booking, error)
}

// DashboardService aggregates occupancy statistics over the weekly slot
// grid: six operating days times four shifts, minus the Saturday night
// slot the institution never opens, so 23 slots per room.
type DashboardService struct {
	rooms    roomDirectory
	bookings dashboardBookingReader
	cache    *CacheService
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(rooms roomDirectory, bookings dashboardBookingReader, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{rooms: rooms, bookings: bookings, cache: cache, cacheTTL: cacheTTL, logger: logger}
}

// slotsPerRoom counts the bookable weekly grid cells for one room.
func slotsPerRoom() int {
	return 6*len(models.Shifts()) - 1
}

// slotOpen reports whether a weekday/shift cell is part of the grid.
func slotOpen(weekday models.Weekday, shift models.Shift) bool {
	if weekday == models.Sunday {
		return false
	}
	if weekday == models.Saturday && shift == models.ShiftNight {
		return false
	}
	return true
}

// Stats computes the occupancy summary, served from cache when possible.
func (s *DashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var cached dto.DashboardStats
	if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	rooms, err := s.rooms.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list rooms")
	}
	bookings, err := s.bookings.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}

	byRoom := make(map[string][]models.Booking)
	for _, booking := range bookings {
		if !slotOpen(booking.Weekday, booking.Shift) {
			continue
		}
		byRoom[booking.RoomID] = append(byRoom[booking.RoomID], booking)
	}

	stats := &dto.DashboardStats{
		TotalRooms: len(rooms),
		TotalSlots: len(rooms) * slotsPerRoom(),
		Rooms:      make([]dto.RoomOccupancy, 0, len(rooms)),
	}

	for _, room := range rooms {
		occupancy := dto.RoomOccupancy{
			RoomID:   room.ID,
			RoomName: room.Name,
			Block:    room.Block,
			Slots:    []dto.SlotBooking{},
		}
		seen := make(map[string]bool)
		for _, booking := range byRoom[room.ID] {
			key := fmt.Sprintf("%d:%s", booking.Weekday, booking.Shift)
			if seen[key] {
				continue
			}
			seen[key] = true
			occupancy.Slots = append(occupancy.Slots, dto.SlotBooking{
				Weekday:     int(booking.Weekday),
				WeekdayName: booking.Weekday.Name(),
				Shift:       booking.Shift,
				ShiftLabel:  booking.Shift.Label(),
				CourseName:  booking.CourseName,
				Instructor:  booking.Instructor,
				StartTime:   booking.StartTime,
				EndTime:     booking.EndTime,
			})
		}
		occupancy.OccupiedSlots = len(occupancy.Slots)
		stats.OccupiedSlots += occupancy.OccupiedSlots
		stats.Rooms = append(stats.Rooms, occupancy)
	}

	stats.FreeSlots = stats.TotalSlots - stats.OccupiedSlots
	if stats.TotalSlots > 0 {
		stats.OccupancyRate = float64(stats.OccupiedSlots) / float64(stats.TotalSlots)
	}

	if err := s.cache.Set(ctx, dashboardCacheKey, stats, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard stats", zap.Error(err))
	}
	return stats, nil
}
