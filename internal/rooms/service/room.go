package service

import (
	"context"
	"errors"
	"strings"

	roomserrors "roomly/internal/rooms/errors"
	"roomly/internal/rooms/repository"
	"roomly/internal/rooms/validator"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/sanitizer"
	"roomly/pkg/timeutil"
)

// AvailabilityClient asks the bookings service about live and windowed
// room availability. The rooms service never reads the bookings table.
type AvailabilityClient interface {
	ActiveStatus(ctx context.Context, roomID int64) (string, error)
	CheckAvailability(ctx context.Context, roomID int64, window timeutil.Window) (bool, error)
}

// RoomStatus is the live status projection for one room.
type RoomStatus struct {
	RoomID int64  `json:"room_id"`
	Name   string `json:"name"`
	Status string `json:"status"`
}

type RoomService interface {
	Create(ctx context.Context, req *model.RoomCreate) (*model.Room, error)
	GetAll(ctx context.Context, activeOnly bool) ([]*model.Room, error)
	GetByID(ctx context.Context, id int64) (*model.Room, error)
	Update(ctx context.Context, id int64, upd *model.RoomUpdate) (*model.Room, error)
	Delete(ctx context.Context, id int64) error
	Available(ctx context.Context, filter model.RoomFilter, window *timeutil.Window) ([]*model.Room, error)
	LiveStatus(ctx context.Context, id int64) (*RoomStatus, error)
}

type roomService struct {
	repo      repository.RoomRepository
	validator *validator.RoomValidator
	bookings  AvailabilityClient
	log       *logger.Logger
}

func NewRoomService(
	repo repository.RoomRepository,
	roomValidator *validator.RoomValidator,
	bookings AvailabilityClient,
	log *logger.Logger,
) RoomService {
	return &roomService{
		repo:      repo,
		validator: roomValidator,
		bookings:  bookings,
		log:       log,
	}
}

func (s *roomService) Create(ctx context.Context, req *model.RoomCreate) (*model.Room, error) {
	req.Name = sanitizer.NormalizeName(req.Name)

	if err := s.validator.ValidateCreate(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			return nil, apperrors.Validation("room validation failed").WithExtra(fields.Fields())
		}
		return nil, apperrors.Validation(err.Error())
	}

	room := &model.Room{
		Name:      req.Name,
		Capacity:  *req.Capacity,
		Equipment: req.Equipment,
		Location:  req.Location,
		IsActive:  true,
	}

	if err := s.repo.Create(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("room name already taken")
		}
		s.log.Error("Failed to create room", "name", room.Name, "error", err)
		return nil, apperrors.Internal("failed to create room", err)
	}

	s.log.Info("Room created", "id", room.ID, "name", room.Name)
	return room, nil
}

func (s *roomService) GetAll(ctx context.Context, activeOnly bool) ([]*model.Room, error) {
	rooms, err := s.repo.FindAll(ctx, activeOnly)
	if err != nil {
		s.log.Error("Failed to list rooms", "error", err)
		return nil, apperrors.Internal("failed to list rooms", err)
	}
	return rooms, nil
}

func (s *roomService) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	room, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return nil, apperrors.NotFound("room")
		}
		s.log.Error("Failed to load room", "id", id, "error", err)
		return nil, apperrors.Internal("failed to load room", err)
	}
	return room, nil
}

func (s *roomService) Update(ctx context.Context, id int64, upd *model.RoomUpdate) (*model.Room, error) {
	if err := s.validator.ValidateUpdate(upd); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		room.Name = sanitizer.NormalizeName(*upd.Name)
	}
	if upd.Capacity != nil {
		room.Capacity = *upd.Capacity
	}
	if upd.Equipment != nil {
		room.Equipment = upd.Equipment
	}
	if upd.Location != nil {
		room.Location = upd.Location
	}
	if upd.IsActive != nil {
		room.IsActive = *upd.IsActive
	}

	if err := s.repo.Update(ctx, room); err != nil {
		if errors.Is(err, roomserrors.ErrDuplicate) {
			return nil, apperrors.Conflict("room name already taken")
		}
		s.log.Error("Failed to update room", "id", id, "error", err)
		return nil, apperrors.Internal("failed to update room", err)
	}

	s.log.Info("Room updated", "id", id)
	return room, nil
}

// Delete removes the room from the catalog. Booking history is owned by
// the bookings service and survives.
func (s *roomService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, roomserrors.ErrNotFound) {
			return apperrors.NotFound("room")
		}
		s.log.Error("Failed to delete room", "id", id, "error", err)
		return apperrors.Internal("failed to delete room", err)
	}
	s.log.Info("Room deleted", "id", id)
	return nil
}

// Available filters active rooms by capacity, location and equipment,
// and, when a window is given, drops rooms the bookings service reports
// as taken. A room whose availability cannot be determined is omitted
// rather than failing the whole listing.
func (s *roomService) Available(ctx context.Context, filter model.RoomFilter, window *timeutil.Window) ([]*model.Room, error) {
	rooms, err := s.GetAll(ctx, true)
	if err != nil {
		return nil, err
	}

	matched := make([]*model.Room, 0, len(rooms))
	for _, room := range rooms {
		if !matchesFilter(room, filter) {
			continue
		}
		if window != nil {
			available, err := s.bookings.CheckAvailability(ctx, room.ID, *window)
			if err != nil || !available {
				if err != nil {
					s.log.Debug("Availability check failed, omitting room",
						"room_id", room.ID, "error", err)
				}
				continue
			}
		}
		matched = append(matched, room)
	}
	return matched, nil
}

func matchesFilter(room *model.Room, filter model.RoomFilter) bool {
	if filter.MinCapacity > 0 && room.Capacity < filter.MinCapacity {
		return false
	}
	if filter.Location != "" {
		if room.Location == nil ||
			!strings.Contains(strings.ToLower(*room.Location), strings.ToLower(filter.Location)) {
			return false
		}
	}
	if filter.Equipment != "" {
		tokens := sanitizer.SplitTokens(filter.Equipment)
		if room.Equipment == nil {
			return len(tokens) == 0
		}
		have := strings.ToLower(*room.Equipment)
		for _, token := range tokens {
			if !strings.Contains(have, token) {
				return false
			}
		}
	}
	return true
}

// LiveStatus combines existence (owned here) with live occupancy (owned
// by the bookings service). When the bookings service cannot answer the
// status degrades to "unknown" instead of failing the probe.
func (s *roomService) LiveStatus(ctx context.Context, id int64) (*RoomStatus, error) {
	room, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	status, err := s.bookings.ActiveStatus(ctx, room.ID)
	if err != nil {
		s.log.Warn("Live status lookup failed", "room_id", room.ID, "error", err)
		status = "unknown"
	}

	return &RoomStatus{RoomID: room.ID, Name: room.Name, Status: status}, nil
}
