package service

import (
	"context"
	"errors"
	"strconv"

	bookingserrors "roomly/internal/bookings/errors"
	"roomly/internal/bookings/repository"
	"roomly/internal/bookings/validator"
	"roomly/pkg/auth"
	apperrors "roomly/pkg/errors"
	"roomly/pkg/events"
	"roomly/pkg/logger"
	"roomly/pkg/model"
	"roomly/pkg/timeutil"
)

// ExistenceValidator confirms a referenced user or room exists before a
// mutation introduces the reference. Implementations return nil, a
// not-found error, or service_unavailable when they cannot answer.
type ExistenceValidator interface {
	EnsureUserExists(ctx context.Context, userID int64) error
	EnsureRoomExists(ctx context.Context, roomID int64) error
}

// NameResolver resolves display names for list enrichment. Failures are
// tolerated; a booking row is never withheld because a name lookup
// failed.
type NameResolver interface {
	Username(ctx context.Context, userID int64) (string, error)
	RoomName(ctx context.Context, roomID int64) (string, error)
}

// EventPublisher emits booking lifecycle events. May be nil when event
// publishing is disabled.
type EventPublisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
}

type BookingService interface {
	Create(ctx context.Context, p auth.Principal, req *model.BookingCreate) (*model.Booking, error)
	List(ctx context.Context, p auth.Principal) ([]*model.BookingWithNames, error)
	Update(ctx context.Context, p auth.Principal, id int64, upd *model.BookingUpdate) (*model.Booking, error)
	Cancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error)
	ForceCancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error)
	CheckAvailability(ctx context.Context, roomID int64, window timeutil.Window) (bool, error)
	ActiveStatus(ctx context.Context, roomID int64) (string, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	exist     ExistenceValidator
	names     NameResolver
	events    EventPublisher
	log       *logger.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	bookingValidator *validator.BookingValidator,
	exist ExistenceValidator,
	names NameResolver,
	eventPublisher EventPublisher,
	log *logger.Logger,
) BookingService {
	return &bookingService{
		repo:      repo,
		validator: bookingValidator,
		exist:     exist,
		names:     names,
		events:    eventPublisher,
		log:       log,
	}
}

// Create runs the fixed precondition chain: field presence, who the
// booking is for, window validity, referenced entities, conflict. The
// first failed check ends the request; in particular a caller is told
// they are forbidden before learning whether the room exists.
func (s *bookingService) Create(ctx context.Context, p auth.Principal, req *model.BookingCreate) (*model.Booking, error) {
	if err := s.validator.ValidateCreate(req); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) {
			return nil, apperrors.Validation("booking validation failed").WithExtra(fields.Fields())
		}
		return nil, apperrors.Validation(err.Error())
	}

	if !auth.CanCreateFor(p, req.UserID) {
		return nil, apperrors.Forbidden("cannot create a booking for another user")
	}

	start, err := timeutil.Parse(req.StartTime)
	if err != nil {
		return nil, apperrors.Validation("start_time is not a valid timestamp")
	}
	end, err := timeutil.Parse(req.EndTime)
	if err != nil {
		return nil, apperrors.Validation("end_time is not a valid timestamp")
	}
	if _, err := timeutil.NewWindow(start, end); err != nil {
		return nil, apperrors.Validation("end_time must be after start_time")
	}

	if err := s.exist.EnsureUserExists(ctx, req.UserID); err != nil {
		return nil, err
	}
	if err := s.exist.EnsureRoomExists(ctx, req.RoomID); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		UserID:    req.UserID,
		RoomID:    req.RoomID,
		StartTime: start,
		EndTime:   end,
		Status:    model.BookingActive,
	}

	if err := s.repo.CreateIfFree(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrTimeConflict) {
			return nil, apperrors.Conflict("time slot conflicts with an existing booking")
		}
		s.log.Error("Failed to create booking", "error", err)
		return nil, apperrors.Internal("failed to create booking", err)
	}

	s.log.Info("Booking created",
		"id", booking.ID,
		"user_id", booking.UserID,
		"room_id", booking.RoomID,
		"start_time", booking.StartTime,
		"end_time", booking.EndTime,
	)
	s.publish(ctx, events.BookingCreated, booking)
	return booking, nil
}

// List returns the caller's bookings, or every booking for admins,
// ordered by start time and enriched with owner and room names.
func (s *bookingService) List(ctx context.Context, p auth.Principal) ([]*model.BookingWithNames, error) {
	var bookings []*model.Booking
	var err error
	if p.IsAdmin() {
		bookings, err = s.repo.FindAll(ctx)
	} else {
		bookings, err = s.repo.FindByUser(ctx, p.ID)
	}
	if err != nil {
		s.log.Error("Failed to list bookings", "error", err)
		return nil, apperrors.Internal("failed to list bookings", err)
	}

	usernames := make(map[int64]*string)
	roomNames := make(map[int64]*string)

	enriched := make([]*model.BookingWithNames, 0, len(bookings))
	for _, booking := range bookings {
		username, ok := usernames[booking.UserID]
		if !ok {
			username = s.lookupUsername(ctx, booking.UserID)
			usernames[booking.UserID] = username
		}
		roomName, ok := roomNames[booking.RoomID]
		if !ok {
			roomName = s.lookupRoomName(ctx, booking.RoomID)
			roomNames[booking.RoomID] = roomName
		}
		enriched = append(enriched, &model.BookingWithNames{
			Booking:  *booking,
			Username: username,
			RoomName: roomName,
		})
	}
	return enriched, nil
}

// Update applies a partial update over the stored booking. Ordinary
// updates require active status and a conflict-free merged window;
// an admin with force skips both gates. A forced update never touches
// status: refreshing a canceled booking's times leaves it canceled.
func (s *bookingService) Update(ctx context.Context, p auth.Principal, id int64, upd *model.BookingUpdate) (*model.Booking, error) {
	if err := s.validator.ValidateUpdate(upd); err != nil {
		return nil, apperrors.Validation(err.Error())
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanMutate(p, booking.UserID) {
		return nil, apperrors.Forbidden("cannot modify another user's booking")
	}

	forced := auth.ForceApplies(p, upd.Force)
	if booking.Status != model.BookingActive && !forced {
		return nil, apperrors.InvalidState("cannot update a " + booking.Status + " booking")
	}

	merged := *booking
	if upd.RoomID != 0 {
		if err := s.exist.EnsureRoomExists(ctx, upd.RoomID); err != nil {
			return nil, err
		}
		merged.RoomID = upd.RoomID
	}
	if upd.StartTime != "" {
		start, err := timeutil.Parse(upd.StartTime)
		if err != nil {
			return nil, apperrors.Validation("start_time is not a valid timestamp")
		}
		merged.StartTime = start
	}
	if upd.EndTime != "" {
		end, err := timeutil.Parse(upd.EndTime)
		if err != nil {
			return nil, apperrors.Validation("end_time is not a valid timestamp")
		}
		merged.EndTime = end
	}

	if _, err := timeutil.NewWindow(merged.StartTime, merged.EndTime); err != nil {
		return nil, apperrors.Validation("end_time must be after start_time")
	}

	if err := s.repo.UpdateWindow(ctx, &merged, !forced); err != nil {
		switch {
		case errors.Is(err, bookingserrors.ErrTimeConflict):
			return nil, apperrors.Conflict("time slot conflicts with an existing booking")
		case errors.Is(err, bookingserrors.ErrNotFound):
			return nil, apperrors.NotFound("booking")
		}
		s.log.Error("Failed to update booking", "id", id, "error", err)
		return nil, apperrors.Internal("failed to update booking", err)
	}

	s.log.Info("Booking updated", "id", id, "forced", forced)
	s.publish(ctx, events.BookingUpdated, &merged)
	return &merged, nil
}

// Cancel is the self-service soft cancel. Only the owner or an admin
// may cancel, only from active status, and force never applies here.
func (s *bookingService) Cancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error) {
	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	if !auth.CanMutate(p, booking.UserID) {
		return nil, apperrors.Forbidden("cannot cancel another user's booking")
	}

	if booking.Status != model.BookingActive {
		return nil, apperrors.InvalidState("only active bookings can be canceled")
	}

	return s.markCanceled(ctx, booking)
}

// ForceCancel cancels from any status. Admin-only.
func (s *bookingService) ForceCancel(ctx context.Context, p auth.Principal, id int64) (*model.Booking, error) {
	if !p.IsAdmin() {
		return nil, apperrors.Forbidden("force-cancel requires the admin role")
	}

	booking, err := s.loadBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	return s.markCanceled(ctx, booking)
}

// CheckAvailability answers the public conflict probe. The room must
// exist; not-found and unavailable from the rooms service pass through.
func (s *bookingService) CheckAvailability(ctx context.Context, roomID int64, window timeutil.Window) (bool, error) {
	if err := s.exist.EnsureRoomExists(ctx, roomID); err != nil {
		return false, err
	}

	conflict, err := s.repo.HasConflict(ctx, roomID, window, 0)
	if err != nil {
		s.log.Error("Failed to check availability", "room_id", roomID, "error", err)
		return false, apperrors.Internal("failed to check availability", err)
	}
	return !conflict, nil
}

// ActiveStatus reports whether an active booking covers the room right
// now. Unknown rooms simply read available; no existence check runs.
func (s *bookingService) ActiveStatus(ctx context.Context, roomID int64) (string, error) {
	booked, err := s.repo.HasActiveAt(ctx, roomID, timeutil.Now())
	if err != nil {
		s.log.Error("Failed to query active status", "room_id", roomID, "error", err)
		return "", apperrors.Internal("failed to query room status", err)
	}
	if booked {
		return "booked", nil
	}
	return "available", nil
}

func (s *bookingService) loadBooking(ctx context.Context, id int64) (*model.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		s.log.Error("Failed to load booking", "id", id, "error", err)
		return nil, apperrors.Internal("failed to load booking", err)
	}
	return booking, nil
}

func (s *bookingService) markCanceled(ctx context.Context, booking *model.Booking) (*model.Booking, error) {
	if err := s.repo.UpdateStatus(ctx, booking.ID, model.BookingCanceled); err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFound("booking")
		}
		s.log.Error("Failed to cancel booking", "id", booking.ID, "error", err)
		return nil, apperrors.Internal("failed to cancel booking", err)
	}

	booking.Status = model.BookingCanceled
	booking.UpdatedAt = timeutil.Now()

	s.log.Info("Booking canceled", "id", booking.ID)
	s.publish(ctx, events.BookingCanceled, booking)
	return booking, nil
}

func (s *bookingService) lookupUsername(ctx context.Context, userID int64) *string {
	if s.names == nil {
		return nil
	}
	username, err := s.names.Username(ctx, userID)
	if err != nil {
		s.log.Debug("Username lookup failed", "user_id", userID, "error", err)
		return nil
	}
	return &username
}

func (s *bookingService) lookupRoomName(ctx context.Context, roomID int64) *string {
	if s.names == nil {
		return nil
	}
	name, err := s.names.RoomName(ctx, roomID)
	if err != nil {
		s.log.Debug("Room name lookup failed", "room_id", roomID, "error", err)
		return nil
	}
	return &name
}

func (s *bookingService) publish(ctx context.Context, eventType string, booking *model.Booking) {
	if s.events == nil {
		return
	}
	key := strconv.FormatInt(booking.ID, 10)
	if err := s.events.Publish(ctx, eventType, key, booking); err != nil {
		s.log.Warn("Booking event publish failed",
			"event_type", eventType,
			"booking_id", booking.ID,
			"error", err,
		)
	}
}
