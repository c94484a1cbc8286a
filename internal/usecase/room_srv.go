package usecase

import (
	"context"
	"fmt"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/dto/response"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RoomService exposes the room catalog. Guests browse it to pick dates;
// staff flip a room's status when it goes in or out of service.
type RoomService interface {
	ListRooms(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RoomResponse], error)
	GetRoom(ctx context.Context, roomID string) (*response.RoomResponse, error)
	UpdateRoomStatus(ctx context.Context, roomID string, req *request.UpdateRoomStatusRequest) (*response.RoomResponse, error)
}

type roomService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewRoomService(repo *repository.Repository, log *zap.Logger) RoomService {
	return &roomService{
		repo: repo,
		log:  log.With(zap.String("service", "room")),
	}
}

func (s *roomService) ListRooms(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.RoomResponse], error) {
	rooms, err := s.repo.Room.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		s.log.Error("Failed to list rooms", zap.Error(err))
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	total, err := s.repo.Room.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("count rooms: %w", err)
	}

	roomResponses := make([]response.RoomResponse, len(rooms))
	for i, room := range rooms {
		roomResponses[i] = response.RoomToResponse(room)
	}

	return response.NewPaginatedResponse(roomResponses, req.Page, req.PerPage, total), nil
}

func (s *roomService) GetRoom(ctx context.Context, roomID string) (*response.RoomResponse, error) {
	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, utils.NewValidationError("invalid room ID format %s", roomID)
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return nil, utils.NewNotFoundError("room %s not found", roomID)
	}

	resp := response.RoomToResponse(room)
	return &resp, nil
}

// UpdateRoomStatus flips a room's operational status. Existing bookings are
// untouched: the status only gates new bookings.
func (s *roomService) UpdateRoomStatus(ctx context.Context, roomID string, req *request.UpdateRoomStatusRequest) (*response.RoomResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, utils.NewValidationError("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(roomID)
	if err != nil {
		return nil, utils.NewValidationError("invalid room ID format %s", roomID)
	}

	room, err := s.repo.Room.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find room: %w", err)
	}
	if room == nil {
		return nil, utils.NewNotFoundError("room %s not found", roomID)
	}

	status := entity.RoomStatus(req.Status)
	if err := s.repo.Room.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update room status: %w", err)
	}
	room.Status = status

	s.log.Info("Room status updated",
		zap.String("room_id", roomID),
		zap.String("status", req.Status),
	)

	resp := response.RoomToResponse(room)
	return &resp, nil
}
