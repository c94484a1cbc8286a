package usecase

import (
	"context"
	"testing"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/dto/request"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func newRoomService(rooms ...*entity.Room) (RoomService, *fakeRoomRepo) {
	roomRepo := newFakeRoomRepo(rooms...)
	repo := newFakeRepository(newFakeBookingRepo(), roomRepo, newFakeCancellationRepo())
	return NewRoomService(repo, zap.NewNop()), roomRepo
}

func TestListRooms(t *testing.T) {
	service, _ := newRoomService(
		&entity.Room{Base: entity.Base{ID: uuid.New()}, Name: "Deluxe 101", Status: entity.RoomStatusAvailable},
		&entity.Room{Base: entity.Base{ID: uuid.New()}, Name: "Suite 201", Status: entity.RoomStatusMaintenance},
	)

	resp, err := service.ListRooms(context.Background(), &request.PaginatedRequest{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListRooms: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Errorf("len(data) = %d, want 2", len(resp.Data))
	}
	if resp.Pagination.Total != 2 {
		t.Errorf("total = %d, want 2", resp.Pagination.Total)
	}
}

func TestGetRoomNotFound(t *testing.T) {
	service, _ := newRoomService()

	_, err := service.GetRoom(context.Background(), uuid.New().String())
	if utils.ErrorKind(err) != utils.ErrNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestUpdateRoomStatus(t *testing.T) {
	room := &entity.Room{Base: entity.Base{ID: uuid.New()}, Name: "Deluxe 101", Status: entity.RoomStatusAvailable}
	service, roomRepo := newRoomService(room)

	resp, err := service.UpdateRoomStatus(context.Background(), room.ID.String(), &request.UpdateRoomStatusRequest{
		Status: "maintenance",
	})
	if err != nil {
		t.Fatalf("UpdateRoomStatus: %v", err)
	}
	if resp.Status != entity.RoomStatusMaintenance {
		t.Errorf("status = %s, want maintenance", resp.Status)
	}
	if roomRepo.rooms[room.ID].Status != entity.RoomStatusMaintenance {
		t.Error("status not persisted")
	}
}

func TestUpdateRoomStatusRejectsUnknownValue(t *testing.T) {
	room := &entity.Room{Base: entity.Base{ID: uuid.New()}, Name: "Deluxe 101", Status: entity.RoomStatusAvailable}
	service, _ := newRoomService(room)

	_, err := service.UpdateRoomStatus(context.Background(), room.ID.String(), &request.UpdateRoomStatusRequest{
		Status: "closed",
	})
	if utils.ErrorKind(err) != utils.ErrValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
