package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/data/repository"
	"hotel-booking/internal/gateway"
	"hotel-booking/internal/notifier"

	"github.com/google/uuid"
)

// In-memory repository fakes. They mirror the repository contracts including
// the (nil, nil) not-found convention.

type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking

	createErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (r *fakeBookingRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.GatewayOrderID != nil && *b.GatewayOrderID == orderID {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeBookingRepo) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			clone := *b
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) Update(ctx context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bookings[booking.ID]; !ok {
		return errors.New("booking not found")
	}
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID uuid.UUID, status entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	b.Status = status
	return nil
}

func (r *fakeBookingRepo) CountOverlapping(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, b := range r.bookings {
		if b.RoomID != roomID || b.ID == excludeID || !b.ActiveForConflict() {
			continue
		}
		if b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) SetGatewayOrder(ctx context.Context, bookingID uuid.UUID, orderID, requestID, returnURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return errors.New("booking not found")
	}
	b.GatewayOrderID = &orderID
	b.GatewayRequestID = &requestID
	b.ReturnURL = &returnURL
	return nil
}

func (r *fakeBookingRepo) ApplyPaymentOutcome(ctx context.Context, bookingID uuid.UUID, paymentStatus entity.PaymentStatus, status entity.BookingStatus, transactionID *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[bookingID]
	if !ok {
		return false, errors.New("booking not found")
	}
	// Same guard as the SQL: paid is terminal, a status never re-applies.
	if b.PaymentStatus == entity.PaymentStatusPaid || b.PaymentStatus == paymentStatus {
		return false, nil
	}
	b.PaymentStatus = paymentStatus
	b.Status = status
	b.GatewayTransactionID = transactionID
	return true, nil
}

// get returns the stored booking for assertions.
func (r *fakeBookingRepo) get(id uuid.UUID) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil
	}
	clone := *b
	return &clone
}

func (r *fakeBookingRepo) put(b *entity.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *b
	r.bookings[b.ID] = &clone
}

type fakeRoomRepo struct {
	rooms map[uuid.UUID]*entity.Room

	findErr error
}

func newFakeRoomRepo(rooms ...*entity.Room) *fakeRoomRepo {
	m := make(map[uuid.UUID]*entity.Room, len(rooms))
	for _, room := range rooms {
		m[room.ID] = room
	}
	return &fakeRoomRepo{rooms: m}
}

func (r *fakeRoomRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	return room, nil
}

func (r *fakeRoomRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.Room, error) {
	var out []*entity.Room
	for _, room := range r.rooms {
		out = append(out, room)
	}
	return out, nil
}

func (r *fakeRoomRepo) CountAll(ctx context.Context) (int64, error) {
	return int64(len(r.rooms)), nil
}

func (r *fakeRoomRepo) UpdateStatus(ctx context.Context, roomID uuid.UUID, status entity.RoomStatus) error {
	room, ok := r.rooms[roomID]
	if !ok {
		return errors.New("room not found")
	}
	room.Status = status
	return nil
}

type fakeCancellationRepo struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.CancellationRequest
}

func newFakeCancellationRepo() *fakeCancellationRepo {
	return &fakeCancellationRepo{requests: make(map[uuid.UUID]*entity.CancellationRequest)}
}

func (r *fakeCancellationRepo) Create(ctx context.Context, request *entity.CancellationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *request
	r.requests[request.ID] = &clone
	return nil
}

func (r *fakeCancellationRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.CancellationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.requests[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeCancellationRepo) FindPendingByBookingID(ctx context.Context, bookingID uuid.UUID) (*entity.CancellationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.requests {
		if c.BookingID == bookingID && c.Status == entity.CancellationStatusPending {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeCancellationRepo) FindAll(ctx context.Context, limit, offset int) ([]*entity.CancellationRequest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.CancellationRequest
	for _, c := range r.requests {
		clone := *c
		out = append(out, &clone)
	}
	return out, nil
}

func (r *fakeCancellationRepo) CountAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.requests)), nil
}

func (r *fakeCancellationRepo) UpdateStatus(ctx context.Context, requestID uuid.UUID, status entity.CancellationStatus, adminNotes *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.requests[requestID]
	if !ok {
		return errors.New("cancellation request not found")
	}
	c.Status = status
	c.AdminNotes = adminNotes
	return nil
}

func (r *fakeCancellationRepo) UpdateRefund(ctx context.Context, requestID uuid.UUID, refundStatus entity.RefundStatus, refundAmount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.requests[requestID]
	if !ok {
		return errors.New("cancellation request not found")
	}
	c.RefundStatus = refundStatus
	c.RefundAmount = refundAmount
	return nil
}

func (r *fakeCancellationRepo) get(id uuid.UUID) *entity.CancellationRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.requests[id]
	if !ok {
		return nil
	}
	clone := *c
	return &clone
}

type fakeUserRepo struct {
	users map[uuid.UUID]*entity.User
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if r.users == nil {
		return nil, nil
	}
	u, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return u, nil
}

type fakeSessionRepo struct{}

func (r *fakeSessionRepo) FindValidSession(ctx context.Context, token string) (*entity.Session, error) {
	return nil, nil
}

func newFakeRepository(bookings *fakeBookingRepo, rooms *fakeRoomRepo, cancellations *fakeCancellationRepo) *repository.Repository {
	return &repository.Repository{
		User:         &fakeUserRepo{},
		Session:      &fakeSessionRepo{},
		Room:         rooms,
		Booking:      bookings,
		Cancellation: cancellations,
	}
}

// recordingNotifier counts published events per queue-equivalent.
type recordingNotifier struct {
	mu        sync.Mutex
	confirmed []notifier.BookingConfirmedEvent
	cancelled []notifier.BookingCancelledEvent
	decided   []notifier.CancellationDecidedEvent
	refunded  []notifier.RefundCompletedEvent
}

func (n *recordingNotifier) BookingConfirmed(ctx context.Context, e notifier.BookingConfirmedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.confirmed = append(n.confirmed, e)
}

func (n *recordingNotifier) BookingCancelled(ctx context.Context, e notifier.BookingCancelledEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, e)
}

func (n *recordingNotifier) CancellationDecided(ctx context.Context, e notifier.CancellationDecidedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decided = append(n.decided, e)
}

func (n *recordingNotifier) RefundCompleted(ctx context.Context, e notifier.RefundCompletedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.refunded = append(n.refunded, e)
}

// noopLocker hands out releases without any mutual exclusion; conflict tests
// drive the repository state directly.
type noopLocker struct{}

func (noopLocker) Acquire(ctx context.Context, roomID string) (func(), error) {
	return func() {}, nil
}

// fakeGateway verifies callbacks with a switch and returns a canned pay URL.
type fakeGateway struct {
	verifyOK  bool
	createErr error
	lastOrder gateway.PaymentOrder
	createCnt int
}

func (g *fakeGateway) CreatePayment(ctx context.Context, order gateway.PaymentOrder) (string, error) {
	g.createCnt++
	g.lastOrder = order
	if g.createErr != nil {
		return "", g.createErr
	}
	return "https://pay.example.com/" + order.OrderID, nil
}

func (g *fakeGateway) VerifyCallback(cb *gateway.Callback) bool {
	return g.verifyOK
}

// fakePayout fails a configurable number of times before succeeding.
type fakePayout struct {
	failures  int
	transfers int
}

func (p *fakePayout) Transfer(ctx context.Context, orderID string, amount float64) error {
	p.transfers++
	if p.failures > 0 {
		p.failures--
		return errors.New("payout provider unavailable")
	}
	return nil
}
