package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"hotel-booking/internal/data/entity"
	"hotel-booking/internal/dto/request"
	"hotel-booking/internal/gateway"
	"hotel-booking/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type paymentEnv struct {
	service  PaymentService
	bookings *fakeBookingRepo
	gw       *fakeGateway
	notif    *recordingNotifier
	userID   uuid.UUID
}

func testConfig() *utils.Config {
	return &utils.Config{
		Gateway: utils.GatewayConfig{
			RedirectURL: "https://hotel.example.com/payment/result",
		},
		Booking: utils.BookingConfig{
			Timezone:             "UTC",
			RefundTimeoutSeconds: 1,
		},
	}
}

func newPaymentEnv(t *testing.T) *paymentEnv {
	t.Helper()

	bookings := newFakeBookingRepo()
	notif := &recordingNotifier{}
	gw := &fakeGateway{verifyOK: true}
	repo := newFakeRepository(bookings, newFakeRoomRepo(), newFakeCancellationRepo())

	return &paymentEnv{
		service:  NewPaymentService(repo, gw, notif, testConfig(), zap.NewNop()),
		bookings: bookings,
		gw:       gw,
		notif:    notif,
		userID:   uuid.New(),
	}
}

func (e *paymentEnv) seedBooking(status entity.BookingStatus, paymentStatus entity.PaymentStatus) *entity.Booking {
	in, _ := utils.ParseDate("2030-10-07", time.UTC)
	out, _ := utils.ParseDate("2030-10-09", time.UTC)
	booking := &entity.Booking{
		Base:          entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		BookingCode:   utils.GenerateBookingCode(),
		UserID:        e.userID,
		RoomID:        uuid.New(),
		CheckIn:       in,
		CheckOut:      out,
		Adults:        2,
		RoomCount:     1,
		TotalPrice:    400000,
		ContactEmail:  "guest@example.com",
		Status:        status,
		PaymentStatus: paymentStatus,
	}
	e.bookings.put(booking)
	return booking
}

func (e *paymentEnv) callbackFor(booking *entity.Booking, resultCode int) *gateway.Callback {
	b := e.bookings.get(booking.ID)
	orderID := ""
	if b.GatewayOrderID != nil {
		orderID = *b.GatewayOrderID
	}
	return &gateway.Callback{
		OrderID:    orderID,
		Amount:     int64(b.TotalPrice),
		TransID:    4014083433,
		ResultCode: resultCode,
		Message:    "callback",
	}
}

func TestInitiatePaymentStoresOrderBeforeProviderCall(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)

	resp, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{})
	if err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	if !strings.HasPrefix(resp.PayURL, "https://pay.example.com/") {
		t.Errorf("unexpected pay URL %q", resp.PayURL)
	}

	stored := env.bookings.get(booking.ID)
	if stored.GatewayOrderID == nil || *stored.GatewayOrderID != resp.OrderID {
		t.Errorf("gateway order id not persisted: %v", stored.GatewayOrderID)
	}
	if stored.GatewayRequestID == nil || *stored.GatewayRequestID != resp.RequestID {
		t.Errorf("gateway request id not persisted: %v", stored.GatewayRequestID)
	}
	if stored.ReturnURL == nil || *stored.ReturnURL != "https://hotel.example.com/payment/result" {
		t.Errorf("default return URL not applied: %v", stored.ReturnURL)
	}
	if env.gw.lastOrder.Amount != booking.TotalPrice {
		t.Errorf("charged amount = %v, want %v", env.gw.lastOrder.Amount, booking.TotalPrice)
	}
}

func TestInitiatePaymentOrderPersistsWhenProviderFails(t *testing.T) {
	env := newPaymentEnv(t)
	env.gw.createErr = utils.NewGatewayError(errors.New("timeout"), "payment provider unreachable")
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)

	_, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{})
	if utils.ErrorKind(err) != utils.ErrGateway {
		t.Fatalf("expected gateway error, got %v", err)
	}

	// The correlation fields were written before the provider call, so a
	// late callback for this order can still be reconciled.
	if env.bookings.get(booking.ID).GatewayOrderID == nil {
		t.Error("gateway order id lost on provider failure")
	}
}

func TestInitiatePaymentRejectsPaidBooking(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPaid)

	_, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{})
	if utils.ErrorKind(err) != utils.ErrState {
		t.Fatalf("expected state error, got %v", err)
	}
	if env.gw.createCnt != 0 {
		t.Error("provider called for an already paid booking")
	}
}

func TestInitiatePaymentRetriesAfterFailure(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusFailed)

	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("retry after failed payment rejected: %v", err)
	}
}

func TestInitiatePaymentEnforcesOwnership(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)

	_, err := env.service.InitiatePayment(context.Background(), uuid.New().String(), booking.ID.String(), &request.InitiatePaymentRequest{})
	if utils.ErrorKind(err) != utils.ErrAuthorization {
		t.Fatalf("expected authorization error, got %v", err)
	}
}

func TestReconcileSuccessConfirmsBooking(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)
	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	result, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, gateway.ResultCodeSuccess))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.Applied {
		t.Error("success callback not applied")
	}

	stored := env.bookings.get(booking.ID)
	if stored.PaymentStatus != entity.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", stored.PaymentStatus)
	}
	if stored.Status != entity.BookingStatusConfirmed {
		t.Errorf("booking status = %s, want confirmed", stored.Status)
	}
	if stored.GatewayTransactionID == nil || *stored.GatewayTransactionID != "4014083433" {
		t.Errorf("transaction id = %v, want 4014083433", stored.GatewayTransactionID)
	}
	if len(env.notif.confirmed) != 1 {
		t.Errorf("confirmation notifications = %d, want 1", len(env.notif.confirmed))
	}
}

func TestReconcileDuplicateCallbackIsNoOp(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)
	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	cb := env.callbackFor(booking, gateway.ResultCodeSuccess)
	if _, err := env.service.Reconcile(context.Background(), cb); err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}

	result, err := env.service.Reconcile(context.Background(), cb)
	if err != nil {
		t.Fatalf("duplicate Reconcile: %v", err)
	}
	if result.Applied {
		t.Error("duplicate callback re-applied")
	}
	if len(env.notif.confirmed) != 1 {
		t.Errorf("confirmation notifications = %d, want 1", len(env.notif.confirmed))
	}
}

func TestReconcilePaidIsTerminal(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusConfirmed, entity.PaymentStatusPaid)
	orderID := "PAY-1"
	env.bookings.SetGatewayOrder(context.Background(), booking.ID, orderID, "req-1", "")
	// SetGatewayOrder does not touch status in the fake; restore paid state.
	env.bookings.ApplyPaymentOutcome(context.Background(), booking.ID, entity.PaymentStatusPaid, entity.BookingStatusConfirmed, nil)

	// A late failure callback must not demote a paid booking.
	result, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, 9000))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if result.Applied {
		t.Error("failure callback applied over a paid booking")
	}
	if got := env.bookings.get(booking.ID).PaymentStatus; got != entity.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", got)
	}
}

func TestReconcileUserDeniedMarksFailed(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)
	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	result, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, gateway.ResultCodeUserDenied))
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !result.Applied {
		t.Error("denial callback not applied")
	}

	stored := env.bookings.get(booking.ID)
	if stored.PaymentStatus != entity.PaymentStatusFailed {
		t.Errorf("payment status = %s, want failed", stored.PaymentStatus)
	}
	// Denial does not confirm, booking stays pending for a retry.
	if stored.Status != entity.BookingStatusPending {
		t.Errorf("booking status = %s, want pending", stored.Status)
	}
	if len(env.notif.confirmed) != 0 {
		t.Error("denial must not send a confirmation notification")
	}
}

func TestReconcileFailedThenSuccessRecovers(t *testing.T) {
	env := newPaymentEnv(t)
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)
	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	if _, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, 9000)); err != nil {
		t.Fatalf("failure Reconcile: %v", err)
	}

	// A redelivered failure is skipped...
	result, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, 9000))
	if err != nil {
		t.Fatalf("duplicate failure Reconcile: %v", err)
	}
	if result.Applied {
		t.Error("duplicate failure re-applied")
	}

	// ...but a genuine success for the same order still lands.
	result, err = env.service.Reconcile(context.Background(), env.callbackFor(booking, gateway.ResultCodeSuccess))
	if err != nil {
		t.Fatalf("success Reconcile: %v", err)
	}
	if !result.Applied {
		t.Error("success after failure not applied")
	}
	if got := env.bookings.get(booking.ID).PaymentStatus; got != entity.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", got)
	}
}

func TestReconcileRejectsBadSignature(t *testing.T) {
	env := newPaymentEnv(t)
	env.gw.verifyOK = false
	booking := env.seedBooking(entity.BookingStatusPending, entity.PaymentStatusPending)
	if _, err := env.service.InitiatePayment(context.Background(), env.userID.String(), booking.ID.String(), &request.InitiatePaymentRequest{}); err != nil {
		t.Fatalf("InitiatePayment: %v", err)
	}

	_, err := env.service.Reconcile(context.Background(), env.callbackFor(booking, gateway.ResultCodeSuccess))
	if utils.ErrorKind(err) != utils.ErrSignature {
		t.Fatalf("expected signature error, got %v", err)
	}

	// Nothing may mutate on a forged callback.
	stored := env.bookings.get(booking.ID)
	if stored.PaymentStatus != entity.PaymentStatusPending || stored.Status != entity.BookingStatusPending {
		t.Errorf("state mutated on forged callback: %s/%s", stored.Status, stored.PaymentStatus)
	}
}

func TestReconcileUnknownOrderFailsClosed(t *testing.T) {
	env := newPaymentEnv(t)

	_, err := env.service.Reconcile(context.Background(), &gateway.Callback{
		OrderID:    "PAY-unknown",
		ResultCode: gateway.ResultCodeSuccess,
	})
	if utils.ErrorKind(err) != utils.ErrNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

// staleOrderReadRepo serves a snapshot taken before any write from
// FindByGatewayOrderID, reproducing two callback deliveries that both read
// the booking before either applies its outcome.
type staleOrderReadRepo struct {
	*fakeBookingRepo
	snapshot *entity.Booking
}

func (r *staleOrderReadRepo) FindByGatewayOrderID(ctx context.Context, orderID string) (*entity.Booking, error) {
	if r.snapshot.GatewayOrderID != nil && *r.snapshot.GatewayOrderID == orderID {
		clone := *r.snapshot
		return &clone, nil
	}
	return r.fakeBookingRepo.FindByGatewayOrderID(ctx, orderID)
}

func TestReconcileConcurrentDuplicateSuccessNotifiesOnce(t *testing.T) {
	bookings := newFakeBookingRepo()
	notif := &recordingNotifier{}
	gw := &fakeGateway{verifyOK: true}

	userID := uuid.New()
	orderID := utils.GenerateGatewayOrderID()
	in, _ := utils.ParseDate("2030-10-07", time.UTC)
	out, _ := utils.ParseDate("2030-10-09", time.UTC)
	booking := &entity.Booking{
		Base:           entity.Base{ID: uuid.New(), CreatedAt: time.Now(), UpdatedAt: time.Now()},
		BookingCode:    utils.GenerateBookingCode(),
		UserID:         userID,
		RoomID:         uuid.New(),
		CheckIn:        in,
		CheckOut:       out,
		Adults:         2,
		RoomCount:      1,
		TotalPrice:     400000,
		ContactEmail:   "guest@example.com",
		Status:         entity.BookingStatusPending,
		PaymentStatus:  entity.PaymentStatusPending,
		GatewayOrderID: &orderID,
	}
	bookings.put(booking)

	snapshot := bookings.get(booking.ID)
	repo := newFakeRepository(bookings, newFakeRoomRepo(), newFakeCancellationRepo())
	repo.Booking = &staleOrderReadRepo{fakeBookingRepo: bookings, snapshot: snapshot}
	service := NewPaymentService(repo, gw, notif, testConfig(), zap.NewNop())

	cb := &gateway.Callback{
		OrderID:    orderID,
		Amount:     int64(booking.TotalPrice),
		TransID:    4014083433,
		ResultCode: gateway.ResultCodeSuccess,
		Message:    "callback",
	}

	first, err := service.Reconcile(context.Background(), cb)
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	second, err := service.Reconcile(context.Background(), cb)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}

	if !first.Applied {
		t.Error("first delivery not applied")
	}
	if second.Applied {
		t.Error("second delivery re-applied despite the first write")
	}
	if got := len(notif.confirmed); got != 1 {
		t.Errorf("confirmation notifications = %d, want exactly 1", got)
	}

	// A failure delivery racing the success reads the same stale pending
	// state; the write guard must keep the booking paid.
	failure, err := service.Reconcile(context.Background(), &gateway.Callback{
		OrderID:    orderID,
		Amount:     int64(booking.TotalPrice),
		ResultCode: 9000,
		Message:    "callback",
	})
	if err != nil {
		t.Fatalf("failure Reconcile: %v", err)
	}
	if failure.Applied {
		t.Error("stale failure overwrote a paid booking")
	}
	if got := bookings.get(booking.ID).PaymentStatus; got != entity.PaymentStatusPaid {
		t.Errorf("payment status = %s, want paid", got)
	}
}
