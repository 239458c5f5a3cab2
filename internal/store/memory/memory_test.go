package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"tokokas/backend/internal/domain"
	"tokokas/backend/internal/store"
)

func openShift(t *testing.T, s *Store, cashierID, outletID string, openingBalance int64) *domain.Shift {
	t.Helper()
	shift, err := s.CreateShift(context.Background(), domain.Shift{
		BusinessID:          "test-business",
		OutletID:            outletID,
		CashierID:           cashierID,
		OpeningBalanceCents: openingBalance,
	})
	if err != nil {
		t.Fatalf("create shift failed: %v", err)
	}
	return shift
}

func paidCashSale(shiftID, outletID string, totalCents int64) domain.Sale {
	now := time.Now().UTC()
	return domain.Sale{
		BusinessID:    "test-business",
		OutletID:      outletID,
		ShiftID:       shiftID,
		Type:          domain.SaleTypeCounter,
		Status:        domain.SaleStatusCompleted,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    totalCents,
		PaidAt:        &now,
		Payments: []domain.SalePayment{{
			Method:      domain.PaymentMethodCash,
			AmountCents: totalCents,
			Status:      domain.PaymentRowSuccess,
			PaidAt:      &now,
		}},
	}
}

func TestCreateShiftEnforcesOneOpenPerCashierOutlet(t *testing.T) {
	s := NewSeeded()
	openShift(t, s, "kasir-a", "outlet-1", 100000)

	_, err := s.CreateShift(context.Background(), domain.Shift{
		OutletID:  "outlet-1",
		CashierID: "kasir-a",
	})
	if !errors.Is(err, store.ErrShiftAlreadyOpen) {
		t.Fatalf("expected ErrShiftAlreadyOpen, got %v", err)
	}

	// Other cashier at the same outlet is fine.
	openShift(t, s, "kasir-b", "outlet-1", 50000)
}

func TestCloseShiftRecomputesAndReleasesKey(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	shift := openShift(t, s, "kasir-a", "outlet-1", 100000)

	if _, err := s.CreateSale(ctx, paidCashSale(shift.ID, "outlet-1", 50000)); err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	closed, err := s.CloseShift(ctx, shift.ID, 150000, "drawer counted", "kasir-a", time.Now().UTC())
	if err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if closed.ExpectedCashCents != 50000 {
		t.Fatalf("expected close to recompute cash 50000, got %d", closed.ExpectedCashCents)
	}
	if closed.CashDifferenceCents != 100000 {
		t.Fatalf("expected difference 100000, got %d", closed.CashDifferenceCents)
	}
	if closed.ClosedAt == nil {
		t.Fatalf("expected closed_at to be set")
	}

	if _, err := s.GetActiveShift(ctx, "outlet-1", "kasir-a"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected no active shift after close, got %v", err)
	}

	// The key is free again for the next shift.
	openShift(t, s, "kasir-a", "outlet-1", 80000)
}

func TestUpdateOpenShiftTotalsRejectsClosedShift(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	shift := openShift(t, s, "kasir-a", "outlet-1", 100000)

	if _, err := s.CloseShift(ctx, shift.ID, 100000, "", "kasir-a", time.Now().UTC()); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	_, err := s.UpdateOpenShiftTotals(ctx, shift.ID, domain.ShiftTotals{ExpectedCashCents: 999})
	if !errors.Is(err, store.ErrShiftAlreadyClosed) {
		t.Fatalf("expected ErrShiftAlreadyClosed, got %v", err)
	}
}

func TestAssignSaleToShiftIsAssignOnce(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()
	shiftA := openShift(t, s, "kasir-a", "outlet-1", 0)
	shiftB := openShift(t, s, "kasir-b", "outlet-1", 0)

	sale, err := s.CreateSale(ctx, domain.Sale{
		OutletID:      "outlet-1",
		Type:          domain.SaleTypeSelfService,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    20000,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	assigned, err := s.AssignSaleToShift(ctx, sale.ID, shiftA.ID)
	if err != nil || !assigned {
		t.Fatalf("first assign expected to win, got assigned=%v err=%v", assigned, err)
	}

	assigned, err = s.AssignSaleToShift(ctx, sale.ID, shiftB.ID)
	if err != nil {
		t.Fatalf("second assign errored: %v", err)
	}
	if assigned {
		t.Fatalf("second assign must lose")
	}

	got, err := s.GetSaleByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if got.ShiftID != shiftA.ID {
		t.Fatalf("expected sale to stay on shift %s, got %s", shiftA.ID, got.ShiftID)
	}

	if _, err := s.AssignSaleToShift(ctx, "sale-missing", shiftA.ID); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing sale, got %v", err)
	}
}

func TestMarkSalePaidTransitionsOnce(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	sale, err := s.CreateSale(ctx, domain.Sale{
		OutletID:      "outlet-1",
		Type:          domain.SaleTypeSelfService,
		Status:        domain.SaleStatusPending,
		PaymentStatus: domain.PaymentStatusPending,
		TotalCents:    9000,
	})
	if err != nil {
		t.Fatalf("create sale failed: %v", err)
	}

	paidAt := time.Now().UTC().Add(-time.Minute)
	first, transitioned, err := s.MarkSalePaid(ctx, sale.ID, &paidAt)
	if err != nil || !transitioned {
		t.Fatalf("first mark expected to transition, got transitioned=%v err=%v", transitioned, err)
	}
	if first.PaymentStatus != domain.PaymentStatusPaid || first.Status != domain.SaleStatusCompleted {
		t.Fatalf("unexpected state after transition: %s/%s", first.Status, first.PaymentStatus)
	}
	if first.PaidAt == nil || !first.PaidAt.Equal(paidAt) {
		t.Fatalf("expected paid_at %v, got %v", paidAt, first.PaidAt)
	}

	second, transitioned, err := s.MarkSalePaid(ctx, sale.ID, nil)
	if err != nil {
		t.Fatalf("second mark errored: %v", err)
	}
	if transitioned {
		t.Fatalf("second mark must not transition again")
	}
	if second.PaidAt == nil || !second.PaidAt.Equal(paidAt) {
		t.Fatalf("second mark changed paid_at to %v", second.PaidAt)
	}

	// A refunded sale stays refunded even if a stale settlement replays.
	if _, err := s.UpdateSaleOutcome(ctx, sale.ID, domain.SaleStatusCompleted, domain.PaymentStatusRefunded, first.PaidAt); err != nil {
		t.Fatalf("refund failed: %v", err)
	}
	after, transitioned, err := s.MarkSalePaid(ctx, sale.ID, nil)
	if err != nil {
		t.Fatalf("mark after refund errored: %v", err)
	}
	if transitioned || after.PaymentStatus != domain.PaymentStatusRefunded {
		t.Fatalf("refunded sale must not be resurrected, got transitioned=%v status=%s", transitioned, after.PaymentStatus)
	}

	if _, _, err := s.MarkSalePaid(ctx, "sale-missing", nil); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing sale, got %v", err)
	}
}

func TestGetLatestOpenShiftAtOutlet(t *testing.T) {
	s := NewSeeded()
	openShift(t, s, "kasir-a", "outlet-1", 0)
	time.Sleep(2 * time.Millisecond)
	newest := openShift(t, s, "kasir-b", "outlet-1", 0)

	got, err := s.GetLatestOpenShiftAtOutlet(context.Background(), "outlet-1")
	if err != nil {
		t.Fatalf("latest open shift failed: %v", err)
	}
	if got.ID != newest.ID {
		t.Fatalf("expected newest shift %s, got %s", newest.ID, got.ID)
	}

	if _, err := s.GetLatestOpenShiftAtOutlet(context.Background(), "outlet-empty"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for outlet without shifts, got %v", err)
	}
}

func TestListUnassignedSelfServiceSalesFilters(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, err := s.CreateSale(ctx, domain.Sale{
		OutletID:      "outlet-1",
		Type:          domain.SaleTypeSelfService,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    10000,
	}); err != nil {
		t.Fatalf("create paid sale failed: %v", err)
	}
	if _, err := s.CreateSale(ctx, domain.Sale{
		OutletID:      "outlet-1",
		Type:          domain.SaleTypeSelfService,
		PaymentStatus: domain.PaymentStatusPending,
		TotalCents:    5000,
	}); err != nil {
		t.Fatalf("create pending sale failed: %v", err)
	}
	if _, err := s.CreateSale(ctx, domain.Sale{
		OutletID:      "outlet-1",
		Type:          domain.SaleTypeCounter,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    7000,
	}); err != nil {
		t.Fatalf("create counter sale failed: %v", err)
	}

	sales, err := s.ListUnassignedSelfServiceSales(ctx, "outlet-1", time.Time{}, time.Time{}, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sales) != 1 || sales[0].TotalCents != 10000 {
		t.Fatalf("expected only the paid self-service sale, got %+v", sales)
	}
}

func TestHasClockInOnMatchesUTCDay(t *testing.T) {
	s := NewSeeded()
	ctx := context.Background()

	if _, err := s.CreateAttendance(ctx, domain.Attendance{
		OutletID:  "outlet-1",
		CashierID: "kasir-a",
		ClockInAt: time.Now().UTC(),
	}); err != nil {
		t.Fatalf("create attendance failed: %v", err)
	}

	ok, err := s.HasClockInOn(ctx, "outlet-1", "kasir-a", time.Now().UTC())
	if err != nil || !ok {
		t.Fatalf("expected clock-in today, got ok=%v err=%v", ok, err)
	}

	ok, err = s.HasClockInOn(ctx, "outlet-1", "kasir-a", time.Now().UTC().Add(48*time.Hour))
	if err != nil || ok {
		t.Fatalf("expected no clock-in two days ahead, got ok=%v err=%v", ok, err)
	}
}
