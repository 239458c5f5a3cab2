package postgres

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"tokokas/backend/internal/domain"
)

func TestShiftCloseRecomputesTotals(t *testing.T) {
	databaseURL := os.Getenv("TOKOKAS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set TOKOKAS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	outletID := fmt.Sprintf("outlet-it-%d", stamp)
	cashierID := fmt.Sprintf("kasir-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sale_payments WHERE sale_id IN (SELECT id FROM sales WHERE outlet_id = $1)`, outletID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE outlet_id = $1`, outletID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cashier_shifts WHERE outlet_id = $1`, outletID)
	})

	shift, err := s.CreateShift(ctx, domain.Shift{
		BusinessID:          "it-business",
		OutletID:            outletID,
		CashierID:           cashierID,
		OpeningBalanceCents: 100000,
	})
	if err != nil {
		t.Fatalf("create shift: %v", err)
	}

	if _, err := s.CreateShift(ctx, domain.Shift{
		BusinessID: "it-business",
		OutletID:   outletID,
		CashierID:  cashierID,
	}); err == nil {
		t.Fatalf("expected second open for same cashier/outlet to fail")
	}

	paidAt := time.Now().UTC()
	sale, err := s.CreateSale(ctx, domain.Sale{
		BusinessID:    "it-business",
		OutletID:      outletID,
		CashierID:     cashierID,
		ShiftID:       shift.ID,
		Type:          domain.SaleTypeCounter,
		Status:        domain.SaleStatusCompleted,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    50000,
		PaidAt:        &paidAt,
		Payments: []domain.SalePayment{{
			Method:      domain.PaymentMethodCash,
			AmountCents: 50000,
			Status:      domain.PaymentRowSuccess,
			PaidAt:      &paidAt,
		}},
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
	}

	closed, err := s.CloseShift(ctx, shift.ID, 150000, "integration close", cashierID, time.Now().UTC())
	if err != nil {
		t.Fatalf("close shift: %v", err)
	}
	if closed.ExpectedCashCents != 50000 {
		t.Fatalf("expected cash 50000, got %d", closed.ExpectedCashCents)
	}
	if closed.CashDifferenceCents != 100000 {
		t.Fatalf("expected difference 100000, got %d", closed.CashDifferenceCents)
	}
	if closed.Status != domain.ShiftStatusClosed || closed.ClosedAt == nil {
		t.Fatalf("expected closed shift with closed_at, got %+v", closed)
	}

	if _, err := s.UpdateOpenShiftTotals(ctx, shift.ID, domain.ShiftTotals{ExpectedCashCents: 1}); err == nil {
		t.Fatalf("expected totals update on closed shift to fail")
	}

	loaded, err := s.GetSaleByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if len(loaded.Payments) != 1 {
		t.Fatalf("expected 1 payment row, got %d", len(loaded.Payments))
	}
}

func TestAssignSaleToShiftConditionalWrite(t *testing.T) {
	databaseURL := os.Getenv("TOKOKAS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set TOKOKAS_TEST_DATABASE_URL to run postgres integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, databaseURL)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	t.Cleanup(func() {
		_ = s.Close()
	})

	stamp := time.Now().UnixNano()
	outletID := fmt.Sprintf("outlet-assign-it-%d", stamp)

	t.Cleanup(func() {
		_, _ = s.db.ExecContext(ctx, `DELETE FROM sales WHERE outlet_id = $1`, outletID)
		_, _ = s.db.ExecContext(ctx, `DELETE FROM cashier_shifts WHERE outlet_id = $1`, outletID)
	})

	shiftA, err := s.CreateShift(ctx, domain.Shift{
		BusinessID: "it-business",
		OutletID:   outletID,
		CashierID:  fmt.Sprintf("kasir-a-%d", stamp),
	})
	if err != nil {
		t.Fatalf("create shift a: %v", err)
	}
	shiftB, err := s.CreateShift(ctx, domain.Shift{
		BusinessID: "it-business",
		OutletID:   outletID,
		CashierID:  fmt.Sprintf("kasir-b-%d", stamp),
	})
	if err != nil {
		t.Fatalf("create shift b: %v", err)
	}

	paidAt := time.Now().UTC()
	sale, err := s.CreateSale(ctx, domain.Sale{
		BusinessID:    "it-business",
		OutletID:      outletID,
		Type:          domain.SaleTypeSelfService,
		Status:        domain.SaleStatusCompleted,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    20000,
		PaidAt:        &paidAt,
	})
	if err != nil {
		t.Fatalf("create sale: %v", err)
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

	loaded, err := s.GetSaleByID(ctx, sale.ID)
	if err != nil {
		t.Fatalf("load sale: %v", err)
	}
	if loaded.ShiftID != shiftA.ID {
		t.Fatalf("expected sale on shift %s, got %s", shiftA.ID, loaded.ShiftID)
	}
}
