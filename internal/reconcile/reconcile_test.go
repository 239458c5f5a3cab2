package reconcile

import (
	"testing"
	"time"

	"tokokas/backend/internal/domain"
)

func paidSale(totalCents int64, method string, paidAt time.Time) domain.Sale {
	return domain.Sale{
		ID:            "sale-" + method,
		Status:        domain.SaleStatusCompleted,
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    totalCents,
		PaidAt:        &paidAt,
		Payments: []domain.SalePayment{{
			Method:      method,
			AmountCents: totalCents,
			Status:      domain.PaymentRowSuccess,
			PaidAt:      &paidAt,
		}},
	}
}

func TestCalculateBucketsPerMethod(t *testing.T) {
	now := time.Now().UTC()
	totals := Calculate([]domain.Sale{
		paidSale(50000, domain.PaymentMethodCash, now),
		paidSale(30000, domain.PaymentMethodCard, now),
		paidSale(20000, domain.PaymentMethodTransfer, now),
		paidSale(15000, domain.PaymentMethodQRIS, now),
		paidSale(10000, domain.PaymentMethodCash, now),
	})

	if totals.ExpectedCashCents != 60000 {
		t.Fatalf("expected cash 60000, got %d", totals.ExpectedCashCents)
	}
	if totals.ExpectedCardCents != 30000 {
		t.Fatalf("expected card 30000, got %d", totals.ExpectedCardCents)
	}
	if totals.ExpectedTransferCents != 20000 {
		t.Fatalf("expected transfer 20000, got %d", totals.ExpectedTransferCents)
	}
	if totals.ExpectedQRISCents != 15000 {
		t.Fatalf("expected qris 15000, got %d", totals.ExpectedQRISCents)
	}
	if totals.ExpectedTotalCents != 125000 {
		t.Fatalf("expected total 125000, got %d", totals.ExpectedTotalCents)
	}
	if totals.CashCount != 2 || totals.CardCount != 1 || totals.TransferCount != 1 || totals.QRISCount != 1 {
		t.Fatalf("unexpected counts: %+v", totals)
	}
	if totals.TotalTransactions != 5 {
		t.Fatalf("expected 5 transactions, got %d", totals.TotalTransactions)
	}
}

func TestCalculateSkipsNonPaidSales(t *testing.T) {
	now := time.Now().UTC()
	pending := paidSale(40000, domain.PaymentMethodCash, now)
	pending.PaymentStatus = domain.PaymentStatusPending
	refunded := paidSale(25000, domain.PaymentMethodCard, now)
	refunded.PaymentStatus = domain.PaymentStatusRefunded
	failed := paidSale(10000, domain.PaymentMethodQRIS, now)
	failed.PaymentStatus = domain.PaymentStatusFailed

	totals := Calculate([]domain.Sale{
		pending,
		refunded,
		failed,
		paidSale(50000, domain.PaymentMethodCash, now),
	})

	if totals.ExpectedCashCents != 50000 {
		t.Fatalf("expected cash 50000, got %d", totals.ExpectedCashCents)
	}
	if totals.ExpectedTotalCents != 50000 {
		t.Fatalf("expected total 50000, got %d", totals.ExpectedTotalCents)
	}
	if totals.TotalTransactions != 1 {
		t.Fatalf("expected 1 transaction, got %d", totals.TotalTransactions)
	}
}

func TestCalculateIsIdempotent(t *testing.T) {
	now := time.Now().UTC()
	sales := []domain.Sale{
		paidSale(50000, domain.PaymentMethodCash, now),
		paidSale(30000, domain.PaymentMethodQRIS, now),
	}

	first := Calculate(sales)
	for i := 0; i < 3; i++ {
		if got := Calculate(sales); got != first {
			t.Fatalf("run %d diverged: got %+v, want %+v", i+1, got, first)
		}
	}
}

func TestPrimaryMethodLatestSuccessRowWins(t *testing.T) {
	earlier := time.Now().UTC().Add(-time.Hour)
	later := earlier.Add(30 * time.Minute)

	sale := domain.Sale{
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    10000,
		Payments: []domain.SalePayment{
			{Method: domain.PaymentMethodCash, Status: domain.PaymentRowSuccess, PaidAt: &earlier},
			{Method: domain.PaymentMethodQRIS, Status: domain.PaymentRowFailed, PaidAt: &later},
			{Method: domain.PaymentMethodCard, Status: domain.PaymentRowSuccess, PaidAt: &later},
		},
	}

	if got := PrimaryMethod(sale); got != domain.PaymentMethodCard {
		t.Fatalf("expected card, got %s", got)
	}
}

func TestPrimaryMethodDefaultsToCash(t *testing.T) {
	noRows := domain.Sale{PaymentStatus: domain.PaymentStatusPaid, TotalCents: 5000}
	if got := PrimaryMethod(noRows); got != domain.PaymentMethodCash {
		t.Fatalf("expected cash for sale without payment rows, got %s", got)
	}

	now := time.Now().UTC()
	unknown := domain.Sale{
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    5000,
		Payments: []domain.SalePayment{
			{Method: "store_credit", Status: domain.PaymentRowSuccess, PaidAt: &now},
		},
	}
	if got := PrimaryMethod(unknown); got != domain.PaymentMethodCash {
		t.Fatalf("expected unknown method to bucket as cash, got %s", got)
	}
}

func TestPrimaryMethodFallsBackToCreatedAt(t *testing.T) {
	older := time.Now().UTC().Add(-2 * time.Hour)
	newer := older.Add(time.Hour)

	sale := domain.Sale{
		PaymentStatus: domain.PaymentStatusPaid,
		TotalCents:    7000,
		Payments: []domain.SalePayment{
			{Method: domain.PaymentMethodTransfer, Status: domain.PaymentRowSuccess, CreatedAt: older},
			{Method: domain.PaymentMethodQRIS, Status: domain.PaymentRowSuccess, CreatedAt: newer},
		},
	}

	if got := PrimaryMethod(sale); got != domain.PaymentMethodQRIS {
		t.Fatalf("expected qris, got %s", got)
	}
}
