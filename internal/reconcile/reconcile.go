// Package reconcile computes a shift's expected totals from its sales.
// The calculation is a full rebuild from source rows on every call, so any
// number of overlapping or repeated invocations converge to the same result.
package reconcile

import (
	"time"

	"tokokas/backend/internal/domain"
)

// Calculate aggregates the paid sales of one shift into per-method expected
// totals and transaction counts. Sales whose payment has not cleared (or was
// refunded, cancelled, or failed) contribute nothing, regardless of when the
// sale row itself was created.
func Calculate(sales []domain.Sale) domain.ShiftTotals {
	var totals domain.ShiftTotals
	for _, sale := range sales {
		if sale.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		switch PrimaryMethod(sale) {
		case domain.PaymentMethodCard:
			totals.ExpectedCardCents += sale.TotalCents
			totals.CardCount++
		case domain.PaymentMethodTransfer:
			totals.ExpectedTransferCents += sale.TotalCents
			totals.TransferCount++
		case domain.PaymentMethodQRIS:
			totals.ExpectedQRISCents += sale.TotalCents
			totals.QRISCount++
		default:
			totals.ExpectedCashCents += sale.TotalCents
			totals.CashCount++
		}
		totals.TotalTransactions++
	}
	totals.ExpectedTotalCents = totals.ExpectedCashCents + totals.ExpectedCardCents +
		totals.ExpectedTransferCents + totals.ExpectedQRISCents
	return totals
}

// PrimaryMethod resolves the payment method a sale is bucketed under: the
// most recent successful payment row wins. A paid sale with no successful
// row is a legacy in-person sale and counts as cash.
func PrimaryMethod(sale domain.Sale) string {
	var latest *domain.SalePayment
	for i := range sale.Payments {
		payment := &sale.Payments[i]
		if payment.Status != domain.PaymentRowSuccess {
			continue
		}
		if latest == nil || paymentTime(*payment).After(paymentTime(*latest)) {
			latest = payment
		}
	}
	if latest == nil {
		return domain.PaymentMethodCash
	}
	switch latest.Method {
	case domain.PaymentMethodCard, domain.PaymentMethodTransfer, domain.PaymentMethodQRIS:
		return latest.Method
	default:
		return domain.PaymentMethodCash
	}
}

func paymentTime(payment domain.SalePayment) time.Time {
	if payment.PaidAt != nil {
		return *payment.PaidAt
	}
	return payment.CreatedAt
}
