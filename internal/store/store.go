package store

import (
	"context"
	"errors"
	"time"

	"tokokas/backend/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrShiftAlreadyOpen   = errors.New("shift already open")
	ErrShiftAlreadyClosed = errors.New("shift already closed")
	ErrAttendanceRequired = errors.New("attendance clock-in required")
	ErrInvalidRequest     = errors.New("invalid request")
)

type Repository interface {
	CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error)
	GetShiftByID(ctx context.Context, shiftID string) (*domain.Shift, error)
	GetActiveShift(ctx context.Context, outletID string, cashierID string) (*domain.Shift, error)
	GetLatestOpenShiftAtOutlet(ctx context.Context, outletID string) (*domain.Shift, error)
	ListOpenShifts(ctx context.Context, businessID string) ([]domain.Shift, error)
	ListShifts(ctx context.Context, businessID string, outletID string, from time.Time, to time.Time, limit int) ([]domain.Shift, error)
	UpdateOpenShiftTotals(ctx context.Context, shiftID string, totals domain.ShiftTotals) (*domain.Shift, error)
	CloseShift(ctx context.Context, shiftID string, actualCashCents int64, notes string, closedBy string, closedAt time.Time) (*domain.Shift, error)
	CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error)
	GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error)
	GetSaleByReference(ctx context.Context, reference string) (*domain.Sale, error)
	ListSalesByShift(ctx context.Context, shiftID string, paidOnly bool) ([]domain.Sale, error)
	ListUnassignedSelfServiceSales(ctx context.Context, outletID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error)
	UpdateSaleOutcome(ctx context.Context, saleID string, status string, paymentStatus string, paidAt *time.Time) (*domain.Sale, error)
	// MarkSalePaid flips a sale to completed/paid as a conditional write:
	// the bool reports whether this call performed the transition, so
	// concurrent duplicate payment confirmations collapse to one winner.
	// Sales already paid or refunded are returned untouched.
	MarkSalePaid(ctx context.Context, saleID string, paidAt *time.Time) (*domain.Sale, bool, error)
	AppendSalePayment(ctx context.Context, payment domain.SalePayment) error
	AssignSaleToShift(ctx context.Context, saleID string, shiftID string) (bool, error)
	CreateAttendance(ctx context.Context, attendance domain.Attendance) (*domain.Attendance, error)
	HasClockInOn(ctx context.Context, outletID string, cashierID string, day time.Time) (bool, error)
	CreateAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, businessID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error)
	CreateUser(ctx context.Context, user domain.UserAccount) error
	ListUsers(ctx context.Context) ([]domain.UserAccount, error)
	UpdateUserPassword(ctx context.Context, username string, password string) error
}
