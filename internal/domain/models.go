package domain

import "time"

type Shift struct {
	ID                    string     `json:"id"`
	BusinessID            string     `json:"business_id"`
	OutletID              string     `json:"outlet_id"`
	CashierID             string     `json:"cashier_id"`
	EmployeeID            string     `json:"employee_id,omitempty"`
	OpeningBalanceCents   int64      `json:"opening_balance_cents"`
	ExpectedCashCents     int64      `json:"expected_cash_cents"`
	ExpectedCardCents     int64      `json:"expected_card_cents"`
	ExpectedTransferCents int64      `json:"expected_transfer_cents"`
	ExpectedQRISCents     int64      `json:"expected_qris_cents"`
	ExpectedTotalCents    int64      `json:"expected_total_cents"`
	CashCount             int        `json:"cash_count"`
	CardCount             int        `json:"card_count"`
	TransferCount         int        `json:"transfer_count"`
	QRISCount             int        `json:"qris_count"`
	TotalTransactions     int        `json:"total_transactions"`
	ActualCashCents       int64      `json:"actual_cash_cents"`
	CashDifferenceCents   int64      `json:"cash_difference_cents"`
	Status                string     `json:"status"`
	Notes                 string     `json:"notes,omitempty"`
	CloseNotes            string     `json:"close_notes,omitempty"`
	ClosedBy              string     `json:"closed_by,omitempty"`
	OpenedAt              time.Time  `json:"opened_at"`
	ClosedAt              *time.Time `json:"closed_at,omitempty"`
}

// ShiftTotals is the aggregate snapshot recomputed from paid sales. It is
// always written as a whole, never incremented.
type ShiftTotals struct {
	ExpectedCashCents     int64 `json:"expected_cash_cents"`
	ExpectedCardCents     int64 `json:"expected_card_cents"`
	ExpectedTransferCents int64 `json:"expected_transfer_cents"`
	ExpectedQRISCents     int64 `json:"expected_qris_cents"`
	ExpectedTotalCents    int64 `json:"expected_total_cents"`
	CashCount             int   `json:"cash_count"`
	CardCount             int   `json:"card_count"`
	TransferCount         int   `json:"transfer_count"`
	QRISCount             int   `json:"qris_count"`
	TotalTransactions     int   `json:"total_transactions"`
}

type Sale struct {
	ID            string        `json:"id"`
	BusinessID    string        `json:"business_id"`
	OutletID      string        `json:"outlet_id"`
	CashierID     string        `json:"cashier_id,omitempty"`
	ShiftID       string        `json:"shift_id,omitempty"`
	Type          string        `json:"type"`
	Status        string        `json:"status"`
	PaymentStatus string        `json:"payment_status"`
	Reference     string        `json:"reference,omitempty"`
	TotalCents    int64         `json:"total_cents"`
	Notes         string        `json:"notes,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	PaidAt        *time.Time    `json:"paid_at,omitempty"`
	Payments      []SalePayment `json:"payments,omitempty"`
}

type SalePayment struct {
	ID          string     `json:"id"`
	SaleID      string     `json:"sale_id"`
	Method      string     `json:"method"`
	AmountCents int64      `json:"amount_cents"`
	Status      string     `json:"status"`
	Reference   string     `json:"reference,omitempty"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

type Attendance struct {
	ID         string     `json:"id"`
	BusinessID string     `json:"business_id"`
	OutletID   string     `json:"outlet_id"`
	CashierID  string     `json:"cashier_id"`
	ClockInAt  time.Time  `json:"clock_in_at"`
	ClockOutAt *time.Time `json:"clock_out_at,omitempty"`
}

type ShiftOpenRequest struct {
	BusinessID          string `json:"business_id"`
	OutletID            string `json:"outlet_id"`
	CashierID           string `json:"cashier_id"`
	EmployeeID          string `json:"employee_id,omitempty"`
	OpeningBalanceCents int64  `json:"opening_balance_cents"`
	Notes               string `json:"notes,omitempty"`
}

type ShiftCloseRequest struct {
	ShiftID         string `json:"shift_id"`
	ActualCashCents int64  `json:"actual_cash_cents"`
	Notes           string `json:"notes,omitempty"`
	ClosedBy        string `json:"closed_by,omitempty"`
}

type ShiftResponse struct {
	Shift Shift `json:"shift"`
}

type ShiftDetailResponse struct {
	Shift Shift  `json:"shift"`
	Sales []Sale `json:"sales"`
}

type ShiftListResponse struct {
	Shifts []Shift `json:"shifts"`
}

type SaleCreateRequest struct {
	BusinessID    string `json:"business_id"`
	OutletID      string `json:"outlet_id"`
	Type          string `json:"type"`
	PaymentMethod string `json:"payment_method,omitempty"`
	TotalCents    int64  `json:"total_cents"`
	Reference     string `json:"reference,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

type SaleResponse struct {
	Sale Sale `json:"sale"`
}

type RefundSaleRequest struct {
	SaleID     string `json:"sale_id"`
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type CancelSaleRequest struct {
	SaleID     string `json:"sale_id"`
	Reason     string `json:"reason"`
	ManagerPIN string `json:"manager_pin"`
}

type AssignResult struct {
	Assigned bool   `json:"assigned"`
	ShiftID  string `json:"shift_id,omitempty"`
}

type ClockInRequest struct {
	BusinessID string `json:"business_id"`
	OutletID   string `json:"outlet_id"`
	CashierID  string `json:"cashier_id"`
}

type AttendanceResponse struct {
	Attendance Attendance `json:"attendance"`
}

type UnassignedRevenueResponse struct {
	OutletID   string `json:"outlet_id"`
	TotalCents int64  `json:"total_cents"`
	Sales      []Sale `json:"sales"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

type CashierCreateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CashierUser struct {
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}

type AuditLog struct {
	ID            string    `json:"id"`
	BusinessID    string    `json:"business_id"`
	ActorUsername string    `json:"actor_username"`
	ActorRole     string    `json:"actor_role"`
	Action        string    `json:"action"`
	EntityType    string    `json:"entity_type"`
	EntityID      string    `json:"entity_id"`
	Detail        string    `json:"detail"`
	CreatedAt     time.Time `json:"created_at"`
}

const (
	ShiftStatusOpen   = "open"
	ShiftStatusClosed = "closed"
)

const (
	SaleTypeCounter     = "counter"
	SaleTypeSelfService = "self_service"
)

const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPartial  = "partial"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
	PaymentStatusFailed   = "failed"
)

const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
	PaymentMethodQRIS     = "qris"
)

const (
	PaymentRowPending = "pending"
	PaymentRowSuccess = "success"
	PaymentRowFailed  = "failed"
)
