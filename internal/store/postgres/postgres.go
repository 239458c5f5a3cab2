package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"

	"tokokas/backend/internal/domain"
	"tokokas/backend/internal/reconcile"
	"tokokas/backend/internal/store"
	"tokokas/backend/internal/xid"
)

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// querier lets sale/payment readers run either on the pool or inside the
// close-shift transaction.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const shiftColumns = `
	id, business_id, outlet_id, cashier_id, COALESCE(employee_id, ''),
	opening_balance_cents, expected_cash_cents, expected_card_cents,
	expected_transfer_cents, expected_qris_cents, expected_total_cents,
	cash_count, card_count, transfer_count, qris_count, total_transactions,
	actual_cash_cents, cash_difference_cents, status,
	COALESCE(notes, ''), COALESCE(close_notes, ''), COALESCE(closed_by, ''),
	opened_at, closed_at
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanShift(row rowScanner) (*domain.Shift, error) {
	var shift domain.Shift
	err := row.Scan(
		&shift.ID, &shift.BusinessID, &shift.OutletID, &shift.CashierID, &shift.EmployeeID,
		&shift.OpeningBalanceCents, &shift.ExpectedCashCents, &shift.ExpectedCardCents,
		&shift.ExpectedTransferCents, &shift.ExpectedQRISCents, &shift.ExpectedTotalCents,
		&shift.CashCount, &shift.CardCount, &shift.TransferCount, &shift.QRISCount, &shift.TotalTransactions,
		&shift.ActualCashCents, &shift.CashDifferenceCents, &shift.Status,
		&shift.Notes, &shift.CloseNotes, &shift.ClosedBy,
		&shift.OpenedAt, &shift.ClosedAt,
	)
	if err != nil {
		return nil, err
	}
	return &shift, nil
}

func (s *Store) CreateShift(ctx context.Context, shift domain.Shift) (*domain.Shift, error) {
	if strings.TrimSpace(shift.OutletID) == "" || strings.TrimSpace(shift.CashierID) == "" {
		return nil, store.ErrInvalidRequest
	}
	if shift.ID == "" {
		shift.ID = xid.New("shift")
	}
	if shift.OpenedAt.IsZero() {
		shift.OpenedAt = time.Now().UTC()
	}
	shift.Status = domain.ShiftStatusOpen

	// cashier_shifts carries a unique partial index on (cashier_id, outlet_id)
	// WHERE status = 'open'; a concurrent second open loses the race here.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cashier_shifts (
			id, business_id, outlet_id, cashier_id, employee_id,
			opening_balance_cents, expected_cash_cents, expected_card_cents,
			expected_transfer_cents, expected_qris_cents, expected_total_cents,
			cash_count, card_count, transfer_count, qris_count, total_transactions,
			actual_cash_cents, cash_difference_cents, status, notes, opened_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,0,0,0,0,0,0,0,0,0,0,0,0,$7,$8,$9)
	`, shift.ID, shift.BusinessID, shift.OutletID, shift.CashierID, nullIfEmpty(shift.EmployeeID),
		shift.OpeningBalanceCents, shift.Status, nullIfEmpty(strings.TrimSpace(shift.Notes)), shift.OpenedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrShiftAlreadyOpen
		}
		return nil, err
	}

	return s.GetShiftByID(ctx, shift.ID)
}

func (s *Store) GetShiftByID(ctx context.Context, shiftID string) (*domain.Shift, error) {
	shift, err := scanShift(s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+`
		FROM cashier_shifts
		WHERE id = $1
	`, shiftID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *Store) GetActiveShift(ctx context.Context, outletID string, cashierID string) (*domain.Shift, error) {
	shift, err := scanShift(s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+`
		FROM cashier_shifts
		WHERE outlet_id = $1 AND cashier_id = $2 AND status = $3
		ORDER BY opened_at DESC
		LIMIT 1
	`, outletID, cashierID, domain.ShiftStatusOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *Store) GetLatestOpenShiftAtOutlet(ctx context.Context, outletID string) (*domain.Shift, error) {
	shift, err := scanShift(s.db.QueryRowContext(ctx, `
		SELECT `+shiftColumns+`
		FROM cashier_shifts
		WHERE outlet_id = $1 AND status = $2
		ORDER BY opened_at DESC
		LIMIT 1
	`, outletID, domain.ShiftStatusOpen))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return shift, nil
}

func (s *Store) ListOpenShifts(ctx context.Context, businessID string) ([]domain.Shift, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+shiftColumns+`
		FROM cashier_shifts
		WHERE status = $1 AND ($2 = '' OR business_id = $2)
		ORDER BY opened_at DESC
	`, domain.ShiftStatusOpen, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShifts(rows)
}

func (s *Store) ListShifts(ctx context.Context, businessID string, outletID string, from time.Time, to time.Time, limit int) ([]domain.Shift, error) {
	if limit < 1 {
		limit = 100
	}

	query := `
		SELECT ` + shiftColumns + `
		FROM cashier_shifts
		WHERE ($1 = '' OR business_id = $1)
			AND ($2 = '' OR outlet_id = $2)
	`
	args := []any{businessID, outletID}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND opened_at >= $3`
	}
	if !to.IsZero() {
		args = append(args, to)
		if from.IsZero() {
			query += ` AND opened_at <= $3`
		} else {
			query += ` AND opened_at <= $4`
		}
	}
	args = append(args, limit)
	switch len(args) {
	case 3:
		query += ` ORDER BY opened_at DESC LIMIT $3`
	case 4:
		query += ` ORDER BY opened_at DESC LIMIT $4`
	default:
		query += ` ORDER BY opened_at DESC LIMIT $5`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectShifts(rows)
}

func (s *Store) UpdateOpenShiftTotals(ctx context.Context, shiftID string, totals domain.ShiftTotals) (*domain.Shift, error) {
	// Conditional on status = 'open': this is the single enforcement point of
	// the freeze-on-close policy in the postgres backend.
	shift, err := scanShift(s.db.QueryRowContext(ctx, `
		UPDATE cashier_shifts
		SET expected_cash_cents = $2, expected_card_cents = $3,
			expected_transfer_cents = $4, expected_qris_cents = $5,
			expected_total_cents = $6, cash_count = $7, card_count = $8,
			transfer_count = $9, qris_count = $10, total_transactions = $11,
			updated_at = now()
		WHERE id = $1 AND status = $12
		RETURNING `+shiftColumns+`
	`, shiftID, totals.ExpectedCashCents, totals.ExpectedCardCents,
		totals.ExpectedTransferCents, totals.ExpectedQRISCents, totals.ExpectedTotalCents,
		totals.CashCount, totals.CardCount, totals.TransferCount, totals.QRISCount,
		totals.TotalTransactions, domain.ShiftStatusOpen))
	if err == nil {
		return shift, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if _, lookupErr := s.GetShiftByID(ctx, shiftID); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, store.ErrShiftAlreadyClosed
}

func (s *Store) CloseShift(ctx context.Context, shiftID string, actualCashCents int64, notes string, closedBy string, closedAt time.Time) (*domain.Shift, error) {
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `
		SELECT status
		FROM cashier_shifts
		WHERE id = $1
		FOR UPDATE
	`, shiftID).Scan(&status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	if status != domain.ShiftStatusOpen {
		return nil, store.ErrShiftAlreadyClosed
	}

	// Final recompute and the status flip share one transaction, so a crash
	// mid-close cannot leave a closed shift with stale totals.
	sales, err := querySalesByShift(ctx, tx, shiftID, true)
	if err != nil {
		return nil, err
	}
	totals := reconcile.Calculate(sales)

	shift, err := scanShift(tx.QueryRowContext(ctx, `
		UPDATE cashier_shifts
		SET expected_cash_cents = $2, expected_card_cents = $3,
			expected_transfer_cents = $4, expected_qris_cents = $5,
			expected_total_cents = $6, cash_count = $7, card_count = $8,
			transfer_count = $9, qris_count = $10, total_transactions = $11,
			actual_cash_cents = $12, cash_difference_cents = $13,
			status = $14, close_notes = $15, closed_by = $16, closed_at = $17,
			updated_at = now()
		WHERE id = $1
		RETURNING `+shiftColumns+`
	`, shiftID, totals.ExpectedCashCents, totals.ExpectedCardCents,
		totals.ExpectedTransferCents, totals.ExpectedQRISCents, totals.ExpectedTotalCents,
		totals.CashCount, totals.CardCount, totals.TransferCount, totals.QRISCount,
		totals.TotalTransactions, actualCashCents, actualCashCents-totals.ExpectedCashCents,
		domain.ShiftStatusClosed, nullIfEmpty(strings.TrimSpace(notes)), nullIfEmpty(closedBy), closedAt))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return shift, nil
}

func (s *Store) CreateSale(ctx context.Context, sale domain.Sale) (*domain.Sale, error) {
	if strings.TrimSpace(sale.OutletID) == "" || sale.TotalCents < 1 {
		return nil, store.ErrInvalidRequest
	}
	if sale.ID == "" {
		sale.ID = xid.New("sale")
	}
	if sale.CreatedAt.IsZero() {
		sale.CreatedAt = time.Now().UTC()
	}
	if sale.Type == "" {
		sale.Type = domain.SaleTypeCounter
	}
	if sale.Status == "" {
		sale.Status = domain.SaleStatusPending
	}
	if sale.PaymentStatus == "" {
		sale.PaymentStatus = domain.PaymentStatusPending
	}

	// The sale row and its payment rows land in one transaction; a paid sale
	// is never visible without the payment rows that explain it.
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales (
			id, business_id, outlet_id, cashier_id, shift_id, type, status,
			payment_status, reference, total_cents, notes, created_at, paid_at
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`, sale.ID, sale.BusinessID, sale.OutletID, nullIfEmpty(sale.CashierID), nullIfEmpty(sale.ShiftID),
		sale.Type, sale.Status, sale.PaymentStatus, nullIfEmpty(sale.Reference), sale.TotalCents,
		nullIfEmpty(strings.TrimSpace(sale.Notes)), sale.CreatedAt, nullTime(sale.PaidAt))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidRequest
		}
		return nil, err
	}

	for _, payment := range sale.Payments {
		payment.SaleID = sale.ID
		if payment.ID == "" {
			payment.ID = xid.New("pay")
		}
		if payment.CreatedAt.IsZero() {
			payment.CreatedAt = time.Now().UTC()
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sale_payments (id, sale_id, method, amount_cents, status, reference, paid_at, created_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		`, payment.ID, payment.SaleID, payment.Method, payment.AmountCents, payment.Status,
			nullIfEmpty(payment.Reference), nullTime(payment.PaidAt), payment.CreatedAt); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.GetSaleByID(ctx, sale.ID)
}

const saleColumns = `
	id, business_id, outlet_id, COALESCE(cashier_id, ''), COALESCE(shift_id, ''),
	type, status, payment_status, COALESCE(reference, ''), total_cents,
	COALESCE(notes, ''), created_at, paid_at
`

func scanSale(row rowScanner) (*domain.Sale, error) {
	var sale domain.Sale
	err := row.Scan(
		&sale.ID, &sale.BusinessID, &sale.OutletID, &sale.CashierID, &sale.ShiftID,
		&sale.Type, &sale.Status, &sale.PaymentStatus, &sale.Reference, &sale.TotalCents,
		&sale.Notes, &sale.CreatedAt, &sale.PaidAt,
	)
	if err != nil {
		return nil, err
	}
	return &sale, nil
}

func (s *Store) GetSaleByID(ctx context.Context, saleID string) (*domain.Sale, error) {
	return querySaleBy(ctx, s.db, "id", saleID)
}

func (s *Store) GetSaleByReference(ctx context.Context, reference string) (*domain.Sale, error) {
	return querySaleBy(ctx, s.db, "reference", reference)
}

func querySaleBy(ctx context.Context, q querier, column string, value string) (*domain.Sale, error) {
	sale, err := scanSale(q.QueryRowContext(ctx, `
		SELECT `+saleColumns+`
		FROM sales
		WHERE `+column+` = $1
	`, value))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	payments, err := queryPayments(ctx, q, []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Payments = payments[sale.ID]
	return sale, nil
}

func (s *Store) ListSalesByShift(ctx context.Context, shiftID string, paidOnly bool) ([]domain.Sale, error) {
	return querySalesByShift(ctx, s.db, shiftID, paidOnly)
}

func querySalesByShift(ctx context.Context, q querier, shiftID string, paidOnly bool) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE shift_id = $1
	`
	args := []any{shiftID}
	if paidOnly {
		args = append(args, domain.PaymentStatusPaid)
		query += ` AND payment_status = $2`
	}
	query += ` ORDER BY created_at ASC, id ASC`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	return attachPayments(ctx, q, sales)
}

func (s *Store) ListUnassignedSelfServiceSales(ctx context.Context, outletID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 200
	}

	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE outlet_id = $1 AND shift_id IS NULL
			AND type = $2 AND payment_status = $3
	`
	args := []any{outletID, domain.SaleTypeSelfService, domain.PaymentStatusPaid}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND created_at >= $4`
	}
	if !to.IsZero() {
		args = append(args, to)
		if from.IsZero() {
			query += ` AND created_at <= $4`
		} else {
			query += ` AND created_at <= $5`
		}
	}
	args = append(args, limit)
	switch len(args) {
	case 4:
		query += ` ORDER BY created_at ASC LIMIT $4`
	case 5:
		query += ` ORDER BY created_at ASC LIMIT $5`
	default:
		query += ` ORDER BY created_at ASC LIMIT $6`
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sales, err := collectSales(rows)
	if err != nil {
		return nil, err
	}
	return attachPayments(ctx, s.db, sales)
}

func (s *Store) UpdateSaleOutcome(ctx context.Context, saleID string, status string, paymentStatus string, paidAt *time.Time) (*domain.Sale, error) {
	sale, err := scanSale(s.db.QueryRowContext(ctx, `
		UPDATE sales
		SET status = CASE WHEN $2 = '' THEN status ELSE $2 END,
			payment_status = CASE WHEN $3 = '' THEN payment_status ELSE $3 END,
			paid_at = COALESCE($4, paid_at),
			updated_at = now()
		WHERE id = $1
		RETURNING `+saleColumns+`
	`, saleID, status, paymentStatus, nullTime(paidAt)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}

	payments, err := queryPayments(ctx, s.db, []string{sale.ID})
	if err != nil {
		return nil, err
	}
	sale.Payments = payments[sale.ID]
	return sale, nil
}

func (s *Store) MarkSalePaid(ctx context.Context, saleID string, paidAt *time.Time) (*domain.Sale, bool, error) {
	at := time.Now().UTC()
	if paidAt != nil {
		at = *paidAt
	}

	// Conditional on payment_status: of N racing duplicate confirmations
	// exactly one row update wins, and a refunded sale is never resurrected.
	sale, err := scanSale(s.db.QueryRowContext(ctx, `
		UPDATE sales
		SET status = $2, payment_status = $3, paid_at = $4, updated_at = now()
		WHERE id = $1 AND payment_status NOT IN ($3, $5)
		RETURNING `+saleColumns+`
	`, saleID, domain.SaleStatusCompleted, domain.PaymentStatusPaid, at, domain.PaymentStatusRefunded))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			current, lookupErr := s.GetSaleByID(ctx, saleID)
			if lookupErr != nil {
				return nil, false, lookupErr
			}
			return current, false, nil
		}
		return nil, false, err
	}

	payments, err := queryPayments(ctx, s.db, []string{sale.ID})
	if err != nil {
		return nil, false, err
	}
	sale.Payments = payments[sale.ID]
	return sale, true, nil
}

func (s *Store) AppendSalePayment(ctx context.Context, payment domain.SalePayment) error {
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO sale_payments (id, sale_id, method, amount_cents, status, reference, paid_at, created_at)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8
		WHERE EXISTS (SELECT 1 FROM sales WHERE id = $2)
	`, payment.ID, payment.SaleID, payment.Method, payment.AmountCents, payment.Status,
		nullIfEmpty(payment.Reference), nullTime(payment.PaidAt), payment.CreatedAt)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) AssignSaleToShift(ctx context.Context, saleID string, shiftID string) (bool, error) {
	// Assign-once: the shift_id IS NULL guard makes duplicate webhook
	// deliveries and concurrent pollers collapse to a single winner.
	result, err := s.db.ExecContext(ctx, `
		UPDATE sales
		SET shift_id = $2, updated_at = now()
		WHERE id = $1 AND shift_id IS NULL
	`, saleID, shiftID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected > 0 {
		return true, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM sales WHERE id = $1)`, saleID).Scan(&exists); err != nil {
		return false, err
	}
	if !exists {
		return false, store.ErrNotFound
	}
	return false, nil
}

func (s *Store) CreateAttendance(ctx context.Context, attendance domain.Attendance) (*domain.Attendance, error) {
	if strings.TrimSpace(attendance.OutletID) == "" || strings.TrimSpace(attendance.CashierID) == "" {
		return nil, store.ErrInvalidRequest
	}
	if attendance.ID == "" {
		attendance.ID = xid.New("att")
	}
	if attendance.ClockInAt.IsZero() {
		attendance.ClockInAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendances (id, business_id, outlet_id, cashier_id, clock_in_at, clock_out_at)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, attendance.ID, attendance.BusinessID, attendance.OutletID, attendance.CashierID,
		attendance.ClockInAt, nullTime(attendance.ClockOutAt))
	if err != nil {
		return nil, err
	}
	created := attendance
	return &created, nil
}

func (s *Store) HasClockInOn(ctx context.Context, outletID string, cashierID string, day time.Time) (bool, error) {
	dayStart := dateUTC(day)
	dayEnd := dayStart.Add(24 * time.Hour)

	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1
			FROM attendances
			WHERE outlet_id = $1 AND cashier_id = $2
				AND clock_in_at >= $3 AND clock_in_at < $4
		)
	`, outletID, cashierID, dayStart, dayEnd).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *Store) CreateAuditLog(ctx context.Context, entry domain.AuditLog) error {
	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_logs (id, business_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, entry.ID, entry.BusinessID, entry.ActorUsername, entry.ActorRole, entry.Action,
		entry.EntityType, entry.EntityID, entry.Detail, entry.CreatedAt)
	return err
}

func (s *Store) ListAuditLogs(ctx context.Context, businessID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, business_id, actor_username, actor_role, action, entity_type, entity_id, detail, created_at
		FROM audit_logs
		WHERE ($1 = '' OR business_id = $1)
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at <= $3)
		ORDER BY created_at DESC
		LIMIT $4
	`, businessID, nullTimeValue(from), nullTimeValue(to), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]domain.AuditLog, 0, limit)
	for rows.Next() {
		var entry domain.AuditLog
		if err := rows.Scan(&entry.ID, &entry.BusinessID, &entry.ActorUsername, &entry.ActorRole,
			&entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &entry.CreatedAt); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return logs, nil
}

func (s *Store) CreateUser(ctx context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidRequest
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password, role, active, created_at)
		VALUES ($1,$2,$3,$4,$5)
	`, username, user.Password, user.Role, user.Active, user.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrInvalidRequest
		}
		return err
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]domain.UserAccount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT username, password, role, active, created_at
		FROM users
		ORDER BY username
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]domain.UserAccount, 0, 16)
	for rows.Next() {
		var user domain.UserAccount
		if err := rows.Scan(&user.Username, &user.Password, &user.Role, &user.Active, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Store) UpdateUserPassword(ctx context.Context, username string, password string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password = $2
		WHERE username = $1
	`, strings.ToLower(strings.TrimSpace(username)), password)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func collectShifts(rows *sql.Rows) ([]domain.Shift, error) {
	shifts := make([]domain.Shift, 0, 16)
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *shift)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

func collectSales(rows *sql.Rows) ([]domain.Sale, error) {
	sales := make([]domain.Sale, 0, 16)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, *sale)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sales, nil
}

func attachPayments(ctx context.Context, q querier, sales []domain.Sale) ([]domain.Sale, error) {
	if len(sales) == 0 {
		return sales, nil
	}
	saleIDs := make([]string, 0, len(sales))
	for _, sale := range sales {
		saleIDs = append(saleIDs, sale.ID)
	}
	payments, err := queryPayments(ctx, q, saleIDs)
	if err != nil {
		return nil, err
	}
	for i := range sales {
		sales[i].Payments = payments[sales[i].ID]
	}
	return sales, nil
}

func queryPayments(ctx context.Context, q querier, saleIDs []string) (map[string][]domain.SalePayment, error) {
	payments := make(map[string][]domain.SalePayment, len(saleIDs))
	if len(saleIDs) == 0 {
		return payments, nil
	}

	rows, err := q.QueryContext(ctx, `
		SELECT id, sale_id, method, amount_cents, status, COALESCE(reference, ''), paid_at, created_at
		FROM sale_payments
		WHERE sale_id = ANY($1)
		ORDER BY created_at ASC, id ASC
	`, saleIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var payment domain.SalePayment
		if err := rows.Scan(&payment.ID, &payment.SaleID, &payment.Method, &payment.AmountCents,
			&payment.Status, &payment.Reference, &payment.PaidAt, &payment.CreatedAt); err != nil {
			return nil, err
		}
		payments[payment.SaleID] = append(payments[payment.SaleID], payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payments, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func dateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func nullIfEmpty(val string) any {
	if val == "" {
		return nil
	}
	return val
}

func nullTime(val *time.Time) any {
	if val == nil {
		return nil
	}
	return *val
}

func nullTimeValue(val time.Time) any {
	if val.IsZero() {
		return nil
	}
	return val
}
