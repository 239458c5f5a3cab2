package memory

import (
	"context"
	"log"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"tokokas/backend/internal/domain"
	"tokokas/backend/internal/reconcile"
	"tokokas/backend/internal/store"
	"tokokas/backend/internal/xid"
)

type Store struct {
	mu                sync.RWMutex
	shiftsByID        map[string]domain.Shift
	activeShiftByKey  map[string]string
	salesByID         map[string]domain.Sale
	saleIDByReference map[string]string
	attendanceByID    map[string]domain.Attendance
	auditLogs         []domain.AuditLog
	usersByUsername   map[string]domain.UserAccount
}

// seedUsers builds the initial in-memory user accounts for dev/demo mode.
// Credentials are read from SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD
// environment variables. If unset, hardcoded dev defaults are used with a
// warning printed to stdout. These credentials are never used in production
// (the backend uses PostgreSQL when DATABASE_URL is set).
func seedUsers() map[string]domain.UserAccount {
	adminPwd := envOr("SEED_ADMIN_PASSWORD", "admin123")
	cashierPwd := envOr("SEED_CASHIER_PASSWORD", "cashier123")
	if os.Getenv("SEED_ADMIN_PASSWORD") == "" || os.Getenv("SEED_CASHIER_PASSWORD") == "" {
		log.Println("[memory-store] WARNING: using default dev credentials. Set SEED_ADMIN_PASSWORD and SEED_CASHIER_PASSWORD to override.")
	}

	now := time.Now().UTC()
	users := map[string]domain.UserAccount{}
	for _, u := range []struct {
		username string
		password string
		role     string
	}{
		{"admin", adminPwd, "admin"},
		{"cashier", cashierPwd, "cashier"},
	} {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			log.Fatalf("[memory-store] failed to hash seed password for %s: %v", u.username, err)
		}
		users[u.username] = domain.UserAccount{
			Username:  u.username,
			Password:  string(hash),
			Role:      u.role,
			Active:    true,
			CreatedAt: now,
		}
	}
	return users
}

func envOr(key string, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func NewSeeded() *Store {
	return &Store{
		shiftsByID:        make(map[string]domain.Shift),
		activeShiftByKey:  make(map[string]string),
		salesByID:         make(map[string]domain.Sale),
		saleIDByReference: make(map[string]string),
		attendanceByID:    make(map[string]domain.Attendance),
		auditLogs:         make([]domain.AuditLog, 0, 64),
		usersByUsername:   seedUsers(),
	}
}

func (s *Store) CreateShift(_ context.Context, shift domain.Shift) (*domain.Shift, error) {
	if strings.TrimSpace(shift.OutletID) == "" || strings.TrimSpace(shift.CashierID) == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := shiftMapKey(shift.CashierID, shift.OutletID)
	if _, exists := s.activeShiftByKey[key]; exists {
		return nil, store.ErrShiftAlreadyOpen
	}
	if shift.ID == "" {
		shift.ID = xid.New("shift")
	}
	if shift.OpenedAt.IsZero() {
		shift.OpenedAt = time.Now().UTC()
	}
	shift.Status = domain.ShiftStatusOpen
	shift.ClosedAt = nil
	shift.ClosedBy = ""
	shift.CloseNotes = ""
	shift.ActualCashCents = 0
	shift.CashDifferenceCents = 0
	applyTotals(&shift, domain.ShiftTotals{})

	s.shiftsByID[shift.ID] = shift
	s.activeShiftByKey[key] = shift.ID
	copyShift := shift
	return &copyShift, nil
}

func (s *Store) GetShiftByID(_ context.Context, shiftID string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shift, exists := s.shiftsByID[shiftID]
	if !exists {
		return nil, store.ErrNotFound
	}
	copyShift := shift
	return &copyShift, nil
}

func (s *Store) GetActiveShift(_ context.Context, outletID string, cashierID string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := shiftMapKey(cashierID, outletID)
	shiftID, exists := s.activeShiftByKey[key]
	if !exists {
		return nil, store.ErrNotFound
	}
	shift, exists := s.shiftsByID[shiftID]
	if !exists || shift.Status != domain.ShiftStatusOpen {
		return nil, store.ErrNotFound
	}
	copyShift := shift
	return &copyShift, nil
}

func (s *Store) GetLatestOpenShiftAtOutlet(_ context.Context, outletID string) (*domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Shift
	for _, shift := range s.shiftsByID {
		if shift.OutletID != outletID || shift.Status != domain.ShiftStatusOpen {
			continue
		}
		if latest == nil || shift.OpenedAt.After(latest.OpenedAt) {
			copyShift := shift
			latest = &copyShift
		}
	}
	if latest == nil {
		return nil, store.ErrNotFound
	}
	return latest, nil
}

func (s *Store) ListOpenShifts(_ context.Context, businessID string) ([]domain.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts := make([]domain.Shift, 0, 8)
	for _, shift := range s.shiftsByID {
		if shift.Status != domain.ShiftStatusOpen {
			continue
		}
		if businessID != "" && shift.BusinessID != businessID {
			continue
		}
		shifts = append(shifts, shift)
	}
	sortShiftsNewestFirst(shifts)
	return shifts, nil
}

func (s *Store) ListShifts(_ context.Context, businessID string, outletID string, from time.Time, to time.Time, limit int) ([]domain.Shift, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts := make([]domain.Shift, 0, 32)
	for _, shift := range s.shiftsByID {
		if businessID != "" && shift.BusinessID != businessID {
			continue
		}
		if outletID != "" && shift.OutletID != outletID {
			continue
		}
		if !from.IsZero() && shift.OpenedAt.Before(from) {
			continue
		}
		if !to.IsZero() && shift.OpenedAt.After(to) {
			continue
		}
		shifts = append(shifts, shift)
	}
	sortShiftsNewestFirst(shifts)
	if len(shifts) > limit {
		shifts = shifts[:limit]
	}
	return shifts, nil
}

func (s *Store) UpdateOpenShiftTotals(_ context.Context, shiftID string, totals domain.ShiftTotals) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, exists := s.shiftsByID[shiftID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if shift.Status != domain.ShiftStatusOpen {
		return nil, store.ErrShiftAlreadyClosed
	}
	applyTotals(&shift, totals)
	s.shiftsByID[shiftID] = shift
	copyShift := shift
	return &copyShift, nil
}

func (s *Store) CloseShift(_ context.Context, shiftID string, actualCashCents int64, notes string, closedBy string, closedAt time.Time) (*domain.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift, exists := s.shiftsByID[shiftID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if shift.Status != domain.ShiftStatusOpen {
		return nil, store.ErrShiftAlreadyClosed
	}
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	// Final authoritative recompute in the same critical section as the
	// status flip, so a persisted close never carries stale totals.
	totals := reconcile.Calculate(s.paidSalesForShiftLocked(shiftID))
	applyTotals(&shift, totals)

	shift.Status = domain.ShiftStatusClosed
	shift.ActualCashCents = actualCashCents
	shift.CashDifferenceCents = actualCashCents - totals.ExpectedCashCents
	shift.CloseNotes = strings.TrimSpace(notes)
	shift.ClosedBy = closedBy
	shift.ClosedAt = &closedAt

	delete(s.activeShiftByKey, shiftMapKey(shift.CashierID, shift.OutletID))
	s.shiftsByID[shiftID] = shift
	copyShift := shift
	return &copyShift, nil
}

func (s *Store) CreateSale(_ context.Context, sale domain.Sale) (*domain.Sale, error) {
	if strings.TrimSpace(sale.OutletID) == "" || sale.TotalCents < 1 {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if sale.Reference != "" {
		if _, exists := s.saleIDByReference[sale.Reference]; exists {
			return nil, store.ErrInvalidRequest
		}
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
	sale.Payments = slices.Clone(sale.Payments)

	s.salesByID[sale.ID] = sale
	if sale.Reference != "" {
		s.saleIDByReference[sale.Reference] = sale.ID
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSaleByID(_ context.Context, saleID string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) GetSaleByReference(_ context.Context, reference string) (*domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	saleID, exists := s.saleIDByReference[reference]
	if !exists {
		return nil, store.ErrNotFound
	}
	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	return cloneSale(sale), nil
}

func (s *Store) ListSalesByShift(_ context.Context, shiftID string, paidOnly bool) ([]domain.Sale, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, 16)
	for _, sale := range s.salesByID {
		if sale.ShiftID != shiftID {
			continue
		}
		if paidOnly && sale.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}
	sortSalesOldestFirst(sales)
	return sales, nil
}

func (s *Store) ListUnassignedSelfServiceSales(_ context.Context, outletID string, from time.Time, to time.Time, limit int) ([]domain.Sale, error) {
	if limit < 1 {
		limit = 200
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	sales := make([]domain.Sale, 0, 16)
	for _, sale := range s.salesByID {
		if sale.OutletID != outletID || sale.ShiftID != "" {
			continue
		}
		if sale.Type != domain.SaleTypeSelfService || sale.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		if !from.IsZero() && sale.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && sale.CreatedAt.After(to) {
			continue
		}
		sales = append(sales, *cloneSale(sale))
	}
	sortSalesOldestFirst(sales)
	if len(sales) > limit {
		sales = sales[:limit]
	}
	return sales, nil
}

func (s *Store) UpdateSaleOutcome(_ context.Context, saleID string, status string, paymentStatus string, paidAt *time.Time) (*domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, store.ErrNotFound
	}
	if status != "" {
		sale.Status = status
	}
	if paymentStatus != "" {
		sale.PaymentStatus = paymentStatus
	}
	if paidAt != nil {
		at := *paidAt
		sale.PaidAt = &at
	}
	s.salesByID[saleID] = sale
	return cloneSale(sale), nil
}

func (s *Store) MarkSalePaid(_ context.Context, saleID string, paidAt *time.Time) (*domain.Sale, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return nil, false, store.ErrNotFound
	}
	switch sale.PaymentStatus {
	case domain.PaymentStatusPaid, domain.PaymentStatusRefunded:
		return cloneSale(sale), false, nil
	}

	sale.Status = domain.SaleStatusCompleted
	sale.PaymentStatus = domain.PaymentStatusPaid
	at := time.Now().UTC()
	if paidAt != nil {
		at = *paidAt
	}
	sale.PaidAt = &at
	s.salesByID[saleID] = sale
	return cloneSale(sale), true, nil
}

func (s *Store) AppendSalePayment(_ context.Context, payment domain.SalePayment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[payment.SaleID]
	if !exists {
		return store.ErrNotFound
	}
	if payment.ID == "" {
		payment.ID = xid.New("pay")
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	sale.Payments = append(slices.Clone(sale.Payments), payment)
	s.salesByID[payment.SaleID] = sale
	return nil
}

func (s *Store) AssignSaleToShift(_ context.Context, saleID string, shiftID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, exists := s.salesByID[saleID]
	if !exists {
		return false, store.ErrNotFound
	}
	if sale.ShiftID != "" {
		return false, nil
	}
	sale.ShiftID = shiftID
	s.salesByID[saleID] = sale
	return true, nil
}

func (s *Store) CreateAttendance(_ context.Context, attendance domain.Attendance) (*domain.Attendance, error) {
	if strings.TrimSpace(attendance.OutletID) == "" || strings.TrimSpace(attendance.CashierID) == "" {
		return nil, store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if attendance.ID == "" {
		attendance.ID = xid.New("att")
	}
	if attendance.ClockInAt.IsZero() {
		attendance.ClockInAt = time.Now().UTC()
	}
	s.attendanceByID[attendance.ID] = attendance
	copyAttendance := attendance
	return &copyAttendance, nil
}

func (s *Store) HasClockInOn(_ context.Context, outletID string, cashierID string, day time.Time) (bool, error) {
	target := dateUTC(day)

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, attendance := range s.attendanceByID {
		if attendance.OutletID != outletID || attendance.CashierID != cashierID {
			continue
		}
		if dateUTC(attendance.ClockInAt).Equal(target) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CreateAuditLog(_ context.Context, entry domain.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		entry.ID = xid.New("audit")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	s.auditLogs = append(s.auditLogs, entry)
	return nil
}

func (s *Store) ListAuditLogs(_ context.Context, businessID string, from time.Time, to time.Time, limit int) ([]domain.AuditLog, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]domain.AuditLog, 0, limit)
	for _, entry := range s.auditLogs {
		if businessID != "" && entry.BusinessID != businessID {
			continue
		}
		if !from.IsZero() && entry.CreatedAt.Before(from) {
			continue
		}
		if !to.IsZero() && entry.CreatedAt.After(to) {
			continue
		}
		logs = append(logs, entry)
	}
	slices.SortFunc(logs, func(a, b domain.AuditLog) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (s *Store) CreateUser(_ context.Context, user domain.UserAccount) error {
	username := strings.ToLower(strings.TrimSpace(user.Username))
	if username == "" {
		return store.ErrInvalidRequest
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByUsername[username]; exists {
		return store.ErrInvalidRequest
	}
	user.Username = username
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	s.usersByUsername[username] = user
	return nil
}

func (s *Store) ListUsers(_ context.Context) ([]domain.UserAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]domain.UserAccount, 0, len(s.usersByUsername))
	for _, user := range s.usersByUsername {
		users = append(users, user)
	}
	slices.SortFunc(users, func(a, b domain.UserAccount) int {
		return cmpString(a.Username, b.Username)
	})
	return users, nil
}

func (s *Store) UpdateUserPassword(_ context.Context, username string, password string) error {
	username = strings.ToLower(strings.TrimSpace(username))

	s.mu.Lock()
	defer s.mu.Unlock()

	user, exists := s.usersByUsername[username]
	if !exists {
		return store.ErrNotFound
	}
	user.Password = password
	s.usersByUsername[username] = user
	return nil
}

// paidSalesForShiftLocked is the close-shift read path; callers hold mu.
func (s *Store) paidSalesForShiftLocked(shiftID string) []domain.Sale {
	sales := make([]domain.Sale, 0, 16)
	for _, sale := range s.salesByID {
		if sale.ShiftID != shiftID || sale.PaymentStatus != domain.PaymentStatusPaid {
			continue
		}
		sales = append(sales, sale)
	}
	return sales
}

func applyTotals(shift *domain.Shift, totals domain.ShiftTotals) {
	shift.ExpectedCashCents = totals.ExpectedCashCents
	shift.ExpectedCardCents = totals.ExpectedCardCents
	shift.ExpectedTransferCents = totals.ExpectedTransferCents
	shift.ExpectedQRISCents = totals.ExpectedQRISCents
	shift.ExpectedTotalCents = totals.ExpectedTotalCents
	shift.CashCount = totals.CashCount
	shift.CardCount = totals.CardCount
	shift.TransferCount = totals.TransferCount
	shift.QRISCount = totals.QRISCount
	shift.TotalTransactions = totals.TotalTransactions
}

func cloneSale(sale domain.Sale) *domain.Sale {
	copySale := sale
	copySale.Payments = slices.Clone(sale.Payments)
	return &copySale
}

func sortShiftsNewestFirst(shifts []domain.Shift) {
	slices.SortFunc(shifts, func(a, b domain.Shift) int {
		return b.OpenedAt.Compare(a.OpenedAt)
	})
}

func sortSalesOldestFirst(sales []domain.Sale) {
	slices.SortFunc(sales, func(a, b domain.Sale) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return cmpString(a.ID, b.ID)
	})
}

func shiftMapKey(cashierID string, outletID string) string {
	return cashierID + "::" + outletID
}

func dateUTC(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

func cmpString(a string, b string) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}
