package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"tokokas/backend/internal/cache"
	"tokokas/backend/internal/domain"
	"tokokas/backend/internal/gateway"
	"tokokas/backend/internal/reconcile"
	"tokokas/backend/internal/store"
	"tokokas/backend/internal/xid"
)

type actorContextKey struct{}

func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(domain.Actor)
	return actor, ok
}

// Settings is the typed configuration this engine depends on, resolved once
// at startup. There is no dynamic settings blob: the attendance gate is a
// named boolean, not a JSON lookup.
type Settings struct {
	DefaultBusinessID         string
	RequireAttendanceForShift bool
	GatewayServerKey          string
	ShiftDetailTTL            time.Duration
}

type Service struct {
	repo        store.Repository
	detailCache cache.ShiftDetailCache
	gateway     *gateway.Client
	settings    Settings
}

func New(repo store.Repository, detailCache cache.ShiftDetailCache, gatewayClient *gateway.Client, settings Settings) *Service {
	if settings.DefaultBusinessID == "" {
		settings.DefaultBusinessID = "main-business"
	}
	if settings.ShiftDetailTTL <= 0 {
		settings.ShiftDetailTTL = 30 * time.Second
	}
	if detailCache == nil {
		detailCache = cache.NoopShiftDetailCache{}
	}

	return &Service{
		repo:        repo,
		detailCache: detailCache,
		gateway:     gatewayClient,
		settings:    settings,
	}
}

func (s *Service) OpenShift(ctx context.Context, req domain.ShiftOpenRequest) (domain.ShiftResponse, error) {
	if req.BusinessID == "" {
		req.BusinessID = s.settings.DefaultBusinessID
	}
	if req.CashierID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			req.CashierID = actor.Username
		}
	}
	if strings.TrimSpace(req.OutletID) == "" || strings.TrimSpace(req.CashierID) == "" {
		return domain.ShiftResponse{}, store.ErrInvalidRequest
	}
	if req.OpeningBalanceCents < 0 {
		return domain.ShiftResponse{}, store.ErrInvalidRequest
	}

	if s.settings.RequireAttendanceForShift {
		clockedIn, err := s.repo.HasClockInOn(ctx, req.OutletID, req.CashierID, time.Now().UTC())
		if err != nil {
			return domain.ShiftResponse{}, err
		}
		if !clockedIn {
			return domain.ShiftResponse{}, store.ErrAttendanceRequired
		}
	}

	shift := domain.Shift{
		ID:                  xid.New("shift"),
		BusinessID:          req.BusinessID,
		OutletID:            req.OutletID,
		CashierID:           req.CashierID,
		EmployeeID:          req.EmployeeID,
		OpeningBalanceCents: req.OpeningBalanceCents,
		Status:              domain.ShiftStatusOpen,
		Notes:               strings.TrimSpace(req.Notes),
		OpenedAt:            time.Now().UTC(),
	}
	saved, err := s.repo.CreateShift(ctx, shift)
	if err != nil {
		return domain.ShiftResponse{}, err
	}

	s.logAudit(ctx, req.BusinessID, "shift_open", "shift", saved.ID, fmt.Sprintf("cashier=%s,outlet=%s,opening_balance=%d", req.CashierID, req.OutletID, req.OpeningBalanceCents))

	return domain.ShiftResponse{Shift: *saved}, nil
}

func (s *Service) CloseShift(ctx context.Context, req domain.ShiftCloseRequest) (domain.ShiftResponse, error) {
	if strings.TrimSpace(req.ShiftID) == "" {
		return domain.ShiftResponse{}, store.ErrInvalidRequest
	}
	if req.ActualCashCents < 0 {
		return domain.ShiftResponse{}, store.ErrInvalidRequest
	}
	if req.ClosedBy == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			req.ClosedBy = actor.Username
		}
	}

	closed, err := s.repo.CloseShift(ctx, req.ShiftID, req.ActualCashCents, req.Notes, req.ClosedBy, time.Now().UTC())
	if err != nil {
		return domain.ShiftResponse{}, err
	}

	s.invalidateDetail(ctx, closed.ID)
	s.logAudit(ctx, closed.BusinessID, "shift_close", "shift", closed.ID, fmt.Sprintf("actual_cash=%d,expected_cash=%d,cash_difference=%d", closed.ActualCashCents, closed.ExpectedCashCents, closed.CashDifferenceCents))

	return domain.ShiftResponse{Shift: *closed}, nil
}

func (s *Service) GetActiveShift(ctx context.Context, outletID string, cashierID string) (domain.ShiftResponse, error) {
	if cashierID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			cashierID = actor.Username
		}
	}
	if outletID == "" || cashierID == "" {
		return domain.ShiftResponse{}, store.ErrInvalidRequest
	}

	shift, err := s.repo.GetActiveShift(ctx, outletID, cashierID)
	if err != nil {
		return domain.ShiftResponse{}, err
	}

	return domain.ShiftResponse{Shift: *shift}, nil
}

// RecomputeShift rebuilds the shift's expected totals from its paid sales.
// On a closed shift it returns the frozen snapshot untouched.
func (s *Service) RecomputeShift(ctx context.Context, shiftID string) (domain.ShiftResponse, error) {
	shift, err := s.repo.GetShiftByID(ctx, shiftID)
	if err != nil {
		return domain.ShiftResponse{}, err
	}
	if shift.Status != domain.ShiftStatusOpen {
		return domain.ShiftResponse{Shift: *shift}, nil
	}

	sales, err := s.repo.ListSalesByShift(ctx, shiftID, true)
	if err != nil {
		return domain.ShiftResponse{}, err
	}
	totals := reconcile.Calculate(sales)

	updated, err := s.repo.UpdateOpenShiftTotals(ctx, shiftID, totals)
	if err != nil {
		// The shift closed between the read and the write; the close path
		// already persisted its own authoritative recompute.
		if errors.Is(err, store.ErrShiftAlreadyClosed) {
			closed, lookupErr := s.repo.GetShiftByID(ctx, shiftID)
			if lookupErr != nil {
				return domain.ShiftResponse{}, lookupErr
			}
			return domain.ShiftResponse{Shift: *closed}, nil
		}
		return domain.ShiftResponse{}, err
	}

	s.invalidateDetail(ctx, shiftID)
	return domain.ShiftResponse{Shift: *updated}, nil
}

func (s *Service) GetShiftDetail(ctx context.Context, shiftID string) (domain.ShiftDetailResponse, error) {
	key := detailCacheKey(shiftID)
	if cached, found, err := s.detailCache.Get(ctx, key); err != nil {
		log.Printf("[service] WARN: shift detail cache read failed shift=%s: %v", shiftID, err)
	} else if found {
		return *cached, nil
	}

	shift, err := s.repo.GetShiftByID(ctx, shiftID)
	if err != nil {
		return domain.ShiftDetailResponse{}, err
	}

	if shift.Status == domain.ShiftStatusOpen {
		// A detail read is one of the deferred-assignment trigger points:
		// sweep paid self-service sales that are still unassigned at this
		// outlet, then refresh the totals.
		s.sweepUnassignedSelfService(ctx, shift.OutletID)
		refreshed, err := s.RecomputeShift(ctx, shiftID)
		if err != nil {
			return domain.ShiftDetailResponse{}, err
		}
		shift = &refreshed.Shift
	}

	sales, err := s.repo.ListSalesByShift(ctx, shiftID, true)
	if err != nil {
		return domain.ShiftDetailResponse{}, err
	}

	resp := domain.ShiftDetailResponse{Shift: *shift, Sales: sales}
	if err := s.detailCache.Set(ctx, key, &resp, s.settings.ShiftDetailTTL); err != nil {
		log.Printf("[service] WARN: shift detail cache write failed shift=%s: %v", shiftID, err)
	}
	return resp, nil
}

func (s *Service) ListShiftHistory(ctx context.Context, businessID string, outletID string, from time.Time, to time.Time, limit int) (domain.ShiftListResponse, error) {
	if businessID == "" {
		businessID = s.settings.DefaultBusinessID
	}
	shifts, err := s.repo.ListShifts(ctx, businessID, outletID, from, to, limit)
	if err != nil {
		return domain.ShiftListResponse{}, err
	}
	return domain.ShiftListResponse{Shifts: shifts}, nil
}

func (s *Service) ListActiveShifts(ctx context.Context, businessID string) (domain.ShiftListResponse, error) {
	if businessID == "" {
		businessID = s.settings.DefaultBusinessID
	}
	shifts, err := s.repo.ListOpenShifts(ctx, businessID)
	if err != nil {
		return domain.ShiftListResponse{}, err
	}
	return domain.ShiftListResponse{Shifts: shifts}, nil
}

func (s *Service) CreateSale(ctx context.Context, req domain.SaleCreateRequest) (domain.SaleResponse, error) {
	if req.BusinessID == "" {
		req.BusinessID = s.settings.DefaultBusinessID
	}
	if strings.TrimSpace(req.OutletID) == "" || req.TotalCents < 1 {
		return domain.SaleResponse{}, store.ErrInvalidRequest
	}
	if req.Type == "" {
		req.Type = domain.SaleTypeCounter
	}
	if req.Type != domain.SaleTypeCounter && req.Type != domain.SaleTypeSelfService {
		return domain.SaleResponse{}, store.ErrInvalidRequest
	}
	if req.Reference == "" {
		req.Reference = xid.New("order")
	}

	sale := domain.Sale{
		ID:         xid.New("sale"),
		BusinessID: req.BusinessID,
		OutletID:   req.OutletID,
		Type:       req.Type,
		Status:     domain.SaleStatusPending,
		Reference:  req.Reference,
		TotalCents: req.TotalCents,
		Notes:      strings.TrimSpace(req.Notes),
		CreatedAt:  time.Now().UTC(),
	}

	switch req.Type {
	case domain.SaleTypeCounter:
		if req.PaymentMethod == "" {
			req.PaymentMethod = domain.PaymentMethodCash
		}
		if !isSupportedPaymentMethod(req.PaymentMethod) {
			return domain.SaleResponse{}, store.ErrInvalidRequest
		}

		actor, ok := ActorFromContext(ctx)
		if !ok || actor.Username == "" {
			return domain.SaleResponse{}, fmt.Errorf("authenticated cashier required")
		}
		sale.CashierID = actor.Username

		shift, err := s.repo.GetActiveShift(ctx, req.OutletID, actor.Username)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return domain.SaleResponse{}, fmt.Errorf("active shift required")
			}
			return domain.SaleResponse{}, err
		}
		sale.ShiftID = shift.ID

		if req.PaymentMethod == domain.PaymentMethodCash {
			// In-person cash settles on the spot; non-cash counter sales wait
			// for the gateway to confirm.
			now := time.Now().UTC()
			sale.Status = domain.SaleStatusCompleted
			sale.PaymentStatus = domain.PaymentStatusPaid
			sale.PaidAt = &now
			sale.Payments = []domain.SalePayment{{
				SaleID:      sale.ID,
				Method:      domain.PaymentMethodCash,
				AmountCents: sale.TotalCents,
				Status:      domain.PaymentRowSuccess,
				PaidAt:      &now,
				CreatedAt:   now,
			}}
		} else {
			sale.PaymentStatus = domain.PaymentStatusPending
		}
	case domain.SaleTypeSelfService:
		// No cashier session exists at order time: the sale starts without a
		// shift and is linked later by the deferred-assignment path.
		sale.PaymentStatus = domain.PaymentStatusPending
	}

	created, err := s.repo.CreateSale(ctx, sale)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	if created.ShiftID != "" && created.PaymentStatus == domain.PaymentStatusPaid {
		s.recomputeOwningShift(ctx, created.ShiftID)
	}
	s.logAudit(ctx, req.BusinessID, "sale_create", "sale", created.ID, fmt.Sprintf("type=%s,total=%d", created.Type, created.TotalCents))

	return domain.SaleResponse{Sale: *created}, nil
}

func (s *Service) GetSale(ctx context.Context, saleID string) (domain.SaleResponse, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	return domain.SaleResponse{Sale: *sale}, nil
}

func (s *Service) RefundSale(ctx context.Context, req domain.RefundSaleRequest) (domain.SaleResponse, error) {
	sale, err := s.repo.GetSaleByID(ctx, req.SaleID)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	if sale.PaymentStatus != domain.PaymentStatusPaid {
		return domain.SaleResponse{}, fmt.Errorf("only paid sales can be refunded: %w", store.ErrInvalidRequest)
	}

	updated, err := s.repo.UpdateSaleOutcome(ctx, sale.ID, domain.SaleStatusRefunded, domain.PaymentStatusRefunded, nil)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.recomputeOwningShift(ctx, updated.ShiftID)
	s.logAudit(ctx, updated.BusinessID, "sale_refund", "sale", updated.ID, fmt.Sprintf("total=%d,reason=%s", updated.TotalCents, strings.TrimSpace(req.Reason)))

	return domain.SaleResponse{Sale: *updated}, nil
}

func (s *Service) CancelSale(ctx context.Context, req domain.CancelSaleRequest) (domain.SaleResponse, error) {
	sale, err := s.repo.GetSaleByID(ctx, req.SaleID)
	if err != nil {
		return domain.SaleResponse{}, err
	}
	if sale.Status == domain.SaleStatusCancelled || sale.Status == domain.SaleStatusRefunded {
		return domain.SaleResponse{}, fmt.Errorf("sale is already %s: %w", sale.Status, store.ErrInvalidRequest)
	}

	paymentStatus := domain.PaymentStatusFailed
	if sale.PaymentStatus == domain.PaymentStatusPaid {
		paymentStatus = domain.PaymentStatusRefunded
	}
	updated, err := s.repo.UpdateSaleOutcome(ctx, sale.ID, domain.SaleStatusCancelled, paymentStatus, nil)
	if err != nil {
		return domain.SaleResponse{}, err
	}

	s.recomputeOwningShift(ctx, updated.ShiftID)
	s.logAudit(ctx, updated.BusinessID, "sale_cancel", "sale", updated.ID, fmt.Sprintf("total=%d,reason=%s", updated.TotalCents, strings.TrimSpace(req.Reason)))

	return domain.SaleResponse{Sale: *updated}, nil
}

// HandlePaymentNotification processes a gateway webhook delivery. Deliveries
// are at-least-once and unordered; every step below is conditional so a
// duplicate ends up a no-op.
func (s *Service) HandlePaymentNotification(ctx context.Context, notification gateway.StatusNotification) (domain.AssignResult, error) {
	if !notification.VerifySignature(s.settings.GatewayServerKey) {
		return domain.AssignResult{}, fmt.Errorf("invalid gateway signature")
	}
	return s.applyGatewayStatus(ctx, notification)
}

// PollPaymentStatus re-checks a sale's status against the gateway on demand,
// covering notifications the webhook path missed.
func (s *Service) PollPaymentStatus(ctx context.Context, saleID string) (domain.AssignResult, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if sale.Reference == "" {
		return domain.AssignResult{}, fmt.Errorf("sale has no gateway reference: %w", store.ErrInvalidRequest)
	}

	notification, err := s.gateway.FetchStatus(ctx, sale.Reference)
	if err != nil {
		return domain.AssignResult{}, err
	}
	return s.applyGatewayStatus(ctx, *notification)
}

func (s *Service) applyGatewayStatus(ctx context.Context, notification gateway.StatusNotification) (domain.AssignResult, error) {
	sale, err := s.repo.GetSaleByReference(ctx, notification.OrderID)
	if err != nil {
		return domain.AssignResult{}, err
	}

	mapped := notification.PaymentStatus()
	switch {
	case mapped == domain.PaymentStatusPaid:
		// The store-level conditional write is what makes this path safe
		// against truly concurrent duplicate deliveries: only the winning
		// transition appends a payment row.
		updated, transitioned, err := s.repo.MarkSalePaid(ctx, sale.ID, notification.SettledAt())
		if err != nil {
			return domain.AssignResult{}, err
		}
		sale = updated
		if transitioned {
			if err := s.repo.AppendSalePayment(ctx, domain.SalePayment{
				SaleID:      sale.ID,
				Method:      notification.PaymentMethod(),
				AmountCents: sale.TotalCents,
				Status:      domain.PaymentRowSuccess,
				Reference:   notification.TransactionID,
				PaidAt:      sale.PaidAt,
			}); err != nil {
				return domain.AssignResult{}, err
			}
		}
	case mapped == domain.PaymentStatusFailed && sale.PaymentStatus == domain.PaymentStatusPending:
		sale, err = s.repo.UpdateSaleOutcome(ctx, sale.ID, domain.SaleStatusCancelled, domain.PaymentStatusFailed, nil)
		if err != nil {
			return domain.AssignResult{}, err
		}
	case mapped == domain.PaymentStatusRefunded && sale.PaymentStatus == domain.PaymentStatusPaid:
		sale, err = s.repo.UpdateSaleOutcome(ctx, sale.ID, domain.SaleStatusRefunded, domain.PaymentStatusRefunded, nil)
		if err != nil {
			return domain.AssignResult{}, err
		}
	}

	result := domain.AssignResult{ShiftID: sale.ShiftID}
	if sale.PaymentStatus == domain.PaymentStatusPaid && sale.Type == domain.SaleTypeSelfService && sale.ShiftID == "" {
		result, err = s.resolveDeferredAssignment(ctx, *sale)
		if err != nil {
			return domain.AssignResult{}, err
		}
	} else {
		s.recomputeOwningShift(ctx, sale.ShiftID)
	}
	return result, nil
}

// AssignAndRecompute runs the deferred-assignment rule for one sale and, if
// it links a shift, recomputes that shift's totals.
func (s *Service) AssignAndRecompute(ctx context.Context, saleID string) (domain.AssignResult, error) {
	sale, err := s.repo.GetSaleByID(ctx, saleID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	return s.resolveDeferredAssignment(ctx, *sale)
}

// resolveDeferredAssignment links a paid, unassigned self-service sale to the
// most recently opened shift at its outlet. If no shift was open when the
// sale settled it stays unassigned for good: a shift opened afterwards never
// retroactively claims it.
func (s *Service) resolveDeferredAssignment(ctx context.Context, sale domain.Sale) (domain.AssignResult, error) {
	if sale.ShiftID != "" {
		return domain.AssignResult{Assigned: false, ShiftID: sale.ShiftID}, nil
	}
	if sale.Type != domain.SaleTypeSelfService || sale.PaymentStatus != domain.PaymentStatusPaid {
		return domain.AssignResult{}, nil
	}

	shift, err := s.repo.GetLatestOpenShiftAtOutlet(ctx, sale.OutletID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.AssignResult{}, nil
		}
		return domain.AssignResult{}, err
	}
	if sale.PaidAt != nil && sale.PaidAt.Before(shift.OpenedAt) {
		return domain.AssignResult{}, nil
	}

	assigned, err := s.repo.AssignSaleToShift(ctx, sale.ID, shift.ID)
	if err != nil {
		return domain.AssignResult{}, err
	}
	if !assigned {
		// Lost the conditional write to a concurrent delivery; report the
		// shift the winner linked.
		current, err := s.repo.GetSaleByID(ctx, sale.ID)
		if err != nil {
			return domain.AssignResult{}, err
		}
		return domain.AssignResult{Assigned: false, ShiftID: current.ShiftID}, nil
	}

	s.recomputeOwningShift(ctx, shift.ID)
	s.logAudit(ctx, sale.BusinessID, "sale_assign", "sale", sale.ID, fmt.Sprintf("shift=%s,total=%d", shift.ID, sale.TotalCents))

	return domain.AssignResult{Assigned: true, ShiftID: shift.ID}, nil
}

func (s *Service) sweepUnassignedSelfService(ctx context.Context, outletID string) {
	sales, err := s.repo.ListUnassignedSelfServiceSales(ctx, outletID, time.Time{}, time.Time{}, 0)
	if err != nil {
		log.Printf("[service] WARN: unassigned sale sweep failed outlet=%s: %v", outletID, err)
		return
	}
	for _, sale := range sales {
		if _, err := s.resolveDeferredAssignment(ctx, sale); err != nil {
			log.Printf("[service] WARN: deferred assignment failed sale=%s: %v", sale.ID, err)
		}
	}
}

// recomputeOwningShift is the single mutation hook: every operation that
// changes a sale's payment status, status, or shift linkage funnels through
// here. Closed shifts are skipped, never rewritten.
func (s *Service) recomputeOwningShift(ctx context.Context, shiftID string) {
	if shiftID == "" {
		return
	}

	shift, err := s.repo.GetShiftByID(ctx, shiftID)
	if err != nil {
		log.Printf("[service] WARN: recompute lookup failed shift=%s: %v", shiftID, err)
		return
	}
	if shift.Status != domain.ShiftStatusOpen {
		log.Printf("[service] recompute skipped for closed shift %s; totals stay frozen", shiftID)
		return
	}

	sales, err := s.repo.ListSalesByShift(ctx, shiftID, true)
	if err != nil {
		log.Printf("[service] WARN: recompute read failed shift=%s: %v", shiftID, err)
		return
	}
	if _, err := s.repo.UpdateOpenShiftTotals(ctx, shiftID, reconcile.Calculate(sales)); err != nil {
		if errors.Is(err, store.ErrShiftAlreadyClosed) {
			log.Printf("[service] recompute skipped for closed shift %s; totals stay frozen", shiftID)
			return
		}
		log.Printf("[service] WARN: recompute write failed shift=%s: %v", shiftID, err)
		return
	}
	s.invalidateDetail(ctx, shiftID)
}

func (s *Service) ClockIn(ctx context.Context, req domain.ClockInRequest) (domain.AttendanceResponse, error) {
	if req.BusinessID == "" {
		req.BusinessID = s.settings.DefaultBusinessID
	}
	if req.CashierID == "" {
		if actor, ok := ActorFromContext(ctx); ok {
			req.CashierID = actor.Username
		}
	}
	if strings.TrimSpace(req.OutletID) == "" || strings.TrimSpace(req.CashierID) == "" {
		return domain.AttendanceResponse{}, store.ErrInvalidRequest
	}

	attendance, err := s.repo.CreateAttendance(ctx, domain.Attendance{
		ID:         xid.New("att"),
		BusinessID: req.BusinessID,
		OutletID:   req.OutletID,
		CashierID:  req.CashierID,
		ClockInAt:  time.Now().UTC(),
	})
	if err != nil {
		return domain.AttendanceResponse{}, err
	}

	return domain.AttendanceResponse{Attendance: *attendance}, nil
}

// ListUnassignedRevenue reports paid self-service sales that permanently
// missed the assignment window at an outlet.
func (s *Service) ListUnassignedRevenue(ctx context.Context, outletID string, from time.Time, to time.Time) (domain.UnassignedRevenueResponse, error) {
	if strings.TrimSpace(outletID) == "" {
		return domain.UnassignedRevenueResponse{}, store.ErrInvalidRequest
	}

	sales, err := s.repo.ListUnassignedSelfServiceSales(ctx, outletID, from, to, 0)
	if err != nil {
		return domain.UnassignedRevenueResponse{}, err
	}

	var total int64
	for _, sale := range sales {
		total += sale.TotalCents
	}
	return domain.UnassignedRevenueResponse{OutletID: outletID, TotalCents: total, Sales: sales}, nil
}

func (s *Service) ListAuditLogs(ctx context.Context, businessID string, date string, limit int) ([]domain.AuditLog, error) {
	if businessID == "" {
		businessID = s.settings.DefaultBusinessID
	}

	var from, to time.Time
	if strings.TrimSpace(date) != "" {
		day, err := time.Parse("2006-01-02", strings.TrimSpace(date))
		if err != nil {
			return nil, store.ErrInvalidRequest
		}
		from = day.UTC()
		to = from.Add(24*time.Hour - time.Nanosecond)
	}

	return s.repo.ListAuditLogs(ctx, businessID, from, to, limit)
}

func (s *Service) logAudit(ctx context.Context, businessID string, action string, entityType string, entityID string, detail string) {
	actor, _ := ActorFromContext(ctx)
	entry := domain.AuditLog{
		ID:            xid.New("audit"),
		BusinessID:    businessID,
		ActorUsername: actor.Username,
		ActorRole:     actor.Role,
		Action:        action,
		EntityType:    entityType,
		EntityID:      entityID,
		Detail:        detail,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.repo.CreateAuditLog(ctx, entry); err != nil {
		log.Printf("[service] WARN: failed to write audit log action=%s entity=%s: %v", action, entityID, err)
	}
}

func (s *Service) invalidateDetail(ctx context.Context, shiftID string) {
	if err := s.detailCache.Invalidate(ctx, detailCacheKey(shiftID)); err != nil {
		log.Printf("[service] WARN: shift detail cache invalidate failed shift=%s: %v", shiftID, err)
	}
}

func detailCacheKey(shiftID string) string {
	return "shift-detail:" + shiftID
}

func isSupportedPaymentMethod(method string) bool {
	switch method {
	case domain.PaymentMethodCash, domain.PaymentMethodCard, domain.PaymentMethodTransfer, domain.PaymentMethodQRIS:
		return true
	default:
		return false
	}
}
