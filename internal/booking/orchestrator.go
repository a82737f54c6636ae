package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"ev-admin-backend/internal/model"
	"ev-admin-backend/internal/store"
)

const outboxTable = "outbox_events"

// Waker is poked after a committed write that queued outbox events, so
// delivery starts without waiting for the next sweep.
type Waker interface {
	Wake()
}

// Orchestrator sequences multi-table booking status transitions inside one
// transaction and queues notification side effects durably. It is the only
// component that mutates booking rows; history rows are insert-only.
type Orchestrator struct {
	db         *gorm.DB
	opsMailbox string
	waker      Waker
	logger     *log.Logger
}

// NewOrchestrator creates an orchestrator. waker may be nil; opsMailbox
// receives internal cancellation notices.
func NewOrchestrator(db *gorm.DB, opsMailbox string, waker Waker, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{db: db, opsMailbox: opsMailbox, waker: waker, logger: logger}
}

// bookingRow is the orchestrator's read view of any service's booking table.
type bookingRow struct {
	ID          string
	UserID      int64
	UserName    string
	AgentID     string
	Status      string
	LockVersion int64
}

// CreateRequest carries the fields shared by every service; Extra holds the
// service-specific columns (address, vehicle number, ...) written through the
// generic record writer.
type CreateRequest struct {
	UserID   int64
	UserName string
	SlotDate string // YYYY-MM-DD in the admin timezone
	SlotTime string
	Extra    map[string]any
	// Failed records the booking directly in the PNR terminal state
	// (payment/slot failure outside the normal flow).
	Failed bool
}

// Create inserts a new booking with a service-scoped human-readable id, writes
// the initial history row and queues the requester confirmation.
func (o *Orchestrator) Create(ctx context.Context, svc Service, req CreateRequest) (string, error) {
	if req.UserID <= 0 || req.SlotDate == "" || req.SlotTime == "" {
		return "", fmt.Errorf("%w: user, slot date and slot time are required", ErrValidation)
	}

	id := NewBookingID(svc)
	status := StatusConfirmed
	reason := "booking confirmed"
	if req.Failed {
		status = StatusPaymentFailed
		reason = "payment not received"
	}
	now := time.Now()

	user, err := o.lookupUser(ctx, req.UserID)
	if err != nil {
		return "", err
	}

	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := store.NewWriter(tx)

		cols := []string{"id", "user_id", "user_name", "agent_id", "status", "slot_date", "slot_time", "lock_version", "created_at", "updated_at"}
		vals := []any{id, req.UserID, req.UserName, "", status, req.SlotDate, req.SlotTime, int64(0), now, now}
		for col, val := range req.Extra {
			cols = append(cols, col)
			vals = append(vals, val)
		}
		if _, err := w.Insert(ctx, svc.BookingTable, cols, vals); err != nil {
			return err
		}

		if err := o.appendHistory(ctx, w, svc, id, status, actorUser(req.UserID), reason, now); err != nil {
			return err
		}

		if status == StatusConfirmed {
			heading := svc.Label + " Booking Confirmed"
			body := fmt.Sprintf("Your %s booking %s is confirmed for %s %s.", svc.Label, id, req.SlotDate, req.SlotTime)
			if err := o.queueEmail(ctx, w, user.Email, heading, body, svc.deepLink(id)); err != nil {
				return err
			}
			if err := o.queuePush(ctx, w, user.DeviceToken, heading, body, svc.deepLink(id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("create %s booking failed: %w", svc.Key, err)
	}

	o.wake()
	return id, nil
}

// Assign hands a booking to an agent. Re-assigning to the agent already
// holding the booking is rejected with a conflict naming that agent; assigning
// to a different agent displaces the prior assignment atomically.
func (o *Orchestrator) Assign(ctx context.Context, svc Service, bookingID, agentID string) error {
	row, err := o.readBooking(ctx, svc, bookingID)
	if err != nil {
		return err
	}
	if Terminal(row.Status) {
		o.logger.Printf("assign %s/%s rejected: booking is terminal (%s)", svc.Key, bookingID, row.Status)
		return ErrBookingNotFound
	}
	if row.AgentID == agentID {
		return &AlreadyAssignedError{AgentID: agentID}
	}

	var agent model.Agent
	if err := o.db.WithContext(ctx).Take(&agent, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAgentNotFound
		}
		return fmt.Errorf("agent lookup failed: %w", err)
	}

	user, err := o.lookupUser(ctx, row.UserID)
	if err != nil {
		return err
	}

	prior := row.AgentID
	newStatus := row.Status
	if row.Status == StatusConfirmed {
		newStatus = StatusAssigned
	}
	now := time.Now()

	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := store.NewWriter(tx)

		if prior != "" {
			if _, err := w.Delete(ctx, svc.AssignmentTable, []string{"booking_id"}, []any{bookingID}); err != nil {
				return err
			}
			if err := o.decrementRunningOrders(tx, prior, now); err != nil {
				return err
			}
		}

		if _, err := w.Insert(ctx, svc.AssignmentTable,
			[]string{"booking_id", "agent_id", "created_at"},
			[]any{bookingID, agentID, now}); err != nil {
			return err
		}

		set := map[string]any{
			"agent_id":     agentID,
			"status":       newStatus,
			"lock_version": row.LockVersion + 1,
			"updated_at":   now,
		}
		n, err := w.Update(ctx, svc.BookingTable, set,
			[]string{"id", "lock_version"}, []any{bookingID, row.LockVersion})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStaleBooking
		}

		if newStatus != row.Status {
			if err := o.appendHistory(ctx, w, svc, bookingID, newStatus, "admin", "assigned to "+agentID, now); err != nil {
				return err
			}
		}

		if err := tx.Exec("UPDATE agents SET running_orders = running_orders + 1, updated_at = ? WHERE id = ?", now, agentID).Error; err != nil {
			return fmt.Errorf("increment running orders for %s failed: %w", agentID, err)
		}

		link := svc.deepLink(bookingID)
		if err := o.queueEmail(ctx, w, user.Email, svc.Label+" Booking Assigned",
			fmt.Sprintf("Your booking %s was assigned to %s.", bookingID, agent.Name), link); err != nil {
			return err
		}
		if err := o.queuePush(ctx, w, agent.DeviceToken, "New Job Assigned",
			fmt.Sprintf("You have a new %s job: %s.", svc.Label, bookingID), link); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleBooking) {
			return ErrStaleBooking
		}
		return fmt.Errorf("assign %s/%s failed: %w", svc.Key, bookingID, err)
	}

	o.wake()
	return nil
}

// Cancel moves a non-terminal booking owned by requesterID to C. The booking
// row is kept; the history row records who cancelled and why. Absence, a
// terminal status and a wrong requester are all reported identically.
func (o *Orchestrator) Cancel(ctx context.Context, svc Service, bookingID string, requesterID int64, reason string) error {
	var row bookingRow
	err := o.db.WithContext(ctx).Table(svc.BookingTable).
		Where("id = ? AND user_id = ? AND status NOT IN ?", bookingID, requesterID, TerminalStatuses).
		Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			o.logCancelMiss(ctx, svc, bookingID, requesterID)
			return ErrBookingNotFound
		}
		return fmt.Errorf("cancel lookup for %s/%s failed: %w", svc.Key, bookingID, err)
	}

	user, err := o.lookupUser(ctx, requesterID)
	if err != nil {
		return err
	}

	var agent model.Agent
	if row.AgentID != "" {
		if err := o.db.WithContext(ctx).Take(&agent, "id = ?", row.AgentID).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("agent lookup failed: %w", err)
		}
	}

	now := time.Now()
	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := store.NewWriter(tx)

		if err := o.appendHistory(ctx, w, svc, bookingID, StatusCancelled, actorUser(requesterID), reason, now); err != nil {
			return err
		}

		set := map[string]any{
			"status":       StatusCancelled,
			"lock_version": row.LockVersion + 1,
			"updated_at":   now,
		}
		n, err := w.Update(ctx, svc.BookingTable, set,
			[]string{"id", "lock_version"}, []any{bookingID, row.LockVersion})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStaleBooking
		}

		if row.AgentID != "" {
			if _, err := w.Delete(ctx, svc.AssignmentTable, []string{"booking_id"}, []any{bookingID}); err != nil {
				return err
			}
			if err := o.decrementRunningOrders(tx, row.AgentID, now); err != nil {
				return err
			}
		}

		link := svc.deepLink(bookingID)
		if err := o.queueEmail(ctx, w, user.Email, svc.Label+" Booking Cancelled",
			fmt.Sprintf("Your booking %s has been cancelled.", bookingID), link); err != nil {
			return err
		}
		if row.AgentID != "" {
			if err := o.queuePush(ctx, w, agent.DeviceToken, "Job Cancelled",
				fmt.Sprintf("Booking %s was cancelled by the customer.", bookingID), link); err != nil {
				return err
			}
		}
		if err := o.queueEmail(ctx, w, o.opsMailbox, "Booking Cancelled: "+bookingID,
			fmt.Sprintf("%s booking %s cancelled by user %d. Reason: %s", svc.Label, bookingID, requesterID, reason), link); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleBooking) {
			return ErrStaleBooking
		}
		return fmt.Errorf("cancel %s/%s failed: %w", svc.Key, bookingID, err)
	}

	o.wake()
	return nil
}

// Transition moves a booking one step along the progress graph (A -> ER -> RL
// -> ...). Terminal states accept no transition. Completing a booking (CC/PU)
// releases the assigned agent.
func (o *Orchestrator) Transition(ctx context.Context, svc Service, bookingID, to, actor, note string) error {
	row, err := o.readBooking(ctx, svc, bookingID)
	if err != nil {
		return err
	}
	if Terminal(row.Status) || !canProgress(row.Status, to) {
		return &InvalidTransitionError{From: row.Status, To: to}
	}

	now := time.Now()
	err = o.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		w := store.NewWriter(tx)

		if err := o.appendHistory(ctx, w, svc, bookingID, to, actor, note, now); err != nil {
			return err
		}

		set := map[string]any{
			"status":       to,
			"lock_version": row.LockVersion + 1,
			"updated_at":   now,
		}
		n, err := w.Update(ctx, svc.BookingTable, set,
			[]string{"id", "lock_version"}, []any{bookingID, row.LockVersion})
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrStaleBooking
		}

		// Fulfilment frees the agent: drop the pending assignment and release
		// the running-order slot.
		if Terminal(to) && row.AgentID != "" {
			if _, err := w.Delete(ctx, svc.AssignmentTable, []string{"booking_id"}, []any{bookingID}); err != nil {
				return err
			}
			if err := o.decrementRunningOrders(tx, row.AgentID, now); err != nil {
				return err
			}
		}

		if Terminal(to) {
			user, err := o.lookupUser(ctx, row.UserID)
			if err != nil {
				return err
			}
			heading := svc.Label + " Completed"
			body := fmt.Sprintf("Your booking %s is complete.", bookingID)
			if err := o.queueEmail(ctx, w, user.Email, heading, body, svc.deepLink(bookingID)); err != nil {
				return err
			}
			if err := o.queuePush(ctx, w, user.DeviceToken, heading, body, svc.deepLink(bookingID)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrStaleBooking) {
			return ErrStaleBooking
		}
		return fmt.Errorf("transition %s/%s to %s failed: %w", svc.Key, bookingID, to, err)
	}

	o.wake()
	return nil
}

func (o *Orchestrator) readBooking(ctx context.Context, svc Service, bookingID string) (bookingRow, error) {
	var row bookingRow
	err := o.db.WithContext(ctx).Table(svc.BookingTable).Where("id = ?", bookingID).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return row, ErrBookingNotFound
		}
		return row, fmt.Errorf("booking lookup for %s/%s failed: %w", svc.Key, bookingID, err)
	}
	return row, nil
}

func (o *Orchestrator) lookupUser(ctx context.Context, userID int64) (model.User, error) {
	var user model.User
	err := o.db.WithContext(ctx).Take(&user, "id = ?", userID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return user, fmt.Errorf("user lookup failed: %w", err)
	}
	return user, nil
}

func (o *Orchestrator) appendHistory(ctx context.Context, w *store.Writer, svc Service, bookingID, status, actor, reason string, now time.Time) error {
	_, err := w.Insert(ctx, svc.HistoryTable,
		[]string{"booking_id", "status", "actor", "reason", "created_at"},
		[]any{bookingID, status, actor, reason, now})
	return err
}

// decrementRunningOrders releases one running-order slot, clamped at zero. A
// clamp hit means the counter and the assignment records disagree; that is
// logged as a consistency alert, not propagated. An execution error is
// returned so the enclosing transaction rolls back.
func (o *Orchestrator) decrementRunningOrders(tx *gorm.DB, agentID string, now time.Time) error {
	res := tx.Exec("UPDATE agents SET running_orders = running_orders - 1, updated_at = ? WHERE id = ? AND running_orders > 0", now, agentID)
	if res.Error != nil {
		return fmt.Errorf("decrement running orders for %s failed: %w", agentID, res.Error)
	}
	if res.RowsAffected == 0 {
		o.logger.Printf("CONSISTENCY ALERT: running-order counter for agent %s was already 0 on release", agentID)
	}
	return nil
}

func (o *Orchestrator) queueEmail(ctx context.Context, w *store.Writer, recipient, heading, body, deepLink string) error {
	if recipient == "" {
		return nil
	}
	_, err := w.Insert(ctx, outboxTable,
		[]string{"channel", "recipient", "device_token", "heading", "body", "deep_link", "sent", "attempts", "created_at"},
		[]any{model.OutboxChannelEmail, recipient, "", heading, body, deepLink, false, 0, time.Now()})
	return err
}

func (o *Orchestrator) queuePush(ctx context.Context, w *store.Writer, deviceToken, title, body, deepLink string) error {
	if deviceToken == "" {
		return nil
	}
	_, err := w.Insert(ctx, outboxTable,
		[]string{"channel", "recipient", "device_token", "heading", "body", "deep_link", "sent", "attempts", "created_at"},
		[]any{model.OutboxChannelPush, "", deviceToken, title, body, deepLink, false, 0, time.Now()})
	return err
}

// logCancelMiss records internally why a cancel matched nothing; the caller
// only ever sees "booking not found".
func (o *Orchestrator) logCancelMiss(ctx context.Context, svc Service, bookingID string, requesterID int64) {
	var row bookingRow
	err := o.db.WithContext(ctx).Table(svc.BookingTable).Where("id = ?", bookingID).Take(&row).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		o.logger.Printf("cancel %s/%s: no such booking", svc.Key, bookingID)
	case err != nil:
		o.logger.Printf("cancel %s/%s: lookup error: %v", svc.Key, bookingID, err)
	case Terminal(row.Status):
		o.logger.Printf("cancel %s/%s: booking already terminal (%s)", svc.Key, bookingID, row.Status)
	case row.UserID != requesterID:
		o.logger.Printf("cancel %s/%s: requester %d does not own booking (owner %d)", svc.Key, bookingID, requesterID, row.UserID)
	}
}

func (o *Orchestrator) wake() {
	if o.waker != nil {
		o.waker.Wake()
	}
}

func (s Service) deepLink(bookingID string) string {
	return s.DeepLinkPath + "/" + bookingID
}

func actorUser(id int64) string {
	return fmt.Sprintf("user:%d", id)
}

// NewBookingID generates a service-scoped human-readable booking id:
// the service prefix plus an uppercase suffix derived from a random UUID.
func NewBookingID(svc Service) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:10]
	return svc.IDPrefix + suffix
}
