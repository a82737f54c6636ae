package api

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ev-admin-backend/internal/booking"
	"ev-admin-backend/internal/model"
	"ev-admin-backend/internal/mw"
	"ev-admin-backend/internal/parse"
	"ev-admin-backend/internal/query"
)

// Per-service projection and live-search columns for booking listings.
type serviceColumns struct {
	list   []string
	search []string
}

var bookingColumns = map[string]serviceColumns{
	booking.PortableCharger.Key: {
		list:   []string{"id", "user_id", "user_name", "agent_id", "status", "slot_date", "slot_time", "address", "vehicle_no", "price", "created_at"},
		search: []string{"id", "user_name", "address", "vehicle_no"},
	},
	booking.PickupDrop.Key: {
		list:   []string{"id", "user_id", "user_name", "agent_id", "status", "slot_date", "slot_time", "pickup_address", "dropoff_address", "vehicle_no", "price", "created_at"},
		search: []string{"id", "user_name", "pickup_address", "vehicle_no"},
	},
}

var bookingSortAllow = []string{"id", "slot_date", "slot_time", "created_at", "status"}

func serviceFromPath(c *gin.Context) (booking.Service, bool) {
	svc, ok := booking.ServiceByKey(c.Param("service"))
	if !ok {
		respondValidation(c, "unknown service "+c.Param("service"))
	}
	return svc, ok
}

// ListBookings returns the active booking list for a service. PNR (payment
// failed) records are excluded here; they have their own view.
func (h *Handler) ListBookings(c *gin.Context) {
	h.listBookings(c, false)
}

// ListFailedBookings returns only PNR bookings.
func (h *Handler) ListFailedBookings(c *gin.Context) {
	h.listBookings(c, true)
}

func (h *Handler) listBookings(c *gin.Context, failedView bool) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	page, ok := pageNo(c)
	if !ok {
		respondValidation(c, "page_no is required")
		return
	}
	start, end, err := parse.DayRange(c.Query("start_date"), c.Query("end_date"), h.loc)
	if err != nil {
		respondValidation(c, err.Error())
		return
	}

	cols := bookingColumns[svc.Key]
	spec := query.Spec{
		Table:     svc.BookingTable,
		Columns:   cols.list,
		SortAllow: bookingSortAllow,
		Page:      page,
		PageSize:  query.DefaultPageSize,
		Sort: []query.SortKey{
			{Column: "slot_date", Desc: true},
			{Column: "slot_time"},
		},
	}

	if failedView {
		spec.Exact = append(spec.Exact, query.Exact{Field: "status", Op: "=", Value: booking.StatusPaymentFailed})
	} else {
		spec.Exact = append(spec.Exact, query.Exact{Field: "status", Op: "!=", Value: booking.StatusPaymentFailed})
		if st := c.Query("status"); st != "" {
			spec.Exact = append(spec.Exact, query.Exact{Field: "status", Op: "=", Value: st})
		}
	}
	if start != "" {
		spec.Exact = append(spec.Exact, query.Exact{Field: "slot_date", Op: ">=", Value: start})
	}
	if end != "" {
		spec.Exact = append(spec.Exact, query.Exact{Field: "slot_date", Op: "<=", Value: end})
	}
	if text := c.Query("search_text"); text != "" {
		for _, f := range cols.search {
			spec.Search = append(spec.Search, query.Search{Field: f, Text: text})
		}
	}
	if sortBy := c.Query("sort_by"); sortBy != "" {
		spec.Sort = []query.SortKey{{Column: sortBy, Desc: c.Query("sort_dir") == "desc"}}
	}

	res, err := h.store.List(c.Request.Context(), spec)
	if err != nil {
		if errors.Is(err, query.ErrBadSpec) {
			respondValidation(c, err.Error())
			return
		}
		h.logger.Printf("Error listing %s bookings: %v", svc.Key, err)
		respondServerError(c)
		return
	}

	respondList(c, res.Rows, res.TotalPages, res.Total)
}

// GetBooking returns one booking with its full transition history.
func (h *Handler) GetBooking(c *gin.Context) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	id := c.Param("booking_id")

	row := map[string]any{}
	err := h.store.DB().WithContext(c.Request.Context()).
		Table(svc.BookingTable).Where("id = ?", id).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondConflict(c, "booking not found")
			return
		}
		h.logger.Printf("Error loading %s booking %s: %v", svc.Key, id, err)
		respondServerError(c)
		return
	}

	var history []model.BookingHistory
	if err := h.store.DB().WithContext(c.Request.Context()).
		Table(svc.HistoryTable).Where("booking_id = ?", id).Order("id").Find(&history).Error; err != nil {
		h.logger.Printf("Error loading history for %s booking %s: %v", svc.Key, id, err)
		respondServerError(c)
		return
	}

	respondOK(c, "success", gin.H{"booking": row, "history": history})
}

type createBookingRequest struct {
	UserID         int64  `json:"user_id" binding:"required"`
	UserName       string `json:"user_name" binding:"required"`
	SlotDate       string `json:"slot_date" binding:"required"`
	SlotTime       string `json:"slot_time" binding:"required"`
	Address        string `json:"address"`
	PickupAddress  string `json:"pickup_address"`
	DropoffAddress string `json:"dropoff_address"`
	VehicleNo      string `json:"vehicle_no"`
	Failed         bool   `json:"failed"`
}

// CreateBooking registers a new booking for a service.
func (h *Handler) CreateBooking(c *gin.Context) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}
	if _, err := parse.Day(req.SlotDate, h.loc); err != nil {
		respondValidation(c, err.Error())
		return
	}

	extra := map[string]any{"vehicle_no": req.VehicleNo}
	switch svc.Key {
	case booking.PortableCharger.Key:
		extra["address"] = req.Address
	case booking.PickupDrop.Key:
		extra["pickup_address"] = req.PickupAddress
		extra["dropoff_address"] = req.DropoffAddress
	}

	id, err := h.orch.Create(c.Request.Context(), svc, booking.CreateRequest{
		UserID:   req.UserID,
		UserName: req.UserName,
		SlotDate: req.SlotDate,
		SlotTime: req.SlotTime,
		Extra:    extra,
		Failed:   req.Failed,
	})
	if err != nil {
		if errors.Is(err, booking.ErrValidation) {
			respondValidation(c, err.Error())
			return
		}
		h.logger.Printf("Error creating %s booking: %v", svc.Key, err)
		respondServerError(c)
		return
	}

	respondOK(c, "booking created", gin.H{"booking_id": id})
}

type assignRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	AgentID   string `json:"agent_id" binding:"required"`
}

// AssignBooking hands a booking to an agent.
func (h *Handler) AssignBooking(c *gin.Context) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}

	err := h.orch.Assign(c.Request.Context(), svc, req.BookingID, req.AgentID)
	var conflict *booking.AlreadyAssignedError
	switch {
	case err == nil:
		respondOK(c, "booking assigned", nil)
	case errors.As(err, &conflict):
		respondConflict(c, conflict.Error())
	case errors.Is(err, booking.ErrBookingNotFound):
		respondConflict(c, "booking not found")
	case errors.Is(err, booking.ErrAgentNotFound):
		respondConflict(c, "agent not found")
	case errors.Is(err, booking.ErrStaleBooking):
		respondConflict(c, err.Error())
	default:
		h.logger.Printf("Error assigning %s booking %s to %s (actor %s): %v",
			svc.Key, req.BookingID, req.AgentID, mw.Actor(c), err)
		respondServerError(c)
	}
}

type cancelRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	UserID    int64  `json:"user_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

// CancelBooking cancels a non-terminal booking on behalf of its requester.
func (h *Handler) CancelBooking(c *gin.Context) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}

	err := h.orch.Cancel(c.Request.Context(), svc, req.BookingID, req.UserID, req.Reason)
	switch {
	case err == nil:
		respondOK(c, "booking cancelled", nil)
	case errors.Is(err, booking.ErrBookingNotFound):
		respondConflict(c, "booking not found")
	case errors.Is(err, booking.ErrStaleBooking):
		respondConflict(c, err.Error())
	default:
		h.logger.Printf("Error cancelling %s booking %s (actor %s): %v",
			svc.Key, req.BookingID, mw.Actor(c), err)
		respondServerError(c)
	}
}

type transitionRequest struct {
	BookingID string `json:"booking_id" binding:"required"`
	Status    string `json:"status" binding:"required"`
	Note      string `json:"note"`
}

// TransitionBooking moves a booking along its progress states.
func (h *Handler) TransitionBooking(c *gin.Context) {
	svc, ok := serviceFromPath(c)
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err.Error())
		return
	}

	err := h.orch.Transition(c.Request.Context(), svc, req.BookingID, req.Status, mw.Actor(c), req.Note)
	var invalid *booking.InvalidTransitionError
	switch {
	case err == nil:
		respondOK(c, "status updated", nil)
	case errors.Is(err, booking.ErrBookingNotFound):
		respondConflict(c, "booking not found")
	case errors.As(err, &invalid):
		respondConflict(c, invalid.Error())
	case errors.Is(err, booking.ErrStaleBooking):
		respondConflict(c, err.Error())
	default:
		h.logger.Printf("Error transitioning %s booking %s to %s: %v", svc.Key, req.BookingID, req.Status, err)
		respondServerError(c)
	}
}
