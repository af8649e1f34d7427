package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/ariefcatur/go-hotel-booking/internal/booking"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type BookingHandler struct {
	Service *booking.Service
	Log     *zap.Logger
	Now     func() time.Time
}

type RoomsResp struct {
	MinDate string         `json:"minDate"`
	Rooms   []booking.Room `json:"rooms"`
}

type CreateReservationReq struct {
	SelectedDate string `json:"selectedDate"`
}

type CreateReservationResp struct {
	Reservation booking.Reservation `json:"reservation"`
	Message     string              `json:"message"`
}

type ReservationView struct {
	booking.Reservation
	ImageURL string `json:"imageUrl"`
}

type validationResp struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields"`
}

func (h *BookingHandler) Register(r *chi.Mux) {
	r.Get("/rooms", h.listRooms)
	r.Get("/rooms/{id}", h.getRoom)
	r.Post("/rooms/{id}/reservations", h.createReservation)
	r.Get("/reservations", h.listReservations)
	r.Delete("/reservations/{id}", h.cancelByRoom)
	r.Delete("/reservations/ref/{ref}", h.cancelByRef)

	r.Get("/logout", redirect("/login"))
	r.Get("/go/profile", redirect("/profile"))
	r.Get("/go/reservations", redirect("/reservations"))
}

func redirect(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}

func (h *BookingHandler) log() *zap.Logger {
	if h.Log == nil {
		return zap.NewNop()
	}
	return h.Log
}

func (h *BookingHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func requestCtx(r *http.Request, d time.Duration) (context.Context, context.CancelFunc) {
	ctx := booking.WithTraceID(r.Context(), middleware.GetReqID(r.Context()))
	return context.WithTimeout(ctx, d)
}

func roomIDParam(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *BookingHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RoomsResp{MinDate: booking.MinDate(h.now()), Rooms: booking.Rooms()})
}

func (h *BookingHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	room, ok := booking.FindRoom(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, room)
}

func (h *BookingHandler) createReservation(w http.ResponseWriter, r *http.Request) {
	id, ok := roomIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	// An empty body means no date was picked; Book reports that.
	var req CreateReservationReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := requestCtx(r, 5*time.Second)
	defer cancel()

	res, msg, err := h.Service.BookRoomID(ctx, id, req.SelectedDate)
	if inputErr := booking.IsInputError(err); inputErr != nil {
		writeJSON(w, http.StatusBadRequest, validationResp{Error: booking.MsgSelectDate, Fields: inputErr.Fields()})
		return
	}
	if errors.Is(err, booking.ErrRoomNotFound) {
		writeError(w, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		h.log().Error("create reservation", zap.Int("room_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusCreated, CreateReservationResp{Reservation: res, Message: msg})
}

func (h *BookingHandler) listReservations(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r, 3*time.Second)
	defer cancel()

	list, err := h.Service.List(ctx)
	if err != nil {
		h.log().Error("list reservations", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, views(list))
}

func (h *BookingHandler) cancelByRoom(w http.ResponseWriter, r *http.Request) {
	id, ok := roomIDParam(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	ctx, cancel := requestCtx(r, 5*time.Second)
	defer cancel()

	kept, err := h.Service.Cancel(ctx, id)
	if err != nil {
		h.log().Error("cancel reservations", zap.Int("room_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, views(kept))
}

func (h *BookingHandler) cancelByRef(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r, 5*time.Second)
	defer cancel()

	kept, err := h.Service.CancelRef(ctx, chi.URLParam(r, "ref"))
	if inputErr := booking.IsInputError(err); inputErr != nil {
		writeJSON(w, http.StatusBadRequest, validationResp{Error: "invalid ref", Fields: inputErr.Fields()})
		return
	}
	if err != nil {
		h.log().Error("cancel reservation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}
	writeJSON(w, http.StatusOK, views(kept))
}

func views(list []booking.Reservation) []ReservationView {
	out := make([]ReservationView, 0, len(list))
	for _, r := range list {
		out = append(out, ReservationView{Reservation: r, ImageURL: booking.ImageFor(r.ID)})
	}
	return out
}
