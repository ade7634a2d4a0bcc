// internal/adapters/http_server/handlers.go
package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/app"
	"hotel_booking/internal/domain"
)

type Handlers struct {
	Sessions *app.Sessions
	Visits   domain.VisitRepository
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })

	s.mux.Post("/v1/visits", h.recordVisit)
	s.mux.Post("/v1/sessions", h.openSession)
	s.mux.Route("/v1/sessions/{sid}", func(r chi.Router) {
		r.Delete("/", h.closeSession)

		r.Get("/catalog", h.getCatalog)
		r.Post("/catalog/reload", h.reloadCatalog)
		r.Put("/catalog/filters/{bed}", h.setFilter)
		r.Put("/catalog/sort", h.setSort)
		r.Get("/catalog/chart", h.getChart)

		r.Get("/booking", h.getBooking)
		r.Post("/booking/hotel", h.selectHotel)
		r.Post("/booking/payment", h.selectPayment)
		r.Post("/booking/reset", h.resetBooking)

		r.Get("/ratings", h.getRatings)
		r.Post("/ratings/more", h.loadMoreRatings)
		r.Put("/ratings/{visitID}", h.rateVisit)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, domain.ErrUnknownSortField),
		errors.Is(err, domain.ErrUnknownFilterKey),
		errors.Is(err, domain.ErrUnknownPaymentMethod),
		errors.Is(err, domain.ErrInvalidRating):
		writeProblem(w, http.StatusBadRequest, "Invalid Request", err.Error())
	case errors.Is(err, domain.ErrFetchFailed):
		writeProblem(w, http.StatusBadGateway, "Upstream Fetch Failed", err.Error())
	default:
		log.Error().Err(err).Msg("request failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("write JSON response failed")
	}
}

// writeCached honours If-None-Match for read endpoints.
func writeCached(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "response could not be encoded")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("failed to write body")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 64<<10)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", err.Error())
		return false
	}
	return true
}

func (h *Handlers) session(w http.ResponseWriter, r *http.Request) (*app.Session, bool) {
	s, ok := h.Sessions.Get(chi.URLParam(r, "sid"))
	if !ok {
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
	}
	return s, ok
}

// withSession resolves {sid} and runs fn under the session lock.
func (h *Handlers) withSession(w http.ResponseWriter, r *http.Request, fn func(s *app.Session) error) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := s.Do(fn); err != nil {
		writeError(w, err)
	}
}

// fetchThen runs a fetch without the session lock, then renders under it.
func (h *Handlers) fetchThen(w http.ResponseWriter, r *http.Request, fetch func(s *app.Session) error, render func(s *app.Session) any) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := fetch(s); err != nil {
		writeError(w, err)
		return
	}
	var v any
	_ = s.Do(func(s *app.Session) error {
		v = render(s)
		return nil
	})
	writeJSON(w, http.StatusOK, v)
}

// ---- sessions ----

type sessionResponse struct {
	ID      string          `json:"id"`
	Catalog app.CatalogView `json:"catalog"`
	Booking app.BookingView `json:"booking"`
}

func (h *Handlers) openSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Sessions.Open(r.Context())
	if err != nil {
		// the session stays usable; the client can retry via reload
		log.Warn().Err(err).Str("session", s.ID).Msg("initial catalog load failed")
	}
	var resp sessionResponse
	_ = s.Do(func(s *app.Session) error {
		resp = sessionResponse{ID: s.ID, Catalog: s.Catalog().View(), Booking: s.Booking().View()}
		return nil
	})
	w.Header().Set("Location", "/v1/sessions/"+s.ID)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *Handlers) closeSession(w http.ResponseWriter, r *http.Request) {
	if !h.Sessions.Close(chi.URLParam(r, "sid")) {
		writeProblem(w, http.StatusNotFound, "Not Found", "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ---- catalog ----

type catalogResponse struct {
	app.CatalogView
	ChartPreloaded bool `json:"chart_preloaded"`
}

func catalogOf(s *app.Session) catalogResponse {
	return catalogResponse{CatalogView: s.Catalog().View(), ChartPreloaded: s.ChartPreloaded()}
}

func (h *Handlers) getCatalog(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *app.Session) error {
		writeCached(w, r, catalogOf(s))
		return nil
	})
}

func (h *Handlers) reloadCatalog(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("fresh") == "true" {
		if err := h.Sessions.Invalidate(r.Context()); err != nil {
			log.Warn().Err(err).Msg("listing cache invalidation failed")
		}
	}
	h.fetchThen(w, r,
		func(s *app.Session) error { return s.LoadCatalog(r.Context()) },
		func(s *app.Session) any { return catalogOf(s) },
	)
}

func (h *Handlers) setFilter(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Active bool `json:"active"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	bed := domain.BedType(chi.URLParam(r, "bed"))
	h.withSession(w, r, func(s *app.Session) error {
		if err := s.Catalog().SetBedTypeFilter(bed, body.Active); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, catalogOf(s))
		return nil
	})
}

func (h *Handlers) setSort(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	field, err := app.ParseSortField(body.Field)
	if err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(s *app.Session) error {
		if err := s.Catalog().SetSortField(field); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, catalogOf(s))
		return nil
	})
}

func (h *Handlers) getChart(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *app.Session) error {
		writeCached(w, r, s.Catalog().ChartData())
		return nil
	})
}

// ---- booking ----

func (h *Handlers) getBooking(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *app.Session) error {
		writeJSON(w, http.StatusOK, s.Booking().View())
		return nil
	})
}

// transitionResponse carries the booking state after a transition request.
// Applied is false when the flow was not in the state that offers it.
type transitionResponse struct {
	app.BookingView
	Applied bool `json:"applied"`
}

func (h *Handlers) selectHotel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HotelID domain.ID `json:"hotel_id"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	h.withSession(w, r, func(s *app.Session) error {
		// past the first step the selection is ignored whatever the id
		if _, open := s.Booking().State().(app.SelectingHotel); !open {
			writeJSON(w, http.StatusOK, transitionResponse{BookingView: s.Booking().View(), Applied: false})
			return nil
		}
		hotel, ok := s.Catalog().Find(body.HotelID)
		if !ok {
			return fmt.Errorf("hotel %q: %w", body.HotelID, domain.ErrNotFound)
		}
		applied := s.Booking().SelectHotel(hotel)
		writeJSON(w, http.StatusOK, transitionResponse{BookingView: s.Booking().View(), Applied: applied})
		return nil
	})
}

func (h *Handlers) selectPayment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Method string `json:"method"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	method, err := domain.ParsePaymentMethod(body.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	h.withSession(w, r, func(s *app.Session) error {
		applied := s.Booking().SelectPaymentMethod(method)
		writeJSON(w, http.StatusOK, transitionResponse{BookingView: s.Booking().View(), Applied: applied})
		return nil
	})
}

func (h *Handlers) resetBooking(w http.ResponseWriter, r *http.Request) {
	h.withSession(w, r, func(s *app.Session) error {
		s.Booking().Reset()
		writeJSON(w, http.StatusOK, s.Booking().View())
		return nil
	})
}

// ---- ratings ----

func (h *Handlers) getRatings(w http.ResponseWriter, r *http.Request) {
	h.fetchThen(w, r,
		func(s *app.Session) error { return s.EnsureRatingsLoaded(r.Context()) },
		func(s *app.Session) any { return s.Ratings().View() },
	)
}

func (h *Handlers) loadMoreRatings(w http.ResponseWriter, r *http.Request) {
	h.fetchThen(w, r,
		func(s *app.Session) error { return s.LoadMoreRatings(r.Context()) },
		func(s *app.Session) any { return s.Ratings().View() },
	)
}

func (h *Handlers) rateVisit(w http.ResponseWriter, r *http.Request) {
	visitID, err := strconv.ParseInt(chi.URLParam(r, "visitID"), 10, 64)
	if err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "visit id must be a number")
		return
	}
	var body struct {
		Rating float64 `json:"rating"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	h.withSession(w, r, func(s *app.Session) error {
		if err := s.Ratings().Rate(r.Context(), visitID, body.Rating); err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, s.Ratings().View())
		return nil
	})
}

func (h *Handlers) recordVisit(w http.ResponseWriter, r *http.Request) {
	var body struct {
		HotelID domain.ID `json:"hotel_id"`
		Rating  float64   `json:"rating"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.HotelID == "" {
		writeProblem(w, http.StatusBadRequest, "Invalid Request", "hotel_id is required")
		return
	}
	if !domain.ValidRating(body.Rating) {
		writeError(w, domain.ErrInvalidRating)
		return
	}
	rh, err := h.Visits.RecordVisit(r.Context(), body.HotelID, body.Rating)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, rh)
}
