package app

import (
	"github.com/rs/zerolog/log"

	"hotel_booking/internal/adapters/observability"
	"hotel_booking/internal/domain"
)

type Step int

const (
	StepSelectHotel   Step = 1
	StepSelectPayment Step = 2
	StepConfirmed     Step = 3
)

// BookingState is one of SelectingHotel, SelectingPayment or Confirmed.
type BookingState interface {
	Step() Step
	bookingState()
}

type SelectingHotel struct{}

type SelectingPayment struct {
	Hotel domain.Hotel
}

// Confirmed is terminal.
type Confirmed struct {
	Hotel         domain.Hotel
	PaymentMethod domain.PaymentMethod
}

func (SelectingHotel) Step() Step   { return StepSelectHotel }
func (SelectingPayment) Step() Step { return StepSelectPayment }
func (Confirmed) Step() Step        { return StepConfirmed }

func (SelectingHotel) bookingState()   {}
func (SelectingPayment) bookingState() {}
func (Confirmed) bookingState()        {}

func (SelectingHotel) SelectHotel(h domain.Hotel) SelectingPayment {
	return SelectingPayment{Hotel: h}
}

func (s SelectingPayment) SelectPaymentMethod(m domain.PaymentMethod) Confirmed {
	return Confirmed{Hotel: s.Hotel, PaymentMethod: m}
}

// BookingView is what a client may read from a booking flow.
type BookingView struct {
	Step          Step                  `json:"step"`
	Hotel         *domain.Hotel         `json:"hotel"`
	PaymentMethod *domain.PaymentMethod `json:"payment_method"`
}

// Booking drives one booking flow. A transition requested from a state that
// does not offer it leaves the state untouched and reports false, so stray
// or repeated client events are harmless.
type Booking struct {
	state BookingState
}

func NewBooking() *Booking { return &Booking{state: SelectingHotel{}} }

func (b *Booking) State() BookingState { return b.state }

func (b *Booking) SelectHotel(h domain.Hotel) bool {
	s, ok := b.state.(SelectingHotel)
	if !ok {
		return b.ignore("select_hotel")
	}
	b.state = s.SelectHotel(h)
	observability.ObserveBookingTransition("select_hotel", "applied")
	return true
}

func (b *Booking) SelectPaymentMethod(m domain.PaymentMethod) bool {
	s, ok := b.state.(SelectingPayment)
	if !ok {
		return b.ignore("select_payment")
	}
	b.state = s.SelectPaymentMethod(m)
	observability.ObserveBookingTransition("select_payment", "applied")
	return true
}

// Reset starts the flow over.
func (b *Booking) Reset() { b.state = SelectingHotel{} }

func (b *Booking) ignore(transition string) bool {
	observability.ObserveBookingTransition(transition, "ignored")
	log.Debug().
		Str("transition", transition).
		Int("step", int(b.state.Step())).
		Msg("booking transition ignored")
	return false
}

func (b *Booking) View() BookingView {
	v := BookingView{Step: b.state.Step()}
	switch s := b.state.(type) {
	case SelectingPayment:
		h := s.Hotel
		v.Hotel = &h
	case Confirmed:
		h, m := s.Hotel, s.PaymentMethod
		v.Hotel, v.PaymentMethod = &h, &m
	}
	return v
}
