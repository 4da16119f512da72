package domain

type BookingID string
type BookingStatus string

const (
	BookingConfirmed BookingStatus = "Confirmed"
	BookingPending   BookingStatus = "Pending"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingConfirmed, BookingPending:
		return true
	default:
		return false
	}
}

// Toggle flips Confirmed to Pending and anything else to Confirmed.
func (s BookingStatus) Toggle() BookingStatus {
	if s == BookingConfirmed {
		return BookingPending
	}
	return BookingConfirmed
}

type Booking struct {
	ID     BookingID
	Course Course
	Status BookingStatus
}

func FindBooking(bookings []Booking, id BookingID) (Booking, bool) {
	for _, booking := range bookings {
		if booking.ID == id {
			return booking, true
		}
	}
	return Booking{}, false
}
