package model

// ReservationType selects which ExtractedData variant a test proof carries
type ReservationType string

const (
	ReservationConfirmation ReservationType = "confirmation"
	ReservationCancellation ReservationType = "cancellation"
	ReservationNewBooking   ReservationType = "newbooking"
)

// TestProofRequest describes a proof to seed directly into the proof store
type TestProofRequest struct {
	Platform        string          `json:"platform" binding:"required"`
	RestaurantName  string          `json:"restaurant_name" binding:"required"`
	PartySize       *uint8          `json:"party_size"`
	ReservationType ReservationType `json:"reservation_type" binding:"required,oneof=confirmation cancellation newbooking"`
}
