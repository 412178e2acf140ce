package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// MockProof is shaped like a proof but carries no verifiable meaning
type MockProof struct {
	ProofData     [8]uint64 `json:"proof_data"`
	PublicSignals []string  `json:"public_signals"`
}

// EmailProof represents a stored proof keyed by its email hash
type EmailProof struct {
	EmailHash     string        `json:"email_hash"`
	Proof         MockProof     `json:"proof"`
	ExtractedData ExtractedData `json:"extracted_data"`
	CreatedAt     time.Time     `json:"created_at"`
}

// DataType discriminates the variants of ExtractedData
type DataType string

const (
	DataReservation  DataType = "reservation"
	DataCancellation DataType = "cancellation"
	DataBooking      DataType = "booking"
)

// ReservationData is extracted from a LIST command
type ReservationData struct {
	Platform        string `json:"platform"`
	ReservationID   string `json:"reservation_id"`
	RestaurantName  string `json:"restaurant_name"`
	ReservationTime uint64 `json:"reservation_time"`
	PartySize       uint8  `json:"party_size"`
}

// CancellationData is extracted from a CANCEL command
type CancellationData struct {
	OriginalReservationID string `json:"original_reservation_id"`
	CancellationTime      uint64 `json:"cancellation_time"`
	RestaurantName        string `json:"restaurant_name"`
}

// BookingData is extracted from a CLAIM command
type BookingData struct {
	NewReservationID string `json:"new_reservation_id"`
	BookingTime      uint64 `json:"booking_time"`
	RestaurantName   string `json:"restaurant_name"`
}

// ExtractedData holds exactly one variant, selected by Type. Build it with
// NewReservation, NewCancellation or NewBooking.
//
// On the wire the variant's fields are flattened next to a "type" tag:
//
//	{"type":"reservation","platform":"resy",...}
type ExtractedData struct {
	Type         DataType
	Reservation  *ReservationData
	Cancellation *CancellationData
	Booking      *BookingData
}

func NewReservation(d ReservationData) ExtractedData {
	return ExtractedData{Type: DataReservation, Reservation: &d}
}

func NewCancellation(d CancellationData) ExtractedData {
	return ExtractedData{Type: DataCancellation, Cancellation: &d}
}

func NewBooking(d BookingData) ExtractedData {
	return ExtractedData{Type: DataBooking, Booking: &d}
}

// RestaurantName returns the restaurant of whichever variant is set
func (d ExtractedData) RestaurantName() string {
	switch d.Type {
	case DataReservation:
		return d.Reservation.RestaurantName
	case DataCancellation:
		return d.Cancellation.RestaurantName
	case DataBooking:
		return d.Booking.RestaurantName
	}
	return ""
}

func (d ExtractedData) MarshalJSON() ([]byte, error) {
	switch {
	case d.Type == DataReservation && d.Reservation != nil:
		return json.Marshal(struct {
			Type DataType `json:"type"`
			*ReservationData
		}{d.Type, d.Reservation})
	case d.Type == DataCancellation && d.Cancellation != nil:
		return json.Marshal(struct {
			Type DataType `json:"type"`
			*CancellationData
		}{d.Type, d.Cancellation})
	case d.Type == DataBooking && d.Booking != nil:
		return json.Marshal(struct {
			Type DataType `json:"type"`
			*BookingData
		}{d.Type, d.Booking})
	}
	return nil, fmt.Errorf("extracted data: no payload for type %q", d.Type)
}

func (d *ExtractedData) UnmarshalJSON(b []byte) error {
	var tag struct {
		Type DataType `json:"type"`
	}
	if err := json.Unmarshal(b, &tag); err != nil {
		return err
	}

	out := ExtractedData{Type: tag.Type}
	switch tag.Type {
	case DataReservation:
		out.Reservation = &ReservationData{}
		if err := json.Unmarshal(b, out.Reservation); err != nil {
			return err
		}
	case DataCancellation:
		out.Cancellation = &CancellationData{}
		if err := json.Unmarshal(b, out.Cancellation); err != nil {
			return err
		}
	case DataBooking:
		out.Booking = &BookingData{}
		if err := json.Unmarshal(b, out.Booking); err != nil {
			return err
		}
	default:
		return fmt.Errorf("extracted data: unknown type %q", tag.Type)
	}
	*d = out
	return nil
}
