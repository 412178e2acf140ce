package pipeline

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"mock-relayer-go/internal/model"
)

// GenerateTestProof builds a proof straight from req, bypassing intake and
// the asynchronous task, and stores it before returning.
func (p *Pipeline) GenerateTestProof(req model.TestProofRequest) (model.EmailProof, error) {
	now := p.now()

	var data model.ExtractedData
	switch req.ReservationType {
	case model.ReservationConfirmation:
		partySize := uint8(defaultParty)
		if req.PartySize != nil {
			partySize = *req.PartySize
		}
		data = model.NewReservation(model.ReservationData{
			Platform:        req.Platform,
			ReservationID:   synthesizeID(testIDPrefix),
			RestaurantName:  req.RestaurantName,
			ReservationTime: uint64(now.Add(reservationLead).Unix()),
			PartySize:       partySize,
		})
	case model.ReservationCancellation:
		data = model.NewCancellation(model.CancellationData{
			OriginalReservationID: synthesizeID(testIDPrefix),
			CancellationTime:      uint64(now.Unix()),
			RestaurantName:        req.RestaurantName,
		})
	case model.ReservationNewBooking:
		data = model.NewBooking(model.BookingData{
			NewReservationID: synthesizeID(testIDPrefix),
			BookingTime:      uint64(now.Unix()),
			RestaurantName:   req.RestaurantName,
		})
	default:
		return model.EmailProof{}, fmt.Errorf("unsupported reservation type %q", req.ReservationType)
	}

	emailProof := model.EmailProof{
		EmailHash:     TestProofHash(req.Platform, req.RestaurantName),
		Proof:         p.generator.Generate(),
		ExtractedData: data,
		CreatedAt:     now,
	}
	p.proofs.Put(emailProof)
	p.metrics.TestProofsGenerated.Inc()

	logrus.WithFields(logrus.Fields{
		"platform":   req.Platform,
		"restaurant": req.RestaurantName,
		"email_hash": emailProof.EmailHash,
	}).Info("Generated test proof")

	return emailProof, nil
}
