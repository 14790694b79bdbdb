package pricing

import "github.com/bookyourstay/stay-api/internal/domain/listing"

// Fixed fees per stay, in pesos.
const (
	HouseCleaningFee     int64 = 50_000
	HouseDeposit         int64 = 150_000
	HousePoolSurcharge   int64 = 30_000
	HouseEventsInsurance int64 = 70_000

	ApartmentMaintenanceFee int64 = 30_000
	ApartmentDeposit        int64 = 100_000
)

// Fee is one fixed charge added once per stay.
type Fee struct {
	Code   string `json:"code"`
	Amount int64  `json:"amount"`
}

// feeSchedule returns the fixed fees of a listing's subtype.
func feeSchedule(l *listing.Listing) ([]Fee, error) {
	switch l.Subtype {
	case listing.SubtypeHouse:
		fees := []Fee{
			{Code: "cleaning", Amount: HouseCleaningFee},
			{Code: "deposit", Amount: HouseDeposit},
		}
		if l.HasPool {
			fees = append(fees, Fee{Code: "pool", Amount: HousePoolSurcharge})
		}
		if l.AllowsEvents {
			fees = append(fees, Fee{Code: "events_insurance", Amount: HouseEventsInsurance})
		}
		return fees, nil
	case listing.SubtypeApartment:
		return []Fee{
			{Code: "maintenance", Amount: ApartmentMaintenanceFee},
			{Code: "deposit", Amount: ApartmentDeposit},
		}, nil
	case listing.SubtypeHotel:
		return []Fee{}, nil
	default:
		return nil, ErrUnknownSubtype.Withf("no fee schedule for subtype %q", l.Subtype)
	}
}
