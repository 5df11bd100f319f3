package model

import "time"

// Maximum lengths enforced at the request layer, mirroring the column sizes.
const (
	MaxNameLen = 140
	MaxTypeLen = 140
)

// Beer represents a single catalogued beer. Name is the lookup identity
// (unique, case-insensitive); ID is a surrogate key assigned by the store.
type Beer struct {
	ID    int64     `json:"id"`
	Name  string    `json:"name"`
	Type  string    `json:"type"`
	IBU   *float64  `json:"ibu"`
	Value *float64  `json:"value"`
	Note  float64   `json:"note"`
	Date  time.Time `json:"date"`
}

// New builds a Beer with the given fields. A zero date is replaced with the
// current time, so two beers built without explicit dates may end up with
// identical timestamps.
func New(name, beerType string, ibu, value *float64, note float64, date time.Time) *Beer {
	if date.IsZero() {
		date = time.Now()
	}
	return &Beer{
		Name:  name,
		Type:  beerType,
		IBU:   ibu,
		Value: value,
		Note:  note,
		Date:  date,
	}
}
