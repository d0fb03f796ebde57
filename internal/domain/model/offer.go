package model

import (
	"strings"
	"time"

	"sim-activation-portal/internal/domain"

	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

// Recurrence is the billing period of a subscription offer.
type Recurrence string

const (
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceYearly  Recurrence = "yearly"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// VATRate is applied to the tax-exclusive price to derive the displayed price.
var VATRate = decimal.RequireFromString("1.2")

// SubscriptionOffer is a SIM data subscription sold through the catalog.
type SubscriptionOffer struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	ProductSpecs  string          `json:"productSpecs"`
	PriceExclTax  decimal.Decimal `json:"priceHT"`
	PriceInclTax  decimal.Decimal `json:"priceTTC"`
	ActivationFee decimal.Decimal `json:"fraisActivation"`
	Recurrence    Recurrence      `json:"recurrence"`
	DataCapGB     int             `json:"dataCap"`
	IsFeatured    bool            `json:"isFeatured"`
	IsArchived    bool            `json:"isArchived"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// OfferInput carries the editable fields of an offer.
type OfferInput struct {
	Name          string
	Description   string
	ProductSpecs  string
	PriceExclTax  decimal.Decimal
	ActivationFee decimal.Decimal
	Recurrence    Recurrence
	DataCapGB     int
	IsFeatured    bool
	IsArchived    bool
}

func (in OfferInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return domain.ErrInvalidArgument
	}
	if !in.PriceExclTax.IsPositive() {
		return domain.ErrInvalidArgument
	}
	if !in.Recurrence.Valid() {
		return domain.ErrInvalidArgument
	}
	if in.DataCapGB <= 0 {
		return domain.ErrInvalidArgument
	}
	if in.ActivationFee.IsNegative() {
		return domain.ErrInvalidArgument
	}
	return nil
}

// NewSubscriptionOffer validates the input and builds an offer with a fresh ULID.
func NewSubscriptionOffer(in OfferInput) (*SubscriptionOffer, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	o := &SubscriptionOffer{
		ID:        ulid.Make().String(),
		CreatedAt: now,
	}
	o.apply(in, now)
	return o, nil
}

// Apply overwrites the editable fields after validation. The tax-inclusive
// price is always recomputed.
func (o *SubscriptionOffer) Apply(in OfferInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	o.apply(in, time.Now().UTC())
	return nil
}

func (o *SubscriptionOffer) apply(in OfferInput, now time.Time) {
	o.Name = strings.TrimSpace(in.Name)
	o.Description = in.Description
	o.ProductSpecs = in.ProductSpecs
	o.PriceExclTax = in.PriceExclTax
	o.PriceInclTax = in.PriceExclTax.Mul(VATRate).Round(2)
	o.ActivationFee = in.ActivationFee
	o.Recurrence = in.Recurrence
	o.DataCapGB = in.DataCapGB
	o.IsFeatured = in.IsFeatured
	o.IsArchived = in.IsArchived
	o.UpdatedAt = now
}
