package web

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/infra/logging"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 64 << 10

//go:embed schema/offer.json
var offerSchemaJSON string

// Create requires the fields below on top of the shared schema; PATCH
// bodies only have to match the shared schema.
var (
	offerSchema  = jsonschema.MustCompileString("offer.json", offerSchemaJSON)
	offerCreate  = []string{"name", "priceHT", "recurrence"}
	errEmptyBody = errors.New("empty body")
)

// offerBody mirrors the JSON accepted by POST and PATCH. Nil fields are left
// untouched on PATCH.
type offerBody struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	ProductSpecs  *string          `json:"productSpecs"`
	PriceExclTax  *decimal.Decimal `json:"priceHT"`
	ActivationFee *decimal.Decimal `json:"fraisActivation"`
	Recurrence    *string          `json:"recurrence"`
	DataCapGB     *int             `json:"dataCap"`
	IsFeatured    *bool            `json:"isFeatured"`
	IsArchived    *bool            `json:"isArchived"`
}

func (b offerBody) overlay(in model.OfferInput) model.OfferInput {
	if b.Name != nil {
		in.Name = *b.Name
	}
	if b.Description != nil {
		in.Description = *b.Description
	}
	if b.ProductSpecs != nil {
		in.ProductSpecs = *b.ProductSpecs
	}
	if b.PriceExclTax != nil {
		in.PriceExclTax = *b.PriceExclTax
	}
	if b.ActivationFee != nil {
		in.ActivationFee = *b.ActivationFee
	}
	if b.Recurrence != nil {
		in.Recurrence = model.Recurrence(*b.Recurrence)
	}
	if b.DataCapGB != nil {
		in.DataCapGB = *b.DataCapGB
	}
	if b.IsFeatured != nil {
		in.IsFeatured = *b.IsFeatured
	}
	if b.IsArchived != nil {
		in.IsArchived = *b.IsArchived
	}
	return in
}

// validateBody reads the request body and checks it against schema.
// required lists the top-level properties that must be present.
func validateBody(r *http.Request, schema *jsonschema.Schema, required []string) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, errEmptyBody
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, err
	}
	obj, _ := doc.(map[string]any)
	for _, k := range required {
		if _, ok := obj[k]; !ok {
			return nil, errors.New("missing property " + k)
		}
	}
	return raw, nil
}

func decodeOfferBody(r *http.Request, required []string) (offerBody, error) {
	var body offerBody
	raw, err := validateBody(r, offerSchema, required)
	if err != nil {
		return body, err
	}
	err = json.Unmarshal(raw, &body)
	return body, err
}

func inputFrom(o *model.SubscriptionOffer) model.OfferInput {
	return model.OfferInput{
		Name:          o.Name,
		Description:   o.Description,
		ProductSpecs:  o.ProductSpecs,
		PriceExclTax:  o.PriceExclTax,
		ActivationFee: o.ActivationFee,
		Recurrence:    o.Recurrence,
		DataCapGB:     o.DataCapGB,
		IsFeatured:    o.IsFeatured,
		IsArchived:    o.IsArchived,
	}
}

// statusFor maps domain errors to HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logging.With(r.Context(), s.log).Error().Err(err).Str("op", op).Msg("offer api failed")
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

// handleOfferList filters on featured offers whenever isFeatured carries a
// value, whatever that value is.
func (s *Server) handleOfferList(w http.ResponseWriter, r *http.Request) {
	offers, err := s.offers.List(r.Context(), r.URL.Query().Get("isFeatured") != "")
	if err != nil {
		s.fail(w, r, "list", err)
		return
	}
	writeJSON(w, http.StatusOK, offers)
}

func (s *Server) handleOfferGet(w http.ResponseWriter, r *http.Request) {
	o, err := s.offers.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOfferCreate(w http.ResponseWriter, r *http.Request) {
	body, err := decodeOfferBody(r, offerCreate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	o, err := s.offers.Create(r.Context(), body.overlay(model.OfferInput{}))
	if err != nil {
		s.fail(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) handleOfferUpdate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	body, err := decodeOfferBody(r, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	current, err := s.offers.Get(r.Context(), id)
	if err != nil {
		s.fail(w, r, "update", err)
		return
	}
	o, err := s.offers.Update(r.Context(), id, body.overlay(inputFrom(current)))
	if err != nil {
		s.fail(w, r, "update", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) handleOfferDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.offers.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
