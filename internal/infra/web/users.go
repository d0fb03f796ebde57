package web

import (
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"

	"github.com/go-chi/chi/v5"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/user_profile.json
var profileSchemaJSON string

var profileSchema = jsonschema.MustCompileString("user_profile.json", profileSchemaJSON)

type meResponse struct {
	*model.User
	NeedsOnboarding bool `json:"needsOnboarding"`
}

// profileBody mirrors PATCH /api/users/me. Nil fields are left untouched.
type profileBody struct {
	Name        *string        `json:"name"`
	Surname     *string        `json:"surname"`
	Phone       *string        `json:"phone"`
	Address     *model.Address `json:"adresse"`
	VATNumber   *string        `json:"tva"`
	CompanyName *string        `json:"raisonSocial"`
	IsPro       *bool          `json:"isPro"`
}

func (b profileBody) input() model.ProfileInput {
	return model.ProfileInput{
		Name:        b.Name,
		Surname:     b.Surname,
		Phone:       b.Phone,
		Address:     b.Address,
		VATNumber:   b.VATNumber,
		CompanyName: b.CompanyName,
		IsPro:       b.IsPro,
	}
}

// requireSession answers 401 and returns nil when the caller is anonymous.
func requireSession(w http.ResponseWriter, r *http.Request) *Session {
	sess := sessionFrom(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return sess
}

// handleUserMe returns the caller's account and whether the billing
// onboarding gate applies to them.
func (s *Server) handleUserMe(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}
	u, err := s.users.Get(r.Context(), sess.UserID)
	if err != nil {
		s.fail(w, r, "me", err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: u, NeedsOnboarding: u.BillingState().NeedsOnboarding()})
}

func (s *Server) handleUserUpdateMe(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}
	raw, err := validateBody(r, profileSchema, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	var body profileBody
	if err := json.Unmarshal(raw, &body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), sess.UserID, body.input())
	if err != nil {
		s.fail(w, r, "update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: u, NeedsOnboarding: u.BillingState().NeedsOnboarding()})
}

// handleUserDeleteMe removes the caller's account and drops the session cookie.
func (s *Server) handleUserDeleteMe(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}
	if err := s.users.Delete(r.Context(), sess.UserID); err != nil {
		s.fail(w, r, "delete account", err)
		return
	}
	s.auth.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// handleSessionRefresh re-issues the session cookie with a fresh expiry and
// the role currently stored for the user.
func (s *Server) handleSessionRefresh(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}
	u, err := s.users.Get(r.Context(), sess.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.auth.Clear(w)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.fail(w, r, "refresh session", err)
		return
	}
	tok, err := s.auth.Mint(w, u.ID, u.Role)
	if err != nil {
		s.fail(w, r, "refresh session", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": tok})
}

func (s *Server) handleUserBilling(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CustomerID string `json:"customerId"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, domain.ErrInvalidArgument.Error())
		return
	}
	if err := s.users.SetBillingCustomer(r.Context(), chi.URLParam(r, "id"), body.CustomerID); err != nil {
		s.fail(w, r, "billing", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
