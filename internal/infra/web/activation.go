package web

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/infra/i18n"
	"sim-activation-portal/internal/infra/logging"
	"sim-activation-portal/internal/usecase"
)

//go:embed templates/*.html
var templateFS embed.FS

var activationTmpl = template.Must(template.New("activation.html").Funcs(template.FuncMap{
	"price":    func(o *model.SubscriptionOffer) string { return o.PriceExclTax.StringFixed(2) },
	"priceTTC": func(o *model.SubscriptionOffer) string { return o.PriceInclTax.StringFixed(2) },
	"fee": func(o *model.SubscriptionOffer) string {
		if o.ActivationFee.IsZero() {
			return ""
		}
		return o.ActivationFee.StringFixed(2)
	},
}).ParseFS(templateFS, "templates/activation.html"))

type activationView struct {
	*usecase.ActivationPage
	T *i18n.Translator
}

func activationRequestFrom(r *http.Request) usecase.ActivationRequest {
	q := r.URL.Query()
	canceled, _ := strconv.ParseBool(q.Get("canceled"))
	return usecase.ActivationRequest{
		Sim:         q.Get("sim"),
		SubID:       q.Get("subId"),
		CallbackURL: q.Get("callbackUrl"),
		Canceled:    canceled,
	}
}

func sessionUserID(r *http.Request) string {
	if s := sessionFrom(r.Context()); s != nil {
		return s.UserID
	}
	return ""
}

func (s *Server) handleActivationPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.activation.Resolve(r.Context(), activationRequestFrom(r), sessionUserID(r))
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("activation resolve failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if page.Redirect != "" {
		http.Redirect(w, r, page.Redirect, http.StatusSeeOther)
		return
	}

	view := activationView{
		ActivationPage: page,
		T:              s.locales.For(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language")),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Language", view.T.Lang())
	w.WriteHeader(http.StatusOK)
	if err := activationTmpl.Execute(w, view); err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("render activation page")
	}
}

func (s *Server) handleActivationJSON(w http.ResponseWriter, r *http.Request) {
	page, err := s.activation.Resolve(r.Context(), activationRequestFrom(r), sessionUserID(r))
	if err != nil {
		logging.With(r.Context(), s.log).Error().Err(err).Msg("activation resolve failed")
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, page)
}
