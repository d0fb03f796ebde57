package usecase

import (
	"context"
	"errors"
	"net/url"

	"sim-activation-portal/internal/domain"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/domain/ports/repository"
	"sim-activation-portal/internal/infra/logging"
	"sim-activation-portal/internal/infra/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// ActivationPath is the public route of the activation page.
const ActivationPath = "/activation-sim"

// Compile-time check
var _ ActivationUseCase = (*activationUC)(nil)

// ActivationRequest holds the page parameters as received.
type ActivationRequest struct {
	Sim         string
	SubID       string
	CallbackURL string
	Canceled    bool
}

func (r ActivationRequest) query() url.Values {
	q := url.Values{}
	if r.Sim != "" {
		q.Set("sim", r.Sim)
	}
	if r.SubID != "" {
		q.Set("subId", r.SubID)
	}
	if r.CallbackURL != "" {
		q.Set("callbackUrl", r.CallbackURL)
	}
	return q
}

// ActivationPage is everything the activation page renders. When Redirect is
// set nothing else is populated.
type ActivationPage struct {
	Redirect        string                     `json:"redirect,omitempty"`
	Sim             string                     `json:"sim"`
	AvailableSim    bool                       `json:"availableSim"`
	Org             *model.Org                 `json:"org,omitempty"`
	Offers          []*model.SubscriptionOffer `json:"offers"`
	SelectedID      string                     `json:"selectedId,omitempty"`
	PaymentCanceled bool                       `json:"paymentCanceled,omitempty"`
	RetryURL        string                     `json:"retryUrl,omitempty"`
}

// ActivationUseCase matches a SIM against the catalog for the current user.
type ActivationUseCase interface {
	Resolve(ctx context.Context, req ActivationRequest, userID string) (*ActivationPage, error)
}

type activationUC struct {
	sims           SimUseCase
	offers         OfferUseCase
	users          repository.UserRepository
	onboardingPath string
	log            *zerolog.Logger
}

func NewActivationUseCase(sims SimUseCase, offers OfferUseCase, users repository.UserRepository, onboardingPath string, logger *zerolog.Logger) *activationUC {
	l := logger.With().Str("component", "ActivationUC").Logger()
	return &activationUC{
		sims:           sims,
		offers:         offers,
		users:          users,
		onboardingPath: onboardingPath,
		log:            &l,
	}
}

func (a *activationUC) Resolve(ctx context.Context, req ActivationRequest, userID string) (*ActivationPage, error) {
	defer logging.TraceDuration(a.log, "ActivationUC.Resolve")()
	log := logging.With(ctx, a.log)

	var (
		lookup  model.SimLookup
		catalog []*model.SubscriptionOffer
		user    *model.User
	)

	// The three reads are independent; each one degrades on its own so the
	// group never cancels its siblings.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lookup = a.sims.Lookup(gctx, req.Sim)
		return nil
	})
	g.Go(func() error {
		offers, err := a.offers.List(gctx, false)
		if err != nil {
			log.Error().Err(err).Msg("catalog read failed; rendering without offers")
			return nil
		}
		catalog = offers
		return nil
	})
	if userID != "" {
		g.Go(func() error {
			u, err := a.users.FindByID(gctx, repository.NoTX, userID)
			if err != nil {
				if !errors.Is(err, domain.ErrNotFound) {
					log.Warn().Err(err).Msg("user lookup failed; treating request as anonymous")
				}
				return nil
			}
			user = u
			return nil
		})
	}
	_ = g.Wait()

	if user != nil && user.BillingState().NeedsOnboarding() {
		metrics.IncActivationOutcome("redirect")
		return &ActivationPage{Redirect: a.onboardingURL(req)}, nil
	}

	page := &ActivationPage{
		Sim:             req.Sim,
		AvailableSim:    req.Sim == "" || lookup.IsEligible(),
		Org:             lookup.Org(),
		Offers:          SelectOffers(catalog, lookup.EligibleIDs()),
		PaymentCanceled: req.Canceled,
	}
	for _, o := range page.Offers {
		if o.ID == req.SubID {
			page.SelectedID = o.ID
			break
		}
	}
	if req.Canceled {
		retry := url.Values{"sim": {req.Sim}, "subId": {req.SubID}}
		page.RetryURL = ActivationPath + "?" + retry.Encode()
	}

	metrics.IncActivationOutcome("rendered")
	return page, nil
}

func (a *activationUC) onboardingURL(req ActivationRequest) string {
	back := ActivationPath
	if q := req.query(); len(q) > 0 {
		back += "?" + q.Encode()
	}
	return a.onboardingPath + "?" + url.Values{"callbackUrl": {back}}.Encode()
}

// SelectOffers keeps catalog order and returns the non-archived offers whose
// id is eligible. Ids that are unknown or archived are dropped.
func SelectOffers(catalog []*model.SubscriptionOffer, eligibleIDs []string) []*model.SubscriptionOffer {
	out := make([]*model.SubscriptionOffer, 0, len(eligibleIDs))
	if len(eligibleIDs) == 0 {
		return out
	}
	eligible := make(map[string]struct{}, len(eligibleIDs))
	for _, id := range eligibleIDs {
		eligible[id] = struct{}{}
	}
	for _, o := range catalog {
		if o == nil || o.IsArchived {
			continue
		}
		if _, ok := eligible[o.ID]; ok {
			out = append(out, o)
		}
	}
	return out
}
