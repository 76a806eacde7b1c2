package billing

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/jaguarlabs/jaguar/app/models"
	"github.com/jaguarlabs/jaguar/internal/pkg/korapay"
	"github.com/jaguarlabs/jaguar/internal/pkg/tiers"
	"gorm.io/gorm"
)

const monthlyDuration = 30 * 24 * time.Hour

// Service turns confirmed charges into profile-role and subscription-state
// mutations, and keeps the append-only payment ledger.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a billing service from an injected repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB) *Service {
	return NewService(NewRepository(db))
}

// RecordPayment appends a ledger row for an observed payment event. The write
// is deliberately not idempotent: every webhook delivery and verify call
// leaves its own row, which is what makes the ledger usable as an audit trail.
func (s *Service) RecordPayment(ctx context.Context, ev ChargeEvent) error {
	_ = ctx
	event := strings.TrimSpace(ev.Event)
	if event == "" {
		event = "korapay.event"
	}
	status := strings.TrimSpace(ev.Status)
	if status == "" {
		status = "received"
	}
	currency := strings.ToUpper(strings.TrimSpace(ev.Currency))
	if currency == "" {
		currency = "NGN"
	}

	return s.repo.CreatePayment(&models.Payment{
		Event:         event,
		Data:          ev.RawPayload,
		CustomerEmail: strings.TrimSpace(strings.ToLower(ev.BuyerEmail)),
		Amount:        ev.Amount,
		Currency:      currency,
		Status:        status,
		Plan:          strings.ToLower(strings.TrimSpace(ev.Plan)),
		UserID:        parseUserID(ev.UserID),
		Reference:     strings.TrimSpace(ev.Reference),
		ReceivedAt:    s.now(),
	})
}

// ReconcileCharge promotes the buyer's role and upserts their subscription
// after a successful charge. Both writes are idempotent: rerunning
// reconciliation for the same reference (webhook and verify both firing) must
// not corrupt the role or duplicate the subscription row.
//
// The role update and the subscription upsert are independent: either can
// succeed when only one of user id / buyer email is known.
func (s *Service) ReconcileCharge(ctx context.Context, ev ChargeEvent) error {
	plan := strings.ToLower(strings.TrimSpace(ev.Plan))
	if plan == "" {
		return errors.New("charge event carries no plan")
	}
	if !korapay.IsSuccessStatus(ev.Status) {
		return nil
	}

	email := strings.TrimSpace(strings.ToLower(ev.BuyerEmail))

	if err := s.promoteRole(ctx, parseUserID(ev.UserID), email, plan, ev.CreateProfileIfMissing); err != nil {
		// Role promotion is best-effort relative to the subscription write;
		// the caller decides whether to surface this.
		log.Printf("billing: role promotion failed for plan=%s reference=%s: %v", plan, ev.Reference, err)
	}

	if email == "" {
		return nil
	}

	tier, _ := tiers.ByID(plan)
	now := s.now()
	sub := &models.Subscription{
		Email:     email,
		Plan:      plan,
		Status:    models.SubscriptionStatusActive,
		Amount:    ev.Amount,
		StartedAt: now,
		EndedAt:   subscriptionEnd(tier, now),
	}
	if err := s.repo.UpsertSubscription(sub); err != nil {
		return err
	}
	return nil
}

// promoteRole resolves a profile by id first, then by email, and updates its
// role. An unresolvable profile is a silent no-op; the payment ledger entry
// already records the observation.
func (s *Service) promoteRole(ctx context.Context, userID uint, email, plan string, createIfMissing bool) error {
	_ = ctx
	if !models.IsKnownRole(plan) {
		return nil
	}

	if userID != 0 {
		return s.repo.UpdateUserRole(userID, plan)
	}
	if email == "" {
		return nil
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if !createIfMissing {
			return nil
		}
		// Buyer paid before registering: keep the entitlement on a stub
		// profile they can claim at signup.
		stub := &models.User{
			Name:   email,
			Email:  email,
			Role:   plan,
			Status: models.STATUS_INACTIVE,
		}
		return s.repo.CreateUser(stub)
	}
	return s.repo.UpdateUserRole(user.ID, plan)
}

// PlanStatus resolves whether a buyer currently holds an active subscription
// for a plan, falling back to the payment ledger and finally the profile role.
func (s *Service) PlanStatus(ctx context.Context, email, plan, role string) (string, bool) {
	_ = ctx
	plan = strings.ToLower(strings.TrimSpace(plan))
	email = strings.TrimSpace(strings.ToLower(email))
	if plan == "" {
		return models.SubscriptionStatusInactive, false
	}

	if email != "" {
		if sub, err := s.repo.GetSubscription(email, plan); err == nil {
			if sub.IsActiveAt(s.now()) {
				return models.SubscriptionStatusActive, true
			}
			if sub.Status == models.SubscriptionStatusActive {
				return models.SubscriptionStatusExpired, false
			}
			return sub.Status, false
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("billing: subscription lookup failed for %s/%s: %v", email, plan, err)
		}

		// No subscription row: a successful ledger entry for the plan still
		// proves the purchase (older buyers predate the subscriptions table).
		if payments, err := s.repo.ListPaymentsByBuyer(email, plan); err == nil {
			for _, p := range payments {
				if korapay.IsSuccessStatus(p.Status) {
					return models.SubscriptionStatusActive, true
				}
			}
		} else {
			log.Printf("billing: ledger lookup failed for %s/%s: %v", email, plan, err)
		}
	}

	if strings.EqualFold(role, plan) {
		return models.SubscriptionStatusActive, true
	}
	return models.SubscriptionStatusInactive, false
}

func subscriptionEnd(tier tiers.Tier, now time.Time) *time.Time {
	if tier.BillingCycle != tiers.BillingCycleMonthly {
		return nil
	}
	end := now.Add(monthlyDuration)
	return &end
}

func parseUserID(raw string) uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}
