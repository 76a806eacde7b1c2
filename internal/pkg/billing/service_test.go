package billing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/jaguarlabs/jaguar/app/models"
)

type fakeRepo struct {
	usersByID    map[uint]*models.User
	usersByEmail map[string]*models.User
	subs         map[string]*models.Subscription // keyed email|plan
	payments     []*models.Payment

	nextUserID uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		usersByID:    map[uint]*models.User{},
		usersByEmail: map[string]*models.User{},
		subs:         map[string]*models.Subscription{},
		nextUserID:   1,
	}
}

func (f *fakeRepo) addUser(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = f.nextUserID
		f.nextUserID++
	}
	f.usersByID[u.ID] = u
	f.usersByEmail[u.Email] = u
	return u
}

func (f *fakeRepo) GetUserByID(id uint) (*models.User, error) {
	if u, ok := f.usersByID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) GetUserByEmail(email string) (*models.User, error) {
	if u, ok := f.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateUser(user *models.User) error {
	f.addUser(user)
	return nil
}

func (f *fakeRepo) UpdateUserRole(id uint, role string) error {
	u, ok := f.usersByID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.Role = role
	return nil
}

func (f *fakeRepo) UpsertSubscription(sub *models.Subscription) error {
	key := sub.Email + "|" + sub.Plan
	if existing, ok := f.subs[key]; ok {
		existing.Status = sub.Status
		existing.Amount = sub.Amount
		existing.StartedAt = sub.StartedAt
		existing.EndedAt = sub.EndedAt
		return nil
	}
	f.subs[key] = sub
	return nil
}

func (f *fakeRepo) GetSubscription(email, plan string) (*models.Subscription, error) {
	if sub, ok := f.subs[email+"|"+plan]; ok {
		return sub, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreatePayment(payment *models.Payment) error {
	f.payments = append(f.payments, payment)
	return nil
}

func (f *fakeRepo) ListPaymentsByReference(reference string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.Reference == reference {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeRepo) ListPaymentsByBuyer(email, plan string) ([]models.Payment, error) {
	var out []models.Payment
	for _, p := range f.payments {
		if p.CustomerEmail == email && p.Plan == plan {
			out = append(out, *p)
		}
	}
	return out, nil
}

func newTestService(repo *fakeRepo) *Service {
	svc := NewService(repo)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func successEvent() ChargeEvent {
	return ChargeEvent{
		Event:      "charge.success",
		Plan:       "vip",
		BuyerEmail: "buyer@example.com",
		Amount:     5000000,
		Status:     "success",
		Reference:  "KBS_vip_1_AAAAAA",
		RawPayload: `{"data":{}}`,
	}
}

func TestRecordPaymentAppendsEveryDelivery(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	ev := successEvent()
	require.NoError(t, svc.RecordPayment(ctx, ev))
	require.NoError(t, svc.RecordPayment(ctx, ev))

	rows, err := repo.ListPaymentsByReference(ev.Reference)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "duplicate deliveries must each leave a ledger row")
	assert.Equal(t, "charge.success", rows[0].Event)
	assert.Equal(t, "buyer@example.com", rows[0].CustomerEmail)
	assert.Equal(t, "NGN", rows[0].Currency, "missing currency defaults to NGN")
}

func TestRecordPaymentKeepsCurrency(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	ev := successEvent()
	ev.Currency = "usd"
	require.NoError(t, svc.RecordPayment(context.Background(), ev))

	rows, err := repo.ListPaymentsByReference(ev.Reference)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "USD", rows[0].Currency)
}

func TestReconcileChargePromotesRoleAndUpsertsSubscription(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser(&models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_FREE})
	svc := newTestService(repo)

	require.NoError(t, svc.ReconcileCharge(context.Background(), successEvent()))

	assert.Equal(t, "vip", user.Role)

	sub, err := repo.GetSubscription("buyer@example.com", "vip")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	require.NotNil(t, sub.EndedAt, "monthly plan must carry an expiry")
	assert.Equal(t, sub.StartedAt.Add(30*24*time.Hour), *sub.EndedAt)
}

func TestReconcileChargeIdempotent(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(&models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_FREE})
	svc := newTestService(repo)
	ctx := context.Background()

	ev := successEvent()
	require.NoError(t, svc.ReconcileCharge(ctx, ev))
	require.NoError(t, svc.ReconcileCharge(ctx, ev))

	assert.Len(t, repo.subs, 1, "re-running reconciliation must not duplicate the subscription")
	assert.Equal(t, "vip", repo.usersByEmail["buyer@example.com"].Role)
}

func TestReconcileChargeLifetimeHasNoExpiry(t *testing.T) {
	repo := newFakeRepo()
	repo.addUser(&models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_FREE})
	svc := newTestService(repo)

	ev := successEvent()
	ev.Plan = "lifetime"
	require.NoError(t, svc.ReconcileCharge(context.Background(), ev))

	sub, err := repo.GetSubscription("buyer@example.com", "lifetime")
	require.NoError(t, err)
	assert.Nil(t, sub.EndedAt)
}

func TestReconcileChargeNonSuccessIsNoOp(t *testing.T) {
	repo := newFakeRepo()
	user := repo.addUser(&models.User{Name: "Buyer", Email: "buyer@example.com", Role: models.ROLE_FREE})
	svc := newTestService(repo)

	ev := successEvent()
	ev.Status = "failed"
	require.NoError(t, svc.ReconcileCharge(context.Background(), ev))

	assert.Equal(t, models.ROLE_FREE, user.Role)
	assert.Empty(t, repo.subs)
}

func TestReconcileChargeMissingPlan(t *testing.T) {
	svc := newTestService(newFakeRepo())

	ev := successEvent()
	ev.Plan = ""
	require.Error(t, svc.ReconcileCharge(context.Background(), ev))
}

func TestReconcileChargePrefersUserID(t *testing.T) {
	repo := newFakeRepo()
	byID := repo.addUser(&models.User{Name: "ById", Email: "id@example.com", Role: models.ROLE_FREE})
	byEmail := repo.addUser(&models.User{Name: "ByEmail", Email: "buyer@example.com", Role: models.ROLE_FREE})
	svc := newTestService(repo)

	ev := successEvent()
	ev.UserID = "1"
	require.NoError(t, svc.ReconcileCharge(context.Background(), ev))

	assert.Equal(t, "vip", byID.Role)
	assert.Equal(t, models.ROLE_FREE, byEmail.Role, "email lookup must not run when the id resolves")
}

func TestReconcileChargeUnknownBuyerWebhookPath(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	ev := successEvent()
	require.NoError(t, svc.ReconcileCharge(context.Background(), ev))

	assert.Empty(t, repo.usersByEmail, "webhooks must not create profiles")
	_, err := repo.GetSubscription("buyer@example.com", "vip")
	assert.NoError(t, err, "subscription is still recorded for the buyer email")
}

func TestReconcileChargeUnknownBuyerVerifyPathCreatesStub(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	ev := successEvent()
	ev.CreateProfileIfMissing = true
	require.NoError(t, svc.ReconcileCharge(context.Background(), ev))

	stub, err := repo.GetUserByEmail("buyer@example.com")
	require.NoError(t, err)
	assert.Equal(t, "vip", stub.Role)
	assert.Equal(t, models.STATUS_INACTIVE, stub.Status)
	assert.Empty(t, stub.Password)
	assert.True(t, stub.IsClaimableStub(), "registration must be able to claim the stub later")
}

func TestPlanStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()
	now := svc.now()

	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	repo.subs["active@example.com|vip"] = &models.Subscription{
		Email: "active@example.com", Plan: "vip",
		Status: models.SubscriptionStatusActive, EndedAt: &future,
	}
	repo.subs["expired@example.com|vip"] = &models.Subscription{
		Email: "expired@example.com", Plan: "vip",
		Status: models.SubscriptionStatusActive, EndedAt: &past,
	}

	status, active := svc.PlanStatus(ctx, "active@example.com", "vip", "")
	assert.True(t, active)
	assert.Equal(t, models.SubscriptionStatusActive, status)

	status, active = svc.PlanStatus(ctx, "expired@example.com", "vip", "")
	assert.False(t, active)
	assert.Equal(t, models.SubscriptionStatusExpired, status)

	// No subscription row: fall back to the profile role.
	_, active = svc.PlanStatus(ctx, "norow@example.com", "vip", "vip")
	assert.True(t, active)

	_, active = svc.PlanStatus(ctx, "norow@example.com", "vip", "free")
	assert.False(t, active)
}

func TestPlanStatusFallsBackToLedger(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	// Buyer with a successful ledger row but no subscription row and a stale
	// profile role.
	require.NoError(t, svc.RecordPayment(ctx, successEvent()))

	status, active := svc.PlanStatus(ctx, "buyer@example.com", "vip", "free")
	assert.True(t, active, "a successful payment on record proves the purchase")
	assert.Equal(t, models.SubscriptionStatusActive, status)
}

func TestPlanStatusIgnoresFailedLedgerRows(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	ev := successEvent()
	ev.Status = "failed"
	require.NoError(t, svc.RecordPayment(ctx, ev))

	_, active := svc.PlanStatus(ctx, "buyer@example.com", "vip", "free")
	assert.False(t, active, "failed charges must not grant entitlements")
}
