package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/anjiri1684/membership_network/models"
)

type registrationFixture struct {
	*fixture
	profiles   *ProfileService
	intentions *IntentionService
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()
	f := newFixture(t)
	return &registrationFixture{
		fixture:    f,
		profiles:   NewProfileService(f.store.Profiles(), f.store.Intentions(), f.store.Profiles(), f.publisher, f.metrics, f.logger),
		intentions: NewIntentionService(f.store.Intentions(), f.notifier, f.publisher, f.metrics, 24*time.Hour, f.logger),
	}
}

// approvedToken submits and approves an intention, returning its token.
func (f *registrationFixture) approvedToken(t *testing.T, email string, reviewer *models.User) string {
	t.Helper()
	ctx := context.Background()
	intention, err := f.intentions.Submit(ctx, SubmitIntentionInput{FullName: "Applicant", Email: email})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if _, err := f.intentions.Review(ctx, intention.ID, reviewer.ID, DecisionApprove); err != nil {
		t.Fatalf("approve: %v", err)
	}
	token := f.notifier.approved[email]
	if token == "" {
		t.Fatalf("approval did not deliver a token")
	}
	return token
}

func TestCompleteRegistrationConsumesTokenOnce(t *testing.T) {
	f := newRegistrationFixture(t)
	admin := f.seedUser(t, "Admin", "admin@example.com", "password1", true)
	carla := f.seedUser(t, "Carla", "carla@example.com", "password1", false)
	dan := f.seedUser(t, "Dan", "dan@example.com", "password1", false)
	ctx := context.Background()

	token := f.approvedToken(t, "carla@example.com", admin)

	profile, err := f.profiles.CompleteRegistration(ctx, carla.ID, token, ProfileInput{
		Bio:       strPtr("Consultant"),
		Interests: []string{"fintech", "retail"},
	})
	if err != nil {
		t.Fatalf("complete registration failed: %v", err)
	}
	if profile.UserID != carla.ID || len(profile.Interests) != 2 {
		t.Fatalf("unexpected profile %+v", profile)
	}

	user, _ := f.store.Users().FindByID(ctx, carla.ID)
	if !user.IsMember {
		t.Fatalf("completing registration must flag the user as member")
	}
	if _, err := f.store.Intentions().FindByToken(ctx, token); err == nil {
		t.Fatalf("token must be cleared after use")
	}

	_, err = f.profiles.CompleteRegistration(ctx, dan.ID, token, ProfileInput{})
	assertKind(t, err, KindUnauthorized)
	assertMessage(t, err, "Invalid or expired token")
}

func TestCompleteRegistrationConcurrentUse(t *testing.T) {
	f := newRegistrationFixture(t)
	admin := f.seedUser(t, "Admin", "admin@example.com", "password1", true)
	token := f.approvedToken(t, "shared@example.com", admin)

	users := make([]*models.User, 8)
	for i := range users {
		users[i] = f.seedUser(t, "User", "user"+string(rune('a'+i))+"@example.com", "password1", false)
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, u := range users {
		wg.Add(1)
		go func(u *models.User) {
			defer wg.Done()
			if _, err := f.profiles.CompleteRegistration(context.Background(), u.ID, token, ProfileInput{}); err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
			}
		}(u)
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one registration to succeed, got %d", successes)
	}
}

func TestCompleteRegistrationRejections(t *testing.T) {
	f := newRegistrationFixture(t)
	admin := f.seedUser(t, "Admin", "admin@example.com", "password1", true)
	erin := f.seedUser(t, "Erin", "erin@example.com", "password1", false)
	ctx := context.Background()

	_, err := f.profiles.CompleteRegistration(ctx, erin.ID, "", ProfileInput{})
	assertKind(t, err, KindUnauthorized)

	_, err = f.profiles.CompleteRegistration(ctx, erin.ID, "unknown-token", ProfileInput{})
	assertKind(t, err, KindUnauthorized)
	assertMessage(t, err, "Invalid or expired token")

	// A token on an intention that is not approved.
	pendingToken := "pending-token"
	pending := &models.RegistrationIntention{FullName: "P", Email: "p@example.com", Status: models.IntentionPending, Token: &pendingToken}
	if err := f.store.Intentions().Create(ctx, pending); err != nil {
		t.Fatalf("seed intention: %v", err)
	}
	_, err = f.profiles.CompleteRegistration(ctx, erin.ID, pendingToken, ProfileInput{})
	assertKind(t, err, KindUnauthorized)
	assertMessage(t, err, "This intention has not been approved yet")

	// An approved token past its expiry.
	token := f.approvedToken(t, "erin@example.com", admin)
	f.profiles.now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	_, err = f.profiles.CompleteRegistration(ctx, erin.ID, token, ProfileInput{})
	assertKind(t, err, KindUnauthorized)
	f.profiles.now = time.Now

	// A user that already owns a profile.
	if _, err := f.profiles.CompleteRegistration(ctx, erin.ID, token, ProfileInput{}); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}
	second := f.approvedToken(t, "erin2@example.com", admin)
	_, err = f.profiles.CompleteRegistration(ctx, erin.ID, second, ProfileInput{})
	assertKind(t, err, KindConflict)
	if _, err := f.store.Intentions().FindByToken(ctx, second); err != nil {
		t.Fatalf("a failed registration must leave the token usable: %v", err)
	}
}

func TestProfileUpdateAndRemove(t *testing.T) {
	f := newRegistrationFixture(t)
	admin := f.seedUser(t, "Admin", "admin@example.com", "password1", true)
	gil := f.seedUser(t, "Gil", "gil@example.com", "password1", false)
	ctx := context.Background()

	_, err := f.profiles.FindByUserID(ctx, gil.ID)
	assertKind(t, err, KindNotFound)

	token := f.approvedToken(t, "gil@example.com", admin)
	if _, err := f.profiles.CompleteRegistration(ctx, gil.ID, token, ProfileInput{Bio: strPtr("Designer")}); err != nil {
		t.Fatalf("complete: %v", err)
	}

	updated, err := f.profiles.Update(ctx, gil.ID, ProfileInput{Skills: []string{"figma"}, Website: strPtr("https://gil.dev")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Bio == nil || *updated.Bio != "Designer" {
		t.Fatalf("untouched fields must survive a partial update")
	}
	if len(updated.Skills) != 1 || updated.Website == nil {
		t.Fatalf("update not applied: %+v", updated)
	}

	if err := f.profiles.Remove(ctx, gil.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	err = f.profiles.Remove(ctx, gil.ID)
	assertKind(t, err, KindNotFound)
}
