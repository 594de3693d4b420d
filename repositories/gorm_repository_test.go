package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	// every connection to :memory: is its own database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Profile{},
		&models.Referral{},
		&models.RegistrationIntention{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, users *GormUserRepository, email string) *models.User {
	t.Helper()
	u := &models.User{FullName: "Test User", Email: email, PasswordHash: "hash"}
	if err := users.Create(context.Background(), u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return u
}

func approvedIntention(t *testing.T, intentions *GormIntentionRepository, email, token string, expiresAt time.Time) *models.RegistrationIntention {
	t.Helper()
	i := &models.RegistrationIntention{
		FullName:       "Applicant",
		Email:          email,
		Status:         models.IntentionApproved,
		Token:          &token,
		TokenExpiresAt: &expiresAt,
	}
	if err := intentions.Create(context.Background(), i); err != nil {
		t.Fatalf("create intention: %v", err)
	}
	return i
}

func TestUserEmailUniqueIndex(t *testing.T) {
	users := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	first := createUser(t, users, "ada@example.com")
	err := users.Create(ctx, &models.User{FullName: "Other", Email: "ada@example.com", PasswordHash: "hash"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on create, got %v", err)
	}

	second := createUser(t, users, "grace@example.com")
	second.Email = first.Email
	if err := users.Update(ctx, second); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate on update, got %v", err)
	}

	if _, err := users.FindByEmail(ctx, "ADA@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("email lookup is exact; callers normalize. got %v", err)
	}
}

func TestUpdateDoesNotResurrectDeletedRows(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	groups := NewGroupRepository(db)
	profiles := NewProfileRepository(db)
	intentions := NewIntentionRepository(db)
	referrals := NewReferralRepository(db)
	ctx := context.Background()

	t.Run("user", func(t *testing.T) {
		u := createUser(t, users, "gone@example.com")
		if err := users.Delete(ctx, u.ID); err != nil {
			t.Fatalf("delete: %v", err)
		}
		u.FullName = "Back Again"
		if err := users.Update(ctx, u); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := users.FindByID(ctx, u.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("deleted user was re-created: %v", err)
		}
	})

	t.Run("group", func(t *testing.T) {
		owner := createUser(t, users, "owner@example.com")
		g := &models.Group{Name: "Founders", AdminID: owner.ID}
		if err := groups.Create(ctx, g); err != nil {
			t.Fatalf("create group: %v", err)
		}
		if err := groups.Delete(ctx, g.ID); err != nil {
			t.Fatalf("delete group: %v", err)
		}
		g.Name = "Founders Club"
		if err := groups.Update(ctx, g); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := groups.FindByID(ctx, g.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("deleted group was re-created: %v", err)
		}
	})

	t.Run("profile", func(t *testing.T) {
		member := createUser(t, users, "member@example.com")
		i := approvedIntention(t, intentions, member.Email, "tok-profile", time.Now().Add(time.Hour))
		if err := profiles.CompleteRegistration(ctx, i.ID, "tok-profile", &models.Profile{UserID: member.ID}); err != nil {
			t.Fatalf("complete registration: %v", err)
		}
		loaded, err := profiles.FindByUserID(ctx, member.ID)
		if err != nil {
			t.Fatalf("load profile: %v", err)
		}
		if err := profiles.DeleteByUserID(ctx, member.ID); err != nil {
			t.Fatalf("delete profile: %v", err)
		}
		loaded.Skills = models.StringList{"go"}
		if err := profiles.Update(ctx, loaded); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if _, err := profiles.FindByUserID(ctx, member.ID); !errors.Is(err, ErrNotFound) {
			t.Fatalf("deleted profile was re-created: %v", err)
		}
	})

	t.Run("intention", func(t *testing.T) {
		i := &models.RegistrationIntention{ID: uuid.New(), FullName: "Nobody", Email: "nobody@example.com", Status: models.IntentionPending}
		if err := intentions.Update(ctx, i); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("referral", func(t *testing.T) {
		ref := &models.Referral{ID: uuid.New(), Status: models.ReferralInProgress}
		if err := referrals.Update(ctx, ref); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCompleteRegistrationConsumesTokenOnce(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	intentions := NewIntentionRepository(db)
	ctx := context.Background()

	first := createUser(t, users, "first@example.com")
	second := createUser(t, users, "second@example.com")
	i := approvedIntention(t, intentions, first.Email, "tok-once", time.Now().Add(time.Hour))

	bio := "Builder"
	if err := profiles.CompleteRegistration(ctx, i.ID, "tok-once", &models.Profile{UserID: first.ID, Bio: &bio, Skills: models.StringList{"go", "sql"}}); err != nil {
		t.Fatalf("first completion: %v", err)
	}

	err := profiles.CompleteRegistration(ctx, i.ID, "tok-once", &models.Profile{UserID: second.ID})
	if !errors.Is(err, ErrTokenConsumed) {
		t.Fatalf("expected ErrTokenConsumed on reuse, got %v", err)
	}
	if _, err := profiles.FindByUserID(ctx, second.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("failed completion must roll back the profile insert: %v", err)
	}

	stored, err := intentions.FindByID(ctx, i.ID)
	if err != nil {
		t.Fatalf("reload intention: %v", err)
	}
	if stored.Token != nil {
		t.Fatalf("token should be cleared, got %q", *stored.Token)
	}
	member, err := users.FindByID(ctx, first.ID)
	if err != nil || !member.IsMember {
		t.Fatalf("user should be flagged as member: %+v, %v", member, err)
	}
	profile, err := profiles.FindByUserID(ctx, first.ID)
	if err != nil {
		t.Fatalf("load profile: %v", err)
	}
	if len(profile.Skills) != 2 || profile.Skills[1] != "sql" {
		t.Fatalf("skills did not round-trip: %v", profile.Skills)
	}
}

func TestCompleteRegistrationRejectsSecondProfile(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	intentions := NewIntentionRepository(db)
	ctx := context.Background()

	u := createUser(t, users, "twice@example.com")
	a := approvedIntention(t, intentions, u.Email, "tok-a", time.Now().Add(time.Hour))
	b := approvedIntention(t, intentions, u.Email, "tok-b", time.Now().Add(time.Hour))

	if err := profiles.CompleteRegistration(ctx, a.ID, "tok-a", &models.Profile{UserID: u.ID}); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	err := profiles.CompleteRegistration(ctx, b.ID, "tok-b", &models.Profile{UserID: u.ID})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	stored, _ := intentions.FindByID(ctx, b.ID)
	if stored.Token == nil {
		t.Fatal("a rejected completion must leave its token usable")
	}
}

func TestMissingUserMapsToNotFound(t *testing.T) {
	db := openTestDB(t)
	users := NewUserRepository(db)
	profiles := NewProfileRepository(db)
	intentions := NewIntentionRepository(db)
	referrals := NewReferralRepository(db)
	ctx := context.Background()

	i := approvedIntention(t, intentions, "ghost@example.com", "tok-ghost", time.Now().Add(time.Hour))
	err := profiles.CompleteRegistration(ctx, i.ID, "tok-ghost", &models.Profile{UserID: uuid.New()})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing user, got %v", err)
	}

	sender := createUser(t, users, "sender@example.com")
	err = referrals.Create(ctx, &models.Referral{
		FromUserID:      sender.ID,
		ToUserID:        uuid.New(),
		Description:     "Website rebuild",
		OpportunityType: "web",
		PotentialValue:  decimal.NewFromInt(100),
		Status:          models.ReferralPending,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for a missing receiver, got %v", err)
	}
}

func TestSaveReviewOnlyWhilePending(t *testing.T) {
	intentions := NewIntentionRepository(openTestDB(t))
	ctx := context.Background()

	i := &models.RegistrationIntention{FullName: "Hana", Email: "hana@example.com", Status: models.IntentionPending}
	if err := intentions.Create(ctx, i); err != nil {
		t.Fatalf("create: %v", err)
	}

	// two reviewers both loaded the pending row
	approve := *i
	reject := *i

	token := "tok-review"
	expires := time.Now().Add(time.Hour)
	approve.Status = models.IntentionApproved
	approve.Token = &token
	approve.TokenExpiresAt = &expires
	if err := intentions.SaveReview(ctx, &approve); err != nil {
		t.Fatalf("first review: %v", err)
	}

	reject.Status = models.IntentionRejected
	if err := intentions.SaveReview(ctx, &reject); !errors.Is(err, ErrStale) {
		t.Fatalf("expected ErrStale for the losing review, got %v", err)
	}

	stored, err := intentions.FindByID(ctx, i.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if stored.Status != models.IntentionApproved || stored.Token == nil || *stored.Token != token {
		t.Fatalf("first decision must stand: %+v", stored)
	}

	missing := &models.RegistrationIntention{ID: uuid.New(), Status: models.IntentionRejected}
	if err := intentions.SaveReview(ctx, missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpireTokensSweepsLapsedApprovals(t *testing.T) {
	intentions := NewIntentionRepository(openTestDB(t))
	ctx := context.Background()
	now := time.Now()

	lapsed := approvedIntention(t, intentions, "late@example.com", "tok-late", now.Add(-time.Minute))
	fresh := approvedIntention(t, intentions, "fresh@example.com", "tok-fresh", now.Add(time.Hour))

	n, err := intentions.ExpireTokens(ctx, now)
	if err != nil {
		t.Fatalf("ExpireTokens: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 expired token, got %d", n)
	}

	got, _ := intentions.FindByID(ctx, lapsed.ID)
	if got.Status != models.IntentionExpired || got.Token != nil {
		t.Fatalf("lapsed intention should be expired with no token: %+v", got)
	}
	got, _ = intentions.FindByID(ctx, fresh.ID)
	if got.Status != models.IntentionApproved || got.Token == nil {
		t.Fatalf("fresh intention must be untouched: %+v", got)
	}
	if _, err := intentions.FindByToken(ctx, "tok-late"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired token must no longer resolve: %v", err)
	}

	if n, _ := intentions.ExpireTokens(ctx, now); n != 0 {
		t.Fatalf("second sweep should be a no-op, got %d", n)
	}
}
