// Package memory is an in-process implementation of the repositories. It
// enforces the same unique constraints as the SQL schema.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/anjiri1684/membership_network/models"
	"github.com/anjiri1684/membership_network/repositories"
	"github.com/google/uuid"
)

type Store struct {
	mu         sync.RWMutex
	users      map[uuid.UUID]models.User
	groups     map[uuid.UUID]models.Group
	profiles   map[uuid.UUID]models.Profile
	referrals  map[uuid.UUID]models.Referral
	intentions map[uuid.UUID]models.RegistrationIntention
}

func NewStore() *Store {
	return &Store{
		users:      make(map[uuid.UUID]models.User),
		groups:     make(map[uuid.UUID]models.Group),
		profiles:   make(map[uuid.UUID]models.Profile),
		referrals:  make(map[uuid.UUID]models.Referral),
		intentions: make(map[uuid.UUID]models.RegistrationIntention),
	}
}

func (s *Store) Users() *UserRepository           { return &UserRepository{s} }
func (s *Store) Groups() *GroupRepository         { return &GroupRepository{s} }
func (s *Store) Profiles() *ProfileRepository     { return &ProfileRepository{s} }
func (s *Store) Referrals() *ReferralRepository   { return &ReferralRepository{s} }
func (s *Store) Intentions() *IntentionRepository { return &IntentionRepository{s} }

func stamp(id *uuid.UUID, created, updated *time.Time) {
	now := time.Now()
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if created.IsZero() {
		*created = now
	}
	*updated = now
}

// Users

type UserRepository struct{ s *Store }

var _ repositories.UserRepository = (*UserRepository)(nil)

func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.emailTaken(user.Email, uuid.Nil) {
		return repositories.ErrDuplicate
	}
	stamp(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	r.s.users[user.ID] = *user
	return nil
}

func (s *Store) emailTaken(email string, except uuid.UUID) bool {
	for id, u := range s.users {
		if id != except && u.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) FindAll(_ context.Context) ([]models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.Before(users[j].CreatedAt) })
	return users, nil
}

func (r *UserRepository) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[user.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.s.emailTaken(user.Email, user.ID) {
		return repositories.ErrDuplicate
	}
	user.UpdatedAt = time.Now()
	r.s.users[user.ID] = *user
	return nil
}

// Delete cascades to owned rows like the SQL foreign keys do.
func (r *UserRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.users, id)
	for gid, g := range r.s.groups {
		if g.AdminID == id {
			delete(r.s.groups, gid)
		}
	}
	for pid, p := range r.s.profiles {
		if p.UserID == id {
			delete(r.s.profiles, pid)
		}
	}
	for rid, ref := range r.s.referrals {
		if ref.FromUserID == id || ref.ToUserID == id {
			delete(r.s.referrals, rid)
		}
	}
	return nil
}

// Groups

type GroupRepository struct{ s *Store }

var _ repositories.GroupRepository = (*GroupRepository)(nil)

func (r *GroupRepository) Create(_ context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stamp(&group.ID, &group.CreatedAt, &group.UpdatedAt)
	r.s.groups[group.ID] = *group
	return nil
}

func (r *GroupRepository) FindByAdmin(_ context.Context, adminID uuid.UUID) ([]models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var groups []models.Group
	for _, g := range r.s.groups {
		if g.AdminID == adminID {
			groups = append(groups, g)
		}
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].CreatedAt.After(groups[j].CreatedAt) })
	return groups, nil
}

func (r *GroupRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Group, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	g, ok := r.s.groups[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &g, nil
}

func (r *GroupRepository) Update(_ context.Context, group *models.Group) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[group.ID]; !ok {
		return repositories.ErrNotFound
	}
	group.UpdatedAt = time.Now()
	r.s.groups[group.ID] = *group
	return nil
}

func (r *GroupRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.groups[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(r.s.groups, id)
	return nil
}

// Profiles

type ProfileRepository struct{ s *Store }

var (
	_ repositories.ProfileRepository      = (*ProfileRepository)(nil)
	_ repositories.RegistrationRepository = (*ProfileRepository)(nil)
)

func (r *ProfileRepository) FindByUserID(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, p := range r.s.profiles {
		if p.UserID == userID {
			found := p
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *ProfileRepository) Update(_ context.Context, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[profile.ID]; !ok {
		return repositories.ErrNotFound
	}
	profile.UpdatedAt = time.Now()
	r.s.profiles[profile.ID] = *profile
	return nil
}

func (r *ProfileRepository) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, p := range r.s.profiles {
		if p.UserID == userID {
			delete(r.s.profiles, id)
			return nil
		}
	}
	return repositories.ErrNotFound
}

func (r *ProfileRepository) CompleteRegistration(_ context.Context, intentionID uuid.UUID, token string, profile *models.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, p := range r.s.profiles {
		if p.UserID == profile.UserID {
			return repositories.ErrDuplicate
		}
	}
	intention, ok := r.s.intentions[intentionID]
	if !ok || intention.Token == nil || *intention.Token != token || intention.Status != models.IntentionApproved {
		return repositories.ErrTokenConsumed
	}
	user, ok := r.s.users[profile.UserID]
	if !ok {
		return repositories.ErrNotFound
	}

	stamp(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	r.s.profiles[profile.ID] = *profile

	intention.Token = nil
	intention.UpdatedAt = time.Now()
	r.s.intentions[intentionID] = intention

	user.IsMember = true
	r.s.users[user.ID] = user
	return nil
}

// Referrals

type ReferralRepository struct{ s *Store }

var _ repositories.ReferralRepository = (*ReferralRepository)(nil)

func (s *Store) withParties(ref models.Referral) models.Referral {
	ref.FromUser = s.users[ref.FromUserID]
	ref.ToUser = s.users[ref.ToUserID]
	return ref
}

func (r *ReferralRepository) Create(_ context.Context, referral *models.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[referral.FromUserID]; !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.users[referral.ToUserID]; !ok {
		return repositories.ErrNotFound
	}
	if referral.Status == "" {
		referral.Status = models.ReferralPending
	}
	stamp(&referral.ID, &referral.CreatedAt, &referral.UpdatedAt)
	*referral = r.s.withParties(*referral)
	r.s.referrals[referral.ID] = *referral
	return nil
}

func (r *ReferralRepository) filter(keep func(models.Referral) bool) []models.Referral {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Referral
	for _, ref := range r.s.referrals {
		if keep(ref) {
			out = append(out, r.s.withParties(ref))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *ReferralRepository) FindForUser(_ context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return r.filter(func(ref models.Referral) bool {
		return ref.FromUserID == userID || ref.ToUserID == userID
	}), nil
}

func (r *ReferralRepository) FindSent(_ context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return r.filter(func(ref models.Referral) bool { return ref.FromUserID == userID }), nil
}

func (r *ReferralRepository) FindReceived(_ context.Context, userID uuid.UUID) ([]models.Referral, error) {
	return r.filter(func(ref models.Referral) bool { return ref.ToUserID == userID }), nil
}

func (r *ReferralRepository) FindCreatedBetween(_ context.Context, start, end time.Time) ([]models.Referral, error) {
	return r.filter(func(ref models.Referral) bool {
		return !ref.CreatedAt.Before(start) && !ref.CreatedAt.After(end)
	}), nil
}

func (r *ReferralRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Referral, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	ref, ok := r.s.referrals[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	ref = r.s.withParties(ref)
	return &ref, nil
}

func (r *ReferralRepository) Update(_ context.Context, referral *models.Referral) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.referrals[referral.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Status = referral.Status
	stored.Feedback = referral.Feedback
	stored.UpdatedAt = time.Now()
	referral.UpdatedAt = stored.UpdatedAt
	r.s.referrals[referral.ID] = stored
	return nil
}

// Intentions

type IntentionRepository struct{ s *Store }

var _ repositories.IntentionRepository = (*IntentionRepository)(nil)

func (s *Store) tokenTaken(token *string, except uuid.UUID) bool {
	if token == nil {
		return false
	}
	for id, i := range s.intentions {
		if id != except && i.Token != nil && *i.Token == *token {
			return true
		}
	}
	return false
}

func (r *IntentionRepository) Create(_ context.Context, intention *models.RegistrationIntention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.tokenTaken(intention.Token, uuid.Nil) {
		return repositories.ErrDuplicate
	}
	if intention.Status == "" {
		intention.Status = models.IntentionPending
	}
	stamp(&intention.ID, &intention.CreatedAt, &intention.UpdatedAt)
	r.s.intentions[intention.ID] = *intention
	return nil
}

func (r *IntentionRepository) FindByID(_ context.Context, id uuid.UUID) (*models.RegistrationIntention, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	i, ok := r.s.intentions[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &i, nil
}

func (r *IntentionRepository) FindByToken(_ context.Context, token string) (*models.RegistrationIntention, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, i := range r.s.intentions {
		if i.Token != nil && *i.Token == token {
			found := i
			return &found, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *IntentionRepository) List(_ context.Context, status models.IntentionStatus) ([]models.RegistrationIntention, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.RegistrationIntention
	for _, i := range r.s.intentions {
		if status == "" || i.Status == status {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}

func (r *IntentionRepository) Update(_ context.Context, intention *models.RegistrationIntention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.intentions[intention.ID]; !ok {
		return repositories.ErrNotFound
	}
	if r.s.tokenTaken(intention.Token, intention.ID) {
		return repositories.ErrDuplicate
	}
	intention.UpdatedAt = time.Now()
	r.s.intentions[intention.ID] = *intention
	return nil
}

func (r *IntentionRepository) SaveReview(_ context.Context, intention *models.RegistrationIntention) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	stored, ok := r.s.intentions[intention.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if stored.Status != models.IntentionPending {
		return repositories.ErrStale
	}
	if r.s.tokenTaken(intention.Token, intention.ID) {
		return repositories.ErrDuplicate
	}
	intention.UpdatedAt = time.Now()
	r.s.intentions[intention.ID] = *intention
	return nil
}

func (r *IntentionRepository) ExpireTokens(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for id, i := range r.s.intentions {
		if i.Status == models.IntentionApproved && i.Token != nil && i.TokenExpiresAt != nil && i.TokenExpiresAt.Before(now) {
			i.Status = models.IntentionExpired
			i.Token = nil
			i.UpdatedAt = now
			r.s.intentions[id] = i
			n++
		}
	}
	return n, nil
}
