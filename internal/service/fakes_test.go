package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/repository/ports"
)

var errBoom = errors.New("boom")

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505"}
}

func ptr[T any](v T) *T {
	return &v
}

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

func (c *fixedClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

// memoryVendorRepo

type memoryVendorRepo struct {
	mu      sync.Mutex
	vendors map[uuid.UUID]*domain.Vendor
	// sessions lets Search join the active session like the SQL query does.
	sessions     *memoryLiveSessionRepo
	lastSearch   domain.VendorSearchFilter
	lastAdmin    domain.VendorAdminFilter
	createErr    error
	findErr      error
	statusCalled int
}

func newMemoryVendorRepo() *memoryVendorRepo {
	return &memoryVendorRepo{vendors: map[uuid.UUID]*domain.Vendor{}}
}

func (r *memoryVendorRepo) add(v domain.Vendor) *domain.Vendor {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.OwnerID == uuid.Nil {
		v.OwnerID = uuid.New()
	}
	stored := v
	r.vendors[v.ID] = &stored
	return &stored
}

func (r *memoryVendorRepo) Create(ctx context.Context, vendor *domain.Vendor) (*domain.Vendor, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	r.mu.Lock()
	for _, v := range r.vendors {
		if v.OwnerID == vendor.OwnerID {
			r.mu.Unlock()
			return nil, uniqueViolation()
		}
	}
	r.mu.Unlock()
	created := *vendor
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	return r.add(created), nil
}

func (r *memoryVendorRepo) Update(ctx context.Context, id uuid.UUID, fields domain.VendorFields) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if fields.BusinessName != nil {
		v.BusinessName = strings.TrimSpace(*fields.BusinessName)
	}
	if fields.Description != nil {
		v.Description = fields.Description
	}
	if fields.Category != nil {
		if *fields.Category == "" {
			v.Category = nil
		} else {
			v.Category = ptr(*fields.Category)
		}
	}
	if fields.Phone != nil {
		v.Phone = fields.Phone
	}
	copied := *v
	return &copied, nil
}

func (r *memoryVendorRepo) mutate(id uuid.UUID, fn func(v *domain.Vendor)) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	fn(v)
	copied := *v
	return &copied, nil
}

func (r *memoryVendorRepo) SetProfileImage(ctx context.Context, id uuid.UUID, url string) (*domain.Vendor, error) {
	return r.mutate(id, func(v *domain.Vendor) { v.ProfileImageURL = &url })
}

func (r *memoryVendorRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.VendorStatus) (*domain.Vendor, error) {
	r.statusCalled++
	return r.mutate(id, func(v *domain.Vendor) { v.Status = status })
}

func (r *memoryVendorRepo) SetActive(ctx context.Context, id uuid.UUID, active bool) (*domain.Vendor, error) {
	return r.mutate(id, func(v *domain.Vendor) { v.IsActive = active })
}

func (r *memoryVendorRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Vendor, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.vendors[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *v
	return &copied, nil
}

func (r *memoryVendorRepo) FindByOwner(ctx context.Context, ownerID uuid.UUID) (*domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.vendors {
		if v.OwnerID == ownerID {
			copied := *v
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryVendorRepo) Search(ctx context.Context, filter domain.VendorSearchFilter) ([]domain.VendorListItem, error) {
	r.mu.Lock()
	r.lastSearch = filter
	vendors := make([]domain.Vendor, 0, len(r.vendors))
	for _, v := range r.vendors {
		vendors = append(vendors, *v)
	}
	r.mu.Unlock()

	sort.Slice(vendors, func(i, j int) bool { return vendors[i].BusinessName < vendors[j].BusinessName })

	items := make([]domain.VendorListItem, 0)
	for _, v := range vendors {
		if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, v.Status) {
			continue
		}
		if filter.RequireActive && !v.IsActive {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(v.BusinessName), strings.ToLower(filter.Query)) {
			continue
		}
		if filter.Category != "" && (v.Category == nil || !strings.EqualFold(*v.Category, filter.Category)) {
			continue
		}
		item := domain.VendorListItem{Vendor: v}
		if r.sessions != nil {
			if s, err := r.sessions.FindActiveByVendor(ctx, v.ID); err == nil {
				item.Session = s
			}
		}
		if filter.LiveOnly && item.Session == nil {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func containsStatus(list []domain.VendorStatus, status domain.VendorStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func (r *memoryVendorRepo) ListForAdmin(ctx context.Context, filter domain.VendorAdminFilter) ([]domain.Vendor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastAdmin = filter
	out := make([]domain.Vendor, 0)
	for _, v := range r.vendors {
		if filter.Status != nil && v.Status != *filter.Status {
			continue
		}
		out = append(out, *v)
	}
	return out, nil
}

// memoryLiveSessionRepo

type memoryLiveSessionRepo struct {
	mu        sync.Mutex
	vendors   *memoryVendorRepo
	sessions  []*domain.LiveSession
	startErr  error
	listErr   error
	listCalls int
	// beforeLock runs inside StartExclusive before the vendor row is read,
	// standing in for a write that commits just ahead of the lock.
	beforeLock func()
	// duringList runs inside ListLive after the rows have been read.
	duringList func()
}

func newMemoryLiveSessionRepo(vendors *memoryVendorRepo) *memoryLiveSessionRepo {
	repo := &memoryLiveSessionRepo{vendors: vendors}
	if vendors != nil {
		vendors.sessions = repo
	}
	return repo
}

func (r *memoryLiveSessionRepo) StartExclusive(ctx context.Context, session *domain.LiveSession, eligible func(domain.Vendor) error) (*domain.LiveSessionStart, error) {
	if r.startErr != nil {
		return nil, r.startErr
	}
	if r.beforeLock != nil {
		r.beforeLock()
	}
	if r.vendors != nil {
		locked, err := r.vendors.FindByID(ctx, session.VendorID)
		if err != nil {
			return nil, err
		}
		if eligible != nil {
			if err := eligible(*locked); err != nil {
				return nil, err
			}
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	result := &domain.LiveSessionStart{}
	for _, s := range r.sessions {
		if s.VendorID == session.VendorID && s.IsActive {
			s.End(session.StartTime, domain.EndedByVendor)
			replaced := *s
			result.Replaced = &replaced
		}
	}
	stored := *session
	stored.ID = uuid.New()
	stored.IsActive = true
	stored.CreatedAt = session.StartTime
	stored.UpdatedAt = session.StartTime
	r.sessions = append(r.sessions, &stored)
	copied := stored
	result.Session = &copied
	return result, nil
}

func (r *memoryLiveSessionRepo) EndActive(ctx context.Context, vendorID uuid.UUID, at time.Time, by domain.EndedBy) (*domain.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.VendorID == vendorID && s.IsActive {
			s.End(at, by)
			copied := *s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryLiveSessionRepo) ExpireDue(ctx context.Context, now time.Time) ([]domain.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ended []domain.LiveSession
	for _, s := range r.sessions {
		if s.IsActive && s.AutoEndTime != nil && s.AutoEndTime.Before(now) {
			s.End(now, domain.EndedByTimer)
			ended = append(ended, *s)
		}
	}
	return ended, nil
}

func (r *memoryLiveSessionRepo) FindActiveByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.VendorID == vendorID && s.IsActive {
			copied := *s
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryLiveSessionRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, limit, offset int) ([]domain.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.LiveSession
	for i := len(r.sessions) - 1; i >= 0; i-- {
		if r.sessions[i].VendorID == vendorID {
			out = append(out, *r.sessions[i])
		}
	}
	if offset >= len(out) {
		return []domain.LiveSession{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryLiveSessionRepo) ListLive(ctx context.Context, bounds *domain.Bounds) ([]domain.LiveVendor, error) {
	r.mu.Lock()
	r.listCalls++
	if r.listErr != nil {
		r.mu.Unlock()
		return nil, r.listErr
	}
	active := make([]domain.LiveSession, 0)
	for _, s := range r.sessions {
		if s.IsActive {
			active = append(active, *s)
		}
	}
	r.mu.Unlock()
	if r.duringList != nil {
		r.duringList()
	}

	out := make([]domain.LiveVendor, 0, len(active))
	for _, s := range active {
		if s.Latitude == nil || s.Longitude == nil {
			continue
		}
		if bounds != nil && !bounds.Contains(domain.Coordinates{Lat: *s.Latitude, Lng: *s.Longitude}) {
			continue
		}
		row := domain.LiveVendor{Session: s, Vendor: domain.MapVendor{ID: s.VendorID}}
		if r.vendors != nil {
			if v, err := r.vendors.FindByID(ctx, s.VendorID); err == nil {
				row.Vendor.BusinessName = v.BusinessName
				row.Vendor.Category = v.Category
			}
		}
		out = append(out, row)
	}
	return out, nil
}

// insert stores a session as-is, for setting up rows that bypass Start.
func (r *memoryLiveSessionRepo) insert(s domain.LiveSession) *domain.LiveSession {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	stored := s
	r.sessions = append(r.sessions, &stored)
	return &stored
}

func (r *memoryLiveSessionRepo) activeCount(vendorID uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sessions {
		if s.VendorID == vendorID && s.IsActive {
			n++
		}
	}
	return n
}

// memorySettingsRepo

type memorySettingsRepo struct {
	settings domain.PlatformSettings
	getErr   error
	savedBy  uuid.UUID
}

func newMemorySettingsRepo(requireApproval, autoApproval bool) *memorySettingsRepo {
	return &memorySettingsRepo{settings: domain.PlatformSettings{
		RequireVendorApproval:   requireApproval,
		AllowAutoVendorApproval: autoApproval,
	}}
}

func (r *memorySettingsRepo) Get(ctx context.Context) (domain.PlatformSettings, error) {
	if r.getErr != nil {
		return domain.PlatformSettings{}, r.getErr
	}
	return r.settings, nil
}

func (r *memorySettingsRepo) Save(ctx context.Context, settings domain.PlatformSettings, updatedBy uuid.UUID) (domain.PlatformSettings, error) {
	settings.UpdatedBy = &updatedBy
	settings.UpdatedAt = time.Now()
	r.settings = settings
	r.savedBy = updatedBy
	return settings, nil
}

// memoryMapCache

type memoryMapCache struct {
	mu            sync.Mutex
	generation    int64
	items         map[string][]domain.LiveVendor
	getErr        error
	invalidateErr error
	invalidations int
	sets          int
}

func newMemoryMapCache() *memoryMapCache {
	return &memoryMapCache{items: map[string][]domain.LiveVendor{}}
}

func (c *memoryMapCache) Generation(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return 0, c.getErr
	}
	return c.generation, nil
}

func (c *memoryMapCache) Get(ctx context.Context, generation int64, key string) ([]domain.LiveVendor, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	if generation != c.generation {
		return nil, false, nil
	}
	items, ok := c.items[key]
	return items, ok, nil
}

func (c *memoryMapCache) Set(ctx context.Context, generation int64, key string, items []domain.LiveVendor) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return nil
	}
	c.sets++
	c.items[key] = items
	return nil
}

func (c *memoryMapCache) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidations++
	if c.invalidateErr != nil {
		return c.invalidateErr
	}
	c.generation++
	c.items = map[string][]domain.LiveVendor{}
	return nil
}

// recordingPublisher

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.LiveSessionEvent
	err    error
}

func (p *recordingPublisher) PublishLiveSession(ctx context.Context, event domain.LiveSessionEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []domain.LiveSessionEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.LiveSessionEventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

// memoryFavoriteRepo

type memoryFavoriteRepo struct {
	mu        sync.Mutex
	favorites []domain.Favorite
	listErr   error
}

func newMemoryFavoriteRepo() *memoryFavoriteRepo {
	return &memoryFavoriteRepo{}
}

func (r *memoryFavoriteRepo) Add(ctx context.Context, userID, vendorID uuid.UUID) (*domain.Favorite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.favorites {
		if f.UserID == userID && f.VendorID == vendorID {
			return nil, sql.ErrNoRows
		}
	}
	fav := domain.Favorite{ID: uuid.New(), UserID: userID, VendorID: vendorID, CreatedAt: time.Now()}
	r.favorites = append(r.favorites, fav)
	return &fav, nil
}

func (r *memoryFavoriteRepo) Remove(ctx context.Context, userID, vendorID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, f := range r.favorites {
		if f.UserID == userID && f.VendorID == vendorID {
			r.favorites = append(r.favorites[:i], r.favorites[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memoryFavoriteRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.FavoriteListItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.FavoriteListItem
	for _, f := range r.favorites {
		if f.UserID == userID {
			out = append(out, domain.FavoriteListItem{Favorite: f})
		}
	}
	if offset >= len(out) {
		return []domain.FavoriteListItem{}, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memoryFavoriteRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, f := range r.favorites {
		if f.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *memoryFavoriteRepo) CountByVendor(ctx context.Context, vendorID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, f := range r.favorites {
		if f.VendorID == vendorID {
			n++
		}
	}
	return n, nil
}

func (r *memoryFavoriteRepo) ListUserIDsByVendor(ctx context.Context, vendorID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []uuid.UUID
	for _, f := range r.favorites {
		if f.VendorID == vendorID {
			out = append(out, f.UserID)
		}
	}
	return out, nil
}

// memoryReviewRepo

type memoryReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*domain.Review
	order   []uuid.UUID
}

func newMemoryReviewRepo() *memoryReviewRepo {
	return &memoryReviewRepo{reviews: map[uuid.UUID]*domain.Review{}}
}

func (r *memoryReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.reviews {
		if existing.UserID == review.UserID && existing.VendorID == review.VendorID && existing.DeletedAt == nil {
			return nil, uniqueViolation()
		}
	}
	stored := *review
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now().Add(time.Duration(len(r.order)) * time.Second)
	stored.UpdatedAt = stored.CreatedAt
	r.reviews[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	copied := stored
	return &copied, nil
}

func (r *memoryReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *review
	return &copied, nil
}

func (r *memoryReviewRepo) ListByVendor(ctx context.Context, vendorID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Review, 0)
	for _, id := range r.order {
		review := r.reviews[id]
		if review.VendorID != vendorID || review.DeletedAt != nil {
			continue
		}
		if filter.MinRating != nil && review.Rating < *filter.MinRating {
			continue
		}
		if filter.MaxRating != nil && review.Rating > *filter.MaxRating {
			continue
		}
		out = append(out, *review)
	}
	sort.SliceStable(out, func(i, j int) bool {
		var less bool
		if filter.SortField == domain.ReviewSortRating {
			less = out[i].Rating < out[j].Rating
		} else {
			less = out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if filter.SortOrder == domain.SortOrderDesc {
			return !less
		}
		return less
	})
	if filter.Offset >= len(out) {
		return []domain.Review{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *memoryReviewRepo) AggregateByVendor(ctx context.Context, vendorID uuid.UUID) (*domain.ReviewAggregate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	agg := &domain.ReviewAggregate{VendorID: vendorID, RatingCounts: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, review := range r.reviews {
		if review.VendorID != vendorID || review.DeletedAt != nil {
			continue
		}
		agg.TotalReviews++
		agg.RatingCounts[review.Rating]++
		sum += review.Rating
	}
	if agg.TotalReviews > 0 {
		agg.AverageRating = float64(sum) / float64(agg.TotalReviews)
	}
	return agg, nil
}

func (r *memoryReviewRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	review, ok := r.reviews[id]
	if !ok || review.DeletedAt != nil {
		return sql.ErrNoRows
	}
	now := time.Now()
	review.DeletedAt = &now
	review.DeletedBy = &deletedBy
	return nil
}

// memoryNotificationRepo

type memoryNotificationRepo struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (r *memoryNotificationRepo) CreateMany(ctx context.Context, notifications []domain.Notification) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range notifications {
		n.ID = uuid.New()
		n.CreatedAt = time.Now()
		r.items = append(r.items, n)
	}
	return len(notifications), nil
}

func (r *memoryNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, filter domain.NotificationFilter) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Notification, 0)
	for _, n := range r.items {
		if n.UserID != userID || (filter.UnreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *memoryNotificationRepo) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.items {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}
	return count, nil
}

func (r *memoryNotificationRepo) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			if r.items[i].ReadAt == nil {
				r.items[i].ReadAt = &at
			}
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *memoryNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for i := range r.items {
		if r.items[i].UserID == userID && r.items[i].ReadAt == nil {
			r.items[i].ReadAt = &at
			count++
		}
	}
	return count, nil
}

// auth fakes

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uuid.UUID]*domain.User{}}
}

func (r *memoryUserRepo) CreateEmailUser(ctx context.Context, email string, fullName *string, passwordHash, passwordSalt []byte) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return nil, uniqueViolation()
		}
	}
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: append([]byte(nil), passwordHash...),
		PasswordSalt: append([]byte(nil), passwordSalt...),
		CreatedAt:    time.Now(),
	}
	r.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) UpsertGoogleUser(ctx context.Context, email string, fullName *string, imageURL *string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			if u.FullName == nil {
				u.FullName = fullName
			}
			if imageURL != nil {
				u.ImageURL = imageURL
			}
			copied := *u
			return &copied, nil
		}
	}
	user := &domain.User{ID: uuid.New(), Email: email, FullName: fullName, ImageURL: imageURL}
	r.users[user.ID] = user
	copied := *user
	return &copied, nil
}

func (r *memoryUserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *memoryUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	copied := *u
	return &copied, nil
}

type memoryRoleRepo struct {
	mu        sync.Mutex
	roles     map[string]domain.Role
	userRoles map[uuid.UUID][]uuid.UUID
}

func newMemoryRoleRepo() *memoryRoleRepo {
	return &memoryRoleRepo{roles: map[string]domain.Role{}, userRoles: map[uuid.UUID][]uuid.UUID{}}
}

func (r *memoryRoleRepo) GetOrCreateRole(ctx context.Context, name, description string) (*domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.roles[name]
	if !ok {
		role = domain.Role{ID: uuid.New(), Name: name}
		r.roles[name] = role
	}
	return &role, nil
}

func (r *memoryRoleRepo) AssignUserRole(ctx context.Context, userID, roleID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range r.userRoles[userID] {
		if id == roleID {
			return nil
		}
	}
	r.userRoles[userID] = append(r.userRoles[userID], roleID)
	return nil
}

func (r *memoryRoleRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Role
	for _, id := range r.userRoles[userID] {
		for _, role := range r.roles {
			if role.ID == id {
				out = append(out, role)
			}
		}
	}
	return out, nil
}

type memorySessionRepo struct {
	mu       sync.Mutex
	sessions map[string]*domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: map[string]*domain.Session{}}
}

func (r *memorySessionRepo) CreateSession(ctx context.Context, userID uuid.UUID, token string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session := &domain.Session{ID: int64(len(r.sessions) + 1), UserID: userID, Token: token, ExpiresAt: expiresAt, IsActive: true}
	r.sessions[token] = session
	copied := *session
	return &copied, nil
}

func (r *memorySessionRepo) DeactivateSession(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || !session.IsActive {
		return sql.ErrNoRows
	}
	session.IsActive = false
	return nil
}

func (r *memorySessionRepo) FindActiveSession(ctx context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[token]
	if !ok || !session.IsActive {
		return nil, sql.ErrNoRows
	}
	copied := *session
	return &copied, nil
}

// recordingStorage

type recordingStorage struct {
	bucket      string
	objectName  string
	contentType string
	data        []byte
	err         error
}

func (s *recordingStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	s.bucket, s.objectName, s.contentType, s.data = bucket, objectName, contentType, data
	return "http://minio.local/" + bucket + "/" + objectName, nil
}

type recordingMailer struct {
	to       []string
	statuses []domain.VendorStatus
	err      error
}

func (m *recordingMailer) SendVendorStatus(ctx context.Context, email, businessName string, status domain.VendorStatus) error {
	m.to = append(m.to, email)
	m.statuses = append(m.statuses, status)
	return m.err
}

var (
	_ ports.VendorRepository           = (*memoryVendorRepo)(nil)
	_ ports.LiveSessionRepository      = (*memoryLiveSessionRepo)(nil)
	_ ports.PlatformSettingsRepository = (*memorySettingsRepo)(nil)
	_ ports.MapCache                   = (*memoryMapCache)(nil)
	_ ports.LiveSessionPublisher       = (*recordingPublisher)(nil)
	_ ports.FavoriteRepository         = (*memoryFavoriteRepo)(nil)
	_ ports.ReviewRepository           = (*memoryReviewRepo)(nil)
	_ ports.NotificationRepository     = (*memoryNotificationRepo)(nil)
	_ ports.UserRepository             = (*memoryUserRepo)(nil)
	_ ports.RoleRepository             = (*memoryRoleRepo)(nil)
	_ ports.SessionRepository          = (*memorySessionRepo)(nil)
	_ ports.ObjectStorage              = (*recordingStorage)(nil)
	_ ports.VendorMailer               = (*recordingMailer)(nil)
)
