package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	logtest "github.com/sirupsen/logrus/hooks/test"

	"github.com/aqui-app/aqui-api/internal/domain"
	"github.com/aqui-app/aqui-api/internal/media"
)

type vendorFixture struct {
	vendors   *memoryVendorRepo
	sessions  *memoryLiveSessionRepo
	settings  *memorySettingsRepo
	reviews   *memoryReviewRepo
	favorites *memoryFavoriteRepo
	users     *memoryUserRepo
	roles     *memoryRoleRepo
	storage   *recordingStorage
	mailer    *recordingMailer
	live      *LiveSessionService
	now       time.Time
	svc       *VendorService
}

func newVendorFixture(t *testing.T) *vendorFixture {
	t.Helper()
	vendors := newMemoryVendorRepo()
	f := &vendorFixture{
		vendors:   vendors,
		sessions:  newMemoryLiveSessionRepo(vendors),
		settings:  newMemorySettingsRepo(true, false),
		reviews:   newMemoryReviewRepo(),
		favorites: newMemoryFavoriteRepo(),
		users:     newMemoryUserRepo(),
		roles:     newMemoryRoleRepo(),
		storage:   &recordingStorage{},
		mailer:    &recordingMailer{},
		now:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	logger, _ := logtest.NewNullLogger()
	f.live = NewLiveSessionService(LiveSessionDeps{
		Vendors:  f.vendors,
		Sessions: f.sessions,
		Settings: f.settings,
		Logger:   logger,
	})
	f.live.now = func() time.Time { return f.now }
	auth := NewAuthService(f.users, f.roles, newMemorySessionRepo(), nil, "")
	f.svc = NewVendorService(VendorDeps{
		Vendors:   f.vendors,
		Sessions:  f.sessions,
		Settings:  f.settings,
		Reviews:   f.reviews,
		Favorites: f.favorites,
		Users:     f.users,
		Storage:   f.storage,
		Images:    media.NewInspector(1<<20, 0),
		Mailer:    f.mailer,
		Roles:     auth,
		LiveEnder: f.live,
		Logger:    logger,
		Bucket:    "aqui-vendors",
	})
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *vendorFixture) owner(t *testing.T) *domain.User {
	t.Helper()
	user, err := f.users.CreateEmailUser(context.Background(), "owner-"+uuid.NewString()[:8]+"@example.com", nil, nil, nil)
	if err != nil {
		t.Fatalf("create owner: %v", err)
	}
	return user
}

func TestVendorService_CreatePendingAndGrantsRole(t *testing.T) {
	f := newVendorFixture(t)
	owner := f.owner(t)
	ctx := context.Background()

	vendor, err := f.svc.Create(ctx, owner.ID, domain.VendorFields{
		BusinessName: ptr("  Bifana Bros "),
		Category:     ptr(" Street Food "),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if vendor.Status != domain.VendorStatusPending || !vendor.IsActive {
		t.Fatalf("expected pending active vendor, got %s/%v", vendor.Status, vendor.IsActive)
	}
	if vendor.BusinessName != "Bifana Bros" || vendor.Category == nil || *vendor.Category != "street food" {
		t.Fatalf("expected normalized fields, got %q %v", vendor.BusinessName, vendor.Category)
	}
	roles, _ := f.roles.ListByUser(ctx, owner.ID)
	if len(roles) != 1 || roles[0].Name != domain.RoleVendor {
		t.Fatalf("expected vendor role, got %+v", roles)
	}

	if _, err := f.svc.Create(ctx, owner.ID, domain.VendorFields{BusinessName: ptr("Again")}); !errors.Is(err, ErrVendorAlreadyExists) {
		t.Fatalf("expected ErrVendorAlreadyExists, got %v", err)
	}
}

func TestVendorService_CreateValidation(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	if _, err := f.svc.Create(ctx, uuid.New(), domain.VendorFields{BusinessName: ptr("   ")}); !errors.Is(err, ErrVendorValidation) {
		t.Fatalf("expected ErrVendorValidation for blank name, got %v", err)
	}
	long := strings.Repeat("x", maxBusinessNameLength+1)
	if _, err := f.svc.Create(ctx, uuid.New(), domain.VendorFields{BusinessName: &long}); !errors.Is(err, ErrVendorValidation) {
		t.Fatalf("expected ErrVendorValidation for long name, got %v", err)
	}
}

func TestVendorService_UpdateMine(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	vendor := f.vendors.add(domain.Vendor{BusinessName: "Old", Category: ptr("coffee"), Status: domain.VendorStatusApproved, IsActive: true})

	updated, err := f.svc.UpdateMine(ctx, vendor.OwnerID, domain.VendorFields{BusinessName: ptr("New"), Category: ptr("")})
	if err != nil {
		t.Fatalf("UpdateMine returned error: %v", err)
	}
	if updated.BusinessName != "New" || updated.Category != nil {
		t.Fatalf("expected renamed vendor with cleared category, got %+v", updated)
	}

	if _, err := f.svc.UpdateMine(ctx, uuid.New(), domain.VendorFields{BusinessName: ptr("x")}); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendorService_UploadImage(t *testing.T) {
	f := newVendorFixture(t)
	vendor := f.vendors.add(domain.Vendor{BusinessName: "Cart", Status: domain.VendorStatusApproved, IsActive: true})

	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buf.Bytes()

	updated, err := f.svc.UploadImage(context.Background(), vendor.OwnerID, media.Upload{
		Reader:      bytes.NewReader(data),
		Size:        int64(len(data)),
		FileName:    "logo.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("UploadImage returned error: %v", err)
	}
	wantObject := "vendors/" + vendor.ID.String() + "/profile_20240501T120000Z.png"
	if f.storage.objectName != wantObject || f.storage.bucket != "aqui-vendors" {
		t.Fatalf("unexpected object %s/%s", f.storage.bucket, f.storage.objectName)
	}
	if !bytes.Equal(f.storage.data, data) || f.storage.contentType != "image/png" {
		t.Fatalf("expected the PNG to be uploaded as image/png")
	}
	if updated.ProfileImageURL == nil || !strings.HasSuffix(*updated.ProfileImageURL, wantObject) {
		t.Fatalf("unexpected profile image url %v", updated.ProfileImageURL)
	}

	_, err = f.svc.UploadImage(context.Background(), vendor.OwnerID, media.Upload{
		Reader: strings.NewReader("not an image"),
		Size:   12,
	})
	if !errors.Is(err, ErrVendorImage) {
		t.Fatalf("expected ErrVendorImage, got %v", err)
	}
}

func TestVendorService_UploadImageWithoutStorage(t *testing.T) {
	f := newVendorFixture(t)
	f.svc.storage = nil
	vendor := f.vendors.add(domain.Vendor{BusinessName: "Cart", IsActive: true})
	_, err := f.svc.UploadImage(context.Background(), vendor.OwnerID, media.Upload{Reader: strings.NewReader("x"), Size: 1})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
}

func TestVendorService_SearchAppliesVisibility(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	approved := f.vendors.add(domain.Vendor{BusinessName: "Approved", Status: domain.VendorStatusApproved, IsActive: true})
	f.vendors.add(domain.Vendor{BusinessName: "Pending", Status: domain.VendorStatusPending, IsActive: true})
	f.vendors.add(domain.Vendor{BusinessName: "Suspended", Status: domain.VendorStatusApproved, IsActive: false})
	f.sessions.insert(domain.LiveSession{VendorID: approved.ID, StartTime: f.now.Add(-time.Hour), IsActive: true})

	results, limit, offset, err := f.svc.Search(ctx, domain.VendorSearchFilter{Limit: 500})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if limit != 100 || offset != 0 {
		t.Fatalf("expected clamped paging 100/0, got %d/%d", limit, offset)
	}
	if len(results) != 1 || results[0].ID != approved.ID {
		t.Fatalf("expected only the approved vendor, got %+v", results)
	}
	if results[0].LiveStatus != domain.MapStatusOpen || results[0].LiveSessionID == nil {
		t.Fatalf("expected open live status, got %+v", results[0])
	}

	f.settings.settings.AllowAutoVendorApproval = true
	results, _, _, err = f.svc.Search(ctx, domain.VendorSearchFilter{})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("auto approval should expose pending vendors, got %d results", len(results))
	}

	f.settings.settings.RequireVendorApproval = false
	results, _, _, err = f.svc.Search(ctx, domain.VendorSearchFilter{LiveOnly: true})
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].ID != approved.ID {
		t.Fatalf("live only should return the live vendor, got %+v", results)
	}
}

func TestVendorService_Detail(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	vendor := f.vendors.add(domain.Vendor{BusinessName: "Cart", Status: domain.VendorStatusApproved, IsActive: true})
	pending := f.vendors.add(domain.Vendor{BusinessName: "Later", Status: domain.VendorStatusPending, IsActive: true})

	detail, err := f.svc.Detail(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if detail.Status != domain.DetailStatusOffline || detail.Session != nil || detail.TimeRemaining != nil {
		t.Fatalf("expected offline detail, got %+v", detail)
	}

	f.sessions.insert(domain.LiveSession{
		VendorID:    vendor.ID,
		StartTime:   f.now.Add(-time.Hour),
		AutoEndTime: ptr(f.now.Add(20 * time.Minute)),
		IsActive:    true,
	})
	if _, err := f.reviews.Create(ctx, &domain.Review{VendorID: vendor.ID, UserID: uuid.New(), Rating: 4}); err != nil {
		t.Fatalf("seed review: %v", err)
	}
	if _, err := f.favorites.Add(ctx, uuid.New(), vendor.ID); err != nil {
		t.Fatalf("seed favorite: %v", err)
	}

	detail, err = f.svc.Detail(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("Detail returned error: %v", err)
	}
	if detail.Status != domain.DetailStatusClosingSoon {
		t.Fatalf("expected closing_soon with 20 minutes left, got %s", detail.Status)
	}
	if detail.TimeRemaining == nil || *detail.TimeRemaining != 20 {
		t.Fatalf("expected 20 minutes remaining, got %v", detail.TimeRemaining)
	}
	if detail.Reviews.TotalReviews != 1 || detail.FavoritesCount != 1 {
		t.Fatalf("expected review and favorite counts, got %+v", detail)
	}

	if _, err := f.svc.Detail(ctx, pending.ID); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("pending vendor should be hidden, got %v", err)
	}
	if _, err := f.svc.Detail(ctx, uuid.New()); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendorService_ApproveAndRejectMailOwner(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	owner := f.owner(t)
	vendor := f.vendors.add(domain.Vendor{OwnerID: owner.ID, BusinessName: "Cart", Status: domain.VendorStatusPending, IsActive: true})

	approved, err := f.svc.Approve(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("Approve returned error: %v", err)
	}
	if approved.Status != domain.VendorStatusApproved {
		t.Fatalf("expected approved, got %s", approved.Status)
	}

	if _, err := f.live.Start(ctx, owner.ID, lisbonInput()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	f.mailer.err = errBoom
	rejected, err := f.svc.Reject(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("mail failure must not fail Reject, got %v", err)
	}
	if rejected.Status != domain.VendorStatusRejected {
		t.Fatalf("expected rejected, got %s", rejected.Status)
	}
	if f.sessions.activeCount(vendor.ID) != 0 {
		t.Fatalf("rejection should end the running session")
	}
	if len(f.mailer.to) != 2 || f.mailer.to[0] != owner.Email {
		t.Fatalf("expected two mails to the owner, got %v", f.mailer.to)
	}
	if f.mailer.statuses[1] != domain.VendorStatusRejected {
		t.Fatalf("expected rejection mail, got %v", f.mailer.statuses)
	}

	if _, err := f.svc.Approve(ctx, uuid.New()); !errors.Is(err, ErrVendorNotFound) {
		t.Fatalf("expected ErrVendorNotFound, got %v", err)
	}
}

func TestVendorService_SuspendEndsSessionAndReinstate(t *testing.T) {
	f := newVendorFixture(t)
	ctx := context.Background()
	vendor := f.vendors.add(domain.Vendor{BusinessName: "Cart", Status: domain.VendorStatusApproved, IsActive: true})

	if _, err := f.svc.Suspend(ctx, vendor.ID); err != nil {
		t.Fatalf("Suspend without session returned error: %v", err)
	}
	if _, err := f.svc.Reinstate(ctx, vendor.ID); err != nil {
		t.Fatalf("Reinstate returned error: %v", err)
	}
	if _, err := f.live.Start(ctx, vendor.OwnerID, lisbonInput()); err != nil {
		t.Fatalf("Start returned error: %v", err)
	}

	suspended, err := f.svc.Suspend(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("Suspend returned error: %v", err)
	}
	if suspended.IsActive {
		t.Fatalf("expected vendor to be inactive")
	}
	if f.sessions.activeCount(vendor.ID) != 0 {
		t.Fatalf("suspension should end the running session")
	}
	if _, err := f.live.Start(ctx, vendor.OwnerID, lisbonInput()); !errors.Is(err, ErrLiveSessionForbidden) {
		t.Fatalf("suspended vendor must not go live, got %v", err)
	}
}

func TestVendorService_ListForAdmin(t *testing.T) {
	f := newVendorFixture(t)
	f.vendors.add(domain.Vendor{BusinessName: "A", Status: domain.VendorStatusPending, IsActive: true})
	f.vendors.add(domain.Vendor{BusinessName: "B", Status: domain.VendorStatusApproved, IsActive: true})

	pending := domain.VendorStatusPending
	vendors, limit, _, err := f.svc.ListForAdmin(context.Background(), domain.VendorAdminFilter{Status: &pending})
	if err != nil {
		t.Fatalf("ListForAdmin returned error: %v", err)
	}
	if limit != 50 || len(vendors) != 1 || vendors[0].BusinessName != "A" {
		t.Fatalf("unexpected admin list %+v (limit %d)", vendors, limit)
	}

	bogus := domain.VendorStatus("archived")
	if _, _, _, err := f.svc.ListForAdmin(context.Background(), domain.VendorAdminFilter{Status: &bogus}); !errors.Is(err, ErrVendorValidation) {
		t.Fatalf("expected ErrVendorValidation, got %v", err)
	}
}

type failingEnder struct{ calls int }

func (e *failingEnder) ForceEnd(ctx context.Context, vendorID uuid.UUID) (*domain.LiveSession, error) {
	e.calls++
	return nil, errBoom
}

func TestVendorService_SuspendStandsWhenForceEndFails(t *testing.T) {
	vendors := newMemoryVendorRepo()
	vendor := vendors.add(domain.Vendor{BusinessName: "Cart", Status: domain.VendorStatusApproved, IsActive: true})
	logger, hook := logtest.NewNullLogger()
	ender := &failingEnder{}
	svc := NewVendorService(VendorDeps{Vendors: vendors, LiveEnder: ender, Logger: logger})

	suspended, err := svc.Suspend(context.Background(), vendor.ID)
	if err != nil {
		t.Fatalf("Suspend must report the committed suspension, got %v", err)
	}
	if suspended == nil || suspended.IsActive {
		t.Fatalf("expected inactive vendor, got %+v", suspended)
	}
	if ender.calls != 1 {
		t.Fatalf("expected one force end attempt, got %d", ender.calls)
	}
	entry := hook.LastEntry()
	if entry == nil || entry.Message != "force end after suspension failed" {
		t.Fatalf("expected force end failure to be logged, got %v", entry)
	}
}
