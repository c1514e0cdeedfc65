package shipments

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/internal/memberships"
	needsrepo "github.com/needlink/needlink-backend/internal/needs"
	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

const testOpenLimit = 3

type fixture struct {
	conn    *gorm.DB
	service Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	tables := []any{
		&models.User{}, &models.Poi{}, &models.PoiMembership{},
		&models.Goods{}, &models.Need{}, &models.Shipment{},
	}
	if err := conn.AutoMigrate(tables...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	resolver, err := memberships.NewResolver(memberships.NewRepository(conn))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	policy, err := authz.ShipmentsPolicy(resolver)
	if err != nil {
		t.Fatalf("shipments policy: %v", err)
	}
	svc, err := NewService(NewRepository(conn), needsrepo.NewRepository(conn), policy, db.NewFromConn(conn), testOpenLimit, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{conn: conn, service: svc}
}

func (f *fixture) seedUser(t *testing.T) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("user_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "User",
		IsActive:     true,
	}
	if err := f.conn.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (f *fixture) seedNeed(t *testing.T, status enums.NeedStatus) (*models.Need, *models.User) {
	t.Helper()
	owner := f.seedUser(t)
	poi := &models.Poi{ID: uuid.New(), Name: "Shelter", CreatedBy: owner.ID}
	if err := f.conn.Create(poi).Error; err != nil {
		t.Fatalf("create poi: %v", err)
	}
	good := &models.Goods{ID: uuid.New(), PoiID: poi.ID, Name: "Blankets", CreatedBy: owner.ID}
	if err := f.conn.Create(good).Error; err != nil {
		t.Fatalf("create good: %v", err)
	}
	need := &models.Need{
		ID:        uuid.New(),
		GoodID:    good.ID,
		PoiID:     poi.ID,
		Quantity:  decimal.NewFromInt(10),
		Unit:      enums.UnitPieces,
		DueTime:   time.Now().Add(72 * time.Hour),
		Status:    status,
		CreatedBy: owner.ID,
	}
	if err := f.conn.Create(need).Error; err != nil {
		t.Fatalf("create need: %v", err)
	}
	return need, owner
}

func (f *fixture) grant(t *testing.T, member, poi uuid.UUID, role enums.RoleGroup) {
	t.Helper()
	membership := &models.PoiMembership{
		ID:        uuid.New(),
		MemberID:  member,
		PoiID:     poi,
		Role:      role,
		IsActive:  true,
		CreatedBy: member,
	}
	if err := f.conn.Create(membership).Error; err != nil {
		t.Fatalf("create membership: %v", err)
	}
}

func (f *fixture) reloadNeed(t *testing.T, id uuid.UUID) *models.Need {
	t.Helper()
	var need models.Need
	if err := f.conn.First(&need, "id = ?", id).Error; err != nil {
		t.Fatalf("reload need: %v", err)
	}
	return &need
}

func TestPledgeDisablesNeed(t *testing.T) {
	f := newFixture(t)
	need, _ := f.seedNeed(t, enums.NeedStatusActive)
	volunteer := f.seedUser(t)

	dto, err := f.service.Create(context.Background(), &auth.Actor{ID: volunteer.ID}, need.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}
	if dto.Status != enums.ShipmentStatusInProgress {
		t.Fatalf("expected in progress, got %s", dto.Status)
	}
	if dto.CreatedBy != volunteer.ID {
		t.Fatalf("expected creator %s, got %s", volunteer.ID, dto.CreatedBy)
	}
	if got := f.reloadNeed(t, need.ID); got.Status != enums.NeedStatusDisabled {
		t.Fatalf("expected need disabled after pledge, got %s", got.Status)
	}
}

func TestPledgeRejectsInactiveNeed(t *testing.T) {
	f := newFixture(t)
	volunteer := f.seedUser(t)
	actor := &auth.Actor{ID: volunteer.ID}

	for _, status := range []enums.NeedStatus{enums.NeedStatusDisabled, enums.NeedStatusFulfilled} {
		need, _ := f.seedNeed(t, status)
		_, err := f.service.Create(context.Background(), actor, need.ID)
		if err == nil {
			t.Fatalf("expected rejection for %s need", status)
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
			t.Fatalf("expected state conflict for %s need, got %v", status, err)
		}
	}

	var count int64
	if err := f.conn.Model(&models.Shipment{}).Count(&count).Error; err != nil {
		t.Fatalf("count shipments: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no shipment rows, got %d", count)
	}
}

func TestPledgeEnforcesOpenQuota(t *testing.T) {
	f := newFixture(t)
	volunteer := f.seedUser(t)
	actor := &auth.Actor{ID: volunteer.ID}
	ctx := context.Background()

	for i := 0; i < testOpenLimit; i++ {
		need, _ := f.seedNeed(t, enums.NeedStatusActive)
		if _, err := f.service.Create(ctx, actor, need.ID); err != nil {
			t.Fatalf("pledge %d: %v", i, err)
		}
	}

	over, _ := f.seedNeed(t, enums.NeedStatusActive)
	_, err := f.service.Create(ctx, actor, over.ID)
	if err == nil {
		t.Fatal("expected quota rejection")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeQuotaExceeded {
		t.Fatalf("expected quota exceeded, got %v", err)
	}

	// The rejected pledge must leave no trace: no row, need still active.
	var count int64
	if err := f.conn.Model(&models.Shipment{}).Where("created_by = ?", volunteer.ID).Count(&count).Error; err != nil {
		t.Fatalf("count shipments: %v", err)
	}
	if count != testOpenLimit {
		t.Fatalf("expected %d shipments, got %d", testOpenLimit, count)
	}
	if got := f.reloadNeed(t, over.ID); got.Status != enums.NeedStatusActive {
		t.Fatalf("expected need to stay active, got %s", got.Status)
	}
}

func TestDoneShipmentsFreeQuota(t *testing.T) {
	f := newFixture(t)
	volunteer := f.seedUser(t)
	actor := &auth.Actor{ID: volunteer.ID}
	ctx := context.Background()

	var first *ShipmentDTO
	for i := 0; i < testOpenLimit; i++ {
		need, _ := f.seedNeed(t, enums.NeedStatusActive)
		dto, err := f.service.Create(ctx, actor, need.ID)
		if err != nil {
			t.Fatalf("pledge %d: %v", i, err)
		}
		if first == nil {
			first = dto
		}
	}

	err := f.conn.Model(&models.Shipment{}).
		Where("id = ?", first.ID).
		Update("status", enums.ShipmentStatusDone).Error
	if err != nil {
		t.Fatalf("complete shipment: %v", err)
	}

	need, _ := f.seedNeed(t, enums.NeedStatusActive)
	if _, err := f.service.Create(ctx, actor, need.ID); err != nil {
		t.Fatalf("expected pledge to pass after freeing quota: %v", err)
	}
}

func TestMarkDoneFulfillsNeedAndCascades(t *testing.T) {
	f := newFixture(t)
	need, owner := f.seedNeed(t, enums.NeedStatusActive)
	f.grant(t, owner.ID, need.PoiID, enums.RoleGroupPoiAdmin)
	volunteer := f.seedUser(t)
	ctx := context.Background()

	dto, err := f.service.Create(ctx, &auth.Actor{ID: volunteer.ID}, need.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}
	sibling := &models.Shipment{
		ID:        uuid.New(),
		NeedID:    need.ID,
		Status:    enums.ShipmentStatusToDo,
		CreatedBy: volunteer.ID,
	}
	if err := f.conn.Create(sibling).Error; err != nil {
		t.Fatalf("create sibling: %v", err)
	}

	admin := &auth.Actor{ID: owner.ID}
	if err := f.service.MarkDone(ctx, admin, dto.ID); err != nil {
		t.Fatalf("mark done: %v", err)
	}

	assertState := func() {
		t.Helper()
		if got := f.reloadNeed(t, need.ID); got.Status != enums.NeedStatusFulfilled {
			t.Fatalf("expected fulfilled need, got %s", got.Status)
		}
		for _, id := range []uuid.UUID{dto.ID, sibling.ID} {
			var shipment models.Shipment
			if err := f.conn.First(&shipment, "id = ?", id).Error; err != nil {
				t.Fatalf("reload shipment: %v", err)
			}
			if shipment.Status != enums.ShipmentStatusDone {
				t.Fatalf("expected done, got %s", shipment.Status)
			}
		}
	}
	assertState()

	// Completing again must change nothing.
	if err := f.service.MarkDone(ctx, admin, dto.ID); err != nil {
		t.Fatalf("second mark done: %v", err)
	}
	assertState()
}

func TestMarkDoneDeniedToCreator(t *testing.T) {
	f := newFixture(t)
	need, _ := f.seedNeed(t, enums.NeedStatusActive)
	volunteer := f.seedUser(t)
	ctx := context.Background()

	actor := &auth.Actor{ID: volunteer.ID}
	dto, err := f.service.Create(ctx, actor, need.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}

	err = f.service.MarkDone(ctx, actor, dto.ID)
	if err == nil {
		t.Fatal("expected creator to be denied")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	if got := f.reloadNeed(t, need.ID); got.Status != enums.NeedStatusDisabled {
		t.Fatalf("expected need to stay disabled, got %s", got.Status)
	}
}

func TestMarkDoneAllowedForStaff(t *testing.T) {
	f := newFixture(t)
	need, _ := f.seedNeed(t, enums.NeedStatusActive)
	volunteer := f.seedUser(t)
	staff := f.seedUser(t)
	ctx := context.Background()

	dto, err := f.service.Create(ctx, &auth.Actor{ID: volunteer.ID}, need.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}

	if err := f.service.MarkDone(ctx, &auth.Actor{ID: staff.ID, IsStaff: true}, dto.ID); err != nil {
		t.Fatalf("staff mark done: %v", err)
	}
	if got := f.reloadNeed(t, need.ID); got.Status != enums.NeedStatusFulfilled {
		t.Fatalf("expected fulfilled need, got %s", got.Status)
	}
}

func TestListMineOrdersOpenFirst(t *testing.T) {
	f := newFixture(t)
	volunteer := f.seedUser(t)
	actor := &auth.Actor{ID: volunteer.ID}
	ctx := context.Background()

	needA, _ := f.seedNeed(t, enums.NeedStatusActive)
	needB, _ := f.seedNeed(t, enums.NeedStatusActive)

	done, err := f.service.Create(ctx, actor, needA.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}
	if err := f.conn.Model(&models.Shipment{}).Where("id = ?", done.ID).Update("status", enums.ShipmentStatusDone).Error; err != nil {
		t.Fatalf("complete shipment: %v", err)
	}
	open, err := f.service.Create(ctx, actor, needB.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}

	mine, err := f.service.ListMine(ctx, actor)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected two shipments, got %d", len(mine))
	}
	if mine[0].ID != open.ID || mine[1].ID != done.ID {
		t.Fatalf("expected open shipment first, got %v then %v", mine[0].Status, mine[1].Status)
	}
}

func TestListScopedToAuthorizedPois(t *testing.T) {
	f := newFixture(t)
	need, owner := f.seedNeed(t, enums.NeedStatusActive)
	f.grant(t, owner.ID, need.PoiID, enums.RoleGroupPoiUser)
	volunteer := f.seedUser(t)
	outsider := f.seedUser(t)
	ctx := context.Background()

	if _, err := f.service.Create(ctx, &auth.Actor{ID: volunteer.ID}, need.ID); err != nil {
		t.Fatalf("pledge: %v", err)
	}

	visible, err := f.service.List(ctx, &auth.Actor{ID: owner.ID})
	if err != nil {
		t.Fatalf("list as member: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("expected one shipment for member, got %d", len(visible))
	}

	hidden, err := f.service.List(ctx, &auth.Actor{ID: outsider.ID})
	if err != nil {
		t.Fatalf("list as outsider: %v", err)
	}
	if len(hidden) != 0 {
		t.Fatalf("expected empty list for outsider, got %d", len(hidden))
	}
}

func TestConcurrentPledgesRespectQuota(t *testing.T) {
	f := newFixture(t)
	// Shared-cache sqlite writers conflict instead of queueing; a single
	// pooled connection lines the racing transactions up the way
	// serializable postgres transactions would.
	sqlDB, err := f.conn.DB()
	if err != nil {
		t.Fatalf("sql db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	volunteer := f.seedUser(t)
	actor := &auth.Actor{ID: volunteer.ID}

	const pledges = testOpenLimit + 2
	needIDs := make([]uuid.UUID, 0, pledges)
	for i := 0; i < pledges; i++ {
		need, _ := f.seedNeed(t, enums.NeedStatusActive)
		needIDs = append(needIDs, need.ID)
	}

	errs := make([]error, pledges)
	var wg sync.WaitGroup
	for i, needID := range needIDs {
		wg.Add(1)
		go func(i int, needID uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.service.Create(context.Background(), actor, needID)
		}(i, needID)
	}
	wg.Wait()

	admitted, rejected := 0, 0
	for _, err := range errs {
		if err == nil {
			admitted++
			continue
		}
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeQuotaExceeded {
			t.Fatalf("unexpected pledge error: %v", err)
		}
		rejected++
	}
	if admitted != testOpenLimit || rejected != pledges-testOpenLimit {
		t.Fatalf("expected %d admitted / %d rejected, got %d / %d",
			testOpenLimit, pledges-testOpenLimit, admitted, rejected)
	}

	// The quota invariant must hold after the dust settles.
	var open int64
	if err := f.conn.Model(&models.Shipment{}).
		Where("created_by = ? AND status IN ?", volunteer.ID, enums.OpenShipmentStatuses).
		Count(&open).Error; err != nil {
		t.Fatalf("count open shipments: %v", err)
	}
	if open != int64(testOpenLimit) {
		t.Fatalf("quota invariant violated: %d open shipments with limit %d", open, testOpenLimit)
	}
}

func TestMarkDoneDeniedAfterMembershipDeactivated(t *testing.T) {
	f := newFixture(t)
	need, owner := f.seedNeed(t, enums.NeedStatusActive)
	f.grant(t, owner.ID, need.PoiID, enums.RoleGroupPoiAdmin)
	volunteer := f.seedUser(t)
	ctx := context.Background()

	dto, err := f.service.Create(ctx, &auth.Actor{ID: volunteer.ID}, need.ID)
	if err != nil {
		t.Fatalf("pledge: %v", err)
	}

	// The admin loses their membership before completing the shipment.
	if err := f.conn.Model(&models.PoiMembership{}).
		Where("member_id = ? AND poi_id = ?", owner.ID, need.PoiID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate membership: %v", err)
	}

	err = f.service.MarkDone(ctx, &auth.Actor{ID: owner.ID}, dto.ID)
	if err == nil {
		t.Fatal("expected revoked member to be denied")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	var shipment models.Shipment
	if err := f.conn.First(&shipment, "id = ?", dto.ID).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if shipment.Status != enums.ShipmentStatusInProgress {
		t.Fatalf("expected shipment untouched, got %s", shipment.Status)
	}
	if got := f.reloadNeed(t, need.ID); got.Status != enums.NeedStatusDisabled {
		t.Fatalf("expected need to stay disabled, got %s", got.Status)
	}
}
