package goods

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/needlink/needlink-backend/internal/authz"
	"github.com/needlink/needlink-backend/internal/memberships"
	"github.com/needlink/needlink-backend/pkg/auth"
	"github.com/needlink/needlink-backend/pkg/db/models"
	"github.com/needlink/needlink-backend/pkg/enums"
	pkgerrors "github.com/needlink/needlink-backend/pkg/errors"
)

type fixture struct {
	conn    *gorm.DB
	service Service
	policy  authz.Policy
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
	if err := conn.AutoMigrate(&models.User{}, &models.Poi{}, &models.PoiMembership{}, &models.Goods{}); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}

	resolver, err := memberships.NewResolver(memberships.NewRepository(conn))
	if err != nil {
		t.Fatalf("new resolver: %v", err)
	}
	policy, err := authz.GoodsPolicy(resolver)
	if err != nil {
		t.Fatalf("goods policy: %v", err)
	}
	svc, err := NewService(NewRepository(conn), policy)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return &fixture{conn: conn, service: svc, policy: policy}
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

func (f *fixture) seedPoi(t *testing.T, createdBy uuid.UUID, name string) *models.Poi {
	t.Helper()
	poi := &models.Poi{ID: uuid.New(), Name: name, CreatedBy: createdBy}
	if err := f.conn.Create(poi).Error; err != nil {
		t.Fatalf("create poi: %v", err)
	}
	return poi
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

func TestCreateGoodsRequiresMembershipAtSubmittedPoi(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t)
	memberPoi := f.seedPoi(t, user.ID, "Shelter X")
	strangerPoi := f.seedPoi(t, user.ID, "Shelter Y")
	f.grant(t, user.ID, memberPoi.ID, enums.RoleGroupPoiAdmin)

	actor := &auth.Actor{ID: user.ID}
	ctx := context.Background()

	dto, err := f.service.Create(ctx, actor, CreateGoodsInput{PoiID: memberPoi.ID, Name: "Blankets"})
	if err != nil {
		t.Fatalf("create at member poi: %v", err)
	}
	if dto.PoiID != memberPoi.ID || dto.Name != "Blankets" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	// A crafted request naming an unauthorized poi is rejected at write time.
	_, err = f.service.Create(ctx, actor, CreateGoodsInput{PoiID: strangerPoi.ID, Name: "Water"})
	if err == nil {
		t.Fatal("expected forbidden for unauthorized poi")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}

	var count int64
	if err := f.conn.Model(&models.Goods{}).Where("poi_id = ?", strangerPoi.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("rejected create must not write a row")
	}
}

func TestCreateGoodsDeniedForPoiUserRole(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t)
	poi := f.seedPoi(t, user.ID, "Shelter")
	f.grant(t, user.ID, poi.ID, enums.RoleGroupPoiUser)

	_, err := f.service.Create(context.Background(), &auth.Actor{ID: user.ID}, CreateGoodsInput{PoiID: poi.ID, Name: "Blankets"})
	if err == nil {
		t.Fatal("poi user role lacks add_goods")
	}
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", err)
	}
}

func TestSelectablePoiSetExcludesUnauthorized(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t)
	memberPoi := f.seedPoi(t, user.ID, "Shelter X")
	f.seedPoi(t, user.ID, "Shelter Y")
	f.grant(t, user.ID, memberPoi.ID, enums.RoleGroupPoiAdmin)

	ok, err := f.policy.CanCreateAnywhere(context.Background(), &auth.Actor{ID: user.ID})
	if err != nil || !ok {
		t.Fatalf("expected member to pass the create gate, got ok=%v err=%v", ok, err)
	}

	scope, err := f.policy.ViewScope(context.Background(), &auth.Actor{ID: user.ID})
	if err != nil {
		t.Fatalf("view scope: %v", err)
	}
	if len(scope) != 1 || scope[0] != memberPoi.ID {
		t.Fatalf("expected selectable set limited to member poi, got %v", scope)
	}
}

func TestListGoodsScopedToAuthorizedPois(t *testing.T) {
	f := newFixture(t)
	admin := f.seedUser(t)
	visible := f.seedPoi(t, admin.ID, "Shelter X")
	hidden := f.seedPoi(t, admin.ID, "Shelter Y")
	f.grant(t, admin.ID, visible.ID, enums.RoleGroupPoiAdmin)

	for _, seed := range []struct {
		poi  uuid.UUID
		name string
	}{
		{visible.ID, "Blankets"},
		{hidden.ID, "Water"},
	} {
		item := &models.Goods{ID: uuid.New(), PoiID: seed.poi, Name: seed.name, CreatedBy: admin.ID}
		if err := f.conn.Create(item).Error; err != nil {
			t.Fatalf("seed goods: %v", err)
		}
	}

	rows, err := f.service.List(context.Background(), &auth.Actor{ID: admin.ID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(rows) != 1 || rows[0].Name != "Blankets" {
		t.Fatalf("expected only authorized poi's goods, got %+v", rows)
	}

	// Unauthenticated listings render empty, never an error.
	rows, err = f.service.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("unauthenticated list: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty list, got %+v", rows)
	}
}
