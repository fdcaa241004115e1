package testutil

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"depotChangeManagement/models"
	"depotChangeManagement/repository"
)

// World is a small seeded dataset: one trucking company, two shipping lines,
// the platform, three synced depots plus one unsynced depot, and one AVAILABLE container at D1.
type World struct {
	Trucking      models.Organization
	OtherTrucking models.Organization
	ShippingLine  models.Organization
	OtherLine     models.Organization
	Platform      models.Organization

	Dispatcher      models.Actor
	OtherDispatcher models.Actor
	Carrier         models.Actor
	OtherCarrier    models.Actor
	Admin           models.Actor

	D1, D2, D3, Unsynced models.Depot

	Container models.Container
}

// Fee matrix seeded by Seed.
const (
	FeeD1D2 int64 = 350000
	FeeD1D3 int64 = 0
)

// Seed populates d with a World. D1→D2 costs FeeD1D2, D1→D3 is free, D2→D1 has no row.
func Seed(t *testing.T, d *sql.DB) *World {
	t.Helper()
	ctx := context.Background()
	users := repository.NewUserRepository(d)
	depots := repository.NewDepotRepository(d)

	w := &World{
		Trucking:      models.Organization{Name: "Vận tải Sài Gòn", Kind: models.OrganizationTrucking},
		OtherTrucking: models.Organization{Name: "Vận tải Hải Phòng", Kind: models.OrganizationTrucking},
		ShippingLine:  models.Organization{Name: "Hãng tàu Biển Đông", Kind: models.OrganizationShippingLine},
		OtherLine:     models.Organization{Name: "Hãng tàu Thái Bình Dương", Kind: models.OrganizationShippingLine},
		Platform:      models.Organization{Name: "Nền tảng", Kind: models.OrganizationPlatform},
	}
	for _, o := range []*models.Organization{&w.Trucking, &w.OtherTrucking, &w.ShippingLine, &w.OtherLine, &w.Platform} {
		if err := users.CreateOrganization(ctx, o); err != nil {
			t.Fatalf("seed organization %s: %v", o.Name, err)
		}
	}

	mkUser := func(username string, role models.Role, org models.Organization) models.Actor {
		u := models.User{Username: username, Role: role, OrganizationID: org.ID}
		if err := users.Create(ctx, &u); err != nil {
			t.Fatalf("seed user %s: %v", username, err)
		}
		return models.Actor{UserID: u.ID, Username: u.Username, Role: role, OrgID: org.ID, OrgName: org.Name}
	}
	w.Dispatcher = mkUser("dispatcher1", models.RoleDispatcher, w.Trucking)
	w.OtherDispatcher = mkUser("dispatcher2", models.RoleDispatcher, w.OtherTrucking)
	w.Carrier = mkUser("carrier1", models.RoleCarrierAdmin, w.ShippingLine)
	w.OtherCarrier = mkUser("carrier2", models.RoleCarrierAdmin, w.OtherLine)
	w.Admin = mkUser("admin", models.RolePlatformAdmin, w.Platform)

	w.D1 = models.Depot{Name: "Depot Cát Lái", Address: "1295 Nguyễn Thị Định, TP.HCM", Lat: 10.7626, Lng: 106.7880}
	w.D2 = models.Depot{Name: "Depot Phước Long", Address: "Đường Nguyễn Văn Quỳ, TP.HCM", Lat: 10.7395, Lng: 106.7447}
	w.D3 = models.Depot{Name: "Depot Sóng Thần", Address: "KCN Sóng Thần, Bình Dương", Lat: 10.8971, Lng: 106.7626}
	w.Unsynced = models.Depot{Name: "Depot Chưa Đồng Bộ", Address: "Long An", Lat: 10.6, Lng: 106.4}
	for _, dp := range []*models.Depot{&w.D1, &w.D2, &w.D3, &w.Unsynced} {
		if err := depots.Create(ctx, dp); err != nil {
			t.Fatalf("seed depot %s: %v", dp.Name, err)
		}
	}
	now := time.Now()
	for _, dp := range []models.Depot{w.D1, w.D2, w.D3} {
		if err := depots.MarkSynced(ctx, dp.ID, now); err != nil {
			t.Fatalf("sync depot %s: %v", dp.Name, err)
		}
	}
	dist := 5.2
	for _, e := range []models.FeeMatrixEntry{
		{OriginDepotID: w.D1.ID, DestinationDepotID: w.D2.ID, Fee: FeeD1D2, DistanceKm: &dist},
		{OriginDepotID: w.D1.ID, DestinationDepotID: w.D3.ID, Fee: FeeD1D3},
		{OriginDepotID: w.D1.ID, DestinationDepotID: w.Unsynced.ID, Fee: 100000},
	} {
		if err := depots.UpsertFee(ctx, e); err != nil {
			t.Fatalf("seed fee: %v", err)
		}
	}

	w.Container = w.NewContainer(t, d, "MSCU1234567", w.ShippingLine.ID)
	return w
}

// NewContainer adds an AVAILABLE container at D1 owned by the trucking company.
// An empty shippingLineID leaves the approving organization unassigned.
func (w *World) NewContainer(t *testing.T, d *sql.DB, number, shippingLineID string) models.Container {
	t.Helper()
	lat, lng := w.D1.Lat, w.D1.Lng
	c := models.Container{
		ContainerNumber: number,
		OrganizationID:  w.Trucking.ID,
		ShippingLineID:  shippingLineID,
		DepotID:         w.D1.ID,
		DropOffAddress:  w.D1.Address,
		Lat:             &lat,
		Lng:             &lng,
	}
	if err := repository.NewContainerRepository(d).Create(context.Background(), &c); err != nil {
		t.Fatalf("seed container %s: %v", number, err)
	}
	return c
}

// SetContainerStatus forces a container into status, bypassing the lifecycle.
func SetContainerStatus(t *testing.T, d *sql.DB, containerID string, status models.ContainerStatus) {
	t.Helper()
	if _, err := d.Exec(`UPDATE containers SET status = $1 WHERE id = $2`, string(status), containerID); err != nil {
		t.Fatalf("set container status: %v", err)
	}
}

// CountRows returns the number of rows in table matching an optional where clause.
func CountRows(t *testing.T, d *sql.DB, table, where string, args ...any) int {
	t.Helper()
	q := "SELECT COUNT(1) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := d.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

// DropTable simulates a broken store for best-effort writers.
func DropTable(t *testing.T, d *sql.DB, table string) {
	t.Helper()
	if _, err := d.Exec("DROP TABLE " + table); err != nil {
		t.Fatalf("drop %s: %v", table, err)
	}
}
