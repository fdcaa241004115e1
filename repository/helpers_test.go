package repository

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"depotChangeManagement/internal/db"
	"depotChangeManagement/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	d, err := db.Open(db.DriverSQLite, "file:"+name+"?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = d.Close() })
	return d
}

type fixture struct {
	trucking     models.Organization
	shippingLine models.Organization
	origin       models.Depot
	destination  models.Depot
	container    models.Container
}

// seed creates two organizations, two depots and one AVAILABLE container.
func seed(t *testing.T, d *sql.DB) fixture {
	t.Helper()
	ctx := context.Background()
	users := NewUserRepository(d)
	depots := NewDepotRepository(d)
	containers := NewContainerRepository(d)

	f := fixture{
		trucking:     models.Organization{Name: "Vận tải Sài Gòn", Kind: models.OrganizationTrucking},
		shippingLine: models.Organization{Name: "Hãng tàu Biển Đông", Kind: models.OrganizationShippingLine},
		origin:       models.Depot{Name: "Depot A", Address: "1 Nguyễn Tất Thành", Lat: 10.76, Lng: 106.70},
		destination:  models.Depot{Name: "Depot B", Address: "2 Mai Chí Thọ", Lat: 10.78, Lng: 106.75},
	}
	if err := users.CreateOrganization(ctx, &f.trucking); err != nil {
		t.Fatalf("create trucking org: %v", err)
	}
	if err := users.CreateOrganization(ctx, &f.shippingLine); err != nil {
		t.Fatalf("create shipping line: %v", err)
	}
	if err := depots.Create(ctx, &f.origin); err != nil {
		t.Fatalf("create origin depot: %v", err)
	}
	if err := depots.Create(ctx, &f.destination); err != nil {
		t.Fatalf("create destination depot: %v", err)
	}
	f.container = models.Container{
		ContainerNumber: "MSCU1234567",
		OrganizationID:  f.trucking.ID,
		ShippingLineID:  f.shippingLine.ID,
		DepotID:         f.origin.ID,
		DropOffAddress:  f.origin.Address,
	}
	if err := containers.Create(ctx, &f.container); err != nil {
		t.Fatalf("create container: %v", err)
	}
	return f
}

func newRequest(f fixture, created time.Time) *models.CodRequest {
	return &models.CodRequest{
		ContainerID:          f.container.ID,
		RequestingOrgID:      f.trucking.ID,
		ApprovingOrgID:       f.shippingLine.ID,
		RequestedDepotID:     f.destination.ID,
		RequestedBy:          "dispatcher1",
		OriginalDepotAddress: f.origin.Address,
		Reason:               "gần kho khách hàng",
		Fee:                  500000,
		CreatedAt:            created,
	}
}
