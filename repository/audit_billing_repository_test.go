package repository

import (
	"context"
	"testing"
	"time"

	"depotChangeManagement/models"
)

func TestAuditRepository_AppendAndList(t *testing.T) {
	d := openTestDB(t)
	repo := NewAuditRepository(d)
	ctx := context.Background()
	t0 := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)

	entries := []models.AuditLogEntry{
		{RequestID: "r1", ContainerID: "c1", ActorUserID: "u1", ActorOrgName: "Vận tải", Action: models.AuditCreated,
			Details: map[string]any{"reason": "gần kho", "fee": float64(500000)}, CreatedAt: t0},
		{RequestID: "r1", ContainerID: "c1", ActorUserID: "u2", ActorOrgName: "Hãng tàu", Action: models.AuditApproved, CreatedAt: t0.Add(time.Minute)},
		{ContainerID: "c1", ActorUserID: "u1", ActorOrgName: "Vận tải", Action: models.AuditCancelled,
			Details: map[string]any{"request_id": "r0"}, CreatedAt: t0.Add(-time.Minute)},
	}
	for i := range entries {
		if err := repo.Append(ctx, &entries[i]); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	byReq, err := repo.ListByRequest(ctx, "r1")
	if err != nil || len(byReq) != 2 {
		t.Fatalf("by request: %v len=%d", err, len(byReq))
	}
	if byReq[0].Action != models.AuditCreated || byReq[0].Details["reason"] != "gần kho" || byReq[0].Details["fee"] != float64(500000) {
		t.Fatalf("unexpected first entry: %+v", byReq[0])
	}

	byContainer, err := repo.ListByContainer(ctx, "c1")
	if err != nil || len(byContainer) != 3 {
		t.Fatalf("by container: %v len=%d", err, len(byContainer))
	}
	if byContainer[0].Action != models.AuditCancelled || byContainer[0].RequestID != "" {
		t.Fatalf("expected container-only cancel entry first: %+v", byContainer[0])
	}

	bad := models.AuditLogEntry{Action: models.AuditCreated, Details: map[string]any{"ch": make(chan int)}}
	if err := repo.Append(ctx, &bad); err == nil {
		t.Fatalf("expected encode failure for unsupported detail value")
	}
}

func TestBillingRepository_CreateAndList(t *testing.T) {
	d := openTestDB(t)
	repo := NewBillingRepository(d)
	ctx := context.Background()

	tx := models.BillingTransaction{
		OrganizationID:  "org1",
		CodRequestID:    "r1",
		ContainerNumber: "MSCU1234567",
		Kind:            models.BillingCodFee,
		Amount:          500000,
		Description:     "Phí thay đổi nơi hạ container MSCU1234567",
	}
	if err := repo.Create(ctx, &tx); err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.ID == "" || tx.Status != "PENDING" {
		t.Fatalf("defaults not applied: %+v", tx)
	}

	byReq, err := repo.ListByRequest(ctx, "r1")
	if err != nil || len(byReq) != 1 || byReq[0].Amount != 500000 || byReq[0].Kind != models.BillingCodFee {
		t.Fatalf("by request: %v %+v", err, byReq)
	}
	byOrg, err := repo.ListByOrganization(ctx, "org1")
	if err != nil || len(byOrg) != 1 {
		t.Fatalf("by org: %v %+v", err, byOrg)
	}
}
