package grpcserver

import (
	"context"
	"testing"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/cod"
	"depotChangeManagement/internal/testutil"
	"depotChangeManagement/models"
)

func TestCreateRequest_Envelope(t *testing.T) {
	users, svc, w := newTestDeps(t)
	s := &CodServer{Users: users, Cod: svc}
	ctx := newPrincipalCtx(w.Dispatcher)
	fee := testutil.FeeD1D2

	res, err := s.CreateRequest(ctx, &cod.CreateInput{
		ContainerID:        w.Container.ID,
		DestinationDepotID: w.D2.ID,
		Reason:             "need for next load",
		ClientFee:          &fee,
	})
	if err != nil {
		t.Fatalf("CreateRequest: %v", err)
	}
	if !res.Success || res.Message != msgCreated || res.Code != "" {
		t.Fatalf("unexpected envelope: %+v", res)
	}
	var req models.CodRequest
	if err := res.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if req.ID == "" || req.Status != models.CodPending || req.Fee != fee {
		t.Fatalf("unexpected request: %+v", req)
	}

	// Domain failures stay inside the envelope. The container now awaits
	// approval, so a second request is refused on its status.
	res, err = s.CreateRequest(ctx, &cod.CreateInput{
		ContainerID:        w.Container.ID,
		DestinationDepotID: w.D3.ID,
		Reason:             "again",
	})
	if err != nil {
		t.Fatalf("second create returned transport error: %v", err)
	}
	if res.Success || res.Code != cod.ErrInvalidContainerStatus.Code || res.Message != cod.ErrInvalidContainerStatus.Message {
		t.Fatalf("unexpected envelope: %+v", res)
	}
	if len(res.Data) != 0 {
		t.Fatalf("failure should carry no data: %s", res.Data)
	}
}

func TestDecideRequest_Messages(t *testing.T) {
	users, svc, w := newTestDeps(t)
	s := &CodServer{Users: users, Cod: svc}

	res, err := s.CreateRequest(newPrincipalCtx(w.Dispatcher), &cod.CreateInput{
		ContainerID: w.Container.ID, DestinationDepotID: w.D2.ID, Reason: "r",
	})
	if err != nil || !res.Success {
		t.Fatalf("create: %v %+v", err, res)
	}
	var req models.CodRequest
	if err := res.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}

	res, err = s.DecideRequest(newPrincipalCtx(w.Carrier), &cod.DecideInput{RequestID: req.ID, Decision: models.DecisionDeclined, Reason: "full"})
	if err != nil || !res.Success || res.Message != msgDeclined {
		t.Fatalf("decline: %v %+v", err, res)
	}

	res, err = s.DecideRequest(newPrincipalCtx(w.Carrier), &cod.DecideInput{RequestID: req.ID, Decision: models.DecisionApproved})
	if err != nil {
		t.Fatalf("second decide: %v", err)
	}
	if res.Success || res.Code != cod.ErrInvalidRequestStatus.Code {
		t.Fatalf("expected invalid status envelope, got %+v", res)
	}
}

func TestCodServer_CallerResolution(t *testing.T) {
	users, svc, w := newTestDeps(t)
	s := &CodServer{Users: users, Cod: svc}

	if _, err := s.ListRequests(newPrincipalCtx(w.Dispatcher), &cod.ListInput{}); err != nil {
		t.Fatalf("ListRequests: %v", err)
	}
	// No principal at all.
	if _, err := s.ListRequests(context.Background(), &cod.ListInput{}); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", err)
	}

	// Token claims a role the user does not hold.
	spoofed := auth.WithPrincipal(context.Background(), &auth.Principal{Name: w.Dispatcher.Username, Role: string(models.RoleCarrierAdmin)})
	if _, err := s.DecideRequest(spoofed, &cod.DecideInput{RequestID: "x", Decision: models.DecisionApproved}); status.Code(err) != codes.PermissionDenied {
		t.Fatalf("expected PermissionDenied, got %v", err)
	}
}

func TestProgressRPCs(t *testing.T) {
	users, svc, w := newTestDeps(t)
	s := &CodServer{Users: users, Cod: svc}
	dispatcher := newPrincipalCtx(w.Dispatcher)

	res, _ := s.CreateRequest(dispatcher, &cod.CreateInput{ContainerID: w.Container.ID, DestinationDepotID: w.D2.ID, Reason: "r"})
	var req models.CodRequest
	if err := res.Decode(&req); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res, err := s.DecideRequest(newPrincipalCtx(w.Carrier), &cod.DecideInput{RequestID: req.ID, Decision: models.DecisionApproved}); err != nil || !res.Success {
		t.Fatalf("approve: %v %+v", err, res)
	}

	ref := &ContainerRef{ContainerID: w.Container.ID}
	steps := []struct {
		name string
		call func() (*ActionResult, error)
		want models.ContainerStatus
	}{
		{"ConfirmPayment", func() (*ActionResult, error) { return s.ConfirmPayment(dispatcher, ref) }, models.ContainerOnGoingCod},
		{"ConfirmDelivery", func() (*ActionResult, error) { return s.ConfirmDelivery(dispatcher, ref) }, models.ContainerDepotProcessing},
		{"CompleteCodProcess", func() (*ActionResult, error) { return s.CompleteCodProcess(dispatcher, ref) }, models.ContainerCompleted},
	}
	for _, st := range steps {
		res, err := st.call()
		if err != nil || !res.Success {
			t.Fatalf("%s: %v %+v", st.name, err, res)
		}
		var c models.Container
		if err := res.Decode(&c); err != nil {
			t.Fatalf("%s decode: %v", st.name, err)
		}
		if c.Status != st.want {
			t.Fatalf("%s: status %s, want %s", st.name, c.Status, st.want)
		}
	}

	res, err := s.GetAuditTrail(dispatcher, &cod.AuditQuery{RequestID: req.ID})
	if err != nil || !res.Success {
		t.Fatalf("audit trail: %v %+v", err, res)
	}
	var entries []models.AuditLogEntry
	if err := res.Decode(&entries); err != nil {
		t.Fatalf("decode trail: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 audit entries, got %d", len(entries))
	}
}
