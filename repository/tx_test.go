package repository

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"

	"depotChangeManagement/models"
)

func TestTxManager_RollsBackOnError(t *testing.T) {
	d := openTestDB(t)
	f := seed(t, d)
	tm := NewTxManager(d)
	requests := NewCodRequestRepository(d)
	containers := NewContainerRepository(d)
	ctx := context.Background()

	req := newRequest(f, time.Now())
	boom := errors.New("boom")
	err := tm.RunInTx(ctx, func(ctx context.Context) error {
		if err := requests.Create(ctx, req); err != nil {
			return err
		}
		if _, err := containers.Transition(ctx, f.container.ID, ContainerTransition{
			From: []models.ContainerStatus{models.ContainerAvailable},
			To:   models.ContainerAwaitingCodApproval,
		}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, err := requests.GetByID(ctx, req.ID)
	if err != nil || got != nil {
		t.Fatalf("request should be rolled back: %v %+v", err, got)
	}
	c, err := containers.GetByID(ctx, f.container.ID)
	if err != nil || c.Status != models.ContainerAvailable {
		t.Fatalf("container should be unchanged: %v %+v", err, c)
	}
}

func TestTxManager_Commits(t *testing.T) {
	d := openTestDB(t)
	f := seed(t, d)
	tm := NewTxManager(d)
	requests := NewCodRequestRepository(d)
	ctx := context.Background()

	req := newRequest(f, time.Now())
	err := tm.RunInTx(ctx, func(ctx context.Context) error {
		// Nested calls join the outer transaction.
		return tm.RunInTx(ctx, func(ctx context.Context) error {
			return requests.Create(ctx, req)
		})
	})
	if err != nil {
		t.Fatalf("run in tx: %v", err)
	}
	got, err := requests.GetByID(ctx, req.ID)
	if err != nil || got == nil {
		t.Fatalf("request should be committed: %v %+v", err, got)
	}
}
