package grpcserver

import (
	"context"
	"encoding/json"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"depotChangeManagement/internal/apperr"
	"depotChangeManagement/internal/auth"
	"depotChangeManagement/internal/cod"
	"depotChangeManagement/internal/fee"
	"depotChangeManagement/models"
)

// Lifecycle is the COD service consumed by CodServer.
type Lifecycle interface {
	Create(ctx context.Context, actor models.Actor, in cod.CreateInput) (*models.CodRequest, error)
	Decide(ctx context.Context, actor models.Actor, in cod.DecideInput) (*models.CodRequest, error)
	RequestMoreInfo(ctx context.Context, actor models.Actor, in cod.RequestInfoInput) (*models.CodRequest, error)
	SubmitAdditionalInfo(ctx context.Context, actor models.Actor, in cod.SubmitInfoInput) (*models.CodRequest, error)
	Cancel(ctx context.Context, actor models.Actor, requestID string) error
	ConfirmPayment(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error)
	StartDepotProcessing(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error)
	ConfirmDelivery(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error)
	CompleteDepotProcessing(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error)
	CompleteCodProcess(ctx context.Context, actor models.Actor, containerID string) (*models.Container, error)
	QuoteFee(ctx context.Context, actor models.Actor, containerID, destinationDepotID string) (*fee.Quote, error)
	GetRequest(ctx context.Context, actor models.Actor, requestID string) (*models.CodRequest, error)
	ListRequests(ctx context.Context, actor models.Actor, in cod.ListInput) (*cod.Page, error)
	AuditTrail(ctx context.Context, actor models.Actor, q cod.AuditQuery) ([]models.AuditLogEntry, error)
}

// CodServer implements CodServiceServer. The caller is re-resolved from the
// users table on every call; lifecycle failures are returned in the envelope.
type CodServer struct {
	Users auth.UserDirectory
	Cod   Lifecycle
	Log   logrus.FieldLogger
}

func (s *CodServer) actor(ctx context.Context) (models.Actor, error) {
	a, err := auth.ResolveActor(ctx, s.Users)
	if err != nil {
		return models.Actor{}, err
	}
	return *a, nil
}

func (s *CodServer) logger() logrus.FieldLogger {
	if s.Log == nil {
		return logrus.StandardLogger()
	}
	return s.Log
}

// result converts the outcome of a lifecycle call into the envelope.
func (s *CodServer) result(method, okMsg string, data any, err error) (*ActionResult, error) {
	if err != nil {
		entry := s.logger().WithError(err).WithFields(logrus.Fields{"method": method, "code": apperr.CodeOf(err)})
		if apperr.KindOf(err) == apperr.KindPersistence {
			entry.Error("cod operation failed")
		} else {
			entry.Info("cod operation rejected")
		}
		return &ActionResult{Success: false, Message: apperr.MessageOf(err), Code: apperr.CodeOf(err)}, nil
	}
	res := &ActionResult{Success: true, Message: okMsg}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode result: %v", err)
		}
		res.Data = raw
	}
	return res, nil
}

func (s *CodServer) CreateRequest(ctx context.Context, in *cod.CreateInput) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Cod.Create(ctx, a, *in)
	return s.result("CreateRequest", msgCreated, req, err)
}

func (s *CodServer) DecideRequest(ctx context.Context, in *cod.DecideInput) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Cod.Decide(ctx, a, *in)
	msg := msgApproved
	if in.Decision == models.DecisionDeclined {
		msg = msgDeclined
	}
	return s.result("DecideRequest", msg, req, err)
}

func (s *CodServer) RequestMoreInfo(ctx context.Context, in *cod.RequestInfoInput) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Cod.RequestMoreInfo(ctx, a, *in)
	return s.result("RequestMoreInfo", msgInfoRequested, req, err)
}

func (s *CodServer) SubmitAdditionalInfo(ctx context.Context, in *cod.SubmitInfoInput) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Cod.SubmitAdditionalInfo(ctx, a, *in)
	return s.result("SubmitAdditionalInfo", msgInfoSubmitted, req, err)
}

func (s *CodServer) CancelRequest(ctx context.Context, in *RequestRef) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	err = s.Cod.Cancel(ctx, a, in.RequestID)
	return s.result("CancelRequest", msgCancelled, nil, err)
}

func (s *CodServer) ConfirmPayment(ctx context.Context, in *ContainerRef) (*ActionResult, error) {
	return s.progress(ctx, "ConfirmPayment", msgPaymentConfirmed, in, s.Cod.ConfirmPayment)
}

func (s *CodServer) StartDepotProcessing(ctx context.Context, in *ContainerRef) (*ActionResult, error) {
	return s.progress(ctx, "StartDepotProcessing", msgProcessing, in, s.Cod.StartDepotProcessing)
}

func (s *CodServer) ConfirmDelivery(ctx context.Context, in *ContainerRef) (*ActionResult, error) {
	return s.progress(ctx, "ConfirmDelivery", msgDelivered, in, s.Cod.ConfirmDelivery)
}

func (s *CodServer) CompleteDepotProcessing(ctx context.Context, in *ContainerRef) (*ActionResult, error) {
	return s.progress(ctx, "CompleteDepotProcessing", msgCompleted, in, s.Cod.CompleteDepotProcessing)
}

func (s *CodServer) CompleteCodProcess(ctx context.Context, in *ContainerRef) (*ActionResult, error) {
	return s.progress(ctx, "CompleteCodProcess", msgCompleted, in, s.Cod.CompleteCodProcess)
}

func (s *CodServer) progress(ctx context.Context, method, okMsg string, in *ContainerRef,
	op func(context.Context, models.Actor, string) (*models.Container, error)) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	c, err := op(ctx, a, in.ContainerID)
	return s.result(method, okMsg, c, err)
}

func (s *CodServer) QuoteFee(ctx context.Context, in *QuoteFeeRequest) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	q, err := s.Cod.QuoteFee(ctx, a, in.ContainerID, in.DestinationDepotID)
	return s.result("QuoteFee", msgOK, q, err)
}

func (s *CodServer) GetRequest(ctx context.Context, in *RequestRef) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	req, err := s.Cod.GetRequest(ctx, a, in.RequestID)
	return s.result("GetRequest", msgOK, req, err)
}

func (s *CodServer) ListRequests(ctx context.Context, in *cod.ListInput) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	page, err := s.Cod.ListRequests(ctx, a, *in)
	return s.result("ListRequests", msgOK, page, err)
}

func (s *CodServer) GetAuditTrail(ctx context.Context, in *cod.AuditQuery) (*ActionResult, error) {
	a, err := s.actor(ctx)
	if err != nil {
		return nil, err
	}
	entries, err := s.Cod.AuditTrail(ctx, a, *in)
	return s.result("GetAuditTrail", msgOK, entries, err)
}
