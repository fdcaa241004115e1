package cod

import (
	"github.com/go-faster/errors"

	"depotChangeManagement/internal/apperr"
)

// Failures returned by Service. Each carries the Vietnamese message shown to users.
var (
	ErrUnauthorized = apperr.New(apperr.KindUnauthorized, "UNAUTHORIZED",
		"Bạn không có quyền thực hiện thao tác này")
	ErrOwnershipMismatch = apperr.New(apperr.KindUnauthorized, "OWNERSHIP_MISMATCH",
		"Container không thuộc quyền quản lý của công ty bạn")
	ErrOrgMismatch = apperr.New(apperr.KindUnauthorized, "ORG_MISMATCH",
		"Yêu cầu COD không thuộc hãng tàu của bạn")
	ErrNotRequester = apperr.New(apperr.KindUnauthorized, "NOT_REQUESTER",
		"Chỉ công ty đã tạo yêu cầu mới được thực hiện thao tác này")

	ErrInvalidInput = apperr.New(apperr.KindInvalidInput, "INVALID_INPUT",
		"Dữ liệu yêu cầu không hợp lệ")
	ErrSameDepot = apperr.New(apperr.KindInvalidInput, "SAME_DEPOT",
		"Depot mới phải khác depot hiện tại của container")
	ErrFeeMismatch = apperr.New(apperr.KindInvalidInput, "FEE_MISMATCH",
		"Phí COD không khớp với biểu phí hiện hành")

	ErrContainerNotFound = apperr.New(apperr.KindNotFound, "CONTAINER_NOT_FOUND",
		"Không tìm thấy container")
	ErrRequestNotFound = apperr.New(apperr.KindNotFound, "REQUEST_NOT_FOUND",
		"Không tìm thấy yêu cầu COD")
	ErrDepotNotFound = apperr.New(apperr.KindNotFound, "DEPOT_NOT_FOUND",
		"Không tìm thấy depot được yêu cầu")
	ErrDepotNotSynced = apperr.New(apperr.KindNotFound, "DEPOT_NOT_SYNCED",
		"Depot được yêu cầu chưa được đồng bộ trên hệ thống")

	ErrMissingApprovingOrg = apperr.New(apperr.KindInvalidState, "MISSING_APPROVING_ORG",
		"Container chưa được gán hãng tàu để duyệt yêu cầu COD")
	ErrInvalidContainerStatus = apperr.New(apperr.KindInvalidState, "INVALID_CONTAINER_STATUS",
		"Trạng thái hiện tại của container không cho phép thao tác này")
	ErrInvalidRequestStatus = apperr.New(apperr.KindInvalidState, "INVALID_REQUEST_STATUS",
		"Trạng thái hiện tại của yêu cầu COD không cho phép thao tác này")

	ErrDuplicateActiveRequest = apperr.New(apperr.KindDuplicate, "DUPLICATE_ACTIVE_REQUEST",
		"Container đã có một yêu cầu COD đang chờ xử lý")

	ErrPersistence = apperr.New(apperr.KindPersistence, "PERSISTENCE_ERROR", apperr.MsgInternal)
)

// persistence classifies err: typed failures pass through, anything else is a store failure.
func persistence(err error) error {
	if err == nil {
		return nil
	}
	var typed *apperr.Error
	if errors.As(err, &typed) {
		return err
	}
	return ErrPersistence.Wrap(err)
}
