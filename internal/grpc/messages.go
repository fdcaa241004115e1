package grpcserver

import "encoding/json"

// ActionResult is the response envelope of every CodService RPC.
// Domain failures are reported here with Success=false; Code is the stable error code.
type ActionResult struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Decode unmarshals Data into v.
func (r *ActionResult) Decode(v any) error {
	if len(r.Data) == 0 {
		return nil
	}
	return json.Unmarshal(r.Data, v)
}

// RequestRef addresses one COD request.
type RequestRef struct {
	RequestID string `json:"request_id"`
}

// ContainerRef addresses one container.
type ContainerRef struct {
	ContainerID string `json:"container_id"`
}

type QuoteFeeRequest struct {
	ContainerID        string `json:"container_id"`
	DestinationDepotID string `json:"destination_depot_id"`
}

// User-facing success messages.
const (
	msgCreated          = "Đã gửi yêu cầu thay đổi nơi hạ container"
	msgApproved         = "Đã chấp thuận yêu cầu COD"
	msgDeclined         = "Đã từ chối yêu cầu COD"
	msgInfoRequested    = "Đã yêu cầu bổ sung thông tin"
	msgInfoSubmitted    = "Đã gửi thông tin bổ sung"
	msgCancelled        = "Đã hủy yêu cầu COD"
	msgPaymentConfirmed = "Đã xác nhận thanh toán phí COD"
	msgProcessing       = "Depot đã bắt đầu xử lý container"
	msgDelivered        = "Đã xác nhận giao container tại depot mới"
	msgCompleted        = "Đã hoàn tất quy trình COD"
	msgOK               = "Thành công"
)
