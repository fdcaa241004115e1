package cod

import "depotChangeManagement/models"

// ContainerStatusFor returns the container status implied by a request status.
// Container statuses past AWAITING_COD_PAYMENT are container-only and have no request counterpart.
func ContainerStatusFor(s models.CodRequestStatus) (models.ContainerStatus, bool) {
	switch s {
	case models.CodPending, models.CodAwaitingInfo:
		return models.ContainerAwaitingCodApproval, true
	case models.CodApproved:
		return models.ContainerAwaitingCodPayment, true
	case models.CodDeclined:
		return models.ContainerCodRejected, true
	case models.CodExpired, models.CodReversed:
		return models.ContainerAvailable, true
	}
	return "", false
}

// containerStatusWithoutRequest is the status of a container whose request was cancelled.
const containerStatusWithoutRequest = models.ContainerAvailable

func mustProject(s models.CodRequestStatus) models.ContainerStatus {
	cs, ok := ContainerStatusFor(s)
	if !ok {
		panic("cod: no container projection for request status " + string(s))
	}
	return cs
}
