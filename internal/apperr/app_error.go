package apperr

import "github.com/studentalliance/catalog-gateway/pkg/zerror"

const (
	ValidationErrorCode   = "VALIDATION_FAILED"
	ProductNotFoundCode   = "PRODUCT_NOT_FOUND"
	DraftNotFoundCode     = "DRAFT_NOT_FOUND"
	UploadInFlightCode    = "UPLOAD_IN_FLIGHT"
	NoDeleteStagedCode    = "NO_DELETE_STAGED"
	UnauthorizedCode      = "UNAUTHORIZED"
	RemoteUnavailableCode = "REMOTE_UNAVAILABLE"
	RemoteFaultCode       = "REMOTE_FAULT"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	ProductNotFoundErr = zerror.NewNotFound(ProductNotFoundCode, "product not found")
	DraftNotFoundErr   = zerror.NewNotFound(DraftNotFoundCode, "draft not found")

	// UploadInFlightErr blocks form submission until every image upload for
	// the draft has resolved.
	UploadInFlightErr = zerror.NewConflict(UploadInFlightCode, "please wait until image upload is complete")

	NoDeleteStagedErr = zerror.NewConflict(NoDeleteStagedCode, "no delete staged for this product")

	UnauthorizedErr = zerror.NewUnauthorized(UnauthorizedCode, "a valid session token is required")

	// RemoteUnavailableErr is the transport-failure case: no response from
	// the remote service at all.
	RemoteUnavailableErr = zerror.NewServiceUnavailable(RemoteUnavailableCode, "no response from server, please check your connection")

	// RemoteFaultErr covers remote 5xx responses.
	RemoteFaultErr = zerror.NewBadGateway(RemoteFaultCode, "the server reported a fault, please try again later")
)
