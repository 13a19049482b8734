package server

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"

	"github.com/amolnak/GuidanceMind/internal/common"
)

var errBusy = errors.New("a run is already in progress")

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// httpStatus maps an error through its gRPC code to an HTTP status.
func httpStatus(err error) int {
	if errors.Is(err, errBusy) {
		return http.StatusConflict
	}
	switch common.GRPCCode(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.DeadlineExceeded:
		return http.StatusGatewayTimeout
	case codes.Unavailable:
		return http.StatusBadGateway
	}
	var ae *common.AppError
	if errors.As(err, &ae) && errors.Is(ae.Kind, common.ErrExtraction) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	body := errorBody{Code: common.CodeOf(err), Message: err.Error()}
	if errors.Is(err, errBusy) {
		body.Code = "BUSY"
	}
	writeJSON(w, httpStatus(err), body)
}
