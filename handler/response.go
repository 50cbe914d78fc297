package handler

import (
	"encoding/json"
	"net/http"

	"opengalaxy/apperr"
	"opengalaxy/model"
)

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	writeEnvelope(w, model.GenericResponse{
		Success: code < http.StatusBadRequest,
		Status:  code,
		Payload: payload,
	})
}

// RespondWithError writes the error envelope for err. Internal errors are
// reported with a generic message; the services have already logged them.
func RespondWithError(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)
	writeEnvelope(w, model.GenericResponse{
		Success: false,
		Status:  code,
		Error: &model.ErrorInfo{
			ErrorType: apperr.Type(err),
			Code:      code,
			Message:   apperr.PublicMessage(err),
		},
	})
}

func writeEnvelope(w http.ResponseWriter, resp model.GenericResponse) {
	body, err := json.Marshal(resp)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"status":500,"error":{"errorType":"INTERNAL_ERROR","code":500,"message":"Failed to marshal JSON response"}}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	w.Write(body)
}

func respondBytes(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Invalid("invalid request payload")
	}
	return nil
}
