package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/turtacn/Prologos-Jurimetrics/internal/application/adherence"
	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/internal/interfaces/http/middleware"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// DefaultMaxUpload caps petition uploads when the server config does not.
const DefaultMaxUpload int64 = 10 << 20

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeAppError maps an error to its HTTP status through the error code and
// writes the failure envelope. Messages of 500s are masked.
func writeAppError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	code := errors.GetCode(err)
	if code == errors.CodeUnknown || code == errors.CodeOK {
		code = errors.CodeInternal
	}
	status := errors.HTTPStatusForCode(code)

	message := errors.DefaultMessageForCode(code)
	var appErr *errors.AppError
	if status != http.StatusInternalServerError && errors.As(err, &appErr) && appErr.Message != "" {
		message = appErr.Message
	}

	requestID := middleware.GetRequestID(r.Context())
	if status >= 500 {
		logger.Error("request failed",
			logging.String("path", r.URL.Path),
			logging.String("code", string(code)),
			logging.String("request_id", requestID),
			logging.Err(err))
	}

	resp := common.NewErrorResponse(string(code), message)
	resp.RequestID = requestID
	writeJSON(w, status, resp)
}

// pathID parses a positive int64 chi URL parameter.
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.InvalidParam("invalid " + name + ": " + raw)
	}
	return id, nil
}

// queryInt reads an optional integer query parameter.
func queryInt(r *http.Request, name string, def int) (int, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.InvalidParam(name + " must be an integer")
	}
	return n, nil
}

// queryBool reads an optional boolean query parameter.
func queryBool(r *http.Request, name string) bool {
	b, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return b
}

// readPetition accepts either a multipart upload in the "file" field or a
// raw request body typed by its Content-Type header.
func readPetition(r *http.Request, maxBytes int64) (adherence.Petition, error) {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUpload
	}
	ct := r.Header.Get("Content-Type")

	if strings.HasPrefix(ct, "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return adherence.Petition{}, errors.InvalidParam("invalid multipart upload: " + err.Error())
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			return adherence.Petition{}, errors.InvalidParam("the petition must be sent in the \"file\" field")
		}
		defer file.Close()
		data, err := readLimited(file, maxBytes)
		if err != nil {
			return adherence.Petition{}, err
		}
		return adherence.Petition{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, nil
	}

	data, err := readLimited(r.Body, maxBytes)
	if err != nil {
		return adherence.Petition{}, err
	}
	return adherence.Petition{ContentType: ct, Data: data}, nil
}

func readLimited(src io.Reader, maxBytes int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, errors.InvalidParam("failed to read the petition")
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.InvalidParam("petition exceeds " + strconv.FormatInt(maxBytes, 10) + " bytes")
	}
	return data, nil
}

//Personal.AI order the ending
