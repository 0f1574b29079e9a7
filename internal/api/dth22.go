package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/apiconsole/internal/dth22"
)

// Error messages returned by the readings route.
const (
	msgListFailed      = "Gagal mengambil data DTH22"
	msgCreateFailed    = "Gagal menambahkan data DTH22"
	msgUpdateFailed    = "Gagal memperbarui data DTH22"
	msgReadingNotFound = "Data DTH22 tidak ditemukan"
)

// handleListReadings returns every reading, newest first.
func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	readings, err := s.readings.List(r.Context())
	if err != nil {
		s.logger.Error("listing readings failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, msgListFailed)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

// handleGetReading returns one reading by path id.
func (s *Server) handleGetReading(w http.ResponseWriter, r *http.Request) {
	id, err := dth22.ParseID(chi.URLParam(r, "id"))
	if err != nil {
		writeValidationError(w, err)
		return
	}

	reading, err := s.readings.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, dth22.ErrReadingNotFound) {
			writeNotFound(w, msgReadingNotFound)
			return
		}
		s.logger.Error("getting reading failed", "id", id, "error", err)
		writeInternalError(w, msgListFailed)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// handleCreateReading stores a reading from {unit_name, suhu, kelembapan}.
func (s *Server) handleCreateReading(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	in, err := dth22.ParseCreate(body)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	reading, err := s.readings.Create(r.Context(), in, dth22.SourceAPI)
	if err != nil {
		s.logger.Error("creating reading failed", "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, msgCreateFailed)
		return
	}
	writeJSON(w, http.StatusCreated, reading)
}

// handleUpdateReading applies a partial update. The id comes from the path
// when present, otherwise from the body.
//
// On the collection route every storage failure, an unknown id included,
// is a 500. Only the /{id} resource route answers 404 for an unknown id.
func (s *Server) handleUpdateReading(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	pathID := chi.URLParam(r, "id")
	id, patch, err := dth22.ParseUpdate(body, pathID)
	if err != nil {
		writeValidationError(w, err)
		return
	}

	reading, err := s.readings.Update(r.Context(), id, patch, dth22.SourceAPI)
	if err != nil {
		if pathID != "" && errors.Is(err, dth22.ErrReadingNotFound) {
			writeNotFound(w, msgReadingNotFound)
			return
		}
		s.logger.Error("updating reading failed", "id", id, "error", err, "request_id", r.Context().Value(ctxKeyRequestID))
		writeInternalError(w, msgUpdateFailed)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}

// readBody reads the request body, answering 413 when it exceeds the limit.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBodyTooLarge)
			return nil, false
		}
		writeBadRequest(w, dth22.MsgInvalidBody)
		return nil, false
	}
	return body, true
}

// writeValidationError writes a 400 carrying the validation message.
func writeValidationError(w http.ResponseWriter, err error) {
	var ve *dth22.ValidationError
	if errors.As(err, &ve) {
		writeBadRequest(w, ve.Message)
		return
	}
	writeBadRequest(w, err.Error())
}
