package http

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"
	"github.com/samueltorres/r8counter/pkg/counter"
	"github.com/sirupsen/logrus"
)

type counterHandler struct {
	service *counter.Service
	logger  *logrus.Logger
}

func (h *counterHandler) handleCreate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")

	value, err := h.service.Create(r.Context(), name)
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}

	h.writeCounter(w, http.StatusCreated, name, value)
}

func (h *counterHandler) handleRead(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")

	value, err := h.service.Get(r.Context(), name)
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}

	h.writeCounter(w, http.StatusOK, name, value)
}

func (h *counterHandler) handleUpdate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	name := ps.ByName("name")

	value, err := h.service.Increment(r.Context(), name)
	if err != nil {
		w.WriteHeader(statusFor(err))
		return
	}

	h.writeCounter(w, http.StatusOK, name, value)
}

func (h *counterHandler) handleDelete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("name")); err != nil {
		w.WriteHeader(statusFor(err))
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// writeCounter answers with the {name: value} document
func (h *counterHandler) writeCounter(w http.ResponseWriter, status int, name string, value int64) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(map[string]int64{name: value}); err != nil {
		h.logger.WithError(err).Info("could not encode response")
	}
}

func statusFor(err error) int {
	switch counter.Classify(err) {
	case counter.ResultConflict:
		return http.StatusConflict
	case counter.ResultNotFound:
		return http.StatusNotFound
	case counter.ResultInvalidName:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
