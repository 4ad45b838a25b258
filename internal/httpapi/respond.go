package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	log "github.com/sirupsen/logrus"

	"serotonyl.ru/ecobot/internal/common"
)

// maxBodyBytes: предел тела запроса.
const maxBodyBytes = 1 << 16

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("Ошибка записи ответа")
	}
}

// writeError переводит ошибку сервиса в HTTP-ответ.
// Подробности сбоев хранилища остаются в логе.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *common.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: ve.Message, Field: ve.Field})
	case errors.Is(err, common.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: common.UserMessage(err)})
	case errors.Is(err, common.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorBody{Error: common.UserMessage(err)})
	default:
		log.WithError(err).WithFields(log.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).Error("Ошибка обработки запроса")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: common.UserMessage(err)})
	}
}

// decodeJSON читает тело запроса. Неизвестные поля: ошибка.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return common.NewValidationError("body", err, "Некорректный JSON")
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return common.NewValidationError("body", common.ErrValidation, "Ожидается один JSON-объект")
	}
	return nil
}
