package handler

import (
	"net/http"

	"github.com/vasiliy-maslov/farmmarket/internal/auth"
	"github.com/vasiliy-maslov/farmmarket/internal/notification"
)

type NotificationHandler struct {
	notifications *notification.Service
}

func NewNotificationHandler(notifications *notification.Service) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())
	respondWithJSON(w, http.StatusOK, h.notifications.ListByUser(identity.UserID))
}

func (h *NotificationHandler) HandleMarkRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.notifications.MarkRead(identity.UserID, id); err != nil {
		respondDomainError(w, err, "failed to mark notification read")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"id": id, "read": true})
}

func (h *NotificationHandler) HandleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	h.notifications.MarkAllRead(identity.UserID)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "all notifications marked read"})
}

func (h *NotificationHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, _ := auth.IdentityFromContext(r.Context())

	id, err := idParam(r, "id")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid id parameter")
		return
	}

	if err := h.notifications.Delete(identity.UserID, id); err != nil {
		respondDomainError(w, err, "failed to delete notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
