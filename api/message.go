package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"safemail/internal/domain"
	"safemail/internal/models"
	"safemail/internal/service"
)

// SendOnetimeHandler implements POST /message/send_onetime.
func SendOnetimeHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SendOnetimeMessageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sender := authenticatedUser(r)
		_, err := messages.SendWithOnetimeStamp(sender.ID, req.RecipientID, req.Content, req.Metadata, req.Signature, req.Stamp)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}

// SendPeriodicHandler implements POST /message/send_periodic.
func SendPeriodicHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.SendPeriodicMessageRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sender := authenticatedUser(r)
		_, err := messages.SendWithPeriodicStamp(sender.ID, req.RecipientID, req.Content, req.Metadata, req.Signature, req.Stamp)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}

// ListMessagesHandler implements GET /message/get_all.
func ListMessagesHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authenticatedUser(r)

		var aboveID *int64
		if raw := r.URL.Query().Get("above_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				respondError(w, domain.ErrValidation("above_id must be an integer"))
				return
			}
			aboveID = &id
		}

		summaries, err := messages.ListMessages(user.ID, aboveID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, summaries)
	}
}

// GetMessageHandler implements GET /message/:id. A
// non-recipient's request is indistinguishable from "does not exist".
func GetMessageHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authenticatedUser(r)
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, domain.ErrValidation("message id must be an integer"))
			return
		}
		msg, err := messages.GetMessage(user.ID, id)
		if err != nil {
			respondError(w, err)
			return
		}
		if msg == nil {
			respondError(w, domain.ErrUserNotFound())
			return
		}
		respondJSON(w, http.StatusOK, models.NewMessageResponse(*msg))
	}
}

// UpdateMessageMetadataHandler implements PATCH /message/:id/metadata.
func UpdateMessageMetadataHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authenticatedUser(r)
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, domain.ErrValidation("message id must be an integer"))
			return
		}
		var req models.UpdateRecipientMetadataRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		if err := messages.UpdateRecipientMetadata(user.ID, id, req.RecipientMetadata); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}

// DeleteMessageHandler implements DELETE /message/:id.
func DeleteMessageHandler(messages *service.MessageAdmitter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := authenticatedUser(r)
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			respondError(w, domain.ErrValidation("message id must be an integer"))
			return
		}
		if err := messages.DeleteMessage(user.ID, id); err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, nil)
	}
}
