package api

import (
	"net/http"

	"safemail/internal/models"
	"safemail/internal/service"
)

// RequestSystemIssueHandler implements POST /stamp/request_system_issue.
func RequestSystemIssueHandler(stamps *service.StampEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RequestSystemIssueRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		stampReq, err := stamps.RequestSystemIssue(req.SenderID, req.RecipientID)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, models.NewStampRequestResponse(stampReq))
	}
}

// SystemIssueHandler implements POST /stamp/system_issue.
func SystemIssueHandler(stamps *service.StampEngine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.IssueSystemStampRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		sender := authenticatedUser(r)
		stamp, err := stamps.IssueSystemStamp(sender.ID, req.StampRequestID, req.ProofOfWork)
		if err != nil {
			respondError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, models.NewOnetimeStampResponse(stamp))
	}
}
