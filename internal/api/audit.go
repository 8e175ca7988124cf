package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/audit"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// auditWriteTimeout bounds the audit insert so a locked database cannot
// stall the dispatch response.
const auditWriteTimeout = 2 * time.Second

// auditDispatch records an injected message and the router's verdict.
// Failures are logged; the dispatch itself has already happened.
func (s *Server) auditDispatch(r *http.Request, msg osc.Message, result osc.Result) {
	if s.audit == nil {
		return
	}

	entry := &audit.Entry{
		Action:    audit.ActionDispatch,
		Address:   msg.Address,
		Arguments: msg.Arguments.Summary(),
		Source:    "api",
		Delivered: result.Delivered,
		Reason:    string(result.Reason),
	}
	if c := claimsFromContext(r.Context()); c != nil {
		entry.Subject = c.Subject
		entry.Role = string(c.Role)
	}
	details := map[string]any{}
	if id, ok := r.Context().Value(ctxKeyRequestID).(string); ok {
		details["request_id"] = id
	}
	if result.Err != nil {
		details["error"] = result.Err.Error()
	}
	entry.Details = details

	// Detached from the request so a client hang-up does not lose the record.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), auditWriteTimeout)
	defer cancel()
	if err := s.audit.Create(ctx, entry); err != nil {
		s.logger.Error("writing audit entry failed", "address", msg.Address, "error", err)
	}
}

// handleListAudit returns audited API actions, newest first.
//
// Query parameters: action, address, subject, since (RFC 3339), limit,
// offset.
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeUnavailable(w, "audit log not configured")
		return
	}

	filter, err := parseAuditFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.audit.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing audit entries failed", "error", err)
		writeInternalError(w, "failed to list audit entries")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func parseAuditFilter(r *http.Request) (audit.Filter, error) {
	q := r.URL.Query()
	filter := audit.Filter{
		Action:  q.Get("action"),
		Address: q.Get("address"),
		Subject: q.Get("subject"),
	}
	if v := q.Get("since"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return filter, fmt.Errorf("since must be an RFC 3339 timestamp")
		}
		filter.Since = t
	}

	var err error
	if filter.Limit, err = intParam(q.Get("limit"), "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = intParam(q.Get("offset"), "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}
