package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nerrad567/gray-logic-osc/internal/diagnostics"
	"github.com/nerrad567/gray-logic-osc/internal/osc"
)

// handleRoutes lists every registered OSC address.
func (s *Server) handleRoutes(w http.ResponseWriter, _ *http.Request) {
	routes := s.router.Routes()
	writeJSON(w, http.StatusOK, map[string]any{
		"policy": s.router.Policy(),
		"count":  len(routes),
		"routes": routes,
	})
}

// handleSwitcherState returns the bridge's cached view of the switcher.
func (s *Server) handleSwitcherState(w http.ResponseWriter, _ *http.Request) {
	if s.switcher == nil {
		writeUnavailable(w, "switcher bridge not configured")
		return
	}
	writeJSON(w, http.StatusOK, s.switcher.State().Snapshot())
}

// handleListDrops returns recorded drop events, newest first.
//
// Query parameters: reason, address, prefix, switcher, since (RFC 3339),
// limit, offset.
func (s *Server) handleListDrops(w http.ResponseWriter, r *http.Request) {
	if s.drops == nil {
		writeUnavailable(w, "drop history not configured")
		return
	}

	filter, err := parseDropFilter(r)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	result, err := s.drops.List(r.Context(), filter)
	if err != nil {
		s.logger.Error("listing drop events failed", "error", err)
		writeInternalError(w, "failed to list drop events")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// handleDropSummary returns drop counts per reason.
func (s *Server) handleDropSummary(w http.ResponseWriter, r *http.Request) {
	if s.drops == nil {
		writeUnavailable(w, "drop history not configured")
		return
	}

	counts, err := s.drops.CountByReason(r.Context())
	if err != nil {
		s.logger.Error("counting drop events failed", "error", err)
		writeInternalError(w, "failed to count drop events")
		return
	}

	byReason := make(map[string]int, len(osc.AllReasons()))
	total := 0
	for _, reason := range osc.AllReasons() {
		byReason[string(reason)] = counts[reason]
		total += counts[reason]
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total":     total,
		"by_reason": byReason,
	})
}

func parseDropFilter(r *http.Request) (diagnostics.Filter, error) {
	q := r.URL.Query()
	filter := diagnostics.Filter{
		Address:       q.Get("address"),
		AddressPrefix: q.Get("prefix"),
		SwitcherID:    q.Get("switcher"),
	}

	if v := q.Get("reason"); v != "" {
		reason := osc.ReasonKind(v)
		if !reason.IsValid() {
			return filter, fmt.Errorf("unknown reason %q", v)
		}
		filter.Reason = reason
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

func intParam(v, name string) (int, error) {
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer", name)
	}
	return n, nil
}

// dispatchRequest is the body of POST /dispatch.
type dispatchRequest struct {
	Address   string            `json:"address"`
	Arguments []json.RawMessage `json:"arguments"`
}

// DispatchResponse reports the outcome of an injected message.
type DispatchResponse struct {
	Address   string `json:"address"`
	Delivered bool   `json:"delivered"`
	Validated bool   `json:"validated"`
	Reason    string `json:"reason,omitempty"`
	Error     string `json:"error,omitempty"`
}

// handleDispatch injects one OSC message into the router. The response is
// 200 when the endpoint ran cleanly and 422 when the message was dropped or
// the endpoint failed; either way the body carries the dispatch result.
func (s *Server) handleDispatch(w http.ResponseWriter, r *http.Request) {
	var req dispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if !strings.HasPrefix(req.Address, "/") {
		writeBadRequest(w, "address must start with /")
		return
	}

	args := make([]any, 0, len(req.Arguments))
	for i, raw := range req.Arguments {
		v, err := decodeArgument(raw)
		if err != nil {
			writeBadRequest(w, fmt.Sprintf("argument %d: %v", i, err))
			return
		}
		args = append(args, v)
	}

	msg := osc.NewMessage(req.Address, args...)
	result := s.router.Dispatch(msg)

	caller := ""
	if c := claimsFromContext(r.Context()); c != nil {
		caller = c.Subject
	}
	s.logger.Info("osc message injected via API",
		"address", msg.Address,
		"arguments", msg.Arguments.Summary(),
		"caller", caller,
		"delivered", result.Delivered,
		"reason", string(result.Reason),
	)
	s.auditDispatch(r, msg, result)

	resp := DispatchResponse{
		Address:   result.Address,
		Delivered: result.Delivered,
		Validated: result.Validated,
		Reason:    string(result.Reason),
	}
	if result.Err != nil {
		resp.Error = result.Err.Error()
	}

	code := http.StatusOK
	if !result.OK() {
		code = http.StatusUnprocessableEntity
	}
	writeJSON(w, code, resp)
}

// decodeArgument maps a JSON value onto an OSC argument type. Whole numbers
// become int32, other numbers float32.
func decodeArgument(raw json.RawMessage) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}

	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			if n < math.MinInt32 || n > math.MaxInt32 {
				return n, nil
			}
			return int32(n), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return float32(f), nil
	case string, bool, nil:
		return t, nil
	default:
		return nil, errors.New("must be a number, string, boolean or null")
	}
}
