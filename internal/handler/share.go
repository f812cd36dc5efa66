package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/websocket"

	"github.com/goormcoder/ieum/backend/internal/domain"
	"github.com/goormcoder/ieum/backend/internal/metrics"
	"github.com/goormcoder/ieum/backend/internal/middleware"
	"github.com/goormcoder/ieum/backend/internal/realtime"
	"github.com/goormcoder/ieum/backend/internal/service"
)

// maxShareFrameBytes bounds one inbound frame; a share request is a single id.
const maxShareFrameBytes = 4 << 10

// SharePlaces handles GET /plans/{planId}/share, the real-time sharing channel.
//
// Membership is checked before the upgrade so outsiders get a plain 404.
// Afterwards every inbound {"place_id": "..."} frame runs SharePlace: success
// is broadcast to every session on the plan as a place_shared frame, a domain
// failure goes back only to the acting member's sessions as an error frame.
func (s *Server) SharePlaces(w http.ResponseWriter, r *http.Request) {
	planID, err := pathUUID(r, "planId")
	if err != nil {
		requestError(w, err.Error())
		return
	}
	memberID := currentMember(r)
	if _, err := s.plans.GetPlan(r.Context(), planID, memberID); err != nil {
		s.writeError(w, r, err)
		return
	}

	ws := websocket.Server{
		Handshake: s.checkOrigin,
		Handler: func(conn *websocket.Conn) {
			s.serveShareSession(conn, planID, memberID)
		},
	}
	ws.ServeHTTP(w, r)
}

func (s *Server) checkOrigin(cfg *websocket.Config, r *http.Request) error {
	origin, err := websocket.Origin(cfg, r)
	if err != nil {
		return err
	}
	if origin == nil {
		return errors.New("null origin")
	}
	cfg.Origin = origin
	if middleware.OriginAllowed(s.origins, originString(origin)) {
		return nil
	}
	return fmt.Errorf("origin %s not allowed", originString(origin))
}

func originString(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}

func (s *Server) serveShareSession(conn *websocket.Conn, planID, memberID uuid.UUID) {
	conn.MaxPayloadBytes = maxShareFrameBytes
	// The server's read/write timeouts outlive the hijack; sessions are long-lived.
	_ = conn.SetDeadline(time.Time{})
	ctx := conn.Request().Context()
	log := s.logger.With("plan_id", planID, "member_id", memberID)

	session := s.hub.Join(planID, memberID)
	written := make(chan struct{})
	go func() {
		defer close(written)
		for f := range session.Outbound() {
			if err := websocket.JSON.Send(conn, f); err != nil {
				log.DebugContext(ctx, "share session write failed", "error", err)
				return
			}
		}
	}()
	defer func() {
		s.hub.Leave(session)
		<-written
		_ = conn.Close()
	}()

	for {
		var raw []byte
		if err := websocket.Message.Receive(conn, &raw); err != nil {
			if !errors.Is(err, io.EOF) {
				log.DebugContext(ctx, "share session read failed", "error", err)
			}
			return
		}

		var req realtime.ShareRequest
		if err := json.Unmarshal(raw, &req); err != nil {
			s.rejectFrame(session, "malformed frame")
			continue
		}
		placeID, err := uuid.Parse(strings.TrimSpace(req.PlaceID))
		if err != nil {
			s.rejectFrame(session, "place_id must be a uuid")
			continue
		}

		place, err := s.places.SharePlace(ctx, service.ShareInput{PlanID: planID, PlaceID: placeID}, memberID)
		if err == nil {
			s.metrics.ObserveShare(metrics.ShareOK)
			s.hub.Broadcast(planID, realtime.PlaceShared(placeToResponse(place)))
			continue
		}

		var shareErr *domain.ShareError
		if errors.As(err, &shareErr) {
			s.metrics.ObserveShare(string(shareErr.Reason))
			s.routeShareError(session, shareErr)
			continue
		}

		s.metrics.ObserveShare(realtime.CodeInternal)
		log.ErrorContext(ctx, "share place failed", "place_id", placeID, "error", err)
		s.hub.Send(session, realtime.ErrorFrame(realtime.CodeInternal, "internal server error"))
	}
}

// routeShareError delivers a domain failure to the acting member's sessions
// on the plan the error names. When the plan was not resolved, or the member
// has no session there, the originating session gets it.
func (s *Server) routeShareError(origin *realtime.Session, err *domain.ShareError) {
	f := realtime.ShareFailed(err)
	if planID := err.PlanID(); planID != nil {
		if s.hub.SendToMember(*planID, err.Member, f) > 0 {
			return
		}
	}
	s.hub.Send(origin, f)
}

func (s *Server) rejectFrame(session *realtime.Session, message string) {
	s.metrics.ObserveShare(realtime.CodeBadRequest)
	s.hub.Send(session, realtime.ErrorFrame(realtime.CodeBadRequest, message))
}
