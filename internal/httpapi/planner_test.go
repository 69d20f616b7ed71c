package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"dailyon/internal/planner"

	"github.com/gin-gonic/gin"
)

func TestPlannerParticipantAccess(t *testing.T) {
	a := newTestAPI(t)
	a.seedUser(t, "host", "password123")
	guest := a.seedUser(t, "guest", "password123")
	a.seedUser(t, "outsider", "password123")
	hostTok := a.login(t, "host", "password123").AccessToken
	guestTok := a.login(t, "guest", "password123").AccessToken
	outsiderTok := a.login(t, "outsider", "password123").AccessToken

	code, env := a.do(t, http.MethodPost, "/api/planner/events", hostTok, gin.H{
		"title":          "retro",
		"startDate":      "2026-08-01",
		"participantIds": []int64{guest.ID, 4242},
	})
	if code != http.StatusCreated {
		t.Fatalf("create: %d %+v", code, env.Error)
	}
	var e planner.Event
	if err := json.Unmarshal(env.Data, &e); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(e.ParticipantIDs) != 1 || e.ParticipantIDs[0] != guest.ID || !e.Editable {
		t.Fatalf("expected unknown participant dropped, got %+v", e)
	}

	code, env = a.do(t, http.MethodGet, "/api/planner/events/"+itoa(e.ID), guestTok, nil)
	if code != http.StatusOK {
		t.Fatalf("participant get: %d %+v", code, env.Error)
	}
	var seen planner.Event
	if err := json.Unmarshal(env.Data, &seen); err != nil || seen.Editable {
		t.Fatalf("expected read-only event, got %+v %v", seen, err)
	}

	code, env = a.do(t, http.MethodPut, "/api/planner/events/"+itoa(e.ID), guestTok, gin.H{"title": "mine", "startDate": "2026-08-01"})
	if code != http.StatusForbidden || env.Error.Code != "FORBIDDEN" {
		t.Fatalf("participant update: expected 403 FORBIDDEN, got %d %+v", code, env.Error)
	}
	if code, _ := a.do(t, http.MethodDelete, "/api/planner/events/"+itoa(e.ID), guestTok, nil); code != http.StatusForbidden {
		t.Fatalf("participant delete: expected 403, got %d", code)
	}
	if code, _ := a.do(t, http.MethodGet, "/api/planner/events/"+itoa(e.ID), outsiderTok, nil); code != http.StatusNotFound {
		t.Fatalf("outsider get: expected 404, got %d", code)
	}

	_, env = a.do(t, http.MethodGet, "/api/planner/events", guestTok, nil)
	var list []planner.Event
	if err := json.Unmarshal(env.Data, &list); err != nil || len(list) != 1 || list[0].ID != e.ID {
		t.Fatalf("participant list: %s %v", env.Data, err)
	}
}
