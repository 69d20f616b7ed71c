package rbac

import (
	"net/http"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestEnforce_CountsDecisionsByOutcome(t *testing.T) {
	cases := []struct {
		decision string
		sub      *Subject
		target   string
	}{
		{Allow.String(), &Subject{Roles: NewRoleSet(RoleAdmin)}, "/api/admin/users"},
		{DenyUnauthenticated.String(), nil, "/api/notes"},
		{DenyForbidden.String(), &Subject{Roles: NewRoleSet(RoleGuest)}, "/api/notes"},
		{decisionMalformedPath, &Subject{Roles: NewRoleSet(RoleUser)}, "/api/notes/.."},
	}
	for _, tc := range cases {
		t.Run(tc.decision, func(t *testing.T) {
			r := newEnforcedRouter(tc.sub)
			counter := decisionsTotal.WithLabelValues(tc.decision)
			before := counterValue(t, counter)

			serve(r, http.MethodGet, tc.target)

			if got := counterValue(t, counter); got != before+1 {
				t.Fatalf("expected %s counter to grow by 1, went %v -> %v", tc.decision, before, got)
			}
		})
	}
}
