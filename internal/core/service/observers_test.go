package service

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/hospital-ms/hms-portal/internal/core/domain"
)

func TestLogTransitions_NeverLogsToken(t *testing.T) {
	var buf bytes.Buffer
	obs := LogTransitions(zerolog.New(&buf).Level(zerolog.DebugLevel))

	obs.OnSession(domain.Snapshot{State: domain.StateAuthenticated, Token: "secret-token", User: doctorUser()})

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked into log: %s", out)
	}
	for _, want := range []string{`"state":"authenticated"`, `"has_token":true`, `"role":"DOCTOR"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log %s missing %s", out, want)
		}
	}
}
