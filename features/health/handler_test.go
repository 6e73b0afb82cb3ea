package health_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"virtualta/features/health"
)

type fakeLifecycle struct {
	ready  bool
	loaded int
}

func (f fakeLifecycle) Ready() bool { return f.ready }
func (f fakeLifecycle) Loaded() int { return f.loaded }

func TestHandler_Check(t *testing.T) {
	tests := []struct {
		name       string
		lifecycle  fakeLifecycle
		wantStatus int
		wantBody   string
	}{
		{
			name:       "Ready With Both Corpora",
			lifecycle:  fakeLifecycle{ready: true, loaded: 10 + 5},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy","data_loaded":15}`,
		},
		{
			name:       "Ready But Empty",
			lifecycle:  fakeLifecycle{ready: true},
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"healthy","data_loaded":0}`,
		},
		{
			name:       "Still Loading",
			lifecycle:  fakeLifecycle{loaded: 3},
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   `{"status":"loading","data_loaded":3}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			health.NewHandler(tt.lifecycle).Check(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
		})
	}
}
