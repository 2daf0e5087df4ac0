package httputil

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civicpulse/pkg/domain-errors"
)

func TestWriteError(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "validation maps to 400 with description",
			err:        dErrors.New(dErrors.CodeValidation, "description too short"),
			wantStatus: http.StatusBadRequest,
			wantBody:   `{"error":"validation_error","error_description":"description too short"}`,
		},
		{
			name:       "already voted maps to 409",
			err:        dErrors.New(dErrors.CodeAlreadyVoted, "user has already voted on this report"),
			wantStatus: http.StatusConflict,
			wantBody:   `{"error":"already_voted","error_description":"user has already voted on this report"}`,
		},
		{
			name:       "storage maps to 502",
			err:        dErrors.New(dErrors.CodeStorage, "blob store unavailable"),
			wantStatus: http.StatusBadGateway,
			wantBody:   `{"error":"storage_failure","error_description":"blob store unavailable"}`,
		},
		{
			name:       "internal omits the description",
			err:        dErrors.New(dErrors.CodeInternal, "pq: connection reset"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal_error"}`,
		},
		{
			name:       "plain errors default to internal",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal_error"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			WriteError(w, tc.err)

			assert.Equal(t, tc.wantStatus, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}
}

type fakeRequest struct {
	Name string `json:"name"`
}

func (r *fakeRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

func (r *fakeRequest) Validate() error {
	if r.Name == "" {
		return dErrors.New(dErrors.CodeValidation, "name is required")
	}
	return nil
}

func TestDecodeAndPrepare(t *testing.T) {
	t.Run("decodes, normalizes and validates", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"name":"  alice  "}`)))
		w := httptest.NewRecorder()

		decoded, ok := DecodeAndPrepare[fakeRequest](w, req, nil, req.Context(), "")

		require.True(t, ok)
		assert.Equal(t, "alice", decoded.Name)
	})

	t.Run("writes 400 on malformed JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{`)))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[fakeRequest](w, req, nil, req.Context(), "")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("writes the validation error", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{"name":"   "}`)))
		w := httptest.NewRecorder()

		_, ok := DecodeAndPrepare[fakeRequest](w, req, nil, req.Context(), "")

		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"validation_error","error_description":"name is required"}`, w.Body.String())
	})
}
