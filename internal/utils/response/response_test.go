package response_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aanand-mishra/school-api/internal/utils/response"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(h response.Handler) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	response.Handle(h).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var msg string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &msg))
	return msg
}

func TestHandle_Success(t *testing.T) {
	w := serve(func(*http.Request) (any, error) {
		return response.Message{Message: "ok"}, nil
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"message":"ok"}`, w.Body.String())
}

func TestHandle_NilResultIsNull(t *testing.T) {
	w := serve(func(*http.Request) (any, error) { return nil, nil })

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "null", strings.TrimSpace(w.Body.String()))
}

func TestHandle_PlainErrorIs500(t *testing.T) {
	w := serve(func(*http.Request) (any, error) {
		return nil, errors.New("UNIQUE constraint failed: pessoas.email")
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "UNIQUE constraint failed: pessoas.email", errorBody(t, w))
}

func TestHandle_StatusErrorSurvivesWrapping(t *testing.T) {
	w := serve(func(*http.Request) (any, error) {
		return nil, fmt.Errorf("decode: %w", response.BadRequest(errors.New("unexpected EOF")))
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "decode: unexpected EOF", errorBody(t, w))
}

func TestValidationError_Messages(t *testing.T) {
	type body struct {
		Nome  string `validate:"required"`
		Email string `validate:"email"`
		Role  string `validate:"oneof=estudante docente"`
		Data  string `validate:"datetime=2006-01-02"`
		Idade int    `validate:"min=1"`
	}

	err := validator.New().Struct(body{Email: "x", Role: "x", Data: "x"})
	var verrs validator.ValidationErrors
	require.True(t, errors.As(err, &verrs))

	got := response.ValidationError(verrs)
	var se *response.StatusError
	require.True(t, errors.As(got, &se))
	assert.Equal(t, http.StatusBadRequest, se.Status)
	assert.Equal(t, "field Nome is required, "+
		"field Email must be a valid email address, "+
		"field Role must be one of [estudante docente], "+
		"field Data must be a date formatted as 2006-01-02, "+
		"field Idade is invalid", got.Error())
}
