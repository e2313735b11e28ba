package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
)

func TestWriteErrorResponse(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "given empty cart should answer bad request",
			err:             fmt.Errorf("failed checkout with error=%w", inErrors.ErrEmptyCart),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Carrito vacío",
		},
		{
			name:            "given foreign cart item should answer forbidden",
			err:             fmt.Errorf("failed updating with error=%w", inErrors.ErrForbidden),
			expectedStatus:  http.StatusForbidden,
			expectedMessage: "No autorizado",
		},
		{
			name:            "given missing customer should answer not found",
			err:             inErrors.New(inErrors.ErrNotFound, "Cliente destino no existe"),
			expectedStatus:  http.StatusNotFound,
			expectedMessage: "Cliente destino no existe",
		},
		{
			name:            "given invalid table should answer bad request",
			err:             inErrors.NewValidationError("table_number", "Número de mesa inválido"),
			expectedStatus:  http.StatusBadRequest,
			expectedMessage: "Número de mesa inválido",
		},
		{
			name:            "given unexpected error should answer internal server error",
			err:             fmt.Errorf("boom"),
			expectedStatus:  http.StatusInternalServerError,
			expectedMessage: "Error interno del servidor",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			WriteErrorResponse(context.Background(), recorder, test.err)

			body := map[string]interface{}{}
			assert.NoError(t, json.NewDecoder(recorder.Body).Decode(&body))
			assert.EqualValues(t, test.expectedStatus, recorder.Code)
			assert.EqualValues(t, "failed", body["status"])
			assert.EqualValues(t, test.expectedMessage, body["message"])
			assert.EqualValues(t, ValueHeaderApplicationJson, recorder.Header().Get(KeyHeaderContentType))
		})
	}
}
