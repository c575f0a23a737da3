package payment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gytx-dev/tombola-api/internal/config"
)

func testClient(endpoint string) *Client {
	return NewClient(&config.PaymentConfig{
		Endpoint:       endpoint,
		TimeoutSeconds: 2,
	})
}

func TestClient_Pay_Success(t *testing.T) {
	var gotAmount, gotNumero string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		gotAmount = r.PostFormValue("amount")
		gotNumero = r.PostFormValue("numero")
		w.Write([]byte("Your transaction has been successfully processed."))
	}))
	defer server.Close()

	result, err := testClient(server.URL).Pay(context.Background(), 375, "+241 074 98 76 54")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Reference)

	assert.Equal(t, "375", gotAmount)
	assert.Equal(t, "241074987654", gotNumero)
}

func TestClient_Pay_Declined(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("Solde insuffisant."))
	}))
	defer server.Close()

	result, err := testClient(server.URL).Pay(context.Background(), 500, "074987654")
	assert.ErrorIs(t, err, ErrPaymentFailed)
	// The reference survives failure so it can be quoted in logs.
	assert.NotEmpty(t, result.Reference)
}

func TestClient_Pay_GatewayUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	server.Close()

	_, err := testClient(server.URL).Pay(context.Background(), 500, "074987654")
	assert.ErrorIs(t, err, ErrPaymentFailed)
}

func TestDigitsOnly(t *testing.T) {
	assert.Equal(t, "241074987654", digitsOnly("+241 074-98-76-54"))
	assert.Equal(t, "", digitsOnly("abc"))
}
