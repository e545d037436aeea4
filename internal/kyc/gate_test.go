package kyc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/SairajMN/autocrowd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGateModes(t *testing.T) {
	assert.IsType(t, AllowAllGate{}, NewGate(config.KycConfig{}))
	assert.IsType(t, AllowAllGate{}, NewGate(config.KycConfig{Mode: "allowall"}))
	assert.IsType(t, &StaticGate{}, NewGate(config.KycConfig{Mode: "static"}))
	assert.IsType(t, &HTTPGate{}, NewGate(config.KycConfig{Mode: "http"}))
}

func TestAllowAllGate(t *testing.T) {
	ok, err := AllowAllGate{}.IsEligible(context.Background(), "0xanyone")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStaticGate(t *testing.T) {
	gate := NewStaticGate([]string{"0xAbCdEf0123456789AbCdEf0123456789AbCdEf01"})
	ctx := context.Background()

	// 地址比较大小写不敏感
	ok, err := gate.IsEligible(ctx, "0xabcdef0123456789abcdef0123456789abcdef01")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = gate.IsEligible(ctx, "0XABCDEF0123456789ABCDEF0123456789ABCDEF01")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = gate.IsEligible(ctx, "0x9999999999999999999999999999999999999999")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPGate(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody struct {
		Address string `json:"address"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(map[string]bool{
			"eligible": gotBody.Address == "0xvetted",
		})
	}))
	defer srv.Close()

	gate := NewHTTPGate(config.KycConfig{BaseUrl: srv.URL, ApiKey: "secret"})
	ctx := context.Background()

	ok, err := gate.IsEligible(ctx, "0xvetted")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/v1/kyc/check", gotPath)
	assert.Equal(t, "Bearer secret", gotAuth)

	ok, err = gate.IsEligible(ctx, "0xstranger")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHTTPGateServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	gate := NewHTTPGate(config.KycConfig{BaseUrl: srv.URL})
	_, err := gate.IsEligible(context.Background(), "0xvetted")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}
