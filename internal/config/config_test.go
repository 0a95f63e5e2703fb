package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kursant77/ajabo-f69de2d8/internal/application/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Service.HTTPAddr)
	assert.Equal(t, "Asia/Tashkent", cfg.Service.Timezone)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, 3, cfg.RateLimit.Max)
	assert.Equal(t, 30*time.Minute, cfg.Payment.TTL)
	assert.Equal(t, "ajabo.orders", cfg.AMQP.Exchange)
}

func TestLoadReadsOriginalEnvNames(t *testing.T) {
	t.Setenv("CLICK_SERVICE_ID", "svc-1")
	t.Setenv("VITE_PAYME_MERCHANT_ID", "payme-1")
	t.Setenv("WEBHOOK_URL", "https://bot.example.com/api/order-update")
	t.Setenv("API_SECRET_KEY", "k")
	t.Setenv("RATE_LIMIT_MAX", "5")
	t.Setenv("PAYMENT_TTL", "45m")

	cfg, err := Load("")
	require.NoError(t, err)

	m := cfg.Payment.Merchants()
	assert.Equal(t, "svc-1", m.ClickServiceID)
	assert.Equal(t, "payme-1", m.PaymeMerchantID)
	assert.Equal(t, "https://bot.example.com/api/order-update", cfg.Notify.WebhookURL)
	assert.Equal(t, "k", cfg.Notify.WebhookAPIKey)
	assert.Equal(t, 5, cfg.RateLimit.Max)
	assert.Equal(t, 45*time.Minute, cfg.Payment.TTL)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ajabo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("service:\n  http_addr: \":9090\"\nlog:\n  level: debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Service.HTTPAddr)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestValidateRejectsBadValues(t *testing.T) {
	t.Setenv("TIMEZONE", "Mars/Olympus")
	_, err := Load("")
	assert.Error(t, err)
}

func TestStaffAccounts(t *testing.T) {
	a := Auth{Staff: "boss:admin:$2a$10$abc, bobur:delivery:$2a$10$def:Bobur Karimov"}
	accounts, err := a.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, auth.RoleAdmin, accounts[0].Role)
	assert.Equal(t, "boss", accounts[0].DisplayName)
	assert.Equal(t, "Bobur Karimov", accounts[1].DisplayName)
	assert.Equal(t, "$2a$10$def", accounts[1].PasswordHash)

	_, err = Auth{Staff: "x:chef:hash"}.Accounts()
	assert.Error(t, err)

	t.Setenv("STAFF_ACCOUNTS", "boss:admin:hash")
	t.Setenv("JWT_SECRET", "short")
	_, err = Load("")
	assert.Error(t, err)
}
