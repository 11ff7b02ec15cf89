package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/poetrydeveloper/app-store-v2/internal/config"
	"github.com/poetrydeveloper/app-store-v2/internal/store/entity"
	"github.com/poetrydeveloper/app-store-v2/internal/store/testutil"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Catalog: config.CatalogConfig{SearchLimit: 10, CacheTTL: time.Minute},
		Units:   config.UnitsConfig{SerialPrefix: "RF", MaxAttempts: 5},
	}
}

func setupServices(t *testing.T, mutate ...func(*config.Config)) (*Services, *testutil.TestEnv) {
	t.Helper()
	env := testutil.SetupEnv(t)
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	svc, err := NewServices(env.DB, env.Repos, nil, cfg, nil)
	require.NoError(t, err)
	return svc, env
}

// stubSerials 按顺序返回预设序列号，用尽后重复最后一个
type stubSerials struct {
	mu      sync.Mutex
	serials []string
	calls   int
}

func (s *stubSerials) Generate(*entity.Product, *entity.Delivery, time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.serials) {
		i = len(s.serials) - 1
	}
	s.calls++
	return s.serials[i]
}

func deliver(t *testing.T, svc *Services, itemID, date string, qty int) *entity.Delivery {
	t.Helper()
	d, err := svc.Delivery.Create(context.Background(), &DeliveryRequest{
		RequestItemID: itemID,
		DeliveryDate:  date,
		Quantity:      qty,
	})
	require.NoError(t, err)
	return d
}

func countRows(t *testing.T, env *testutil.TestEnv, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, env.DB.Model(model).Where(where, args...).Count(&n).Error)
	return n
}
