package notify

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// requires Redis; override the address with REDIS_ADDR
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisRelay_CrossProcess(t *testing.T) {
	client := setupRedis(t)
	channel := "inventory:test:" + t.Name()

	log := logrus.New()
	log.SetOutput(os.Stderr)

	hubA, hubB := NewHub(), NewHub()
	relayA := NewRedisRelay(client, channel, hubA, log)
	relayB := NewRedisRelay(client, channel, hubB, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go relayA.Run(ctx)
	go relayB.Run(ctx)
	time.Sleep(100 * time.Millisecond)

	subA := hubA.Subscribe(Collection())
	defer subA.Close()
	subB := hubB.Subscribe(Row(4))
	defer subB.Close()

	relayA.Notify(Row(4))

	select {
	case got := <-subB.C():
		require.Equal(t, Row(4), got)
	case <-time.After(2 * time.Second):
		t.Fatal("remote hub did not receive the signal")
	}

	select {
	case got := <-subA.C():
		require.Equal(t, Row(4), got)
	case <-time.After(time.Second):
		t.Fatal("local hub did not receive the signal")
	}

	select {
	case <-subA.C():
		t.Fatal("relay echoed its own signal back")
	case <-time.After(300 * time.Millisecond):
	}
}
