package service

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StepGuard tracks the next expected question index per user so a replayed or
// double-submitted answer is rejected instead of re-applying its increment.
// State survives session completion (the terminal index stays recorded until
// Begin or the TTL resets it), so a replayed final answer still mismatches.
type StepGuard interface {
	// Begin resetea el progreso del usuario al inicio de un diagnostico.
	Begin(userID string) error
	// Advance valida que `index` sea el paso esperado y avanza al siguiente.
	Advance(userID string, index int) (bool, error)
	// Rewind vuelve al paso `index` cuando su commit fallo, para que el
	// reintento del mismo token sea aceptado.
	Rewind(userID string, index int) error
}

type memoryStepGuard struct {
	mu    sync.Mutex
	ttl   time.Duration
	steps map[string]stepEntry
}

type stepEntry struct {
	next      int
	expiresAt time.Time
}

// NewMemoryStepGuard crea un guard en memoria con expiracion por inactividad.
func NewMemoryStepGuard(ttl time.Duration) StepGuard {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &memoryStepGuard{
		ttl:   ttl,
		steps: make(map[string]stepEntry),
	}
}

func (g *memoryStepGuard) Begin(userID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.steps[userID] = stepEntry{next: 0, expiresAt: time.Now().UTC().Add(g.ttl)}
	return nil
}

func (g *memoryStepGuard) Advance(userID string, index int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	entry, ok := g.steps[userID]
	if ok && time.Now().UTC().After(entry.expiresAt) {
		delete(g.steps, userID)
		ok = false
	}
	// Sin registro no se puede distinguir un reinicio legitimo del proceso de
	// un replay, asi que se acepta el paso y se retoma el seguimiento.
	if !ok {
		g.steps[userID] = stepEntry{next: index + 1, expiresAt: time.Now().UTC().Add(g.ttl)}
		return true, nil
	}
	if entry.next != index {
		return false, nil
	}
	g.steps[userID] = stepEntry{next: index + 1, expiresAt: time.Now().UTC().Add(g.ttl)}
	return true, nil
}

func (g *memoryStepGuard) Rewind(userID string, index int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.steps[userID] = stepEntry{next: index, expiresAt: time.Now().UTC().Add(g.ttl)}
	return nil
}

const redisStepAdvanceScript = `
local current = redis.call("GET", KEYS[1])
if current and tonumber(current) ~= tonumber(ARGV[1]) then
  return 0
end
redis.call("SET", KEYS[1], tonumber(ARGV[1]) + 1, "EX", ARGV[2])
return 1
`

type redisStepGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedisStepGuard crea un guard respaldado en redis, para despliegues con
// mas de una instancia del servicio.
func NewRedisStepGuard(client *redis.Client, ttl time.Duration) StepGuard {
	if client == nil {
		return nil
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisStepGuard{
		client: client,
		ttl:    ttl,
		prefix: "mbti:step:",
	}
}

func (g *redisStepGuard) key(userID string) string {
	return g.prefix + strings.TrimSpace(userID)
}

func (g *redisStepGuard) Begin(userID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return g.client.Set(ctx, g.key(userID), 0, g.ttl).Err()
}

func (g *redisStepGuard) Advance(userID string, index int) (bool, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	seconds := int(g.ttl.Seconds())
	if seconds <= 0 {
		seconds = 3600
	}
	ok, err := g.client.Eval(ctx, redisStepAdvanceScript,
		[]string{g.key(userID)}, strconv.Itoa(index), seconds).Int()
	if err != nil {
		return false, err
	}
	return ok == 1, nil
}

func (g *redisStepGuard) Rewind(userID string, index int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	return g.client.Set(ctx, g.key(userID), index, g.ttl).Err()
}
