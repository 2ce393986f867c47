// Package resilience implementa el ejecutor de operaciones con reintentos,
// circuit breaker por operación y estrategias de recuperación por código de error.
// El backoff exponencial usa cenkalti/backoff (jitter ±10%); el breaker, sony/gobreaker.
package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/AlmacenPos-api/pkg/logger"
)

// Coded es un error que lleva un código clasificable (domain.CodedError lo implementa).
type Coded interface {
	ErrorCode() string
}

// Mensajes que marcan como reintentable un error sin código clasificado.
var retryableFragments = []string{"timeout", "connection", "network", "unavailable", "temporary"}

// RetryConfig política de reintentos de una operación.
// Delay del intento n: BaseDelay * Multiplier^(n-1), jitter ±10%, tope MaxDelay.
type RetryConfig struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	RetryableCodes []string
}

// DefaultRetryConfig es la política conservadora para operaciones no registradas:
// 3 intentos sin códigos reintentables (en la práctica, sin reintento).
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
		Multiplier:  2,
	}
}

// BreakerConfig política del circuit breaker de una operación externa.
// CLOSED → OPEN tras FailureThreshold fallos consecutivos; tras RecoveryTimeout
// pasa a HALF_OPEN y requiere 3 éxitos consecutivos para cerrar de nuevo.
type BreakerConfig struct {
	FailureThreshold uint32
	RecoveryTimeout  time.Duration
}

// DefaultBreakerConfig valores por defecto del breaker.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		RecoveryTimeout:  30 * time.Second,
	}
}

const halfOpenSuccesses = 3

// RecoveryStrategy es una estrategia nombrada de recuperación, consultada al
// agotar los reintentos. Si Recover devuelve nil el error se considera salvado;
// Fallback (opcional) se intenta cuando Recover no aplica o falla.
type RecoveryStrategy struct {
	Name       string
	CanRecover func(err error) bool
	Recover    func(ctx context.Context, err error) error
	Fallback   func(ctx context.Context) error
}

type operation struct {
	retry    RetryConfig
	external bool
	breaker  *gobreaker.CircuitBreaker
}

// Executor ejecuta operaciones nombradas aplicando la política registrada de cada una.
// El estado (breakers, registro) es por proceso y en memoria: limitación de
// escalabilidad heredada del sistema origen (ver DESIGN.md).
type Executor struct {
	mu         sync.RWMutex
	ops        map[string]*operation
	strategies map[string]RecoveryStrategy // por código de error
	log        *logger.Logger
}

// NewExecutor construye el ejecutor.
func NewExecutor(log *logger.Logger) *Executor {
	return &Executor{
		ops:        make(map[string]*operation),
		strategies: make(map[string]RecoveryStrategy),
		log:        log.Component("resilience"),
	}
}

// Register registra una operación interna con su política de reintentos.
func (e *Executor) Register(name string, retry RetryConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ops[name] = &operation{retry: retry}
}

// RegisterExternal registra una operación externa: reintentos + circuit breaker.
func (e *Executor) RegisterExternal(name string, retry RetryConfig, bc BreakerConfig) {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: halfOpenSuccesses,
		Timeout:     bc.RecoveryTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			e.log.Warn().
				Str("operation", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker cambió de estado")
		},
	})
	e.mu.Lock()
	defer e.mu.Unlock()
	e.ops[name] = &operation{retry: retry, external: true, breaker: cb}
}

// RegisterStrategy registra una estrategia de recuperación para un código de error.
func (e *Executor) RegisterStrategy(code string, s RecoveryStrategy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.strategies[code] = s
}

func (e *Executor) lookup(name string) *operation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if op, ok := e.ops[name]; ok {
		return op
	}
	return nil
}

// Execute corre fn con la política de la operación: reintentos con backoff
// exponencial jitterizado para errores reintentables, circuit breaker si la
// operación es externa y, al agotar reintentos, la estrategia de recuperación
// registrada para el código del error. Si nada aplica, propaga el error original
// tras registrarlo como crítico.
func (e *Executor) Execute(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	op := e.lookup(name)
	retry := DefaultRetryConfig()
	if op != nil {
		retry = op.retry
	}

	attempt := 0
	run := func() error {
		attempt++
		err := e.invoke(ctx, op, fn)
		if err == nil {
			return nil
		}
		// Breaker abierto: no tiene sentido reintentar dentro del timeout de recuperación.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		if !isRetryable(retry, err) {
			return backoff.Permanent(err)
		}
		e.log.Warn().
			Str("operation", name).
			Int("attempt", attempt).
			Err(err).
			Msg("operación falló, reintentando")
		return err
	}

	err := backoff.Retry(run, e.newBackOff(ctx, retry))
	if err == nil {
		return nil
	}
	return e.recover(ctx, name, err)
}

func (e *Executor) invoke(ctx context.Context, op *operation, fn func(ctx context.Context) error) error {
	if op == nil || !op.external {
		return fn(ctx)
	}
	_, err := op.breaker.Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	return err
}

func (e *Executor) newBackOff(ctx context.Context, retry RetryConfig) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = retry.BaseDelay
	b.MaxInterval = retry.MaxDelay
	b.Multiplier = retry.Multiplier
	b.RandomizationFactor = 0.1 // jitter ±10%
	b.MaxElapsedTime = 0

	maxRetries := uint64(0)
	if retry.MaxAttempts > 1 {
		maxRetries = uint64(retry.MaxAttempts - 1)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, maxRetries), ctx)
}

// recover consulta la estrategia registrada para el código del error agotado.
func (e *Executor) recover(ctx context.Context, name string, err error) error {
	code := codeOf(err)
	e.mu.RLock()
	strategy, ok := e.strategies[code]
	e.mu.RUnlock()

	if ok && (strategy.CanRecover == nil || strategy.CanRecover(err)) {
		if strategy.Recover != nil {
			if rerr := strategy.Recover(ctx, err); rerr == nil {
				e.log.Info().
					Str("operation", name).
					Str("strategy", strategy.Name).
					Msg("error recuperado por estrategia")
				return nil
			}
		}
		if strategy.Fallback != nil {
			if ferr := strategy.Fallback(ctx); ferr == nil {
				e.log.Info().
					Str("operation", name).
					Str("strategy", strategy.Name).
					Msg("fallback aplicado")
				return nil
			}
		}
	}

	e.log.Error().
		Str("operation", name).
		Str("code", code).
		Err(err).
		Msg("operación agotó reintentos sin recuperación")
	return err
}

// isRetryable decide si err amerita reintento bajo la política dada:
// con código clasificado, solo si está en la allow-list; sin código, si el
// mensaje contiene alguno de los fragmentos transitorios conocidos.
func isRetryable(retry RetryConfig, err error) bool {
	if code := codeOf(err); code != "" {
		for _, c := range retry.RetryableCodes {
			if c == code {
				return true
			}
		}
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, frag := range retryableFragments {
		if strings.Contains(msg, frag) {
			return true
		}
	}
	return false
}

func codeOf(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}
