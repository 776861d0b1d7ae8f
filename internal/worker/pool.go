package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"crovpos/internal/infra"
	"crovpos/internal/metrics"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueReportes = "jobs:reportes"
	QueueEmail    = "jobs:email"
)

// Job types.
const (
	TipoReporte = "reporte"
	TipoEmail   = "email"
)

const (
	maxIntentos = 3
	esperaPop   = 5 * time.Second
)

// Broker is the subset of the Redis client used by the queues.
// redis.UniversalClient satisfies it.
type Broker interface {
	LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	BRPop(ctx context.Context, timeout time.Duration, keys ...string) *redis.StringSliceCmd
	LLen(ctx context.Context, key string) *redis.IntCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists.
// The worker pool dequeues them via BRPOP.
type Dispatcher struct {
	rdb Broker
}

func NewDispatcher(rdb Broker) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueReporte pushes a KPI report job to Redis.
func (d *Dispatcher) EnqueueReporte(ctx context.Context, payload ReporteJob) error {
	return d.enqueue(ctx, QueueReportes, TipoReporte, payload)
}

// EnqueueEmail pushes an email job to Redis.
func (d *Dispatcher) EnqueueEmail(ctx context.Context, payload infra.Correo) error {
	return d.enqueue(ctx, QueueEmail, TipoEmail, payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	job := Job{Type: jobType, Payload: data}
	encoded, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return d.rdb.LPush(ctx, queue, encoded).Err()
}

// QueueLength returns the number of pending jobs of queue.
func QueueLength(ctx context.Context, rdb Broker, queue string) (int64, error) {
	return rdb.LLen(ctx, queue).Result()
}

// Handler processes one job payload. Errors are retried unless wrapped
// with infra.Permanent.
type Handler func(ctx context.Context, payload json.RawMessage) error

// Pool consumes the job queues with a fixed number of goroutines.
type Pool struct {
	rdb      Broker
	handlers map[string]Handler
	queues   []string
	intentos int
	espera   time.Duration
	wg       sync.WaitGroup
}

func NewPool(rdb Broker) *Pool {
	return &Pool{
		rdb:      rdb,
		handlers: map[string]Handler{},
		queues:   []string{QueueReportes, QueueEmail},
		intentos: maxIntentos,
		espera:   time.Second,
	}
}

// Register binds a job type to its handler. Call before Start.
func (p *Pool) Register(jobType string, h Handler) {
	p.handlers[jobType] = h
}

// Start launches numWorkers goroutines consuming every queue.
// Each goroutine blocks on BRPOP, zero CPU when idle.
func (p *Pool) Start(ctx context.Context, numWorkers int) {
	if numWorkers < 1 {
		numWorkers = 1
	}
	for i := 0; i < numWorkers; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			p.run(ctx, id)
		}(i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

// Wait blocks until every worker has returned after ctx ends.
func (p *Pool) Wait() { p.wg.Wait() }

func (p *Pool) run(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop: waits up to 5s then loops to check ctx
			result, err := p.rdb.BRPop(ctx, esperaPop, p.queues...).Result()
			if err != nil {
				if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
					log.Error().Err(err).Int("worker", id).Msg("worker: BRPOP failed")
					time.Sleep(time.Second)
				}
				continue
			}
			if len(result) < 2 {
				continue
			}
			p.process(ctx, result[0], result[1])
		}
	}
}

// process runs one job with retries; jobs that keep failing go to the DLQ.
func (p *Pool) process(ctx context.Context, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		quoted, _ := json.Marshal(raw)
		SendToDLQ(ctx, p.rdb, queue, "", quoted, "payload ilegible: "+err.Error(), 0)
		metrics.ObserveJob(queue, err)
		return
	}
	h, ok := p.handlers[job.Type]
	if !ok {
		err := fmt.Errorf("tipo de trabajo %q sin handler", job.Type)
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), 0)
		metrics.ObserveJob(queue, err)
		return
	}

	intentos := 0
	err := infra.WithBackoff(ctx, p.intentos, p.espera, func(int) error {
		intentos++
		return h(ctx, job.Payload)
	})
	if err != nil && ctx.Err() != nil {
		// Shutting down: hand the job back for the next process.
		if perr := p.rdb.LPush(context.WithoutCancel(ctx), queue, raw).Err(); perr != nil {
			log.Error().Err(perr).Str("queue", queue).Msg("worker: could not requeue job on shutdown")
		}
		return
	}
	metrics.ObserveJob(queue, err)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Str("type", job.Type).Int("attempts", intentos).Msg("worker: job failed")
		SendToDLQ(ctx, p.rdb, queue, job.Type, job.Payload, err.Error(), intentos)
		return
	}
	log.Info().Str("type", job.Type).Str("queue", queue).Int("attempts", intentos).Msg("worker: job processed")
}
