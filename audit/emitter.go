package audit

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ifsports/match-comments-service/models"
)

// Sink - внешний приёмник записей аудита.
type Sink interface {
	Publish(ctx context.Context, record models.AuditRecord) error
}

// Emitter отправляет записи аудита асинхронно, не блокируя мутацию,
// которая их породила. Ошибки отправки логируются и проглатываются:
// аудит - телеметрия, а не условие корректности операции.
//
// Политика при переполнении очереди: выбрасываем самую старую запись
// и считаем выброшенные.
type Emitter struct {
	sink            Sink
	queue           chan models.AuditRecord
	dispatchTimeout time.Duration
	dropped         atomic.Uint64
	logger          *slog.Logger
}

func NewEmitter(sink Sink, queueSize int, dispatchTimeout time.Duration, logger *slog.Logger) *Emitter {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Emitter{
		sink:            sink,
		queue:           make(chan models.AuditRecord, queueSize),
		dispatchTimeout: dispatchTimeout,
		logger:          logger,
	}
}

// Emit ставит запись в очередь и сразу возвращается. При насыщенной
// очереди вытесняет самую старую запись.
func (e *Emitter) Emit(record models.AuditRecord) {
	select {
	case e.queue <- record:
		return
	default:
	}

	// Очередь полна: освобождаем место за счёт самой старой записи.
	select {
	case <-e.queue:
		e.dropped.Add(1)
		e.logger.Warn("audit queue saturated, dropped oldest record",
			slog.Uint64("dropped_total", e.dropped.Load()))
	default:
	}

	select {
	case e.queue <- record:
	default:
		e.dropped.Add(1)
	}
}

// Dropped возвращает число записей, потерянных из-за переполнения.
func (e *Emitter) Dropped() uint64 {
	return e.dropped.Load()
}

// Run - фоновый воркер отправки. Блокируется до отмены контекста.
func (e *Emitter) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			e.drain()
			return
		case record := <-e.queue:
			e.dispatch(record)
		}
	}
}

func (e *Emitter) dispatch(record models.AuditRecord) {
	ctx, cancel := context.WithTimeout(context.Background(), e.dispatchTimeout)
	defer cancel()

	if err := e.sink.Publish(ctx, record); err != nil {
		e.logger.Error("failed to dispatch audit record",
			slog.String("event_type", record.EventType),
			slog.String("entity_id", record.EntityID),
			slog.Any("error", err))
	}
}

// drain пытается отправить то, что осталось в очереди на момент
// остановки. Новые записи уже не принимаются.
func (e *Emitter) drain() {
	for {
		select {
		case record := <-e.queue:
			e.dispatch(record)
		default:
			return
		}
	}
}
