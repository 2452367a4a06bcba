// Package signals рассылает сигналы об успешных действиях администратора через Redis Pub/Sub.
// Подписчики (кэши, соседние инстансы консоли) получают "action:target".
package signals

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/xela07ax/authconsole/internal/infra"
	"go.uber.org/zap"
)

// Публикация идёт на пути запроса: недоступный Redis не должен задерживать редирект дольше этого.
const (
	publishTimeout = 500 * time.Millisecond
	dialTimeout    = time.Second
	ioTimeout      = 500 * time.Millisecond
)

type Notifier interface {
	Notify(ctx context.Context, action, target string)
}

// redisPublisher — часть *redis.Client, которая нужна для рассылки.
type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

type Publisher struct {
	rdb    redisPublisher
	logger *zap.Logger
}

func NewPublisher(rdb redisPublisher, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger.Named("signals")}
}

// NewRedisClient создаёт клиента по конфигу. nil, если redis.addr пуст.
func NewRedisClient(cfg infra.RedisConfig) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
	})
}

// Notify публикует сигнал. Ошибка Redis только логируется: действие уже выполнено.
func (p *Publisher) Notify(ctx context.Context, action, target string) {
	channel := infra.ActionChannel(action)
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := p.rdb.Publish(ctx, channel, action+":"+target).Err(); err != nil {
		p.logger.Warn("failed to publish action signal",
			zap.String("channel", channel),
			zap.String("target", target),
			zap.Error(err))
	}
}

// Nop — рассылка выключена (redis.addr не задан).
type Nop struct{}

func (Nop) Notify(context.Context, string, string) {}
