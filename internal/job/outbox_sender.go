package job

import (
	"context"
	"log"
	"time"

	"github.com/sunsun042505/sunwoobank/internal/config"
	"github.com/sunsun042505/sunwoobank/internal/infrastructure/mq"
	"github.com/sunsun042505/sunwoobank/internal/model"
	"github.com/sunsun042505/sunwoobank/internal/service"
)

// OutboxSender 账务事件投递任务
// 轮询发件箱中 PENDING 的事件并发往 Kafka。事件与记账同事务落库，
// 这里只负责"至少一次"投递；超过最大重试次数标记为 FAILED 人工介入。
type OutboxSender struct {
	store     service.Store
	cfg       *config.Config
	stopCh    chan struct{}
	interval  time.Duration
	batchSize int
}

func NewOutboxSender(store service.Store, cfg *config.Config) *OutboxSender {
	return &OutboxSender{
		store:     store,
		cfg:       cfg,
		stopCh:    make(chan struct{}),
		interval:  100 * time.Millisecond,
		batchSize: 100,
	}
}

func (s *OutboxSender) Start(ctx context.Context) {
	log.Println("[OutboxSender] 账务事件投递任务启动")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("[OutboxSender] 收到停止信号，任务退出")
			return
		case <-s.stopCh:
			log.Println("[OutboxSender] 任务停止")
			return
		case <-ticker.C:
			s.processPendingMessages(ctx)
		}
	}
}

func (s *OutboxSender) Stop() {
	close(s.stopCh)
}

func (s *OutboxSender) processPendingMessages(ctx context.Context) {
	messages, err := s.store.Outbox().GetPending(ctx, s.batchSize)
	if err != nil {
		log.Printf("[OutboxSender] 查询事件失败: %v", err)
		return
	}

	for _, msg := range messages {
		s.sendMessage(ctx, msg)
	}
}

func (s *OutboxSender) sendMessage(ctx context.Context, msg *model.OutboxMessage) {
	err := mq.SendMessage(msg.Topic, msg.MessageKey, msg.Payload)

	if err == nil {
		if updateErr := s.store.Outbox().UpdateStatus(ctx, msg.ID, model.OutboxStatusSent); updateErr != nil {
			log.Printf("[OutboxSender] 更新事件状态失败: id=%d, err=%v", msg.ID, updateErr)
		}
		return
	}

	log.Printf("[OutboxSender] 事件投递失败: id=%d, err=%v", msg.ID, err)

	if err := s.store.Outbox().IncrementRetry(ctx, msg.ID); err != nil {
		log.Printf("[OutboxSender] 增加重试次数失败: id=%d, err=%v", msg.ID, err)
	}

	if msg.RetryCount+1 >= s.cfg.Business.MaxRetryCount {
		if err := s.store.Outbox().MarkFailed(ctx, msg.ID); err != nil {
			log.Printf("[OutboxSender] 标记失败状态失败: id=%d, err=%v", msg.ID, err)
		} else {
			log.Printf("[OutboxSender] 事件超过最大重试次数，标记为失败: id=%d", msg.ID)
		}
	}
}
