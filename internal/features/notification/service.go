package notification

import (
	"context"
	"sync"
	"time"

	common_models "go-negotiation/internal/common/models"
	"go-negotiation/internal/config"

	"github.com/robfig/cron/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Notifier is the fire-and-forget port the workflows depend on.
type Notifier interface {
	Notify(ctx context.Context, recipient string, event Event)
}

type NotificationService interface {
	Notifier
	ListForActor(ctx context.Context, actor common_models.Actor, page common_models.Page) ([]Notification, int64, error)
	DeliverPending(ctx context.Context) (int, error)
	Start(ctx context.Context) error
	Stop() error
}

type NotificationServiceImpl struct {
	repo      NotificationRepository
	deliverer Deliverer
	log       *zap.Logger
	schedule  string
	now       func() time.Time

	// mu guards sends on queue against Stop closing it.
	mu        sync.RWMutex
	closed    bool
	queue     chan Notification
	wg        sync.WaitGroup
	scheduler *cron.Cron
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewNotificationService(repo NotificationRepository, hub *Hub, cfg *config.Config, log *zap.Logger) NotificationService {
	return newService(repo, hub, cfg.NotificationSchedule, cfg.NotificationBuffer, log)
}

func newService(repo NotificationRepository, deliverer Deliverer, schedule string, buffer int, log *zap.Logger) *NotificationServiceImpl {
	if buffer < 1 {
		buffer = 1
	}
	return &NotificationServiceImpl{
		repo:      repo,
		deliverer: deliverer,
		log:       log,
		schedule:  schedule,
		now:       time.Now,
		queue:     make(chan Notification, buffer),
	}
}

// Notify never blocks the caller: when the buffer is full or the service
// has stopped, the event is dropped and logged.
func (s *NotificationServiceImpl) Notify(ctx context.Context, recipient string, event Event) {
	if recipient == "" {
		return
	}
	n := Notification{
		Recipient: recipient,
		Event:     event,
		Status:    DeliveryPending,
		CreatedAt: s.now(),
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		s.log.Warn("notification service stopped, dropping event",
			zap.String("recipient", recipient),
			zap.String("event", event.Type))
		return
	}
	select {
	case s.queue <- n:
	default:
		s.log.Warn("notification queue full, dropping event",
			zap.String("recipient", recipient),
			zap.String("event", event.Type))
	}
}

func (s *NotificationServiceImpl) persist() {
	defer s.wg.Done()
	for n := range s.queue {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, &n); err != nil {
			s.log.Error("persist notification", zap.String("recipient", n.Recipient), zap.Error(err))
		}
		cancel()
	}
}

// DeliverPending pushes stored pending notifications to connected clients.
func (s *NotificationServiceImpl) DeliverPending(ctx context.Context) (int, error) {
	pending, err := s.repo.ListPending(ctx, 500)
	if err != nil {
		return 0, err
	}

	var delivered, missed []primitive.ObjectID
	for _, n := range pending {
		if s.deliverer.Deliver(n) {
			delivered = append(delivered, n.ID)
		} else {
			missed = append(missed, n.ID)
		}
	}

	if err := s.repo.MarkDelivered(ctx, delivered, s.now()); err != nil {
		return 0, err
	}
	if err := s.repo.IncrementAttempts(ctx, missed); err != nil {
		s.log.Warn("increment notification attempts", zap.Error(err))
	}
	return len(delivered), nil
}

func (s *NotificationServiceImpl) ListForActor(ctx context.Context, actor common_models.Actor, page common_models.Page) ([]Notification, int64, error) {
	p := page.Normalize()
	return s.repo.ListForRecipients(ctx, RecipientsFor(actor), p.Limit, p.Offset())
}

// Start launches the persistence worker and the delivery schedule.
func (s *NotificationServiceImpl) Start(ctx context.Context) error {
	var err error
	s.startOnce.Do(func() {
		s.wg.Add(1)
		go s.persist()

		s.scheduler = cron.New()
		_, err = s.scheduler.AddFunc(s.schedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
			defer cancel()
			n, err := s.DeliverPending(ctx)
			if err != nil {
				s.log.Error("deliver pending notifications", zap.Error(err))
				return
			}
			if n > 0 {
				s.log.Debug("delivered notifications", zap.Int("count", n))
			}
		})
		if err != nil {
			return
		}
		s.scheduler.Start()
		s.log.Info("notification dispatcher started", zap.String("schedule", s.schedule))
	})
	return err
}

// Stop waits for a running delivery, then drains the queue.
func (s *NotificationServiceImpl) Stop() error {
	s.stopOnce.Do(func() {
		if s.scheduler != nil {
			<-s.scheduler.Stop().Done()
		}
		s.mu.Lock()
		s.closed = true
		close(s.queue)
		s.mu.Unlock()
		s.wg.Wait()
	})
	return nil
}
