package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"slices"

	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"smartwaste-backend/internal/model"
)

// NotificationSender defines the interface for sending a web push notification.
type NotificationSender interface {
	Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// WebPushSender is a real implementation of NotificationSender using the webpush library.
type WebPushSender struct{}

// Send sends a notification using the webpush library.
func (s *WebPushSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return webpush.SendNotification(payload, sub, options)
}

// Alert reports a bin that reached the critical fill threshold.
type Alert struct {
	BinID       string `json:"binId"`
	FillPercent int    `json:"fillPercent"`
	Threshold   int    `json:"threshold"`
}

// Dispatcher accepts alerts for delivery.
type Dispatcher interface {
	Dispatch(alert Alert)
}

// pushMessage is the JSON payload delivered to the browser.
type pushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Alert
}

// WorkerPool manages a pool of workers for sending notifications.
type WorkerPool struct {
	size    int
	jobs    chan Alert
	db      *gorm.DB
	webpush *webpush.Options
	sender  NotificationSender
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(size int, db *gorm.DB, webpushOptions *webpush.Options) *WorkerPool {
	return &WorkerPool{
		size:    size,
		jobs:    make(chan Alert, size*16),
		db:      db,
		webpush: webpushOptions,
		sender:  &WebPushSender{},
	}
}

// Start launches the worker goroutines.
func (wp *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < wp.size; i++ {
		go wp.worker(ctx, i)
	}
}

func (wp *WorkerPool) worker(ctx context.Context, id int) {
	log.Printf("Worker %d started", id)
	for {
		select {
		case alert := <-wp.jobs:
			log.Printf("Worker %d processing alert for bin %s", id, alert.BinID)
			wp.sendNotificationsForBin(ctx, alert)
		case <-ctx.Done():
			log.Printf("Worker %d shutting down", id)
			return
		}
	}
}

// Dispatch queues an alert. It never blocks the caller: when the queue is full
// the alert is dropped and logged.
func (wp *WorkerPool) Dispatch(alert Alert) {
	select {
	case wp.jobs <- alert:
	default:
		log.Printf("Notification queue full; dropping alert for bin %s", alert.BinID)
	}
}

// Jobs returns the jobs channel for testing.
func (wp *WorkerPool) Jobs() chan Alert {
	return wp.jobs
}

// sendNotificationsForBin notifies every subscription that covers the bin.
func (wp *WorkerPool) sendNotificationsForBin(ctx context.Context, alert Alert) {
	var subscriptions []model.PushSubscription
	if err := wp.db.WithContext(ctx).Preload("Bins").Find(&subscriptions).Error; err != nil {
		log.Printf("Error fetching subscriptions for bin %s: %v", alert.BinID, err)
		return
	}

	var targets []model.PushSubscription
	for _, sub := range subscriptions {
		if Covers(sub, alert.BinID) {
			targets = append(targets, sub)
		}
	}
	if len(targets) == 0 {
		return
	}

	payload, err := json.Marshal(pushMessage{
		Title: "Bin needs collection",
		Body:  fmt.Sprintf("%s is %d%% full", alert.BinID, alert.FillPercent),
		Alert: alert,
	})
	if err != nil {
		log.Printf("Error encoding alert for bin %s: %v", alert.BinID, err)
		return
	}

	log.Printf("Sending %d notifications for bin %s", len(targets), alert.BinID)
	for _, sub := range targets {
		wp.sendNotification(ctx, sub, payload)
	}
}

// Covers reports whether a subscription wants alerts for binID. A subscription
// without a bin list covers every bin.
func Covers(sub model.PushSubscription, binID string) bool {
	return len(sub.Bins) == 0 || slices.Contains(sub.BinIDs(), binID)
}

// sendNotification sends a single web push notification.
func (wp *WorkerPool) sendNotification(ctx context.Context, sub model.PushSubscription, payload []byte) {
	wpSub := &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256DH,
			Auth:   sub.Auth,
		},
	}

	resp, err := wp.sender.Send(payload, wpSub, wp.webpush)
	if err != nil {
		log.Printf("Error sending notification to %s: %v", sub.Endpoint, err)
		return
	}
	defer resp.Body.Close()

	// Handle expired subscriptions
	if resp.StatusCode == http.StatusGone {
		log.Printf("Subscription for endpoint %s is expired. Deleting.", sub.Endpoint)
		if err := wp.db.WithContext(ctx).Select("Bins").Delete(&sub).Error; err != nil {
			log.Printf("Failed to delete expired subscription %s: %v", sub.Endpoint, err)
		}
	}
}
