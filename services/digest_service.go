// services/digest_service.go
package services

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
	"gorm.io/gorm"

	"queuebarber-backend/models"
	"queuebarber-backend/utils"
	"queuebarber-backend/ws"
)

// DigestService runs the nightly housekeeping pass: send each owner a served
// count for the day over WhatsApp/SMS, then sweep completed entries out of
// the queue.
type DigestService struct {
	db     *gorm.DB
	queue  *QueueService
	client *twilio.RestClient
}

func NewDigestService(db *gorm.DB, hub *ws.Hub) *DigestService {
	accountSid := os.Getenv("TWILIO_ACCOUNT_SID")
	authToken := os.Getenv("TWILIO_AUTH_TOKEN")

	return &DigestService{
		db:    db,
		queue: NewQueueService(db, hub),
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSid,
			Password: authToken,
		}),
	}
}

func (s *DigestService) StartScheduler() {
	c := cron.New()

	// Every day at 9 PM, after closing time for most shops
	if _, err := c.AddFunc("0 21 * * *", s.RunNightly); err != nil {
		log.Printf("Failed to schedule nightly digest: %v", err)
		return
	}

	c.Start()
	log.Println("Digest scheduler started")
}

func (s *DigestService) RunNightly() {
	log.Println("Starting nightly digest processing...")

	var salons []models.Salon
	if err := s.db.Find(&salons).Error; err != nil {
		log.Printf("Failed to fetch salons: %v", err)
		return
	}

	for _, salon := range salons {
		s.ProcessSalon(salon)
	}

	log.Println("Nightly digest processing completed")
}

func (s *DigestService) ProcessSalon(salon models.Salon) {
	served, waitLeft, err := s.dailyCounts(salon.ID.String())
	if err != nil {
		log.Printf("Salon %s: failed to count served clients: %v", salon.ID, err)
		return
	}

	if salon.WhatsappSupport != "" && os.Getenv("TWILIO_ACCOUNT_SID") != "" {
		s.sendDigest(salon, served, waitLeft)
	}

	// Housekeeping: done entries older than today have no reason to stay.
	if cleared, err := s.queue.ClearCompleted(salon.ID); err != nil {
		log.Printf("Salon %s: failed to clear completed entries: %v", salon.ID, err)
	} else if cleared > 0 {
		log.Printf("Salon %s: cleared %d completed entries", salon.ID, cleared)
	}
}

func (s *DigestService) dailyCounts(salonID string) (served int64, waitLeft int, err error) {
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	err = s.db.Model(&models.Client{}).
		Where("salon_id = ? AND status = ? AND created_at >= ?", salonID, models.StatusDone, startOfDay).
		Count(&served).Error
	if err != nil {
		return 0, 0, err
	}

	var waiting []models.Client
	if err = s.db.Where("salon_id = ? AND status = ?", salonID, models.StatusWaiting).
		Find(&waiting).Error; err != nil {
		return 0, 0, err
	}
	for _, c := range waiting {
		waitLeft += c.ServiceDuration
	}
	return served, waitLeft, nil
}

func (s *DigestService) sendDigest(salon models.Salon, served int64, waitLeft int) {
	message := fmt.Sprintf("QueueBarber daily summary for %s: %d clients served today.", salon.Name, served)
	if waitLeft > 0 {
		message += fmt.Sprintf(" Still in line: about %s of work left.", utils.FormatWaitTime(waitLeft))
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo("whatsapp:" + salon.WhatsappSupport)
	params.SetFrom("whatsapp:" + os.Getenv("TWILIO_WHATSAPP_NUMBER"))
	params.SetBody(message)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		log.Printf("Salon %s: failed to send digest: %v", salon.ID, err)
		return
	}
	log.Printf("Salon %s: digest sent", salon.ID)
}
