package worker

import (
	"encoding/json"
	"log"

	"github.com/cogestio/espaceclient/internal/handler"
	"github.com/cogestio/espaceclient/internal/stream"
	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// NotifierWorker consumes the document-review topics and sends the matching
// transactional email: a submission notice to the assigned account manager,
// a validation or rejection notice to the client.
func (wk *Worker) NotifierWorker() {
	go wk.consume(handler.DocumentSubmittedTopic, wk.notifySubmitted)
	go wk.consume(handler.DocumentApprovedTopic, wk.notifyApproved)
	wk.consume(handler.DocumentRejectedTopic, wk.notifyRejected)
}

func (wk *Worker) consume(topic string, handle func(*handler.DocumentReviewEvent)) {
	consumer, err := wk.KafkaStream.CreateConsumer(&stream.StreamConsumer{
		GroupId: notifierGroupID,
		Topic:   topic,
	})

	if err != nil {
		log.Fatalf("Error creating consumer: %v", err)
	}
	defer consumer.Close()

	for {
		select {
		case <-wk.Ctx.Done():
			return
		default:
		}

		event := consumer.Poll(100) // Poll every 100ms
		switch e := event.(type) {
		case *kafka.Message:
			log.Printf("Review message received on %s: %s\n", e.TopicPartition, string(e.Value))

			var reviewEvent handler.DocumentReviewEvent
			if err := json.Unmarshal(e.Value, &reviewEvent); err != nil {
				log.Printf("Error decoding review event: %v", err)
				continue
			}

			handle(&reviewEvent)
		case kafka.Error:
			log.Printf("Error: %v\n", e)
		default:
			// Handle other events if needed
		}
	}
}

func (wk *Worker) notifySubmitted(event *handler.DocumentReviewEvent) {
	client, found, err := wk.DB.GetProfile(event.UserID)
	if err != nil || !found {
		log.Printf("Error loading client %s for submission notice: %v", event.UserID, err)
		return
	}

	if !client.AssignedTo.Valid {
		// Unassigned clients have no manager to notify.
		return
	}

	manager, found, err := wk.DB.GetProfile(client.AssignedTo.String)
	if err != nil || !found {
		log.Printf("Error loading manager for client %s: %v", event.UserID, err)
		return
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = wk.Helper.DisplayName(manager.FirstName, manager.LastName)
	emailData["ClientName"] = wk.Helper.DisplayName(client.FirstName, client.LastName)
	emailData["DocumentType"] = event.DocumentType

	if err := wk.Mailer.Send(manager.Email, emailData, "document-submitted.tmpl"); err != nil {
		log.Printf("Error sending submission notice: %v", err)
	}
}

func (wk *Worker) notifyApproved(event *handler.DocumentReviewEvent) {
	client, found, err := wk.DB.GetProfile(event.UserID)
	if err != nil || !found {
		log.Printf("Error loading client %s for approval notice: %v", event.UserID, err)
		return
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = wk.Helper.DisplayName(client.FirstName, client.LastName)

	if err := wk.Mailer.Send(client.Email, emailData, "document-approved.tmpl"); err != nil {
		log.Printf("Error sending approval notice: %v", err)
	}
}

func (wk *Worker) notifyRejected(event *handler.DocumentReviewEvent) {
	client, found, err := wk.DB.GetProfile(event.UserID)
	if err != nil || !found {
		log.Printf("Error loading client %s for rejection notice: %v", event.UserID, err)
		return
	}

	emailData := wk.Helper.NewEmailData()
	emailData["Name"] = wk.Helper.DisplayName(client.FirstName, client.LastName)
	emailData["Comment"] = event.Comment

	if err := wk.Mailer.Send(client.Email, emailData, "document-rejected.tmpl"); err != nil {
		log.Printf("Error sending rejection notice: %v", err)
	}
}
