package jobqueue

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2/log"

	"github.com/lipsense/portal/app/models"
	"github.com/lipsense/portal/internal/pkg/mail"
)

// LeadMarker records a delivered notification on the stored lead.
type LeadMarker interface {
	MarkNotified(id uint64) error
}

// SalesNotifier emails new enterprise leads to the sales inbox. With a queue
// the mail is sent by a worker and retried; without one it is sent inline.
type SalesNotifier struct {
	queue  *Queue
	mailer mail.Sender
	leads  LeadMarker
	to     string
}

// NewSalesNotifier registers the delivery handler on q when q is not nil.
func NewSalesNotifier(q *Queue, mailer mail.Sender, leads LeadMarker, to string) *SalesNotifier {
	n := &SalesNotifier{queue: q, mailer: mailer, leads: leads, to: to}
	if q != nil {
		q.Handle(JobTypeSalesNotification, n.handle)
	}
	return n
}

// NotifyLead schedules the notification for a stored lead.
func (n *SalesNotifier) NotifyLead(ctx context.Context, lead *models.ContactRequest) error {
	if lead == nil {
		return errors.New("nil lead")
	}
	if n.queue == nil {
		return n.Deliver(ctx, lead)
	}
	payload := SalesNotificationPayload{LeadID: lead.ID, Lead: *lead, To: n.to}
	job, err := n.queue.EnqueueJob(ctx, JobTypeSalesNotification, payload.ToMap())
	if err != nil {
		log.Warnf("[SalesNotifier] queue unavailable for %s, sending inline: %v", lead.PublicID, err)
		return n.Deliver(ctx, lead)
	}
	log.Infof("[SalesNotifier] lead %s queued as job %s", lead.PublicID, job.ID)
	return nil
}

// Deliver sends the email and marks the lead notified. A failed mark is only
// logged since the mail already went out.
func (n *SalesNotifier) Deliver(ctx context.Context, lead *models.ContactRequest) error {
	return n.deliverTo(ctx, n.to, lead)
}

func (n *SalesNotifier) deliverTo(_ context.Context, to string, lead *models.ContactRequest) error {
	if n.mailer == nil || to == "" {
		return errors.New("sales notifications not configured")
	}
	subject, body, err := mail.ContactNotification(lead)
	if err != nil {
		return fmt.Errorf("render notification: %w", err)
	}
	if err := n.mailer.Send(to, subject, body); err != nil {
		return fmt.Errorf("send notification for %s: %w", lead.PublicID, err)
	}
	if n.leads != nil && lead.ID != 0 {
		if err := n.leads.MarkNotified(lead.ID); err != nil {
			log.Warnf("[SalesNotifier] could not mark %s notified: %v", lead.PublicID, err)
		}
	}
	log.Infof("[SalesNotifier] lead %s sent to %s", lead.PublicID, to)
	return nil
}

func (n *SalesNotifier) handle(ctx context.Context, job *Job) error {
	payload, err := SalesNotificationPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	lead := payload.Lead
	lead.ID = payload.LeadID
	to := payload.To
	if to == "" {
		to = n.to
	}
	return n.deliverTo(ctx, to, &lead)
}
