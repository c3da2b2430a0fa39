package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/tenant-site-backend/errs"
	"github.com/rpupo63/tenant-site-backend/models"
)

const maxInquiryMessage = 5000

// FormService stores contact form submissions from tenant sites.
type FormService struct {
	inquiries InquiryStore
	notifier  Notifier
	logger    zerolog.Logger
}

func NewFormService(inquiries InquiryStore, notifier Notifier) *FormService {
	return &FormService{
		inquiries: inquiries,
		notifier:  notifier,
		logger:    log.With().Str("service", "forms").Logger(),
	}
}

// SubmitInquiry validates and stores an inquiry, then notifies the tenant best effort.
func (s *FormService) SubmitInquiry(ctx context.Context, tenant *models.Tenant, inquiry *models.Inquiry) (*models.Inquiry, error) {
	inquiry.ID = uuid.Nil
	inquiry.TenantID = tenant.ID
	inquiry.Name = strings.TrimSpace(inquiry.Name)
	inquiry.Email = normalizeEmail(inquiry.Email)
	inquiry.Message = strings.TrimSpace(inquiry.Message)
	inquiry.Status = models.InquiryStatusNew

	switch {
	case inquiry.Name == "":
		return nil, errs.NewMissingRequiredFieldError("name")
	case inquiry.Email == "":
		return nil, errs.NewMissingRequiredFieldError("email")
	case !validEmail(inquiry.Email):
		return nil, errs.NewInvalidFieldError("email", "not a valid email address")
	case inquiry.Message == "":
		return nil, errs.NewMissingRequiredFieldError("message")
	case len([]rune(inquiry.Message)) > maxInquiryMessage:
		return nil, errs.NewInvalidFieldError("message", "too long")
	}

	if err := s.inquiries.Add(ctx, inquiry); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.NotifyInquiry(ctx, tenant, inquiry); err != nil {
			s.logger.Warn().Err(err).Str("tenant", tenant.Slug).Msg("Inquiry notification incomplete")
		}
	}
	return inquiry, nil
}
