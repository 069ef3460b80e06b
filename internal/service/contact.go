package service

import (
	"context"
	"errors"
	"fmt"
	"food-ordering-api/internal/client"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/model"
	"food-ordering-api/internal/repository"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

const msgContactNotFound = "contact query not found"

type ContactService interface {
	Submit(ctx context.Context, req *dto.ContactQueryRequest) (*dto.ContactResponse, error)
	List(ctx context.Context) (*dto.ContactListResponse, error)
	UpdateStatus(ctx context.Context, queryID string, req *dto.ContactStatusRequest) (*dto.ContactResponse, error)
	Delete(ctx context.Context, queryID string) error
}

type contactServiceImpl struct {
	contactRepo repository.ContactRepository
	mailer      client.Mailer
	now         func() time.Time
}

func NewContactService(contactRepo repository.ContactRepository, mailer client.Mailer) ContactService {
	return &contactServiceImpl{
		contactRepo: contactRepo,
		mailer:      mailer,
		now:         time.Now,
	}
}

func (s *contactServiceImpl) Submit(ctx context.Context, req *dto.ContactQueryRequest) (*dto.ContactResponse, error) {
	fullName := strings.TrimSpace(req.FullName)
	text := strings.TrimSpace(req.Query)
	if fullName == "" {
		return nil, validationError("fullName is required")
	}
	if text == "" {
		return nil, validationError("query is required")
	}

	priority := model.ContactPriority(strings.ToLower(strings.TrimSpace(req.Priority)))
	if priority == "" {
		priority = model.ContactPriorityMedium
	}
	if !priority.Valid() {
		return nil, validationError("invalid priority %q", req.Priority)
	}

	query := &model.ContactQuery{
		ID:          uuid.NewString(),
		FullName:    fullName,
		Email:       normalizeEmail(req.Email),
		PhoneNumber: strings.TrimSpace(req.PhoneNumber),
		Address:     strings.TrimSpace(req.Address),
		DishName:    strings.TrimSpace(req.DishName),
		Query:       text,
		Status:      model.ContactStatusPending,
		Priority:    priority,
	}
	if err := s.contactRepo.Create(ctx, query); err != nil {
		return nil, fmt.Errorf("store contact query in db: %w", err)
	}

	err := s.mailer.Send(ctx, &client.Mail{
		To:       query.Email,
		Subject:  "We received your message",
		TextBody: fmt.Sprintf("Hi %s,\n\nThanks for reaching out. We will get back to you soon.\n\nYour message:\n%s", query.FullName, query.Query),
	})
	if err != nil {
		log.Error().Err(err).Str("contact_id", query.ID).Msg("failed to send contact acknowledgement")
	}

	return &dto.ContactResponse{
		Success: true,
		Message: "Your query has been submitted",
		Data:    query,
	}, nil
}

func (s *contactServiceImpl) List(ctx context.Context) (*dto.ContactListResponse, error) {
	queries, err := s.contactRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contact queries: %w", err)
	}

	resp := &dto.ContactListResponse{
		Success: true,
		Data:    queries,
	}
	resp.Stats.Total = len(queries)
	for _, q := range queries {
		switch q.Status {
		case model.ContactStatusPending:
			resp.Stats.Pending++
		case model.ContactStatusResolved:
			resp.Stats.Resolved++
		}
		if q.Priority == model.ContactPriorityUrgent {
			resp.Stats.Urgent++
		}
	}
	return resp, nil
}

// UpdateStatus moves a query to any status. Blank notes keep the notes already stored.
func (s *contactServiceImpl) UpdateStatus(ctx context.Context, queryID string, req *dto.ContactStatusRequest) (*dto.ContactResponse, error) {
	status := model.ContactStatus(strings.TrimSpace(req.Status))
	if !status.Valid() {
		return nil, validationError("invalid status %q", req.Status)
	}

	query, err := s.findQuery(ctx, queryID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	}
	if notes := strings.TrimSpace(req.AdminNotes); notes != "" {
		fields["admin_notes"] = notes
	}

	if err := s.contactRepo.Update(ctx, query.ID, fields); err != nil {
		return nil, fmt.Errorf("update contact query: %w", err)
	}

	updated, err := s.findQuery(ctx, query.ID)
	if err != nil {
		return nil, err
	}
	return &dto.ContactResponse{
		Success: true,
		Message: "Query status updated",
		Data:    updated,
	}, nil
}

func (s *contactServiceImpl) Delete(ctx context.Context, queryID string) error {
	deleted, err := s.contactRepo.Delete(ctx, queryID)
	if err != nil {
		return fmt.Errorf("delete contact query: %w", err)
	}
	if !deleted {
		return notFoundError(msgContactNotFound)
	}
	return nil
}

func (s *contactServiceImpl) findQuery(ctx context.Context, queryID string) (*model.ContactQuery, error) {
	query, err := s.contactRepo.FindByID(ctx, queryID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundError(msgContactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find contact query: %w", err)
	}
	return query, nil
}
