package service

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"rsvpservice/internal/dto"
	"rsvpservice/internal/model"
	"rsvpservice/internal/repo"
	"rsvpservice/pkg/validator"
)

type Service interface {
	CreateEvent(ctx *ginext.Context)
	CreateRsvp(ctx *ginext.Context)
	UpdateRsvp(ctx *ginext.Context)
	ListRsvps(ctx *ginext.Context)
	CancelRsvp(ctx *ginext.Context)
	GetRsvpCounts(ctx *ginext.Context)
}

// Publisher is the outbound side of the activity feed. Publish failures
// are logged and never fail the request.
type Publisher interface {
	Publish(message []byte) error
}

type service struct {
	repo repo.Repository
	log  *zerolog.Logger
	pub  Publisher
}

func NewService(repo repo.Repository, logger *zerolog.Logger, pub Publisher) Service {
	return &service{
		repo: repo,
		log:  logger,
		pub:  pub,
	}
}

func (s *service) CreateEvent(ctx *ginext.Context) {
	var req dto.CreateEventRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		s.log.Error().Err(err).Msg("failed to parse create event request")
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgEventNameRequired)
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("create event validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgEventNameRequired)
		return
	}

	event := &model.Event{
		Name:     req.Name,
		Capacity: req.Capacity,
	}

	id, err := s.repo.CreateEvent(ctx.Request.Context(), event)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to create event in DB")
		dto.InternalServerError(ctx)
		return
	}
	event.ID = id

	s.log.Info().Int64("event_id", id).Msg("event created successfully")

	dto.SuccessCreatedResponse(ctx, "Event created successfully", dto.EventResponse{
		ID:        event.ID,
		Name:      event.Name,
		Capacity:  event.Capacity,
		CreatedAt: event.CreatedAt,
	})
}

func (s *service) CreateRsvp(ctx *ginext.Context) {
	var req dto.RsvpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgInvalidRsvp)
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("rsvp validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgInvalidRsvp)
		return
	}

	rsvp := &model.Rsvp{
		EventID: req.EventID,
		UserID:  req.UserID,
		Status:  req.Status,
	}

	id, created, err := s.repo.AdmitRsvpTx(ctx.Request.Context(), rsvp)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrEventNotFound):
			s.log.Error().Int64("event_id", req.EventID).Msg("event not found for rsvp")
			dto.EventNotFoundError(ctx)
		case errors.Is(err, repo.ErrEventFull):
			dto.EventFullError(ctx)
		default:
			s.log.Error().Err(err).
				Int64("event_id", req.EventID).
				Int64("user_id", req.UserID).
				Msg("failed to admit rsvp")
			dto.InternalServerError(ctx)
		}
		return
	}

	action := "updated"
	if created {
		action = "created"
	}
	s.publishActivity(dto.RsvpActivityMessage{
		RsvpID:     id,
		EventID:    req.EventID,
		UserID:     req.UserID,
		Status:     req.Status,
		Action:     action,
		OccurredAt: time.Now(),
	})

	dto.SuccessCreatedResponse(ctx, "RSVP created or updated successfully", dto.RsvpResponse{
		ID:      id,
		EventID: req.EventID,
		UserID:  req.UserID,
		Status:  req.Status,
	})
}

func (s *service) UpdateRsvp(ctx *ginext.Context) {
	var req dto.RsvpRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgInvalidRsvp)
		return
	}

	if verr := validator.Validate(ctx, req); verr != nil {
		s.log.Error().Msgf("rsvp validation failed: %v", verr)
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgInvalidRsvp)
		return
	}

	err := s.repo.UpdateRsvpStatus(ctx.Request.Context(), req.EventID, req.UserID, req.Status)
	if err != nil {
		if errors.Is(err, repo.ErrRsvpNotFound) {
			dto.NotFoundResponseError(ctx, dto.RsvpNotFound, dto.MsgRsvpNotFoundUser)
			return
		}
		s.log.Error().Err(err).
			Int64("event_id", req.EventID).
			Int64("user_id", req.UserID).
			Msg("failed to update rsvp")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().
		Int64("event_id", req.EventID).
		Int64("user_id", req.UserID).
		Str("status", req.Status).
		Msg("rsvp updated successfully")

	s.publishActivity(dto.RsvpActivityMessage{
		EventID:    req.EventID,
		UserID:     req.UserID,
		Status:     req.Status,
		Action:     "updated",
		OccurredAt: time.Now(),
	})

	dto.SuccessResponse(ctx, "RSVP updated successfully", nil)
}

func (s *service) CancelRsvp(ctx *ginext.Context) {
	rsvpID, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgRsvpIDRequired)
		return
	}

	if err := s.repo.CancelRsvp(ctx.Request.Context(), rsvpID); err != nil {
		if errors.Is(err, repo.ErrRsvpNotFound) {
			dto.NotFoundResponseError(ctx, dto.RsvpNotFound, dto.MsgRsvpNotFound)
			return
		}
		s.log.Error().Err(err).Int64("rsvp_id", rsvpID).Msg("failed to cancel rsvp")
		dto.InternalServerError(ctx)
		return
	}

	s.log.Info().Int64("rsvp_id", rsvpID).Msg("rsvp canceled successfully")

	s.publishActivity(dto.RsvpActivityMessage{
		RsvpID:     rsvpID,
		Action:     "canceled",
		OccurredAt: time.Now(),
	})

	dto.SuccessResponse(ctx, "RSVP canceled successfully", nil)
}

func (s *service) ListRsvps(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Query("eventId"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgEventIDRequired)
		return
	}

	rsvps, err := s.repo.GetRsvpsByEventID(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to get rsvps")
		dto.InternalServerError(ctx)
		return
	}
	if rsvps == nil {
		rsvps = []model.Rsvp{}
	}

	ctx.JSON(200, rsvps)
}

func (s *service) GetRsvpCounts(ctx *ginext.Context) {
	eventID, err := strconv.ParseInt(ctx.Query("eventId"), 10, 64)
	if err != nil {
		dto.BadResponseError(ctx, dto.FieldIncorrect, dto.MsgEventIDRequired)
		return
	}

	counts, err := s.repo.CountRsvpStatuses(ctx.Request.Context(), eventID)
	if err != nil {
		s.log.Error().Err(err).Int64("event_id", eventID).Msg("failed to count rsvps")
		dto.InternalServerError(ctx)
		return
	}

	ctx.JSON(200, counts)
}

func (s *service) publishActivity(msg dto.RsvpActivityMessage) {
	if s.pub == nil {
		return
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to marshal activity message")
		return
	}
	if err := s.pub.Publish(payload); err != nil {
		s.log.Error().Err(err).Str("action", msg.Action).Msg("failed to publish activity message")
	}
}
