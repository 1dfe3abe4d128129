package api

import (
	"bytes"
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/manthansachdev12/Hackwave-pragyan/domain"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/entities"
	"github.com/manthansachdev12/Hackwave-pragyan/domain/repositories"
)

const (
	defaultRecentLimit = 3
	defaultSampleRate  = 16000
	defaultEncoding    = "LINEAR16"
	maxAudioBytes      = 10 << 20
)

type handler struct {
	deps   Dependencies
	logger *zap.Logger
	now    func() time.Time
}

func (h *handler) health(c echo.Context) error {
	count, err := h.deps.Complaints.Count(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, HealthResponse{
		Status:     "ok",
		Service:    "municipal-voice-assistant",
		CallStatus: h.deps.Calls.Snapshot().Status,
		Complaints: count,
		Time:       h.now().UTC(),
	})
}

// issueToken answers the controller's credential request. Its error body is
// the bare {"error": ...} shape the voice UI's token client reads.
func (h *handler) issueToken(c echo.Context) error {
	identity := c.Param("identity")
	room := c.Param("room")

	token, expiresAt, err := h.deps.Issuer.Issue(identity, room)
	if err != nil {
		h.logger.Error("Failed to issue room token",
			zap.String("identity", identity),
			zap.String("room", room),
			zap.Error(err))
		return c.JSON(http.StatusInternalServerError, TokenErrorResponse{Error: err.Error()})
	}

	h.logger.Info("Room token issued",
		zap.String("identity", identity),
		zap.String("room", room),
		zap.Time("expires_at", expiresAt))

	return c.JSON(http.StatusOK, TokenResponse{Token: token})
}

func (h *handler) startCall(c echo.Context) error {
	session, err := h.deps.Calls.StartCall(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusCreated, session)
}

func (h *handler) currentCall(c echo.Context) error {
	return c.JSON(http.StatusOK, h.deps.Calls.Snapshot())
}

func (h *handler) endCall(c echo.Context) error {
	if err := h.deps.Calls.EndCall(); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, h.deps.Calls.Snapshot())
}

func (h *handler) utterance(c echo.Context) error {
	var req UtteranceRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "text is required",
		})
	}

	result, err := h.deps.Calls.HandleUtterance(c.Request().Context(), req.Text)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// audioTurn takes raw audio in the body; query parameters describe it
func (h *handler) audioTurn(c echo.Context) error {
	audio, err := io.ReadAll(io.LimitReader(c.Request().Body, maxAudioBytes+1))
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read audio body",
		})
	}
	if len(audio) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "audio body is required",
		})
	}
	if len(audio) > maxAudioBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error:   "audio_too_large",
			Message: "audio body exceeds " + strconv.Itoa(maxAudioBytes) + " bytes",
		})
	}

	config := repositories.AudioConfig{
		SampleRate: defaultSampleRate,
		Encoding:   defaultEncoding,
		Language:   c.QueryParam("language"),
	}
	if v := c.QueryParam("sample_rate"); v != "" {
		rate, err := strconv.Atoi(v)
		if err != nil || rate <= 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_sample_rate",
				Message: "sample_rate must be a positive integer",
			})
		}
		config.SampleRate = rate
	}
	if v := c.QueryParam("encoding"); v != "" {
		config.Encoding = v
	}

	turn, err := h.deps.Voice.ProcessAudio(c.Request().Context(), audio, config)
	if err != nil {
		return h.fail(c, err)
	}

	var synthesized bytes.Buffer
	if turn.Audio != nil {
		for chunk := range turn.Audio {
			synthesized.Write(chunk)
		}
	}

	resp := VoiceTurnResponse{
		Transcript: turn.Transcript,
		Reply:      turn.Reply,
		Complaints: turn.Complaints,
		AudioBytes: synthesized.Len(),
	}
	if synthesized.Len() > 0 {
		resp.AudioData = base64.StdEncoding.EncodeToString(synthesized.Bytes())
	}
	return c.JSON(http.StatusOK, resp)
}

// listComplaints returns the last limit complaints, oldest first.
// limit=0 returns the whole registry.
func (h *handler) listComplaints(c echo.Context) error {
	ctx := c.Request().Context()

	limit := defaultRecentLimit
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "invalid_limit",
				Message: "limit must be a non-negative integer",
			})
		}
		limit = n
	}

	var (
		complaints []*entities.Complaint
		err        error
	)
	if limit == 0 {
		complaints, err = h.deps.Complaints.ListAll(ctx)
	} else {
		complaints, err = h.deps.Complaints.Recent(ctx, limit)
	}
	if err != nil {
		return h.fail(c, err)
	}

	total, err := h.deps.Complaints.Count(ctx)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(http.StatusOK, ComplaintListResponse{Complaints: complaints, Total: total})
}

func (h *handler) getComplaint(c echo.Context) error {
	complaint, err := h.deps.Complaints.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, complaint)
}

func (h *handler) updateStatus(c echo.Context) error {
	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}
	if !req.Status.Valid() {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_status",
			Message: "status must be one of submitted, in_progress, resolved",
		})
	}

	complaint, err := h.deps.Complaints.AdvanceStatus(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(http.StatusOK, complaint)
}

func (h *handler) listServices(c echo.Context) error {
	return c.JSON(http.StatusOK, h.deps.Catalog.Services)
}

func (h *handler) listEmergencyContacts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.deps.Catalog.EmergencyContacts)
}

// fail maps domain errors onto HTTP status codes
func (h *handler) fail(c echo.Context, err error) error {
	status, code := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed",
			zap.String("path", c.Path()),
			zap.String("code", code),
			zap.Error(err))
	}
	return c.JSON(status, ErrorResponse{Error: code, Message: err.Error()})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrCallInProgress):
		return http.StatusConflict, "call_in_progress"
	case errors.Is(err, domain.ErrNoActiveCall):
		return http.StatusConflict, "no_active_call"
	case errors.Is(err, domain.ErrCallEnded):
		return http.StatusConflict, "call_ended"
	case errors.Is(err, domain.ErrCredentialUnavailable):
		return http.StatusBadGateway, "credential_unavailable"
	case errors.Is(err, domain.ErrComplaintNotFound):
		return http.StatusNotFound, "complaint_not_found"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusUnprocessableEntity, "invalid_status_transition"
	case errors.Is(err, domain.ErrEmptyTranscript):
		return http.StatusUnprocessableEntity, "no_speech_detected"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
