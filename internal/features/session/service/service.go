package service

import (
	"context"
	stderrors "errors"
	"time"

	"go.uber.org/zap"

	"social-hub-backend/internal/common/errors"
	"social-hub-backend/internal/common/metrics"
	securitymodels "social-hub-backend/internal/features/security/models"
	securityservice "social-hub-backend/internal/features/security/service"
	"social-hub-backend/internal/features/session/models"
	"social-hub-backend/internal/features/session/repository"
)

type SessionService interface {
	Track(ctx context.Context, userID, deviceID, userAgent, ip string) error
	Activate(ctx context.Context, userID, deviceID, userAgent, ip string) error
	RefreshDevices(ctx context.Context, userID, currentDeviceID string) (*models.DevicesResponse, error)
	ToggleDeviceTrust(ctx context.Context, userID, sessionID string) (*models.TrustResponse, error)
	RemoveDevice(ctx context.Context, userID, sessionID, currentDeviceID string) error
	LogoutAllOtherDevices(ctx context.Context, userID, currentDeviceID string) (int, error)
	Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error)
}

type sessionService struct {
	repo     repository.SessionRepository
	throttle repository.ActivityThrottle
	bus      repository.ChangeBus
	security securityservice.Recorder
	now      func() time.Time
	logger   *zap.Logger
}

func NewSessionService(
	repo repository.SessionRepository,
	throttle repository.ActivityThrottle,
	bus repository.ChangeBus,
	security securityservice.Recorder,
	logger *zap.Logger,
) SessionService {
	return &sessionService{
		repo:     repo,
		throttle: throttle,
		bus:      bus,
		security: security,
		now:      time.Now,
		logger:   logger,
	}
}

func newSession(userID, deviceID, userAgent, ip string) *models.Session {
	info := models.ParseUserAgent(userAgent)
	return &models.Session{
		UserID:     userID,
		DeviceID:   deviceID,
		DeviceName: info.Name,
		DeviceType: info.Type,
		Browser:    info.Browser,
		OS:         info.OS,
		IPAddress:  ip,
		UserAgent:  userAgent,
	}
}

// Track отмечает активность устройства (не чаще раза в минуту на устройство).
// Запрос с удаленного или разлогиненного устройства получает SESSION_REVOKED.
func (s *sessionService) Track(ctx context.Context, userID, deviceID, userAgent, ip string) error {
	allowed, err := s.throttle.Allow(ctx, userID, deviceID)
	if err != nil {
		// Без Redis пишем в базу на каждый запрос
		s.logger.Warn("Session throttle unavailable", zap.Error(err))
		allowed = true
	}
	if !allowed {
		return nil
	}

	sess := newSession(userID, deviceID, userAgent, ip)
	created, err := s.repo.Touch(ctx, sess)
	if err != nil {
		if stderrors.Is(err, repository.ErrSessionRevoked) {
			// Пусть каждый следующий запрос тоже проверяется по базе
			_ = s.throttle.Reset(ctx, userID, deviceID)
			s.record(ctx, userID, ip, userAgent, securitymodels.EventRevokedSessionUsed, securitymodels.SeverityWarning,
				map[string]interface{}{"device_id": deviceID})
			return errors.New(errors.ErrCodeSessionRevoked, "This device has been signed out").
				WithUserID(userID).
				WithDetail("device_id", deviceID)
		}
		_ = s.throttle.Reset(ctx, userID, deviceID)
		return errors.NewDatabaseError("track session", err)
	}

	if created {
		metrics.RecordSessionEvent("created")
		s.record(ctx, userID, ip, userAgent, securitymodels.EventSessionCreated, securitymodels.SeverityInfo,
			map[string]interface{}{"device_id": deviceID, "device_name": sess.DeviceName})
		s.publish(ctx, userID, "session_created", sess.ID)
	}

	return nil
}

// Activate вызывается на SIGNED_IN: новый вход переоткрывает отозванную сессию
func (s *sessionService) Activate(ctx context.Context, userID, deviceID, userAgent, ip string) error {
	sess := newSession(userID, deviceID, userAgent, ip)
	previous, err := s.repo.Activate(ctx, sess)
	if err != nil {
		return errors.NewDatabaseError("activate session", err)
	}

	if err := s.throttle.Reset(ctx, userID, deviceID); err != nil {
		s.logger.Warn("Failed to reset session throttle", zap.Error(err))
	}

	switch {
	case previous == "":
		metrics.RecordSessionEvent("created")
		s.record(ctx, userID, ip, userAgent, securitymodels.EventSessionCreated, securitymodels.SeverityInfo,
			map[string]interface{}{"device_id": deviceID, "device_name": sess.DeviceName})
	case previous.Revoked():
		metrics.RecordSessionEvent("reactivated")
		s.record(ctx, userID, ip, userAgent, securitymodels.EventSessionReactivated, securitymodels.SeverityInfo,
			map[string]interface{}{"device_id": deviceID, "previous_status": string(previous)})
	default:
		return nil
	}

	s.publish(ctx, userID, "session_activated", sess.ID)
	return nil
}

// RefreshDevices активные сессии по убыванию last_active_at, текущее устройство помечено
func (s *sessionService) RefreshDevices(ctx context.Context, userID, currentDeviceID string) (*models.DevicesResponse, error) {
	sessions, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("list sessions", err)
	}

	devices := make([]models.DeviceSession, 0, len(sessions))
	for _, sess := range sessions {
		devices = append(devices, models.DeviceSession{
			ID:           sess.ID,
			DeviceID:     sess.DeviceID,
			DeviceName:   sess.DeviceName,
			DeviceType:   sess.DeviceType,
			Browser:      sess.Browser,
			OS:           sess.OS,
			IPAddress:    sess.IPAddress,
			IsTrusted:    sess.IsTrusted,
			IsCurrent:    sess.DeviceID == currentDeviceID,
			LastActiveAt: sess.LastActiveAt,
			CreatedAt:    sess.CreatedAt,
		})
	}

	return &models.DevicesResponse{Devices: devices}, nil
}

func (s *sessionService) ToggleDeviceTrust(ctx context.Context, userID, sessionID string) (*models.TrustResponse, error) {
	sess, err := s.repo.ToggleTrust(ctx, userID, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrSessionNotFound) {
			return nil, errors.NewSessionNotFoundError(sessionID)
		}
		return nil, errors.NewDatabaseError("toggle session trust", err)
	}

	metrics.RecordSessionEvent("trust_toggled")
	s.record(ctx, userID, "", "", securitymodels.EventSessionTrustChanged, securitymodels.SeverityInfo,
		map[string]interface{}{"session_id": sessionID, "is_trusted": sess.IsTrusted})
	s.publish(ctx, userID, "session_trust_changed", sessionID)

	return &models.TrustResponse{SessionID: sess.ID, IsTrusted: sess.IsTrusted}, nil
}

// RemoveDevice мягко удаляет чужое устройство. Текущее удалить нельзя,
// для него есть обычный выход из аккаунта.
func (s *sessionService) RemoveDevice(ctx context.Context, userID, sessionID, currentDeviceID string) error {
	sessions, err := s.repo.ListActive(ctx, userID)
	if err != nil {
		return errors.NewDatabaseError("list sessions", err)
	}
	for _, sess := range sessions {
		if sess.ID == sessionID && sess.DeviceID == currentDeviceID {
			return errors.NewBadRequestError("The current device cannot be removed; sign out instead").
				WithDetail("session_id", sessionID)
		}
	}

	sess, err := s.repo.Remove(ctx, userID, sessionID)
	if err != nil {
		if stderrors.Is(err, repository.ErrSessionNotFound) {
			return errors.NewSessionNotFoundError(sessionID)
		}
		return errors.NewDatabaseError("remove session", err)
	}

	if err := s.throttle.Reset(ctx, userID, sess.DeviceID); err != nil {
		s.logger.Warn("Failed to reset session throttle", zap.Error(err))
	}

	metrics.RecordSessionEvent("removed")
	s.record(ctx, userID, "", "", securitymodels.EventSessionRemoved, securitymodels.SeverityInfo,
		map[string]interface{}{"session_id": sessionID, "device_id": sess.DeviceID, "device_name": sess.DeviceName})
	s.publish(ctx, userID, "session_removed", sessionID)

	s.logger.Info("Device session removed",
		zap.String("user_id", userID),
		zap.String("session_id", sessionID),
	)
	return nil
}

// LogoutAllOtherDevices разлогинивает все устройства, кроме текущего
func (s *sessionService) LogoutAllOtherDevices(ctx context.Context, userID, currentDeviceID string) (int, error) {
	if currentDeviceID == "" {
		return 0, errors.NewValidationError("X-Device-ID", "is required to keep the current device signed in")
	}

	devices, err := s.repo.LogoutOthers(ctx, userID, currentDeviceID)
	if err != nil {
		return 0, errors.NewDatabaseError("logout other sessions", err)
	}

	if len(devices) > 0 {
		if err := s.throttle.Reset(ctx, userID, devices...); err != nil {
			s.logger.Warn("Failed to reset session throttle", zap.Error(err))
		}
		s.publish(ctx, userID, "sessions_logged_out", "")
	}

	metrics.RecordSessionEvent("logged_out_others")
	s.record(ctx, userID, "", "", securitymodels.EventSessionsLoggedOut, securitymodels.SeverityInfo,
		map[string]interface{}{"count": len(devices), "current_device_id": currentDeviceID})

	s.logger.Info("Logged out other devices",
		zap.String("user_id", userID),
		zap.Int("count", len(devices)),
	)
	return len(devices), nil
}

func (s *sessionService) Subscribe(ctx context.Context, userID string) (<-chan models.ChangeNotice, func() error, error) {
	ch, unsubscribe, err := s.bus.Subscribe(ctx, userID)
	if err != nil {
		return nil, nil, errors.NewCacheError("subscribe to session changes", err)
	}
	return ch, unsubscribe, nil
}

func (s *sessionService) publish(ctx context.Context, userID, event, sessionID string) {
	err := s.bus.Publish(ctx, models.ChangeNotice{
		UserID:    userID,
		Event:     event,
		SessionID: sessionID,
		At:        s.now(),
	})
	if err != nil {
		s.logger.Warn("Failed to publish session change", zap.String("user_id", userID), zap.String("event", event), zap.Error(err))
	}
}

func (s *sessionService) record(ctx context.Context, userID, ip, userAgent, eventType string, severity securitymodels.Severity, meta map[string]interface{}) {
	if s.security == nil {
		return
	}
	if err := s.security.Record(ctx, securitymodels.Event{
		UserID:    userID,
		EventType: eventType,
		Severity:  severity,
		IPAddress: ip,
		UserAgent: userAgent,
		Metadata:  meta,
	}); err != nil {
		s.logger.Warn("Failed to record session event", zap.String("event_type", eventType), zap.Error(err))
	}
}
