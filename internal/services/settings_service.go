package services

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"sync"

	"github.com/sirupsen/logrus"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/tripveda/booking-backend/internal/config"
	"github.com/tripveda/booking-backend/internal/models"
)

// SettingsService serves the public payment settings snapshot: which
// protocol is active, the merchant identity, and in manual mode the UPI QR.
// The QR PNG is rendered once from the UPI deep link and cached.
type SettingsService struct {
	cfg    config.SettingsConfig
	keyID  string
	logger *logrus.Logger

	once    sync.Once
	qrImage string
}

// NewSettingsService creates a new settings service
func NewSettingsService(cfg config.SettingsConfig, gatewayKeyID string, logger *logrus.Logger) *SettingsService {
	return &SettingsService{cfg: cfg, keyID: gatewayKeyID, logger: logger}
}

// Mode returns the active payment protocol
func (s *SettingsService) Mode() models.PaymentMode {
	if s.cfg.PaymentMode == string(models.PaymentModeGateway) {
		return models.PaymentModeGateway
	}
	return models.PaymentModeManual
}

// MaintenanceEnabled reports the system-wide maintenance flag
func (s *SettingsService) MaintenanceEnabled() bool {
	return s.cfg.MaintenanceMode
}

// Snapshot returns the public payment settings
func (s *SettingsService) Snapshot() models.PaymentSettings {
	settings := models.PaymentSettings{
		Mode:         s.Mode(),
		MerchantName: s.cfg.MerchantName,
	}

	switch settings.Mode {
	case models.PaymentModeGateway:
		settings.GatewayKeyID = s.keyID
	default:
		settings.UPIID = s.cfg.UPIID
		settings.QRImageURL = s.cfg.QRImageURL
		settings.QRImage = s.upiQR()
	}

	return settings
}

// upiQR renders the UPI deep link as a base64 PNG, once
func (s *SettingsService) upiQR() string {
	s.once.Do(func() {
		if s.cfg.UPIID == "" {
			return
		}
		link := fmt.Sprintf("upi://pay?pa=%s&pn=%s",
			url.QueryEscape(s.cfg.UPIID),
			url.QueryEscape(s.cfg.MerchantName),
		)
		png, err := qrcode.Encode(link, qrcode.Medium, 256)
		if err != nil {
			s.logger.WithError(err).Error("Failed to render UPI QR code")
			return
		}
		s.qrImage = base64.StdEncoding.EncodeToString(png)
	})
	return s.qrImage
}
