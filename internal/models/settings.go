package models

// PaymentMode selects which payment protocol is active system-wide
type PaymentMode string

const (
	// PaymentModeManual shows a QR / UPI id and takes a manually entered
	// transaction reference, verified out of band by an admin
	PaymentModeManual PaymentMode = "manual"
	// PaymentModeGateway runs the two-phase gateway checkout
	PaymentModeGateway PaymentMode = "gateway"
)

// PaymentSettings is the public, read-only payment configuration snapshot
type PaymentSettings struct {
	Mode         PaymentMode `json:"mode"`
	MerchantName string      `json:"merchant_name"`
	UPIID        string      `json:"upi_id,omitempty"`
	// QRImage is a base64 PNG of the UPI deep link, present in manual mode
	QRImage      string `json:"qr_image,omitempty"`
	QRImageURL   string `json:"qr_image_url,omitempty"`
	GatewayKeyID string `json:"gateway_key_id,omitempty"`
}
