package domain

// MFASetupResponse is returned when a user begins TOTP enrollment.
// 2FA is not active until the first code is verified.
type MFASetupResponse struct {
	Secret          string // Base32 encoded secret for TOTP
	ProvisioningURI string // otpauth:// URL for QR code generation
	Issuer          string // Issuer name shown in the authenticator app
	Account         string // Account label (the user's email)
}
