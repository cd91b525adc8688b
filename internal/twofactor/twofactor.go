package twofactor

import (
	"bytes"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"image/png"
	"net/url"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	issuer = "Notary"

	// one-time codes stay valid this many periods before and after now,
	// tolerating client clock skew
	skewSteps = 5
)

// Setup holds everything a client needs to enroll an authenticator app
type Setup struct {
	Secret          string
	ProvisioningURI string
	QRCodePNG       []byte
}

// GenerateSecret returns a new random base32 TOTP secret
func GenerateSecret() (string, error) {
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return "", errors.New("failed to generate the otp secret: " + err.Error())
	}

	return base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw), nil
}

// Verify checks a 6-digit code against the secret with skew tolerance
func Verify(secret, code string) bool {
	if secret == "" || code == "" {
		return false
	}

	valid, err := totp.ValidateCustom(code, secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Skew:      skewSteps,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})

	return err == nil && valid
}

// ProvisioningKey builds the otpauth URI for an existing secret and renders
// it as a scannable PNG
func ProvisioningKey(secret, account string) (Setup, error) {
	query := url.Values{}
	query.Set("secret", secret)
	query.Set("issuer", issuer)
	query.Set("period", "30")
	query.Set("digits", "6")
	query.Set("algorithm", "SHA1")

	keyURL := url.URL{
		Scheme:   "otpauth",
		Host:     "totp",
		Path:     "/" + issuer + ":" + account,
		RawQuery: query.Encode(),
	}

	key, err := otp.NewKeyFromURL(keyURL.String())
	if err != nil {
		return Setup{}, errors.New("failed to build the provisioning key: " + err.Error())
	}

	img, err := key.Image(200, 200)
	if err != nil {
		return Setup{}, errors.New("failed to render the qr code: " + err.Error())
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Setup{}, errors.New("failed to encode the qr code: " + err.Error())
	}

	return Setup{
		Secret:          secret,
		ProvisioningURI: key.URL(),
		QRCodePNG:       buf.Bytes(),
	}, nil
}
