package http

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"notary-backend/internal/model"
	"notary-backend/internal/twofactor"
)

type userResponse struct {
	Email         string `json:"email"`
	Organization  string `json:"organization,omitempty"`
	WalletAddress string `json:"walletAddress,omitempty"`
	IsOwner       bool   `json:"isOwner"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	OTP      string `json:"otp"`
}

func (ser *server) postLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest

	// the login form is accepted both as JSON and as a classic form post
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			ser.badRequest(w, "invalid request body: "+err.Error())
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			ser.badRequest(w, "invalid form: "+err.Error())
			return
		}
		req.Email = r.FormValue("email")
		req.Password = r.FormValue("password")
		req.OTP = r.FormValue("otp")
	}

	user, err := ser.app.Login(r.Context(), req.Email, req.Password, req.OTP)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	if err := ser.startSession(w, r, user); err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "logged in",
		"user":    userResponse{Email: user.Email, WalletAddress: user.WalletAddress, IsOwner: user.IsOwner},
	})
}

func (ser *server) postLogout(w http.ResponseWriter, r *http.Request, _ model.User) {
	if err := ser.clearSession(w, r); err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (ser *server) getLoginNonce(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")

	nonce, err := ser.app.GetLoginNonce(r.Context(), address)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]string{"nonce": nonce})
}

type walletLoginRequest struct {
	Address   string `json:"address"`
	Signature string `json:"signature"`
}

func (ser *server) postLoginWallet(w http.ResponseWriter, r *http.Request) {
	var req walletLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "invalid request body: "+err.Error())
		return
	}

	user, err := ser.app.LoginWithWallet(r.Context(), req.Address, req.Signature)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	if err := ser.startSession(w, r, user); err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "logged in",
		"user":    userResponse{Email: user.Email, WalletAddress: user.WalletAddress, IsOwner: user.IsOwner},
	})
}

func setupResponse(setup twofactor.Setup) map[string]string {
	return map[string]string{
		"otp_secret":         setup.Secret,
		"provisioning_uri":   setup.ProvisioningURI,
		"qr_code_png_base64": base64.StdEncoding.EncodeToString(setup.QRCodePNG),
	}
}

func (ser *server) getSetup2FA(w http.ResponseWriter, r *http.Request, user model.User) {
	setup, err := ser.app.Setup2FA(r.Context(), user)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, setupResponse(setup))
}

func (ser *server) postUser2FA(w http.ResponseWriter, r *http.Request, user model.User) {
	var req struct {
		Enable bool `json:"enable"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "invalid request body: "+err.Error())
		return
	}

	setup, err := ser.app.SetTwoFactor(r.Context(), user, req.Enable)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	if !req.Enable {
		ser.respondJSON(w, http.StatusOK, map[string]string{"message": "2fa disabled"})
		return
	}

	response := map[string]interface{}{"message": "2fa enabled"}
	for key, value := range setupResponse(setup) {
		response[key] = value
	}
	ser.respondJSON(w, http.StatusOK, response)
}

func (ser *server) getUserProfile(w http.ResponseWriter, r *http.Request, user model.User) {
	profile, err := ser.app.GetProfile(r.Context(), user)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"email":         profile.Email,
		"organization":  profile.Organization,
		"2faEnabled":    profile.TwoFactorEnabled,
		"walletAddress": profile.WalletAddress,
		"isOwner":       profile.IsOwner,
	})
}
