package http

import (
	"encoding/json"
	"net/http"

	"notary-backend/internal/app"
	"notary-backend/internal/ports/http/middleware/cors"

	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	sessionName    = "notary_session"
	sessionUserKey = "userID"

	// uploads above this size are rejected by the multipart parser
	maxUploadBytes = 32 << 20
)

type server struct {
	app        app.App
	httpServer *http.Server
	addr       string
	logger     *zap.Logger
	sessions   *sessions.CookieStore
}

func NewServer(logger *zap.Logger, a app.App, address string, sessionSecret []byte) *server {
	store := sessions.NewCookieStore(sessionSecret)
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &server{
		app:      a,
		addr:     address,
		logger:   logger,
		sessions: store,
	}
}

func (ser *server) registerHandlers(router *mux.Router) {

	router.HandleFunc("/health", healthcheck)

	router.HandleFunc("/login", ser.postLogin).Methods(http.MethodPost)
	router.HandleFunc("/login/nonce", ser.getLoginNonce).Methods(http.MethodGet)
	router.HandleFunc("/login/wallet", ser.postLoginWallet).Methods(http.MethodPost)
	router.HandleFunc("/logout", ser.requireSession(ser.postLogout)).Methods(http.MethodPost)

	router.HandleFunc("/setup-2fa", ser.requireSession(ser.getSetup2FA)).Methods(http.MethodGet)
	router.HandleFunc("/user/2fa", ser.requireSession(ser.postUser2FA)).Methods(http.MethodPost)
	router.HandleFunc("/user/profile", ser.requireSession(ser.getUserProfile)).Methods(http.MethodGet)

	router.HandleFunc("/hashes", ser.requireSession(ser.postHashes)).Methods(http.MethodPost)
	router.HandleFunc("/notarize", ser.requireSession(ser.postNotarize)).Methods(http.MethodPost)
	router.HandleFunc("/notarize/commit", ser.requireSession(ser.postNotarizeCommit)).Methods(http.MethodPost)
	router.HandleFunc("/verify", ser.requireSession(ser.postVerify)).Methods(http.MethodPost)

	router.HandleFunc("/documents", ser.requireSession(ser.getDocuments)).Methods(http.MethodGet)
	router.HandleFunc("/documents/{documentID}", ser.requireSession(ser.getDocument)).Methods(http.MethodGet)
	router.HandleFunc("/documents/{documentID}/download", ser.requireSession(ser.downloadDocument)).Methods(http.MethodGet)
	router.HandleFunc("/documents/{documentID}/history", ser.requireSession(ser.getDocumentHistory)).Methods(http.MethodGet)
	router.HandleFunc("/stats", ser.requireSession(ser.getStats)).Methods(http.MethodGet)
	router.HandleFunc("/users/me/activities", ser.requireSession(ser.getUserActivities)).Methods(http.MethodGet)

	router.HandleFunc("/orgs/{orgID}/users", ser.requireOwner(ser.getOrganizationUsers)).Methods(http.MethodGet)
	router.HandleFunc("/users/{userID}/wallet", ser.requireOwner(ser.putUserWallet)).Methods(http.MethodPut)
	router.HandleFunc("/orgs/{orgID}/contract", ser.requireOwner(ser.postOrganizationContract)).Methods(http.MethodPost)

}

func healthcheck(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("all good here"))
}

func (ser *server) Run() error {
	router := mux.NewRouter()
	ser.registerHandlers(router)

	handler := cors.AddCorsPolicy(router)
	ser.httpServer = &http.Server{
		Handler: handler,
		Addr:    ser.addr,
	}

	ser.logger.Info("listening on " + ser.addr)

	return ser.httpServer.ListenAndServe()
}

func (ser *server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		ser.logger.Error("marshalling the response failed: " + err.Error())
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(response); err != nil {
		ser.logger.Error("failed to write the response: " + err.Error())
	}
}
