package http

import (
	"net/http"

	"notary-backend/internal/model"
)

type sessionHandler func(w http.ResponseWriter, r *http.Request, user model.User)

// requireSession resolves the cookie session to a user and rejects the
// request with a structured 401 otherwise
func (ser *server) requireSession(next sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := ser.sessions.Get(r, sessionName)
		if err != nil {
			ser.unauthorized(w)
			return
		}

		userID, ok := session.Values[sessionUserKey].(string)
		if !ok || userID == "" {
			ser.unauthorized(w)
			return
		}

		user, err := ser.app.GetUser(r.Context(), userID)
		if err != nil {
			// the session points at a user that no longer exists
			ser.unauthorized(w)
			return
		}

		next(w, r, user)
	}
}

// requireOwner composes on requireSession and additionally demands the
// owner role
func (ser *server) requireOwner(next sessionHandler) http.HandlerFunc {
	return ser.requireSession(func(w http.ResponseWriter, r *http.Request, user model.User) {
		if !user.IsOwner {
			ser.respondJSON(w, http.StatusForbidden, errorResponse{Code: "forbidden", Error: "owner role required"})
			return
		}

		next(w, r, user)
	})
}

func (ser *server) unauthorized(w http.ResponseWriter) {
	ser.respondJSON(w, http.StatusUnauthorized, errorResponse{Code: "unauthorized", Error: "authentication required"})
}

func (ser *server) startSession(w http.ResponseWriter, r *http.Request, user model.User) error {
	session, _ := ser.sessions.New(r, sessionName)
	session.Values[sessionUserKey] = user.ID

	return session.Save(r, w)
}

func (ser *server) clearSession(w http.ResponseWriter, r *http.Request) error {
	session, _ := ser.sessions.Get(r, sessionName)
	delete(session.Values, sessionUserKey)
	session.Options.MaxAge = -1

	return session.Save(r, w)
}
