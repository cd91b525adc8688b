package http

import (
	"encoding/json"
	"net/http"

	"notary-backend/internal/model"

	"github.com/gorilla/mux"
)

type memberResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	WalletAddress string `json:"walletAddress,omitempty"`
	IsOwner       bool   `json:"isOwner"`
	TwoFactor     bool   `json:"2faEnabled"`
}

func (ser *server) getOrganizationUsers(w http.ResponseWriter, r *http.Request, owner model.User) {
	orgID := mux.Vars(r)["orgID"]

	users, err := ser.app.GetOrganizationUsers(r.Context(), owner, orgID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	members := make([]memberResponse, len(users))
	for i, user := range users {
		members[i] = memberResponse{
			ID:            user.ID,
			Email:         user.Email,
			WalletAddress: user.WalletAddress,
			IsOwner:       user.IsOwner,
			TwoFactor:     user.TwoFactorEnabled(),
		}
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{"users": members})
}

func (ser *server) putUserWallet(w http.ResponseWriter, r *http.Request, owner model.User) {
	userID := mux.Vars(r)["userID"]

	var req struct {
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "invalid request body: "+err.Error())
		return
	}

	user, err := ser.app.SetUserWallet(r.Context(), owner, userID, req.Address)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]string{
		"message":       "wallet address updated",
		"walletAddress": user.WalletAddress,
	})
}

func (ser *server) postOrganizationContract(w http.ResponseWriter, r *http.Request, owner model.User) {
	orgID := mux.Vars(r)["orgID"]

	var req struct {
		Address     string `json:"address"`
		DeployBlock uint64 `json:"deployBlock"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "invalid request body: "+err.Error())
		return
	}

	org, err := ser.app.RegisterContract(r.Context(), owner, orgID, req.Address, req.DeployBlock)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":         "contract registered",
		"contractAddress": org.ContractAddress,
		"deployBlock":     org.DeployBlock,
	})
}
