package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"notary-backend/internal/app"
	"notary-backend/internal/model"
)

// readUpload parses the multipart notarization form. The error strings are
// part of the API.
func (ser *server) readUpload(r *http.Request, needID bool) (fileData []byte, mimeType, documentID string, errMessage string) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", "", "invalid multipart form: " + err.Error()
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", "", "No file provided"
	}
	defer file.Close()

	fileData, err = io.ReadAll(file)
	if err != nil || len(fileData) == 0 {
		return nil, "", "", "No file provided"
	}

	mimeType = header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	documentID = r.FormValue("documentId")
	if needID && documentID == "" {
		return nil, "", "", "No documentId provided"
	}

	return fileData, mimeType, documentID, ""
}

func (ser *server) postHashes(w http.ResponseWriter, r *http.Request, user model.User) {
	fileData, mimeType, documentID, errMessage := ser.readUpload(r, true)
	if errMessage != "" {
		ser.badRequest(w, errMessage)
		return
	}

	hashes, err := ser.app.PrepareNotarization(user, fileData, mimeType, documentID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]string{
		"idHash":  hashes.IDHash,
		"docHash": hashes.DocHash,
	})
}

func (ser *server) postNotarize(w http.ResponseWriter, r *http.Request, user model.User) {
	fileData, mimeType, documentID, errMessage := ser.readUpload(r, true)
	if errMessage != "" {
		ser.badRequest(w, errMessage)
		return
	}

	result, err := ser.app.Notarize(r.Context(), user, fileData, mimeType, documentID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"txHash":      result.TxHash,
		"blockNumber": result.BlockNumber,
	})
}

type commitRequest struct {
	IDHash string `json:"idHash"`
	TxHash string `json:"txHash"`
}

func (ser *server) postNotarizeCommit(w http.ResponseWriter, r *http.Request, user model.User) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ser.badRequest(w, "invalid request body: "+err.Error())
		return
	}

	doc, err := ser.app.CommitNotarization(r.Context(), user, req.IDHash, req.TxHash)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]string{
		"message":    "notarization committed",
		"documentId": doc.ID,
		"txHash":     doc.TxHash,
	})
}

func (ser *server) postVerify(w http.ResponseWriter, r *http.Request, user model.User) {
	fileData, _, _, errMessage := ser.readUpload(r, false)
	if errMessage != "" {
		ser.badRequest(w, errMessage)
		return
	}

	timestamp, err := ser.app.Verify(r.Context(), user, fileData)
	if errors.Is(err, app.ErrNotVerified) {
		// a regular negative answer, not a failure
		ser.respondJSON(w, http.StatusNotFound, map[string]bool{"verified": false})
		return
	}
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"verified":  true,
		"timestamp": timestamp,
	})
}
