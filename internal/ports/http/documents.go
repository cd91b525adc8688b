package http

import (
	"net/http"
	"strconv"

	"notary-backend/internal/model"

	"github.com/gorilla/mux"
)

type documentEntry struct {
	IDHash       string `json:"idHash"`
	DocumentHash string `json:"docHash"`
	Timestamp    uint64 `json:"timestamp"`
	TxHash       string `json:"txHash"`
	BlockNumber  uint64 `json:"blockNumber"`
	Sender       string `json:"sender,omitempty"`
	DownloadURL  string `json:"downloadUrl,omitempty"`
}

func toDocumentEntry(event model.NotarizationEvent, withDownload bool) documentEntry {
	entry := documentEntry{
		IDHash:       event.IDHash,
		DocumentHash: event.DocumentHash,
		Timestamp:    event.Timestamp,
		TxHash:       event.TxHash,
		BlockNumber:  event.BlockNumber,
		Sender:       event.Sender,
	}
	if withDownload {
		entry.DownloadURL = "/documents/" + event.IDHash + "/download"
	}
	return entry
}

func (ser *server) getDocuments(w http.ResponseWriter, r *http.Request, user model.User) {
	listing, err := ser.app.ListDocuments(r.Context(), user)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	entries := make([]documentEntry, len(listing.Documents))
	for i, event := range listing.Documents {
		entries[i] = toDocumentEntry(event, true)
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"orgChainAddress": listing.OrgChainAddress,
		"contractAddress": listing.ContractAddress,
		"documents":       entries,
	})
}

func (ser *server) getDocument(w http.ResponseWriter, r *http.Request, user model.User) {
	documentID := mux.Vars(r)["documentID"]

	details, err := ser.app.GetDocument(r.Context(), user, documentID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"documentId":      details.DocumentID,
		"organization":    details.Organization,
		"orgChainAddress": details.OrgChainAddress,
		"contractAddress": details.ContractAddress,
		"notarization":    toDocumentEntry(details.Event, true),
	})
}

func (ser *server) downloadDocument(w http.ResponseWriter, r *http.Request, user model.User) {
	documentID := mux.Vars(r)["documentID"]

	doc, err := ser.app.DownloadDocument(r.Context(), user, documentID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.FileData)))
	if _, err := w.Write(doc.FileData); err != nil {
		ser.logger.Error("failed to write the download response: " + err.Error())
	}
}

func (ser *server) getDocumentHistory(w http.ResponseWriter, r *http.Request, user model.User) {
	documentID := mux.Vars(r)["documentID"]

	history, err := ser.app.DocumentHistory(r.Context(), user, documentID)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	entries := make([]documentEntry, len(history.Entries))
	for i, event := range history.Entries {
		entries[i] = toDocumentEntry(event, false)
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{
		"organization":    history.OrgName,
		"orgChainAddress": history.OrgChainAddress,
		"contractAddress": history.ContractAddress,
		"history":         entries,
	})
}

func (ser *server) getStats(w http.ResponseWriter, r *http.Request, user model.User) {
	stats, err := ser.app.GetStats(r.Context(), user)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	response := map[string]interface{}{
		"organization":       stats.OrgName,
		"orgChainAddress":    stats.OrgChainAddress,
		"contractAddress":    stats.ContractAddress,
		"totalNotarizations": stats.TotalNotarizations,
	}
	if stats.First != nil {
		response["first"] = map[string]interface{}{
			"docHash":   stats.First.DocumentHash,
			"timestamp": stats.First.Timestamp,
		}
	}
	if stats.Latest != nil {
		response["latest"] = map[string]interface{}{
			"docHash":   stats.Latest.DocumentHash,
			"timestamp": stats.Latest.Timestamp,
		}
	}

	ser.respondJSON(w, http.StatusOK, response)
}

func (ser *server) getUserActivities(w http.ResponseWriter, r *http.Request, user model.User) {
	activities, err := ser.app.UserActivities(r.Context(), user)
	if err != nil {
		ser.respondError(w, err)
		return
	}

	entries := make([]documentEntry, len(activities))
	for i, event := range activities {
		entries[i] = toDocumentEntry(event, true)
	}

	ser.respondJSON(w, http.StatusOK, map[string]interface{}{"activities": entries})
}
