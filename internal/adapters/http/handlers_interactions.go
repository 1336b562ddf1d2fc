package httpadapter

import (
	"net/http"
)

type interactionRequest struct {
	UserID flexString `json:"user_id"`
	Item   string     `json:"item"`
	Value  int        `json:"value"`
}

func decodeInteraction(w http.ResponseWriter, r *http.Request) (interactionRequest, error) {
	var req interactionRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return req, err
	}
	if err := requireSegmentSafe("user_id", req.UserID.String()); err != nil {
		return req, err
	}
	if err := requireSegmentSafe("item", req.Item); err != nil {
		return req, err
	}
	return req, nil
}

func (rt *Router) submitInteraction(w http.ResponseWriter, r *http.Request) {
	req, err := decodeInteraction(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	interaction, err := rt.interactions.Submit(r.Context(), req.UserID.String(), req.Item, req.Value)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, interaction)
}

func (rt *Router) getInteraction(w http.ResponseWriter, r *http.Request) {
	interaction, err := rt.interactions.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, interaction)
}

func (rt *Router) ingest(w http.ResponseWriter, r *http.Request) {
	req, err := decodeInteraction(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := rt.recommender.Ingest(r.Context(), req.UserID.String(), req.Item, req.Value)
	writeAck(w, r, ok, err)
}
