package httpadapter

import (
	"net/http"
)

type profileRequest struct {
	Terms     []string `json:"terms"`
	Overwrite bool     `json:"overwrite"`
}

func (rt *Router) userProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	profile, err := rt.recommender.UserProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objectOrEmpty(profile))
}

func (rt *Router) setUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req profileRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := requireSegmentSafe("terms", req.Terms...); err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.SetUserProfile(r.Context(), userID, req.Terms, req.Overwrite)
	writeAck(w, r, ok, err)
}

func (rt *Router) userMood(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	mood, err := rt.recommender.UserMood(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, objectOrEmpty(mood))
}
