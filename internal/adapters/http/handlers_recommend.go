package httpadapter

import (
	"net/http"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

func (rt *Router) recommend(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := recommendOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.Recommend(r.Context(), userID, opts)
	writeList(w, r, items, err)
}

func (rt *Router) recommendNearby(w http.ResponseWriter, r *http.Request) {
	userID, err := pathParam(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := recommendOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	loc := domain.Location{Latitude: q.Get("lat"), Longitude: q.Get("lon")}
	if err := requireSegmentSafe("location", loc.Latitude, loc.Longitude); err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.RecommendNearby(r.Context(), userID, loc, opts)
	writeList(w, r, items, err)
}

func (rt *Router) recommendGroup(w http.ResponseWriter, r *http.Request) {
	users, err := queryList(r, "users")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := recommendOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.RecommendGroup(r.Context(), users, opts)
	writeList(w, r, items, err)
}

func (rt *Router) termRecommend(w http.ResponseWriter, r *http.Request) {
	userID, terms, opts, err := userTermsAndOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.TermRecommend(r.Context(), userID, terms, opts)
	writeList(w, r, items, err)
}

func (rt *Router) priorityTermRecommend(w http.ResponseWriter, r *http.Request) {
	userID, terms, opts, err := userTermsAndOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.PriorityTermRecommend(r.Context(), userID, terms, opts)
	writeList(w, r, items, err)
}

func (rt *Router) termItemRecommend(w http.ResponseWriter, r *http.Request) {
	terms, err := queryList(r, "terms")
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := recommendOptions(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.TermItemRecommend(r.Context(), terms, opts)
	writeList(w, r, items, err)
}

func userTermsAndOptions(r *http.Request) (string, []string, domain.RecommendOptions, error) {
	userID, err := pathParam(r, "id")
	if err != nil {
		return "", nil, domain.RecommendOptions{}, err
	}
	terms, err := queryList(r, "terms")
	if err != nil {
		return "", nil, domain.RecommendOptions{}, err
	}
	opts, err := recommendOptions(r)
	return userID, terms, opts, err
}

func writeList[T any](w http.ResponseWriter, r *http.Request, items []T, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, listResponse[T]{Items: items})
}

func writeAck(w http.ResponseWriter, r *http.Request, ok bool, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ackResponse{OK: ok})
}
