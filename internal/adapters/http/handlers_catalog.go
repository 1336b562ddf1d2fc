package httpadapter

import (
	"context"
	"errors"
	"net/http"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
)

type termsRequest struct {
	Terms []string `json:"terms"`
}

type itemsRequest struct {
	Items []string `json:"items"`
}

type locationRequest struct {
	Latitude  flexString `json:"lat"`
	Longitude flexString `json:"lon"`
}

func (rt *Router) itemTerms(w http.ResponseWriter, r *http.Request) {
	rt.keyedItemList(w, r, rt.recommender.ItemTerms)
}

func (rt *Router) itemLocations(w http.ResponseWriter, r *http.Request) {
	rt.keyedItemList(w, r, rt.recommender.ItemLocations)
}

func (rt *Router) itemVisitors(w http.ResponseWriter, r *http.Request) {
	rt.keyedItemList(w, r, rt.recommender.ItemVisitors)
}

func (rt *Router) keyedItemList(w http.ResponseWriter, r *http.Request, lookup func(ctx context.Context, item string) ([]string, error)) {
	item, err := pathParam(r, "item")
	if err != nil {
		writeError(w, r, err)
		return
	}
	values, err := lookup(r.Context(), item)
	writeList(w, r, values, err)
}

func (rt *Router) addTerms(w http.ResponseWriter, r *http.Request) {
	item, terms, err := itemAndTerms(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.AddTerms(r.Context(), item, terms)
	writeAck(w, r, ok, err)
}

func (rt *Router) removeTerms(w http.ResponseWriter, r *http.Request) {
	item, terms, err := itemAndTerms(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.RemoveTerms(r.Context(), item, terms)
	writeAck(w, r, ok, err)
}

func itemAndTerms(w http.ResponseWriter, r *http.Request) (string, []string, error) {
	item, err := pathParam(r, "item")
	if err != nil {
		return "", nil, err
	}
	var req termsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return "", nil, err
	}
	if err := requireSegmentSafe("terms", req.Terms...); err != nil {
		return "", nil, err
	}
	return item, req.Terms, nil
}

func (rt *Router) addItemLocation(w http.ResponseWriter, r *http.Request) {
	item, err := pathParam(r, "item")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req locationRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	loc := domain.Location{Latitude: req.Latitude.String(), Longitude: req.Longitude.String()}
	if err := requireSegmentSafe("location", loc.Latitude, loc.Longitude); err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.AddItemLocation(r.Context(), item, loc)
	writeAck(w, r, ok, err)
}

func (rt *Router) similarItems(w http.ResponseWriter, r *http.Request) {
	item, err := pathParam(r, "item")
	if err != nil {
		writeError(w, r, err)
		return
	}
	howMany, err := queryInt(r, "how_many")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.SimilarItems(r.Context(), item, howMany)
	writeList(w, r, items, err)
}

func (rt *Router) similarTerms(w http.ResponseWriter, r *http.Request) {
	term, err := pathParam(r, "term")
	if err != nil {
		writeError(w, r, err)
		return
	}
	howMany, err := queryInt(r, "how_many")
	if err != nil {
		writeError(w, r, err)
		return
	}
	terms, err := rt.recommender.SimilarTerms(r.Context(), term, howMany)
	writeList(w, r, terms, err)
}

func (rt *Router) similarity(w http.ResponseWriter, r *http.Request) {
	item, err := pathParam(r, "item")
	if err != nil {
		writeError(w, r, err)
		return
	}
	others, err := queryList(r, "others")
	if err != nil {
		writeError(w, r, err)
		return
	}
	scores, err := rt.recommender.Similarity(r.Context(), item, others)
	writeScores(w, r, scores, err)
}

func (rt *Router) termSimilarity(w http.ResponseWriter, r *http.Request) {
	term, err := pathParam(r, "term")
	if err != nil {
		writeError(w, r, err)
		return
	}
	others, err := queryList(r, "others")
	if err != nil {
		writeError(w, r, err)
		return
	}
	scores, err := rt.recommender.TermSimilarity(r.Context(), term, others)
	writeScores(w, r, scores, err)
}

func (rt *Router) luckyUsers(w http.ResponseWriter, r *http.Request) {
	item, err := pathParam(r, "item")
	if err != nil {
		writeError(w, r, err)
		return
	}
	howMany, err := queryInt(r, "how_many")
	if err != nil {
		writeError(w, r, err)
		return
	}
	users, err := rt.recommender.LuckyUsers(r.Context(), item, howMany)
	writeList(w, r, users, err)
}

func (rt *Router) forgottenItems(w http.ResponseWriter, r *http.Request) {
	items, err := rt.recommender.ForgottenItems(r.Context())
	writeList(w, r, items, err)
}

func (rt *Router) forgetItems(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItems(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.ForgetItems(r.Context(), items)
	writeAck(w, r, ok, err)
}

func (rt *Router) rememberItems(w http.ResponseWriter, r *http.Request) {
	items, err := decodeItems(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ok, err := rt.recommender.RememberItems(r.Context(), items)
	writeAck(w, r, ok, err)
}

func decodeItems(w http.ResponseWriter, r *http.Request) ([]string, error) {
	var req itemsRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		return nil, err
	}
	if err := requireSegmentSafe("items", req.Items...); err != nil {
		return nil, err
	}
	return req.Items, nil
}

func (rt *Router) mostPopular(w http.ResponseWriter, r *http.Request) {
	howMany, err := queryInt(r, "how_many")
	if err != nil {
		writeError(w, r, err)
		return
	}
	items, err := rt.recommender.MostPopular(r.Context(), howMany)
	writeList(w, r, items, err)
}

func (rt *Router) trend(w http.ResponseWriter, r *http.Request) {
	howMany, err := queryInt(r, "how_many")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var items []any
	switch r.PathValue("window") {
	case "short":
		items, err = rt.recommender.TrendShortTime(r.Context(), howMany)
	case "long":
		items, err = rt.recommender.TrendLongTime(r.Context(), howMany)
	default:
		err = domain.WrapError(domain.ErrInvalidInput, "window", errors.New("must be short or long"))
	}
	writeList(w, r, items, err)
}

func writeScores(w http.ResponseWriter, r *http.Request, scores map[string]string, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	if scores == nil {
		scores = map[string]string{}
	}
	writeJSON(w, http.StatusOK, scoresResponse{Scores: scores})
}
