package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/kirillkom/recommender-gateway/internal/core/domain"
	"github.com/kirillkom/recommender-gateway/internal/core/normalize"
	"github.com/kirillkom/recommender-gateway/internal/core/ports"
	"github.com/kirillkom/recommender-gateway/internal/core/request"
	"github.com/kirillkom/recommender-gateway/internal/core/validate"
)

const (
	minSignalValue = -255
	maxSignalValue = 255
)

// Recommender is the engine facade. Every method validates its arguments,
// issues exactly one request and maps the outcome once. Transport failures
// are logged and turned into the operation's empty result.
type Recommender struct {
	transport ports.RecommenderTransport
	logger    *slog.Logger
}

func NewRecommender(transport ports.RecommenderTransport, logger *slog.Logger) *Recommender {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recommender{
		transport: transport,
		logger:    logger,
	}
}

func (r *Recommender) Ingest(ctx context.Context, userID, item string, value int) (bool, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return false, err
	}
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return false, err
	}
	if err := validate.RequireInRange(value, minSignalValue, maxSignalValue, "value"); err != nil {
		return false, err
	}

	q := request.NewQuery().
		Set(domain.OptionID, userID).
		Set(domain.OptionURL, request.Quote(item)).
		Set(domain.OptionValue, strconv.Itoa(value))
	return r.ack(ctx, domain.OpIngest, nil, q)
}

func (r *Recommender) ForgetItems(ctx context.Context, items []string) (bool, error) {
	if err := requireItems(items, "items"); err != nil {
		return false, err
	}
	return r.ack(ctx, domain.OpForget, items, nil)
}

func (r *Recommender) ForgottenItems(ctx context.Context) ([]string, error) {
	return r.list(ctx, domain.OpForgetList, nil, request.NewQuery().Flag(domain.OptionList, true))
}

func (r *Recommender) RememberItems(ctx context.Context, items []string) (bool, error) {
	if err := requireItems(items, "items"); err != nil {
		return false, err
	}
	return r.ack(ctx, domain.OpRemember, items, request.NewQuery().Set(domain.OptionRemember, "1"))
}

func (r *Recommender) AddTerms(ctx context.Context, item string, terms []string) (bool, error) {
	if err := requireItemWithTerms(item, terms); err != nil {
		return false, err
	}
	return r.ack(ctx, domain.OpTermItemAdd, prepend(item, terms), nil)
}

func (r *Recommender) RemoveTerms(ctx context.Context, item string, terms []string) (bool, error) {
	if err := requireItemWithTerms(item, terms); err != nil {
		return false, err
	}
	return r.ack(ctx, domain.OpTermItemRemove, prepend(item, terms), nil)
}

func (r *Recommender) ItemTerms(ctx context.Context, item string) ([]string, error) {
	return r.keyedByItem(ctx, domain.OpTermItemList, item)
}

func (r *Recommender) AddItemLocation(ctx context.Context, item string, loc domain.Location) (bool, error) {
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return false, err
	}
	if err := requireLocation(loc); err != nil {
		return false, err
	}
	return r.ack(ctx, domain.OpItemLocationAdd, []string{item, loc.Latitude, loc.Longitude}, nil)
}

func (r *Recommender) ItemLocations(ctx context.Context, item string) ([]string, error) {
	return r.keyedByItem(ctx, domain.OpItemLocationList, item)
}

func (r *Recommender) ItemVisitors(ctx context.Context, item string) ([]string, error) {
	return r.keyedByItem(ctx, domain.OpItemVisitorList, item)
}

func (r *Recommender) Recommend(ctx context.Context, userID string, opts domain.RecommendOptions) ([]string, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpRecommend, []string{userID}, opts, nil)
}

func (r *Recommender) RecommendNearby(ctx context.Context, userID string, loc domain.Location, opts domain.RecommendOptions) ([]string, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return nil, err
	}
	if err := requireLocation(loc); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpRecommendNear, []string{userID, loc.Latitude, loc.Longitude}, opts, nil)
}

func (r *Recommender) RecommendGroup(ctx context.Context, userIDs []string, opts domain.RecommendOptions) ([]string, error) {
	if err := validate.RequireNonEmptySlice(userIDs, "user_ids"); err != nil {
		return nil, err
	}
	if err := validate.RequireEachNumeric(userIDs, "user_ids"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpRecommendGroup, userIDs, opts, nil)
}

func (r *Recommender) TermRecommend(ctx context.Context, userID string, terms []string, opts domain.RecommendOptions) ([]string, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return nil, err
	}
	if err := requireItems(terms, "terms"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpTermRecommend, prepend(userID, terms), opts, nil)
}

func (r *Recommender) TermItemRecommend(ctx context.Context, terms []string, opts domain.RecommendOptions) ([]string, error) {
	if err := requireItems(terms, "terms"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpTermItemRecommend, terms, opts, nil)
}

// PriorityTermRecommend sends the ranked priority labels as one comma-joined
// query value, highest priority first.
func (r *Recommender) PriorityTermRecommend(ctx context.Context, userID string, priorities []string, opts domain.RecommendOptions) ([]string, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return nil, err
	}
	if err := requireItems(priorities, "priorities"); err != nil {
		return nil, err
	}
	q := request.NewQuery().List(domain.OptionTerms, priorities)
	return r.recommendList(ctx, domain.OpPriorityTermRecommend, []string{userID}, opts, q)
}

func (r *Recommender) Similarity(ctx context.Context, item string, others []string) (map[string]string, error) {
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return nil, err
	}
	if err := requireItems(others, "others"); err != nil {
		return nil, err
	}
	if err := validate.RequireDistinct(others, "others"); err != nil {
		return nil, err
	}
	return r.aligned(ctx, domain.OpSimilarity, prepend(item, others), others)
}

func (r *Recommender) TermSimilarity(ctx context.Context, term string, others []string) (map[string]string, error) {
	if err := validate.RequireNonEmptyAlpha(term, "term"); err != nil {
		return nil, err
	}
	if err := requireItems(others, "others"); err != nil {
		return nil, err
	}
	if err := validate.RequireDistinct(others, "others"); err != nil {
		return nil, err
	}
	return r.aligned(ctx, domain.OpTermSimilarity, prepend(term, others), others)
}

func (r *Recommender) SimilarItems(ctx context.Context, item string, howMany int) ([]string, error) {
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpSimilarItems, []string{item}, domain.RecommendOptions{HowMany: howMany}, nil)
}

func (r *Recommender) SimilarTerms(ctx context.Context, term string, howMany int) ([]string, error) {
	if err := validate.RequireNonEmptyAlpha(term, "term"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpSimilarTerms, []string{term}, domain.RecommendOptions{HowMany: howMany}, nil)
}

func (r *Recommender) MostPopular(ctx context.Context, howMany int) ([]any, error) {
	return r.jsonList(ctx, domain.OpMostPopular, howMany)
}

func (r *Recommender) TrendShortTime(ctx context.Context, howMany int) ([]any, error) {
	return r.jsonList(ctx, domain.OpTrendShortTime, howMany)
}

func (r *Recommender) TrendLongTime(ctx context.Context, howMany int) ([]any, error) {
	return r.jsonList(ctx, domain.OpTrendLongTime, howMany)
}

// UserProfile returns nil when the engine has no profile or the call failed.
func (r *Recommender) UserProfile(ctx context.Context, userID string) (map[string]any, error) {
	return r.jsonObjectByUser(ctx, domain.OpProfile, userID)
}

func (r *Recommender) SetUserProfile(ctx context.Context, userID string, terms []string, overwrite bool) (bool, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return false, err
	}
	if err := requireItems(terms, "terms"); err != nil {
		return false, err
	}
	q := request.NewQuery().Flag(domain.OptionOverwrite, overwrite)
	return r.ack(ctx, domain.OpSetProfile, prepend(userID, terms), q)
}

func (r *Recommender) UserMood(ctx context.Context, userID string) (map[string]any, error) {
	return r.jsonObjectByUser(ctx, domain.OpMood, userID)
}

func (r *Recommender) LuckyUsers(ctx context.Context, item string, howMany int) ([]string, error) {
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return nil, err
	}
	return r.recommendList(ctx, domain.OpLuckyUser, []string{item}, domain.RecommendOptions{HowMany: howMany}, nil)
}

// call builds the request described by key and performs the single
// transport round trip. ok is false when the transport failed; err is only
// set when the request could not be built.
func (r *Recommender) call(ctx context.Context, op domain.Operation, params []string, q *request.Query) (body string, ok bool, err error) {
	req, err := request.Build(op, params, q)
	if err != nil {
		return "", false, err
	}

	start := time.Now()
	body, err = r.transport.Get(ctx, req)
	if err != nil {
		r.logger.Warn("recommender_call_failed",
			"operation", op.Key,
			"path", req.Path,
			"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
			"error", err,
		)
		return "", false, nil
	}
	return body, true, nil
}

func (r *Recommender) ack(ctx context.Context, key string, params []string, q *request.Query) (bool, error) {
	op, err := operation(key, domain.ShapeAck)
	if err != nil {
		return false, err
	}
	_, ok, err := r.call(ctx, op, params, q)
	if err != nil {
		return false, err
	}
	return ok, nil
}

func (r *Recommender) list(ctx context.Context, key string, params []string, q *request.Query) ([]string, error) {
	op, err := operation(key, domain.ShapeTextList)
	if err != nil {
		return nil, err
	}
	body, ok, err := r.call(ctx, op, params, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return normalize.TextList(body, op.Dedupe), nil
}

func (r *Recommender) recommendList(ctx context.Context, key string, params []string, opts domain.RecommendOptions, q *request.Query) ([]string, error) {
	op, err := operation(key, domain.ShapeTextList)
	if err != nil {
		return nil, err
	}
	if q == nil {
		q = request.NewQuery()
	}
	applyRecommendOptions(op, opts, q)
	return r.list(ctx, key, params, q)
}

func (r *Recommender) keyedByItem(ctx context.Context, key, item string) ([]string, error) {
	if err := validate.RequireNonEmptyAlpha(item, "item"); err != nil {
		return nil, err
	}
	op, err := operation(key, domain.ShapeKeyedSingle)
	if err != nil {
		return nil, err
	}
	body, ok, err := r.call(ctx, op, []string{item}, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return []string{}, nil
	}
	return normalize.KeyedSingle(body, item), nil
}

func (r *Recommender) aligned(ctx context.Context, key string, params, items []string) (map[string]string, error) {
	op, err := operation(key, domain.ShapeIndexAligned)
	if err != nil {
		return nil, err
	}
	body, ok, err := r.call(ctx, op, params, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return map[string]string{}, nil
	}
	scores, err := normalize.IndexAligned(items, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op.Key, err)
	}
	return scores, nil
}

func (r *Recommender) jsonList(ctx context.Context, key string, howMany int) ([]any, error) {
	op, err := operation(key, domain.ShapeJSON)
	if err != nil {
		return nil, err
	}
	body, ok, err := r.call(ctx, op, nil, request.NewQuery().Limit(domain.OptionHowMany, howMany))
	if err != nil {
		return nil, err
	}
	if !ok {
		return []any{}, nil
	}
	out := normalize.JSON(body, []any{})
	if out == nil {
		return []any{}, nil
	}
	return out, nil
}

func (r *Recommender) jsonObjectByUser(ctx context.Context, key, userID string) (map[string]any, error) {
	if err := validate.RequireNumeric(userID, "user_id"); err != nil {
		return nil, err
	}
	op, err := operation(key, domain.ShapeJSON)
	if err != nil {
		return nil, err
	}
	body, ok, err := r.call(ctx, op, []string{userID}, nil)
	if err != nil || !ok {
		return nil, err
	}
	return normalize.JSON[map[string]any](body, nil), nil
}

func operation(key string, shape domain.Shape) (domain.Operation, error) {
	op, ok := domain.LookupOperation(key)
	if !ok {
		return domain.Operation{}, fmt.Errorf("unknown recommender operation %q", key)
	}
	if op.Shape != shape {
		return domain.Operation{}, fmt.Errorf("operation %q has shape %s, not %s", key, op.Shape, shape)
	}
	return op, nil
}

// applyRecommendOptions sets only the modifiers the operation declares, so a
// caller's unrelated options are ignored instead of rejected.
func applyRecommendOptions(op domain.Operation, opts domain.RecommendOptions, q *request.Query) {
	if op.AllowsOption(domain.OptionHowMany) {
		q.Limit(domain.OptionHowMany, opts.HowMany)
	}
	if op.AllowsOption(domain.OptionDither) {
		q.Flag(domain.OptionDither, opts.Dither)
	}
	if op.AllowsOption(domain.OptionFresh) {
		q.Flag(domain.OptionFresh, opts.Fresh)
	}
	if op.AllowsOption(domain.OptionProfileBased) {
		q.Flag(domain.OptionProfileBased, opts.ProfileBased)
	}
	if op.AllowsOption(domain.OptionRadius) {
		q.Positive(domain.OptionRadius, opts.Radius)
	}
}

func requireItems(items []string, field string) error {
	if err := validate.RequireNonEmptySlice(items, field); err != nil {
		return err
	}
	return validate.RequireEachNonEmptyAlpha(items, field)
}

func requireItemWithTerms(item string, terms []string) error {
	if err := requireItems(terms, "terms"); err != nil {
		return err
	}
	return validate.RequireNonEmptyAlpha(item, "item")
}

func requireLocation(loc domain.Location) error {
	return validate.RequireEachNumeric([]string{loc.Latitude, loc.Longitude}, "location")
}

func prepend(head string, tail []string) []string {
	return append([]string{head}, tail...)
}
