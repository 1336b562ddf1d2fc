package domain

import (
	"net/url"
	"slices"
)

// Shape selects how a raw response body is turned into a result.
type Shape int

const (
	// ShapeAck reports only whether the engine accepted the call.
	ShapeAck Shape = iota
	ShapeJSON
	// ShapeKeyedSingle is the bracket-swapped document keyed by the requested item.
	ShapeKeyedSingle
	ShapeTextList
	// ShapeIndexAligned zips a newline list against the caller's input list.
	ShapeIndexAligned
)

func (s Shape) String() string {
	switch s {
	case ShapeAck:
		return "ack"
	case ShapeJSON:
		return "json"
	case ShapeKeyedSingle:
		return "keyed_single"
	case ShapeTextList:
		return "text_list"
	case ShapeIndexAligned:
		return "index_aligned"
	default:
		return "unknown"
	}
}

// Query option keys understood by the engine.
const (
	OptionHowMany      = "howMany"
	OptionDither       = "dither"
	OptionFresh        = "fresh"
	OptionRadius       = "radius"
	OptionProfileBased = "profileBased"
	OptionOverwrite    = "overwrite"
	OptionTerms        = "terms"
	OptionList         = "list"
	OptionRemember     = "remember"
	OptionID           = "id"
	OptionURL          = "url"
	OptionValue        = "value"
)

// Operation is the static descriptor of one engine endpoint.
//
// Arity >= 0 requires exactly that many path segments; a negative Arity
// requires at least -Arity segments.
type Operation struct {
	Key      string
	Endpoint string
	Arity    int
	Options  []string
	Shape    Shape
	Dedupe   bool
}

func (o Operation) AllowsOption(key string) bool {
	return slices.Contains(o.Options, key)
}

// AcceptsArity reports whether n path segments satisfy the descriptor.
func (o Operation) AcceptsArity(n int) bool {
	if o.Arity >= 0 {
		return n == o.Arity
	}
	return n >= -o.Arity
}

// Request is a fully built call: an unescaped path and its query values.
type Request struct {
	Operation string
	Path      string
	Query     url.Values
}

// URL renders the request target. The path is emitted verbatim; only the
// query is percent-encoded.
func (r Request) URL() string {
	if len(r.Query) == 0 {
		return r.Path
	}
	return r.Path + "?" + r.Query.Encode()
}

const (
	OpIngest                = "ingest"
	OpForget                = "forget"
	OpForgetList            = "forgetList"
	OpRemember              = "remember"
	OpTermItemAdd           = "termItemAdd"
	OpTermItemRemove        = "termItemRemove"
	OpTermItemList          = "termItemList"
	OpItemLocationAdd       = "itemLocationAdd"
	OpItemLocationList      = "itemLocationList"
	OpItemVisitorList       = "itemVisitorList"
	OpRecommend             = "recommend"
	OpRecommendNear         = "recommendNear"
	OpRecommendGroup        = "recommendGroup"
	OpTermRecommend         = "termRecommend"
	OpTermItemRecommend     = "termItemRecommend"
	OpPriorityTermRecommend = "priorityTermRecommend"
	OpSimilarity            = "similarity"
	OpTermSimilarity        = "termSimilarity"
	OpSimilarItems          = "similarItems"
	OpSimilarTerms          = "similarTerms"
	OpMostPopular           = "mostPopular"
	OpTrendShortTime        = "trendShortTime"
	OpTrendLongTime         = "trendLongTime"
	OpProfile               = "profile"
	OpSetProfile            = "setProfile"
	OpMood                  = "mood"
	OpLuckyUser             = "luckyUser"
)

var operations = map[string]Operation{
	OpIngest:                {Endpoint: "ingest", Arity: 0, Options: []string{OptionID, OptionURL, OptionValue}, Shape: ShapeAck},
	OpForget:                {Endpoint: "forget", Arity: -1, Shape: ShapeAck},
	OpForgetList:            {Endpoint: "forget", Arity: 0, Options: []string{OptionList}, Shape: ShapeTextList, Dedupe: true},
	OpRemember:              {Endpoint: "forget", Arity: -1, Options: []string{OptionRemember}, Shape: ShapeAck},
	OpTermItemAdd:           {Endpoint: "termItemAdd", Arity: -2, Shape: ShapeAck},
	OpTermItemRemove:        {Endpoint: "termItemRemove", Arity: -2, Shape: ShapeAck},
	OpTermItemList:          {Endpoint: "termItemList", Arity: 1, Shape: ShapeKeyedSingle},
	OpItemLocationAdd:       {Endpoint: "itemLocationAdd", Arity: 3, Shape: ShapeAck},
	OpItemLocationList:      {Endpoint: "itemLocationList", Arity: 1, Shape: ShapeKeyedSingle},
	OpItemVisitorList:       {Endpoint: "itemVisitorList", Arity: 1, Shape: ShapeKeyedSingle},
	OpRecommend:             {Endpoint: "recommend", Arity: 1, Options: []string{OptionHowMany, OptionDither, OptionFresh}, Shape: ShapeTextList},
	OpRecommendNear:         {Endpoint: "recommendNear", Arity: 3, Options: []string{OptionHowMany, OptionRadius, OptionDither}, Shape: ShapeTextList},
	OpRecommendGroup:        {Endpoint: "recommendGroup", Arity: -1, Options: []string{OptionHowMany, OptionDither}, Shape: ShapeTextList},
	OpTermRecommend:         {Endpoint: "termRecommend", Arity: -2, Options: []string{OptionHowMany, OptionProfileBased, OptionDither}, Shape: ShapeTextList},
	OpTermItemRecommend:     {Endpoint: "termItemRecommend", Arity: -1, Options: []string{OptionHowMany}, Shape: ShapeTextList},
	OpPriorityTermRecommend: {Endpoint: "priorityTermRecommend", Arity: 1, Options: []string{OptionTerms, OptionHowMany, OptionProfileBased}, Shape: ShapeTextList},
	OpSimilarity:            {Endpoint: "similarity", Arity: -2, Shape: ShapeIndexAligned},
	OpTermSimilarity:        {Endpoint: "termSimilarity", Arity: -2, Shape: ShapeIndexAligned},
	OpSimilarItems:          {Endpoint: "similarItems", Arity: 1, Options: []string{OptionHowMany}, Shape: ShapeTextList},
	OpSimilarTerms:          {Endpoint: "similarTerms", Arity: 1, Options: []string{OptionHowMany}, Shape: ShapeTextList},
	OpMostPopular:           {Endpoint: "mostPopular", Arity: 0, Options: []string{OptionHowMany}, Shape: ShapeJSON},
	OpTrendShortTime:        {Endpoint: "trendShortTime", Arity: 0, Options: []string{OptionHowMany}, Shape: ShapeJSON},
	OpTrendLongTime:         {Endpoint: "trendLongTime", Arity: 0, Options: []string{OptionHowMany}, Shape: ShapeJSON},
	OpProfile:               {Endpoint: "profile", Arity: 1, Shape: ShapeJSON},
	OpSetProfile:            {Endpoint: "setProfile", Arity: -2, Options: []string{OptionOverwrite}, Shape: ShapeAck},
	OpMood:                  {Endpoint: "mood", Arity: 1, Shape: ShapeJSON},
	OpLuckyUser:             {Endpoint: "luckyUser", Arity: 1, Options: []string{OptionHowMany}, Shape: ShapeTextList, Dedupe: true},
}

// LookupOperation returns a copy of the descriptor registered under key.
func LookupOperation(key string) (Operation, bool) {
	op, ok := operations[key]
	if !ok {
		return Operation{}, false
	}
	op.Key = key
	op.Options = slices.Clone(op.Options)
	return op, true
}

// OperationKeys lists every registered descriptor key in sorted order.
func OperationKeys() []string {
	keys := make([]string, 0, len(operations))
	for key := range operations {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}
