package contracts

// Bucket is the conviction tier assigned by the ranker
type Bucket string

const (
	BucketStrongBuy Bucket = "STRONG_BUY"
	BucketBuy       Bucket = "BUY"
	BucketWatchlist Bucket = "WATCHLIST"
	BucketAvoid     Bucket = "AVOID"
)

// Rank orders buckets from weakest (0) to strongest (3)
func (b Bucket) Rank() int {
	switch b {
	case BucketStrongBuy:
		return 3
	case BucketBuy:
		return 2
	case BucketWatchlist:
		return 1
	default:
		return 0
	}
}

// Deployable reports whether the bucket can receive an allocation
func (b Bucket) Deployable() bool {
	return b.Rank() > 0
}

// Candidate is a ranked symbol passed from the ranker to the planner
// ⭐ SSOT: ranker → planner candidate data
type Candidate struct {
	SignalResult
	Bucket Bucket `json:"bucket"`
	Sector string `json:"sector"`
	Rank   int    `json:"rank"` // 1-based
}
