package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLikesByResult(t *testing.T) {
	before := testutil.ToFloat64(Likes.WithLabelValues(ResultAlreadyLiked))
	Likes.WithLabelValues(ResultAlreadyLiked).Inc()
	if got := testutil.ToFloat64(Likes.WithLabelValues(ResultAlreadyLiked)); got != before+1 {
		t.Errorf("already_liked = %v, want %v", got, before+1)
	}
}

func TestCollectorsRegistered(t *testing.T) {
	if n := testutil.CollectAndCount(Signups); n != 1 {
		t.Errorf("signups collected %d metrics, want 1", n)
	}
}
