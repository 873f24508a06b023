package core

import "testing"

func TestDefaultQuorum_PrepareThreshold(t *testing.T) {
	q := DefaultQuorum{}

	cases := []struct {
		votes, members int
		want           bool
	}{
		{votes: 3, members: 4, want: true},
		{votes: 2, members: 4, want: false},
		{votes: 4, members: 4, want: true},
	}

	for _, tc := range cases {
		got := q.PrepareThreshold(tc.votes, tc.members)
		if got != tc.want {
			t.Errorf("PrepareThreshold(%d, %d) = %v, want %v", tc.votes, tc.members, got, tc.want)
		}
	}
}

func TestDefaultQuorum_Monotone(t *testing.T) {
	q := DefaultQuorum{}
	members := 7
	threshold := q.threshold(members)

	if q.PrepareThreshold(threshold-1, members) {
		t.Fatalf("expected quorum not met at votes=%d for members=%d", threshold-1, members)
	}
	if !q.PrepareThreshold(threshold, members) {
		t.Fatalf("expected quorum met at votes=%d for members=%d", threshold, members)
	}
	if !q.PrepareThreshold(threshold+1, members) {
		t.Fatalf("expected quorum to remain met once votes only grow")
	}
}

func TestDefaultQuorum_FourNodeClusterQuorumIsThree(t *testing.T) {
	// spec.md section 8's end-to-end scenarios use a 4-node cluster with
	// quorum = 3.
	q := DefaultQuorum{}
	if q.threshold(4) != 3 {
		t.Fatalf("expected threshold(4) == 3, got %d", q.threshold(4))
	}
	if q.PrepareThreshold(2, 4) {
		t.Fatalf("2 of 4 votes must not reach quorum")
	}
	if !q.PrepareThreshold(3, 4) {
		t.Fatalf("3 of 4 votes must reach quorum")
	}
}

func TestFixedQuorum_IgnoresMemberCount(t *testing.T) {
	q := FixedQuorum{ThresholdSize: 5, ClusterSize: 9}
	if q.PrepareThreshold(4, 100) {
		t.Fatalf("4 votes must not satisfy a fixed threshold of 5")
	}
	if !q.PrepareThreshold(5, 1) {
		t.Fatalf("5 votes must satisfy a fixed threshold of 5 regardless of members")
	}
}
