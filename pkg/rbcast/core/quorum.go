package core

// QuorumPolicy decides whether a vote count is sufficient to transition
// phase. Both predicates must be monotone: once true for (v, m) they must
// remain true for (v', m) with v' >= v. The engine never hard-codes the
// arithmetic itself; it only ever goes through this interface.
type QuorumPolicy interface {
	PrepareThreshold(votes, members int) bool
	CommitThreshold(votes, members int) bool
}

// DefaultQuorum implements the Byzantine-style two-thirds-plus-one
// threshold: votes >= floor(2*members/3) + 1. This is the classic PBFT
// quorum 2f+1 out of n=3f+1 members (e.g. 3 out of 4, 5 out of 7) - the
// form that matches spec.md section 8's worked four-node/quorum-three
// scenario; it derives the threshold from the live membership size rather
// than a configured constant, so it tracks membership changes between
// consensus instances automatically.
type DefaultQuorum struct{}

func (DefaultQuorum) threshold(members int) int {
	return (2*members)/3 + 1
}

func (d DefaultQuorum) PrepareThreshold(votes, members int) bool {
	return votes >= d.threshold(members)
}

func (d DefaultQuorum) CommitThreshold(votes, members int) bool {
	return votes >= d.threshold(members)
}

// FixedQuorum uses a statically configured threshold rather than one
// derived from the live membership size, for deployments that inject
// {threshold_size, cluster_size} directly (spec.md section 6.3).
type FixedQuorum struct {
	ThresholdSize int
	ClusterSize   int
}

func (f FixedQuorum) PrepareThreshold(votes, _ int) bool {
	return votes >= f.ThresholdSize
}

func (f FixedQuorum) CommitThreshold(votes, _ int) bool {
	return votes >= f.ThresholdSize
}
