package domain

// FundPoolShare is the fee taken on every release and every push transfer:
// 1% of the amount, rounded half up to the nearest whole unit.
func FundPoolShare(amount uint64) uint64 {
	return (amount + 50) / 100
}

// SplitForRelease splits a locked amount into the fund-pool share and the
// remainder. The remainder is what a post-release payout or refund moves,
// since the pool share is paid irreversibly at release.
func SplitForRelease(priceTotal uint64) (poolShare, remainder uint64) {
	poolShare = FundPoolShare(priceTotal)
	return poolShare, priceTotal - poolShare
}
