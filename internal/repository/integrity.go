package repository

// ChainState 一条版本链的计数信息，用于体检
type ChainState struct {
	ChainID        string `json:"chainID"`
	VenueID        int64  `json:"venueID"`
	MemberCount    int32  `json:"memberCount"`
	PublishedCount int32  `json:"publishedCount"`
	ActiveCount    int32  `json:"activeCount"`
}

func (r *Repository) GetChainStates() ([]*ChainState, error) {
	query := `
		SELECT
			chain_id,
			venue_id,
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'PUBLISHED'),
			COUNT(*) FILTER (WHERE is_active)
		FROM rosters
		WHERE chain_id IS NOT NULL
		GROUP BY chain_id, venue_id
		ORDER BY chain_id
	`

	ctx, cancel := r.queryContext()
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	states := []*ChainState{}
	for rows.Next() {
		var state ChainState
		dst := []any{&state.ChainID, &state.VenueID, &state.MemberCount, &state.PublishedCount, &state.ActiveCount}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		states = append(states, &state)
	}

	return states, rows.Err()
}

// RepairChain 把链上所有版本的启用标记清空，再把正确的版本（如果有）重新标记为启用。
// 在一个事务中完成，对已经一致的链重复执行没有效果
func (r *Repository) RepairChain(chainID string, activeID *int64) error {
	ctx, cancel := r.transactionContext()
	defer cancel()

	tx, err := r.dbpool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `UPDATE rosters SET is_active = FALSE WHERE chain_id = $1 AND is_active = TRUE`
	if _, err := tx.ExecContext(ctx, query, chainID); err != nil {
		return err
	}

	if activeID != nil {
		query := `UPDATE rosters SET is_active = TRUE WHERE id = $1 AND chain_id = $2`
		if _, err := tx.ExecContext(ctx, query, *activeID, chainID); err != nil {
			return err
		}
	}

	return tx.Commit()
}
