package ecs

// StoreStats is a snapshot of a registry's size.
type StoreStats struct {
	PoolCount        int
	TotalEntityCount int
	RemapCount       int
	Pools            []PoolStats
}

// PoolStats describes one pool.
type PoolStats struct {
	Key            ArchetypeKey
	ComponentNames []string
	EntityCount    int
}

// CollectStats gathers statistics about every pool, empty ones included.
func (r *Registry) CollectStats() StoreStats {
	stats := StoreStats{
		PoolCount:  len(r.pools),
		RemapCount: r.remaps.Len(),
		Pools:      make([]PoolStats, 0, len(r.pools)),
	}

	for _, p := range r.pools {
		names := make([]string, len(p.ids))
		for i, id := range p.ids {
			names[i] = r.universe.Name(id)
		}
		stats.Pools = append(stats.Pools, PoolStats{
			Key:            p.key,
			ComponentNames: names,
			EntityCount:    p.size,
		})
		stats.TotalEntityCount += p.size
	}

	return stats
}
