package execution

import "vmx/internal/domain"

// Scheduler distributes descriptors across shards
type Scheduler interface {
	Schedule(descriptors []domain.Descriptor, shardCount int) [][]domain.Descriptor
}

// RoundRobinScheduler distributes descriptors evenly across shards
type RoundRobinScheduler struct{}

// NewRoundRobinScheduler creates a new RoundRobinScheduler
func NewRoundRobinScheduler() *RoundRobinScheduler {
	return &RoundRobinScheduler{}
}

// Schedule distributes descriptors evenly using round-robin, keeping plan
// order inside every shard.
func (s *RoundRobinScheduler) Schedule(descriptors []domain.Descriptor, shardCount int) [][]domain.Descriptor {
	if shardCount <= 0 {
		shardCount = 1
	}

	distribution := make([][]domain.Descriptor, shardCount)
	for i := range distribution {
		distribution[i] = make([]domain.Descriptor, 0)
	}

	for i, d := range descriptors {
		shardIndex := i % shardCount
		distribution[shardIndex] = append(distribution[shardIndex], d)
	}

	return distribution
}

// Shard returns the descriptors of one shard, index counted from zero.
func Shard(s Scheduler, descriptors []domain.Descriptor, index, total int) []domain.Descriptor {
	if total <= 1 {
		return descriptors
	}
	shards := s.Schedule(descriptors, total)
	if index < 0 || index >= len(shards) {
		return nil
	}
	return shards[index]
}
