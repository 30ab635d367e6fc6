// Package idgen 提供基于雪花算法的分布式 ID 生成
package idgen

import (
	"fmt"
	"sync"
	"time"
)

const (
	// 起始时间戳：2024-01-01 00:00:00 UTC
	epoch = int64(1704067200000)

	workerIDBits   = 10
	sequenceBits   = 12
	maxWorkerID    = -1 ^ (-1 << workerIDBits)
	maxSequence    = -1 ^ (-1 << sequenceBits)
	workerIDShift  = sequenceBits
	timestampShift = sequenceBits + workerIDBits
)

// Snowflake 雪花 ID 生成器
type Snowflake struct {
	mu        sync.Mutex
	workerID  int64
	sequence  int64
	lastStamp int64
}

// NewSnowflake 创建生成器，workerID 取值范围 [0, 1023]
func NewSnowflake(workerID int64) (*Snowflake, error) {
	if workerID < 0 || workerID > maxWorkerID {
		return nil, fmt.Errorf("worker id %d out of range [0, %d]", workerID, maxWorkerID)
	}
	return &Snowflake{workerID: workerID, lastStamp: -1}, nil
}

// NextID 生成下一个单调递增 ID
func (s *Snowflake) NextID() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if now < s.lastStamp {
		// 时钟回拨，等待追平
		for now < s.lastStamp {
			time.Sleep(time.Millisecond)
			now = time.Now().UnixMilli()
		}
	}

	if now == s.lastStamp {
		s.sequence = (s.sequence + 1) & maxSequence
		if s.sequence == 0 {
			for now <= s.lastStamp {
				now = time.Now().UnixMilli()
			}
		}
	} else {
		s.sequence = 0
	}

	s.lastStamp = now
	return (now-epoch)<<timestampShift | s.workerID<<workerIDShift | s.sequence
}

// NextString 生成带前缀的字符串 ID
func (s *Snowflake) NextString(prefix string) string {
	return fmt.Sprintf("%s%d", prefix, s.NextID())
}
