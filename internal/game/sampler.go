// 包 game：一局拼图的状态机与会话管理（抽样、放置判定、计分与结束检测）
package game

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrSampleTooLarge = errors.New("sample count exceeds range")
	ErrSampleInvalid  = errors.New("invalid sample arguments")
)

// 文档注释：从 [1, max] 中不放回地抽取 count 个互不相同的整数
// 背景：拒绝采样，重复值丢弃后重抽；数据规模在几十到几百，足够快。
// 约束：count > max 时拒绝调用并返回 ErrSampleTooLarge，否则循环永不结束；结果无序。
func Sample(rng *rand.Rand, count, max int) ([]int, error) {
	if count < 0 || (count > 0 && max < 1) {
		return nil, fmt.Errorf("%w: count=%d max=%d", ErrSampleInvalid, count, max)
	}
	if count > max {
		return nil, fmt.Errorf("%w: count=%d max=%d", ErrSampleTooLarge, count, max)
	}
	out := make([]int, 0, count)
	seen := make(map[int]struct{}, count)
	for len(out) < count {
		n := rng.IntN(max) + 1
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}
