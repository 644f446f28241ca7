package market

// ExecutableVolume 统计在不劣于 limit 的档位上可成交的数量，最多扫描 depth 档。
// 买入方向消耗卖盘（卖价 <= limit），卖出方向消耗买盘（买价 >= limit）。
// 返回可成交总量与按序消耗的档位。
func ExecutableVolume(t *Tick, buy bool, limit float64, depth int) (float64, []Level) {
	if t == nil || depth <= 0 {
		return 0, nil
	}
	levels := t.Asks
	if !buy {
		levels = t.Bids
	}
	if depth > len(levels) {
		depth = len(levels)
	}
	total := 0.0
	var used []Level
	for i := 0; i < depth; i++ {
		lv := levels[i]
		if lv.Price <= 0 || lv.Volume <= 0 {
			continue
		}
		if buy && lv.Price > limit {
			break
		}
		if !buy && lv.Price < limit {
			break
		}
		total += lv.Volume
		used = append(used, lv)
	}
	return total, used
}
