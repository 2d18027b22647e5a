package embedding

import "github.com/hyperjump/kioku/pkg/utils"

// meanPool averages token vectors whose mask is set and L2-normalises the result.
// hidden is laid out as [token][dimension].
func meanPool(hidden []float32, mask []int64, dimensions int) []float32 {
	out := make([]float32, dimensions)
	var count float32
	for tok, m := range mask {
		if m == 0 {
			continue
		}
		row := hidden[tok*dimensions : (tok+1)*dimensions]
		for d, v := range row {
			out[d] += v
		}
		count++
	}
	if count > 0 {
		for d := range out {
			out[d] /= count
		}
	}
	utils.NormalizeL2(out)
	return out
}
