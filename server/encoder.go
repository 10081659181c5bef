package server

import "math"

// 温度场压缩推送：取整到 1 K 后做差分编码
// 相邻节点温差通常很小，JSON 中的数字位数显著减少
type Encoder struct {
	Start int   `json:"start"`
	Data  []int `json:"data"`
}

func encode(values []float64) Encoder {
	if len(values) == 0 {
		return Encoder{}
	}
	first := int(math.Round(values[0]))
	res := make([]int, len(values)-1)
	pre := first
	for k, v := range values[1:] {
		cur := int(math.Round(v))
		res[k] = cur - pre
		pre = cur
	}
	return Encoder{Start: first, Data: res}
}

func decode(src Encoder) []int {
	res := make([]int, 0, len(src.Data)+1)
	start := src.Start
	res = append(res, start)
	for _, d := range src.Data {
		start += d
		res = append(res, start)
	}
	return res
}

// 压缩后的温度场，按行 (z) 展开
type encodedField struct {
	Nr   int     `json:"nr"`
	Nz   int     `json:"nz"`
	Time float64 `json:"time"`
	Encoder
}
