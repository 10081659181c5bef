package model

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// 温度场 / 焓场 / 相分数，与网格节点一一对应
// 下标 j*Nr + i，i 为径向，j 为轴向
type Field struct {
	Nr, Nz   int
	T        []float64 // 温度 K
	H        []float64 // 比焓 J/kg
	Fraction []float64 // 相分数 0 固相，1 液相
}

func NewField(nr, nz int) *Field {
	n := nr * nz
	return &Field{
		Nr:       nr,
		Nz:       nz,
		T:        make([]float64, n),
		H:        make([]float64, n),
		Fraction: make([]float64, n),
	}
}

func (f *Field) Index(i, j int) int {
	return j*f.Nr + i
}

func (f *Field) At(i, j int) float64 {
	return f.T[j*f.Nr+i]
}

func (f *Field) Len() int {
	return len(f.T)
}

func (f *Field) Clone() *Field {
	c := NewField(f.Nr, f.Nz)
	c.CopyFrom(f)
	return c
}

func (f *Field) CopyFrom(src *Field) {
	copy(f.T, src.T)
	copy(f.H, src.H)
	copy(f.Fraction, src.Fraction)
}

func (f *Field) Min() float64 {
	if len(f.T) == 0 {
		return math.NaN()
	}
	return floats.Min(f.T)
}

func (f *Field) Max() float64 {
	if len(f.T) == 0 {
		return math.NaN()
	}
	return floats.Max(f.T)
}

// 最高温度所在节点
func (f *Field) ArgMax() (i, j int) {
	k := floats.MaxIdx(f.T)
	return k % f.Nr, k / f.Nr
}

// 二维视图，供导出使用
func (f *Field) Rows() [][]float64 {
	return f.rows(f.T)
}

func (f *Field) FractionRows() [][]float64 {
	return f.rows(f.Fraction)
}

func (f *Field) rows(values []float64) [][]float64 {
	rows := make([][]float64, f.Nz)
	for j := range rows {
		rows[j] = append([]float64(nil), values[j*f.Nr:(j+1)*f.Nr]...)
	}
	return rows
}
