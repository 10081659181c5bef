package mesh

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"plasmaheat/model"
)

// 圆柱坐标 (r, z) 网格
// 1. r 方向 Nr 个节点，r[0] = 0 为对称轴，r[Nr-1] = Radius 为外壁
// 2. z 方向 Nz 个节点，z[0] = 0 为底面，z[Nz-1] = Height 为顶面
// 构造之后不再修改，可以被多个 goroutine 同时读取
type Mesh struct {
	Radius, Height float64
	Nr, Nz         int
	Dr, Dz         float64

	r []float64
	z []float64
}

// 网格节点下标
type Node struct {
	I, J int
}

func New(radius, height float64, nr, nz int) (*Mesh, error) {
	switch {
	case !(radius > 0) || math.IsInf(radius, 0):
		return nil, &model.MeshGenerationError{Reason: fmt.Sprintf("radius must be positive, got %g", radius)}
	case !(height > 0) || math.IsInf(height, 0):
		return nil, &model.MeshGenerationError{Reason: fmt.Sprintf("height must be positive, got %g", height)}
	case nr < 2:
		return nil, &model.MeshGenerationError{Reason: fmt.Sprintf("nr must be at least 2, got %d", nr)}
	case nz < 2:
		return nil, &model.MeshGenerationError{Reason: fmt.Sprintf("nz must be at least 2, got %d", nz)}
	}

	m := &Mesh{
		Radius: radius,
		Height: height,
		Nr:     nr,
		Nz:     nz,
		Dr:     radius / float64(nr-1),
		Dz:     height / float64(nz-1),
		// 端点精确落在 0 和 Radius / Height 上
		r: floats.Span(make([]float64, nr), 0, radius),
		z: floats.Span(make([]float64, nz), 0, height),
	}
	return m, nil
}

func (m *Mesh) R(i int) float64 {
	return m.r[i]
}

func (m *Mesh) Z(j int) float64 {
	return m.z[j]
}

func (m *Mesh) RCoords() []float64 {
	return append([]float64(nil), m.r...)
}

func (m *Mesh) ZCoords() []float64 {
	return append([]float64(nil), m.z...)
}

func (m *Mesh) Size() int {
	return m.Nr * m.Nz
}

func (m *Mesh) Index(i, j int) int {
	return j*m.Nr + i
}

// 环形单元体积 2π·r·dr·dz，轴上为半径 dr/2 的圆盘
func (m *Mesh) CellVolume(i, j int) float64 {
	if i == 0 {
		return math.Pi * (m.Dr / 2) * (m.Dr / 2) * m.Dz
	}
	return 2 * math.Pi * m.r[i] * m.Dr * m.Dz
}

// 节点 i 与 i+1 之间径向界面的面积，位于 r = (r_i + r_{i+1}) / 2
func (m *Mesh) RadialFaceArea(i int) float64 {
	return 2 * math.Pi * (m.r[i] + m.r[i+1]) / 2 * m.Dz
}

// 轴向界面 (z 方向) 的面积，即单元的环形截面
func (m *Mesh) AxialFaceArea(i int) float64 {
	return m.CellVolume(i, 0) / m.Dz
}

// 外壁上一个节点对应的换热面积
func (m *Mesh) WallArea() float64 {
	return 2 * math.Pi * m.Radius * m.Dz
}

func (m *Mesh) TotalVolume() float64 {
	v := 0.0
	for j := 0; j < m.Nz; j++ {
		for i := 0; i < m.Nr; i++ {
			v += m.CellVolume(i, j)
		}
	}
	return v
}

// 四邻域，边界上只返回存在的邻居
func (m *Mesh) Neighbors(i, j int) []Node {
	nodes := make([]Node, 0, 4)
	if i > 0 {
		nodes = append(nodes, Node{i - 1, j})
	}
	if i < m.Nr-1 {
		nodes = append(nodes, Node{i + 1, j})
	}
	if j > 0 {
		nodes = append(nodes, Node{i, j - 1})
	}
	if j < m.Nz-1 {
		nodes = append(nodes, Node{i, j + 1})
	}
	return nodes
}

// 对称轴镜像：虚拟节点 -k 对应实节点 k
func (m *Mesh) Mirror(i int) int {
	if i < 0 {
		return -i
	}
	return i
}

// 距离 (r, z) 最近的节点，距离相同时取下标较小者
func (m *Mesh) Nearest(r, z float64) (i, j int) {
	i = nearest(m.r, r)
	j = nearest(m.z, z)
	return
}

func nearest(coords []float64, x float64) int {
	best, dist := 0, math.Inf(1)
	for k, c := range coords {
		if d := math.Abs(c - x); d < dist {
			best, dist = k, d
		}
	}
	return best
}
