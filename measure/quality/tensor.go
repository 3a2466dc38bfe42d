package quality

import (
	"fmt"
	"math"
)

// Tensor is a dense row-major array of samples: rank 1 for a single signal,
// rank 2 for a batch of equally long signals ([batch, samples]).
type Tensor struct {
	Data  []float64
	Shape []int
}

// Vector wraps a single signal as a rank-1 tensor.
func Vector(samples []float64) Tensor {
	return Tensor{Data: samples, Shape: []int{len(samples)}}
}

// NewTensor wraps data with the given shape. The shape is checked when the
// tensor is read.
func NewTensor(data []float64, shape ...int) Tensor {
	return Tensor{Data: data, Shape: shape}
}

// TensorFromFloat32 converts float32 samples into a tensor of the given shape.
func TensorFromFloat32(data []float32, shape ...int) Tensor {
	out := make([]float64, len(data))
	for i, v := range data {
		out[i] = float64(v)
	}

	return Tensor{Data: out, Shape: shape}
}

// Stack copies equally long, non-empty signals into a rank-2 tensor.
func Stack(rows [][]float64) (Tensor, error) {
	if len(rows) == 0 {
		return Tensor{Shape: []int{0, 0}}, nil
	}

	width := len(rows[0])
	if width == 0 {
		return Tensor{}, fmt.Errorf("%w: rows have no samples", ErrMalformedTensor)
	}

	data := make([]float64, 0, len(rows)*width)

	for i, row := range rows {
		if len(row) != width {
			return Tensor{}, fmt.Errorf("%w: row %d has %d samples, want %d", ErrMalformedTensor, i, len(row), width)
		}

		data = append(data, row...)
	}

	return Tensor{Data: data, Shape: []int{len(rows), width}}, nil
}

// Rank returns the number of dimensions.
func (t Tensor) Rank() int { return len(t.Shape) }

// Rows returns the tensor as a batch of signals. A rank-1 tensor becomes a
// batch of one. Rank-2 rows must hold at least one sample unless the batch is
// empty. The rows share storage with t.Data.
func (t Tensor) Rows() ([][]float64, error) {
	size := 1
	for _, d := range t.Shape {
		if d < 0 {
			return nil, fmt.Errorf("%w: negative dimension in shape %v", ErrMalformedTensor, t.Shape)
		}

		if d != 0 && size > math.MaxInt/d {
			return nil, fmt.Errorf("%w: shape %v overflows int", ErrMalformedTensor, t.Shape)
		}

		size *= d
	}

	if t.Rank() == 0 || t.Rank() > 2 {
		return nil, fmt.Errorf("%w: rank %d, want 1 or 2", ErrMalformedTensor, t.Rank())
	}

	if size != len(t.Data) {
		return nil, fmt.Errorf("%w: shape %v needs %d samples, have %d", ErrMalformedTensor, t.Shape, size, len(t.Data))
	}

	if t.Rank() == 1 {
		return [][]float64{t.Data}, nil
	}

	batch, width := t.Shape[0], t.Shape[1]
	if width == 0 && batch > 0 {
		return nil, fmt.Errorf("%w: %d rows of zero samples", ErrMalformedTensor, batch)
	}

	rows := make([][]float64, batch)

	for i := range rows {
		rows[i] = t.Data[i*width : (i+1)*width : (i+1)*width]
	}

	return rows, nil
}
