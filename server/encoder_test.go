package server

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecode(t *testing.T) {
	values := []float64{300.2, 300.4, 301.6, 1250.5, 1249.49, 300}
	enc := encode(values)
	assert.Equal(t, 300, enc.Start)
	assert.Len(t, enc.Data, len(values)-1)

	got := decode(enc)
	for k, v := range values {
		assert.Equal(t, int(math.Round(v)), got[k])
	}

	assert.Equal(t, Encoder{}, encode(nil))
}
