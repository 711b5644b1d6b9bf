package pointer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_To(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		give any
	}{
		{name: "string", give: "0:01"},
		{name: "duration", give: 250 * time.Millisecond},
		{name: "int64", give: int64(250)},
		{name: "uint", give: uint(5)},
		{name: "bool", give: true},
		{name: "struct", give: struct{}{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.give, *To(tt.give))
		})
	}
}

func Test_To_Copies(t *testing.T) {
	t.Parallel()

	v := int64(1)
	p := To(v)
	v = 2

	assert.Equal(t, int64(1), *p)
	assert.NotSame(t, To(v), To(v))
}
