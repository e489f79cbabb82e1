package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfile(t *testing.T) {
	t.Run("Measure elapsed time of step", func(tt *testing.T) {
		base := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		clock := []time.Time{base, base.Add(3 * time.Second)}

		p := NewProfile()
		p.now = func() time.Time {
			v := clock[0]
			clock = clock[1:]
			return v
		}

		p.Start("load")
		assert.Equal(tt, 3*time.Second, p.Stop("load"))

		res := p.Pack()
		require.Contains(tt, res, "load")
		assert.Equal(tt, 3.0, res["load"].Total)
		assert.Equal(tt, int64(1), res["load"].Count)
		assert.Equal(tt, 3.0, p.Fields()["load"])
	})

	t.Run("Stop without start returns zero", func(tt *testing.T) {
		p := NewProfile()
		assert.Equal(tt, time.Duration(0), p.Stop("transform"))
	})
}
